package service

import (
	"leadflow-be/internal/dto"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/pkg/apperr"
)

const defaultLogsPerPage = 50

type ILogService interface {
	List(req *dto.LogListRequest) ([]dto.LogListResponse, error)
	Show(id string) (*dto.LogDetailResponse, error)
}

type logService struct {
	logger logger.ILogger
}

func NewLogService(log logger.ILogger) ILogService {
	return &logService{logger: log}
}

func toLogListResponse(e logger.LogEntry) dto.LogListResponse {
	return dto.LogListResponse{
		Id:        e.Id,
		Level:     e.Level,
		Module:    e.Module,
		Message:   e.Message,
		Timestamp: e.Timestamp,
	}
}

func (s *logService) List(req *dto.LogListRequest) ([]dto.LogListResponse, error) {
	page, perPage := pageParams(req.Page, req.PerPage, defaultLogsPerPage)
	entries, err := s.logger.GetLogs(req.Level, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	res := make([]dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, toLogListResponse(e))
	}
	return res, nil
}

func (s *logService) Show(id string) (*dto.LogDetailResponse, error) {
	entry, err := s.logger.GetLogById(id)
	if err != nil || entry == nil {
		return nil, apperr.NotFound("Log entry")
	}
	return &dto.LogDetailResponse{LogListResponse: toLogListResponse(*entry), Details: entry.Details}, nil
}
