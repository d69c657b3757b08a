package dto

import (
	"encoding/json"
	"time"
)

type NotificationListRequest struct {
	Page       int  `query:"page"`
	PerPage    int  `query:"per_page"`
	UnreadOnly bool `query:"unread_only"`
}

type NotificationResponse struct {
	Id        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	ReadAt    *time.Time      `json:"read_at"`
	CreatedAt time.Time       `json:"created_at"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type SettingResponse struct {
	Group string          `json:"group"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type UpdateSettingsRequest struct {
	Settings map[string]json.RawMessage `json:"settings" validate:"required,min=1"`
}

type LogListRequest struct {
	Level   string `query:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
}

type LogListResponse struct {
	Id        string `json:"id"` // MD5 hash of the raw line
	Level     string `json:"level"`
	Module    string `json:"module"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type LogDetailResponse struct {
	LogListResponse
	Details map[string]interface{} `json:"details"`
}
