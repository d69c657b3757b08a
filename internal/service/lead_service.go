package service

import (
	"context"
	"fmt"
	"time"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/internal/pkg/mailer"
	"leadflow-be/internal/pkg/metrics"
	"leadflow-be/internal/repository/contract"
	"leadflow-be/internal/repository/unitofwork"
	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/assignment"
	"leadflow-be/pkg/eventbus"
	"leadflow-be/pkg/events"
)

const (
	defaultLeadsPerPage = 15
	maxPerPage          = 100
	dateLayout          = "2006-01-02"
)

type ILeadService interface {
	// Capture stores a public submission and runs the location's assignment algorithm.
	Capture(ctx context.Context, req *dto.CreateLeadRequest) (*dto.CreateLeadResponse, error)
	List(ctx context.Context, p entity.Principal, req *dto.LeadListRequest) (*dto.PageResponse[dto.LeadResponse], error)
	Show(ctx context.Context, p entity.Principal, leadId uint) (*dto.LeadResponse, error)
	UpdateStatus(ctx context.Context, p entity.Principal, leadId uint, req *dto.UpdateLeadRequest) (*dto.LeadResponse, error)
	Reassign(ctx context.Context, p entity.Principal, leadId uint, req *dto.ReassignLeadRequest) (*dto.LeadResponse, error)
	ListNotes(ctx context.Context, p entity.Principal, leadId uint) ([]dto.LeadNoteResponse, error)
	AddNote(ctx context.Context, p entity.Principal, leadId uint, req *dto.CreateLeadNoteRequest) (*dto.LeadNoteResponse, error)
}

type leadService struct {
	uowFactory unitofwork.RepositoryFactory
	resolver   *assignment.Resolver
	bus        eventbus.Bus
	mailer     mailer.IEmailService
	metrics    *metrics.Metrics
	logger     logger.ILogger
}

func NewLeadService(
	uowFactory unitofwork.RepositoryFactory,
	resolver *assignment.Resolver,
	bus eventbus.Bus,
	mailer mailer.IEmailService,
	m *metrics.Metrics,
	log logger.ILogger,
) ILeadService {
	return &leadService{
		uowFactory: uowFactory,
		resolver:   resolver,
		bus:        bus,
		mailer:     mailer,
		metrics:    m,
		logger:     log,
	}
}

func (s *leadService) Capture(ctx context.Context, req *dto.CreateLeadRequest) (*dto.CreateLeadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	location, err := uow.LocationRepository().FindBySlug(ctx, req.LocationSlug)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, apperr.NotFound("Location")
	}

	lead := &entity.Lead{
		LocationId:  location.Id,
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		ZipCode:     req.ZipCode,
		ProjectType: entity.ProjectType(req.ProjectType),
		Timing:      entity.Timing(req.Timing),
		Notes:       req.Notes,
		Status:      entity.LeadStatusNew,
	}
	if err := uow.LeadRepository().Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	s.metrics.LeadsCaptured.Inc()
	s.logger.Info("LeadService", "Lead captured", map[string]interface{}{"lead_id": lead.Id, "location_id": location.Id})

	// The submitter gets a success response whatever the resolver decides.
	s.autoAssign(ctx, lead, location)

	return &dto.CreateLeadResponse{
		Id:      lead.Id,
		Message: "Thank you! Your request has been received.",
	}, nil
}

func (s *leadService) autoAssign(ctx context.Context, lead *entity.Lead, location *entity.Location) {
	algorithm := location.AssignmentAlgorithm
	pool := make([]assignment.Candidate, 0, len(location.ServiceProviders))
	byId := make(map[uint]*entity.ServiceProvider, len(location.ServiceProviders))
	ids := make([]uint, 0, len(location.ServiceProviders))
	for _, sp := range location.ServiceProviders {
		pool = append(pool, assignment.Candidate{ProviderId: sp.Id, Name: sp.Name, Address: sp.Address, Active: sp.IsActive})
		byId[sp.Id] = sp
		ids = append(ids, sp.Id)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if algorithm == assignment.LoadBalance && len(ids) > 0 {
		counts, err := uow.LeadRepository().CountOpenByProvider(ctx, ids)
		if err != nil {
			s.logger.Error("LeadService", "Failed to count open leads", map[string]interface{}{"lead_id": lead.Id, "error": err.Error()})
			return
		}
		for i := range pool {
			pool[i].OpenLeads = counts[pool[i].ProviderId]
		}
	}

	chosen, err := s.resolver.Resolve(ctx, assignment.Request{
		LocationId: location.Id,
		Algorithm:  algorithm,
		ZipCode:    lead.ZipCode,
		Pool:       pool,
	})
	if err != nil {
		s.logger.Error("LeadService", "Assignment failed, lead left unassigned", map[string]interface{}{"lead_id": lead.Id, "algorithm": string(algorithm), "error": err.Error()})
		s.metrics.LeadsUnassigned.WithLabelValues(string(algorithm)).Inc()
		return
	}
	if chosen == nil {
		s.logger.Info("LeadService", "No provider chosen", map[string]interface{}{"lead_id": lead.Id, "algorithm": string(algorithm)})
		s.metrics.LeadsUnassigned.WithLabelValues(string(algorithm)).Inc()
		return
	}

	provider := byId[*chosen]
	text := fmt.Sprintf("Lead automatically assigned to %s (%s)", provider.Name, algorithm)
	if err := s.writeAssignment(ctx, uow, lead, provider.Id, text); err != nil {
		s.logger.Error("LeadService", "Failed to persist assignment", map[string]interface{}{"lead_id": lead.Id, "error": err.Error()})
		return
	}
	s.metrics.LeadsAssigned.WithLabelValues(string(algorithm)).Inc()

	s.publish(ctx, events.NewLeadAssigned(lead.Ref(), provider.Id, provider.Name, false, events.Actor{}))
	s.notifyProvider(provider, lead, location)
}

// writeAssignment stores the provider and its system note in one transaction.
func (s *leadService) writeAssignment(ctx context.Context, uow unitofwork.UnitOfWork, lead *entity.Lead, providerId uint, text string) (err error) {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = uow.Rollback()
		}
	}()

	lead.AssignTo(providerId)
	if err = uow.LeadRepository().Update(ctx, lead); err != nil {
		return err
	}
	if err = uow.LeadNoteRepository().Create(ctx, entity.NewSystemNote(lead.Id, entity.NoteTypeAssignment, text)); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *leadService) notifyProvider(provider *entity.ServiceProvider, lead *entity.Lead, location *entity.Location) {
	mail := mailer.LeadAssignedMail{
		ProviderName: provider.Name,
		LeadId:       lead.Id,
		LeadName:     lead.Name,
		LeadPhone:    lead.Phone,
		LeadEmail:    lead.Email,
		ZipCode:      lead.ZipCode,
		ProjectType:  string(lead.ProjectType),
		Timing:       string(lead.Timing),
	}
	if location != nil {
		mail.LocationName = location.Name
	}
	if err := s.mailer.SendLeadAssigned(provider.Email, mail); err != nil {
		s.logger.Warn("LeadService", "Failed to email provider", map[string]interface{}{"lead_id": lead.Id, "provider_id": provider.Id, "error": err.Error()})
	}
}

func (s *leadService) publish(ctx context.Context, e events.Event) {
	if err := s.bus.Publish(ctx, e); err != nil {
		s.logger.Error("LeadService", "Failed to publish event", map[string]interface{}{"event": string(e.EventType()), "lead_id": e.Lead().Id, "error": err.Error()})
	}
}

func parseDay(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func pageParams(page, perPage, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = def
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func (s *leadService) List(ctx context.Context, p entity.Principal, req *dto.LeadListRequest) (*dto.PageResponse[dto.LeadResponse], error) {
	page, perPage := pageParams(req.Page, req.PerPage, defaultLeadsPerPage)
	filter := contract.LeadFilter{
		Status: entity.LeadStatus(req.Status),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if p.IsProvider() {
		filter.ServiceProviderId = p.Id
	} else {
		filter.LocationId = req.LocationId
	}

	from, err := parseDay(req.DateFrom)
	if err != nil {
		return nil, apperr.Validation(map[string]string{"date_from": "The date from is not a valid date."})
	}
	to, err := parseDay(req.DateTo)
	if err != nil {
		return nil, apperr.Validation(map[string]string{"date_to": "The date to is not a valid date."})
	}
	filter.DateFrom = from
	if to != nil {
		end := to.AddDate(0, 0, 1)
		filter.DateTo = &end
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	leads, err := uow.LeadRepository().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uow.LeadRepository().Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LeadResponse, 0, len(leads))
	for _, l := range leads {
		items = append(items, mapper.ToLeadResponse(l))
	}
	res := dto.NewPageResponse(items, total, page, perPage)
	return &res, nil
}

// loadForPrincipal returns the lead if p may see it. Providers only see
// leads assigned to them.
func (s *leadService) loadForPrincipal(ctx context.Context, uow unitofwork.UnitOfWork, p entity.Principal, leadId uint) (*entity.Lead, error) {
	lead, err := uow.LeadRepository().FindById(ctx, leadId)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, apperr.NotFound("Lead")
	}
	if p.IsProvider() && !lead.IsAssignedTo(p.Id) {
		return nil, apperr.Forbidden("This lead is not assigned to you.")
	}
	return lead, nil
}

func (s *leadService) Show(ctx context.Context, p entity.Principal, leadId uint) (*dto.LeadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	lead, err := s.loadForPrincipal(ctx, uow, p, leadId)
	if err != nil {
		return nil, err
	}
	notes, err := uow.LeadNoteRepository().FindByLeadId(ctx, lead.Id)
	if err != nil {
		return nil, err
	}
	lead.LeadNotes = notes

	res := mapper.ToLeadResponse(lead)
	return &res, nil
}

func (s *leadService) UpdateStatus(ctx context.Context, p entity.Principal, leadId uint, req *dto.UpdateLeadRequest) (*dto.LeadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	lead, err := s.loadForPrincipal(ctx, uow, p, leadId)
	if err != nil {
		return nil, err
	}

	next, err := entity.ParseLeadStatus(req.Status)
	if err != nil {
		return nil, err
	}
	old, changed, err := lead.TransitionTo(next)
	if err != nil {
		return nil, err
	}
	if !changed {
		res := mapper.ToLeadResponse(lead)
		return &res, nil
	}

	if err := s.writeStatusChange(ctx, uow, lead, old, next); err != nil {
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}
	s.metrics.StatusChanges.WithLabelValues(string(next)).Inc()
	s.logger.Info("LeadService", "Lead status changed", map[string]interface{}{"lead_id": lead.Id, "from": string(old), "to": string(next), "by": p.Actor()})

	ref := lead.Ref()
	ref.OldStatus = string(old)
	s.publish(ctx, events.NewLeadStatusUpdated(ref, p.Actor()))

	res := mapper.ToLeadResponse(lead)
	return &res, nil
}

func (s *leadService) writeStatusChange(ctx context.Context, uow unitofwork.UnitOfWork, lead *entity.Lead, old, next entity.LeadStatus) (err error) {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = uow.Rollback()
		}
	}()

	if err = uow.LeadRepository().Update(ctx, lead); err != nil {
		return err
	}
	note := entity.NewSystemNote(lead.Id, entity.NoteTypeStatusChange, entity.StatusChangeText(old, next))
	if err = uow.LeadNoteRepository().Create(ctx, note); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *leadService) Reassign(ctx context.Context, p entity.Principal, leadId uint, req *dto.ReassignLeadRequest) (*dto.LeadResponse, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("Only administrators can reassign leads.")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	lead, err := s.loadForPrincipal(ctx, uow, p, leadId)
	if err != nil {
		return nil, err
	}

	provider, err := uow.ServiceProviderRepository().FindById(ctx, req.ServiceProviderId)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, apperr.Validation(map[string]string{"service_provider_id": "The selected service provider id is invalid."})
	}
	if !provider.IsActive {
		return nil, apperr.Validation(map[string]string{"service_provider_id": "The selected service provider is inactive."})
	}
	if lead.IsAssignedTo(provider.Id) {
		res := mapper.ToLeadResponse(lead)
		return &res, nil
	}

	text := fmt.Sprintf("Lead manually reassigned to %s", provider.Name)
	if p.Name != "" {
		text += " by " + p.Name
	}
	if err := s.writeAssignment(ctx, uow, lead, provider.Id, text); err != nil {
		return nil, fmt.Errorf("failed to reassign lead: %w", err)
	}
	lead.ServiceProvider = provider
	s.logger.Info("LeadService", "Lead reassigned", map[string]interface{}{"lead_id": lead.Id, "provider_id": provider.Id, "by": p.Id})

	s.publish(ctx, events.NewLeadAssigned(lead.Ref(), provider.Id, provider.Name, true, p.Actor()))
	s.notifyProvider(provider, lead, lead.Location)

	res := mapper.ToLeadResponse(lead)
	return &res, nil
}

func (s *leadService) ListNotes(ctx context.Context, p entity.Principal, leadId uint) ([]dto.LeadNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	lead, err := s.loadForPrincipal(ctx, uow, p, leadId)
	if err != nil {
		return nil, err
	}
	notes, err := uow.LeadNoteRepository().FindByLeadId(ctx, lead.Id)
	if err != nil {
		return nil, err
	}
	res := make([]dto.LeadNoteResponse, 0, len(notes))
	for _, n := range notes {
		res = append(res, mapper.ToLeadNoteResponse(n))
	}
	return res, nil
}

func (s *leadService) AddNote(ctx context.Context, p entity.Principal, leadId uint, req *dto.CreateLeadNoteRequest) (*dto.LeadNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	lead, err := s.loadForPrincipal(ctx, uow, p, leadId)
	if err != nil {
		return nil, err
	}

	note := entity.NewAuthoredNote(lead.Id, p, entity.NoteTypeNote, req.Note)
	if err := uow.LeadNoteRepository().Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}

	s.publish(ctx, events.NewLeadNoteCreated(lead.Ref(), events.NoteRef{
		Id:        note.Id,
		Note:      note.Note,
		Type:      string(note.Type),
		CreatedBy: p.Name,
	}, p.Actor()))

	res := mapper.ToLeadNoteResponse(note)
	return &res, nil
}
