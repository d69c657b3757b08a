package mapper

import (
	"encoding/json"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"

	"github.com/jinzhu/copier"
)

// Entity to response projections shared by services.

func ToLeadResponse(l *entity.Lead) dto.LeadResponse {
	res := dto.LeadResponse{
		Id:                l.Id,
		Name:              l.Name,
		Phone:             l.Phone,
		Email:             l.Email,
		ZipCode:           l.ZipCode,
		ProjectType:       string(l.ProjectType),
		Timing:            string(l.Timing),
		Notes:             l.Notes,
		Status:            string(l.Status),
		LocationId:        l.LocationId,
		ServiceProviderId: l.ServiceProviderId,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
	if l.Location != nil {
		res.Location = &dto.LeadLocationSummary{Id: l.Location.Id, Name: l.Location.Name, Slug: l.Location.Slug}
	}
	if l.ServiceProvider != nil {
		res.ServiceProvider = &dto.LeadProviderSummary{Id: l.ServiceProvider.Id, Name: l.ServiceProvider.Name, Email: l.ServiceProvider.Email}
	}
	for _, n := range l.LeadNotes {
		res.LeadNotes = append(res.LeadNotes, ToLeadNoteResponse(n))
	}
	return res
}

func ToLeadNoteResponse(n *entity.LeadNote) dto.LeadNoteResponse {
	createdBy := n.AuthorName
	if n.IsSystem() {
		createdBy = "System"
	}
	return dto.LeadNoteResponse{
		Id:        n.Id,
		LeadId:    n.LeadId,
		Note:      n.Note,
		Type:      string(n.Type),
		CreatedBy: createdBy,
		CreatedAt: n.CreatedAt,
	}
}

func ToPlanResponse(p *entity.SubscriptionPlan) *dto.PlanResponse {
	if p == nil {
		return nil
	}
	var res dto.PlanResponse
	_ = copier.Copy(&res, p)
	res.Interval = string(p.Interval)
	if res.Features == nil {
		res.Features = []string{}
	}
	return &res
}

func ToSubscriptionResponse(s *entity.Subscription) *dto.SubscriptionResponse {
	if s == nil {
		return nil
	}
	return &dto.SubscriptionResponse{
		Status:           string(s.Status),
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		Plan:             ToPlanResponse(s.Plan),
	}
}

func ToLocationResponse(l *entity.Location) dto.LocationResponse {
	var res dto.LocationResponse
	_ = copier.Copy(&res, l)
	res.AssignmentAlgorithm = string(l.AssignmentAlgorithm)
	res.ServiceProviders = make([]dto.ProviderSummary, 0, len(l.ServiceProviders))
	for _, p := range l.ServiceProviders {
		res.ServiceProviders = append(res.ServiceProviders, dto.ProviderSummary{Id: p.Id, Name: p.Name, Email: p.Email, IsActive: p.IsActive})
	}
	return res
}

func ToProviderResponse(p *entity.ServiceProvider) dto.ProviderResponse {
	res := dto.ProviderResponse{
		Id:           p.Id,
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		Address:      p.Address,
		IsActive:     p.IsActive,
		Locations:    make([]dto.LocationSummary, 0, len(p.Locations)),
		Subscription: ToSubscriptionResponse(p.Subscription),
		CreatedAt:    p.CreatedAt,
	}
	for _, l := range p.Locations {
		res.Locations = append(res.Locations, dto.LocationSummary{Id: l.Id, Name: l.Name, Slug: l.Slug})
	}
	return res
}

func ToNotificationResponse(n *entity.Notification) dto.NotificationResponse {
	data, _ := json.Marshal(n.Data)
	return dto.NotificationResponse{
		Id:        n.Id,
		Type:      string(n.Type),
		Data:      data,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
