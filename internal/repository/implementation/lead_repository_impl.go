package implementation

import (
	"context"
	"errors"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/model"
	"leadflow-be/internal/repository/contract"
	"leadflow-be/internal/repository/scope"
	"leadflow-be/internal/repository/specification"

	"gorm.io/gorm"
)

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

type LeadRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LeadMapper
}

func NewLeadRepository(db *gorm.DB) contract.LeadRepository {
	return &LeadRepositoryImpl{
		db:     db,
		mapper: mapper.NewLeadMapper(),
	}
}

func leadSpecs(f contract.LeadFilter) []specification.Specification {
	var specs []specification.Specification
	if f.LocationId != 0 {
		specs = append(specs, specification.LeadByLocation{LocationId: f.LocationId})
	}
	if f.ServiceProviderId != 0 {
		specs = append(specs, specification.LeadByProvider{ProviderId: f.ServiceProviderId})
	}
	if f.Status != "" {
		specs = append(specs, specification.LeadByStatus{Status: f.Status})
	}
	if f.DateFrom != nil || f.DateTo != nil {
		specs = append(specs, specification.CreatedBetween{From: f.DateFrom, To: f.DateTo})
	}
	return specs
}

func (r *LeadRepositoryImpl) Create(ctx context.Context, lead *entity.Lead) error {
	m := r.mapper.ToModel(lead)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	lead.Id = m.Id
	lead.CreatedAt = m.CreatedAt
	lead.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *LeadRepositoryImpl) Update(ctx context.Context, lead *entity.Lead) error {
	result := r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("id = ?", lead.Id).
		Updates(map[string]interface{}{
			"status":              string(lead.Status),
			"service_provider_id": lead.ServiceProviderId,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LeadRepositoryImpl) FindById(ctx context.Context, id uint) (*entity.Lead, error) {
	var m model.Lead
	err := r.db.WithContext(ctx).
		Preload("Location").
		Preload("ServiceProvider").
		First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *LeadRepositoryImpl) FindAll(ctx context.Context, filter contract.LeadFilter) ([]*entity.Lead, error) {
	var models []*model.Lead
	specs := append(leadSpecs(filter),
		specification.Pagination{Limit: filter.Limit, Offset: filter.Offset},
		specification.Preload{Relation: "Location"},
		specification.Preload{Relation: "ServiceProvider"},
	)
	query := applySpecifications(r.db.WithContext(ctx).Scopes(scope.NewestFirst("leads")), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *LeadRepositoryImpl) Count(ctx context.Context, filter contract.LeadFilter) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Lead{}), leadSpecs(filter)...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LeadRepositoryImpl) CountOpenByProvider(ctx context.Context, providerIds []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(providerIds))
	for _, id := range providerIds {
		counts[id] = 0
	}
	if len(providerIds) == 0 {
		return counts, nil
	}

	var rows []struct {
		ServiceProviderId uint
		Total             int64
	}
	err := applySpecifications(r.db.WithContext(ctx).Model(&model.Lead{}), specification.OpenLeads{}).
		Select("service_provider_id, COUNT(*) AS total").
		Where("service_provider_id IN ?", providerIds).
		Group("service_provider_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ServiceProviderId] = row.Total
	}
	return counts, nil
}

type LeadNoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LeadMapper
}

func NewLeadNoteRepository(db *gorm.DB) contract.LeadNoteRepository {
	return &LeadNoteRepositoryImpl{db: db, mapper: mapper.NewLeadMapper()}
}

func (r *LeadNoteRepositoryImpl) Create(ctx context.Context, note *entity.LeadNote) error {
	m := r.mapper.NoteToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	note.Id = m.Id
	note.CreatedAt = m.CreatedAt
	return nil
}

func (r *LeadNoteRepositoryImpl) FindByLeadId(ctx context.Context, leadId uint) ([]*entity.LeadNote, error) {
	var models []*model.LeadNote
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("ServiceProvider").
		Where("lead_id = ?", leadId).
		Scopes(scope.OldestFirst("lead_notes")).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*entity.LeadNote, 0, len(models))
	for _, m := range models {
		out = append(out, r.mapper.NoteToEntity(m))
	}
	return out, nil
}
