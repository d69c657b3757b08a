package implementation

import (
	"context"

	"leadflow-be/internal/repository/contract"

	"gorm.io/gorm"
)

type AssignmentCursorRepositoryImpl struct {
	db *gorm.DB
}

func NewAssignmentCursorRepository(db *gorm.DB) contract.AssignmentCursorRepository {
	return &AssignmentCursorRepositoryImpl{db: db}
}

// Next is a single atomic upsert, safe across API instances.
func (r *AssignmentCursorRepositoryImpl) Next(ctx context.Context, locationId uint) (uint64, error) {
	var position uint64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO assignment_cursors (location_id, position, updated_at)
		VALUES (?, 1, NOW())
		ON CONFLICT (location_id)
		DO UPDATE SET position = assignment_cursors.position + 1, updated_at = NOW()
		RETURNING position`, locationId).Scan(&position).Error
	if err != nil {
		return 0, err
	}
	return position, nil
}
