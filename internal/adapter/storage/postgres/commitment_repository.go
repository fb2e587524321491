package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/ev-charge-scheduler/internal/domain"
	"github.com/seu-repo/ev-charge-scheduler/internal/ports"
)

type CommitmentRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCommitmentRepository(db *gorm.DB, log *zap.Logger) ports.CommitmentRepository {
	return &CommitmentRepository{
		db:  db,
		log: log,
	}
}

func (r *CommitmentRepository) Save(ctx context.Context, c *domain.Commitment) error {
	result := r.db.WithContext(ctx).Table("commitments").Create(c)
	if result.Error != nil {
		r.log.Error("Failed to save commitment", zap.Error(result.Error), zap.String("vehicle_id", c.VehicleID))
		return result.Error
	}
	return nil
}

func (r *CommitmentRepository) FindByCharger(ctx context.Context, chargerID string, from, to time.Time) ([]domain.Commitment, error) {
	var commitments []domain.Commitment
	result := r.db.WithContext(ctx).Table("commitments").
		Where("charger_id = ? AND arrival < ? AND departure > ?", chargerID, to, from).
		Order("arrival ASC").
		Find(&commitments)
	if result.Error != nil {
		return nil, result.Error
	}
	return commitments, nil
}

func (r *CommitmentRepository) FindByVehicle(ctx context.Context, vehicleID string) ([]domain.Commitment, error) {
	var commitments []domain.Commitment
	result := r.db.WithContext(ctx).Table("commitments").
		Where("vehicle_id = ?", vehicleID).
		Order("arrival ASC").
		Find(&commitments)
	if result.Error != nil {
		return nil, result.Error
	}
	return commitments, nil
}

func (r *CommitmentRepository) DeleteByVehicle(ctx context.Context, vehicleID string) error {
	result := r.db.WithContext(ctx).Table("commitments").Where("vehicle_id = ?", vehicleID).Delete(&domain.Commitment{})
	return result.Error
}
