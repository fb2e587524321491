package ports

import (
	"context"
	"time"

	"github.com/seu-repo/ev-charge-scheduler/internal/domain"
)

// CommitmentRepository persists the (charger_id, interval_start) -> set of
// (vehicle_id, delivered_kWh, arrival, departure) table described in
// spec.md §6. It is the source of truth the dispatcher reads before
// calling the Scheduler and writes after.
type CommitmentRepository interface {
	Save(ctx context.Context, c *domain.Commitment) error
	FindByCharger(ctx context.Context, chargerID string, from, to time.Time) ([]domain.Commitment, error)
	FindByVehicle(ctx context.Context, vehicleID string) ([]domain.Commitment, error)
	DeleteByVehicle(ctx context.Context, vehicleID string) error
}

// PendingScheduleRequest is one request waiting in the dispatcher's queue.
type PendingScheduleRequest struct {
	ID        string
	ChargerID string
	Vehicle   domain.VehicleRequest
	QueuedAt  time.Time
}

// SchedulingService exposes the scheduling core to the HTTP handlers behind
// a single port. The dispatcher builds its own Scheduler and does not use it.
type SchedulingService interface {
	Submit(ctx context.Context, vehicles []domain.VehicleRequest, intervals []domain.Interval) (*SchedulingResult, error)
	LastSchedule(ctx context.Context, vehicleID string) (*domain.VehicleSchedule, domain.ScheduleStatus, error)
}

// SchedulingResult is the API-facing projection of a Timetable.
type SchedulingResult struct {
	Schedules map[string]domain.VehicleSchedule
	Statuses  map[string]domain.ScheduleStatus
}
