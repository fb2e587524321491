// Package scheduling wires the scheduling core (internal/scheduling) into
// the platform's service layer: a synchronous SchedulingService for
// direct/API invocation, and a Dispatcher that drives the external
// poll-schedule-write loop described in spec.md §5/§9.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ev-charge-scheduler/internal/domain"
	"github.com/seu-repo/ev-charge-scheduler/internal/ports"
	"github.com/seu-repo/ev-charge-scheduler/internal/scheduling"
)

// Config holds the tunables the scheduling core needs at the service layer.
type Config struct {
	IntervalMinutes int
	RateTable       domain.ChargerRateTable
	Strategy        string // "first_choice" | "most_renewables" | "cheapest_pricing"
}

// DefaultConfig returns the teacher's usual 15-minute interval default.
func DefaultConfig() *Config {
	return &Config{
		IntervalMinutes: 15,
		RateTable:       domain.ChargerRateTable{},
		Strategy:        "first_choice",
	}
}

// Service implements ports.SchedulingService.
type Service struct {
	commitmentRepo ports.CommitmentRepository
	config         *Config
	log            *zap.Logger
}

// NewService creates a new scheduling service.
func NewService(commitmentRepo ports.CommitmentRepository, config *Config, log *zap.Logger) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{commitmentRepo: commitmentRepo, config: config, log: log}
}

func (s *Service) newScheduler() *scheduling.Scheduler {
	return newSchedulerFromConfig(s.config, s.log)
}

func newSchedulerFromConfig(config *Config, log *zap.Logger) *scheduling.Scheduler {
	var strategy scheduling.Allocator
	switch config.Strategy {
	case "most_renewables":
		strategy = scheduling.MostRenewablesAllocation{}
	case "cheapest_pricing":
		strategy = scheduling.CheapestPricingAllocation{}
	default:
		strategy = scheduling.FirstChoiceAllocation{}
	}
	return scheduling.NewScheduler(strategy, config.RateTable, config.IntervalMinutes, log)
}

// Submit runs the scheduler synchronously over the given vehicles and
// intervals and, for every vehicle that ends up SCHEDULED, persists its
// delivered commitments.
func (s *Service) Submit(ctx context.Context, vehicles []domain.VehicleRequest, intervals []domain.Interval) (*ports.SchedulingResult, error) {
	tt, err := s.newScheduler().Schedule(vehicles, intervals)
	if err != nil {
		return nil, fmt.Errorf("scheduling: submit failed: %w", err)
	}
	if tt == nil {
		return nil, nil
	}

	schedules := tt.GetSchedules()
	statuses := tt.GetScheduleStatus()

	if s.commitmentRepo != nil {
		l := time.Duration(s.config.IntervalMinutes) * time.Minute
		for t, bucket := range tt.Entries {
			intervalStart := intervals[t].Start
			for _, e := range bucket {
				if e.Charge <= 0 || statuses[e.VehicleID] != domain.StatusScheduled {
					continue
				}
				commitment := &domain.Commitment{
					VehicleID: e.VehicleID,
					ChargerID: e.ChargerID,
					Charge:    e.Charge,
					Arrival:   intervalStart,
					Departure: intervalStart.Add(l),
				}
				if err := s.commitmentRepo.Save(ctx, commitment); err != nil {
					s.log.Error("scheduling: failed to persist commitment", zap.Error(err), zap.String("vehicle_id", e.VehicleID))
				}
			}
		}
	}

	return &ports.SchedulingResult{Schedules: schedules, Statuses: statuses}, nil
}

// LastSchedule looks up the persisted commitments for a vehicle and
// reconstructs its summary, matching Timetable.GetSchedules' shape.
func (s *Service) LastSchedule(ctx context.Context, vehicleID string) (*domain.VehicleSchedule, domain.ScheduleStatus, error) {
	commitments, err := s.commitmentRepo.FindByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, domain.StatusScheduleInfeasible, fmt.Errorf("scheduling: lookup failed: %w", err)
	}
	if len(commitments) == 0 {
		return nil, domain.StatusScheduleInfeasible, nil
	}

	var sched domain.VehicleSchedule
	for i, c := range commitments {
		sched.Charge += c.Charge
		if i == 0 || c.Arrival.Before(sched.Arrival) {
			sched.Arrival = c.Arrival
		}
		if i == 0 || c.Departure.After(sched.Departure) {
			sched.Departure = c.Departure
		}
	}
	return &sched, domain.StatusScheduled, nil
}
