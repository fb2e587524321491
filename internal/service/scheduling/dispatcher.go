package scheduling

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ev-charge-scheduler/internal/adapter/queue"
	"github.com/seu-repo/ev-charge-scheduler/internal/domain"
	"github.com/seu-repo/ev-charge-scheduler/internal/ports"
)

// PendingRequestSubject is the NATS/RabbitMQ subject the dispatcher
// subscribes to for incoming scheduling requests.
const PendingRequestSubject = "scheduling.requests.pending"

// DeferredReason is reported when a retried schedule still clashes with an
// outside reservation (spec.md §5, §7).
const DeferredReason = "suggested-window-taken"

// Dispatcher is the external poll -> read commitments -> schedule ->
// classify -> write state machine described in spec.md §5/§9. It runs one
// request at a time, guarded by a single lock over the commitment store, and
// applies exactly one retry when the scheduler's output clashes with an
// independent, already-committed reservation on the same charger.
type Dispatcher struct {
	mu sync.Mutex

	commitmentRepo ports.CommitmentRepository
	mq             queue.MessageQueue
	config         *Config
	log            *zap.Logger
}

// NewDispatcher constructs a Dispatcher subscribed to mq.
func NewDispatcher(commitmentRepo ports.CommitmentRepository, mq queue.MessageQueue, config *Config, log *zap.Logger) *Dispatcher {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{commitmentRepo: commitmentRepo, mq: mq, config: config, log: log}
}

// Start subscribes to the pending-request subject; requests are then
// processed as they arrive. It returns once the subscription is registered,
// with the error from registering it, if any.
func (d *Dispatcher) Start(ctx context.Context) error {
	return d.mq.Subscribe(PendingRequestSubject, func(data []byte) error {
		var req ports.PendingScheduleRequest
		if err := json.Unmarshal(data, &req); err != nil {
			d.log.Error("dispatcher: malformed pending request payload", zap.Error(err))
			return err
		}
		d.handle(ctx, req)
		return nil
	})
}

// handle runs one request through the full poll -> read -> schedule ->
// classify -> write cycle under the dispatcher's single lock.
func (d *Dispatcher) handle(ctx context.Context, req ports.PendingScheduleRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()

	window := 24 * time.Hour
	existing, err := d.commitmentRepo.FindByCharger(ctx, req.ChargerID, req.QueuedAt, req.QueuedAt.Add(window))
	if err != nil {
		d.log.Error("dispatcher: failed to read existing commitments", zap.Error(err), zap.String("charger_id", req.ChargerID))
		return
	}

	intervals := intervalsFromCommitments(existing, req.Vehicle.Arrival, req.Vehicle.Departure, d.config.IntervalMinutes, req.ChargerID)

	// Only reservations held by other vehicles count as clashes.
	var others []domain.Commitment
	for _, c := range existing {
		if c.VehicleID != req.Vehicle.VehicleID {
			others = append(others, c)
		}
	}

	attempt := d.scheduleOnce(req, intervals)
	if attempt.status == domain.StatusScheduled {
		if clashed, suggested := d.clashes(others, req.ChargerID, attempt.arrival, attempt.departure); clashed {
			req.Vehicle.Arrival = suggested
			req.Vehicle.Departure = suggested.Add(attempt.departure.Sub(attempt.arrival))
			retryIntervals := intervalsFromCommitments(existing, req.Vehicle.Arrival, req.Vehicle.Departure, d.config.IntervalMinutes, req.ChargerID)
			attempt = d.scheduleOnce(req, retryIntervals)
			if attempt.status == domain.StatusScheduled {
				if clashed2, _ := d.clashes(others, req.ChargerID, attempt.arrival, attempt.departure); clashed2 {
					d.log.Info("dispatcher: deferring request", zap.String("vehicle_id", req.Vehicle.VehicleID), zap.String("reason", DeferredReason))
					return
				}
			}
		}
	}

	if attempt.status == domain.StatusScheduled && d.commitmentRepo != nil {
		for _, c := range attempt.commitments {
			if err := d.commitmentRepo.Save(ctx, &c); err != nil {
				d.log.Error("dispatcher: failed to write commitment", zap.Error(err))
			}
		}
	}

	d.log.Info("dispatcher: classified request",
		zap.String("vehicle_id", req.Vehicle.VehicleID),
		zap.String("status", attempt.status.String()),
	)
}

// scheduleAttempt is the outcome of one scheduling pass: the vehicle's
// resulting window and status, plus the commitments that attempt would
// write if the dispatcher ultimately accepts it. Nothing is persisted here —
// handle only writes attempt.commitments once it has confirmed the final,
// non-clashing attempt (spec.md §5, §7).
type scheduleAttempt struct {
	arrival, departure time.Time
	status             domain.ScheduleStatus
	commitments        []domain.Commitment
}

func (d *Dispatcher) scheduleOnce(req ports.PendingScheduleRequest, intervals []domain.Interval) scheduleAttempt {
	tt, err := newSchedulerFromConfig(d.config, d.log).Schedule([]domain.VehicleRequest{req.Vehicle}, intervals)
	if err != nil || tt == nil {
		return scheduleAttempt{status: domain.StatusScheduleInfeasible}
	}

	status := tt.GetScheduleStatus()[req.Vehicle.VehicleID]
	sched, ok := tt.GetSchedules()[req.Vehicle.VehicleID]
	if !ok || status != domain.StatusScheduled {
		return scheduleAttempt{status: status}
	}

	l := time.Duration(d.config.IntervalMinutes) * time.Minute
	var commitments []domain.Commitment
	for t, bucket := range tt.Entries {
		intervalStart := intervals[t].Start
		for _, e := range bucket {
			if e.VehicleID != req.Vehicle.VehicleID || e.Charge <= 0 {
				continue
			}
			commitments = append(commitments, domain.Commitment{
				VehicleID: e.VehicleID,
				ChargerID: e.ChargerID,
				Charge:    e.Charge,
				Arrival:   intervalStart,
				Departure: intervalStart.Add(l),
			})
		}
	}

	return scheduleAttempt{arrival: sched.Arrival, departure: sched.Departure, status: status, commitments: commitments}
}

// clashes reports whether [arrival, departure) on chargerID overlaps one of
// existing's commitments (handle passes only those of other vehicles), and
// if so, the latest departure among the overlapping commitments as the
// suggested new start time.
func (d *Dispatcher) clashes(existing []domain.Commitment, chargerID string, arrival, departure time.Time) (bool, time.Time) {
	var latestDeparture time.Time
	clashed := false
	for _, c := range existing {
		if c.ChargerID != chargerID {
			continue
		}
		if arrival.Before(c.Departure) && c.Arrival.Before(departure) {
			clashed = true
			if c.Departure.After(latestDeparture) {
				latestDeparture = c.Departure
			}
		}
	}
	return clashed, latestDeparture
}

// placeholderCapacityKWh stands in for grid production/capacity data the
// dispatcher has no source for: it only knows about committed reservations,
// not forecasted production or tariffs, so it synthesizes an effectively
// unconstrained traditional supply rather than leaving the production
// balance constraint unsatisfiable at zero.
const placeholderCapacityKWh = 1 << 20

func intervalsFromCommitments(commitments []domain.Commitment, from, to time.Time, intervalMinutes int, chargerID string) []domain.Interval {
	l := time.Duration(intervalMinutes) * time.Minute
	var out []domain.Interval
	for t := from; t.Before(to); t = t.Add(l) {
		iv := domain.Interval{
			Start:             t,
			TraditionalProd:   placeholderCapacityKWh,
			MaxCapacity:       placeholderCapacityKWh,
			PriceTariff:       1,
			AvailableChargers: []string{chargerID},
		}
		for _, c := range commitments {
			if !c.Arrival.After(t) && c.Departure.After(t) {
				iv.ExistingCommitments = append(iv.ExistingCommitments, c)
			}
		}
		out = append(out, iv)
	}
	return out
}
