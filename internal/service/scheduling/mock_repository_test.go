package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/seu-repo/ev-charge-scheduler/internal/domain"
)

// mockCommitmentRepository is a mock implementation of ports.CommitmentRepository
type mockCommitmentRepository struct {
	mu          sync.Mutex
	commitments []domain.Commitment
	saveErr     error
}

func newMockCommitmentRepository() *mockCommitmentRepository {
	return &mockCommitmentRepository{}
}

func (m *mockCommitmentRepository) Save(ctx context.Context, c *domain.Commitment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitments = append(m.commitments, *c)
	return nil
}

func (m *mockCommitmentRepository) FindByCharger(ctx context.Context, chargerID string, from, to time.Time) ([]domain.Commitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Commitment
	for _, c := range m.commitments {
		if c.ChargerID == chargerID && !c.Arrival.After(to) && c.Departure.After(from) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommitmentRepository) FindByVehicle(ctx context.Context, vehicleID string) ([]domain.Commitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Commitment
	for _, c := range m.commitments {
		if c.VehicleID == vehicleID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommitmentRepository) DeleteByVehicle(ctx context.Context, vehicleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []domain.Commitment
	for _, c := range m.commitments {
		if c.VehicleID != vehicleID {
			kept = append(kept, c)
		}
	}
	m.commitments = kept
	return nil
}
