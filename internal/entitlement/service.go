package entitlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tcg2i/tcg-service/internal/models"
)

// ErrNotEligible is returned by Collect when no schedule slot has elapsed
// since the user's last collection.
var ErrNotEligible = errors.New("free booster not available yet")

// CollectionStore is the slice of the persistence layer the service needs.
// UpdateCollection must apply mutate atomically against the stored record so
// two concurrent collects cannot both pass the eligibility check.
type CollectionStore interface {
	GetCollection(ctx context.Context, userID uuid.UUID) (*models.Collection, error)
	UpdateCollection(ctx context.Context, userID uuid.UUID, mutate func(*models.Collection) error) (*models.Collection, error)
}

// Service checks and applies free-booster entitlements against a store.
type Service struct {
	Store    CollectionStore
	Schedule []TimeOfDay

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewService(store CollectionStore) *Service {
	return &Service{Store: store, Schedule: DefaultSchedule, Now: time.Now}
}

// Availability reports the caller's current entitlement state.
func (s *Service) Availability(ctx context.Context, userID uuid.UUID) (Availability, error) {
	col, err := s.Store.GetCollection(ctx, userID)
	if err != nil {
		return Availability{}, err
	}
	return CheckAvailability(col.LastCollectedAt, s.Now(), s.Schedule), nil
}

// Collect grants one booster if a schedule slot has elapsed. The balance
// increment and the lastCollected stamp land in a single store update, so a
// failed write leaves the record untouched and the user still collectible.
func (s *Service) Collect(ctx context.Context, userID uuid.UUID) (*models.Collection, error) {
	now := s.Now()
	return s.Store.UpdateCollection(ctx, userID, func(c *models.Collection) error {
		av := CheckAvailability(c.LastCollectedAt, now, s.Schedule)
		if !av.CanCollect {
			return ErrNotEligible
		}
		c.NbBooster++
		stamp := now
		c.LastCollectedAt = &stamp
		return nil
	})
}
