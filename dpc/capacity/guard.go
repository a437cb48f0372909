// Package capacity enforces provider patient-capacity limits. The guard is
// the only code path allowed to move a provider's patient counter.
package capacity

import (
	"context"

	"github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/models"
)

type Guard struct {
	repository models.ProviderRepository
}

func NewGuard(repository models.ProviderRepository) *Guard {
	return &Guard{repository}
}

// Reserve claims one patient slot with the provider. The underlying check
// and increment are one conditional statement; when two reservations race for
// the last slot exactly one succeeds and the other receives
// CapacityExceededError.
func (g *Guard) Reserve(ctx context.Context, providerID uint) error {
	won, err := g.repository.ReservePatientSlot(ctx, providerID)
	if err != nil {
		return err
	}
	if !won {
		return &errors.CapacityExceededError{ProviderID: providerID}
	}
	return nil
}

// Release returns a previously reserved slot. Releasing with no outstanding
// reservation is a caller bug and reported as DoubleReleaseError; the counter
// never goes below zero.
func (g *Guard) Release(ctx context.Context, providerID uint) error {
	released, err := g.repository.ReleasePatientSlot(ctx, providerID)
	if err != nil {
		return err
	}
	if !released {
		return &errors.DoubleReleaseError{ProviderID: providerID}
	}
	return nil
}
