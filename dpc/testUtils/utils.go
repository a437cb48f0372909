package testUtils

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"
	"time"

	"github.com/pborman/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dpcdirect/dpc-app/dpc/models"
)

// CtxMatcher allow us to validate that the caller supplied a context.Context argument
// See: https://github.com/stretchr/testify/issues/519
var CtxMatcher = mock.MatchedBy(func(ctx context.Context) bool { return true })

// TestActor returns an actor suitable for exercising audited operations.
func TestActor(actorType models.ActorType) models.Actor {
	return models.Actor{
		ID:        uuid.NewRandom(),
		Type:      actorType,
		IPAddress: "127.0.0.1",
		UserAgent: "dpc-tests",
	}
}

// MonthPeriod returns the closed date range covering the given month.
func MonthPeriod(year int, month time.Month) models.Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return models.Period{Start: start, End: start.AddDate(0, 1, -1)}
}

func RandomHexID() string {
	b, err := someRandomBytes(4)
	if err != nil {
		return "not_a_random_client_id"
	}
	return fmt.Sprintf("%x", b)
}

// RandomNPI returns a 10 digit string that represents an NPI
func RandomNPI(t *testing.T) string {
	b, err := someRandomBytes(8)
	assert.NoError(t, err)
	var n uint64
	for _, v := range b {
		n = n<<8 | uint64(v)
	}
	return fmt.Sprintf("%010d", n%10000000000)
}

func someRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}
