package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus_ExpiredIsDerived(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	pending := SigningRequest{Status: StatusPending, ExpiresAt: now.Add(24 * time.Hour)}
	assert.Equal(t, StatusPending, pending.EffectiveStatus(now))

	overdue := SigningRequest{Status: StatusPending, ExpiresAt: now.Add(-24 * time.Hour)}
	assert.Equal(t, StatusExpired, overdue.EffectiveStatus(now))
	// The stored status never changes; only the read derives expired.
	assert.Equal(t, StatusPending, overdue.Status)

	// A signed request never reads as expired, even past its deadline.
	signed := SigningRequest{Status: StatusSigned, ExpiresAt: now.Add(-24 * time.Hour)}
	assert.Equal(t, StatusSigned, signed.EffectiveStatus(now))
}

func TestExpiringSoon(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	soon := SigningRequest{Status: StatusPending, ExpiresAt: now.Add(3 * 24 * time.Hour)}
	assert.True(t, soon.ExpiringSoon(now, 7))

	far := SigningRequest{Status: StatusPending, ExpiresAt: now.Add(20 * 24 * time.Hour)}
	assert.False(t, far.ExpiringSoon(now, 7))

	past := SigningRequest{Status: StatusPending, ExpiresAt: now.Add(-time.Hour)}
	assert.False(t, past.ExpiringSoon(now, 7))

	signed := SigningRequest{Status: StatusSigned, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, signed.ExpiringSoon(now, 7))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleEmployee.Valid())
	assert.True(t, RoleHR.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}
