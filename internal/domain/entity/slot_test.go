package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfKeepsCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	in := time.Date(2024, 2, 29, 23, 30, 0, 0, loc)

	got := DateOf(in)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)
}

func TestSlotString(t *testing.T) {
	date, err := ParseDate("2024-03-01")
	require.NoError(t, err)

	slot := NewSlot(7, date.Add(15*time.Hour))
	assert.Equal(t, "2024-03-01/7", slot.String())
	assert.Equal(t, NewSlot(7, date), slot)
}

func TestAvailabilityNullIsClosed(t *testing.T) {
	a := &AvailabilityDate{}
	assert.False(t, a.IsAvailable())

	open := true
	a.Availability = &open
	assert.True(t, a.IsAvailable())
}

func TestUserActivation(t *testing.T) {
	u := &User{}
	assert.False(t, u.Active())

	u.Activate()
	assert.True(t, u.Active())

	u.Deactivate()
	assert.False(t, u.Active())
}

func TestBlockedTokenExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	forever := &BlockedToken{JTI: "a"}
	assert.False(t, forever.IsExpired(now))

	past := now.Add(-time.Second)
	assert.True(t, (&BlockedToken{JTI: "b", Expires: &past}).IsExpired(now))
	assert.True(t, (&BlockedToken{JTI: "c", Expires: &now}).IsExpired(now))

	future := now.Add(time.Minute)
	assert.False(t, (&BlockedToken{JTI: "d", Expires: &future}).IsExpired(now))
}
