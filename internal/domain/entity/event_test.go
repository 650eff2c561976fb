package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusGoing.Valid())
	assert.True(t, StatusMaybe.Valid())
	assert.True(t, StatusNotGoing.Valid())

	assert.False(t, Status("").Valid())
	assert.False(t, Status("attending").Valid())
	assert.False(t, Status("notgoing").Valid())
}

func TestStartsAt(t *testing.T) {
	e := &Event{Date: "2026-04-18", Time: "19:00"}
	got, err := e.StartsAt(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 18, 19, 0, 0, 0, time.UTC), got)

	// Seconds in the time component are tolerated.
	e = &Event{Date: "2026-04-18", Time: "19:00:30"}
	got, err = e.StartsAt(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Second())

	e = &Event{Date: "18-04-2026", Time: "19:00"}
	_, err = e.StartsAt(time.UTC)
	assert.Error(t, err)
}
