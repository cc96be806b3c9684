package httpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/security-guardian-dashboard/internal/application/app"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/application/clocktest"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/middleware"
)

func TestSessionStoreExpiry(t *testing.T) {
	clk := clocktest.New(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewSessionStore(10*time.Minute, clk)

	a := &app.App{}
	id := s.Create(a)
	got, ok := s.Get(id)
	assert.True(t, ok)
	assert.Same(t, a, got)

	clk.Advance(9 * time.Minute)
	_, ok = s.Get(id)
	assert.True(t, ok, "access must extend the session")

	clk.Advance(11 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	_, ok = s.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestSessionStoreRejectsUnknownIDs(t *testing.T) {
	s := NewSessionStore(time.Minute, clocktest.New(time.Now()))
	_, ok := s.Get("")
	assert.False(t, ok)
	_, ok = s.Get("not-a-uuid")
	assert.False(t, ok)
}

func TestSessionStoreGetEvictionUpdatesGauge(t *testing.T) {
	clk := clocktest.New(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewSessionStore(time.Minute, clk)

	id := s.Create(&app.App{})
	s.Create(&app.App{})
	assert.EqualValues(t, 2, middleware.GetMetrics()["active_sessions"])

	clk.Advance(2 * time.Minute)
	_, ok := s.Get(id)
	assert.False(t, ok)
	assert.EqualValues(t, 1, middleware.GetMetrics()["active_sessions"])
}
