package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreInsertAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e := newEvent(Event{
			Type:   TypeResponse,
			Intent: "arrows_spine",
		})
		e.Timestamp = fmt.Sprintf("2026-08-29T10:00:0%dZ", i)
		payload, err := json.Marshal(e)
		require.NoError(t, err)
		require.NoError(t, s.Insert(ctx, e, payload))
	}

	events, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// Newest first.
	assert.Equal(t, "2026-08-29T10:00:02Z", events[0].Timestamp)
	assert.Equal(t, "arrows_spine", events[0].Intent)
}

func TestStoreListLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := newEvent(Event{Type: TypeRequest})
		payload, err := json.Marshal(e)
		require.NoError(t, err)
		require.NoError(t, s.Insert(ctx, e, payload))
	}

	events, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestStoreListEmpty(t *testing.T) {
	s := newTestStore(t)
	events, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLoggerWithStore(t *testing.T) {
	s := newTestStore(t)
	l := NewLogger(true, WithStore(s))

	l.Log(context.Background(), Event{Type: TypeResponse, Intent: "leagues_signup"})
	l.Close()

	events, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "leagues_signup", events[0].Intent)
}
