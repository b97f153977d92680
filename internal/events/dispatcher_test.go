package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher_RunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventUserSignedUp, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.UserID)
		return errors.New("boom")
	})
	d.Subscribe(EventUserSignedUp, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.UserID)
		return nil
	})
	d.Subscribe(EventPasswordChanged, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventUserSignedUp, "u1", nil))
	require.Error(t, err)
	assert.Equal(t, []string{"first:u1", "second:u1"}, calls)
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventPasswordReset, "u1", PasswordChangedPayload{Via: "reset"})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, EventPasswordReset, e.Type)
	assert.False(t, e.Timestamp.IsZero())
}
