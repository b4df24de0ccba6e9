package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubReservationHooks struct {
	reserved  bool
	cancelled bool
}

func (s *stubReservationHooks) Reserve(ctx context.Context, h *Handle) (any, error) {
	s.reserved = true
	return map[string]string{"ready": "yes"}, nil
}

func (s *stubReservationHooks) CancelReservation(ctx context.Context, h *Handle) {
	s.cancelled = true
}

func TestWithReservationHooksAttachesToTaskHandler(t *testing.T) {
	hooks := &stubReservationHooks{}
	th := &taskHandler{AutoFinishAfterHandler: true}
	WithReservationHooks(hooks)(th)

	assert.Same(t, hooks, th.Reservation)
	assert.Nil(t, th.Synchronization)
}

func TestWithManualFinishDisablesAutoFinish(t *testing.T) {
	th := &taskHandler{AutoFinishAfterHandler: true}
	WithManualFinish()(th)
	assert.False(t, th.AutoFinishAfterHandler)
}

func TestWithErrorHandlerAttaches(t *testing.T) {
	fn := func(ctx context.Context, h *Handle, err error) error { return err }
	th := &taskHandler{}
	WithErrorHandler(fn)(th)
	assert.NotNil(t, th.OnError)
}
