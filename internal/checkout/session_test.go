package checkout

import (
	"sync"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	r := NewRegistry()
	s := r.Create("cust-1")

	got, err := r.Get("cust-1", s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	view := got.View()
	assert.Equal(t, StepShipping, view.Step)
	assert.Equal(t, StateNotStarted, view.State)
	assert.False(t, view.Busy)

	_, err = r.Get("cust-2", s.ID)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	_, err = r.Get("cust-1", uuid.New())
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestRegistry_PruneKeepsBusySessions(t *testing.T) {
	r := NewRegistry()
	idle := r.Create("cust-1")
	busy := r.Create("cust-1")

	busy.mu.Lock()
	busy.busy = true
	busy.state = StateAwaitingPayment
	busy.mu.Unlock()

	removed := r.Prune(time.Now().Add(time.Minute))

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, r.Len())
	_, err := r.Get("cust-1", idle.ID)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
	_, err = r.Get("cust-1", busy.ID)
	assert.NoError(t, err)
}

func TestSession_BeginIsExclusive(t *testing.T) {
	s := newSession("cust-1")
	s.step = StepPayment
	s.address = &model.Address{ID: uuid.New(), FirstName: "Asha"}

	const workers = 50
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.begin(model.PaymentMethodGateway); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, StateCreatingOrder, s.View().State)
}

func TestSession_AbortRestoresPreviousOutcome(t *testing.T) {
	s := newSession("cust-1")
	s.step = StepPayment
	s.address = &model.Address{ID: uuid.New()}
	s.fail(model.ErrPaymentCancelled)

	_, err := s.begin(model.PaymentMethodCashOnDelivery)
	require.NoError(t, err)
	assert.Nil(t, s.View().Error)

	s.abort()

	view := s.View()
	assert.False(t, view.Busy)
	assert.Equal(t, StateFailed, view.State)
	require.NotNil(t, view.Error)
	assert.Equal(t, model.ErrCodePaymentCancelled, view.Error.Code)
}

func TestState_Terminal(t *testing.T) {
	assert.True(t, StateSucceeded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateAwaitingPayment.Terminal())
	assert.False(t, StateNotStarted.Terminal())
}
