package action_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagrid-io/catalog-console/internal/action"
)

func TestRunner_InitialState(t *testing.T) {
	t.Parallel()

	r := action.NewRunner(func(_ context.Context, _ ...any) (any, error) {
		return nil, nil
	})

	assert.Equal(t, action.StateIdle, r.State())
	assert.NoError(t, r.Err())
	assert.False(t, r.IsPending())
}

func TestRunner_PendingSetBeforeOperationSettles(t *testing.T) {
	t.Parallel()

	var observed action.State
	var r *action.Runner
	r = action.NewRunner(func(_ context.Context, _ ...any) (any, error) {
		// The operation itself must already see the pending state.
		observed = r.State()
		return "ok", nil
	})

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, action.StatePending, observed)
	assert.Equal(t, "ok", result)
	assert.Equal(t, action.StateSuccess, r.State())
}

func TestRunner_SuccessInvokesCallback(t *testing.T) {
	t.Parallel()

	var got any
	r := action.NewRunner(
		func(_ context.Context, args ...any) (any, error) {
			return args[0], nil
		},
		action.WithOnSuccess(func(result any) {
			got = result
		}),
	)

	result, err := r.Run(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 42, got)
	assert.Equal(t, action.StateSuccess, r.State())
	assert.NoError(t, r.Err())
}

func TestRunner_ErrorInvokesCallbackAndReturns(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("trigger rejected")
	var got error
	r := action.NewRunner(
		func(_ context.Context, _ ...any) (any, error) {
			return nil, wantErr
		},
		action.WithOnError(func(err error) {
			got = err
		}),
	)

	result, err := r.Run(context.Background())
	require.ErrorIs(t, err, wantErr, "the error is re-returned after notification")
	assert.Nil(t, result)
	assert.Equal(t, wantErr, got)
	assert.Equal(t, action.StateError, r.State())
	assert.ErrorIs(t, r.Err(), wantErr)
}

func TestRunner_PanicNormalizedToError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		panicWith any
		wantMsg   string
	}{
		{
			name:      "panic with error",
			panicWith: errors.New("boom"),
			wantMsg:   "boom",
		},
		{
			name:      "panic with string",
			panicWith: "unexpected failure",
			wantMsg:   "unexpected failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := action.NewRunner(func(_ context.Context, _ ...any) (any, error) {
				panic(tt.panicWith)
			})

			_, err := r.Run(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, action.StateError, r.State(), "a panic must not leave the runner pending")
		})
	}
}

func TestRunner_SuccessClearsPreviousError(t *testing.T) {
	t.Parallel()

	var fail bool
	r := action.NewRunner(func(_ context.Context, _ ...any) (any, error) {
		if fail {
			return nil, errors.New("transient")
		}
		return "done", nil
	})

	fail = true
	_, err := r.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, action.StateError, r.State())

	fail = false
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, action.StateSuccess, r.State())
	assert.NoError(t, r.Err())
}

func TestRunner_ResetWhilePending(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})

	r := action.NewRunner(func(_ context.Context, _ ...any) (any, error) {
		close(started)
		<-release
		return "late", nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = r.Run(context.Background())
	}()

	<-started
	require.Equal(t, action.StatePending, r.State())

	r.Reset()
	assert.Equal(t, action.StateIdle, r.State())

	// Last settled wins: the in-flight run still overwrites the reset.
	close(release)
	wg.Wait()
	assert.Equal(t, action.StateSuccess, r.State())
}

func TestRunner_LastSettledWins(t *testing.T) {
	t.Parallel()

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls int
	var mu sync.Mutex

	r := action.NewRunner(func(_ context.Context, _ ...any) (any, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()

		if first {
			close(firstStarted)
			<-releaseFirst
			return nil, errors.New("slow failure")
		}
		return "fast success", nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = r.Run(context.Background())
	}()

	<-firstStarted
	_, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, action.StateSuccess, r.State())

	// The slower first run settles last and overwrites the success.
	close(releaseFirst)
	wg.Wait()
	assert.Equal(t, action.StateError, r.State())
	assert.EqualError(t, r.Err(), "slow failure")
}
