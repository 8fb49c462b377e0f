package circuit_breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()

	errBroker := errors.New("broker down")
	ok := func() error { return nil }
	fail := func() error { return errBroker }

	type step struct {
		fn        func() error
		advance   time.Duration
		wantErr   error
		wantState Status
	}
	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "stays closed on success",
			steps: []step{
				{fn: ok, wantState: Closed},
				{fn: ok, wantState: Closed},
			},
		},
		{
			name: "opens at failure ratio and short-circuits",
			steps: []step{
				{fn: fail, wantErr: errBroker, wantState: Closed},
				{fn: fail, wantErr: errBroker, wantState: Open},
				{fn: ok, wantErr: ErrOpenCB, wantState: Open},
			},
		},
		{
			name: "half-open probe closes after recovery calls",
			steps: []step{
				{fn: fail, wantErr: errBroker},
				{fn: fail, wantErr: errBroker, wantState: Open},
				{fn: ok, advance: 2 * time.Second, wantState: HalfOpen},
				{fn: ok, wantState: Closed},
			},
		},
		{
			name: "half-open failure reopens",
			steps: []step{
				{fn: fail, wantErr: errBroker},
				{fn: fail, wantErr: errBroker, wantState: Open},
				{fn: fail, advance: 2 * time.Second, wantErr: errBroker, wantState: Open},
				{fn: ok, wantErr: ErrOpenCB, wantState: Open},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			cb := New(4, time.Second, 0.5, 2).(*circuitBreaker)
			cb.now = func() time.Time { return now }

			for i, s := range tt.steps {
				now = now.Add(s.advance)
				err := cb.Call(s.fn)
				if s.wantErr != nil {
					require.ErrorIs(t, err, s.wantErr, "step %d", i)
				} else {
					require.NoError(t, err, "step %d", i)
				}
				if s.wantState != 0 {
					require.Equal(t, s.wantState, cb.State(), "step %d", i)
				}
			}
		})
	}
}
