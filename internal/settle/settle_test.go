package settle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func delayed[T any](d time.Duration, v T) Query[T] {
	return func(ctx context.Context) (Result[T], error) {
		time.Sleep(d)
		return Data(v), nil
	}
}

func TestAll_Empty(t *testing.T) {
	out := All[int](context.Background())
	require.NotNil(t, out)
	assert.Len(t, out, 0)
}

func TestAll_PreservesOrder(t *testing.T) {
	out := All(context.Background(),
		delayed(30*time.Millisecond, "a"),
		delayed(0, "b"),
		delayed(10*time.Millisecond, "c"),
	)

	require.Len(t, out, 3)
	for i, want := range []string{"a", "b", "c"} {
		require.NotNil(t, out[i].Data)
		assert.Equal(t, want, *out[i].Data)
		assert.Nil(t, out[i].Error)
		assert.Equal(t, StatusOK, out[i].Status)
	}
}

func TestAll_RejectionIsolated(t *testing.T) {
	boom := errors.New("relation \"opportunities\" does not exist")
	out := All(context.Background(),
		delayed(0, 1),
		func(ctx context.Context) (Result[int], error) { return Result[int]{}, boom },
		delayed(5*time.Millisecond, 3),
	)

	require.Len(t, out, 3)
	assert.Equal(t, 1, *out[0].Data)
	assert.Equal(t, 3, *out[2].Data)

	want := Result[int]{
		Error:      &ErrorInfo{Message: boom.Error()},
		Status:     500,
		StatusText: "Error",
	}
	assert.Equal(t, want, out[1])
	assert.Nil(t, out[1].Data)
	assert.Nil(t, out[1].Count)
}

func TestAll_PanicBecomesRejection(t *testing.T) {
	type reason struct {
		Code int
		Hint string
	}

	out := All(context.Background(),
		func(ctx context.Context) (Result[int], error) { panic(reason{Code: 7, Hint: "x"}) },
		func(ctx context.Context) (Result[int], error) { panic(nil) },
		nil,
	)

	require.Len(t, out, 3)
	for _, r := range out {
		require.NotNil(t, r.Error)
		assert.Equal(t, 500, r.Status)
		assert.Equal(t, "Error", r.StatusText)
	}
	assert.Equal(t, "{Code:7 Hint:x}", out[0].Error.Message)
	assert.NotEmpty(t, out[1].Error.Message)
	assert.Equal(t, "nil query", out[2].Error.Message)
}

func TestAll_PassesResolvedValueThrough(t *testing.T) {
	// a resolved structured error is not rewritten
	structured := Result[int]{Error: &ErrorInfo{Message: "permission denied"}, Status: 403, StatusText: "Forbidden"}
	empty := Result[int]{Status: 204, StatusText: "No Content"}

	out := All(context.Background(),
		func(ctx context.Context) (Result[int], error) { return structured, nil },
		func(ctx context.Context) (Result[int], error) { return empty, nil },
	)

	assert.Equal(t, structured, out[0])
	assert.Equal(t, empty, out[1])
}

func TestAll_LatencyIsMaxNotSum(t *testing.T) {
	start := time.Now()
	out := All(context.Background(),
		delayed(10*time.Millisecond, 1),
		delayed(50*time.Millisecond, 2),
		delayed(50*time.Millisecond, 3),
	)
	elapsed := time.Since(start)

	require.Len(t, out, 3)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	// sequential execution would take 110ms
	assert.Less(t, elapsed, 110*time.Millisecond)
}

func TestAll_NoShortCircuit(t *testing.T) {
	var finished atomic.Int32
	slow := func(ctx context.Context) (Result[int], error) {
		time.Sleep(20 * time.Millisecond)
		finished.Add(1)
		return Data(1), nil
	}
	fail := func(ctx context.Context) (Result[int], error) {
		return Result[int]{}, errors.New("fail fast")
	}

	out := All(context.Background(), fail, slow, slow)
	assert.Equal(t, int32(2), finished.Load())
	assert.False(t, out[0].OK())
	assert.True(t, out[1].OK())
}

func TestAll_ContextNotCancelledBySiblingFailure(t *testing.T) {
	ctx := context.Background()
	out := All(ctx,
		func(ctx context.Context) (Result[error], error) { return Result[error]{}, errors.New("x") },
		func(ctx context.Context) (Result[error], error) {
			time.Sleep(10 * time.Millisecond)
			return Data(ctx.Err()), nil
		},
	)
	require.NotNil(t, out[1].Data)
	assert.NoError(t, *out[1].Data)
}

func TestGroup_Heterogeneous(t *testing.T) {
	ctx := context.Background()
	var g Group

	names := Go(&g, ctx, delayed(10*time.Millisecond, []string{"DHS EAGLE", "VA T4NG"}))
	total := Go(&g, ctx, FromCounted(func(ctx context.Context) ([]int, int64, error) {
		return []int{1, 2}, 42, nil
	}))
	broken := Go(&g, ctx, From(func(ctx context.Context) (float64, error) {
		return 0, errors.New("timeout")
	}))
	g.Wait()

	assert.Equal(t, []string{"DHS EAGLE", "VA T4NG"}, *names.Result().Data)

	require.NotNil(t, total.Result().Count)
	assert.Equal(t, int64(42), *total.Result().Count)
	assert.Equal(t, []int{1, 2}, *total.Result().Data)

	assert.Equal(t, Rejected[float64](errors.New("timeout")), broken.Result())
	assert.EqualError(t, broken.Result().Err(), "timeout")
}

func TestGroup_EmptyWait(t *testing.T) {
	var g Group
	g.Wait()
}

type badStringer struct{}

func (badStringer) String() string { panic("no") }

func TestRejected_Stringification(t *testing.T) {
	tests := []struct {
		name   string
		reason any
		want   string
	}{
		{"error", errors.New("boom"), "boom"},
		{"string", "plain", "plain"},
		{"int", 42, "42"},
		{"map", map[string]int{"a": 1}, "map[a:1]"},
		{"nil", nil, "<nil>"},
		{"panicking stringer", badStringer{}, "settle.badStringer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Result[string]
			assert.NotPanics(t, func() { r = Rejected[string](tt.reason) })
			require.NotNil(t, r.Error)
			assert.Equal(t, tt.want, r.Error.Message)
			assert.Nil(t, r.Data)
		})
	}
}
