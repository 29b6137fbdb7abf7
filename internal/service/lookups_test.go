package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
)

type fakeLookupSource struct {
	payload map[string]any
	err     error
	calls   atomic.Int32
	block   chan struct{}
}

func (f *fakeLookupSource) FetchLookups(_ context.Context, _ string) (map[string]any, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.payload, f.err
}

func TestEnsureFetchesOnceAndCaches(t *testing.T) {
	src := &fakeLookupSource{payload: map[string]any{
		"vaccines": []any{map[string]any{"vaccine_id": "7", "name": "BCG"}},
		"genders":  []any{map[string]any{"gender_id": float64(1), "name": "Female"}},
	}}
	svc := NewLookupService(src)

	assert.False(t, svc.Loaded())

	require.NoError(t, svc.Ensure(context.Background(), "tok"))
	assert.True(t, svc.Loaded())
	assert.Equal(t, []lookup.Item{{ID: 7, Name: "BCG"}}, svc.Tables().Vaccines)
	assert.Equal(t, "Female", svc.Name(lookup.CategoryGenders, 1))

	// Further navigations reuse the cache.
	require.NoError(t, svc.Ensure(context.Background(), "tok"))
	require.NoError(t, svc.Ensure(context.Background(), "other-token"))
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestEnsureCollapsesConcurrentBootstraps(t *testing.T) {
	src := &fakeLookupSource{
		payload: map[string]any{"genders": []any{}},
		block:   make(chan struct{}),
	}
	svc := NewLookupService(src)

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			_ = svc.Ensure(context.Background(), "tok")
		}()
	}
	close(src.block)
	wg.Wait()

	assert.True(t, svc.Loaded())
	assert.LessOrEqual(t, src.calls.Load(), int32(2),
		"concurrent bootstraps collapse onto the in-flight fetch")
}

func TestEnsureFailureLeavesCacheUnloaded(t *testing.T) {
	src := &fakeLookupSource{err: errors.New("upstream down")}
	svc := NewLookupService(src)

	err := svc.Ensure(context.Background(), "tok")
	require.Error(t, err)
	assert.False(t, svc.Loaded())
	assert.Empty(t, svc.Tables().Vaccines)

	// A later navigation retries.
	src.err = nil
	src.payload = map[string]any{"vaccines": []any{map[string]any{"id": float64(3), "name": "OPV"}}}
	require.NoError(t, svc.Ensure(context.Background(), "tok"))
	assert.True(t, svc.Loaded())
	assert.Equal(t, "OPV", svc.Name(lookup.CategoryVaccines, 3))
}

func TestSetReplacesAllTables(t *testing.T) {
	svc := NewLookupService(&fakeLookupSource{})

	svc.Set(map[string]any{"roles": []any{map[string]any{"role_id": float64(1), "name": "ASHA"}}})
	require.True(t, svc.Loaded())
	assert.Len(t, svc.Tables().Roles, 1)

	svc.Set(map[string]any{"roles": []any{
		map[string]any{"role_id": float64(2), "name": "ANM"},
		map[string]any{"role_id": float64(3), "name": "PHC Staff"},
	}})
	assert.Len(t, svc.Tables().Roles, 2, "second payload replaces, not merges")
	assert.Equal(t, "#1", svc.Name(lookup.CategoryRoles, 1))
}
