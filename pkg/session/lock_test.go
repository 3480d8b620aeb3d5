package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/authflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, run *domain.Run) error { return nil }
func (nopStore) Load(ctx context.Context, runID string) (*domain.Run, error) {
	return &domain.Run{ID: runID}, nil
}
func (nopStore) Delete(ctx context.Context, runID string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)     { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("run-%d", i)
		_ = mgr.Save(ctx, &domain.Run{ID: id})
		_, _ = mgr.Update(ctx, id, func(ctx context.Context, r *domain.Run) (*domain.Run, error) { return r, nil })
		_ = mgr.Delete(ctx, id)
	}

	assert.Empty(t, mgr.locks, "locks must be released once no caller holds them")
}
