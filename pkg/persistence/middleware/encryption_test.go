package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"testing"
	"time"

	"github.com/aretw0/authflow/pkg/adapters/memory"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/persistence/middleware"
	"github.com/aretw0/authflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sampleRun(id string) *domain.Run {
	now := time.Now().UTC()
	return &domain.Run{
		ID:            id,
		Automaton:     "auth-dfa",
		Mode:          domain.Deterministic,
		Sequence:      domain.InputSequence{"accessForm", "submitCredentials"},
		Cursor:        1,
		Configuration: domain.NewConfiguration("Q1"),
		Trajectory:    []domain.Configuration{domain.NewConfiguration("Q0"), domain.NewConfiguration("Q1")},
		Status:        domain.StatusRunning,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlying)
	ctx := context.Background()

	// 1. Save
	require.NoError(t, secureStore.Save(ctx, sampleRun("secret-run")))

	// 2. Inspect underlying store (should be an opaque envelope)
	stored, err := underlying.Load(ctx, "secret-run")
	require.NoError(t, err)
	assert.Empty(t, stored.Automaton)
	assert.Empty(t, stored.Sequence)
	assert.Empty(t, stored.Trajectory)
	assert.Equal(t, domain.StatusRunning, stored.Status, "status stays visible for monitoring")
	assert.NotEmpty(t, stored.Sealed)

	// 3. Load via Middleware (Should be decrypted)
	loaded, err := secureStore.Load(ctx, "secret-run")
	require.NoError(t, err)
	assert.Equal(t, "auth-dfa", loaded.Automaton)
	assert.Equal(t, domain.InputSequence{"accessForm", "submitCredentials"}, loaded.Sequence)
	assert.Equal(t, "{Q1}", loaded.Configuration.String())
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	// 1. Save with OLD key
	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, secureStoreOld.Save(ctx, sampleRun("rotation-run")))

	// 2. Load with NEW key (Active) + OLD key (Fallback)
	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)
	loaded, err := secureStoreNew.Load(ctx, "rotation-run")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Cursor)

	// 3. Save again (now sealed with the NEW key)
	loaded.Cursor = 2
	require.NoError(t, secureStoreNew.Save(ctx, loaded))

	// 4. The OLD key alone can no longer open it
	_, err = secureStoreOld.Load(ctx, "rotation-run")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestEncryptionMiddleware_RejectsPlainRuns(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), sampleRun("plain")))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secureStore.Load(context.Background(), "plain")
	assert.ErrorContains(t, err, "missing encrypted data envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	got, err := middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	got, err = middleware.ParseKey(" " + base64.StdEncoding.EncodeToString(key) + "\n")
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey("deadbeef")
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.RunStore) ports.RunStore {
			order = append(order, name)
			return next
		}
	}
	store := memory.NewStore()
	assert.Same(t, store, middleware.Chain(store, tag("outer"), tag("inner")))
	assert.Equal(t, []string{"inner", "outer"}, order)
}
