package gateway

import (
	"context"

	"github.com/vaultgate/gemini-gateway/configstore"
)

// fakeStore is a minimal in-memory configstore.Store for gateway unit
// tests, avoiding a real database dependency for pure routing-logic
// coverage (KeySelector, AuthGate).
type fakeStore struct {
	triggerKey     string
	adminHash      string
	pool           []configstore.PoolEntry
	retryBudget    int
	fallbackKey    string
	fallbackModels []string
	cursor         int64

	rotateErr error
}

func (f *fakeStore) GetAdminHash(ctx context.Context) (string, error) { return f.adminHash, nil }
func (f *fakeStore) SetAdminHash(ctx context.Context, hash string) error {
	f.adminHash = hash
	return nil
}

func (f *fakeStore) GetTriggerKey(ctx context.Context) (string, error) { return f.triggerKey, nil }
func (f *fakeStore) SetTriggerKey(ctx context.Context, key *string) error {
	if key == nil {
		f.triggerKey = ""
	} else {
		f.triggerKey = *key
	}
	return nil
}
func (f *fakeStore) IsValidTriggerKey(ctx context.Context, presented string) (bool, error) {
	return f.triggerKey != "" && presented == f.triggerKey, nil
}

func (f *fakeStore) GetPrimaryPool(ctx context.Context) ([]configstore.PoolEntry, error) {
	return f.pool, nil
}
func (f *fakeStore) AddPrimaryEntries(ctx context.Context, entries map[string]string) error {
	for id, cred := range entries {
		f.pool = append(f.pool, configstore.PoolEntry{ID: id, Credential: cred})
	}
	return nil
}
func (f *fakeStore) RemovePrimaryEntry(ctx context.Context, id string) error { return nil }
func (f *fakeStore) ClearPrimary(ctx context.Context) error                 { f.pool = nil; return nil }

func (f *fakeStore) RotateCursorAtomic(ctx context.Context, poolSize int) (string, int64, error) {
	if f.rotateErr != nil {
		return "", 0, f.rotateErr
	}
	if poolSize == 0 {
		return "", 0, nil
	}
	idx := int(f.cursor % int64(poolSize))
	f.cursor++
	return f.pool[idx].Credential, f.cursor, nil
}

func (f *fakeStore) GetFallbackKey(ctx context.Context) (string, error) { return f.fallbackKey, nil }
func (f *fakeStore) SetFallbackKey(ctx context.Context, key *string) error {
	if key == nil {
		f.fallbackKey = ""
	} else {
		f.fallbackKey = *key
	}
	return nil
}

func (f *fakeStore) GetFallbackModelSet(ctx context.Context) ([]string, error) {
	return f.fallbackModels, nil
}
func (f *fakeStore) SetFallbackModelSet(ctx context.Context, models []string) error {
	f.fallbackModels = models
	return nil
}
func (f *fakeStore) AddFallbackModels(ctx context.Context, models []string) error {
	f.fallbackModels = append(f.fallbackModels, models...)
	return nil
}
func (f *fakeStore) ClearFallbackModels(ctx context.Context) error { f.fallbackModels = nil; return nil }

func (f *fakeStore) GetRetryBudget(ctx context.Context) (int, error) { return f.retryBudget, nil }
func (f *fakeStore) SetRetryBudget(ctx context.Context, n int) error { f.retryBudget = n; return nil }
