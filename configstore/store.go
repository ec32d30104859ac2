// Package configstore implements the ConfigStore collaborator spec.md §1
// treats as out-of-scope but that the gateway needs to actually run: the
// trigger key, the primary credential pool, the fallback key/model set,
// the retry budget, and the rotation cursor, per spec.md §6.
package configstore

import "context"

// Store is the ConfigStore collaborator interface, covering exactly the
// operations spec.md §6 lists.
type Store interface {
	GetAdminHash(ctx context.Context) (string, error)
	SetAdminHash(ctx context.Context, hash string) error

	GetTriggerKey(ctx context.Context) (string, error)
	SetTriggerKey(ctx context.Context, key *string) error
	IsValidTriggerKey(ctx context.Context, presented string) (bool, error)

	GetPrimaryPool(ctx context.Context) ([]PoolEntry, error)
	AddPrimaryEntries(ctx context.Context, entries map[string]string) error
	RemovePrimaryEntry(ctx context.Context, id string) error
	ClearPrimary(ctx context.Context) error

	// RotateCursorAtomic allocates the next pool credential given the
	// current pool size, returning the chosen credential and the cursor
	// value that follows it. Implementations must honor the CAS-with-
	// bounded-retry-then-fallback algorithm from spec.md §4.3/§5.
	RotateCursorAtomic(ctx context.Context, poolSize int) (credential string, nextCursor int64, err error)

	GetFallbackKey(ctx context.Context) (string, error)
	SetFallbackKey(ctx context.Context, key *string) error

	GetFallbackModelSet(ctx context.Context) ([]string, error)
	SetFallbackModelSet(ctx context.Context, models []string) error
	AddFallbackModels(ctx context.Context, models []string) error
	ClearFallbackModels(ctx context.Context) error

	GetRetryBudget(ctx context.Context) (int, error)
	SetRetryBudget(ctx context.Context, n int) error
}

// PoolEntry is one primary-pool credential, keyed by a stable id so
// RemovePrimaryEntry can target a specific entry without relying on the
// credential value itself (which must not be logged or echoed back).
type PoolEntry struct {
	ID         string
	Credential string
}
