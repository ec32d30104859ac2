package configstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vaultgate/gemini-gateway/internal/env"
	"github.com/vaultgate/gemini-gateway/internal/logging"
)

// gormStore is the default Store implementation, backed by sqlite unless
// Open is given a non-empty dsn (main.go reads it from GATEWAY_DSN),
// mirroring the teacher's chooseDB switch in model/main.go.
type gormStore struct {
	db           *gorm.DB
	casRetries   int
	casBaseDelay time.Duration
}

// Open builds a gormStore. dsn selects the driver: empty → sqlite (path
// from SQLITE_PATH env, default "./gateway.db"); "postgres://..." prefix
// → postgres; otherwise → mysql, matching the teacher's chooseDB rule.
func Open(dsn string) (Store, error) {
	db, err := chooseDB(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open configstore database")
	}
	if err := autoMigrate(db); err != nil {
		return nil, errors.Wrap(err, "migrate configstore schema")
	}
	return &gormStore{db: db, casRetries: 5, casBaseDelay: 2 * time.Millisecond}, nil
}

func chooseDB(dsn string) (*gorm.DB, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"):
		logging.Logger.Info("configstore using postgres")
		return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}),
			&gorm.Config{PrepareStmt: true})
	case dsn != "":
		logging.Logger.Info("configstore using mysql")
		return gorm.Open(mysql.Open(dsn), &gorm.Config{PrepareStmt: true})
	default:
		path := env.String("SQLITE_PATH", "./gateway.db")
		logging.Logger.Info("configstore using sqlite", zap.String("path", path))
		return gorm.Open(sqlite.Open(fmt.Sprintf("%s?_busy_timeout=5000", path)),
			&gorm.Config{PrepareStmt: true})
	}
}

func (s *gormStore) getKV(ctx context.Context, name string) (string, error) {
	var row kvRow
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "read setting %q", name)
	}
	return row.Value, nil
}

func (s *gormStore) setKV(ctx context.Context, name, value string) error {
	row := kvRow{Name: name, Value: value}
	err := s.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return errors.Wrapf(err, "write setting %q", name)
	}
	return nil
}

func (s *gormStore) deleteKV(ctx context.Context, name string) error {
	err := s.db.WithContext(ctx).Where("name = ?", name).Delete(&kvRow{}).Error
	if err != nil {
		return errors.Wrapf(err, "delete setting %q", name)
	}
	return nil
}

func (s *gormStore) GetAdminHash(ctx context.Context) (string, error) {
	return s.getKV(ctx, kvAdminHash)
}

func (s *gormStore) SetAdminHash(ctx context.Context, hash string) error {
	return s.setKV(ctx, kvAdminHash, hash)
}

func (s *gormStore) GetTriggerKey(ctx context.Context) (string, error) {
	return s.getKV(ctx, kvTriggerKey)
}

func (s *gormStore) SetTriggerKey(ctx context.Context, key *string) error {
	if key == nil {
		return s.deleteKV(ctx, kvTriggerKey)
	}
	return s.setKV(ctx, kvTriggerKey, *key)
}

func (s *gormStore) IsValidTriggerKey(ctx context.Context, presented string) (bool, error) {
	if presented == "" {
		return false, nil
	}
	trigger, err := s.GetTriggerKey(ctx)
	if err != nil {
		return false, err
	}
	return trigger != "" && presented == trigger, nil
}

func (s *gormStore) GetPrimaryPool(ctx context.Context) ([]PoolEntry, error) {
	var rows []poolEntryRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "read primary pool")
	}
	out := make([]PoolEntry, len(rows))
	for i, r := range rows {
		out[i] = PoolEntry{ID: r.ID, Credential: r.Credential}
	}
	return out, nil
}

func (s *gormStore) AddPrimaryEntries(ctx context.Context, entries map[string]string) error {
	for id, cred := range entries {
		row := poolEntryRow{ID: id, Credential: cred}
		if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
			return errors.Wrapf(err, "add primary entry %q", id)
		}
	}
	return nil
}

func (s *gormStore) RemovePrimaryEntry(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&poolEntryRow{}).Error; err != nil {
		return errors.Wrapf(err, "remove primary entry %q", id)
	}
	return nil
}

func (s *gormStore) ClearPrimary(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&poolEntryRow{}).Error; err != nil {
		return errors.Wrap(err, "clear primary pool")
	}
	return nil
}

func (s *gormStore) GetFallbackKey(ctx context.Context) (string, error) {
	return s.getKV(ctx, kvFallbackKey)
}

func (s *gormStore) SetFallbackKey(ctx context.Context, key *string) error {
	if key == nil {
		return s.deleteKV(ctx, kvFallbackKey)
	}
	return s.setKV(ctx, kvFallbackKey, *key)
}

func (s *gormStore) GetFallbackModelSet(ctx context.Context) ([]string, error) {
	raw, err := s.getKV(ctx, kvFallbackModel)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var models []string
	if err := json.Unmarshal([]byte(raw), &models); err != nil {
		return nil, errors.Wrap(err, "decode fallback model set")
	}
	return models, nil
}

func (s *gormStore) SetFallbackModelSet(ctx context.Context, models []string) error {
	b, err := json.Marshal(models)
	if err != nil {
		return errors.Wrap(err, "encode fallback model set")
	}
	return s.setKV(ctx, kvFallbackModel, string(b))
}

func (s *gormStore) AddFallbackModels(ctx context.Context, models []string) error {
	existing, err := s.GetFallbackModelSet(ctx)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, m := range existing {
		seen[m] = true
	}
	for _, m := range models {
		if !seen[m] {
			existing = append(existing, m)
			seen[m] = true
		}
	}
	return s.SetFallbackModelSet(ctx, existing)
}

func (s *gormStore) ClearFallbackModels(ctx context.Context) error {
	return s.deleteKV(ctx, kvFallbackModel)
}

func (s *gormStore) GetRetryBudget(ctx context.Context) (int, error) {
	raw, err := s.getKV(ctx, kvRetryBudget)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 1, nil
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n < 1 {
		return 1, nil
	}
	return n, nil
}

func (s *gormStore) SetRetryBudget(ctx context.Context, n int) error {
	if n < 1 {
		return errors.Errorf("retry budget must be >= 1, got %d", n)
	}
	return s.setKV(ctx, kvRetryBudget, fmt.Sprintf("%d", n))
}

// credentialAt fetches the pool credential at index i of the ordered
// primary pool, re-deriving the index modulo the live pool size in case
// it shrank since the caller computed poolSize.
func (s *gormStore) credentialAt(ctx context.Context, i int) (string, error) {
	var rows []poolEntryRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return "", errors.Wrap(err, "load primary pool for rotation")
	}
	if len(rows) == 0 {
		return "", errors.New("rotate cursor: empty pool")
	}
	return rows[i%len(rows)].Credential, nil
}

// RotateCursorAtomic implements the optimistic CAS loop from spec.md
// §4.3/§5: read the cursor's version, attempt a conditional update, and
// after casRetries failed attempts fall back to a non-atomic
// read-then-write so the request still makes progress.
func (s *gormStore) RotateCursorAtomic(ctx context.Context, poolSize int) (string, int64, error) {
	if poolSize <= 0 {
		return "", 0, errors.New("rotate cursor: empty pool")
	}

	for attempt := 0; attempt < s.casRetries; attempt++ {
		var row cursorRow
		err := s.db.WithContext(ctx).FirstOrCreate(&row, cursorRow{ID: 1}).Error
		if err != nil {
			return "", 0, errors.Wrap(err, "load rotation cursor")
		}

		cursor := row.Cursor
		next := cursor + 1
		result := s.db.WithContext(ctx).
			Model(&cursorRow{}).
			Where("id = ? AND version = ?", row.ID, row.Version).
			Updates(map[string]any{"cursor": next, "version": row.Version + 1})
		if result.Error != nil {
			return "", 0, errors.Wrap(result.Error, "CAS rotation cursor")
		}
		if result.RowsAffected == 1 {
			cred, err := s.credentialAt(ctx, int(cursor%int64(poolSize)))
			if err != nil {
				return "", 0, err
			}
			return cred, next, nil
		}

		time.Sleep(s.casBaseDelay * time.Duration(1<<attempt))
	}

	// Fallback: non-atomic read-then-write, accepting occasional
	// duplicate allocation under contention per spec.md §5.
	var row cursorRow
	if err := s.db.WithContext(ctx).FirstOrCreate(&row, cursorRow{ID: 1}).Error; err != nil {
		return "", 0, errors.Wrap(err, "fallback load rotation cursor")
	}
	cursor := row.Cursor
	next := cursor + 1
	if err := s.db.WithContext(ctx).Model(&cursorRow{}).Where("id = ?", row.ID).
		Updates(map[string]any{"cursor": next, "version": row.Version + 1}).Error; err != nil {
		return "", 0, errors.Wrap(err, "fallback write rotation cursor")
	}
	cred, err := s.credentialAt(ctx, int(cursor%int64(poolSize)))
	if err != nil {
		return "", 0, err
	}
	return cred, next, nil
}
