package gateway

import (
	"context"

	"github.com/Laisky/errors/v2"

	"github.com/vaultgate/gemini-gateway/configstore"
	"github.com/vaultgate/gemini-gateway/internal/gwerr"
	"github.com/vaultgate/gemini-gateway/monitor"
)

// Attempt is one upstream invocation outcome, as reported by the caller
// of Dispatch for each candidate credential.
type Attempt struct {
	StatusCode int
	Body       []byte
	Err        error
}

// succeeded reports whether this attempt is a 2xx with no transport
// error, per spec.md §4.3's "if it returns a 2xx response, deliver it."
func (a Attempt) succeeded() bool {
	return a.Err == nil && a.StatusCode >= 200 && a.StatusCode < 300
}

// Invoke is the downstream operation KeySelector calls with a chosen
// credential. It must itself honor ctx cancellation.
type Invoke func(ctx context.Context, credential string) Attempt

// Dispatch implements KeySelector's pool-mode algorithm (spec.md
// §4.3): try the fallback credential first when the model is in the
// fallback set, then walk the rotation cursor for up to RetryBudget
// distinct credentials, never repeating one already tried for this
// request.
func Dispatch(ctx context.Context, store configstore.Store, model string, invoke Invoke) (Attempt, error) {
	tried := make(map[string]bool)

	if attempt, ok, err := tryFallback(ctx, store, model, invoke, tried); err != nil {
		return Attempt{}, err
	} else if ok {
		return attempt, nil
	}

	pool, err := store.GetPrimaryPool(ctx)
	if err != nil {
		return Attempt{}, err
	}
	if len(pool) == 0 {
		return Attempt{}, gwerr.PoolExhausted("no available credentials")
	}

	budget, err := store.GetRetryBudget(ctx)
	if err != nil {
		return Attempt{}, err
	}

	remaining := make(map[string]bool, len(pool))
	for _, entry := range pool {
		if !tried[entry.Credential] {
			remaining[entry.Credential] = true
		}
	}

	var last *Attempt
	distinctTried := 0
	for distinctTried < budget && len(remaining) > 0 {
		select {
		case <-ctx.Done():
			return Attempt{}, ctx.Err()
		default:
		}

		cred, nextCursor, err := store.RotateCursorAtomic(ctx, len(pool))
		if err != nil {
			return Attempt{}, err
		}
		monitor.RotationCursor.Set(float64(nextCursor))
		if tried[cred] {
			continue
		}
		tried[cred] = true
		delete(remaining, cred)
		distinctTried++

		attempt := invoke(ctx, cred)
		if attempt.succeeded() {
			monitor.RetryAttempts.WithLabelValues("success").Inc()
			return attempt, nil
		}
		monitor.RetryAttempts.WithLabelValues("failure").Inc()
		last = &attempt
	}

	monitor.PoolExhausted.Inc()
	if last == nil {
		return Attempt{}, gwerr.PoolExhausted("no available credentials")
	}
	return Attempt{}, gwerr.UpstreamTransient(503, string(last.Body), poolExhaustedCause(last))
}

func poolExhaustedCause(last *Attempt) error {
	if last.Err != nil {
		return last.Err
	}
	return errors.Errorf("upstream returned status %d", last.StatusCode)
}

func tryFallback(ctx context.Context, store configstore.Store, model string, invoke Invoke, tried map[string]bool) (Attempt, bool, error) {
	modelSet, err := store.GetFallbackModelSet(ctx)
	if err != nil {
		return Attempt{}, false, err
	}
	if !contains(modelSet, model) {
		return Attempt{}, false, nil
	}

	fallbackKey, err := store.GetFallbackKey(ctx)
	if err != nil {
		return Attempt{}, false, err
	}
	if fallbackKey == "" {
		return Attempt{}, false, nil
	}

	tried[fallbackKey] = true
	attempt := invoke(ctx, fallbackKey)
	if attempt.succeeded() {
		monitor.RetryAttempts.WithLabelValues("success").Inc()
		return attempt, true, nil
	}
	monitor.RetryAttempts.WithLabelValues("failure").Inc()
	return Attempt{}, false, nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
