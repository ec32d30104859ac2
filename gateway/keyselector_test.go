package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultgate/gemini-gateway/configstore"
)

func TestDispatchFirstCredentialSucceeds(t *testing.T) {
	store := &fakeStore{
		pool: []configstore.PoolEntry{
			{ID: "a", Credential: "key-a"},
			{ID: "b", Credential: "key-b"},
		},
		retryBudget: 2,
	}

	var invoked []string
	attempt, err := Dispatch(context.Background(), store, "gemini-2.5-flash", func(ctx context.Context, credential string) Attempt {
		invoked = append(invoked, credential)
		return Attempt{StatusCode: 200, Body: []byte("ok")}
	})

	require.NoError(t, err)
	require.Equal(t, 200, attempt.StatusCode)
	require.Equal(t, []string{"key-a"}, invoked, "should stop at the first successful credential")
}

func TestDispatchRetriesOnFailureUntilBudgetExhausted(t *testing.T) {
	store := &fakeStore{
		pool: []configstore.PoolEntry{
			{ID: "a", Credential: "key-a"},
			{ID: "b", Credential: "key-b"},
		},
		retryBudget: 2,
	}

	var invoked []string
	_, err := Dispatch(context.Background(), store, "gemini-2.5-flash", func(ctx context.Context, credential string) Attempt {
		invoked = append(invoked, credential)
		return Attempt{StatusCode: 500, Body: []byte("server error")}
	})

	require.Error(t, err)
	require.Len(t, invoked, 2, "should try exactly retryBudget distinct credentials")
}

func TestDispatchEmptyPoolIsPoolExhausted(t *testing.T) {
	store := &fakeStore{retryBudget: 1}
	_, err := Dispatch(context.Background(), store, "gemini-2.5-flash", func(ctx context.Context, credential string) Attempt {
		t.Fatal("invoke should never be called against an empty pool")
		return Attempt{}
	})
	require.Error(t, err)
}

func TestDispatchUsesFallbackForConfiguredModel(t *testing.T) {
	store := &fakeStore{
		pool: []configstore.PoolEntry{
			{ID: "a", Credential: "key-a"},
		},
		retryBudget:    1,
		fallbackKey:    "fallback-key",
		fallbackModels: []string{"gemini-2.5-pro"},
	}

	var invoked []string
	attempt, err := Dispatch(context.Background(), store, "gemini-2.5-pro", func(ctx context.Context, credential string) Attempt {
		invoked = append(invoked, credential)
		return Attempt{StatusCode: 200}
	})

	require.NoError(t, err)
	require.Equal(t, 200, attempt.StatusCode)
	require.Equal(t, []string{"fallback-key"}, invoked, "fallback credential is tried before the rotation pool for a configured model")
}

func TestDispatchFallbackFailureFallsThroughToPool(t *testing.T) {
	store := &fakeStore{
		pool: []configstore.PoolEntry{
			{ID: "a", Credential: "key-a"},
		},
		retryBudget:    1,
		fallbackKey:    "fallback-key",
		fallbackModels: []string{"gemini-2.5-pro"},
	}

	var invoked []string
	attempt, err := Dispatch(context.Background(), store, "gemini-2.5-pro", func(ctx context.Context, credential string) Attempt {
		invoked = append(invoked, credential)
		if credential == "fallback-key" {
			return Attempt{StatusCode: 500}
		}
		return Attempt{StatusCode: 200}
	})

	require.NoError(t, err)
	require.Equal(t, 200, attempt.StatusCode)
	require.Equal(t, []string{"fallback-key", "key-a"}, invoked)
}
