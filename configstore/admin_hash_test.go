package configstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyAdminPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash, err := HashAdminPassword("correct-horse-battery-staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NoError(t, s.SetAdminHash(ctx, hash))

	ok, err := VerifyAdminPassword(ctx, s, "correct-horse-battery-staple")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyAdminPassword(ctx, s, "wrong-password")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyAdminPasswordNoHashSet(t *testing.T) {
	s := newTestStore(t)
	ok, err := VerifyAdminPassword(context.Background(), s, "anything")
	require.NoError(t, err)
	require.False(t, ok)
}
