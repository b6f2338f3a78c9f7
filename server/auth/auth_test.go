package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("opensesame")
	require.NoError(t, err)
	require.NotEqual(t, "opensesame", hash)

	require.True(t, CheckPassword(hash, "opensesame"))
	require.False(t, CheckPassword(hash, "wrong"))
}
