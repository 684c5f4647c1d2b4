package token_test

import (
	"strings"
	"testing"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/token"
	"github.com/stretchr/testify/require"
)

var (
	secretA = strings.Repeat("a", token.MinSecretLength)
	secretB = strings.Repeat("b", token.MinSecretLength)
)

func TestParseKeyring(t *testing.T) {
	t.Run("bare secret gets default key id", func(t *testing.T) {
		k, err := token.ParseKeyring(secretA)
		require.NoError(t, err)
		require.Equal(t, token.DefaultKeyID, k.Current().KeyID())
		require.Equal(t, []string{"v1"}, k.KeyIDs())
	})

	t.Run("versioned keys sign with the first entry", func(t *testing.T) {
		k, err := token.ParseKeyring("v2:" + secretB + ", v1:" + secretA)
		require.NoError(t, err)
		require.Equal(t, "v2", k.Current().KeyID())
		require.Equal(t, []string{"v2", "v1"}, k.KeyIDs())
	})

	failures := map[string]string{
		"empty":               "   ",
		"short bare secret":   "too-short",
		"short versioned key": "v2:" + secretB + ",v1:short",
		"duplicate key ids":   "v1:" + secretA + ",v1:" + secretB,
		"bare secret in list": "v2:" + secretB + "," + secretA,
	}
	for name, raw := range failures {
		t.Run(name, func(t *testing.T) {
			_, err := token.ParseKeyring(raw)
			require.ErrorIs(t, err, apperrors.ErrConfiguration)
		})
	}
}

func TestNewKeyring_RequiresSigner(t *testing.T) {
	_, err := token.NewKeyring()
	require.ErrorIs(t, err, apperrors.ErrConfiguration)
}
