package token

import (
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/pkg/errors"
)

// MinSecretLength is the shortest HMAC secret accepted for session signing.
const MinSecretLength = 32

// DefaultKeyID names a secret configured without an explicit version.
const DefaultKeyID = "v1"

var keyIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,16}$`)

// Keyring holds the versioned session signing keys. The first key signs; every key verifies.
type Keyring struct {
	current Signer
	ids     []string
	byID    map[string]Signer
}

// NewKeyring builds a keyring from signers. The first signer becomes the current signing key.
func NewKeyring(signers ...Signer) (*Keyring, error) {
	if len(signers) == 0 {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewKeyring] at least one signing key is required")
	}

	k := &Keyring{
		current: signers[0],
		byID:    make(map[string]Signer, len(signers)),
	}
	for _, s := range signers {
		if _, exists := k.byID[s.KeyID()]; exists {
			return nil, errors.Wrapf(apperrors.ErrConfiguration, "[NewKeyring] duplicate key id %q", s.KeyID())
		}
		k.byID[s.KeyID()] = s
		k.ids = append(k.ids, s.KeyID())
	}
	return k, nil
}

// ParseKeyring parses SESSION_SIGNING_SECRET. Accepted forms are a single bare secret, which gets
// the key id v1, or a comma separated list of kid:secret entries with the signing key first.
func ParseKeyring(raw string) (*Keyring, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[ParseKeyring] session signing secret is required")
	}

	entries := strings.Split(raw, ",")
	signers := make([]Signer, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)

		keyID, secret, found := strings.Cut(entry, ":")
		if !found || !keyIDPattern.MatchString(keyID) {
			if len(entries) > 1 {
				return nil, errors.Wrap(apperrors.ErrConfiguration, "[ParseKeyring] every key must be written as kid:secret when rotating")
			}
			keyID, secret = DefaultKeyID, entry
		}

		if len(secret) < MinSecretLength {
			return nil, errors.Wrapf(apperrors.ErrConfiguration, "[ParseKeyring] key %q must be at least %d bytes", keyID, MinSecretLength)
		}
		signers = append(signers, NewHMACSigner(keyID, secret))
	}

	return NewKeyring(signers...)
}

// Current returns the key new sessions are signed with.
func (k *Keyring) Current() Signer {
	return k.current
}

// KeyIDs lists every configured key id, signing key first.
func (k *Keyring) KeyIDs() []string {
	return append([]string(nil), k.ids...)
}

// VerificationKey is a jwt.Keyfunc that resolves the key named by the kid header.
func (k *Keyring) VerificationKey(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	signer, ok := k.byID[kid]
	if !ok {
		return nil, errors.Errorf("unknown key id %q", kid)
	}
	return signer.GetVerificationKey(token)
}
