package upstream

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/pkg/errors"
)

// DiscoverTokenURL reads the token endpoint from the issuer's OpenID discovery document.
func DiscoverTokenURL(ctx context.Context, issuer string) (string, error) {
	if issuer == "" {
		return "", errors.Wrap(apperrors.ErrConfiguration, "[DiscoverTokenURL] issuer is required")
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", errors.Wrapf(apperrors.ErrConfiguration, "[DiscoverTokenURL] discovery for %s failed: %v", issuer, err)
	}

	tokenURL := provider.Endpoint().TokenURL
	if tokenURL == "" {
		return "", errors.Wrapf(apperrors.ErrConfiguration, "[DiscoverTokenURL] %s does not advertise a token endpoint", issuer)
	}
	return tokenURL, nil
}
