package realtime

import (
	"fmt"

	"github.com/go-notify-api/internal/domain"
	jwtinfra "github.com/go-notify-api/internal/infrastructure/jwt"
)

// Verifier decides whether a connection may bind to a claimed address.
// Binding and authentication are decoupled: the registry never inspects
// credentials, so hardening the channel is a matter of swapping this in.
type Verifier interface {
	Verify(claimedAddress, credential string) error
}

// AllowAll accepts any claimed address. This is the default mode: the channel
// deliberately trusts client-declared identity.
type AllowAll struct{}

func (AllowAll) Verify(string, string) error { return nil }

// JWTVerifier requires a token whose user_id claim matches the claimed
// address. Rejections wrap domain.ErrUnauthorized so a surface with an error
// reply (a future authenticated REST path) can map them to 401.
type JWTVerifier struct {
	Provider *jwtinfra.Provider
}

func (v JWTVerifier) Verify(claimedAddress, credential string) error {
	if credential == "" {
		return fmt.Errorf("missing credential: %w", domain.ErrUnauthorized)
	}
	claims, err := v.Provider.Verify(credential)
	if err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	if claims.UserID != claimedAddress {
		return fmt.Errorf("token does not grant address %q: %w", claimedAddress, domain.ErrUnauthorized)
	}
	return nil
}
