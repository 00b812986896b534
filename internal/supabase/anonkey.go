package supabase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type anonClaims struct {
	jwt.RegisteredClaims
	Ref  string `json:"ref"`
	Role string `json:"role"`
}

// KeyInfo describes the anon API key. Supabase keys are JWTs signed by the
// backend, so the project reference, role and expiry can be read without
// the signing secret.
type KeyInfo struct {
	ProjectRef string
	Role       string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// ParseAnonKey decodes the key without verifying its signature; the backend
// is the only party that can verify it.
func ParseAnonKey(key string) (*KeyInfo, error) {
	claims := &anonClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return nil, fmt.Errorf("failed to parse anon key: %w", err)
	}

	info := &KeyInfo{
		ProjectRef: claims.Ref,
		Role:       claims.Role,
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

func (k *KeyInfo) Expired(now time.Time) bool {
	return !k.ExpiresAt.IsZero() && now.After(k.ExpiresAt)
}
