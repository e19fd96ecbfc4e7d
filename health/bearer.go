package health

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DiagnosticsAudience is the audience diagnostics tokens must carry.
const DiagnosticsAudience = "dbgate-diagnostics"

// RequireBearer guards next with an HS256 bearer token signed with secret.
// The token must carry the DiagnosticsAudience and an expiry. An empty
// secret disables the guard.
func RequireBearer(secret []byte, next http.Handler) http.Handler {
	if len(secret) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := verifyBearer(secret, r.Header.Get("Authorization")); err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="dbgate"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func verifyBearer(secret []byte, header string) error {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))

	_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(DiagnosticsAudience),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: token expired", ErrUnauthorized)
	default:
		return fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
}

// IssueToken signs a diagnostics token for subject valid for ttl.
func IssueToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{DiagnosticsAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
