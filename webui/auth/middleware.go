package auth

import (
	"crypto/sha256"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"paintserver/logging"
)

// maxCachedTokens bounds the verified-token cache.
const maxCachedTokens = 64

// BearerAuth rejects requests without a valid "Authorization: Bearer" token.
// Successful tokens are remembered by digest so bcrypt runs once per token.
type BearerAuth struct {
	hash   string
	public map[string]bool
	logger *logging.Logger

	mu       sync.Mutex
	verified map[[sha256.Size]byte]struct{}
}

// NewBearerAuth creates the middleware. publicPaths bypass the check.
func NewBearerAuth(hash string, logger *logging.Logger, publicPaths ...string) (*BearerAuth, error) {
	if !IsValidHash(hash) {
		return nil, ErrInvalidHash
	}
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}
	return &BearerAuth{
		hash:     hash,
		public:   public,
		logger:   logger.Named("auth"),
		verified: make(map[[sha256.Size]byte]struct{}),
	}, nil
}

// Middleware wraps next with the token check.
func (a *BearerAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.public[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := bearerToken(r)
		if !ok || !a.check(token) {
			a.logger.Warn("Rejected unauthenticated request",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="paintserver"`)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *BearerAuth) check(token string) bool {
	digest := sha256.Sum256([]byte(token))
	a.mu.Lock()
	_, hit := a.verified[digest]
	a.mu.Unlock()
	if hit {
		return true
	}
	if VerifyToken(token, a.hash) != nil {
		return false
	}
	a.mu.Lock()
	if len(a.verified) >= maxCachedTokens {
		a.verified = make(map[[sha256.Size]byte]struct{})
	}
	a.verified[digest] = struct{}{}
	a.mu.Unlock()
	return true
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
