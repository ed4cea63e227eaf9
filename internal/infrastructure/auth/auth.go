package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"chat-server/internal/config"
	"chat-server/internal/domain/user"
)

// ContextUserIDKey is the gin context key holding the authenticated user's
// public ID.
const ContextUserIDKey = "auth_user_id"

// Validator issues and validates JWTs. Tokens are signed locally with the
// configured HMAC secret; when a JWKS URL is configured, RS256 tokens from
// that key set are accepted as well.
type Validator struct {
	cfg  *config.Config
	log  zerolog.Logger
	jwks *keyfunc.JWKS
}

// NewValidator initializes JWKS fetching when an external key set is configured.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	v := &Validator{cfg: cfg, log: log}
	if cfg.AuthJWKSURL == "" {
		return v, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}

	v.jwks = jwks
	return v, nil
}

// IssueToken signs an access token for the account.
func (v *Validator) IssueToken(account *user.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   account.PublicID,
		"email": account.Email,
		"iss":   v.cfg.AuthIssuer,
		"iat":   now.Unix(),
		"exp":   now.Add(v.cfg.AuthTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(v.cfg.AuthSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Middleware enforces bearer auth and stores the caller's user ID in the
// gin context.
func (v *Validator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		token, err := jwt.Parse(tokenString, v.keyfunc,
			jwt.WithIssuer(v.cfg.AuthIssuer),
			jwt.WithValidMethods([]string{"HS256", "RS256", "RS384", "RS512"}),
		)
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		subject, _ := claims["sub"].(string)
		if subject == "" {
			abortUnauthorized(c, "missing token subject")
			return
		}

		c.Set(ContextUserIDKey, subject)
		c.Next()
	}
}

// keyfunc resolves the verification key for a parsed token. HMAC tokens use
// the local secret; everything else goes through the JWKS when configured.
func (v *Validator) keyfunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		return []byte(v.cfg.AuthSecret), nil
	}
	if v.jwks != nil {
		return v.jwks.Keyfunc(token)
	}
	return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
}

// Ready indicates if the validator is prepared.
func (v *Validator) Ready() bool {
	if v == nil {
		return false
	}
	if v.cfg.AuthJWKSURL != "" {
		return v.jwks != nil
	}
	return v.cfg.AuthSecret != ""
}

// UserIDFromContext returns the authenticated user's public ID, if present.
func UserIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
