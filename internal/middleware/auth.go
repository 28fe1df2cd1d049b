package middleware

import (
	"errors"
	"net/http"
	"strings"

	"carwash/internal/config"
	"carwash/internal/service"
	"carwash/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	identityKey = "identity"
)

// Authenticator validates the access token of every request it guards.
type Authenticator struct {
	secret []byte
	log    *zap.Logger
}

func NewAuthenticator(auth config.AuthConfig, log *zap.Logger) *Authenticator {
	return &Authenticator{secret: auth.JWTSecret, log: log}
}

// TokenFromRequest reads the access token cookie, falling back to the Authorization header.
func TokenFromRequest(c *gin.Context) (string, error) {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token, nil
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("Authorization is missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("Invalid authorization format. Expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// Authenticate attaches the caller identity to the gin context and the request context.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := TokenFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		id, err := service.ParseAccessToken(tokenString, a.secret)
		if err != nil {
			a.log.Debug("rejected access token", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(service.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// CurrentIdentity returns the identity set by Authenticate, or nil.
func CurrentIdentity(c *gin.Context) *service.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*service.Identity)
	return id
}

// Guard turns authorization decisions into gin middleware.
type Guard struct {
	authz service.AuthorizationService
	log   *zap.Logger
}

func NewGuard(authz service.AuthorizationService, log *zap.Logger) *Guard {
	return &Guard{authz: authz, log: log}
}

// RequirePermission allows the request only when the caller's role grants every listed permission.
func (g *Guard) RequirePermission(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		for _, perm := range perms {
			if err := g.authz.RequirePermission(c.Request.Context(), id, perm); err != nil {
				g.abort(c, err, perm)
				return
			}
		}
		c.Next()
	}
}

// RequireRole allows the request only when the caller's role is one of roles.
func (g *Guard) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := g.authz.RequireRole(c.Request.Context(), CurrentIdentity(c), roles...); err != nil {
			g.abort(c, err, strings.Join(roles, ","))
			return
		}
		c.Next()
	}
}

func (g *Guard) abort(c *gin.Context, err error, required string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
	case errors.Is(err, service.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+required+"'"))
	default:
		g.log.Error("authorization check failed", zap.String("required", required), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify permissions"))
	}
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies.
// Secure deployments are cross-origin and need SameSite=None with Secure.
func SetTokenCookies(c *gin.Context, auth config.AuthConfig, accessToken, refreshToken string) {
	sameSite, secure := cookieMode(auth)
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, accessToken, int(auth.AccessTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, int(auth.RefreshTTL.Seconds()), "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies.
func ClearTokenCookies(c *gin.Context, auth config.AuthConfig) {
	sameSite, secure := cookieMode(auth)
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

func cookieMode(auth config.AuthConfig) (http.SameSite, bool) {
	if auth.SecureCookies {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}
