package middleware

import (
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/security"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type Authenticator interface {
	Authenticate(token string) (*entity.User, apierror.ErrorResponse)
}

type SessionMiddlewareConfig struct {
	Auth Authenticator
}

// NewSessionMiddleware resolves the session cookie to a user and stores it
// under utils.ContextUserKey. Requests without a valid session get a 401.
func NewSessionMiddleware(cfg *SessionMiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(security.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(apierror.UnauthorizedError.Code(), apierror.UnauthorizedError)
			}

			user, apierr := cfg.Auth.Authenticate(cookie.Value)
			if apierr != nil {
				return c.JSON(apierr.Code(), apierr)
			}

			c.Set(utils.ContextUserKey, user)
			return next(c)
		}
	}
}
