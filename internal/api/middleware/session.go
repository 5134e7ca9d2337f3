package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/halcyonchat/halcyon/internal/services"
	"github.com/halcyonchat/halcyon/internal/utils"
)

// SessionCookie is the cookie browsers carry the session token in; API
// clients may send it as a bearer token instead.
const SessionCookie = "session_token"

const userContextKey = "user"

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
		Code:    utils.CodeUnauthorized,
		Message: msg,
	})
}

// SessionAuth resolves the caller's identity from the request: verify the
// token, then join it to the persisted user row. A token whose subject has
// no row is logged and treated as unauthenticated, not as a server error.
func SessionAuth(users services.UserService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "JWT_SECRET is not set",
			})
			return
		}

		raw := tokenFromRequest(c)
		if raw == "" {
			unauthorized(c, "missing session token")
			return
		}

		claims := &jwt.RegisteredClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || tok == nil || !tok.Valid || claims.Subject == "" {
			unauthorized(c, "invalid token")
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			// valid token but no row: a deleted account's session
			if utils.IsCode(err, utils.CodeNotFound) {
				if log != nil {
					log.WithFields(logrus.Fields{
						"user_id": claims.Subject,
					}).Warn("session subject has no user row")
				}
				unauthorized(c, "unauthorized")
				return
			}

			// anything else is an infrastructure failure, not a bad session
			if log != nil {
				log.WithError(err).Error("failed to resolve session user")
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "failed to resolve session",
			})
			return
		}

		c.Set("user_id", u.ID)
		c.Set(userContextKey, u)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if v, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}
