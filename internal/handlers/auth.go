package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/assignment-service/internal/config"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

const (
	callerKey = "caller"

	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

// TokenParser turns a bearer token into a caller
type TokenParser func(token string) (models.Caller, error)

// NewCasdoorTokenParser configures the casdoor SDK and parses its JWTs
func NewCasdoorTokenParser(cfg config.AuthConfig) TokenParser {
	casdoorsdk.InitConfig(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.OrganizationName, cfg.ApplicationName)

	return func(token string) (models.Caller, error) {
		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			return models.Caller{}, err
		}
		return callerFromClaims(claims), nil
	}
}

func callerFromClaims(user *casdoorsdk.Claims) models.Caller {
	caller := models.Caller{ID: user.Id, Name: user.Name, Role: models.RoleStudent}
	if caller.ID == "" {
		caller.ID = user.Name
	}

	switch {
	case user.IsAdmin:
		caller.Role = models.RoleAdmin
	case strings.EqualFold(user.Tag, string(models.RoleTeacher)) || strings.EqualFold(user.Type, string(models.RoleTeacher)):
		caller.Role = models.RoleTeacher
	default:
		for _, role := range user.Roles {
			if role != nil && strings.EqualFold(role.Name, string(models.RoleTeacher)) {
				caller.Role = models.RoleTeacher
			}
		}
	}
	return caller
}

// AuthMiddleware attaches the caller to the request. A nil parser trusts the
// identity headers set by the gateway.
func AuthMiddleware(parser TokenParser, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			caller models.Caller
			err    error
		)

		if parser != nil {
			token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
			if token == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing bearer token"})
				return
			}
			caller, err = parser(token)
			if err != nil {
				logger.Warn("Rejected token", "path", c.Request.URL.Path, "error", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid token"})
				return
			}
		} else {
			caller = models.Caller{
				ID:   strings.TrimSpace(c.GetHeader(UserIDHeader)),
				Role: models.UserRole(strings.ToLower(strings.TrimSpace(c.GetHeader(UserRoleHeader)))),
			}
			if caller.Role == "" {
				caller.Role = models.RoleStudent
			}
		}

		if caller.ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
			return
		}

		c.Set(callerKey, caller)
		c.Set("user_id", caller.ID)
		c.Next()
	}
}

// RequireTeacher guards maintenance endpoints
func RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentCaller(c)
		if !ok {
			c.Abort()
			return
		}
		if !caller.IsTeacher() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Access denied",
				Code:    "FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}
