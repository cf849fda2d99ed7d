package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

// TenantHeader selects the tenant for SUPERADMIN tokens that carry none.
const TenantHeader = "X-Tenant-ID"

// Tenant resolves the tenant for the request. The token claim wins; the
// header is only honored for a SUPERADMIN token without a tenant.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := ""
		claims := Claims(c)
		if claims != nil {
			tenantID = strings.TrimSpace(claims.TenantID)
		}
		if tenantID == "" && claims != nil && claims.Role == models.RoleSuperAdmin {
			tenantID = strings.TrimSpace(c.GetHeader(TenantHeader))
		}
		if tenantID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "tenant could not be resolved"))
			c.Abort()
			return
		}
		c.Set(logger.TenantKey, tenantID)
		c.Next()
	}
}

// TenantID returns the tenant resolved by Tenant.
func TenantID(c *gin.Context) string {
	return c.GetString(logger.TenantKey)
}
