package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
)

const (
	HeaderTenantID  = "X-Tenant-ID"
	HeaderRequestID = "X-Request-ID"

	tenantIDKey = "tenant_id"
)

// RequestID propagates the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequireTenant resolves the tenant from the X-Tenant-ID header and rejects
// requests for unknown tenants.
func (h *Handlers) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderTenantID))
		if raw == "" {
			respondError(c, http.StatusBadRequest, "tenant id is required", nil)
			return
		}

		tenantID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tenantID <= 0 {
			respondError(c, http.StatusBadRequest, "tenant id must be a positive integer", nil)
			return
		}

		exists, err := h.tenants.Exists(c.Request.Context(), tenantID)
		if err != nil {
			h.handleError(c, err)
			return
		}
		if !exists {
			respondError(c, http.StatusNotFound, "tenant not found", nil)
			return
		}

		c.Set(tenantIDKey, tenantID)
		c.Next()
	}
}

func tenantFrom(c *gin.Context) int64 {
	return c.GetInt64(tenantIDKey)
}
