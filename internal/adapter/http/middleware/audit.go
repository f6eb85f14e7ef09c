package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
}

// auditedRoutes maps "METHOD route-pattern" to the audit action.
var auditedRoutes = map[string]auditRoute{
	"POST /api/v1/auth/register":             {domain.AuditActionRegister, "user"},
	"POST /api/v1/auth/login":                {domain.AuditActionLogin, "session"},
	"POST /api/v1/profiles":                  {domain.AuditActionCreateProfile, "profile"},
	"PUT /api/v1/profiles/me":                {domain.AuditActionUpdateProfile, "profile"},
	"POST /api/v1/wallets/:network":          {domain.AuditActionCreateWallet, "wallet"},
	"POST /api/v1/wallets/:network/payments": {domain.AuditActionSendPayment, "payment"},
	"POST /api/v1/wallets/:network/tokens":   {domain.AuditActionIssueToken, "token"},
}

// AuditLog records successful write operations after the handler ran.
// Request bodies are never recorded.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		route, ok := auditedRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		var userID *uuid.UUID
		if id, ok := UserID(c); ok {
			userID = &id
		}

		details := map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		}
		if network := c.Param("network"); network != "" {
			details["network"] = network
		}
		raw, _ := json.Marshal(details)

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       route.action,
			ResourceType: route.resourceType,
			ResourceID:   c.GetString(CtxRequestID),
			IPAddress:    c.ClientIP(),
			Details:      string(raw),
			CreatedAt:    time.Now().UTC(),
		})
	}
}
