package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ==================== 审计上下文 ====================

type auditContextKey struct{}

// AuditInfo 审计信息
type AuditInfo struct {
	Operator string
}

// WithAuditInfo 注入审计信息到 context
func WithAuditInfo(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, auditContextKey{}, &AuditInfo{Operator: operator})
}

// GetOperator 从 context 获取操作人
func GetOperator(ctx context.Context) string {
	if info, ok := ctx.Value(auditContextKey{}).(*AuditInfo); ok {
		return info.Operator
	}
	return ""
}

// ==================== Gin 中间件 ====================

// AuditContext 审计上下文中间件
// 把 X-Operator 头写进 gin 和 request context，落库时记 created_by/updated_by
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := c.GetHeader("X-Operator")
		if operator == "" {
			operator = "system"
		}
		c.Set("operator", operator)
		c.Request = c.Request.WithContext(WithAuditInfo(c.Request.Context(), operator))
		c.Next()
	}
}
