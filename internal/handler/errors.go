package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maturity-dashboard/internal/service"
	"maturity-dashboard/pkg/auth"
	"maturity-dashboard/pkg/logger"
	"maturity-dashboard/pkg/rbac"
)

// writeError 将 service 错误映射为 HTTP 状态码
func writeError(c *gin.Context, log *zap.Logger, op string, err error) {
	var denied *rbac.PermissionDeniedError
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrForbidden), errors.As(err, &denied):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidZoom),
		errors.Is(err, service.ErrInvalidConfig):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrBadCredential):
		status, msg = http.StatusUnauthorized, err.Error()
	}

	l := logger.WithTrace(c.Request.Context(), log)
	if status == http.StatusInternalServerError {
		l.Error(op+": failed", zap.Error(err))
	} else {
		l.Warn(op+": rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

// pathID 解析路径中的 :id 参数
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// caller 读取调用方身份，缺失时返回 401
func caller(c *gin.Context) (auth.Identity, bool) {
	id, ok := IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	}
	return id, ok
}
