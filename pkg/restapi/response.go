package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Created 资源创建成功
func Created(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed 失败响应，按错误码映射HTTP状态
func Failed(ctx *gin.Context, err error) {
	e := errno.Decode(err)
	status := HTTPStatus(e)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", map[string]interface{}{
			"path":       ctx.FullPath(),
			"request_id": ctx.GetString("request_id"),
			"error":      err.Error(),
		})
	}
	message := e.Message
	if err != nil && err != e && errno.IsClientError(e) {
		message = err.Error()
	}
	ctx.AbortWithStatusJSON(status, Response{
		Code:    e.Code,
		Message: message,
	})
}

// HTTPStatus 错误码对应的HTTP状态
func HTTPStatus(e *errno.Errno) int {
	switch e {
	case errno.OK:
		return http.StatusOK
	case errno.ErrUnauthorized, errno.ErrUserUUIDRequired:
		return http.StatusUnauthorized
	case errno.ErrNotFound, errno.ErrVideoNotFound, errno.ErrBatchNotFound, errno.ErrPostNotFound, errno.ErrItemNotFound:
		return http.StatusNotFound
	case errno.ErrInvalidTransition, errno.ErrInvalidState:
		return http.StatusConflict
	case errno.ErrAdapter, errno.ErrProviderFailure:
		return http.StatusBadGateway
	case errno.ErrAdapterTimeout:
		return http.StatusGatewayTimeout
	}
	if errno.IsClientError(e) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
