// Package handlers HTTP API 处理器
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/casnode/internal/api/http/middleware"
	apitypes "github.com/weisyn/casnode/internal/api/http/types"
)

// respondOK 写入成功响应
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, apitypes.NewSuccessResponse(data).WithRequestID(middleware.GetRequestID(c)))
}

func respondPage(c *gin.Context, data interface{}, meta *apitypes.PageMeta) {
	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(data).WithPagination(meta).WithRequestID(middleware.GetRequestID(c)))
}

// respondError 写入统一错误响应并中止
func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status,
		apitypes.NewErrorResponse(code, message, details).WithRequestID(middleware.GetRequestID(c)))
}
