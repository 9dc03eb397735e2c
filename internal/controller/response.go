package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"item_taxonomy_v1_202603/internal/apperr"
)

// fail 业务错误统一出口
// apperr 按自带状态码返回，其余一律 500
func fail(c *gin.Context, err error) {
	var appErr apperr.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), gin.H{
			"code":    appErr.HTTPStatus(),
			"error":   appErr.Code(),
			"message": appErr.Error(),
			"detail":  appErr,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    500,
		"message": "内部错误: " + err.Error(),
	})
}

// badRequest 参数绑定失败
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    400,
		"message": "参数错误: " + err.Error(),
	})
}

// ok 成功响应
func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

// operator 审计操作人，由中间件写入
func operator(c *gin.Context) string {
	return c.GetString("operator")
}
