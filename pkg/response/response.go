package response

import (
	"net/http"

	"AvisoBot/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Body 统一响应结构
type Body struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: 0, Msg: msg, Data: data})
}

// Fail 参数类错误，HTTP 400
func Fail(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusBadRequest, Body{Code: http.StatusBadRequest, Msg: msg, Data: data})
}

// AbortWithStatus 中断请求并返回指定状态码
func AbortWithStatus(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Body{Code: status, Msg: msg})
}

// Error 根据错误码输出，未携带错误码时按 500 处理
func Error(c *gin.Context, err error, data interface{}) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	if code >= 400 && code < 600 {
		status = code
	} else if code >= 4000 && code < 6000 {
		status = code / 10
	}
	c.JSON(status, Body{Code: code, Msg: errors.GetMessage(err), Data: data})
}

// Result 业务已处理但附带结果码（0 表示成功），HTTP 200
func Result(c *gin.Context, code int, msg string, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: code, Msg: msg, Data: data})
}
