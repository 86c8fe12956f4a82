package httpapi

import (
	"github.com/gin-gonic/gin"
)

const (
	errCodeBadRequest     = "BAD_REQUEST"
	errCodeUnauthorized   = "AUTH_UNAUTHORIZED"
	errCodeRateLimited    = "RATE_LIMITED"
	errCodeNoChannel      = "NO_CHANNEL"
	errCodeDispatchFailed = "DISPATCH_FAILED"
)

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

// dispatchErrorResponse 額外帶出平台回傳的狀態碼與錯誤內容。
type dispatchErrorResponse struct {
	errorResponse
	PlatformStatus int `json:"platform_status"`
	PlatformError  any `json:"platform_error"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Success:   false,
		Error:     msg,
		ErrorCode: code,
	})
}

func writeDispatchError(c *gin.Context, status int, msg string, platformStatus int, platformErr any) {
	c.AbortWithStatusJSON(status, dispatchErrorResponse{
		errorResponse: errorResponse{
			Success:   false,
			Error:     msg,
			ErrorCode: errCodeDispatchFailed,
		},
		PlatformStatus: platformStatus,
		PlatformError:  platformErr,
	})
}
