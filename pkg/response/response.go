package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the error envelope; catalog payloads are written bare.
type APIResponse struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Error     interface{} `json:"error,omitempty"`
}

func Error(ctx *gin.Context, status int, message string, err interface{}) APIResponse {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return APIResponse{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
}

// Abort writes an error envelope and stops the handler chain.
func Abort(ctx *gin.Context, status int, message string, err interface{}) {
	resp := Error(ctx, status, message, err)
	ctx.AbortWithStatusJSON(resp.Status, resp)
}
