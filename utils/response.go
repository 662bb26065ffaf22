package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Success writes data as-is with 200.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, data)
}

// Created writes data as-is with 201.
func Created(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	ctx.JSON(status, ErrorResponse{Code: code, Message: message})
}

// ErrorWithCause adds the underlying error text, but only in gin debug mode.
func ErrorWithCause(ctx *gin.Context, status int, code int, message string, cause error) {
	resp := ErrorResponse{Code: code, Message: message}
	if cause != nil && gin.Mode() == gin.DebugMode {
		resp.Error = cause.Error()
	}
	ctx.JSON(status, resp)
}
