package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCode is the machine-readable code in an error response.
type ErrorCode string

const (
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

// DataResponse wraps a single object.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ListResponse wraps one page of a collection.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func respondData[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, DataResponse[T]{Data: data})
}

func respondList[T any](c *gin.Context, data []T, total, page, limit int) {
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, ListResponse[T]{Data: data, Total: total, Page: page, Limit: limit})
}

func respondError(c *gin.Context, status int, code ErrorCode, message string) {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	c.AbortWithStatusJSON(status, resp)
}

func respondValidationError(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, ErrCodeValidation, message)
}

func respondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, ErrCodeNotFound, message)
}

func respondInternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
}
