package handler

import (
	"errors"
	"net/http"
	"strconv"

	"carwash/internal/service"
	"carwash/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var compErr *service.PayrollComputationError
	switch {
	case errors.As(err, &compErr):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrRoleNotFound):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicatePayroll):
		return http.StatusConflict
	case errors.Is(err, service.ErrBuiltInRole),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError renders err in the standard envelope. Internal failures never leak their cause.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "Internal server error"
		var compErr *service.PayrollComputationError
		if errors.As(err, &compErr) {
			msg = "Payroll computation failed"
		}
	}
	c.JSON(status, response.Error(status, msg))
}

// bindJSON writes a 400 and returns false when the body does not bind.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return false
	}
	return true
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, data))
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
