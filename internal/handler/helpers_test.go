package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"carwash/internal/service"
	"carwash/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrUnauthenticated, http.StatusUnauthorized},
		{service.ErrInvalidCredential, http.StatusUnauthorized},
		{fmt.Errorf("%w: %w", service.ErrForbidden, service.ErrRoleNotFound), http.StatusForbidden},
		{fmt.Errorf("%w: missing permission payroll:view", service.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: payroll", service.ErrNotFound), http.StatusNotFound},
		{service.ErrEmployeeNotFound, http.StatusNotFound},
		{service.ErrDuplicatePayroll, http.StatusConflict},
		{service.ErrBuiltInRole, http.StatusBadRequest},
		{fmt.Errorf("%w: bad date", service.ErrInvalidInput), http.StatusBadRequest},
		{service.ErrInsufficientStock, http.StatusBadRequest},
		{service.ErrInvalidTransition, http.StatusBadRequest},
		{&service.PayrollComputationError{Cause: errors.New("db")}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)

	render := func(err error) response.Response {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		writeError(c, err)
		var res response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		return res
	}

	res := render(&service.PayrollComputationError{Cause: errors.New("pq: connection refused")})
	assert.Equal(t, "Payroll computation failed", res.Error)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	res = render(errors.New("pq: syntax error"))
	assert.Equal(t, "Internal server error", res.Error)

	res = render(service.ErrDuplicatePayroll)
	assert.Equal(t, service.ErrDuplicatePayroll.Error(), res.Error)
	assert.Equal(t, "error", res.Status)
}
