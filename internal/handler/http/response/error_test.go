package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "date", Message: "bad"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("sweep: %w", validator.ValidationErrors{{Field: "date", Message: "bad"}}), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"unauthorized", attendance.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"checked in", attendance.ErrAlreadyCheckedIn, http.StatusConflict, "CONFLICT"},
		{"checked out", attendance.ErrAlreadyCheckedOut, http.StatusConflict, "CONFLICT"},
		{"not checked in", attendance.ErrNotCheckedIn, http.StatusBadRequest, "BAD_REQUEST"},
		{"record missing", attendance.ErrAttendanceNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"profile missing", employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"bad shift", fmt.Errorf("%w: shift_end", employee.ErrInvalidShift), http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
		{"store", attendance.StoreError("list attendance", errors.New("timeout")), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, c.err)

			assert.Equal(t, c.status, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, c.code, resp.Error.Code)
		})
	}
}

func TestHandleError_WindowViolation(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, attendance.NewWindowViolation(shift.WindowCheck{
		Reason: shift.ReasonTooEarly,
		Opens:  shift.TimeOfDay{Hour: 21},
		Closes: shift.TimeOfDay{Hour: 6},
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Check-in is only allowed from 9:00 PM to 6:00 AM. You're too early!", resp.Error.Message)
	assert.Equal(t, map[string]string{"reason": "too_early", "opens": "9:00 PM", "closes": "6:00 AM"}, resp.Error.Details)
}

func TestSuccessWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	SuccessWithMeta(rec, []string{"a"}, &Meta{Page: 2, Limit: 1, TotalItems: 3, TotalPages: 3})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":["a"],"meta":{"page":2,"limit":1,"total_items":3,"total_pages":3}}`, rec.Body.String())
}
