package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	financeapp "github.com/grocer/backoffice/internal/application/finance"
	"github.com/grocer/backoffice/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindPayment(t *testing.T, body string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req financeapp.RecordPaymentRequest
	return w, h.BindJSON(c, &req)
}

func TestDecimalGreaterThanZero(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"positive string", `{"amount":"150.50","method":"CASH"}`, true},
		{"positive number", `{"amount":20,"method":"BANK"}`, true},
		{"zero", `{"amount":"0","method":"CASH"}`, false},
		{"negative", `{"amount":"-5","method":"CASH"}`, false},
		{"missing", `{"method":"CASH"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := bindPayment(t, tt.body)
			assert.Equal(t, tt.ok, ok, w.Body.String())
		})
	}
}

func TestFormatValidationErrors_FieldNames(t *testing.T) {
	w, ok := bindPayment(t, `{"amount":"-1","method":"CARD"}`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Fields, 2)

	messages := map[string]string{}
	for _, f := range resp.Error.Fields {
		messages[f.Field] = f.Message
	}
	assert.Equal(t, "amount must be greater than zero", messages["amount"])
	assert.Equal(t, "method must be one of: CASH, CHEQUE, BANK", messages["method"])
}

func TestBindJSON_Malformed(t *testing.T) {
	w, ok := bindPayment(t, `{"amount":`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
}
