// M-Pesa gateway response decoding tests in Welzyne.

package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSTKStatusResponseRejectsMissingResultCode(t *testing.T) {
	// ResultCode 0 means payment success, so a verdict-less payload must
	// surface an error instead of decoding to the zero value
	var resp STKStatusResponse
	decerr := json.Unmarshal([]byte(`{"CheckoutRequestID":"ws_CO_42","ResultDesc":"pending"}`), &resp)
	assert.ErrorIs(t, decerr, ErrMissingResultCode)
}

func TestSTKStatusResponseRejectsNullResultCode(t *testing.T) {
	var resp STKStatusResponse
	decerr := json.Unmarshal([]byte(`{"CheckoutRequestID":"ws_CO_42","ResultCode":null}`), &resp)
	assert.ErrorIs(t, decerr, ErrMissingResultCode)
}
