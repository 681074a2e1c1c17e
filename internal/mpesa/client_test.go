// Daraja gateway client tests in Welzyne.

package mpesa

import (
	"Welzyne/internal/entity"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDaraja mimics the gateway's OAuth, STK push and STK query endpoints.
type fakeDaraja struct {
	authCalls   int32
	queryResult string // raw JSON answer of the query endpoint
	rejectPush  bool
}

func (f *fakeDaraja) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			user, pass, ok := r.BasicAuth()
			if !ok || user != "test-key" || pass != "test-secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			atomic.AddInt32(&f.authCalls, 1)
			json.NewEncoder(w).Encode(map[string]string{"access_token": "fake-token", "expires_in": "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			if r.Header.Get("Authorization") != "Bearer fake-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			// The gateway only accepts international subscriber numbers
			assert.Equal(t, "254712345678", body["PhoneNumber"])
			assert.NotEmpty(t, body["Password"])
			if f.rejectPush {
				json.NewEncoder(w).Encode(map[string]string{"ResponseCode": "1", "ResponseDescription": "Invalid shortcode"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"MerchantRequestID": "mr-1",
				"CheckoutRequestID": "ws_CO_42",
				"ResponseCode":      "0",
				"CustomerMessage":   "Success. Request accepted for processing",
			})
		case "/mpesa/stkpushquery/v1/query":
			w.Write([]byte(f.queryResult))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeDaraja) client(t *testing.T) *Client {
	return NewClient(Config{
		BaseURL:        f.server(t).URL,
		ConsumerKey:    "test-key",
		ConsumerSecret: "test-secret",
		ShortCode:      "174379",
		PassKey:        "test-passkey",
		CallbackURL:    "https://welzyne.example.com/callback",
	})
}

func TestSTKPushNormalizesPhoneAndParsesAck(t *testing.T) {
	client := (&fakeDaraja{}).client(t)

	resp, err := client.STKPush(ctx, "0712345678", "1500", "WELZYNE-EXPRESS-4821")
	assert.NoError(t, err)
	assert.Equal(t, "ws_CO_42", resp.CheckoutRequestID)
}

func TestSTKPushSurfacesGatewayRejection(t *testing.T) {
	client := (&fakeDaraja{rejectPush: true}).client(t)

	_, err := client.STKPush(ctx, "0712345678", "1500", "WELZYNE-EXPRESS-4821")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid shortcode")
}

func TestSTKQueryParsesQuotedResultCode(t *testing.T) {
	// Daraja quotes ResultCode in query answers
	fake := &fakeDaraja{queryResult: `{"CheckoutRequestID":"ws_CO_42","ResultCode":"0","ResultDesc":"The service request is processed successfully."}`}
	client := fake.client(t)

	resp, err := client.STKQuery(ctx, "ws_CO_42")
	assert.NoError(t, err)
	assert.Equal(t, 0, resp.ResultCode)
}

func TestSTKQueryParsesBareResultCode(t *testing.T) {
	fake := &fakeDaraja{queryResult: `{"CheckoutRequestID":"ws_CO_42","ResultCode":1032,"ResultDesc":"Request cancelled by user"}`}
	client := fake.client(t)

	resp, err := client.STKQuery(ctx, "ws_CO_42")
	assert.NoError(t, err)
	assert.Equal(t, 1032, resp.ResultCode)
	assert.Equal(t, "Request cancelled by user", resp.ResultDesc)
}

func TestSTKQuerySurfacesVerdictlessAnswer(t *testing.T) {
	// An answer without a ResultCode must never read as payment success
	fake := &fakeDaraja{queryResult: `{"CheckoutRequestID":"ws_CO_42","ResultDesc":"The transaction is being processed"}`}
	client := fake.client(t)

	_, err := client.STKQuery(ctx, "ws_CO_42")
	assert.ErrorIs(t, err, entity.ErrMissingResultCode)
}

func TestAuthTokenIsCachedAcrossCalls(t *testing.T) {
	fake := &fakeDaraja{queryResult: `{"ResultCode":"0"}`}
	client := fake.client(t)

	_, err := client.STKQuery(ctx, "ws_CO_42")
	assert.NoError(t, err)
	_, err = client.STKQuery(ctx, "ws_CO_42")
	assert.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.authCalls))
}
