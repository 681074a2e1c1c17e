// Daraja (Safaricom M-Pesa) gateway client used internally in Welzyne.

package mpesa

import (
	"Welzyne/internal/entity"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to the Daraja REST API: OAuth, STK push and STK query.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	shortCode      string
	passKey        string
	callbackURL    string
	httpClient     *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Config carries the Daraja credentials, fetched from env in main.
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	PassKey        string
	CallbackURL    string
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		shortCode:      cfg.ShortCode,
		passKey:        cfg.PassKey,
		callbackURL:    cfg.CallbackURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

// STKPush prompts the customer's phone to authorize the payment.
func (c *Client) STKPush(ctx context.Context, phoneNumber, amount, orderID string) (entity.STKPushResponse, error) {
	timestamp := time.Now().Format("20060102150405")
	body := map[string]string{
		"BusinessShortCode": c.shortCode,
		"Password":          c.password(timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            amount,
		"PartyA":            normalizePhoneNumber(phoneNumber),
		"PartyB":            c.shortCode,
		"PhoneNumber":       normalizePhoneNumber(phoneNumber),
		"CallBackURL":       c.callbackURL,
		"AccountReference":  orderID,
		"TransactionDesc":   "Welzyne courier booking " + orderID,
	}
	var resp entity.STKPushResponse
	if err := c.post(ctx, "/mpesa/stkpush/v1/processrequest", body, &resp); err != nil {
		return entity.STKPushResponse{}, err
	}
	if resp.ResponseCode != "0" {
		return entity.STKPushResponse{}, fmt.Errorf("gateway rejected STK push: %s", resp.ResponseDescription)
	}
	return resp, nil
}

// STKQuery asks the gateway for the verdict on a checkout request.
// While the customer hasn't acted yet the gateway replies with an error
// payload, which callers treat as an inconclusive poll.
func (c *Client) STKQuery(ctx context.Context, checkoutRequestID string) (entity.STKStatusResponse, error) {
	timestamp := time.Now().Format("20060102150405")
	body := map[string]string{
		"BusinessShortCode": c.shortCode,
		"Password":          c.password(timestamp),
		"Timestamp":         timestamp,
		"CheckoutRequestID": checkoutRequestID,
	}
	var resp entity.STKStatusResponse
	if err := c.post(ctx, "/mpesa/stkpushquery/v1/query", body, &resp); err != nil {
		return entity.STKStatusResponse{}, err
	}
	return resp, nil
}

// password derives the Lipa-Na-Mpesa request password for a timestamp.
func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.shortCode + c.passKey + timestamp))
}

// post sends an authenticated JSON request and decodes the gateway reply into out.
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	token, autherr := c.authToken(ctx)
	if autherr != nil {
		return autherr
	}
	payload, mrsherr := json.Marshal(body)
	if mrsherr != nil {
		return mrsherr
	}
	req, reqerr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if reqerr != nil {
		return reqerr
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, senderr := c.httpClient.Do(req)
	if senderr != nil {
		return senderr
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var gwerr struct {
			ErrorCode    string `json:"errorCode"`
			ErrorMessage string `json:"errorMessage"`
		}
		if decerr := json.NewDecoder(resp.Body).Decode(&gwerr); decerr == nil && gwerr.ErrorMessage != "" {
			return fmt.Errorf("gateway error %s: %s", gwerr.ErrorCode, gwerr.ErrorMessage)
		}
		return fmt.Errorf("gateway replied with status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// authToken returns a cached OAuth token, refreshing it when expired.
func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}
	req, reqerr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if reqerr != nil {
		return "", reqerr
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	resp, senderr := c.httpClient.Do(req)
	if senderr != nil {
		return "", senderr
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway auth replied with status %d", resp.StatusCode)
	}
	var auth struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if decerr := json.NewDecoder(resp.Body).Decode(&auth); decerr != nil {
		return "", decerr
	}
	c.accessToken = auth.AccessToken
	// Daraja tokens live for an hour, refresh a minute early
	c.tokenExpiry = time.Now().Add(59 * time.Minute)
	return c.accessToken, nil
}

// normalizePhoneNumber converts local 07XX/01XX subscriber numbers into the
// 254-prefixed international format the gateway expects.
func normalizePhoneNumber(number string) string {
	if strings.HasPrefix(number, "0") {
		return "254" + number[1:]
	}
	return strings.TrimPrefix(number, "+")
}
