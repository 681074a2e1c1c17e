// REST client of the dashboard, used for the initial list fetches and the
// payment status checks the Poller runs on.

package dashboard

import (
	"Welzyne/internal/entity"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIClient talks to the Welzyne REST surface with a bearer token.
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchUsers loads the full user list, admin only server-side.
func (c *APIClient) FetchUsers(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := c.get(ctx, "/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FetchOrders loads the full order list.
func (c *APIClient) FetchOrders(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	if err := c.get(ctx, "/api/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CheckStatus implements StatusChecker against POST /mpesa/status.
// Transport errors and {success:false} answers are inconclusive.
func (c *APIClient) CheckStatus(ctx context.Context, checkoutRequestID string) (entity.STKStatusResponse, bool) {
	body, _ := json.Marshal(map[string]string{"checkoutRequestId": checkoutRequestID})
	req, reqerr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mpesa/status", bytes.NewReader(body))
	if reqerr != nil {
		return entity.STKStatusResponse{}, false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, senderr := c.httpClient.Do(req)
	if senderr != nil {
		return entity.STKStatusResponse{}, false
	}
	defer resp.Body.Close()
	var answer struct {
		Success bool                     `json:"success"`
		Data    entity.STKStatusResponse `json:"data"`
	}
	if decerr := json.NewDecoder(resp.Body).Decode(&answer); decerr != nil || !answer.Success {
		return entity.STKStatusResponse{}, false
	}
	return answer.Data, true
}

func (c *APIClient) get(ctx context.Context, path string, out interface{}) error {
	req, reqerr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if reqerr != nil {
		return reqerr
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, senderr := c.httpClient.Do(req)
	if senderr != nil {
		return senderr
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s replied with status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
