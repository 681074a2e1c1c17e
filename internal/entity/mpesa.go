// Structures of M-Pesa STK push requests and gateway responses in Welzyne.

package entity

import (
	"encoding/json"
	"errors"
)

// ErrMissingResultCode marks a status response without a verdict. ResultCode 0
// means success, so absence must never decode to the zero value.
var ErrMissingResultCode = errors.New("gateway status response carries no ResultCode")

// STKPushRequest is the operator-facing body of POST /mpesa/stkpush.
type STKPushRequest struct {
	PhoneNumber string `json:"phoneNumber" valid:"required,mpesanumber~phoneNumber:Couldn't validate M-Pesa number"`
	Amount      string `json:"amount" valid:"required,numeric~amount:Couldn't validate Amount"`
	OrderID     string `json:"orderId" valid:"required~orderId:Order ID is mandatory"`
}

// STKStatusRequest is the operator-facing body of POST /mpesa/status.
type STKStatusRequest struct {
	CheckoutRequestID string `json:"checkoutRequestId" valid:"required~checkoutRequestId:Checkout request ID is mandatory"`
}

// STKPushResponse is the gateway acknowledgement of an STK push.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKStatusResponse is the gateway verdict on a checkout request.
// ResultCode 0 means the customer completed the payment.
type STKStatusResponse struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
}

// The gateway encodes ResultCode as a quoted string while dashboard clients
// expect a bare number, so decoding accepts both forms.
func (r *STKStatusResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		MerchantRequestID string      `json:"MerchantRequestID"`
		CheckoutRequestID string      `json:"CheckoutRequestID"`
		ResultCode        json.Number `json:"ResultCode"`
		ResultDesc        string      `json:"ResultDesc"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ResultCode.String() == "" {
		return ErrMissingResultCode
	}
	code, err := raw.ResultCode.Int64()
	if err != nil {
		return err
	}
	r.MerchantRequestID = raw.MerchantRequestID
	r.CheckoutRequestID = raw.CheckoutRequestID
	r.ResultCode = int(code)
	r.ResultDesc = raw.ResultDesc
	return nil
}
