// Email notifications of Welzyne, delivered through the EmailJS REST API.
// Mail failures are logged and swallowed, a booking or payment never fails
// because its confirmation mail did.

package mailer

import (
	"Welzyne/internal/entity"
	"Welzyne/pkg/log"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

type Service interface {
	// Mails the customer after its courier booking got persisted
	SendBookingConfirmation(ctx context.Context, logger log.Logger, oe entity.Order)
	// Mails the customer after its M-Pesa payment got confirmed
	SendPaymentConfirmation(ctx context.Context, logger log.Logger, oe entity.Order)
}

type service struct {
	endpoint   string
	serviceID  string
	templateID string
	publicKey  string
	client     *http.Client
}

// NewService reads the EmailJS credentials from the environment.
// With no credentials configured every send becomes a logged no-op, which
// keeps local development mail-free.
func NewService() Service {
	endpoint := os.Getenv("EMAILJS_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://api.emailjs.com/api/v1.0/email/send"
	}
	return service{
		endpoint:   endpoint,
		serviceID:  os.Getenv("EMAILJS_SERVICE_ID"),
		templateID: os.Getenv("EMAILJS_TEMPLATE_ID"),
		publicKey:  os.Getenv("EMAILJS_PUBLIC_KEY"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s service) SendBookingConfirmation(ctx context.Context, logger log.Logger, oe entity.Order) {
	payment := "Pending (Cash)"
	if oe.PaymentMode == "mpesa" {
		payment = "Pending (M-Pesa)"
	}
	s.send(ctx, logger, oe, payment)
}

func (s service) SendPaymentConfirmation(ctx context.Context, logger log.Logger, oe entity.Order) {
	s.send(ctx, logger, oe, "Confirmed (M-Pesa)")
}

// send posts one templated mail to the EmailJS endpoint.
func (s service) send(ctx context.Context, logger log.Logger, oe entity.Order, payment string) {
	if s.serviceID == "" || s.templateID == "" || s.publicKey == "" {
		logger.WithCtx(ctx).Warn().Msgf("EmailJS not configured, skipping mail for order %s", oe.ID)
		return
	}
	wholeBooking := "No"
	if oe.WholeBooking {
		wholeBooking = "Yes"
	}
	body := map[string]interface{}{
		"service_id":  s.serviceID,
		"template_id": s.templateID,
		"user_id":     s.publicKey,
		"template_params": map[string]string{
			"pickup":       oe.PickupLocation,
			"delivery":     oe.Destination,
			"details":      oe.PackageDetails,
			"type":         oe.CourierType,
			"payment":      payment,
			"mpesa":        oe.MpesaNumber,
			"price":        oe.Amount,
			"parcelNumber": oe.ID,
			"userName":     oe.Customer,
			"userEmail":    oe.Email,
			"wholeBooking": wholeBooking,
		},
	}
	payload, mrsherr := json.Marshal(body)
	if mrsherr != nil {
		logger.WithCtx(ctx).Error().Err(mrsherr).Msg("Couldn't serialize EmailJS payload")
		return
	}
	req, reqerr := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if reqerr != nil {
		logger.WithCtx(ctx).Error().Err(reqerr).Msg("Couldn't build EmailJS request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, senderr := s.client.Do(req)
	if senderr != nil {
		logger.WithCtx(ctx).Error().Err(senderr).Msgf("Couldn't mail confirmation for order %s", oe.ID)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		logger.WithCtx(ctx).Error().Err(fmt.Errorf("EmailJS replied with status %d", resp.StatusCode)).Msgf("Couldn't mail confirmation for order %s", oe.ID)
		return
	}
	logger.WithCtx(ctx).Info().Msgf("Mailed confirmation for order %s to %s", oe.ID, oe.Email)
}
