// Service layer of the internal package mpesa.

package mpesa

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/internal/mailer"
	"Welzyne/internal/order"
	"Welzyne/pkg/log"
	"context"

	"github.com/asaskevich/govalidator"
)

// Gateway abstracts the Daraja client so tests can stand in a fake.
type Gateway interface {
	STKPush(ctx context.Context, phoneNumber, amount, orderID string) (entity.STKPushResponse, error)
	STKQuery(ctx context.Context, checkoutRequestID string) (entity.STKStatusResponse, error)
}

// Service layer of internal package mpesa which encapsulates mobile payment logic of Welzyne.
type Service interface {
	// Initiates an STK push for an order and correlates the checkout request
	stkPush(ctx context.Context, req entity.STKPushRequest) (entity.STKPushResponse, error)
	// Queries the verdict on a checkout request, confirming the order when paid
	status(ctx context.Context, req entity.STKStatusRequest) (entity.STKStatusResponse, error)
}

type service struct {
	gateway     Gateway
	mpesaRepo   Repository
	orderRepo   order.Repository
	broadcaster entity.Broadcaster
	mailer      mailer.Service
	logger      log.Logger
}

func NewService(gateway Gateway, mpesaRepo Repository, orderRepo order.Repository, broadcaster entity.Broadcaster, mailer mailer.Service, logger log.Logger) Service {
	return service{gateway, mpesaRepo, orderRepo, broadcaster, mailer, logger}
}

func (s service) stkPush(ctx context.Context, req entity.STKPushRequest) (entity.STKPushResponse, error) {
	// Validate the received request data against its entity tags
	_, valerr := govalidator.ValidateStruct(req)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return entity.STKPushResponse{}, errors.GenerateValidationErrorResponse(valerr)
	}
	// The order must exist and expect a mobile payment
	oe, dberr := s.orderRepo.GetOrder(ctx, s.logger, req.OrderID)
	if dberr != nil {
		// NotFound or server error from GetOrder()
		return entity.STKPushResponse{}, dberr
	}
	if oe.PaymentMode != "mpesa" {
		return entity.STKPushResponse{}, errors.BadRequest("Order isn't payable via M-Pesa")
	}
	if oe.PaymentConfirmed {
		return entity.STKPushResponse{}, errors.BadRequest("Order is already paid")
	}

	resp, gwerr := s.gateway.STKPush(ctx, req.PhoneNumber, req.Amount, req.OrderID)
	if gwerr != nil {
		s.logger.WithCtx(ctx).Error().Err(gwerr).Msgf("STK push for order %s failed", req.OrderID)
		return entity.STKPushResponse{}, errors.BadGateway(gwerr.Error())
	}
	// Remember which order this checkout request pays for, the status poller
	// only carries the checkout-request ID
	if dberr := s.mpesaRepo.SetCheckout(ctx, s.logger, resp.CheckoutRequestID, req.OrderID); dberr != nil {
		return entity.STKPushResponse{}, dberr
	}
	return resp, nil
}

func (s service) status(ctx context.Context, req entity.STKStatusRequest) (entity.STKStatusResponse, error) {
	_, valerr := govalidator.ValidateStruct(req)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return entity.STKStatusResponse{}, errors.GenerateValidationErrorResponse(valerr)
	}
	resp, gwerr := s.gateway.STKQuery(ctx, req.CheckoutRequestID)
	if gwerr != nil {
		// The gateway answers queries for in-flight payments with an error
		// payload, pollers count this as an inconclusive attempt
		s.logger.WithCtx(ctx).Warn().Err(gwerr).Msgf("STK query for %s inconclusive", req.CheckoutRequestID)
		return entity.STKStatusResponse{}, errors.BadGateway(gwerr.Error())
	}
	if resp.ResultCode == 0 {
		s.confirmOrder(ctx, req.CheckoutRequestID)
	}
	return resp, nil
}

// confirmOrder marks the paid order and fans the update out.
// Runs at most once effectively: a second confirmation writes the same flags.
func (s service) confirmOrder(ctx context.Context, checkoutRequestID string) {
	orderID, dberr := s.mpesaRepo.GetCheckout(ctx, s.logger, checkoutRequestID)
	if dberr != nil {
		s.logger.WithCtx(ctx).Error().Err(dberr).Msgf("No order correlated with checkout %s", checkoutRequestID)
		return
	}
	oe, dberr := s.orderRepo.ConfirmPayment(ctx, s.logger, orderID)
	if dberr != nil {
		s.logger.WithCtx(ctx).Error().Err(dberr).Msgf("Couldn't confirm payment of order %s", orderID)
		return
	}
	s.broadcaster.Broadcast(entity.OrderUpdatedEvent(oe))
	go s.mailer.SendPaymentConfirmation(context.Background(), s.logger, oe)
}
