// Service layer of the internal package order.

package order

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/internal/mailer"
	"Welzyne/pkg/log"
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

// Service layer of internal package order which encapsulates courier order logic of Welzyne.
// Privileged mutations broadcast an event to connected dashboards only after the
// persistence write succeeds, exactly once per mutation.
type Service interface {
	// Books a new courier order and broadcasts NEW_ORDER
	createOrder(ctx context.Context, oe entity.Order) (entity.Order, error)
	// Fetches every order in Welzyne
	getAllOrders(context.Context) ([]entity.Order, error)
	// Moves an order along its delivery lifecycle and broadcasts ORDER_UPDATED
	updateStatus(ctx context.Context, id, status string) (entity.Order, error)
	// Removes an order and broadcasts ORDER_DELETED
	deleteOrder(ctx context.Context, id string) error
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	orderRepo   Repository
	broadcaster entity.Broadcaster
	mailer      mailer.Service
	logger      log.Logger
}

func NewService(orderRepo Repository, broadcaster entity.Broadcaster, mailer mailer.Service, logger log.Logger) Service {
	return service{orderRepo, broadcaster, mailer, logger}
}

func (s service) createOrder(ctx context.Context, oe entity.Order) (entity.Order, error) {
	// Validate the received order data which is serialized to entity.Order struct
	_, valerr := govalidator.ValidateStruct(oe)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return entity.Order{}, errors.GenerateValidationErrorResponse(valerr)
	}
	if oe.PaymentMode == "mpesa" && oe.MpesaNumber == "" {
		valerr := errors.New("mpesaNumber:M-Pesa number is mandatory for mpesa payment mode")
		return entity.Order{}, errors.GenerateValidationErrorResponse([]error{valerr})
	}

	// Assign a parcel number unless the booking form already carries one
	if oe.ID == "" {
		id, iderr := s.assignParcelNumber(ctx, oe.CourierType)
		if iderr != nil {
			// Error occured in assignParcelNumber()
			return entity.Order{}, iderr
		}
		oe.ID = id
	} else {
		// Client-supplied parcel numbers must still be unused
		taken, dberr := s.orderRepo.HasOrder(ctx, s.logger, oe.ID)
		if dberr != nil {
			return entity.Order{}, dberr
		} else if taken {
			return entity.Order{}, errors.BadRequest("Order already exists")
		}
	}
	if oe.Status == "" {
		oe.Status = entity.OrderPlaced
	}
	if oe.Date == "" {
		oe.Date = time.Now().UTC().Format("2006-01-02")
	}
	oe.PaymentStatus = entity.PaymentPending
	oe.PaymentConfirmed = false

	dberr := s.orderRepo.SetOrder(ctx, s.logger, oe)
	if dberr != nil {
		// Error occured in SetOrder(), no event on failed persistence
		return entity.Order{}, dberr
	}

	s.broadcaster.Broadcast(entity.NewOrderEvent(oe))
	// Booking confirmation mail failures must not fail the booking
	go s.mailer.SendBookingConfirmation(context.Background(), s.logger, oe)
	return oe, nil
}

func (s service) getAllOrders(ctx context.Context) ([]entity.Order, error) {
	return s.orderRepo.GetAllOrders(ctx, s.logger)
}

func (s service) updateStatus(ctx context.Context, id, status string) (entity.Order, error) {
	switch status {
	case entity.OrderPlaced, entity.OrderProcessing, entity.OrderInTransit, entity.OrderOutForDelivery, entity.OrderDelivered:
	default:
		valerr := errors.New("status:Unknown status")
		return entity.Order{}, errors.GenerateValidationErrorResponse([]error{valerr})
	}
	oe, dberr := s.orderRepo.UpdateStatus(ctx, s.logger, id, status)
	if dberr != nil {
		// NotFound or server error, no event on failed persistence
		return entity.Order{}, dberr
	}
	s.broadcaster.Broadcast(entity.OrderUpdatedEvent(oe))
	return oe, nil
}

func (s service) deleteOrder(ctx context.Context, id string) error {
	dberr := s.orderRepo.DelOrder(ctx, s.logger, id)
	if dberr != nil {
		// NotFound or server error, no event on failed persistence
		return dberr
	}
	s.broadcaster.Broadcast(entity.OrderDeletedEvent(id))
	return nil
}
