// M-Pesa service tests in Welzyne.

package mpesa

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/internal/test"
	"Welzyne/pkg/log"
	"Welzyne/pkg/validations"
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Global instance of log.Logger to be used during mpesa testing.
var logger log.Logger

// Global context
var ctx context.Context = context.Background()

func TestMain(m *testing.M) {
	logger = log.New("test")
	// Custom govalidator tags used by the entity valid annotations
	validations.RegisterCustomValidations(ctx, logger)
	os.Exit(m.Run())
}

// fakeGateway scripts the Daraja answers for one test.
type fakeGateway struct {
	pushResp  entity.STKPushResponse
	pushErr   error
	queryResp entity.STKStatusResponse
	queryErr  error
}

func (g *fakeGateway) STKPush(ctx context.Context, phoneNumber, amount, orderID string) (entity.STKPushResponse, error) {
	return g.pushResp, g.pushErr
}

func (g *fakeGateway) STKQuery(ctx context.Context, checkoutRequestID string) (entity.STKStatusResponse, error) {
	return g.queryResp, g.queryErr
}

// fakeCheckoutRepository is an in-memory checkout correlation store.
type fakeCheckoutRepository struct {
	checkouts map[string]string
}

func newFakeCheckoutRepository() *fakeCheckoutRepository {
	return &fakeCheckoutRepository{checkouts: map[string]string{}}
}

func (r *fakeCheckoutRepository) SetCheckout(ctx context.Context, logger log.Logger, checkoutRequestID, orderID string) error {
	r.checkouts[checkoutRequestID] = orderID
	return nil
}

func (r *fakeCheckoutRepository) GetCheckout(ctx context.Context, logger log.Logger, checkoutRequestID string) (string, error) {
	orderID, ok := r.checkouts[checkoutRequestID]
	if !ok {
		return "", errors.NotFound("Checkout request not found")
	}
	return orderID, nil
}

// fakeOrderRepository implements the slice of order.Repository the payment flow touches.
type fakeOrderRepository struct {
	orders map[string]entity.Order
}

func newFakeOrderRepository(orders ...entity.Order) *fakeOrderRepository {
	r := &fakeOrderRepository{orders: map[string]entity.Order{}}
	for _, oe := range orders {
		r.orders[oe.ID] = oe
	}
	return r
}

func (r *fakeOrderRepository) GetOrder(ctx context.Context, logger log.Logger, id string) (entity.Order, error) {
	oe, ok := r.orders[id]
	if !ok {
		return entity.Order{}, errors.NotFound("Order not found")
	}
	return oe, nil
}

func (r *fakeOrderRepository) GetAllOrders(ctx context.Context, logger log.Logger) ([]entity.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepository) HasOrder(ctx context.Context, logger log.Logger, id string) (bool, error) {
	_, ok := r.orders[id]
	return ok, nil
}

func (r *fakeOrderRepository) SetOrder(ctx context.Context, logger log.Logger, oe entity.Order) error {
	r.orders[oe.ID] = oe
	return nil
}

func (r *fakeOrderRepository) UpdateStatus(ctx context.Context, logger log.Logger, id, status string) (entity.Order, error) {
	return entity.Order{}, errors.NotFound("Order not found")
}

func (r *fakeOrderRepository) ConfirmPayment(ctx context.Context, logger log.Logger, id string) (entity.Order, error) {
	oe, ok := r.orders[id]
	if !ok {
		return entity.Order{}, errors.NotFound("Order not found")
	}
	oe.PaymentConfirmed = true
	oe.PaymentStatus = entity.PaymentCompleted
	r.orders[id] = oe
	return oe, nil
}

func (r *fakeOrderRepository) DelOrder(ctx context.Context, logger log.Logger, id string) error {
	return nil
}

func (r *fakeOrderRepository) CountOrders(ctx context.Context, logger log.Logger) (int64, error) {
	return int64(len(r.orders)), nil
}

// fakeMailer swallows outgoing mail during tests.
type fakeMailer struct{}

func (fakeMailer) SendBookingConfirmation(ctx context.Context, logger log.Logger, oe entity.Order) {}
func (fakeMailer) SendPaymentConfirmation(ctx context.Context, logger log.Logger, oe entity.Order) {}

func mpesaOrder() entity.Order {
	return entity.Order{
		ID:          "WELZYNE-EXPRESS-4821",
		Customer:    "Wanjiku Kamau",
		PaymentMode: "mpesa",
	}
}

func TestStkPushCorrelatesCheckoutWithOrder(t *testing.T) {
	gateway := &fakeGateway{pushResp: entity.STKPushResponse{CheckoutRequestID: "ws_CO_42", ResponseCode: "0"}}
	checkouts := newFakeCheckoutRepository()
	svc := NewService(gateway, checkouts, newFakeOrderRepository(mpesaOrder()), &test.MockBroadcaster{}, fakeMailer{}, logger)

	resp, err := svc.stkPush(ctx, entity.STKPushRequest{PhoneNumber: "0712345678", Amount: "1500", OrderID: "WELZYNE-EXPRESS-4821"})
	assert.NoError(t, err)
	assert.Equal(t, "ws_CO_42", resp.CheckoutRequestID)
	assert.Equal(t, "WELZYNE-EXPRESS-4821", checkouts.checkouts["ws_CO_42"])
}

func TestStkPushRejectsUnknownOrder(t *testing.T) {
	svc := NewService(&fakeGateway{}, newFakeCheckoutRepository(), newFakeOrderRepository(), &test.MockBroadcaster{}, fakeMailer{}, logger)

	_, err := svc.stkPush(ctx, entity.STKPushRequest{PhoneNumber: "0712345678", Amount: "1500", OrderID: "ghost"})
	assert.Error(t, err)
	errresp, ok := err.(errors.ErrorResponse)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, errresp.Status)
}

func TestStkPushRejectsCashOrder(t *testing.T) {
	oe := mpesaOrder()
	oe.PaymentMode = "cash"
	svc := NewService(&fakeGateway{}, newFakeCheckoutRepository(), newFakeOrderRepository(oe), &test.MockBroadcaster{}, fakeMailer{}, logger)

	_, err := svc.stkPush(ctx, entity.STKPushRequest{PhoneNumber: "0712345678", Amount: "1500", OrderID: oe.ID})
	assert.Error(t, err)
}

func TestStkPushRejectsPaidOrder(t *testing.T) {
	oe := mpesaOrder()
	oe.PaymentConfirmed = true
	svc := NewService(&fakeGateway{}, newFakeCheckoutRepository(), newFakeOrderRepository(oe), &test.MockBroadcaster{}, fakeMailer{}, logger)

	_, err := svc.stkPush(ctx, entity.STKPushRequest{PhoneNumber: "0712345678", Amount: "1500", OrderID: oe.ID})
	assert.Error(t, err)
}

func TestStkPushMapsGatewayFailureToBadGateway(t *testing.T) {
	gateway := &fakeGateway{pushErr: errors.New("gateway unreachable")}
	svc := NewService(gateway, newFakeCheckoutRepository(), newFakeOrderRepository(mpesaOrder()), &test.MockBroadcaster{}, fakeMailer{}, logger)

	_, err := svc.stkPush(ctx, entity.STKPushRequest{PhoneNumber: "0712345678", Amount: "1500", OrderID: "WELZYNE-EXPRESS-4821"})
	assert.Error(t, err)
	errresp, ok := err.(errors.ErrorResponse)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, errresp.Status)
}

func TestStatusConfirmsOrderAndBroadcastsOnSuccess(t *testing.T) {
	gateway := &fakeGateway{queryResp: entity.STKStatusResponse{CheckoutRequestID: "ws_CO_42", ResultCode: 0}}
	checkouts := newFakeCheckoutRepository()
	checkouts.checkouts["ws_CO_42"] = "WELZYNE-EXPRESS-4821"
	orders := newFakeOrderRepository(mpesaOrder())
	broadcaster := &test.MockBroadcaster{}
	svc := NewService(gateway, checkouts, orders, broadcaster, fakeMailer{}, logger)

	resp, err := svc.status(ctx, entity.STKStatusRequest{CheckoutRequestID: "ws_CO_42"})
	assert.NoError(t, err)
	assert.Equal(t, 0, resp.ResultCode)

	oe := orders.orders["WELZYNE-EXPRESS-4821"]
	assert.True(t, oe.PaymentConfirmed)
	assert.Equal(t, entity.PaymentCompleted, oe.PaymentStatus)

	// Exactly one ORDER_UPDATED event fans the confirmation out
	events := broadcaster.Published()
	assert.Len(t, events, 1)
	assert.Equal(t, entity.EventOrderUpdated, events[0].Type)
}

func TestStatusLeavesOrderAloneOnFailureVerdict(t *testing.T) {
	gateway := &fakeGateway{queryResp: entity.STKStatusResponse{CheckoutRequestID: "ws_CO_42", ResultCode: 1032, ResultDesc: "Request cancelled by user"}}
	orders := newFakeOrderRepository(mpesaOrder())
	broadcaster := &test.MockBroadcaster{}
	svc := NewService(gateway, newFakeCheckoutRepository(), orders, broadcaster, fakeMailer{}, logger)

	resp, err := svc.status(ctx, entity.STKStatusRequest{CheckoutRequestID: "ws_CO_42"})
	assert.NoError(t, err)
	assert.Equal(t, 1032, resp.ResultCode)
	assert.False(t, orders.orders["WELZYNE-EXPRESS-4821"].PaymentConfirmed)
	assert.Empty(t, broadcaster.Published())
}

func TestStatusMapsGatewayErrorToBadGateway(t *testing.T) {
	// Daraja answers in-flight payments with an error payload
	gateway := &fakeGateway{queryErr: errors.New("The transaction is being processed")}
	svc := NewService(gateway, newFakeCheckoutRepository(), newFakeOrderRepository(), &test.MockBroadcaster{}, fakeMailer{}, logger)

	_, err := svc.status(ctx, entity.STKStatusRequest{CheckoutRequestID: "ws_CO_42"})
	assert.Error(t, err)
	errresp, ok := err.(errors.ErrorResponse)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, errresp.Status)
}
