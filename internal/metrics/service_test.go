// Metrics service tests in Welzyne.

package metrics

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/pkg/log"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Global instance of log.Logger to be used during metrics testing.
var logger log.Logger = log.New("test")

// Global context
var ctx context.Context = context.Background()

// fakeUserRepository only serves the counter the metrics service reads.
type fakeUserRepository struct {
	total int64
}

func (r fakeUserRepository) GetUser(ctx context.Context, logger log.Logger, id string) (entity.User, error) {
	return entity.User{}, errors.NotFound("User not found")
}

func (r fakeUserRepository) GetUserByUsername(ctx context.Context, logger log.Logger, username string) (entity.User, error) {
	return entity.User{}, errors.NotFound("User not found")
}

func (r fakeUserRepository) GetAllUsers(ctx context.Context, logger log.Logger) ([]entity.User, error) {
	return nil, nil
}

func (r fakeUserRepository) HasUsername(ctx context.Context, logger log.Logger, username string) (bool, error) {
	return false, nil
}

func (r fakeUserRepository) SetUser(ctx context.Context, logger log.Logger, ue entity.User) error {
	return nil
}

func (r fakeUserRepository) UpdateStatus(ctx context.Context, logger log.Logger, id, status string) (entity.User, error) {
	return entity.User{}, errors.NotFound("User not found")
}

func (r fakeUserRepository) DelUser(ctx context.Context, logger log.Logger, id string) error {
	return nil
}

func (r fakeUserRepository) CountUsers(ctx context.Context, logger log.Logger) (int64, error) {
	return r.total, nil
}

// fakeOrderRepository serves the order list the metrics service folds over.
type fakeOrderRepository struct {
	orders []entity.Order
}

func (r fakeOrderRepository) GetOrder(ctx context.Context, logger log.Logger, id string) (entity.Order, error) {
	return entity.Order{}, errors.NotFound("Order not found")
}

func (r fakeOrderRepository) GetAllOrders(ctx context.Context, logger log.Logger) ([]entity.Order, error) {
	return r.orders, nil
}

func (r fakeOrderRepository) HasOrder(ctx context.Context, logger log.Logger, id string) (bool, error) {
	return false, nil
}

func (r fakeOrderRepository) SetOrder(ctx context.Context, logger log.Logger, oe entity.Order) error {
	return nil
}

func (r fakeOrderRepository) UpdateStatus(ctx context.Context, logger log.Logger, id, status string) (entity.Order, error) {
	return entity.Order{}, errors.NotFound("Order not found")
}

func (r fakeOrderRepository) ConfirmPayment(ctx context.Context, logger log.Logger, id string) (entity.Order, error) {
	return entity.Order{}, errors.NotFound("Order not found")
}

func (r fakeOrderRepository) DelOrder(ctx context.Context, logger log.Logger, id string) error {
	return nil
}

func (r fakeOrderRepository) CountOrders(ctx context.Context, logger log.Logger) (int64, error) {
	return int64(len(r.orders)), nil
}

func TestGetMetricsCountsActiveOrders(t *testing.T) {
	orders := []entity.Order{
		{ID: "WELZYNE-EXPRESS-1001", Status: entity.OrderPlaced},
		{ID: "WELZYNE-EXPRESS-1002", Status: entity.OrderInTransit},
		{ID: "WELZYNE-EXPRESS-1003", Status: entity.OrderDelivered},
	}
	svc := NewService(fakeUserRepository{total: 7}, fakeOrderRepository{orders: orders}, logger)

	m, err := svc.getMetrics(ctx)
	assert.NoError(t, err)
	assert.EqualValues(t, 7, m.TotalUsers)
	assert.EqualValues(t, 3, m.TotalOrders)
	// Delivered orders no longer count as active
	assert.EqualValues(t, 2, m.ActiveOrders)
	assert.EqualValues(t, 3, m.Services)
}

func TestGetMetricsOnEmptyDB(t *testing.T) {
	svc := NewService(fakeUserRepository{}, fakeOrderRepository{}, logger)

	m, err := svc.getMetrics(ctx)
	assert.NoError(t, err)
	assert.EqualValues(t, 0, m.TotalUsers)
	assert.EqualValues(t, 0, m.ActiveOrders)
}
