// Service layer of the internal package metrics.

package metrics

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/order"
	"Welzyne/internal/user"
	"Welzyne/pkg/log"
	"context"
)

// Service layer of internal package metrics which computes the counters
// shown on top of the Welzyne admin dashboard.
type Service interface {
	// Snapshot of the dashboard counters
	getMetrics(ctx context.Context) (entity.Metrics, error)
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	userRepo  user.Repository
	orderRepo order.Repository
	logger    log.Logger
}

func NewService(userRepo user.Repository, orderRepo order.Repository, logger log.Logger) Service {
	return service{userRepo, orderRepo, logger}
}

func (s service) getMetrics(ctx context.Context) (entity.Metrics, error) {
	totalUsers, dberr := s.userRepo.CountUsers(ctx, s.logger)
	if dberr != nil {
		// Error occured in CountUsers()
		return entity.Metrics{}, dberr
	}
	orders, dberr := s.orderRepo.GetAllOrders(ctx, s.logger)
	if dberr != nil {
		// Error occured in GetAllOrders()
		return entity.Metrics{}, dberr
	}
	var active int64
	for _, oe := range orders {
		if oe.Status != entity.OrderDelivered {
			active++
		}
	}
	return entity.NewMetrics(totalUsers, int64(len(orders)), active), nil
}
