// Order repository encapsulates the data access logic (interactions with the DB) related to courier Orders in Welzyne.

package order

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/pkg/db"
	"Welzyne/pkg/log"
	"context"

	"github.com/go-redis/redis/v8"
)

type Repository interface {
	// GetOrder returns the order with the given parcel number if exists.
	GetOrder(ctx context.Context, logger log.Logger, id string) (entity.Order, error)
	// GetAllOrders returns every order record in the DB.
	GetAllOrders(ctx context.Context, logger log.Logger) ([]entity.Order, error)
	// HasOrder returns a boolean depending on the parcel number's availability.
	HasOrder(ctx context.Context, logger log.Logger, id string) (bool, error)
	// SetOrder adds the order saved in oe into the DB.
	SetOrder(ctx context.Context, logger log.Logger, oe entity.Order) error
	// UpdateStatus overwrites the delivery status of an existing order.
	UpdateStatus(ctx context.Context, logger log.Logger, id, status string) (entity.Order, error)
	// ConfirmPayment flips the payment flags of an existing order.
	ConfirmPayment(ctx context.Context, logger log.Logger, id string) (entity.Order, error)
	// DelOrder removes the order and its index entry from the DB.
	DelOrder(ctx context.Context, logger log.Logger, id string) error
	// CountOrders returns the current total number of orders.
	CountOrders(ctx context.Context, logger log.Logger) (int64, error)
}

// repository struct of order Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of order repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns the order data object if order with the given parcel number is found in the DB.
func (r repository) GetOrder(ctx context.Context, logger log.Logger, id string) (entity.Order, error) {
	oe := entity.Order{}
	available, dberr := r.db.Client().Exists(ctx, "order:"+id).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Exists() in order.GetOrder")
		return oe, errors.InternalServerError("")
	} else if available == 0 {
		// Order not available
		return oe, errors.NotFound("Order not found")
	}
	if dberr := r.db.Client().HGetAll(ctx, "order:"+id).Scan(&oe); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HGetAll() in order.GetOrder")
		return oe, errors.InternalServerError("")
	}
	return oe, nil
}

// Returns every order stored under the order index.
func (r repository) GetAllOrders(ctx context.Context, logger log.Logger) ([]entity.Order, error) {
	ids, dberr := r.db.Client().SMembers(ctx, "order:index").Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SMembers() in order.GetAllOrders")
		return nil, errors.InternalServerError("")
	}
	orders := []entity.Order{}
	for _, id := range ids {
		oe, geterr := r.GetOrder(ctx, logger, id)
		if geterr != nil {
			// A record may vanish between SMembers and HGetAll, skip it
			continue
		}
		orders = append(orders, oe)
	}
	return orders, nil
}

// Returns true if order with the given parcel number exists in Welzyne.
func (r repository) HasOrder(ctx context.Context, logger log.Logger, id string) (bool, error) {
	available, dberr := r.db.Client().Exists(ctx, "order:"+id).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Exists() in order.HasOrder")
		return false, errors.InternalServerError("")
	}
	return available != 0, nil
}

// Saves the order hash and its index entry in one transaction.
func (r repository) SetOrder(ctx context.Context, logger log.Logger, oe entity.Order) error {
	key := "order:" + oe.ID
	_, dberr := r.db.Client().TxPipelined(ctx, func(client redis.Pipeliner) error {
		client.HSet(ctx, key, "id", oe.ID)
		client.HSet(ctx, key, "customer", oe.Customer)
		client.HSet(ctx, key, "email", oe.Email)
		client.HSet(ctx, key, "status", oe.Status)
		client.HSet(ctx, key, "date", oe.Date)
		client.HSet(ctx, key, "amount", oe.Amount)
		client.HSet(ctx, key, "destination", oe.Destination)
		client.HSet(ctx, key, "pickup_location", oe.PickupLocation)
		client.HSet(ctx, key, "courier_type", oe.CourierType)
		client.HSet(ctx, key, "payment_mode", oe.PaymentMode)
		client.HSet(ctx, key, "mpesa_number", oe.MpesaNumber)
		client.HSet(ctx, key, "package_details", oe.PackageDetails)
		client.HSet(ctx, key, "whole_booking", oe.WholeBooking)
		client.HSet(ctx, key, "payment_status", oe.PaymentStatus)
		client.HSet(ctx, key, "payment_confirmed", oe.PaymentConfirmed)
		client.SAdd(ctx, "order:index", oe.ID)
		return nil
	})
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured in SetOrder transaction")
		return errors.InternalServerError("")
	}
	return nil
}

// Overwrites the delivery status and returns the updated record.
func (r repository) UpdateStatus(ctx context.Context, logger log.Logger, id, status string) (entity.Order, error) {
	oe, geterr := r.GetOrder(ctx, logger, id)
	if geterr != nil {
		// NotFound or server error from GetOrder()
		return entity.Order{}, geterr
	}
	dberr := r.db.Client().HSet(ctx, "order:"+id, "status", status).Err()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HSet() in order.UpdateStatus")
		return entity.Order{}, errors.InternalServerError("")
	}
	oe.Status = status
	return oe, nil
}

// Marks the order as paid and returns the updated record.
func (r repository) ConfirmPayment(ctx context.Context, logger log.Logger, id string) (entity.Order, error) {
	oe, geterr := r.GetOrder(ctx, logger, id)
	if geterr != nil {
		// NotFound or server error from GetOrder()
		return entity.Order{}, geterr
	}
	_, dberr := r.db.Client().TxPipelined(ctx, func(client redis.Pipeliner) error {
		client.HSet(ctx, "order:"+id, "payment_confirmed", true)
		client.HSet(ctx, "order:"+id, "payment_status", entity.PaymentCompleted)
		return nil
	})
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured in ConfirmPayment transaction")
		return entity.Order{}, errors.InternalServerError("")
	}
	oe.PaymentConfirmed = true
	oe.PaymentStatus = entity.PaymentCompleted
	return oe, nil
}

// Removes the order hash along with its index entry.
func (r repository) DelOrder(ctx context.Context, logger log.Logger, id string) error {
	available, dberr := r.HasOrder(ctx, logger, id)
	if dberr != nil {
		return dberr
	} else if !available {
		return errors.NotFound("Order not found")
	}
	_, dberr = r.db.Client().TxPipelined(ctx, func(client redis.Pipeliner) error {
		client.Del(ctx, "order:"+id)
		client.SRem(ctx, "order:index", id)
		return nil
	})
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured in DelOrder transaction")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns the cardinality of the order index.
func (r repository) CountOrders(ctx context.Context, logger log.Logger) (int64, error) {
	total, dberr := r.db.Client().SCard(ctx, "order:index").Result()
	if dberr != nil && dberr != redis.Nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SCard() in order.CountOrders")
		return 0, errors.InternalServerError("")
	}
	return total, nil
}
