// M-Pesa repository keeps the checkout-request to order correlation in the DB.

package mpesa

import (
	"Welzyne/internal/errors"
	"Welzyne/pkg/db"
	"Welzyne/pkg/log"
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Checkout correlations outlive any sane polling window by a wide margin.
const checkoutTTL = 24 * time.Hour

type Repository interface {
	// SetCheckout correlates a gateway checkout-request ID with the order it pays for.
	SetCheckout(ctx context.Context, logger log.Logger, checkoutRequestID, orderID string) error
	// GetCheckout resolves a checkout-request ID back to its order.
	GetCheckout(ctx context.Context, logger log.Logger, checkoutRequestID string) (string, error)
}

type repository struct {
	db *db.RedisDB
}

// Returns a new instance of mpesa repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

func (r repository) SetCheckout(ctx context.Context, logger log.Logger, checkoutRequestID, orderID string) error {
	dberr := r.db.Client().Set(ctx, "checkout:"+checkoutRequestID, orderID, checkoutTTL).Err()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Set() in mpesa.SetCheckout")
		return errors.InternalServerError("")
	}
	return nil
}

func (r repository) GetCheckout(ctx context.Context, logger log.Logger, checkoutRequestID string) (string, error) {
	orderID, dberr := r.db.Client().Get(ctx, "checkout:"+checkoutRequestID).Result()
	if dberr == redis.Nil {
		return "", errors.NotFound("Unknown checkout request")
	} else if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Get() in mpesa.GetCheckout")
		return "", errors.InternalServerError("")
	}
	return orderID, nil
}
