// Auth repository encapsulates the data access logic (interactions with the DB) related to Authentication in Welzyne.

package auth

import (
	"Welzyne/internal/errors"
	"Welzyne/pkg/db"
	"Welzyne/pkg/log"
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Repository interface {
	// SetToken adds the user's TokenUUID:userID in the DB with expiry.
	SetToken(ctx context.Context, logger log.Logger, tokenUUID, userID string, exp int64) error
	// TokenExists checks whether tokenUUID:userID exists in the DB.
	TokenExists(ctx context.Context, logger log.Logger, tokenUUID, userID string) (bool, error)
	// DelToken revokes a token, used during logout.
	DelToken(ctx context.Context, logger log.Logger, tokenUUID string) error
}

// repository struct of auth Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of auth repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns nil if Token got successfully added into the DB else error.
func (r repository) SetToken(ctx context.Context, logger log.Logger, tokenUUID, userID string, exp int64) error {
	expAt := time.Unix(exp, 0)
	dberr := r.db.Client().Set(ctx, "token:"+tokenUUID, userID, time.Until(expAt)).Err()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Set in auth.SetToken")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns boolean if tokenUUID:UserID exists in the DB or not.
func (r repository) TokenExists(ctx context.Context, logger log.Logger, tokenUUID, userID string) (bool, error) {
	val, dberr := r.db.Client().Get(ctx, "token:"+tokenUUID).Result()
	if dberr != nil && dberr != redis.Nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Get in auth.TokenExists")
		return false, errors.InternalServerError("")
	} else if dberr == redis.Nil {
		// Key doesn't exist, maybe got expired
		return false, nil
	}
	return val == userID, nil
}

// Deletes tokenUUID from the DB, invalidating the bearer token carrying it.
func (r repository) DelToken(ctx context.Context, logger log.Logger, tokenUUID string) error {
	dberr := r.db.Client().Del(ctx, "token:"+tokenUUID).Err()
	if dberr != nil && dberr != redis.Nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Del in auth.DelToken")
		return errors.InternalServerError("")
	}
	return nil
}
