// User repository encapsulates the data access logic (interactions with the DB) related to Users in Welzyne.

package user

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/pkg/db"
	"Welzyne/pkg/log"
	"context"

	"github.com/go-redis/redis/v8"
)

type Repository interface {
	// GetUser returns the user with the given id if exists.
	GetUser(ctx context.Context, logger log.Logger, id string) (entity.User, error)
	// GetUserByUsername resolves the username index and returns the user.
	GetUserByUsername(ctx context.Context, logger log.Logger, username string) (entity.User, error)
	// GetAllUsers returns every user record in the DB.
	GetAllUsers(ctx context.Context, logger log.Logger) ([]entity.User, error)
	// HasUsername returns a boolean depending on username's availability.
	HasUsername(ctx context.Context, logger log.Logger, username string) (bool, error)
	// SetUser adds the user saved in ue into the DB.
	SetUser(ctx context.Context, logger log.Logger, ue entity.User) error
	// UpdateStatus overwrites the status field of an existing user.
	UpdateStatus(ctx context.Context, logger log.Logger, id, status string) (entity.User, error)
	// DelUser removes the user and its index entries from the DB.
	DelUser(ctx context.Context, logger log.Logger, id string) error
	// CountUsers returns the current total number of users.
	CountUsers(ctx context.Context, logger log.Logger) (int64, error)
}

// repository struct of user Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of user repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns the user data object if user with the given id is found in the DB.
func (r repository) GetUser(ctx context.Context, logger log.Logger, id string) (entity.User, error) {
	ue := entity.User{}
	available, dberr := r.db.Client().Exists(ctx, "user:"+id).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Exists() in user.GetUser")
		return ue, errors.InternalServerError("")
	} else if available == 0 {
		// User not available
		return ue, errors.NotFound("User not found")
	}
	if dberr := r.db.Client().HGetAll(ctx, "user:"+id).Scan(&ue); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HGetAll() in user.GetUser")
		return ue, errors.InternalServerError("")
	}
	return ue, nil
}

// Resolves username -> id through the username index and fetches the user.
func (r repository) GetUserByUsername(ctx context.Context, logger log.Logger, username string) (entity.User, error) {
	id, dberr := r.db.Client().Get(ctx, "username:"+username).Result()
	if dberr == redis.Nil {
		return entity.User{}, errors.NotFound("User not found")
	} else if dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Get() in user.GetUserByUsername")
		return entity.User{}, errors.InternalServerError("")
	}
	return r.GetUser(ctx, logger, id)
}

// Returns every user stored under the user index.
func (r repository) GetAllUsers(ctx context.Context, logger log.Logger) ([]entity.User, error) {
	ids, dberr := r.db.Client().SMembers(ctx, "user:index").Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SMembers() in user.GetAllUsers")
		return nil, errors.InternalServerError("")
	}
	users := []entity.User{}
	for _, id := range ids {
		ue, geterr := r.GetUser(ctx, logger, id)
		if geterr != nil {
			// A record may vanish between SMembers and HGetAll, skip it
			continue
		}
		users = append(users, ue)
	}
	return users, nil
}

// Returns true if user with the given username exists in Welzyne.
func (r repository) HasUsername(ctx context.Context, logger log.Logger, username string) (bool, error) {
	available, dberr := r.db.Client().Exists(ctx, "username:"+username).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Exists() in user.HasUsername")
		return false, errors.InternalServerError("")
	}
	return available != 0, nil
}

// Saves the user hash and its index entries in one transaction.
func (r repository) SetUser(ctx context.Context, logger log.Logger, ue entity.User) error {
	key := "user:" + ue.ID
	_, dberr := r.db.Client().TxPipelined(ctx, func(client redis.Pipeliner) error {
		client.HSet(ctx, key, "id", ue.ID)
		client.HSet(ctx, key, "username", ue.Username)
		client.HSet(ctx, key, "email", ue.Email)
		client.HSet(ctx, key, "phone", ue.Phone)
		client.HSet(ctx, key, "password", ue.Password)
		client.HSet(ctx, key, "role", ue.Role)
		client.HSet(ctx, key, "status", ue.Status)
		client.Set(ctx, "username:"+ue.Username, ue.ID, 0)
		client.SAdd(ctx, "user:index", ue.ID)
		return nil
	})
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured in SetUser transaction")
		return errors.InternalServerError("")
	}
	return nil
}

// Overwrites the status field and returns the updated record.
func (r repository) UpdateStatus(ctx context.Context, logger log.Logger, id, status string) (entity.User, error) {
	ue, geterr := r.GetUser(ctx, logger, id)
	if geterr != nil {
		// NotFound or server error from GetUser()
		return entity.User{}, geterr
	}
	dberr := r.db.Client().HSet(ctx, "user:"+id, "status", status).Err()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HSet() in user.UpdateStatus")
		return entity.User{}, errors.InternalServerError("")
	}
	ue.Status = status
	return ue, nil
}

// Removes the user hash along with its index entries.
func (r repository) DelUser(ctx context.Context, logger log.Logger, id string) error {
	ue, geterr := r.GetUser(ctx, logger, id)
	if geterr != nil {
		// NotFound or server error from GetUser()
		return geterr
	}
	_, dberr := r.db.Client().TxPipelined(ctx, func(client redis.Pipeliner) error {
		client.Del(ctx, "user:"+id)
		client.Del(ctx, "username:"+ue.Username)
		client.SRem(ctx, "user:index", id)
		return nil
	})
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured in DelUser transaction")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns the cardinality of the user index.
func (r repository) CountUsers(ctx context.Context, logger log.Logger) (int64, error) {
	total, dberr := r.db.Client().SCard(ctx, "user:index").Result()
	if dberr != nil && dberr != redis.Nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SCard() in user.CountUsers")
		return 0, errors.InternalServerError("")
	}
	return total, nil
}
