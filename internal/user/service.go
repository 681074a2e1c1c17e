// Service layer of the internal package user.

package user

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/pkg/log"
	"context"
)

// Service layer of internal package user which encapsulates UserModel logic of Welzyne.
// Privileged mutations broadcast an event to connected dashboards only after the
// persistence write succeeds, exactly once per mutation.
type Service interface {
	// Fetches every user in Welzyne minus their credentials
	getAllUsers(context.Context) ([]entity.User, error)
	// Toggles an user's account status and broadcasts USER_UPDATED
	updateStatus(ctx context.Context, id, status string) (entity.User, error)
	// Removes an user account and broadcasts USER_DELETED
	deleteUser(ctx context.Context, id string) error
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	userRepo    Repository
	broadcaster entity.Broadcaster
	logger      log.Logger
}

func NewService(userRepo Repository, broadcaster entity.Broadcaster, logger log.Logger) Service {
	return service{userRepo, broadcaster, logger}
}

func (s service) getAllUsers(ctx context.Context) ([]entity.User, error) {
	users, dberr := s.userRepo.GetAllUsers(ctx, s.logger)
	if dberr != nil {
		// Error occured in GetAllUsers()
		return nil, dberr
	}
	// Hide passwords
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func (s service) updateStatus(ctx context.Context, id, status string) (entity.User, error) {
	if status != entity.StatusActive && status != entity.StatusInactive {
		valerr := errors.New("status:Unknown status")
		return entity.User{}, errors.GenerateValidationErrorResponse([]error{valerr})
	}
	ue, dberr := s.userRepo.UpdateStatus(ctx, s.logger, id, status)
	if dberr != nil {
		// NotFound or server error, no event on failed persistence
		return entity.User{}, dberr
	}
	s.broadcaster.Broadcast(entity.UserUpdatedEvent(ue))
	return ue.CloneWithoutPassword(), nil
}

func (s service) deleteUser(ctx context.Context, id string) error {
	dberr := s.userRepo.DelUser(ctx, s.logger, id)
	if dberr != nil {
		// NotFound or server error, no event on failed persistence
		return dberr
	}
	s.broadcaster.Broadcast(entity.UserDeletedEvent(id))
	return nil
}
