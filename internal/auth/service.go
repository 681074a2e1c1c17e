// Service layer of the internal package authentication.

package auth

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/internal/user"
	"Welzyne/pkg/log"
	"context"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"golang.org/x/crypto/bcrypt"
)

// Service layer of internal package auth which encapsulates authentication logic of Welzyne.
type Service interface {
	// Registers an user in Welzyne with valid user credentials
	register(context.Context, entity.User) (string, entity.User, error)
	// Verifies credentials and generates a fresh JWT for an user in Welzyne
	login(context.Context, entity.UserLogin) (string, entity.User, error)
	// Revokes the bearer token used in the current request
	logout(context.Context) error
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	signingKey  string
	userRepo    user.Repository
	authRepo    Repository
	broadcaster entity.Broadcaster
	logger      log.Logger
}

// Helps to access the service layer interface and call methods. Service object is passed from main.
func NewService(signingKey string, userRepo user.Repository, authRepo Repository, broadcaster entity.Broadcaster, logger log.Logger) Service {
	return service{signingKey, userRepo, authRepo, broadcaster, logger}
}

func (s service) register(ctx context.Context, ue entity.User) (string, entity.User, error) {
	// Validate the received user data which is serialized to entity.User struct
	valerr := s.validateUserData(ctx, ue)
	if valerr != nil {
		// Error occured during validation
		return "", entity.User{}, valerr
	}

	// Check for user availability against user.Username
	available, dberr := s.userRepo.HasUsername(ctx, s.logger, ue.Username)
	if dberr != nil {
		// Error occured in HasUsername()
		return "", entity.User{}, errors.InternalServerError("")
	} else if available {
		// User by the received username is already available in the platform
		valerr := errors.New("username:username is already taken")
		return "", entity.User{}, errors.GenerateValidationErrorResponse([]error{valerr})
	}

	ue.ID = uuid.NewString()
	if ue.Role == "" {
		ue.Role = entity.RoleUser
	}
	ue.Status = entity.StatusActive

	// Hash user password and save the credentials in the user object
	hasheduserpwd, hasherr := s.generatePwDHash(ctx, ue.Password)
	if hasherr != nil {
		return "", entity.User{}, errors.InternalServerError("")
	}
	ue.Password = hasheduserpwd

	// Save the user in the DB
	dberr = s.userRepo.SetUser(ctx, s.logger, ue)
	if dberr != nil {
		// Error occured in SetUser()
		return "", entity.User{}, dberr
	}

	// Persistence succeeded, fan the fresh record out to connected dashboards
	s.broadcaster.Broadcast(entity.NewUserEvent(ue))

	// Generate JWT for the newly created user
	token, jwterr := s.createToken(ctx, ue)
	if jwterr != nil {
		// Error during generating user's JWT
		return "", entity.User{}, errors.InternalServerError("")
	}
	return token, ue.CloneWithoutPassword(), nil
}

func (s service) login(ctx context.Context, creds entity.UserLogin) (string, entity.User, error) {
	ue, dberr := s.userRepo.GetUserByUsername(ctx, s.logger, creds.Username)
	if dberr != nil {
		// NotFound or server error, either way credentials can't be verified
		return "", entity.User{}, errors.Unauthorized("Invalid username or password")
	}
	if !s.verifyPwDHash(creds.Password, ue.Password) {
		return "", entity.User{}, errors.Unauthorized("Invalid username or password")
	}
	if ue.Status == entity.StatusInactive {
		return "", entity.User{}, errors.Forbidden("Account is inactive")
	}
	token, jwterr := s.createToken(ctx, ue)
	if jwterr != nil {
		// Error in createToken
		return "", entity.User{}, errors.InternalServerError("")
	}
	return token, ue.CloneWithoutPassword(), nil
}

func (s service) logout(ctx context.Context) error {
	tokenUUID, ok := ctx.Value("token_uuid").(string)
	if !ok {
		// token UUID missing from context
		return errors.InternalServerError("")
	}
	return s.authRepo.DelToken(ctx, s.logger, tokenUUID)
}

// Helper to validate the user data against validation-tags mentioned in its entity.
func (s service) validateUserData(ctx context.Context, ue entity.User) error {
	_, valerr := govalidator.ValidateStruct(ue)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return errors.GenerateValidationErrorResponse(valerr)
	}
	return nil
}

// Helper to generate password hash and return in string type.
// Uses external package "bcrypt" and its function GenerateFromPassword.
func (s service) generatePwDHash(ctx context.Context, password string) (string, error) {
	pwdbyte, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithCtx(ctx).Error().Err(err).Msg("Error occured during Password encryption.")
		return "", errors.InternalServerError("")
	}
	return string(pwdbyte), nil
}

// Helper to verify incoming password with the actual hash of user's set password.
// Helpful during login verification of an user in Welzyne.
func (s service) verifyPwDHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Helper to create and sign a bearer token for an user.
// The token UUID is stored in the DB so that logout can revoke it before expiry.
func (s service) createToken(ctx context.Context, ue entity.User) (string, error) {
	tokenUUID := uuid.NewString()
	exp := time.Now().Add(time.Hour * 24).Unix()
	token, jwterr := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    ue.ID,
		"username":   ue.Username,
		"role":       ue.Role,
		"token_uuid": tokenUUID,
		"exp":        exp,
	}).SignedString([]byte(s.signingKey))
	if jwterr != nil {
		s.logger.WithCtx(ctx).Error().Err(jwterr).Msg("Error occured during JWT generation")
		return "", jwterr
	}
	// Save generated token with expiration into the DB
	dberr := s.authRepo.SetToken(ctx, s.logger, tokenUUID, ue.ID, exp)
	if dberr != nil {
		// Error during saving user's JWT
		return "", dberr
	}
	return token, nil
}
