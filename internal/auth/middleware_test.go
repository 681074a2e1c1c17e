// Auth middleware tests in Welzyne.

package auth

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/pkg/log"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

// Global instance of log.Logger to be used during auth testing.
var logger log.Logger = log.New("test")

// Shared signing key used across the middleware tests.
const testSecret = "test-signing-key"

// fakeAuthRepository is an in-memory token store.
type fakeAuthRepository struct {
	tokens map[string]string // tokenUUID -> userID
}

func newFakeAuthRepository() *fakeAuthRepository {
	return &fakeAuthRepository{tokens: map[string]string{}}
}

func (r *fakeAuthRepository) SetToken(ctx context.Context, logger log.Logger, tokenUUID, userID string, exp int64) error {
	r.tokens[tokenUUID] = userID
	return nil
}

func (r *fakeAuthRepository) TokenExists(ctx context.Context, logger log.Logger, tokenUUID, userID string) (bool, error) {
	stored, ok := r.tokens[tokenUUID]
	return ok && stored == userID, nil
}

func (r *fakeAuthRepository) DelToken(ctx context.Context, logger log.Logger, tokenUUID string) error {
	delete(r.tokens, tokenUUID)
	return nil
}

// fakeUserRepository serves the fresh user fetch the middleware performs.
type fakeUserRepository struct {
	users map[string]entity.User
}

func (r *fakeUserRepository) GetUser(ctx context.Context, logger log.Logger, id string) (entity.User, error) {
	ue, ok := r.users[id]
	if !ok {
		return entity.User{}, errors.NotFound("User not found")
	}
	return ue, nil
}

func (r *fakeUserRepository) GetUserByUsername(ctx context.Context, logger log.Logger, username string) (entity.User, error) {
	for _, ue := range r.users {
		if ue.Username == username {
			return ue, nil
		}
	}
	return entity.User{}, errors.NotFound("User not found")
}

func (r *fakeUserRepository) GetAllUsers(ctx context.Context, logger log.Logger) ([]entity.User, error) {
	return nil, nil
}

func (r *fakeUserRepository) HasUsername(ctx context.Context, logger log.Logger, username string) (bool, error) {
	_, err := r.GetUserByUsername(ctx, logger, username)
	return err == nil, nil
}

func (r *fakeUserRepository) SetUser(ctx context.Context, logger log.Logger, ue entity.User) error {
	if r.users == nil {
		r.users = map[string]entity.User{}
	}
	r.users[ue.ID] = ue
	return nil
}

func (r *fakeUserRepository) UpdateStatus(ctx context.Context, logger log.Logger, id, status string) (entity.User, error) {
	return entity.User{}, errors.NotFound("User not found")
}

func (r *fakeUserRepository) DelUser(ctx context.Context, logger log.Logger, id string) error {
	return nil
}

func (r *fakeUserRepository) CountUsers(ctx context.Context, logger log.Logger) (int64, error) {
	return 0, nil
}

// signTestToken issues a bearer token the way the auth service does.
func signTestToken(t *testing.T, userID, role, tokenUUID string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":    userID,
		"username":   "TestUser",
		"role":       role,
		"token_uuid": tokenUUID,
		"exp":        exp.Unix(),
	}
	signed, signerr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, signerr)
	return signed
}

// protectedRouter mounts one admin-only probe route behind the middleware chain.
func protectedRouter(authRepo Repository, userRepo *fakeUserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe",
		AuthMiddleware(logger, authRepo, userRepo, testSecret),
		RoleMiddleware(logger, entity.RoleAdmin),
		func(gctx *gin.Context) { gctx.Status(http.StatusOK) })
	return router
}

func probe(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	authRepo := newFakeAuthRepository()
	authRepo.tokens["tok-1"] = "u1"
	userRepo := &fakeUserRepository{users: map[string]entity.User{
		"u1": {ID: "u1", Username: "Admin", Role: entity.RoleAdmin, Status: entity.StatusActive},
	}}
	router := protectedRouter(authRepo, userRepo)

	token := signTestToken(t, "u1", entity.RoleAdmin, "tok-1", time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusOK, probe(router, token).Code)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	router := protectedRouter(newFakeAuthRepository(), &fakeUserRepository{})
	assert.Equal(t, http.StatusUnauthorized, probe(router, "").Code)
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	router := protectedRouter(newFakeAuthRepository(), &fakeUserRepository{})
	assert.Equal(t, http.StatusUnauthorized, probe(router, "not.a.jwt").Code)
}

func TestAuthMiddlewareRejectsForeignSigningMethod(t *testing.T) {
	router := protectedRouter(newFakeAuthRepository(), &fakeUserRepository{})

	// An unsigned token must never pass the HMAC check
	claims := jwt.MapClaims{"user_id": "u1", "token_uuid": "tok-1", "exp": time.Now().Add(time.Hour).Unix()}
	token, signerr := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, signerr)
	assert.Equal(t, http.StatusUnauthorized, probe(router, token).Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	authRepo := newFakeAuthRepository()
	authRepo.tokens["tok-1"] = "u1"
	router := protectedRouter(authRepo, &fakeUserRepository{})

	token := signTestToken(t, "u1", entity.RoleAdmin, "tok-1", time.Now().Add(-time.Hour))
	assert.Equal(t, http.StatusUnauthorized, probe(router, token).Code)
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	// Token is well-formed but its UUID was deleted from the store on logout
	router := protectedRouter(newFakeAuthRepository(), &fakeUserRepository{})

	token := signTestToken(t, "u1", entity.RoleAdmin, "tok-gone", time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusUnauthorized, probe(router, token).Code)
}

func TestRoleMiddlewareDeniesInsufficientRole(t *testing.T) {
	authRepo := newFakeAuthRepository()
	authRepo.tokens["tok-2"] = "u2"
	userRepo := &fakeUserRepository{users: map[string]entity.User{
		"u2": {ID: "u2", Username: "Amani", Role: entity.RoleUser, Status: entity.StatusActive},
	}}
	router := protectedRouter(authRepo, userRepo)

	token := signTestToken(t, "u2", entity.RoleUser, "tok-2", time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusForbidden, probe(router, token).Code)
}

func TestRoleMiddlewareUsesFreshRoleFromDB(t *testing.T) {
	// Token still claims admin but the DB record was demoted to user
	authRepo := newFakeAuthRepository()
	authRepo.tokens["tok-3"] = "u3"
	userRepo := &fakeUserRepository{users: map[string]entity.User{
		"u3": {ID: "u3", Username: "Demoted", Role: entity.RoleUser, Status: entity.StatusActive},
	}}
	router := protectedRouter(authRepo, userRepo)

	token := signTestToken(t, "u3", entity.RoleAdmin, "tok-3", time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusForbidden, probe(router, token).Code)
}
