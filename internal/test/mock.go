// Mock methods required in Welzyne tests are all here.

package test

import (
	"Welzyne/internal/entity"
	"Welzyne/pkg/log"
	"Welzyne/pkg/middlewares"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Global instance of gin MockRouter to be used during API testing.
var testRouter *gin.Engine

// Singleton to make sure testRouter is initialized only once.
var once sync.Once

func MockRouter() *gin.Engine {
	once.Do(func() {
		// Initializing the gin test server
		ginMode := os.Getenv("GIN_MODE")
		gin.SetMode(ginMode)
		testRouter = gin.Default()
		testRouter.Use(middlewares.CORSMiddleware("*")) // CORS middleware which allows request from all origin
	})
	return testRouter
}

// Bearer tokens accepted by MockAuthMiddleware, mapped to the role they carry.
const (
	MockAdminToken = "mock-admin-token"
	MockUserToken  = "mock-user-token"
)

// MockAuthMiddleware stands in for auth.AuthMiddleware during API tests.
// Populates the same User context pair so RoleMiddleware runs unchanged.
func MockAuthMiddleware(logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		header := gctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		var ue entity.User
		switch strings.TrimPrefix(header, "Bearer ") {
		case MockAdminToken:
			ue = entity.User{ID: "mock-admin", Username: "MockAdmin", Role: entity.RoleAdmin, Status: entity.StatusActive}
		case MockUserToken:
			ue = entity.User{ID: "mock-user", Username: "MockUser", Role: entity.RoleUser, Status: entity.StatusActive}
		default:
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// This pair will be used further down in the handler chain
		gctx.Set("User", ue)
		gctx.Set("token_uuid", "mock-token-uuid")
		gctx.Next()
	}
}

// MockBroadcaster counts the events a service publishes during a test.
type MockBroadcaster struct {
	mu     sync.Mutex
	Events []entity.Event
}

func (b *MockBroadcaster) Broadcast(event entity.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, event)
}

// Published returns a copy of the events broadcast so far.
func (b *MockBroadcaster) Published() []entity.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]entity.Event, len(b.Events))
	copy(out, b.Events)
	return out
}
