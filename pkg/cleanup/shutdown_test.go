// Graceful shutdown tests in Welzyne.

package cleanup

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Global context
var ctx context.Context = context.Background()

func TestGracefulShutdownSIGINT(t *testing.T) {
	// Ephemeral port so the test never collides with a running instance
	ln, lnerr := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, lnerr)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})}
	// Serve is a blocking operation, putting it a goroutine
	go srv.Serve(ln)

	var cleaned int32
	wait := GracefulShutdown(ctx, 5*time.Second, map[string]Operation{
		"Gin": func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
		"Counter": func(ctx context.Context) error {
			atomic.AddInt32(&cleaned, 1)
			return nil
		},
	})

	// Send SIGINT signal to trigger the shutdown path
	go func() {
		time.Sleep(100 * time.Millisecond)
		syscall.Kill(syscall.Getpid(), syscall.SIGINT)
	}()
	<-wait

	assert.EqualValues(t, 1, atomic.LoadInt32(&cleaned))
	_, geterr := http.Get(fmt.Sprintf("http://%s/", ln.Addr().String()))
	assert.Error(t, geterr)
}

func TestGracefulShutdownFailedOperation(t *testing.T) {
	var cleaned int32
	wait := GracefulShutdown(ctx, 5*time.Second, map[string]Operation{
		"Broken": func(ctx context.Context) error {
			return fmt.Errorf("connection already closed")
		},
		"Counter": func(ctx context.Context) error {
			atomic.AddInt32(&cleaned, 1)
			return nil
		},
	})

	go func() {
		time.Sleep(100 * time.Millisecond)
		syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
	}()
	// One failing operation must not sink the whole shutdown
	<-wait

	assert.EqualValues(t, 1, atomic.LoadInt32(&cleaned))
}

func TestGracefulShutdownSIGTERM(t *testing.T) {
	var cleaned int32
	wait := GracefulShutdown(ctx, 5*time.Second, map[string]Operation{
		"Counter": func(ctx context.Context) error {
			atomic.AddInt32(&cleaned, 1)
			return nil
		},
	})

	go func() {
		time.Sleep(100 * time.Millisecond)
		syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
	}()
	<-wait

	assert.EqualValues(t, 1, atomic.LoadInt32(&cleaned))
}
