// WebSocket hub of Welzyne.
// Owns the set of live dashboard connections, sweeps dead ones with a
// ping/pong heartbeat and fans mutation events out to the rest.

package ws

import (
	"Welzyne/internal/entity"
	"Welzyne/pkg/log"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"
)

// A connection must answer at least one ping per heartbeat interval or it is
// presumed dead and reclaimed.
const heartbeatInterval = 30 * time.Second

// A broadcast write that can't complete within writeWait means the client has
// stopped reading, the connection is treated as failed and dropped.
const writeWait = 5 * time.Second

// connection is the registry's record of one live dashboard client.
// The wrapped *websocket.Conn is owned exclusively by the registry for the
// record's lifetime.
type connection struct {
	conn        *websocket.Conn
	isAlive     bool
	connectedAt time.Time
}

// Registry is the process-wide set of live WebSocket connections.
// All access to the set goes through the mutex so the heartbeat sweep and
// concurrent broadcasts interleave safely.
type Registry struct {
	mu     sync.Mutex
	conns  map[string]*connection
	ticker *time.Ticker
	done   chan struct{}
	closed bool
	logger log.Logger
}

// NewRegistry returns an empty registry with its heartbeat ticker armed.
// StartHeartbeat must be called to begin sweeping.
func NewRegistry(logger log.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]*connection),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Register adds conn to the registry and installs its pong handler.
// Returns the connection ID used to remove the record later.
func (r *Registry) Register(conn *websocket.Conn) string {
	id := xid.New().String()
	conn.SetPongHandler(func(string) error {
		r.onPong(id)
		return nil
	})
	r.mu.Lock()
	r.conns[id] = &connection{conn: conn, isAlive: true, connectedAt: time.Now()}
	total := len(r.conns)
	r.mu.Unlock()
	r.logger.Info().Msgf("Registered WebSocket connection %s (%d active)", id, total)
	return id
}

// Remove drops the record and closes the underlying connection.
// Removing an unknown ID is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	record, ok := r.conns[id]
	delete(r.conns, id)
	r.mu.Unlock()
	if ok {
		record.conn.Close()
		r.logger.Info().Msgf("Removed WebSocket connection %s", id)
	}
}

// onPong flips the liveness flag of a connection, sparing it from the next sweep.
func (r *Registry) onPong(id string) {
	r.mu.Lock()
	if record, ok := r.conns[id]; ok {
		record.isAlive = true
	}
	r.mu.Unlock()
}

// Broadcast serializes event once and pushes it to every open connection.
// Fire-and-forget: a send failure drops that connection and moves on, it never
// reaches the HTTP plane that triggered the mutation.
func (r *Registry) Broadcast(event entity.Event) {
	payload, mrsherr := json.Marshal(event)
	if mrsherr != nil {
		// Marshalling entity.Event can't realistically fail, log and bail
		r.logger.Error().Err(mrsherr).Msg("Couldn't serialize broadcast event")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, record := range r.conns {
		// A bounded write keeps one stalled client from blocking the
		// registry for everyone else
		record.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if senderr := record.conn.WriteMessage(websocket.TextMessage, payload); senderr != nil {
			// Fault is isolated to this connection, keep delivering to the rest
			r.logger.Error().Err(senderr).Msgf("Broadcast to connection %s failed, dropping it", id)
			record.conn.Close()
			delete(r.conns, id)
		}
	}
}

// StartHeartbeat launches the sweep loop, preferably in a goroutine.
// Returns once Close is called.
func (r *Registry) StartHeartbeat() {
	r.ticker = time.NewTicker(heartbeatInterval)
	r.logger.Info().Msgf("WebSocket heartbeat sweeping every %s", heartbeatInterval)
	for {
		select {
		case <-r.ticker.C:
			r.sweep()
		case <-r.done:
			r.ticker.Stop()
			r.logger.Info().Msg("WebSocket heartbeat stopped")
			return
		}
	}
}

// sweep terminates connections that missed the previous interval's ping and
// probes the rest. Probe and termination failures are logged and the record
// is removed regardless, heartbeat failure is never fatal.
func (r *Registry) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, record := range r.conns {
		if !record.isAlive {
			r.logger.Warn().Msgf("Connection %s missed heartbeat after %s, terminating", id, time.Since(record.connectedAt).Truncate(time.Second))
			record.conn.Close()
			delete(r.conns, id)
			continue
		}
		record.isAlive = false
		deadline := time.Now().Add(heartbeatInterval / 3)
		if pingerr := record.conn.WriteControl(websocket.PingMessage, nil, deadline); pingerr != nil {
			r.logger.Error().Err(pingerr).Msgf("Couldn't ping connection %s, dropping it", id)
			record.conn.Close()
			delete(r.conns, id)
		}
	}
}

// ActiveConnections returns the current registry size.
func (r *Registry) ActiveConnections() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Close stops the heartbeat and closes every registered connection.
// Wired into GracefulShutdown from main.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	close(r.done)
	for id, record := range r.conns {
		record.conn.Close()
		delete(r.conns, id)
	}
	return nil
}
