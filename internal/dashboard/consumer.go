// Supervised WebSocket consumer feeding a dashboard State.

package dashboard

import (
	"Welzyne/pkg/log"
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Reconnect backoff bounds for the supervision loop.
const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Consumer keeps a dashboard subscribed to the broadcast channel.
// The protocol is broadcast-only, so a reconnect needs no subscription state
// to restore.
type Consumer struct {
	url    string
	state  *State
	dialer *websocket.Dialer
	logger log.Logger
}

func NewConsumer(url string, state *State, logger log.Logger) *Consumer {
	return &Consumer{
		url:    url,
		state:  state,
		dialer: websocket.DefaultDialer,
		logger: logger,
	}
}

// Run dials the broadcast endpoint and patches state until ctx is cancelled.
// Connection drops are retried with exponential backoff; each successful
// connection resets the backoff.
func (c *Consumer) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		conn, _, dialerr := c.dialer.DialContext(ctx, c.url, nil)
		if dialerr != nil {
			c.logger.Warn().Err(dialerr).Msgf("Couldn't reach broadcast endpoint, retrying in %s", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = initialBackoff
		c.logger.Info().Msgf("Subscribed to broadcast endpoint %s", c.url)
		c.listen(ctx, conn)
		if ctx.Err() != nil {
			return
		}
	}
}

// listen drains one connection into the state until it drops or ctx ends.
func (c *Consumer) listen(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()
	// Unblock ReadMessage when the supervision context ends
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	for {
		_, message, readerr := conn.ReadMessage()
		if readerr != nil {
			if ctx.Err() == nil {
				c.logger.Warn().Err(readerr).Msg("Broadcast connection dropped")
			}
			return
		}
		c.state.ApplyRaw(c.logger, message)
	}
}
