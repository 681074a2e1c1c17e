// Bounded-retry payment status poller for STK push checkouts.

package dashboard

import (
	"Welzyne/internal/entity"
	"Welzyne/pkg/log"
	"context"
	"time"
)

// Outcome is the terminal verdict of one polling run.
type Outcome int

const (
	// Confirmed means the gateway reported ResultCode 0.
	Confirmed Outcome = iota
	// Failed means the gateway reported a non-zero ResultCode.
	Failed
	// TimedOut means the attempt budget ran out without a gateway verdict.
	TimedOut
	// Cancelled means the polling context ended first.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "Confirmed"
	case Failed:
		return "Failed"
	case TimedOut:
		return "TimedOut"
	default:
		return "Cancelled"
	}
}

// StatusChecker queries the payment status endpoint for one checkout request.
// ok=false marks an inconclusive answer (network trouble or payment still
// pending) which counts toward the attempt budget.
type StatusChecker interface {
	CheckStatus(ctx context.Context, checkoutRequestID string) (resp entity.STKStatusResponse, ok bool)
}

// StatusCheckerFunc adapts a plain function into a StatusChecker.
type StatusCheckerFunc func(ctx context.Context, checkoutRequestID string) (entity.STKStatusResponse, bool)

func (f StatusCheckerFunc) CheckStatus(ctx context.Context, checkoutRequestID string) (entity.STKStatusResponse, bool) {
	return f(ctx, checkoutRequestID)
}

// Poller drives the asynchronous STK push confirmation flow: query every
// Interval up to MaxAttempts times, stopping at the first terminal verdict.
type Poller struct {
	checker StatusChecker
	state   *State
	logger  log.Logger

	// Interval and MaxAttempts default to the production 5s x 10 budget.
	Interval    time.Duration
	MaxAttempts int
}

func NewPoller(checker StatusChecker, state *State, logger log.Logger) *Poller {
	return &Poller{
		checker:     checker,
		state:       state,
		logger:      logger,
		Interval:    5 * time.Second,
		MaxAttempts: 10,
	}
}

// Poll blocks until the checkout request reaches a terminal outcome.
// Exactly one outcome is returned and no query is issued past the attempt
// budget; cancelling ctx stops the chain before the next query.
func (p *Poller) Poll(ctx context.Context, checkoutRequestID, orderID string) (Outcome, string) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			p.logger.Info().Msgf("Stopped polling checkout %s after %d attempts", checkoutRequestID, attempt-1)
			return Cancelled, "Payment status check cancelled."
		case <-ticker.C:
		}
		resp, ok := p.checker.CheckStatus(ctx, checkoutRequestID)
		if !ok {
			// Inconclusive, burn the attempt and keep going
			continue
		}
		if resp.ResultCode == 0 {
			p.confirm(orderID)
			return Confirmed, "Payment completed successfully!"
		}
		return Failed, "Payment failed: " + resp.ResultDesc
	}
	return TimedOut, "Could not confirm payment status. Please check your M-Pesa and try again if needed."
}

// confirm patches the local order entry so the dashboard shows the payment
// without waiting for the broadcast echo.
func (p *Poller) confirm(orderID string) {
	for _, oe := range p.state.Orders() {
		if oe.ID == orderID {
			oe.PaymentConfirmed = true
			oe.PaymentStatus = entity.PaymentCompleted
			p.state.Apply(entity.OrderUpdatedEvent(oe))
			return
		}
	}
}
