// Dashboard state reducer tests in Welzyne.

package dashboard

import (
	"Welzyne/internal/entity"
	"Welzyne/pkg/log"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Global instance of log.Logger to be used during dashboard testing.
var logger log.Logger = log.New("test")

func TestApplyUserLifecycle(t *testing.T) {
	state := NewState()

	amani := entity.User{ID: "u1", Username: "Amani", Role: entity.RoleUser, Status: entity.StatusActive}
	state.Apply(entity.NewUserEvent(amani))
	assert.Len(t, state.Users(), 1)

	// Replaying the same event must not duplicate the entry
	state.Apply(entity.NewUserEvent(amani))
	assert.Len(t, state.Users(), 1)

	amani.Status = entity.StatusInactive
	state.Apply(entity.UserUpdatedEvent(amani))
	assert.Equal(t, entity.StatusInactive, state.Users()[0].Status)

	state.Apply(entity.UserDeletedEvent("u1"))
	assert.Empty(t, state.Users())

	// Deleting again converges to the same empty list
	state.Apply(entity.UserDeletedEvent("u1"))
	assert.Empty(t, state.Users())
}

func TestApplyOrderLifecycle(t *testing.T) {
	state := NewState()

	oe := entity.Order{ID: "WELZYNE-EXPRESS-4821", Customer: "Wanjiku", Status: entity.OrderPlaced}
	state.Apply(entity.NewOrderEvent(oe))
	state.Apply(entity.NewOrderEvent(oe))
	assert.Len(t, state.Orders(), 1)

	oe.Status = entity.OrderInTransit
	state.Apply(entity.OrderUpdatedEvent(oe))
	assert.Equal(t, entity.OrderInTransit, state.Orders()[0].Status)

	state.Apply(entity.OrderDeletedEvent(oe.ID))
	assert.Empty(t, state.Orders())
}

func TestApplyUpdateUnknownIDIsNoop(t *testing.T) {
	state := NewState()
	state.SetUsers([]entity.User{{ID: "u1", Username: "Amani"}})

	state.Apply(entity.UserUpdatedEvent(entity.User{ID: "ghost", Username: "Nobody"}))
	users := state.Users()
	assert.Len(t, users, 1)
	assert.Equal(t, "Amani", users[0].Username)

	state.Apply(entity.OrderUpdatedEvent(entity.Order{ID: "ghost"}))
	assert.Empty(t, state.Orders())
}

func TestApplyRawDiscardsMalformedMessage(t *testing.T) {
	state := NewState()
	state.SetOrders([]entity.Order{{ID: "WELZYNE-STANDARD-1000"}})

	state.ApplyRaw(logger, []byte("{not json"))
	assert.Len(t, state.Orders(), 1)
}

func TestSnapshotsAreCopies(t *testing.T) {
	state := NewState()
	state.SetUsers([]entity.User{{ID: "u1", Username: "Amani"}})

	users := state.Users()
	users[0].Username = "Mutated"
	assert.Equal(t, "Amani", state.Users()[0].Username)
}
