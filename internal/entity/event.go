// Structure of broadcast Events fanned out to dashboard clients over WebSocket.

package entity

// Recognized event tags.
const (
	EventNewUser      = "NEW_USER"
	EventUserUpdated  = "USER_UPDATED"
	EventUserDeleted  = "USER_DELETED"
	EventNewOrder     = "NEW_ORDER"
	EventOrderUpdated = "ORDER_UPDATED"
	EventOrderDeleted = "ORDER_DELETED"
)

// Event is a tagged variant pushed to every connected dashboard client.
// Payload depends on the tag: *_DELETED variants carry only the identifier,
// the rest carry the full record (users always minus their password).
type Event struct {
	Type    string `json:"type"`
	User    *User  `json:"user,omitempty"`
	UserID  string `json:"userId,omitempty"`
	Order   *Order `json:"order,omitempty"`
	OrderID string `json:"orderId,omitempty"`
}

// Broadcaster is the fan-out contract consumed by the mutation services.
// Implementations must be fire-and-forget and never propagate transport
// failures back to the HTTP plane.
type Broadcaster interface {
	Broadcast(event Event)
}

// NewUserEvent builds a NEW_USER event with credentials stripped.
func NewUserEvent(user User) Event {
	u := user.CloneWithoutPassword()
	return Event{Type: EventNewUser, User: &u}
}

// UserUpdatedEvent builds a USER_UPDATED event with credentials stripped.
func UserUpdatedEvent(user User) Event {
	u := user.CloneWithoutPassword()
	return Event{Type: EventUserUpdated, User: &u}
}

// UserDeletedEvent builds a USER_DELETED event carrying only the identifier.
func UserDeletedEvent(userID string) Event {
	return Event{Type: EventUserDeleted, UserID: userID}
}

// NewOrderEvent builds a NEW_ORDER event.
func NewOrderEvent(order Order) Event {
	return Event{Type: EventNewOrder, Order: &order}
}

// OrderUpdatedEvent builds an ORDER_UPDATED event.
func OrderUpdatedEvent(order Order) Event {
	return Event{Type: EventOrderUpdated, Order: &order}
}

// OrderDeletedEvent builds an ORDER_DELETED event carrying only the identifier.
func OrderDeletedEvent(orderID string) Event {
	return Event{Type: EventOrderDeleted, OrderID: orderID}
}
