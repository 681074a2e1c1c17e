// In-memory dashboard state patched by incoming broadcast events.

package dashboard

import (
	"Welzyne/internal/entity"
	"Welzyne/pkg/log"
	"encoding/json"
	"sync"
)

// State holds the users and orders a dashboard renders.
// Apply is an idempotent reducer keyed by record identifier: replaying an
// event, or receiving the broadcast echo of an optimistic local update,
// converges to the same lists regardless of arrival order.
type State struct {
	mu     sync.RWMutex
	users  []entity.User
	orders []entity.Order
}

func NewState() *State {
	return &State{users: []entity.User{}, orders: []entity.Order{}}
}

// SetUsers replaces the user list, used after the initial REST fetch.
func (s *State) SetUsers(users []entity.User) {
	s.mu.Lock()
	s.users = append([]entity.User{}, users...)
	s.mu.Unlock()
}

// SetOrders replaces the order list, used after the initial REST fetch.
func (s *State) SetOrders(orders []entity.Order) {
	s.mu.Lock()
	s.orders = append([]entity.Order{}, orders...)
	s.mu.Unlock()
}

// Users returns a copy of the current user list.
func (s *State) Users() []entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.User{}, s.users...)
}

// Orders returns a copy of the current order list.
func (s *State) Orders() []entity.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Order{}, s.orders...)
}

// Apply patches the state with one event.
// NEW_* appends if absent, *_UPDATED replaces the matching entry and is a
// no-op on an unknown identifier, *_DELETED removes the matching entry.
func (s *State) Apply(event entity.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch event.Type {
	case entity.EventNewUser:
		if event.User == nil {
			return
		}
		if findUser(s.users, event.User.ID) < 0 {
			s.users = append(s.users, *event.User)
		}
	case entity.EventUserUpdated:
		if event.User == nil {
			return
		}
		if i := findUser(s.users, event.User.ID); i >= 0 {
			s.users[i] = *event.User
		}
	case entity.EventUserDeleted:
		if i := findUser(s.users, event.UserID); i >= 0 {
			s.users = append(s.users[:i], s.users[i+1:]...)
		}
	case entity.EventNewOrder:
		if event.Order == nil {
			return
		}
		if findOrder(s.orders, event.Order.ID) < 0 {
			s.orders = append(s.orders, *event.Order)
		}
	case entity.EventOrderUpdated:
		if event.Order == nil {
			return
		}
		if i := findOrder(s.orders, event.Order.ID); i >= 0 {
			s.orders[i] = *event.Order
		}
	case entity.EventOrderDeleted:
		if i := findOrder(s.orders, event.OrderID); i >= 0 {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
		}
	}
}

// ApplyRaw parses one wire message and applies it.
// Malformed data is logged and skipped, the listener must never crash.
func (s *State) ApplyRaw(logger log.Logger, message []byte) {
	var event entity.Event
	if mrsherr := json.Unmarshal(message, &event); mrsherr != nil {
		logger.Error().Err(mrsherr).Msg("Discarding malformed broadcast message")
		return
	}
	s.Apply(event)
}

func findUser(users []entity.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func findOrder(orders []entity.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}
