package store

import (
	"maps"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

// LoadingState is the session's coarse progress indicator.
type LoadingState int

const (
	// Idle is the state before the first action (normally ResumeSession).
	Idle LoadingState = iota
	// Loading means at least one action is waiting on the network.
	Loading
	// Ready means no action is in flight.
	Ready
)

func (s LoadingState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Session is the auth part of a Snapshot. User is set only while Token is.
type Session struct {
	Token string
	User  *models.User
	State LoadingState
	// Err is the message of the last failed session action.
	Err string
}

// Authenticated reports whether a user is signed in.
func (s Session) Authenticated() bool { return s.User != nil }

// CartState is the cart part of a Snapshot. Cart is nil while the session is
// anonymous or before the first fetch.
type CartState struct {
	Cart *models.Cart
	// Pending counts in-flight cart requests per product.
	Pending map[int64]int
	// Err is the message of the last failed cart action.
	Err string
}

// Snapshot is a copy of the store state; it shares no memory with the store.
type Snapshot struct {
	Session Session
	Cart    CartState
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Session.User != nil {
		u := *s.Session.User
		out.Session.User = &u
	}
	out.Cart.Cart = s.Cart.Cart.Clone()
	if s.Cart.Pending != nil {
		out.Cart.Pending = maps.Clone(s.Cart.Pending)
	}
	return out
}

// Event says which part of the state a notification is about.
type Event int

const (
	EventSessionChanged Event = iota + 1
	EventCartChanged
	// EventSessionExpired follows a forced logout after a rejected token.
	EventSessionExpired
)

func (e Event) String() string {
	switch e {
	case EventSessionChanged:
		return "session_changed"
	case EventCartChanged:
		return "cart_changed"
	case EventSessionExpired:
		return "session_expired"
	default:
		return "unknown"
	}
}
