// Package store is the session-scoped client state of the storefront: the
// auth session and the cart, kept consistent with the backend.
//
// A single Store owns all state. Views read it through Snapshot and are told
// about changes through Subscribe; they never hold references into the
// store. Every action returns an error, which is an *ActionError when the
// action fails.
//
// The cart is never derived locally: each successful cart response replaces
// it wholesale, in arrival order. Auth transitions bump a session epoch, and
// a cart response issued under an older epoch is dropped.
package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/tokens"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// Backend is the part of the REST API the store drives.
type Backend interface {
	client.AuthAPI
	client.CartAPI
	CreateOrder(ctx context.Context) (models.Order, error)
}

type dirty uint8

const (
	dirtySession dirty = 1 << iota
	dirtyCart
	dirtyExpired
)

type notice struct {
	ev   Event
	snap Snapshot
}

type subscriber struct {
	id int
	fn func(Event, Snapshot)
}

type Store struct {
	api    Backend
	tokens tokens.Store
	policy client.Policy
	log    logging.Logger
	now    func() time.Time

	refreshes singleflight.Group

	mu      sync.Mutex
	token   string
	user    *models.User
	sessErr string
	loading int
	started bool
	epoch   uint64

	cart    *models.Cart
	cartErr string
	pending map[int64]int

	dirty    dirty
	queue    []notice
	flushing bool
	subs     []subscriber
	nextSub  int
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithPolicy tells the store which 401 policy the transport applies. Under
// PolicyLogout an access token that is already expired is dropped at resume
// without a request.
func WithPolicy(p client.Policy) Option {
	return func(s *Store) { s.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New builds a store over api and ts. When api is a *client.HTTPClient the
// store must be installed as its session hooks (see HTTPClient.SetSessionHooks).
func New(api Backend, ts tokens.Store, opts ...Option) *Store {
	s := &Store{
		api:     api,
		tokens:  ts,
		policy:  client.PolicyLogout,
		log:     logging.Nop(),
		now:     time.Now,
		pending: map[int64]int{},
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "store")
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked().clone()
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. Notifications are delivered in mutation order, each with
// its own snapshot, on the goroutine that made the change (or the one
// already delivering). fn may call store actions.
func (s *Store) Subscribe(fn func(Event, Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Session: Session{Token: s.token, User: s.user, State: s.stateLocked(), Err: s.sessErr},
		Cart:    CartState{Cart: s.cart, Err: s.cartErr},
	}
	if len(s.pending) > 0 {
		snap.Cart.Pending = s.pending
	}
	return snap
}

func (s *Store) stateLocked() LoadingState {
	switch {
	case s.loading > 0:
		return Loading
	case s.started:
		return Ready
	default:
		return Idle
	}
}

// unlock releases the state lock and delivers the notifications produced
// while it was held.
func (s *Store) unlock() {
	if s.dirty != 0 {
		snap := s.snapshotLocked().clone()
		for _, n := range []struct {
			d  dirty
			ev Event
		}{{dirtySession, EventSessionChanged}, {dirtyCart, EventCartChanged}, {dirtyExpired, EventSessionExpired}} {
			if s.dirty&n.d != 0 {
				s.queue = append(s.queue, notice{ev: n.ev, snap: snap})
			}
		}
		s.dirty = 0
	}

	if s.flushing || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}

	s.flushing = true
	for len(s.queue) > 0 {
		batch := s.queue
		s.queue = nil
		subs := append([]subscriber(nil), s.subs...)
		s.mu.Unlock()

		for _, n := range batch {
			for _, sub := range subs {
				sub.fn(n.ev, n.snap.clone())
			}
		}

		s.mu.Lock()
	}
	s.flushing = false
	s.mu.Unlock()
}

func (s *Store) beginLocked() {
	s.loading++
	s.dirty |= dirtySession
}

func (s *Store) endLocked() {
	s.loading--
	s.started = true
	s.dirty |= dirtySession
}

// begin marks an action as running and returns the session epoch it started in.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	s.beginLocked()
	epoch := s.epoch
	s.unlock()
	return epoch
}

func (s *Store) end() {
	s.mu.Lock()
	s.endLocked()
	s.unlock()
}

// clearSessionLocked drops the token, the user and the cart and starts a
// new epoch.
func (s *Store) clearSessionLocked() {
	if s.token != "" || s.user != nil {
		s.dirty |= dirtySession
	}
	if s.cart != nil || s.cartErr != "" {
		s.dirty |= dirtyCart
	}
	s.token = ""
	s.user = nil
	s.cart = nil
	s.cartErr = ""
	s.epoch++
}
