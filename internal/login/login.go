// Package login implements the per-connection authentication state machine
// and the process-wide account registry described in spec.md §4.2. It sits
// between socket (raw lines) and chat (authenticated users).
package login

import (
	"context"
	"log"

	"github.com/vnetserg/mafia/internal/locale"
	"github.com/vnetserg/mafia/internal/socket"
)

// UserID identifies an authenticated user; it is the same id as its
// underlying connection.
type UserID = socket.ID

// User is a connection that has successfully authenticated.
type User struct {
	id     UserID
	login  string
	socket socket.Proxy
}

// NewUserForTest constructs a User around an arbitrary socket proxy. It
// exists so other packages' tests can drive Chat/Game without running the
// real authentication state machine.
func NewUserForTest(id UserID, login string, proxy socket.Proxy) User {
	return User{id: id, login: login, socket: proxy}
}

// ID returns the user's connection id.
func (u User) ID() UserID { return u.id }

// Login returns the account name the user authenticated with.
func (u User) Login() string { return u.login }

// Send queues a line for delivery to this user.
func (u User) Send(message string) { u.socket.Send(message) }

// Close requests that this user's connection be torn down.
func (u User) Close() { u.socket.Close() }

// Event is the upward vocabulary Chat consumes: NewUser precedes any
// NewMessage for the same id, which precedes DropUser (spec.md §5).
type Event interface{ isUserEvent() }

// NewUserEvent announces a freshly authenticated user.
type NewUserEvent struct{ User User }

// NewMessageEvent forwards one chat-bound line from an authenticated user.
type NewMessageEvent struct {
	ID   UserID
	Line string
}

// DropUserEvent announces that a previously authenticated user is gone.
type DropUserEvent struct{ ID UserID }

func (NewUserEvent) isUserEvent()    {}
func (NewMessageEvent) isUserEvent() {}
func (DropUserEvent) isUserEvent()   {}

// account is the process-wide record for a login name. It is created
// lazily on first successful authentication and never removed (spec.md §3).
type account struct {
	secret string
	online bool
}

// authSlot is the per-connection authentication state. Exactly one variant
// is populated at a time; kind discriminates which.
type authSlotKind int

const (
	slotInitial authSlotKind = iota
	slotGotLogin
	slotAuthenticated
)

type authSlot struct {
	kind  authSlotKind
	proxy socket.Proxy // valid in slotInitial, slotGotLogin
	login string       // valid in slotGotLogin, slotAuthenticated
	user  User         // valid in slotAuthenticated
}

// Service runs the authentication state machine for every connection and
// owns the account registry.
type Service struct {
	locale       locale.Table
	events       chan<- Event
	socketEvents chan socket.Event
	slots        map[socket.ID]authSlot
	accounts     map[string]*account
}

// New returns a Service that publishes UserEvents on events.
func New(events chan<- Event, loc locale.Locale) *Service {
	return &Service{
		locale:       locale.For(loc),
		events:       events,
		socketEvents: make(chan socket.Event, 256),
		slots:        make(map[socket.ID]authSlot),
		accounts:     make(map[string]*account),
	}
}

// SocketEvents returns the channel this service consumes SocketEvents from.
// Wiring code hands this to socket.Service as its event sink.
func (s *Service) SocketEvents() chan<- socket.Event { return s.socketEvents }

// Run consumes SocketEvents until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.socketEvents:
			s.handle(ev)
		}
	}
}

func (s *Service) handle(ev socket.Event) {
	switch e := ev.(type) {
	case socket.NewSocketEvent:
		s.handleNewSocket(e.Proxy)
	case socket.NewMessageEvent:
		s.handleNewMessage(e.ID, e.Line)
	case socket.ClosedSocketEvent:
		s.handleClosedSocket(e.ID)
	}
}

func (s *Service) handleNewSocket(proxy socket.Proxy) {
	proxy.Send(s.locale.Welcome)
	s.slots[proxy.ID()] = authSlot{kind: slotInitial, proxy: proxy}
}

func (s *Service) handleNewMessage(id socket.ID, line string) {
	slot, ok := s.slots[id]
	if !ok {
		return
	}
	delete(s.slots, id)

	switch slot.kind {
	case slotInitial:
		s.slots[id] = s.handleInitial(slot.proxy, line)
	case slotGotLogin:
		s.slots[id] = s.handleGotLogin(slot.proxy, slot.login, line)
	case slotAuthenticated:
		s.events <- NewMessageEvent{ID: slot.user.ID(), Line: line}
		s.slots[id] = slot
	}
}

func (s *Service) handleInitial(proxy socket.Proxy, login string) authSlot {
	acc, exists := s.accounts[login]
	switch {
	case exists && acc.online:
		proxy.Send(s.locale.NicknameTaken(login))
		return authSlot{kind: slotInitial, proxy: proxy}
	case exists:
		proxy.Send(s.locale.PasswordPrompt(login))
		return authSlot{kind: slotGotLogin, proxy: proxy, login: login}
	default:
		proxy.Send(s.locale.PasswordCreate(login))
		return authSlot{kind: slotGotLogin, proxy: proxy, login: login}
	}
}

func (s *Service) handleGotLogin(proxy socket.Proxy, login, password string) authSlot {
	acc, exists := s.accounts[login]
	switch {
	case exists && acc.online:
		// Raced by another connection logging into the same account between
		// the nickname prompt and the password prompt.
		proxy.Send(s.locale.NicknameTaken(login))
		return authSlot{kind: slotInitial, proxy: proxy}

	case exists && acc.secret != password:
		proxy.Send(s.locale.WrongPassword)
		return authSlot{kind: slotInitial, proxy: proxy}

	case exists:
		acc.online = true
		proxy.Send(s.locale.WelcomeBack(login))
		return s.authenticate(proxy, login)

	default:
		s.accounts[login] = &account{secret: password, online: true}
		proxy.Send(s.locale.PasswordCreated(login))
		return s.authenticate(proxy, login)
	}
}

func (s *Service) authenticate(proxy socket.Proxy, login string) authSlot {
	user := User{id: proxy.ID(), login: login, socket: proxy}
	s.events <- NewUserEvent{User: user}
	return authSlot{kind: slotAuthenticated, login: login, user: user}
}

func (s *Service) handleClosedSocket(id socket.ID) {
	slot, ok := s.slots[id]
	if !ok {
		return
	}
	delete(s.slots, id)
	if slot.kind != slotAuthenticated {
		return
	}

	acc, ok := s.accounts[slot.login]
	if !ok || !acc.online {
		log.Panicf("login: account %q authenticated but not online", slot.login)
	}
	acc.online = false
	s.events <- DropUserEvent{ID: slot.user.ID()}
}
