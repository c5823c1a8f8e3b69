// Package chat implements message parsing, mute enforcement, and the
// command/action surface described in spec.md §4.3. It sits between login
// (authenticated users) and game (gameplay events), and owns the
// participant table and login->id bijection.
package chat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vnetserg/mafia/internal/locale"
	"github.com/vnetserg/mafia/internal/login"
)

type participant struct {
	user login.User
	mute MuteLevel
}

// Service runs the chat event loop: it consumes login.Events (the user
// stream) and ChatRequests (Game's mute side-channel) from the same loop,
// and publishes GameEvents upward.
type Service struct {
	locale     locale.Table
	events     chan<- GameEvent
	userEvents chan login.Event
	requests   chan ChatRequest
	users      map[login.UserID]*participant
	loginID    map[string]login.UserID
}

// New returns a Service that publishes GameEvents on events.
func New(events chan<- GameEvent, loc locale.Locale) *Service {
	return &Service{
		locale:     locale.For(loc),
		events:     events,
		userEvents: make(chan login.Event, 256),
		requests:   make(chan ChatRequest, 256),
		users:      make(map[login.UserID]*participant),
		loginID:    make(map[string]login.UserID),
	}
}

// UserEvents returns the channel this service consumes login.Events from.
func (s *Service) UserEvents() chan<- login.Event { return s.userEvents }

// Requests returns the channel Player.Mute sends ChatRequests on.
func (s *Service) Requests() chan<- ChatRequest { return s.requests }

// Run consumes user events and chat requests until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.userEvents:
			s.handleUserEvent(ev)
		case req := <-s.requests:
			s.handleRequest(req)
		}
	}
}

func (s *Service) handleUserEvent(ev login.Event) {
	switch e := ev.(type) {
	case login.NewUserEvent:
		s.handleNewUser(e.User)
	case login.NewMessageEvent:
		s.handleNewMessage(e.ID, e.Line)
	case login.DropUserEvent:
		s.handleDropUser(e.ID)
	}
}

func (s *Service) handleRequest(req ChatRequest) {
	switch r := req.(type) {
	case MuteRequest:
		if p, ok := s.users[r.ID]; ok {
			p.mute = r.Level
		}
	}
}

func (s *Service) handleNewUser(u login.User) {
	s.loginID[u.Login()] = u.ID()
	s.users[u.ID()] = &participant{
		user: u,
		mute: DenyAll(s.locale.ObserverMuted),
	}

	s.broadcast(fmt.Sprintf("%s Connected: %s\n", timestamp(), u.Login()))

	player := Player{user: u, requests: s.requests}
	s.events <- Connected{Player: player}
}

func (s *Service) handleNewMessage(id login.UserID, line string) {
	p, ok := s.users[id]
	if !ok {
		return
	}
	msg := parseMessage(line)
	switch msg.kind {
	case kindPublic:
		s.handlePublic(p, msg.body)
	case kindPrivate:
		s.handlePrivate(p, msg.body, msg.recipients)
	case kindCommand:
		s.handleCommand(p.user, msg.body)
	case kindAction:
		s.handleAction(p.user, msg.body)
	}
}

func (s *Service) handlePublic(p *participant, body string) {
	if !p.mute.publicAllowed() {
		p.user.Send(p.mute.reasonText())
		return
	}
	if body == "" {
		return
	}
	s.broadcast(fmt.Sprintf("%s [%s] %s\n", timestamp(), p.user.Login(), body))
}

func (s *Service) handlePrivate(p *participant, body string, recipients []string) {
	if !p.mute.privateAllowed() {
		p.user.Send(p.mute.reasonText())
		return
	}
	if body == "" {
		p.user.Send(s.locale.EmptyPrivate)
		return
	}
	if len(recipients) == 0 {
		p.user.Send(s.locale.NoRecipients)
		return
	}

	var unknown []string
	for _, r := range recipients {
		if _, ok := s.loginID[r]; !ok {
			unknown = append(unknown, r)
		}
	}
	if len(unknown) > 0 {
		p.user.Send(s.locale.UnknownUsers(unknown))
		return
	}

	line := fmt.Sprintf("%s [%s]->[%s] %s\n", timestamp(), p.user.Login(), joinRecipients(recipients), body)

	dedup := append([]string(nil), recipients...)
	sort.Strings(dedup)
	dedup = dedupAdjacent(dedup)

	sender := p.user.Login()
	for _, r := range dedup {
		if r == sender {
			continue
		}
		other, ok := s.users[s.loginID[r]]
		if !ok {
			continue
		}
		other.user.Send(line)
	}
	p.user.Send(line)
}

func (s *Service) handleCommand(u login.User, command string) {
	var event GameEvent
	switch command {
	case "help":
		u.Send(s.locale.Help)
	case "quit":
		u.Close()
	case "list":
		event = CommandList{ID: u.ID()}
	case "observe":
		event = CommandObserve{ID: u.ID()}
	case "play":
		event = CommandPlay{ID: u.ID()}
	case "pause":
		event = CommandPause{ID: u.ID()}
	case "start":
		event = CommandStart{ID: u.ID()}
	default:
		u.Send(s.locale.UnknownCommand)
	}
	if event != nil {
		s.events <- event
	}
}

func (s *Service) handleAction(u login.User, text string) {
	s.events <- Action{ID: u.ID(), Text: text}
}

func (s *Service) handleDropUser(id login.UserID) {
	p, ok := s.users[id]
	if !ok {
		return
	}
	delete(s.users, id)
	delete(s.loginID, p.user.Login())

	s.broadcast(fmt.Sprintf("%s Disconnected: %s\n", timestamp(), p.user.Login()))
	s.events <- Disconnected{ID: id}
}

func (s *Service) broadcast(line string) {
	for _, p := range s.users {
		p.user.Send(line)
	}
}

func timestamp() string {
	return time.Now().Format("15:04")
}

func joinRecipients(recipients []string) string {
	out := ""
	for i, r := range recipients {
		if i > 0 {
			out += "]+["
		}
		out += r
	}
	return out
}

func dedupAdjacent(sorted []string) []string {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
