// Package game implements the Lobby/Day/Night gameplay state machine that
// spec.md §4.5 deliberately leaves as an interface. The phase behavior here
// is SPEC_FULL.md's supplemented feature: a minimal but real round so the
// pipeline has something to drive end to end. See DESIGN.md's Open
// Question #5 for the rationale.
package game

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/vnetserg/mafia/internal/chat"
	"github.com/vnetserg/mafia/internal/timer"
)

type stage int

const (
	stageLobby stage = iota
	stageDay
	stageNight
)

const (
	startDelay  = 5 * time.Second
	dayLength   = 60 * time.Second
	nightLength = 30 * time.Second
)

type alarm int

const (
	alarmBeginRound alarm = iota
	alarmEndDay
	alarmEndNight
)

type playerState int

const (
	stateObserver playerState = iota
	stateActive
)

type playerInfo struct {
	player chat.Player
	state  playerState
}

// Service consumes GameEvents from chat.Service and drives the Lobby ->
// Day -> Night -> Lobby cycle. It holds every Player proxy it is handed and
// only ever calls Send/Mute/Disconnect on them (spec.md §4.5(a)).
type Service struct {
	events chan chat.GameEvent
	timer  *timer.Timer[alarm]

	stage    stage
	starting bool
	players  map[chat.PlayerID]*playerInfo

	votes     map[chat.PlayerID]string
	voteOrder []chat.PlayerID
}

// New returns a Service ready to be wired as a GameEvent sink.
func New() *Service {
	return &Service{
		events:  make(chan chat.GameEvent, 256),
		timer:   timer.New[alarm](),
		stage:   stageLobby,
		players: make(map[chat.PlayerID]*playerInfo),
	}
}

// Events returns the channel chat.Service publishes GameEvents on.
func (s *Service) Events() chan<- chat.GameEvent { return s.events }

// Run consumes GameEvents and timer alarms until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.events:
			s.handleEvent(ev)
		case a := <-s.timer.C():
			s.handleAlarm(a)
		}
	}
}

func (s *Service) handleEvent(ev chat.GameEvent) {
	switch e := ev.(type) {
	case chat.Connected:
		s.players[e.Player.ID()] = &playerInfo{player: e.Player, state: stateObserver}
	case chat.Disconnected:
		s.handleDisconnected(e.ID)
	case chat.Action:
		s.handleAction(e.ID, e.Text)
	case chat.CommandList:
		s.handleList(e.ID)
	case chat.CommandObserve:
		s.setState(e.ID, stateObserver)
	case chat.CommandPlay:
		s.setState(e.ID, stateActive)
	case chat.CommandPause:
		s.handlePause()
	case chat.CommandStart:
		s.handleStart()
	}
}

func (s *Service) setState(id chat.PlayerID, state playerState) {
	if s.stage != stageLobby {
		return // a running round does not accept role changes
	}
	info, ok := s.players[id]
	if !ok {
		return
	}
	info.state = state
	if state == stateActive {
		info.player.Mute(chat.AllowAll())
	} else {
		info.player.Mute(chat.DenyAll("You are observer, you can not use chat.\n"))
	}
}

func (s *Service) handleStart() {
	if s.stage != stageLobby || s.starting || s.countActive() < 1 {
		return
	}
	s.starting = true
	s.broadcast("Game starting in 5 seconds...\n")
	s.timer.AddAlarm(startDelay, alarmBeginRound)
}

func (s *Service) handlePause() {
	switch s.stage {
	case stageLobby:
		return
	case stageDay, stageNight:
		s.timer.Reset()
		s.votes = nil
		s.voteOrder = nil
		s.stage = stageLobby
		s.starting = false
		s.broadcast("Round paused.\n")
	}
}

func (s *Service) handleAction(id chat.PlayerID, text string) {
	if s.stage != stageDay {
		return
	}
	info, ok := s.players[id]
	if !ok || info.state != stateActive {
		return
	}
	if _, voted := s.votes[id]; !voted {
		s.voteOrder = append(s.voteOrder, id)
	}
	s.votes[id] = text
}

func (s *Service) handleList(id chat.PlayerID) {
	requester, ok := s.players[id]
	if !ok {
		return
	}
	logins := make([]string, 0, len(s.players))
	byLogin := make(map[string]*playerInfo, len(s.players))
	for _, info := range s.players {
		logins = append(logins, info.player.Login())
		byLogin[info.player.Login()] = info
	}
	sort.Strings(logins)

	out := "Players:\n"
	for _, l := range logins {
		role := "Observer"
		if byLogin[l].state == stateActive {
			role = "Active"
		}
		out += fmt.Sprintf("  %s - %s\n", l, role)
	}
	requester.player.Send(out)
}

func (s *Service) handleDisconnected(id chat.PlayerID) {
	delete(s.players, id)
	if _, voted := s.votes[id]; voted {
		delete(s.votes, id)
		for i, v := range s.voteOrder {
			if v == id {
				s.voteOrder = append(s.voteOrder[:i], s.voteOrder[i+1:]...)
				break
			}
		}
	}
	if s.stage != stageLobby && s.countActive() < 1 {
		s.timer.Reset()
		s.votes = nil
		s.voteOrder = nil
		s.stage = stageLobby
		s.starting = false
		s.broadcast("Not enough active players left; round abandoned.\n")
	}
}

func (s *Service) handleAlarm(a alarm) {
	switch a {
	case alarmBeginRound:
		s.beginDay()
	case alarmEndDay:
		s.endDay()
	case alarmEndNight:
		s.endNight()
	default:
		log.Printf("game: unexpected alarm %d", a)
	}
}

func (s *Service) beginDay() {
	s.stage = stageDay
	s.starting = false
	s.votes = make(map[chat.PlayerID]string)
	s.voteOrder = nil
	s.broadcast("The game has begun. It is now day.\n")
	s.timer.AddAlarm(dayLength, alarmEndDay)
}

func (s *Service) endDay() {
	target, ok := s.tallyVotes()
	if ok {
		if info := s.findByLogin(target); info != nil {
			info.state = stateObserver
			info.player.Mute(chat.DenyAll("You are observer, you can not use chat.\n"))
		}
		s.broadcast(fmt.Sprintf("The town has voted to lynch %s.\n", target))
	} else {
		s.broadcast("No one was lynched today.\n")
	}

	if s.countActive() < 2 {
		s.stage = stageLobby
		s.starting = false
		s.broadcast("Not enough active players remain; the round is over.\n")
		return
	}

	s.stage = stageNight
	s.broadcast("Night falls.\n")
	s.timer.AddAlarm(nightLength, alarmEndNight)
}

func (s *Service) endNight() {
	if s.countActive() < 2 {
		s.stage = stageLobby
		s.starting = false
		s.broadcast("Not enough active players remain; the round is over.\n")
		return
	}
	s.stage = stageDay
	s.votes = make(map[chat.PlayerID]string)
	s.voteOrder = nil
	s.broadcast("Day breaks.\n")
	s.timer.AddAlarm(dayLength, alarmEndDay)
}

// tallyVotes returns the plurality-voted login, ties broken by whichever
// target was named first across all votes in arrival order.
func (s *Service) tallyVotes() (string, bool) {
	if len(s.voteOrder) == 0 {
		return "", false
	}
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, voter := range s.voteOrder {
		target := s.votes[voter]
		counts[target]++
		if _, ok := firstSeen[target]; !ok {
			firstSeen[target] = i
		}
	}
	best := ""
	bestCount := -1
	bestSeen := len(s.voteOrder)
	for target, count := range counts {
		if count > bestCount || (count == bestCount && firstSeen[target] < bestSeen) {
			best = target
			bestCount = count
			bestSeen = firstSeen[target]
		}
	}
	return best, true
}

func (s *Service) findByLogin(login string) *playerInfo {
	for _, info := range s.players {
		if info.player.Login() == login {
			return info
		}
	}
	return nil
}

func (s *Service) countActive() int {
	n := 0
	for _, info := range s.players {
		if info.state == stateActive {
			n++
		}
	}
	return n
}

func (s *Service) broadcast(line string) {
	for _, info := range s.players {
		info.player.Send(line)
	}
}
