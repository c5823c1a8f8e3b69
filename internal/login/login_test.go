package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnetserg/mafia/internal/locale"
	"github.com/vnetserg/mafia/internal/socket"
)

func newTestService() (*Service, chan Event) {
	events := make(chan Event, 64)
	return New(events, locale.En), events
}

func testProxy(id string) (socket.Proxy, chan socket.Request) {
	reqs := make(chan socket.Request, 64)
	return socket.NewProxyForTest(socket.ID(id), reqs), reqs
}

func drainPayloads(reqs chan socket.Request) []string {
	var out []string
	for {
		select {
		case r := <-reqs:
			if sm, ok := r.(socket.SendMessage); ok {
				out = append(out, sm.Payload)
			}
		default:
			return out
		}
	}
}

func TestHandleNewSocketSendsWelcome(t *testing.T) {
	s, _ := newTestService()
	proxy, reqs := testProxy("1.2.3.4:1")

	s.handleNewSocket(proxy)

	payloads := drainPayloads(reqs)
	require.Len(t, payloads, 1)
	assert.Equal(t, s.locale.Welcome, payloads[0])
	assert.Equal(t, slotInitial, s.slots[proxy.ID()].kind)
}

func TestNewAccountFlowAuthenticates(t *testing.T) {
	s, events := newTestService()
	proxy, reqs := testProxy("1.2.3.4:1")
	s.handleNewSocket(proxy)
	drainPayloads(reqs)

	s.handleNewMessage(proxy.ID(), "alice")
	payloads := drainPayloads(reqs)
	require.Len(t, payloads, 1)
	assert.Contains(t, payloads[0], "Creating player")
	assert.Equal(t, slotGotLogin, s.slots[proxy.ID()].kind)

	s.handleNewMessage(proxy.ID(), "secret")
	payloads = drainPayloads(reqs)
	require.Len(t, payloads, 1)
	assert.Contains(t, payloads[0], "Password created")
	assert.Equal(t, slotAuthenticated, s.slots[proxy.ID()].kind)

	select {
	case ev := <-events:
		nu, ok := ev.(NewUserEvent)
		require.True(t, ok)
		assert.Equal(t, "alice", nu.User.Login())
	default:
		t.Fatal("expected a NewUserEvent")
	}

	acc, ok := s.accounts["alice"]
	require.True(t, ok)
	assert.True(t, acc.online)
	assert.Equal(t, "secret", acc.secret)
}

func TestReturningAccountWrongPasswordReprompts(t *testing.T) {
	s, _ := newTestService()
	s.accounts["alice"] = &account{secret: "right"}

	proxy, reqs := testProxy("1.2.3.4:1")
	s.handleNewSocket(proxy)
	drainPayloads(reqs)

	s.handleNewMessage(proxy.ID(), "alice")
	drainPayloads(reqs)

	s.handleNewMessage(proxy.ID(), "wrong")
	payloads := drainPayloads(reqs)
	require.Len(t, payloads, 1)
	assert.Equal(t, s.locale.WrongPassword, payloads[0])
	assert.Equal(t, slotInitial, s.slots[proxy.ID()].kind)
	assert.False(t, s.accounts["alice"].online)
}

func TestNicknameTakenWhileOnline(t *testing.T) {
	s, _ := newTestService()
	s.accounts["alice"] = &account{secret: "pw", online: true}

	proxy, reqs := testProxy("1.2.3.4:1")
	s.handleNewSocket(proxy)
	drainPayloads(reqs)

	s.handleNewMessage(proxy.ID(), "alice")
	payloads := drainPayloads(reqs)
	require.Len(t, payloads, 1)
	assert.Contains(t, payloads[0], "already online")
	assert.Equal(t, slotInitial, s.slots[proxy.ID()].kind)
}

func TestHandleClosedSocketMarksAccountOffline(t *testing.T) {
	s, events := newTestService()
	proxy, reqs := testProxy("1.2.3.4:1")
	s.handleNewSocket(proxy)
	drainPayloads(reqs)
	s.handleNewMessage(proxy.ID(), "alice")
	drainPayloads(reqs)
	s.handleNewMessage(proxy.ID(), "secret")
	drainPayloads(reqs)
	<-events // NewUserEvent

	s.handleClosedSocket(proxy.ID())

	assert.False(t, s.accounts["alice"].online)
	select {
	case ev := <-events:
		_, ok := ev.(DropUserEvent)
		assert.True(t, ok)
	default:
		t.Fatal("expected a DropUserEvent")
	}
}

func TestHandleNewMessageAfterAuthenticationForwardsToChat(t *testing.T) {
	s, events := newTestService()
	proxy, reqs := testProxy("1.2.3.4:1")
	s.handleNewSocket(proxy)
	drainPayloads(reqs)
	s.handleNewMessage(proxy.ID(), "alice")
	drainPayloads(reqs)
	s.handleNewMessage(proxy.ID(), "secret")
	drainPayloads(reqs)
	<-events // NewUserEvent

	s.handleNewMessage(proxy.ID(), "hello chat")

	select {
	case ev := <-events:
		nm, ok := ev.(NewMessageEvent)
		require.True(t, ok)
		assert.Equal(t, "hello chat", nm.Line)
	default:
		t.Fatal("expected a NewMessageEvent")
	}
}
