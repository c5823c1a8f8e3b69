package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAlarmDelivers(t *testing.T) {
	tm := New[string]()
	tm.AddAlarm(10*time.Millisecond, "ding")

	select {
	case got := <-tm.C():
		assert.Equal(t, "ding", got)
	case <-time.After(time.Second):
		t.Fatal("alarm never fired")
	}
}

func TestResetCancelsPendingAlarms(t *testing.T) {
	tm := New[string]()
	tm.AddAlarm(50*time.Millisecond, "late")
	tm.Reset()

	select {
	case got := <-tm.C():
		t.Fatalf("expected no delivery after Reset, got %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestResetThenNewAlarmStillDelivers(t *testing.T) {
	tm := New[int]()
	tm.AddAlarm(50*time.Millisecond, 1)
	tm.Reset()
	tm.AddAlarm(10*time.Millisecond, 2)

	select {
	case got := <-tm.C():
		require.Equal(t, 2, got)
	case <-time.After(time.Second):
		t.Fatal("second alarm never fired")
	}
}

func TestMultipleAlarmsEachDeliver(t *testing.T) {
	tm := New[int]()
	tm.AddAlarm(5*time.Millisecond, 1)
	tm.AddAlarm(10*time.Millisecond, 2)

	seen := map[int]bool{}
	for i := 0; i < 2; i++ {
		select {
		case got := <-tm.C():
			seen[got] = true
		case <-time.After(time.Second):
			t.Fatal("missing alarm delivery")
		}
	}
	assert.True(t, seen[1])
	assert.True(t, seen[2])
}
