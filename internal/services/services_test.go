package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/hockey-gm/pkg/config"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestAutoSimDisabledDoesNothing(t *testing.T) {
	cfg := config.Default()
	cfg.AutoSimEnabled = false

	ticks := 0
	sim := NewAutoSim(cfg, testLogger(), func() error {
		ticks++
		return nil
	})
	require.NoError(t, sim.Start())
	assert.Zero(t, ticks)
}

func TestAutoSimRejectsBadSchedule(t *testing.T) {
	cfg := config.Default()
	cfg.AutoSimEnabled = true
	cfg.AutoSimCron = "not a schedule"

	sim := NewAutoSim(cfg, testLogger(), func() error { return nil })
	assert.Error(t, sim.Start())
}

func readMessage(t *testing.T, send chan []byte) *FeedMessage {
	t.Helper()
	select {
	case raw := <-send:
		var msg FeedMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatal("no feed message arrived")
		return nil
	}
}

func TestHubRoutesTeamScopedMessages(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()

	everyone := &Client{Send: make(chan []byte, 8), Hub: hub, LastSeen: time.Now()}
	follower := &Client{TeamID: "t1", Send: make(chan []byte, 8), Hub: hub, LastSeen: time.Now()}
	hub.register <- everyone
	hub.register <- follower

	assert.Equal(t, "connected", readMessage(t, everyone.Send).Type)
	assert.Equal(t, "connected", readMessage(t, follower.Send).Type)

	hub.NotifyTeam("t1", map[string]string{"kind": "trade_offer"})
	msg := readMessage(t, follower.Send)
	assert.Equal(t, MsgInboxEvent, msg.Type)
	assert.Equal(t, "t1", msg.TeamID)

	hub.BroadcastNews([]string{"A coach was shown the door."})
	assert.Equal(t, MsgNews, readMessage(t, everyone.Send).Type)
	assert.Equal(t, MsgNews, readMessage(t, follower.Send).Type)

	select {
	case raw := <-everyone.Send:
		t.Fatalf("team-scoped push leaked to the room: %s", raw)
	default:
	}
}

func TestHubDropsEmptyNews(t *testing.T) {
	hub := NewHub(testLogger())
	hub.BroadcastNews(nil)
	select {
	case <-hub.broadcast:
		t.Fatal("empty news should not enqueue a push")
	default:
	}
}
