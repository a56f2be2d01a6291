package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
	"github.com/sairajesh711/mafia-lite/internal/wire"
)

func TestResolveAndAdvance_NightWithNoKillAdvancesToDayAnnouncement(t *testing.T) {
	t.Parallel()
	h := newHarness()
	room := h.seedRoomInNight(t, map[string]roles.ID{
		"mafia-1": roles.Mafia,
		"town-1":  roles.Townsperson,
	})
	resolver := NewRoomResolver(h.d)

	phase, err := resolver.ResolveAndAdvance(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, roomstate.PhaseDayAnnouncement, phase)

	var sawNightResult, sawPhaseChange bool
	for _, env := range h.pub.events("town-1") {
		switch env.Event {
		case wire.EventNightPublicResult:
			sawNightResult = true
		case wire.EventPhaseChange:
			sawPhaseChange = true
		}
	}
	assert.True(t, sawNightResult, "expected night.publicResult to be broadcast")
	assert.True(t, sawPhaseChange, "expected phase.change to be broadcast")
}

func TestResolveAndAdvance_MafiaKillProducesDeathNarrative(t *testing.T) {
	t.Parallel()
	h := newHarness()
	room := h.seedRoomInNight(t, map[string]roles.ID{
		"mafia-1": roles.Mafia,
		"town-1":  roles.Townsperson,
	})
	_, err := h.rooms.UpdateRoomStateSafe(context.Background(), room.ID, func(r *roomstate.Room) error {
		r.NightActions["a1"] = &roomstate.NightAction{
			ID: "a1", ActionID: "a1", PlayerID: "mafia-1",
			Type: roles.ActionKill, TargetID: "town-1", SubmittedAt: 0, Priority: roles.ActionKill.Priority(),
		}
		return nil
	})
	require.NoError(t, err)

	resolver := NewRoomResolver(h.d)
	_, err = resolver.ResolveAndAdvance(context.Background(), room.ID)
	require.NoError(t, err)

	updated, _, err := h.rooms.GetRoomState(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, roomstate.StatusDead, updated.Players["town-1"].Status)

	var deathPayload wire.NightPublicResultPayload
	for _, env := range h.pub.events("mafia-1") {
		if env.Event == wire.EventNightPublicResult {
			deathPayload = env.Payload.(wire.NightPublicResultPayload)
		}
	}
	assert.Equal(t, "town-1", deathPayload.Death)
}

func TestResolveAndAdvance_DayVotingLynchesTopVote(t *testing.T) {
	t.Parallel()
	h := newHarness()
	roomID, _, err := h.rooms.CreateRoom(context.Background(), "host", "Host")
	require.NoError(t, err)
	room, err := h.rooms.UpdateRoomStateSafe(context.Background(), roomID, func(r *roomstate.Room) error {
		r.Players["town-1"] = &roomstate.Player{ID: "town-1", Name: "town-1", RoleID: roles.Townsperson, Status: roomstate.StatusAlive, Connected: true}
		r.Players["town-2"] = &roomstate.Player{ID: "town-2", Name: "town-2", RoleID: roles.Townsperson, Status: roomstate.StatusAlive, Connected: true}
		r.Players["mafia-1"] = &roomstate.Player{ID: "mafia-1", Name: "mafia-1", RoleID: roles.Mafia, Alignment: roles.AlignmentMafia, Status: roomstate.StatusAlive, Connected: true}
		r.Phase = roomstate.PhaseDayVoting
		r.Timer = &roomstate.Timer{Phase: roomstate.PhaseDayVoting, StartedAt: 0, EndsAt: 30_000}
		r.Votes["v1"] = &roomstate.Vote{ID: "v1", ActionID: "v1", PlayerID: "town-1", TargetID: "town-2", SubmittedAt: 0}
		r.Votes["v2"] = &roomstate.Vote{ID: "v2", ActionID: "v2", PlayerID: "town-2", TargetID: "town-2", SubmittedAt: 0}
		r.Votes["v3"] = &roomstate.Vote{ID: "v3", ActionID: "v3", PlayerID: "mafia-1", TargetID: "town-2", SubmittedAt: 0}
		return nil
	})
	require.NoError(t, err)

	resolver := NewRoomResolver(h.d)
	phase, err := resolver.ResolveAndAdvance(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, roomstate.PhaseNight, phase)

	updated, _, err := h.rooms.GetRoomState(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, roomstate.StatusDead, updated.Players["town-2"].Status)

	var sawLynchResult bool
	for _, env := range h.pub.events("town-1") {
		if env.Event == wire.EventLynchResult {
			sawLynchResult = true
		}
	}
	assert.True(t, sawLynchResult)
}

func TestResolveAndAdvance_DayAnnouncementIsTimerOnlyAdvance(t *testing.T) {
	t.Parallel()
	h := newHarness()
	roomID, _, err := h.rooms.CreateRoom(context.Background(), "host", "Host")
	require.NoError(t, err)
	room, err := h.rooms.UpdateRoomStateSafe(context.Background(), roomID, func(r *roomstate.Room) error {
		r.Players["town-1"] = &roomstate.Player{ID: "town-1", Name: "town-1", RoleID: roles.Townsperson, Status: roomstate.StatusAlive, Connected: true}
		r.Players["mafia-1"] = &roomstate.Player{ID: "mafia-1", Name: "mafia-1", RoleID: roles.Mafia, Alignment: roles.AlignmentMafia, Status: roomstate.StatusAlive, Connected: true}
		r.Phase = roomstate.PhaseDayAnnouncement
		r.Timer = &roomstate.Timer{Phase: roomstate.PhaseDayAnnouncement, StartedAt: 0, EndsAt: 5_000}
		return nil
	})
	require.NoError(t, err)

	resolver := NewRoomResolver(h.d)
	phase, err := resolver.ResolveAndAdvance(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, roomstate.PhaseDayDiscussion, phase)
}

func TestResolveAndAdvance_StaleSessionFlipsConnectedDuringResolve(t *testing.T) {
	t.Parallel()
	h := newHarness()
	roomID, _, err := h.rooms.CreateRoom(context.Background(), "host", "Host")
	require.NoError(t, err)
	room, err := h.rooms.UpdateRoomStateSafe(context.Background(), roomID, func(r *roomstate.Room) error {
		r.Players["town-1"] = &roomstate.Player{ID: "town-1", Name: "town-1", RoleID: roles.Townsperson, Status: roomstate.StatusAlive, Connected: true}
		r.Phase = roomstate.PhaseDayAnnouncement
		r.Timer = &roomstate.Timer{Phase: roomstate.PhaseDayAnnouncement, StartedAt: 0, EndsAt: 5_000}
		return nil
	})
	require.NoError(t, err)

	_, _, err = h.sessions.Register(context.Background(), "town-1", roomID, "sock-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	resolver := NewRoomResolver(h.d)
	_, err = resolver.ResolveAndAdvance(context.Background(), room.ID)
	require.NoError(t, err)

	updated, _, err := h.rooms.GetRoomState(context.Background(), roomID)
	require.NoError(t, err)
	assert.False(t, updated.Players["town-1"].Connected)
	assert.Equal(t, roomstate.StatusAlive, updated.Players["town-1"].Status, "liveness sweep never touches Status")
}

func TestResolveAndAdvance_FreshSessionStaysConnected(t *testing.T) {
	t.Parallel()
	h := newHarness()
	roomID, _, err := h.rooms.CreateRoom(context.Background(), "host", "Host")
	require.NoError(t, err)
	_, err = h.rooms.UpdateRoomStateSafe(context.Background(), roomID, func(r *roomstate.Room) error {
		r.Players["town-1"] = &roomstate.Player{ID: "town-1", Name: "town-1", RoleID: roles.Townsperson, Status: roomstate.StatusAlive, Connected: true}
		r.Phase = roomstate.PhaseDayAnnouncement
		r.Timer = &roomstate.Timer{Phase: roomstate.PhaseDayAnnouncement, StartedAt: 0, EndsAt: 5_000}
		return nil
	})
	require.NoError(t, err)

	_, _, err = h.sessions.Register(context.Background(), "town-1", roomID, "sock-1", time.Now())
	require.NoError(t, err)

	resolver := NewRoomResolver(h.d)
	_, err = resolver.ResolveAndAdvance(context.Background(), roomID)
	require.NoError(t, err)

	updated, _, err := h.rooms.GetRoomState(context.Background(), roomID)
	require.NoError(t, err)
	assert.True(t, updated.Players["town-1"].Connected)
}

func TestSnapshot_ReturnsCurrentRoom(t *testing.T) {
	t.Parallel()
	h := newHarness()
	room := h.seedRoomInNight(t, map[string]roles.ID{"town-1": roles.Townsperson})
	resolver := NewRoomResolver(h.d)

	snap, err := resolver.Snapshot(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, snap.ID)
	assert.Equal(t, roomstate.PhaseNight, snap.Phase)
}
