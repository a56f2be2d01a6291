package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
	"github.com/sairajesh711/mafia-lite/internal/wire"
)

func newRoom(phase roomstate.Phase, settings roomstate.Settings, players ...*roomstate.Player) *roomstate.Room {
	r := roomstate.NewRoom("room-1", "ABC123", "host", settings)
	r.Phase = phase
	for _, p := range players {
		r.Players[p.ID] = p
	}
	if _, ok := r.Players["host"]; !ok {
		r.Players["host"] = &roomstate.Player{ID: "host", Status: roomstate.StatusAlive, RoleID: roles.Townsperson}
	}
	return r
}

func player(id string, roleID roles.ID, status roomstate.Status) *roomstate.Player {
	role, _ := roles.Get(roleID)
	return &roomstate.Player{ID: id, RoleID: roleID, Alignment: role.Alignment, Status: status}
}

func TestCheckNightAction_RejectsOutsideNightPhase(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseDayDiscussion, roomstate.DefaultSettings(),
		player("mafia-1", roles.Mafia, roomstate.StatusAlive),
		player("town-1", roles.Townsperson, roomstate.StatusAlive))

	v := CheckNightAction(r, "mafia-1", "KILL", "town-1")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorWrongPhase, v.Code)
}

func TestCheckNightAction_MafiaCannotTargetMafia(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseNight, roomstate.DefaultSettings(),
		player("mafia-1", roles.Mafia, roomstate.StatusAlive),
		player("mafia-2", roles.Mafia, roomstate.StatusAlive))

	v := CheckNightAction(r, "mafia-1", "KILL", "mafia-2")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorInvalidTarget, v.Code)
}

func TestCheckNightAction_MafiaKillOnAliveTownIsLegal(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseNight, roomstate.DefaultSettings(),
		player("mafia-1", roles.Mafia, roomstate.StatusAlive),
		player("town-1", roles.Townsperson, roomstate.StatusAlive))

	assert.Nil(t, CheckNightAction(r, "mafia-1", "KILL", "town-1"))
}

func TestCheckNightAction_DoctorMayTargetSelf(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseNight, roomstate.DefaultSettings(),
		player("doctor-1", roles.Doctor, roomstate.StatusAlive))

	assert.Nil(t, CheckNightAction(r, "doctor-1", "PROTECT", "doctor-1"))
}

func TestCheckNightAction_MafiaMayNotTargetSelf(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseNight, roomstate.DefaultSettings(),
		player("mafia-1", roles.Mafia, roomstate.StatusAlive))

	v := CheckNightAction(r, "mafia-1", "KILL", "mafia-1")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorInvalidTarget, v.Code)
}

func TestCheckNightAction_RejectsWrongActionTypeForRole(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseNight, roomstate.DefaultSettings(),
		player("mafia-1", roles.Mafia, roomstate.StatusAlive),
		player("town-1", roles.Townsperson, roomstate.StatusAlive))

	v := CheckNightAction(r, "mafia-1", "INVESTIGATE", "town-1")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorUnauthorized, v.Code)
}

func TestCheckNightAction_RejectsDeadActor(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseNight, roomstate.DefaultSettings(),
		player("mafia-1", roles.Mafia, roomstate.StatusDead),
		player("town-1", roles.Townsperson, roomstate.StatusAlive))

	v := CheckNightAction(r, "mafia-1", "KILL", "town-1")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorDeadPlayer, v.Code)
}

func TestCheckVote_RejectsOutsideVotingPhase(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseDayDiscussion, roomstate.DefaultSettings(),
		player("town-1", roles.Townsperson, roomstate.StatusAlive))

	v := CheckVote(r, "town-1", "")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorWrongPhase, v.Code)
}

func TestCheckVote_AbstainAlwaysLegal(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseDayVoting, roomstate.DefaultSettings(),
		player("town-1", roles.Townsperson, roomstate.StatusAlive))

	assert.Nil(t, CheckVote(r, "town-1", ""))
}

func TestCheckVote_RejectsDeadVoter(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseDayVoting, roomstate.DefaultSettings(),
		player("town-1", roles.Townsperson, roomstate.StatusDead),
		player("town-2", roles.Townsperson, roomstate.StatusAlive))

	v := CheckVote(r, "town-1", "town-2")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorDeadPlayer, v.Code)
}

func TestCheckVote_RejectsDeadTarget(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseDayVoting, roomstate.DefaultSettings(),
		player("town-1", roles.Townsperson, roomstate.StatusAlive),
		player("town-2", roles.Townsperson, roomstate.StatusDead))

	v := CheckVote(r, "town-1", "town-2")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorInvalidTarget, v.Code)
}

func TestCheckHostAction_RejectsNonHost(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseLobby, roomstate.DefaultSettings())

	v := CheckHostAction(r, "not-the-host")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorUnauthorized, v.Code)
}

func TestCheckStartGame_RejectsBelowMinPlayers(t *testing.T) {
	t.Parallel()
	settings := roomstate.DefaultSettings()
	settings.MinPlayers = 3
	r := newRoom(roomstate.PhaseLobby, settings)

	v := CheckStartGame(r, "host")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorWrongPhase, v.Code)
}

func TestCheckStartGame_AllowsWhenThresholdMet(t *testing.T) {
	t.Parallel()
	settings := roomstate.DefaultSettings()
	settings.MinPlayers = 2
	r := newRoom(roomstate.PhaseLobby, settings,
		player("town-1", roles.Townsperson, roomstate.StatusAlive))

	assert.Nil(t, CheckStartGame(r, "host"))
}

func TestCheckJoin_RejectsFullRoom(t *testing.T) {
	t.Parallel()
	settings := roomstate.DefaultSettings()
	settings.MaxPlayers = 1
	r := newRoom(roomstate.PhaseLobby, settings)

	v := CheckJoin(r)
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorRoomFull, v.Code)
}

func TestCheckJoin_RejectsAfterLobby(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseNight, roomstate.DefaultSettings())

	v := CheckJoin(r)
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorWrongPhase, v.Code)
}

func TestCheckChat_DayChatRejectsDeadSender(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseDayDiscussion, roomstate.DefaultSettings(),
		player("town-1", roles.Townsperson, roomstate.StatusDead))

	v := CheckChat(r, "town-1", wire.ChatDay)
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorDeadPlayer, v.Code)
}

func TestCheckChat_NightMafiaChannelRejectsNonMafia(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseNight, roomstate.DefaultSettings(),
		player("town-1", roles.Townsperson, roomstate.StatusAlive))

	v := CheckChat(r, "town-1", wire.ChatNightMafia)
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorUnauthorized, v.Code)
}

func TestCheckChat_NightMafiaChannelAllowsLivingMafia(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseNight, roomstate.DefaultSettings(),
		player("mafia-1", roles.Mafia, roomstate.StatusAlive))

	assert.Nil(t, CheckChat(r, "mafia-1", wire.ChatNightMafia))
}

func TestCheckChat_DeadChannelRejectsLivingSender(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseDayDiscussion, roomstate.DefaultSettings(),
		player("town-1", roles.Townsperson, roomstate.StatusAlive))

	v := CheckChat(r, "town-1", wire.ChatDead)
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorUnauthorized, v.Code)
}

func TestCheckChat_MutedSenderIsRejectedOnAnyChannel(t *testing.T) {
	t.Parallel()
	muted := player("town-1", roles.Townsperson, roomstate.StatusAlive)
	muted.Muted = true
	r := newRoom(roomstate.PhaseDayDiscussion, roomstate.DefaultSettings(), muted)

	v := CheckChat(r, "town-1", wire.ChatDay)
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorUnauthorized, v.Code)
}

func TestCheckHostActionTarget_RejectsUnknownTarget(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseLobby, roomstate.DefaultSettings())

	v := CheckHostActionTarget(r, "ghost")
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorInvalidTarget, v.Code)
}

func TestCheckChat_LobbyChatClosesOnceGameStarts(t *testing.T) {
	t.Parallel()
	r := newRoom(roomstate.PhaseNight, roomstate.DefaultSettings(),
		player("town-1", roles.Townsperson, roomstate.StatusAlive))

	v := CheckChat(r, "town-1", wire.ChatLobby)
	require.NotNil(t, v)
	assert.Equal(t, wire.ErrorWrongPhase, v.Code)
}
