package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

func TestAdvancePhase_FollowsTheLinearCycle(t *testing.T) {
	t.Parallel()
	mafia := alivePlayer("p1", roles.Mafia)
	town1 := alivePlayer("p2", roles.Townsperson)
	town2 := alivePlayer("p3", roles.Townsperson)
	r := newTestRoom(mafia, town1, town2)
	r.Phase = roomstate.PhaseLobby
	r.Timer = nil

	want := []roomstate.Phase{
		roomstate.PhaseNight,
		roomstate.PhaseDayAnnouncement,
		roomstate.PhaseDayDiscussion,
		roomstate.PhaseDayVoting,
		roomstate.PhaseNight,
	}
	for i, phase := range want {
		AdvancePhase(r, int64(i)*1000)
		require.Equal(t, phase, r.Phase)
		require.NotNil(t, r.Timer)
		assert.Equal(t, phase, r.Timer.Phase)
	}
}

func TestAdvancePhase_DayAnnouncementWindowIsFixed(t *testing.T) {
	t.Parallel()
	mafia := alivePlayer("p1", roles.Mafia)
	town1 := alivePlayer("p2", roles.Townsperson)
	town2 := alivePlayer("p3", roles.Townsperson)
	r := newTestRoom(mafia, town1, town2)
	r.Phase = roomstate.PhaseNight
	r.Settings.DayDurationMs = 999_999 // prove the announcement window ignores this

	AdvancePhase(r, 0)

	require.Equal(t, roomstate.PhaseDayAnnouncement, r.Phase)
	assert.EqualValues(t, roomstate.DayAnnouncementDuration, r.Timer.EndsAt-r.Timer.StartedAt)
}

func TestAdvancePhase_DecidedVictoryShortCircuitsToEnded(t *testing.T) {
	t.Parallel()
	mafia := alivePlayer("p1", roles.Mafia)
	town := alivePlayer("p2", roles.Townsperson)
	r := newTestRoom(mafia, town)
	r.Phase = roomstate.PhaseDayVoting

	eff := AdvancePhase(r, 0)

	assert.Equal(t, roomstate.PhaseEnded, r.Phase)
	assert.Equal(t, EffectVictory, eff.Kind)
	assert.Nil(t, r.Timer)
}
