package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sairajesh711/mafia-lite/internal/leader"
	"github.com/sairajesh711/mafia-lite/internal/scheduler"
)

// leaderGatedScheduler wraps a *scheduler.Manager behind a per-room lease,
// the piece that actually makes scheduler.Manager safe to run on every
// stateless instance at once: only the instance that wins the room's
// lease runs the local coordinator, the rest stay idle until the leader
// resigns or its renewal is lost. It implements dispatch.SchedulerPoker.
type leaderGatedScheduler struct {
	mgr     *scheduler.Manager
	elector *leader.Elector
	log     zerolog.Logger
}

func newLeaderGatedScheduler(mgr *scheduler.Manager, elector *leader.Elector, log zerolog.Logger) *leaderGatedScheduler {
	return &leaderGatedScheduler{mgr: mgr, elector: elector, log: log}
}

// Start attempts to win roomID's lease before starting the local
// coordinator; an instance that loses the race simply does nothing,
// trusting whichever instance did win to run the resolve loop.
func (s *leaderGatedScheduler) Start(ctx context.Context, roomID string) {
	won, err := s.elector.TryAcquire(ctx, roomID, time.Now(), func() {
		s.mgr.Stop(roomID)
	})
	if err != nil {
		s.log.Error().Str("room_id", roomID).Err(err).Msg("scheduler: lease acquisition failed")
		return
	}
	if !won {
		s.log.Debug().Str("room_id", roomID).Msg("scheduler: another instance leads this room")
		return
	}
	s.mgr.Start(ctx, roomID)
}

func (s *leaderGatedScheduler) Poke(roomID string) {
	s.mgr.Poke(roomID)
}

// Stop tears down the local coordinator, if any, and resigns the lease so
// another instance can pick the room up without waiting out the full TTL.
func (s *leaderGatedScheduler) Stop(roomID string) {
	s.mgr.Stop(roomID)
	if err := s.elector.Resign(context.Background(), roomID); err != nil {
		s.log.Warn().Str("room_id", roomID).Err(err).Msg("scheduler: resign on stop failed")
	}
}
