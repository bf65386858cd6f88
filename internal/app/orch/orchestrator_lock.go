package orch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/metrics"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) handleRequestLock(sid domain.ConnID, data json.RawMessage) {
	raw, err := protocol.String(data)
	if err != nil {
		o.drop(sid, protocol.RequestLock, metrics.ReasonMalformed)
		return
	}
	roomID, err := domain.ParseRoomID(raw)
	if err != nil {
		o.drop(sid, protocol.RequestLock, metrics.ReasonMalformed)
		return
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		// nobody can hold the lock of a room without members
		o.emit(sid, protocol.LockDenied, protocol.LockDeniedOut{})
		return
	}

	_, already := room.LockHolder()
	granted, holder := room.AcquireLock(sid, o.now())
	if !granted {
		o.emit(sid, protocol.LockDenied, protocol.LockDeniedOut{By: holder})
		log.Debug().Str("module", "orch").Str("conn", string(sid)).Str("room", string(room.ID())).Str("holder", string(holder)).Msg("lock denied")
		return
	}
	o.emit(sid, protocol.LockGranted, nil)
	if already {
		// the holder asked again; nobody else needs to hear about it
		return
	}
	o.Metrics.LockGranted()
	o.emitMany(room.Others(sid), protocol.LockUpdate, protocol.LockUpdateOut{Locked: true, By: sid})
	log.Info().Str("module", "orch").Str("conn", string(sid)).Str("room", string(room.ID())).Msg("lock granted")
}

func (o *Orchestrator) handleReleaseLock(sid domain.ConnID, data json.RawMessage) {
	raw, err := protocol.String(data)
	if err != nil {
		o.drop(sid, protocol.ReleaseLock, metrics.ReasonMalformed)
		return
	}
	room, ok := o.roomFor(sid, protocol.ReleaseLock, raw)
	if !ok {
		return
	}
	if !room.ReleaseLock(sid) {
		o.drop(sid, protocol.ReleaseLock, metrics.ReasonNotHolder)
		return
	}
	o.emitMany(room.Others(sid), protocol.LockUpdate, protocol.LockUpdateOut{Locked: false})
	log.Info().Str("module", "orch").Str("conn", string(sid)).Str("room", string(room.ID())).Msg("lock released")
}

// ReapStaleLocks force-releases every lock whose holder has been idle for at
// least idle and tells the room. It returns how many locks were released.
func (o *Orchestrator) ReapStaleLocks(idle time.Duration) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	var stale []*core.Room
	o.Rooms.Each(func(room *core.Room) {
		if _, held := room.LockHolder(); held && room.LockIdleFor(now) >= idle {
			stale = append(stale, room)
		}
	})
	for _, room := range stale {
		holder, _ := room.ForceUnlock()
		o.Metrics.LockReaped()
		o.emitMany(room.Members(), protocol.LockUpdate, protocol.LockUpdateOut{Locked: false})
		log.Warn().Str("module", "orch").Str("room", string(room.ID())).Str("holder", string(holder)).Dur("idle", idle).Msg("stale lock released")
	}
	return len(stale)
}

// RunLockJanitor sweeps for stale locks every interval until ctx is done.
func (o *Orchestrator) RunLockJanitor(ctx context.Context, idle, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	log.Info().Str("module", "orch").Dur("idle", idle).Dur("interval", interval).Msg("lock janitor started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			o.ReapStaleLocks(idle)
		}
	}
}
