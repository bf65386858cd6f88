package orch

import (
	"encoding/json"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/metrics"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) handleJoin(sid domain.ConnID, data json.RawMessage) {
	raw, err := protocol.String(data)
	if err != nil {
		o.drop(sid, protocol.JoinRoom, metrics.ReasonMalformed)
		return
	}
	roomID, err := domain.ParseRoomID(raw)
	if err != nil {
		o.drop(sid, protocol.JoinRoom, metrics.ReasonMalformed)
		return
	}

	// Rejoining the same room is a full leave followed by a join.
	if from, ok := o.Registry.RoomOf(sid); ok {
		o.leave(sid)
		log.Info().Str("module", "orch").Str("conn", string(sid)).Str("from_room", string(from)).Msg("left previous room")
	}

	room := o.Rooms.GetOrCreate(roomID)
	existing := room.Members()
	room.Add(sid)
	o.Registry.UpdateRoom(sid, roomID)

	o.emitMany(room.Members(), protocol.RoomParticipants, o.participants(room))
	// Only the first peer is offered for direct signaling.
	if len(existing) > 0 {
		o.emit(sid, protocol.UserJoined, existing[0])
	}
	if code, ok := room.Snapshot(); ok {
		o.emit(sid, protocol.ReceiveCode, code)
	}
	if holder, ok := room.LockHolder(); ok {
		o.emit(sid, protocol.LockUpdate, protocol.LockUpdateOut{Locked: true, By: holder})
	}
	o.publishSizes()
	log.Info().Str("module", "orch").Str("conn", string(sid)).Str("room", string(roomID)).Int("members", room.Len()).Msg("joined room")
}

// leave removes sid from its room, releasing the edit lock in the same step
// when sid held it. It is shared by leave_room, join_room and disconnect.
func (o *Orchestrator) leave(sid domain.ConnID) {
	roomID, ok := o.Registry.RoomOf(sid)
	if !ok {
		return
	}
	o.Registry.RemoveRoom(sid)
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return
	}
	removed, lockReleased := room.Remove(sid)
	if !removed {
		return
	}

	remaining := room.Members()
	o.emitMany(remaining, protocol.UserLeft, sid)
	if lockReleased {
		o.emitMany(remaining, protocol.LockUpdate, protocol.LockUpdateOut{Locked: false})
		log.Info().Str("module", "orch").Str("conn", string(sid)).Str("room", string(roomID)).Msg("lock force-released")
	}
	o.emitMany(remaining, protocol.RoomParticipants, o.participants(room))

	if room.Len() == 0 {
		o.Rooms.StopRoom(roomID)
	}
	o.publishSizes()
	log.Info().Str("module", "orch").Str("conn", string(sid)).Str("room", string(roomID)).Int("members", room.Len()).Msg("left room")
}

// participants lists the identities bound to the room's members in join
// order. Connections that never registered are not listed.
func (o *Orchestrator) participants(room *core.Room) []domain.UserID {
	out := make([]domain.UserID, 0, room.Len())
	for _, cid := range room.Members() {
		if uid, ok := o.Registry.UserOf(cid); ok {
			out = append(out, uid)
		}
	}
	return out
}

// roomFor resolves a roomId carried in a payload to an existing room.
func (o *Orchestrator) roomFor(sid domain.ConnID, ev protocol.Event, raw string) (*core.Room, bool) {
	roomID, err := domain.ParseRoomID(raw)
	if err != nil {
		o.drop(sid, ev, metrics.ReasonMalformed)
		return nil, false
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		o.drop(sid, ev, metrics.ReasonUnknownRoom)
		return nil, false
	}
	return room, true
}
