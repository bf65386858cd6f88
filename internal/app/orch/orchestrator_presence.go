package orch

import (
	"encoding/json"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/metrics"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) handleRegister(sid domain.ConnID, data json.RawMessage) {
	raw, err := protocol.String(data)
	if err != nil {
		o.drop(sid, protocol.RegisterUser, metrics.ReasonMalformed)
		return
	}
	uid, err := domain.ParseUserID(raw)
	if err != nil {
		o.drop(sid, protocol.RegisterUser, metrics.ReasonMalformed)
		return
	}
	if prev, ok := o.Registry.ConnOf(uid); ok && prev != sid {
		log.Info().Str("module", "orch").Str("user", string(uid)).Str("from", string(prev)).Str("to", string(sid)).Msg("identity moved to a new connection")
	}
	if !o.Registry.Register(sid, uid) {
		return
	}
	o.emitAll("", protocol.OnlineUsers, o.Registry.OnlineUsers())
	o.publishSizes()
}

func (o *Orchestrator) handleWhoAmI(sid domain.ConnID) {
	resp := protocol.WhoAmIOut{ConnectionID: sid}
	if uid, ok := o.Registry.UserOf(sid); ok {
		resp.UserID = uid
	}
	if roomID, ok := o.Registry.RoomOf(sid); ok {
		resp.RoomID = roomID
	}
	o.emit(sid, protocol.WhoAmI, resp)
}

// OnDisconnect unwinds everything sid owned as one unit: presence, room
// membership and the edit lock. Calling it twice is harmless.
func (o *Orchestrator) OnDisconnect(sid domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.Registry.GetSession(sid); !ok {
		return
	}
	if o.Registry.Unregister(sid) {
		o.emitAll(sid, protocol.OnlineUsers, o.Registry.OnlineUsers())
	}
	o.leave(sid)
	o.Registry.Unbind(sid)
	o.publishSizes()
	log.Info().Str("module", "orch").Str("conn", string(sid)).Msg("disconnected")
}
