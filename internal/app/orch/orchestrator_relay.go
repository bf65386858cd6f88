package orch

import (
	"encoding/json"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/metrics"
	"github.com/dkeye/coderoom/internal/protocol"
)

// handleCode overwrites the snapshot and fans the code out to everyone but
// the sender. The edit lock is advisory and not consulted here.
func (o *Orchestrator) handleCode(sid domain.ConnID, data json.RawMessage) {
	var p protocol.CodeIn
	if err := protocol.Into(data, &p); err != nil || p.Code == nil {
		o.drop(sid, protocol.HandleCode, metrics.ReasonMalformed)
		return
	}
	room, ok := o.roomFor(sid, protocol.HandleCode, p.RoomID)
	if !ok {
		return
	}
	room.SetSnapshot(*p.Code)
	room.TouchLock(sid, o.now())
	o.emitMany(room.Others(sid), protocol.ReceiveCode, *p.Code)
}

// handleLanguage includes the sender so every client shows the same language.
func (o *Orchestrator) handleLanguage(sid domain.ConnID, data json.RawMessage) {
	var p protocol.LanguageIn
	if err := protocol.Into(data, &p); err != nil || !protocol.Present(p.LanguageID) {
		o.drop(sid, protocol.LanguageChange, metrics.ReasonMalformed)
		return
	}
	room, ok := o.roomFor(sid, protocol.LanguageChange, p.RoomID)
	if !ok {
		return
	}
	o.emitMany(room.Members(), protocol.ReceiveLanguage, p.LanguageID)
}

func (o *Orchestrator) handleRunning(sid domain.ConnID, data json.RawMessage) {
	var p protocol.RunningIn
	if err := protocol.Into(data, &p); err != nil {
		o.drop(sid, protocol.RunningCode, metrics.ReasonMalformed)
		return
	}
	room, ok := o.roomFor(sid, protocol.RunningCode, p.RoomID)
	if !ok {
		return
	}
	o.emitMany(room.Others(sid), protocol.RunningCode, protocol.RunningOut{Username: p.Username, Status: p.Status})
}

func (o *Orchestrator) handleResult(sid domain.ConnID, data json.RawMessage) {
	var p protocol.ResultIn
	if err := protocol.Into(data, &p); err != nil || !protocol.Present(p.Result) {
		o.drop(sid, protocol.CodeResult, metrics.ReasonMalformed)
		return
	}
	room, ok := o.roomFor(sid, protocol.CodeResult, p.RoomID)
	if !ok {
		return
	}
	o.emitMany(room.Others(sid), protocol.ReceiveResult, p.Result)
}

// handleChat relays without keeping history.
func (o *Orchestrator) handleChat(sid domain.ConnID, data json.RawMessage) {
	var p protocol.ChatIn
	if err := protocol.Into(data, &p); err != nil || !protocol.Present(p.Message) {
		o.drop(sid, protocol.SendMessage, metrics.ReasonMalformed)
		return
	}
	room, ok := o.roomFor(sid, protocol.SendMessage, p.RoomID)
	if !ok {
		return
	}
	o.emitMany(room.Others(sid), protocol.ReceiveMessage, protocol.ChatOut{Message: p.Message, Sender: p.Sender})
}
