// Package orch is the realtime coordination core: it owns presence, room
// rosters, edit locks and code snapshots, and turns each inbound event into
// outbound frames.
//
// Every entry point takes one mutex, so one event is processed to completion
// (state mutation and all sends) before the next one starts. Sends are
// non-blocking; nothing on this path waits on the network or a database.
package orch

import (
	"sync"
	"time"

	"github.com/dkeye/coderoom/internal/app"
	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/metrics"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
	Metrics  *metrics.Metrics
	// Clock defaults to time.Now.
	Clock func() time.Time

	mu sync.Mutex
}

func New(m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(),
		Policy:   app.SimplePolicy{},
		Metrics:  m,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

// Connect registers a freshly opened transport. cancel must stop the
// connection's pumps; it is how a slow member gets kicked.
func (o *Orchestrator) Connect(sid domain.ConnID, sess core.MemberSession, cancel func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Registry.Bind(sid, sess, cancel)
	o.publishSizes()
	log.Info().Str("module", "orch").Str("conn", string(sid)).Str("client", sess.Meta().ClientToken).Msg("connected")
}

// Dispatch runs the handler for one inbound event. A panicking handler is
// contained here so it cannot take down other connections.
func (o *Orchestrator) Dispatch(sid domain.ConnID, env protocol.Envelope) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var pc panics.Catcher
	pc.Try(func() { o.dispatch(sid, env) })
	if r := pc.Recovered(); r != nil {
		o.Metrics.Panicked()
		log.Error().
			Str("module", "orch").
			Str("conn", string(sid)).
			Str("type", string(env.Type)).
			Err(r.AsError()).
			Msg("handler panic recovered")
	}
}

func (o *Orchestrator) dispatch(sid domain.ConnID, env protocol.Envelope) {
	if _, ok := o.Registry.GetSession(sid); !ok {
		log.Debug().Str("module", "orch").Str("conn", string(sid)).Msg("event from unknown connection")
		return
	}

	switch env.Type {
	case protocol.RegisterUser:
		o.handleRegister(sid, env.Data)
	case protocol.JoinRoom:
		o.handleJoin(sid, env.Data)
	case protocol.LeaveRoom:
		o.leave(sid)
	case protocol.Offer:
		o.handleOffer(sid, env.Data)
	case protocol.Answer:
		o.handleAnswer(sid, env.Data)
	case protocol.ICECandidate:
		o.handleCandidate(sid, env.Data)
	case protocol.RemoteMicToggle:
		o.handleMicToggle(sid, env.Data)
	case protocol.RemoteCameraToggle:
		o.handleCameraToggle(sid, env.Data)
	case protocol.SendMessage:
		o.handleChat(sid, env.Data)
	case protocol.HandleCode:
		o.handleCode(sid, env.Data)
	case protocol.LanguageChange:
		o.handleLanguage(sid, env.Data)
	case protocol.RunningCode:
		o.handleRunning(sid, env.Data)
	case protocol.CodeResult:
		o.handleResult(sid, env.Data)
	case protocol.RequestLock:
		o.handleRequestLock(sid, env.Data)
	case protocol.ReleaseLock:
		o.handleReleaseLock(sid, env.Data)
	case protocol.Ping:
		o.emit(sid, protocol.Pong, nil)
	case protocol.WhoAmI:
		o.handleWhoAmI(sid)
	default:
		o.Metrics.Drop(metrics.ReasonUnknown)
		log.Debug().Str("module", "orch").Str("conn", string(sid)).Str("type", string(env.Type)).Msg("unknown event")
		return
	}
	o.Metrics.Event(string(env.Type))
}

// drop records an event that is ignored on purpose; clients never get an
// error frame back.
func (o *Orchestrator) drop(sid domain.ConnID, ev protocol.Event, reason string) {
	o.Metrics.Drop(reason)
	log.Debug().Str("module", "orch").Str("conn", string(sid)).Str("type", string(ev)).Str("reason", reason).Msg("event dropped")
}

func (o *Orchestrator) encode(ev protocol.Event, payload any) (core.Frame, bool) {
	b, err := protocol.Encode(ev, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("type", string(ev)).Msg("encode")
		return nil, false
	}
	return b, true
}

func (o *Orchestrator) emit(to domain.ConnID, ev protocol.Event, payload any) bool {
	f, ok := o.encode(ev, payload)
	if !ok {
		return false
	}
	return o.sendFrame(to, f)
}

func (o *Orchestrator) emitMany(targets []domain.ConnID, ev protocol.Event, payload any) {
	if len(targets) == 0 {
		return
	}
	f, ok := o.encode(ev, payload)
	if !ok {
		return
	}
	for _, to := range targets {
		o.sendFrame(to, f)
	}
}

// emitAll reaches every live connection except skip.
func (o *Orchestrator) emitAll(skip domain.ConnID, ev protocol.Event, payload any) {
	f, ok := o.encode(ev, payload)
	if !ok {
		return
	}
	for _, snap := range o.Registry.All() {
		if snap.SID == skip {
			continue
		}
		o.sendFrame(snap.SID, f)
	}
}

// sendFrame silently drops frames for connections that no longer exist.
func (o *Orchestrator) sendFrame(to domain.ConnID, f core.Frame) bool {
	sess, ok := o.Registry.GetSession(to)
	if !ok {
		return false
	}
	if err := sess.Signal().TrySend(f); err != nil {
		o.Metrics.SendFailed()
		o.onSendError(to, sess, err)
		return false
	}
	return true
}

func (o *Orchestrator) onSendError(to domain.ConnID, sess core.MemberSession, err error) {
	if o.Policy == nil {
		return
	}
	switch o.Policy.OnBackPressure(sess, err) {
	case app.KickMember:
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(to)).Msg("kicking slow connection")
		o.Registry.Cancel(to)
	case app.DropFrame, app.NoAction:
	}
}

// RoomList is a consistent snapshot of the room table.
func (o *Orchestrator) RoomList() []core.RoomInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Rooms.List()
}

func (o *Orchestrator) publishSizes() {
	o.Metrics.SetSizes(o.Registry.Len(), o.Registry.OnlineLen(), o.Rooms.Len())
}
