package orch

import (
	"encoding/json"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/metrics"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Signaling is store-less one-to-one forwarding addressed by connection id.
// Sender and destination are not required to share a room.

func (o *Orchestrator) handleOffer(sid domain.ConnID, data json.RawMessage) {
	var p protocol.OfferIn
	if err := protocol.Into(data, &p); err != nil || !validSDP(&p.Offer, webrtc.SDPTypeOffer) {
		o.drop(sid, protocol.Offer, metrics.ReasonMalformed)
		return
	}
	o.relay(sid, p.To, protocol.Offer, protocol.OfferOut{From: sid, Offer: p.Offer})
}

func (o *Orchestrator) handleAnswer(sid domain.ConnID, data json.RawMessage) {
	var p protocol.AnswerIn
	if err := protocol.Into(data, &p); err != nil ||
		!validSDP(&p.Answer, webrtc.SDPTypeAnswer, webrtc.SDPTypePranswer) {
		o.drop(sid, protocol.Answer, metrics.ReasonMalformed)
		return
	}
	o.relay(sid, p.To, protocol.Answer, protocol.AnswerOut{From: sid, Answer: p.Answer})
}

func (o *Orchestrator) handleCandidate(sid domain.ConnID, data json.RawMessage) {
	var p protocol.CandidateIn
	if err := protocol.Into(data, &p); err != nil {
		o.drop(sid, protocol.ICECandidate, metrics.ReasonMalformed)
		return
	}
	o.relay(sid, p.To, protocol.ICECandidate, protocol.CandidateOut{From: sid, Candidate: p.Candidate})
}

func (o *Orchestrator) handleMicToggle(sid domain.ConnID, data json.RawMessage) {
	var p protocol.MicToggleIn
	if err := protocol.Into(data, &p); err != nil || p.MicOn == nil {
		o.drop(sid, protocol.RemoteMicToggle, metrics.ReasonMalformed)
		return
	}
	o.relay(sid, p.To, protocol.RemoteMicToggle, protocol.MicToggleOut{From: sid, MicOn: *p.MicOn})
}

func (o *Orchestrator) handleCameraToggle(sid domain.ConnID, data json.RawMessage) {
	var p protocol.CameraToggleIn
	if err := protocol.Into(data, &p); err != nil || p.CameraOn == nil {
		o.drop(sid, protocol.RemoteCameraToggle, metrics.ReasonMalformed)
		return
	}
	o.relay(sid, p.To, protocol.RemoteCameraToggle, protocol.CameraToggleOut{From: sid, CameraOn: *p.CameraOn})
}

// relay delivers to one connection. A vanished peer is not an error for the
// sender; it learns about it from user-left.
func (o *Orchestrator) relay(from, to domain.ConnID, ev protocol.Event, payload any) {
	if to == "" {
		o.drop(from, ev, metrics.ReasonMalformed)
		return
	}
	if _, ok := o.Registry.GetSession(to); !ok {
		o.drop(from, ev, metrics.ReasonNoPeer)
		return
	}
	o.emit(to, ev, payload)
	log.Debug().Str("module", "orch").Str("type", string(ev)).Str("from", string(from)).Str("to", string(to)).Msg("relayed")
}

// validSDP checks the description type and that the body parses as SDP.
func validSDP(desc *webrtc.SessionDescription, types ...webrtc.SDPType) bool {
	typeOK := false
	for _, t := range types {
		if desc.Type == t {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return false
	}
	_, err := desc.Unmarshal()
	return err == nil
}
