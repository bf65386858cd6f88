// Package protocol defines the event envelope exchanged over the signal
// websocket and the payload of every inbound and outbound event.
package protocol

import (
	"encoding/json"
	"errors"
)

// Event is the value of the envelope's type field.
type Event string

// Inbound (client -> server).
const (
	RegisterUser       Event = "register-user"
	JoinRoom           Event = "join_room"
	LeaveRoom          Event = "leave_room"
	Offer              Event = "offer"
	Answer             Event = "answer"
	ICECandidate       Event = "ice-candidate"
	RemoteMicToggle    Event = "remote-mic-toggle"
	RemoteCameraToggle Event = "remote-camera-toggle"
	SendMessage        Event = "send_message"
	HandleCode         Event = "handle-code"
	LanguageChange     Event = "language-change"
	RunningCode        Event = "running-code"
	CodeResult         Event = "code-result"
	RequestLock        Event = "request-lock"
	ReleaseLock        Event = "release-lock"
	Ping               Event = "ping"
	WhoAmI             Event = "whoami"
)

// Outbound (server -> client). Signaling, toggles and running-code reuse the
// inbound names.
const (
	OnlineUsers      Event = "getOnlineUsers"
	RoomParticipants Event = "room_participants"
	UserJoined       Event = "user-joined"
	UserLeft         Event = "user-left"
	ReceiveMessage   Event = "receive_message"
	ReceiveCode      Event = "receive-code"
	ReceiveLanguage  Event = "receive-language"
	ReceiveResult    Event = "receive-result"
	LockGranted      Event = "lock-granted"
	LockDenied       Event = "lock-denied"
	LockUpdate       Event = "lock-update"
	Pong             Event = "pong"
)

var ErrMalformed = errors.New("malformed event")

// Envelope is one websocket text frame.
type Envelope struct {
	Type Event           `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Decode parses a raw frame. A frame without a type is malformed.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, errors.Join(ErrMalformed, err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMalformed
	}
	return env, nil
}

// Encode builds an outbound frame. A nil payload omits data.
func Encode(ev Event, payload any) ([]byte, error) {
	env := struct {
		Type Event `json:"type"`
		Data any   `json:"data,omitempty"`
	}{Type: ev, Data: payload}
	return json.Marshal(env)
}

// String decodes a scalar string payload (register-user, join_room,
// request-lock, release-lock).
func String(data json.RawMessage) (string, error) {
	if len(data) == 0 {
		return "", ErrMalformed
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", errors.Join(ErrMalformed, err)
	}
	return s, nil
}

// Into decodes an object payload.
func Into(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return ErrMalformed
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(ErrMalformed, err)
	}
	return nil
}

// Present reports whether a verbatim field was supplied at all.
func Present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
