package protocol

import (
	"encoding/json"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/pion/webrtc/v4"
)

type OfferIn struct {
	To    domain.ConnID             `json:"to"`
	Offer webrtc.SessionDescription `json:"offer"`
}

type OfferOut struct {
	From  domain.ConnID             `json:"from"`
	Offer webrtc.SessionDescription `json:"offer"`
}

type AnswerIn struct {
	To     domain.ConnID             `json:"to"`
	Answer webrtc.SessionDescription `json:"answer"`
}

type AnswerOut struct {
	From   domain.ConnID             `json:"from"`
	Answer webrtc.SessionDescription `json:"answer"`
}

type CandidateIn struct {
	To        domain.ConnID           `json:"to"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

type CandidateOut struct {
	From      domain.ConnID           `json:"from"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

type MicToggleIn struct {
	To    domain.ConnID `json:"to"`
	MicOn *bool         `json:"micOn"`
}

type MicToggleOut struct {
	From  domain.ConnID `json:"from"`
	MicOn bool          `json:"micOn"`
}

type CameraToggleIn struct {
	To       domain.ConnID `json:"to"`
	CameraOn *bool         `json:"cameraOn"`
}

type CameraToggleOut struct {
	From     domain.ConnID `json:"from"`
	CameraOn bool          `json:"cameraOn"`
}

// ChatIn carries message and sender verbatim; the server never looks inside.
type ChatIn struct {
	RoomID  string          `json:"roomId"`
	Message json.RawMessage `json:"message"`
	Sender  json.RawMessage `json:"sender"`
}

type ChatOut struct {
	Message json.RawMessage `json:"message"`
	Sender  json.RawMessage `json:"sender"`
}

type CodeIn struct {
	RoomID string  `json:"roomId"`
	Code   *string `json:"code"`
}

type LanguageIn struct {
	RoomID     string          `json:"roomId"`
	LanguageID json.RawMessage `json:"languageId"`
}

type RunningIn struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Status   bool   `json:"status"`
}

type RunningOut struct {
	Username string `json:"username"`
	Status   bool   `json:"status"`
}

type ResultIn struct {
	RoomID string          `json:"roomId"`
	Result json.RawMessage `json:"result"`
}

type LockUpdateOut struct {
	Locked bool          `json:"locked"`
	By     domain.ConnID `json:"by,omitempty"`
}

type LockDeniedOut struct {
	By domain.ConnID `json:"by,omitempty"`
}

type WhoAmIOut struct {
	ConnectionID domain.ConnID `json:"connectionId"`
	UserID       domain.UserID `json:"userId,omitempty"`
	RoomID       domain.RoomID `json:"roomId,omitempty"`
}
