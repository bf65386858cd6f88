package domain

import "github.com/google/uuid"

// ConnID identifies one live transport session. It is stable only for the
// lifetime of that session and is what peers use to address signaling.
type ConnID string

func NewConnID() ConnID { return ConnID(uuid.NewString()) }

// Member represents one connection's participation meta.
// No transport or lifecycle logic here.
type Member struct {
	Conn ConnID
	User UserID // empty until register-user
	// ClientToken is the cookie-bound browser token, kept for log correlation only.
	ClientToken string
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(conn ConnID, clientToken string) *Member {
	return &Member{Conn: conn, ClientToken: clientToken}
}

func (m *Member) Registered() bool { return m.User != "" }
