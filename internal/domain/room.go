package domain

// RoomID is opaque; rooms are created and looked up outside this process.
type RoomID string

func ParseRoomID(raw string) (RoomID, error) {
	s, err := parseID(raw, MaxRoomIDLen)
	return RoomID(s), err
}
