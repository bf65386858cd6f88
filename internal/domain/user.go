// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxUserIDLen = 128
	MaxRoomIDLen = 128
)

var (
	ErrIDEmpty   = errors.New("id empty")
	ErrIDTooLong = errors.New("id too long")
)

// UserID is the identity a client announces in register-user.
// It comes from the external auth service and is never checked here.
type UserID string

func ParseUserID(raw string) (UserID, error) {
	s, err := parseID(raw, MaxUserIDLen)
	return UserID(s), err
}

func parseID(raw string, limit int) (string, error) {
	s := strings.TrimSpace(raw)
	if len(s) == 0 {
		return "", ErrIDEmpty
	}
	if len(s) > limit {
		return "", ErrIDTooLong
	}
	return s, nil
}
