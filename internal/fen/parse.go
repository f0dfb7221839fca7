// Package fen provides the small amount of FEN (Forsyth-Edwards Notation)
// inspection the converters need. It does not validate positions.
package fen

import (
	"errors"
	"strings"
)

// ErrInvalidFEN indicates the FEN string is malformed.
var ErrInvalidFEN = errors.New("invalid FEN notation")

// Side to move markers.
const (
	White = "w"
	Black = "b"
)

// BlackToMove reports whether the FEN marks Black as the side to move.
// It matches the " b " token anywhere in the string, so trailing fields of any
// shape are tolerated.
func BlackToMove(fen string) bool {
	return strings.Contains(fen, " "+Black+" ")
}

// WhiteToMove reports whether the FEN marks White as the side to move,
// using the same token match as BlackToMove.
func WhiteToMove(fen string) bool {
	return strings.Contains(fen, " "+White+" ")
}

// SideToMove returns "w" or "b" from a FEN string.
func SideToMove(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return "", ErrInvalidFEN
	}
	if parts[1] != White && parts[1] != Black {
		return "", ErrInvalidFEN
	}
	return parts[1], nil
}

// Placement returns the piece placement field of a FEN string.
func Placement(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 || strings.Count(parts[0], "/") != 7 {
		return "", ErrInvalidFEN
	}
	return parts[0], nil
}
