package tool

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

const (
	roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// RoomCodeLength is the fixed length of every room code.
	RoomCodeLength = 4
)

// GenerateRoomCode returns a candidate room code. Uniqueness against live rooms is
// the caller's job, codes here are just random draws from the charset.
func GenerateRoomCode() string {
	var b strings.Builder
	b.Grow(RoomCodeLength)
	for i := 0; i < RoomCodeLength; i++ {
		b.WriteByte(roomCodeCharset[rand.Intn(len(roomCodeCharset))])
	}
	return b.String()
}

// GenerateViewerID returns a random per-connection identifier. Not globally
// unique, the room collision-checks it on join.
func GenerateViewerID() uint64 {
	return rand.Uint64()
}

func GenerateRandomUUID() string {
	return uuid.New().String()
}

// GenerateRandomFingerprint generates a random 32-character instance fingerprint.
func GenerateRandomFingerprint() string {
	return strings.ReplaceAll(GenerateRandomUUID(), "-", "")
}
