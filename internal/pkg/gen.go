package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// GeneratePlayerID - generates a new unique player identifier.
func GeneratePlayerID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-player-id"
	}

	return base64.RawURLEncoding.EncodeToString(b)
}

// GenerateRoomCode - generates a short numeric code players share to meet
// in the same room.
func GenerateRoomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(100000000))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%08d", n)
}
