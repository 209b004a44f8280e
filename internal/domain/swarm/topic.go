package swarm

import (
	"crypto/rand"
	"encoding/hex"
)

// TopicLength is the required length of a topic string: 32 bytes hex encoded.
const TopicLength = 64

// NewTopic generates a fresh topic identifier.
func NewTopic() string {
	buf := make([]byte, TopicLength/2)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// ValidTopic reports whether s is a well-formed topic id: exactly 64
// lowercase hexadecimal characters.
func ValidTopic(s string) bool {
	if len(s) != TopicLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
