package course

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

// joinCodeAlphabet excludes visually ambiguous characters (0/O, 1/I).
// Its length is a power of two so a random byte can be reduced without bias.
const (
	joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	joinCodeLen      = 8
)

// makeJoinCode produces a random 8-character code from the restricted alphabet.
func makeJoinCode() (string, error) {
	buf := make([]byte, joinCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}
