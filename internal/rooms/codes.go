package rooms

import (
	"crypto/rand"
	"math/big"
)

// alphabet leaves out 0, O, 1, I and L so codes survive being read aloud.
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 6

var alphabetSize = big.NewInt(int64(len(alphabet)))

// GenerateCode returns a random room code of codeLength symbols drawn from
// alphabet. Uniqueness against live rooms is the registry's job.
func GenerateCode() (string, error) {
	var code [codeLength]byte
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code[:]), nil
}
