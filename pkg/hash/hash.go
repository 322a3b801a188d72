package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// pinIterations is the SHA256 iteration count for PIN hashing. The PIN is
// a short numeric secret, so a single hash round would be trivially
// brute-forced offline.
const pinIterations = 5000

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// IteratedSHA256 applies SHA256 iteratively n times to produce a derived hash.
func IteratedSHA256(input string, iterations int) string {
	data := []byte(input)
	for range iterations {
		h := sha256.Sum256(data)
		data = h[:]
	}
	return hex.EncodeToString(data)
}

// NewSalt returns a fresh random hex salt for PIN hashing.
func NewSalt() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the process is in no state to accept
		// secrets at all.
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// HashPin derives the stored hash for an admin PIN with the given salt.
func HashPin(pin, salt string) string {
	return IteratedSHA256(salt+pin, pinIterations)
}

// VerifyPin reports whether candidate matches the stored salted hash.
// Comparison is constant-time.
func VerifyPin(candidate, salt, storedHash string) bool {
	derived := HashPin(candidate, salt)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(storedHash)) == 1
}
