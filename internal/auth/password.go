package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. Iteration count follows the OWASP recommendation
// for HMAC-SHA256.
const (
	// DefaultIterations is the PBKDF2 iteration count used for new digests.
	// Stored digests embed their own count, so this can be raised at any
	// time without invalidating existing credentials.
	DefaultIterations = 210_000

	pbkdf2KeyLen  = 32 // derived key length
	pbkdf2SaltLen = 16 // salt length
	minIterations = 1  // guard against zero/negative counts in stored digests

	digestScheme = "pbkdf2_sha256"
	digestFields = 4
)

// hashIterations is the work factor applied to new digests. Raised or
// lowered once at startup from config; never touched after that.
var hashIterations = DefaultIterations

// SetHashIterations overrides the iteration count for new digests.
// Call once during startup, before any hashing happens. Non-positive
// values leave the default in place.
func SetHashIterations(n int) {
	if n >= minIterations {
		hashIterations = n
	}
}

// HashPassword hashes a plaintext password with PBKDF2-HMAC-SHA256 and
// returns a self-describing digest:
//
//	pbkdf2_sha256$<iterations>$<salt hex>$<derived key hex>
func HashPassword(password string) (string, error) {
	return HashPasswordIter(password, hashIterations)
}

// HashPasswordIter hashes a password with an explicit iteration count.
// Counts below DefaultIterations are only intended for tests.
func HashPasswordIter(password string, iterations int) (string, error) {
	if iterations < minIterations {
		return "", fmt.Errorf("invalid iteration count: %d", iterations)
	}

	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, pbkdf2KeyLen, sha256.New)

	return fmt.Sprintf("%s$%d$%s$%s",
		digestScheme,
		iterations,
		hex.EncodeToString(salt),
		hex.EncodeToString(key),
	), nil
}

// VerifyPassword checks a plaintext password against a stored digest.
//
// The digest's own parameters (scheme, iteration count, salt) drive the
// re-derivation, and the comparison is constant-time. A malformed digest
// verifies as false. It is treated exactly like a wrong password so the
// failure mode is never distinguishable to a caller.
func VerifyPassword(password, digest string) bool {
	iterations, salt, key, ok := decodeDigest(digest)
	if !ok {
		return false
	}

	candidate := pbkdf2.Key([]byte(password), salt, iterations, len(key), sha256.New)

	return subtle.ConstantTimeCompare(key, candidate) == 1
}

// decodeDigest parses a stored digest into its components.
// Returns ok=false for anything that does not match the format.
func decodeDigest(digest string) (iterations int, salt, key []byte, ok bool) {
	parts := strings.Split(digest, "$")
	if len(parts) != digestFields {
		return 0, nil, nil, false
	}

	if parts[0] != digestScheme {
		return 0, nil, nil, false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations < minIterations {
		return 0, nil, nil, false
	}

	salt, err = hex.DecodeString(parts[2])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, false
	}

	key, err = hex.DecodeString(parts[3])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, false
	}

	return iterations, salt, key, true
}
