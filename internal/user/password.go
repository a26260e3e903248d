package user

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/vyrodovalexey/userapi/internal/config"
)

const (
	saltLength = 16
	keyLength  = 32
)

// ErrMalformedHash is returned by Verify for a hash it cannot decode.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher hashes passwords with argon2id after mixing in a
// server-side pepper with HMAC-SHA256.
type PasswordHasher struct {
	pepper      []byte
	iterations  uint32
	memory      uint32
	parallelism uint8
}

// NewPasswordHasher creates a PasswordHasher from configuration.
func NewPasswordHasher(cfg config.PasswordConfig) *PasswordHasher {
	h := &PasswordHasher{
		pepper:      []byte(cfg.Pepper),
		iterations:  cfg.Iterations,
		memory:      cfg.MemoryKiB,
		parallelism: cfg.Parallelism,
	}
	if h.iterations == 0 {
		h.iterations = 1
	}
	if h.memory == 0 {
		h.memory = 64 * 1024
	}
	if h.parallelism == 0 {
		h.parallelism = 2
	}
	return h
}

func (h *PasswordHasher) pepperize(password string) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(password))
	return []byte(hex.EncodeToString(mac.Sum(nil)))
}

// Hash returns the encoded hash of password in the
// $argon2id$v=19$m=..,t=..,p=..$salt$hash format.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey(h.pepperize(password), salt, h.iterations, h.memory, h.parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.iterations, h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encoded. The parameters are
// read from encoded, so hashes made with older settings still verify.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var (
		memory, iterations uint32
		parallelism        uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey(h.pepperize(password), salt, iterations, memory, parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
