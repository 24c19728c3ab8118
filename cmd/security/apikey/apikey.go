// Package apikey hashes and verifies API keys with Argon2id. Deployments can
// configure either a plaintext key (compared in constant time) or an encoded
// Argon2id hash, so the key itself never has to live in the environment.
package apikey

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Version = 19 // argon2.Version (0x13)

// ErrInvalidHash is returned for malformed or unsupported encoded hashes.
var ErrInvalidHash = errors.New("invalid api key hash")

// Params are the Argon2id cost parameters.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns interactive-grade costs suitable for per-request
// verification.
func DefaultParams() Params {
	return Params{
		MemoryKiB:   64 * 1024,
		Iterations:  2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hash encodes key as $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<hash>.
func Hash(key string, p Params) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	derived := argon2.IDKey([]byte(key), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version, p.MemoryKiB, p.Iterations, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(derived),
	), nil
}

// Verify checks key against an encoded hash. (false, nil) means mismatch;
// ErrInvalidHash means the hash could not be parsed.
func Verify(encoded, key string) (bool, error) {
	p, salt, expected, err := decode(encoded)
	if err != nil {
		return false, err
	}

	derived := argon2.IDKey([]byte(key), salt, p.Iterations, p.MemoryKiB, p.Parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(derived, expected) == 1, nil
}

func decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2Version {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Iterations, &p.Parallelism); err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 || len(salt) > 64 {
		return Params{}, nil, nil, ErrInvalidHash
	}
	expected, err := b64.DecodeString(parts[5])
	if err != nil || len(expected) < 16 || len(expected) > 128 {
		return Params{}, nil, nil, ErrInvalidHash
	}

	return p, salt, expected, nil
}

// Verifier matches presented keys against the configured credential.
type Verifier struct {
	plain  string
	hashed string
}

// NewVerifier takes a plaintext key and/or an encoded hash; the hash wins
// when both are set. With neither, verification is disabled.
func NewVerifier(plain, hashed string) *Verifier {
	return &Verifier{plain: plain, hashed: hashed}
}

// Enabled reports whether any credential is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && (v.plain != "" || v.hashed != "")
}

// Match reports whether candidate is the configured key.
func (v *Verifier) Match(candidate string) bool {
	if !v.Enabled() || candidate == "" {
		return false
	}
	if v.hashed != "" {
		ok, err := Verify(v.hashed, candidate)
		return err == nil && ok
	}
	return subtle.ConstantTimeCompare([]byte(v.plain), []byte(candidate)) == 1
}
