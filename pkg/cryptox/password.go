// Package cryptox provides one-way password hashing. Callers only ever
// see hash and verify; plaintext and digests are never logged.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. These follow the current OWASP minimums for
// interactive logins.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

// ErrMismatch is returned by VerifyPassword when the password does not
// match the stored digest.
var ErrMismatch = errors.New("cryptox: password does not match")

// HashPassword derives a PHC-format Argon2id digest with a fresh random
// salt. The optional pepper (see SetPepperPath) is appended before
// hashing.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password+pepperValue()), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword re-derives the digest from password using the
// parameters encoded in encodedHash and compares in constant time.
// Returns ErrMismatch when the password is wrong and a descriptive
// error when the stored digest is malformed.
func VerifyPassword(password, encodedHash string) error {
	params, salt, want, err := decodePHC(encodedHash)
	if err != nil {
		return err
	}

	got := argon2.IDKey(
		[]byte(password+pepperValue()),
		salt,
		params.iterations,
		params.memory,
		params.parallelism,
		uint32(len(want)), // #nosec G115 - digest length is bounded by the PHC string
	)

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}

type phcParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// decodePHC parses "$argon2id$v=19$m=X,t=Y,p=Z$salt$hash".
func decodePHC(encoded string) (phcParams, []byte, []byte, error) {
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(encoded) {
		if encoded[i] == '$' {
			parts = append(parts, encoded[start:i])
			start = i + 1
		}
	}
	parts = append(parts, encoded[start:])

	if len(parts) != 6 {
		return phcParams{}, nil, nil, errors.New("cryptox: invalid hash format")
	}
	if parts[1] != "argon2id" || parts[2] != "v=19" {
		return phcParams{}, nil, nil, errors.New("cryptox: unsupported hash variant")
	}

	var p phcParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return phcParams{}, nil, nil, fmt.Errorf("cryptox: bad hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return phcParams{}, nil, nil, fmt.Errorf("cryptox: bad salt encoding: %w", err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return phcParams{}, nil, nil, fmt.Errorf("cryptox: bad hash encoding: %w", err)
	}

	return p, salt, hash, nil
}
