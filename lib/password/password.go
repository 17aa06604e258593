// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package password

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	family = "Argon2"

	algorithmArgon2id = "argon2id"
	algorithmArgon2i  = "argon2i"

	// saltLength and hashLength match the Argon2 recommended salt size
	// and default output size.
	saltLength = 16
	hashLength = 32

	// minMemoryPerLane is the Argon2 lower bound: memory must be at
	// least 8 KiB per lane.
	minMemoryPerLane = 8
)

// ErrMalformedHash is wrapped by every Verify failure caused by the
// stored record rather than the password.
var ErrMalformedHash = errors.New("malformed password hash")

// Params are the Argon2 cost parameters.
type Params struct {
	// MemoryCost in KiB.
	MemoryCost uint32
	// TimeCost is the number of passes.
	TimeCost uint32
	// Parallelism is the number of lanes.
	Parallelism uint8
}

// DefaultParams returns the Argon2 defaults: 19 MiB, two passes, one
// lane.
func DefaultParams() Params {
	return Params{MemoryCost: 19456, TimeCost: 2, Parallelism: 1}
}

// Validate reports parameters Argon2 cannot run with.
func (p Params) Validate() error {
	var errs []error
	if p.TimeCost < 1 {
		errs = append(errs, fmt.Errorf("time cost must be at least 1"))
	}
	if p.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be at least 1"))
	}
	if uint64(p.MemoryCost) < minMemoryPerLane*uint64(p.Parallelism) {
		errs = append(errs, fmt.Errorf("memory cost %d KiB is below %d KiB per lane for %d lanes",
			p.MemoryCost, minMemoryPerLane, p.Parallelism))
	}
	return errors.Join(errs...)
}

// Config configures a Hasher.
type Config struct {
	// Params are used for newly hashed passwords. Verify uses the
	// parameters stored in each record instead.
	Params Params

	// Secret is an optional pepper. When set, the password is keyed
	// through HMAC-SHA256 with it before Argon2 runs, so a stolen
	// database is useless without the secret.
	Secret []byte
}

// Hasher hashes and verifies passwords. It is immutable after
// construction and safe for concurrent use.
type Hasher struct {
	params Params
	secret []byte
}

// NewHasher validates the parameters once so that hashing can never
// fail on them later.
func NewHasher(config Config) (*Hasher, error) {
	if err := config.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Argon2 parameters: %w", err)
	}
	var secret []byte
	if len(config.Secret) > 0 {
		secret = append([]byte(nil), config.Secret...)
	}
	return &Hasher{params: config.Params, secret: secret}, nil
}

// Params returns the parameters used for new hashes.
func (h *Hasher) Params() Params { return h.params }

// record is the stored form of a password hash: a JSON object that
// carries every parameter needed to verify it later.
type record struct {
	Family    string `json:"family"`
	Salt      string `json:"salt"`
	Hash      string `json:"hash"`
	PCost     uint32 `json:"p_cost"`
	MCost     uint32 `json:"m_cost"`
	TCost     uint32 `json:"t_cost"`
	Version   uint32 `json:"version"`
	Algorithm string `json:"algorithm"`
}

// Hash hashes password with a fresh random salt and returns the
// record to store.
func (h *Hasher) Hash(password []byte) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey(h.keyed(password), salt, h.params.TimeCost, h.params.MemoryCost, h.params.Parallelism, hashLength)

	data, err := json.Marshal(record{
		Family:    family,
		Salt:      base64.RawStdEncoding.EncodeToString(salt),
		Hash:      base64.RawStdEncoding.EncodeToString(hash),
		PCost:     uint32(h.params.Parallelism),
		MCost:     h.params.MemoryCost,
		TCost:     h.params.TimeCost,
		Version:   argon2.Version,
		Algorithm: algorithmArgon2id,
	})
	if err != nil {
		return "", fmt.Errorf("encoding password hash: %w", err)
	}
	return string(data), nil
}

// Verify reports whether password matches the stored record, using
// the parameters recorded in it. The server only hashes; a Backend that
// authenticates accounts calls Verify against the records it stored. A record that cannot be interpreted
// yields an error wrapping ErrMalformedHash.
func (h *Hasher) Verify(password []byte, stored string) (bool, error) {
	var saved record
	if err := json.Unmarshal([]byte(stored), &saved); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	}
	if saved.Family != family {
		return false, fmt.Errorf("%w: unknown family %q", ErrMalformedHash, saved.Family)
	}
	if saved.Version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported Argon2 version %#x", ErrMalformedHash, saved.Version)
	}
	if saved.PCost > 255 {
		return false, fmt.Errorf("%w: parallelism %d out of range", ErrMalformedHash, saved.PCost)
	}
	params := Params{MemoryCost: saved.MCost, TimeCost: saved.TCost, Parallelism: uint8(saved.PCost)}
	if err := params.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(saved.Salt)
	if err != nil {
		return false, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(saved.Hash)
	if err != nil {
		return false, fmt.Errorf("%w: hash: %w", ErrMalformedHash, err)
	}
	if len(expected) == 0 {
		return false, fmt.Errorf("%w: empty hash", ErrMalformedHash)
	}

	var derive func(password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) []byte
	switch saved.Algorithm {
	case algorithmArgon2id:
		derive = argon2.IDKey
	case algorithmArgon2i:
		derive = argon2.Key
	default:
		return false, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, saved.Algorithm)
	}

	computed := derive(h.keyed(password), salt, params.TimeCost, params.MemoryCost, params.Parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(expected, computed) == 1, nil
}

// keyed applies the secret, when configured.
func (h *Hasher) keyed(password []byte) []byte {
	if h.secret == nil {
		return password
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(password)
	return mac.Sum(nil)
}
