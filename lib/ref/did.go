// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// DID is a validated decentralized identifier (e.g.,
// "did:plc:ewvi7nxzyoun6zhxrhs64oiz", "did:web:example.com").
//
// DIDs are the stable account identifiers of the protocol. Handles
// change, DIDs do not, so every persistent reference to an account
// (repository ownership, moderation subjects, invite codes) is keyed
// by DID.
//
// DID is an immutable value type. The zero value is not valid; use
// IsZero to check.
type DID struct {
	did string
}

// ParseDID validates and wraps a raw DID string. The returned error
// wraps ErrInvalidDID.
func ParseDID(raw string) (DID, error) {
	if err := validateDID(raw); err != nil {
		return DID{}, err
	}
	return DID{did: raw}, nil
}

// MustParseDID is like ParseDID but panics on error. Use in tests and
// static initialization where the input is known-valid.
func MustParseDID(raw string) DID {
	d, err := ParseDID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseDID(%q): %v", raw, err))
	}
	return d
}

// ValidateDID reports whether raw is a syntactically valid DID
// without allocating a DID value.
func ValidateDID(raw string) error {
	return validateDID(raw)
}

// String returns the full DID string.
func (d DID) String() string { return d.did }

// IsZero reports whether the DID is the zero value (uninitialized).
func (d DID) IsZero() bool { return d.did == "" }

// Method returns the DID method (e.g., "plc", "web").
func (d DID) Method() string {
	if d.did == "" {
		return ""
	}
	rest := d.did[len(didPrefix):]
	return rest[:strings.IndexByte(rest, ':')]
}

// Identifier returns the method-specific identifier: everything after
// the second colon.
func (d DID) Identifier() string {
	if d.did == "" {
		return ""
	}
	rest := d.did[len(didPrefix):]
	return rest[strings.IndexByte(rest, ':')+1:]
}

// MarshalText implements encoding.TextMarshaler.
func (d DID) MarshalText() ([]byte, error) {
	return []byte(d.did), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The input is
// validated exactly as ParseDID does; an empty input is rejected.
func (d *DID) UnmarshalText(data []byte) error {
	parsed, err := ParseDID(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
