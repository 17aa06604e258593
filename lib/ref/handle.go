// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// Handle is a validated DNS-style account handle (e.g.,
// "alice.bsky.social").
//
// Handles are human-readable and mutable: an account may change its
// handle at any time. Store the DID for anything that must survive a
// rename.
//
// Handle is an immutable value type. The zero value is not valid; use
// IsZero to check.
type Handle struct {
	handle string
}

// ParseHandle validates and wraps a raw handle string. The returned
// error wraps ErrInvalidHandle.
func ParseHandle(raw string) (Handle, error) {
	if err := validateHandle(raw); err != nil {
		return Handle{}, err
	}
	return Handle{handle: raw}, nil
}

// MustParseHandle is like ParseHandle but panics on error. Use in
// tests and static initialization where the input is known-valid.
func MustParseHandle(raw string) Handle {
	h, err := ParseHandle(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseHandle(%q): %v", raw, err))
	}
	return h
}

// ValidateHandle reports whether raw is a syntactically valid handle.
func ValidateHandle(raw string) error {
	return validateHandle(raw)
}

// String returns the handle string.
func (h Handle) String() string { return h.handle }

// IsZero reports whether the Handle is the zero value (uninitialized).
func (h Handle) IsZero() bool { return h.handle == "" }

// MarshalText implements encoding.TextMarshaler.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.handle), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The input is
// validated exactly as ParseHandle does; an empty input is rejected.
func (h *Handle) UnmarshalText(data []byte) error {
	parsed, err := ParseHandle(string(data))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
