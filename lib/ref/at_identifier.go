// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// ATIdentifier is either a DID or a Handle. Endpoints that accept an
// account reference in whichever form the caller has use this type.
//
// The variant is chosen once, at parse time, by the "did:" prefix: a
// string with the prefix must be a valid DID, any other string must be
// a valid Handle. A malformed DID is never reinterpreted as a handle.
type ATIdentifier struct {
	did    DID
	handle Handle
}

// ParseATIdentifier validates raw as a DID (when it starts with
// "did:") or as a Handle (otherwise). The returned error wraps
// ErrInvalidDID or ErrInvalidHandle respectively.
func ParseATIdentifier(raw string) (ATIdentifier, error) {
	if strings.HasPrefix(raw, didPrefix) {
		did, err := ParseDID(raw)
		if err != nil {
			return ATIdentifier{}, err
		}
		return ATIdentifier{did: did}, nil
	}
	handle, err := ParseHandle(raw)
	if err != nil {
		return ATIdentifier{}, err
	}
	return ATIdentifier{handle: handle}, nil
}

// MustParseATIdentifier is like ParseATIdentifier but panics on error.
func MustParseATIdentifier(raw string) ATIdentifier {
	id, err := ParseATIdentifier(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseATIdentifier(%q): %v", raw, err))
	}
	return id
}

// IdentifierFromDID wraps an already-validated DID.
func IdentifierFromDID(did DID) ATIdentifier { return ATIdentifier{did: did} }

// IdentifierFromHandle wraps an already-validated Handle.
func IdentifierFromHandle(handle Handle) ATIdentifier { return ATIdentifier{handle: handle} }

// IsDID reports whether the identifier holds a DID.
func (a ATIdentifier) IsDID() bool { return !a.did.IsZero() }

// IsHandle reports whether the identifier holds a Handle.
func (a ATIdentifier) IsHandle() bool { return !a.handle.IsZero() }

// DID returns the DID variant and true, or the zero DID and false.
func (a ATIdentifier) DID() (DID, bool) { return a.did, a.IsDID() }

// Handle returns the Handle variant and true, or the zero Handle and
// false.
func (a ATIdentifier) Handle() (Handle, bool) { return a.handle, a.IsHandle() }

// String returns whichever variant is held, in its string form.
func (a ATIdentifier) String() string {
	if a.IsDID() {
		return a.did.String()
	}
	return a.handle.String()
}

// IsZero reports whether the ATIdentifier is the zero value.
func (a ATIdentifier) IsZero() bool { return a.did.IsZero() && a.handle.IsZero() }

// MarshalText implements encoding.TextMarshaler.
func (a ATIdentifier) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with the same
// discrimination rule as ParseATIdentifier.
func (a *ATIdentifier) UnmarshalText(data []byte) error {
	parsed, err := ParseATIdentifier(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
