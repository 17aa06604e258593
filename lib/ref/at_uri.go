// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// ATURI is a validated AT Protocol resource locator:
//
//	at://<authority>[/<segment>]*[?<query>][#<fragment>]
//
// where the authority is a DID or a Handle (e.g.,
// "at://did:plc:abc/app.bsky.feed.post/3k2a").
//
// The part boundaries are computed once by ParseATURI and stored as
// byte offsets; accessors slice the stored string without rescanning.
// Inputs of 8192 bytes or more are rejected so every offset fits in a
// uint16.
//
// ATURI is an immutable value type. The zero value is not valid; use
// IsZero to check.
type ATURI struct {
	uri     string
	offsets atURIOffsets
}

// ParseATURI validates and wraps a raw AT-URI string. The returned
// error wraps ErrInvalidATURI, and additionally ErrInvalidDID or
// ErrInvalidHandle when the authority is at fault.
func ParseATURI(raw string) (ATURI, error) {
	offsets, err := parseATURIOffsets(raw)
	if err != nil {
		return ATURI{}, err
	}
	return ATURI{uri: raw, offsets: offsets}, nil
}

// MustParseATURI is like ParseATURI but panics on error. Use in tests
// and static initialization where the input is known-valid.
func MustParseATURI(raw string) ATURI {
	u, err := ParseATURI(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseATURI(%q): %v", raw, err))
	}
	return u
}

// ValidateATURI reports whether raw is a syntactically valid AT-URI.
func ValidateATURI(raw string) error {
	_, err := parseATURIOffsets(raw)
	return err
}

// String returns the full URI.
func (u ATURI) String() string { return u.uri }

// IsZero reports whether the ATURI is the zero value (uninitialized).
func (u ATURI) IsZero() bool { return u.uri == "" }

// AuthorityString returns the authority text between "at://" and the
// first '/', '?', or '#'.
func (u ATURI) AuthorityString() string {
	if u.uri == "" {
		return ""
	}
	return u.uri[len(atURIScheme):u.offsets.authorityEnd]
}

// Authority returns the authority as an ATIdentifier. The authority was
// validated during parsing, so only the variant needs deciding.
func (u ATURI) Authority() ATIdentifier {
	authority := u.AuthorityString()
	if authority == "" {
		return ATIdentifier{}
	}
	if strings.HasPrefix(authority, didPrefix) {
		return ATIdentifier{did: DID{did: authority}}
	}
	return ATIdentifier{handle: Handle{handle: authority}}
}

// Path returns the path including its leading '/', or "" when the URI
// has no path.
func (u ATURI) Path() string {
	return u.uri[u.offsets.authorityEnd:u.offsets.pathEnd]
}

// Query returns the query text without the leading '?'.
func (u ATURI) Query() string {
	return u.uri[u.offsets.queryStart:u.offsets.queryEnd]
}

// Fragment returns the fragment text without the leading '#'.
func (u ATURI) Fragment() string {
	return u.uri[u.offsets.fragmentStart:]
}

// MarshalText implements encoding.TextMarshaler.
func (u ATURI) MarshalText() ([]byte, error) {
	return []byte(u.uri), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The input is
// validated exactly as ParseATURI does; an empty input is rejected.
func (u *ATURI) UnmarshalText(data []byte) error {
	parsed, err := ParseATURI(string(data))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
