// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors wrapped by every parse failure. Use errors.Is to
// classify a failure; the wrapping message names the offending input
// and position.
var (
	ErrInvalidDID    = errors.New("invalid DID")
	ErrInvalidHandle = errors.New("invalid handle")
	ErrInvalidATURI  = errors.New("invalid AT-URI")
)

const (
	didPrefix   = "did:"
	atURIScheme = "at://"

	// maxHandleLength is the DNS name limit.
	maxHandleLength = 253

	// maxHandleLabelLength is the DNS label limit. It applies to
	// every label except the TLD.
	maxHandleLabelLength = 63

	// maxATURILength is an exclusive bound. Offsets into an ATURI are
	// stored as uint16, and every accepted URI is strictly shorter
	// than this.
	maxATURILength = 8192
)

// Character classes, indexed by byte. All accepted characters are
// ASCII, so every position these tables accept is also a UTF-8
// boundary.
var (
	// didMethodChars: a-z, 0-9.
	didMethodChars [256]bool

	// didIdentifierChars: A-Z, a-z, 0-9, and the symbols . _ : -.
	// Percent-escapes are handled separately by the scanner.
	didIdentifierChars [256]bool

	// handleInteriorChars: a-z, 0-9, -.
	handleInteriorChars [256]bool

	// uriTextChars: the unreserved set A-Z, a-z, 0-9, . _ ~ - used
	// for AT-URI path components, query, and fragment.
	uriTextChars [256]bool

	hexDigits [256]bool
)

func init() {
	for c := byte('a'); c <= 'z'; c++ {
		didMethodChars[c] = true
		didIdentifierChars[c] = true
		handleInteriorChars[c] = true
		uriTextChars[c] = true
	}
	for c := byte('A'); c <= 'Z'; c++ {
		didIdentifierChars[c] = true
		uriTextChars[c] = true
	}
	for c := byte('0'); c <= '9'; c++ {
		didMethodChars[c] = true
		didIdentifierChars[c] = true
		handleInteriorChars[c] = true
		uriTextChars[c] = true
		hexDigits[c] = true
	}
	for c := byte('a'); c <= 'f'; c++ {
		hexDigits[c] = true
		hexDigits[c-'a'+'A'] = true
	}
	for _, c := range []byte("._:-") {
		didIdentifierChars[c] = true
	}
	handleInteriorChars['-'] = true
	for _, c := range []byte("._~-") {
		uriTextChars[c] = true
	}
}

func isLowerLetter(c byte) bool { return c >= 'a' && c <= 'z' }

// validateDID checks did:<method>:<identifier>. The method is one or
// more of [a-z0-9]. The identifier is one or more of [A-Za-z0-9._:-]
// or %XX escapes, and must not end with ':'. Consecutive colons
// inside the identifier are legal.
func validateDID(raw string) error {
	rest, ok := strings.CutPrefix(raw, didPrefix)
	if !ok {
		return fmt.Errorf("%w %q: must start with %q", ErrInvalidDID, raw, didPrefix)
	}

	methodEnd := strings.IndexByte(rest, ':')
	if methodEnd < 0 {
		return fmt.Errorf("%w %q: missing ':' after method", ErrInvalidDID, raw)
	}
	if methodEnd == 0 {
		return fmt.Errorf("%w %q: empty method", ErrInvalidDID, raw)
	}
	for i := 0; i < methodEnd; i++ {
		if !didMethodChars[rest[i]] {
			return fmt.Errorf("%w %q: method has invalid character %q at position %d (allowed: a-z, 0-9)",
				ErrInvalidDID, raw, rest[i], len(didPrefix)+i)
		}
	}

	offset := len(didPrefix) + methodEnd + 1
	identifier := rest[methodEnd+1:]
	if identifier == "" {
		return fmt.Errorf("%w %q: empty method-specific identifier", ErrInvalidDID, raw)
	}
	for i := 0; i < len(identifier); {
		c := identifier[i]
		if c == '%' {
			if i+2 >= len(identifier) {
				return fmt.Errorf("%w %q: incomplete percent-escape at position %d", ErrInvalidDID, raw, offset+i)
			}
			if !hexDigits[identifier[i+1]] || !hexDigits[identifier[i+2]] {
				return fmt.Errorf("%w %q: invalid percent-escape %q at position %d", ErrInvalidDID, raw, identifier[i:i+3], offset+i)
			}
			i += 3
			continue
		}
		if !didIdentifierChars[c] {
			return fmt.Errorf("%w %q: invalid character %q at position %d (allowed: A-Z, a-z, 0-9, ., _, :, -, %%XX)",
				ErrInvalidDID, raw, c, offset+i)
		}
		i++
	}
	if identifier[len(identifier)-1] == ':' {
		return fmt.Errorf("%w %q: must not end with ':'", ErrInvalidDID, raw)
	}
	return nil
}

// validateHandle checks a dot-separated DNS-style handle. The
// rightmost label (TLD) must start with a lowercase letter followed by
// [a-z0-9-]. Every other label is 1-63 bytes; a single-byte label is a
// lowercase letter, a longer label starts and ends with a lowercase
// letter with [a-z0-9-] in between. Label boundaries are restricted to
// letters, not digits: "1abc.com" and "abc1.com" are both rejected.
func validateHandle(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: empty", ErrInvalidHandle)
	}
	if len(raw) > maxHandleLength {
		return fmt.Errorf("%w %q: %d bytes, maximum is %d", ErrInvalidHandle, raw, len(raw), maxHandleLength)
	}

	lastDot := strings.LastIndexByte(raw, '.')
	if err := validateTLD(raw, raw[lastDot+1:]); err != nil {
		return err
	}
	if lastDot < 0 {
		return nil
	}

	for label := range strings.SplitSeq(raw[:lastDot], ".") {
		if err := validateLabel(raw, label); err != nil {
			return err
		}
	}
	return nil
}

func validateTLD(raw, tld string) error {
	if tld == "" {
		return fmt.Errorf("%w %q: empty top-level label", ErrInvalidHandle, raw)
	}
	if !isLowerLetter(tld[0]) {
		return fmt.Errorf("%w %q: top-level label %q must start with a lowercase letter", ErrInvalidHandle, raw, tld)
	}
	for i := 1; i < len(tld); i++ {
		if !handleInteriorChars[tld[i]] {
			return fmt.Errorf("%w %q: top-level label %q has invalid character %q (allowed: a-z, 0-9, -)",
				ErrInvalidHandle, raw, tld, tld[i])
		}
	}
	return nil
}

func validateLabel(raw, label string) error {
	switch {
	case label == "":
		return fmt.Errorf("%w %q: empty label", ErrInvalidHandle, raw)
	case len(label) > maxHandleLabelLength:
		return fmt.Errorf("%w %q: label %q is %d bytes, maximum is %d",
			ErrInvalidHandle, raw, label, len(label), maxHandleLabelLength)
	case len(label) == 1:
		if !isLowerLetter(label[0]) {
			return fmt.Errorf("%w %q: single-character label %q must be a lowercase letter", ErrInvalidHandle, raw, label)
		}
		return nil
	}

	if !isLowerLetter(label[0]) || !isLowerLetter(label[len(label)-1]) {
		return fmt.Errorf("%w %q: label %q must start and end with a lowercase letter", ErrInvalidHandle, raw, label)
	}
	for i := 1; i < len(label)-1; i++ {
		if !handleInteriorChars[label[i]] {
			return fmt.Errorf("%w %q: label %q has invalid character %q (allowed: a-z, 0-9, -)",
				ErrInvalidHandle, raw, label, label[i])
		}
	}
	return nil
}

// atURIOffsets holds byte offsets into a validated AT-URI. The
// invariant authorityEnd <= pathEnd <= queryStart <= queryEnd <=
// fragmentStart <= len holds for every value produced by
// parseATURIOffsets.
type atURIOffsets struct {
	authorityEnd  uint16
	pathEnd       uint16
	queryStart    uint16
	queryEnd      uint16
	fragmentStart uint16
}

// parseATURIOffsets validates at://authority[/segment]*[?query][#fragment]
// in one forward pass and records where each part ends.
func parseATURIOffsets(raw string) (atURIOffsets, error) {
	if len(raw) >= maxATURILength {
		return atURIOffsets{}, fmt.Errorf("%w: %d bytes, must be under %d", ErrInvalidATURI, len(raw), maxATURILength)
	}
	if !strings.HasPrefix(raw, atURIScheme) {
		return atURIOffsets{}, fmt.Errorf("%w %q: must start with %q", ErrInvalidATURI, raw, atURIScheme)
	}

	authorityEnd := len(raw)
	if i := strings.IndexAny(raw[len(atURIScheme):], "/?#"); i >= 0 {
		authorityEnd = len(atURIScheme) + i
	}
	authority := raw[len(atURIScheme):authorityEnd]
	if authority == "" {
		return atURIOffsets{}, fmt.Errorf("%w %q: empty authority", ErrInvalidATURI, raw)
	}
	if err := validateAuthority(authority); err != nil {
		return atURIOffsets{}, fmt.Errorf("%w %q: authority: %w", ErrInvalidATURI, raw, err)
	}

	end := len(raw)
	offsets := atURIOffsets{authorityEnd: uint16(authorityEnd)}
	position := authorityEnd
	for position < end {
		switch raw[position] {
		case '/':
			position++
			for position < end && raw[position] != '/' && raw[position] != '?' && raw[position] != '#' {
				if !uriTextChars[raw[position]] {
					return atURIOffsets{}, invalidURIChar(raw, "path", position)
				}
				position++
			}

		case '?':
			offsets.pathEnd = uint16(position)
			queryEnd := end
			if i := strings.IndexByte(raw[position+1:], '#'); i >= 0 {
				queryEnd = position + 1 + i
			}
			if err := checkURIText(raw, "query", position+1, queryEnd); err != nil {
				return atURIOffsets{}, err
			}
			offsets.queryStart = uint16(position + 1)
			offsets.queryEnd = uint16(queryEnd)
			offsets.fragmentStart = uint16(queryEnd)
			if queryEnd < end {
				if err := checkURIText(raw, "fragment", queryEnd+1, end); err != nil {
					return atURIOffsets{}, err
				}
				offsets.fragmentStart = uint16(queryEnd + 1)
			}
			return offsets, nil

		case '#':
			if err := checkURIText(raw, "fragment", position+1, end); err != nil {
				return atURIOffsets{}, err
			}
			offsets.pathEnd = uint16(position)
			offsets.queryStart = uint16(position)
			offsets.queryEnd = uint16(position)
			offsets.fragmentStart = uint16(position + 1)
			return offsets, nil
		}
	}

	offsets.pathEnd = uint16(end)
	offsets.queryStart = uint16(end)
	offsets.queryEnd = uint16(end)
	offsets.fragmentStart = uint16(end)
	return offsets, nil
}

// validateAuthority accepts a DID when the text carries the did:
// prefix and a handle otherwise. There is no fallback between the two.
func validateAuthority(authority string) error {
	if strings.HasPrefix(authority, didPrefix) {
		return validateDID(authority)
	}
	return validateHandle(authority)
}

func checkURIText(raw, part string, start, end int) error {
	for i := start; i < end; i++ {
		if !uriTextChars[raw[i]] {
			return invalidURIChar(raw, part, i)
		}
	}
	return nil
}

func invalidURIChar(raw, part string, position int) error {
	return fmt.Errorf("%w %q: %s has invalid character %q at position %d (allowed: A-Z, a-z, 0-9, ., _, ~, -)",
		ErrInvalidATURI, raw, part, raw[position], position)
}
