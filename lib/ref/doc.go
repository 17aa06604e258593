// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identifier values for
// the AT Protocol: decentralized identifiers ([DID]), DNS-style
// handles ([Handle]), resource locators ([ATURI]), and the
// [ATIdentifier] union that accepts either a DID or a handle.
//
// Every type is constructed through a Parse function that validates the
// input against its grammar in a single forward scan and returns an
// error wrapping one of [ErrInvalidDID], [ErrInvalidHandle], or
// [ErrInvalidATURI]. Once constructed, a value is immutable and its
// accessors return substrings of the validated input without further
// checking.
//
// The wire form of every type is its plain string. JSON, CBOR, and
// URL query decoding go through encoding.TextUnmarshaler, which runs
// the same validation as the Parse function: a string rejected by
// ParseDID is rejected by DID.UnmarshalText, including the empty
// string. Use a pointer field for optional identifiers.
package ref
