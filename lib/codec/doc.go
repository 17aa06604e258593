// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the server's standard CBOR encoding
// configuration.
//
// XRPC bodies are JSON by default. Clients that send
// "Content-Type: application/cbor" get CBOR decoding of the request
// body, and handlers may return CBOR responses. This package holds the
// shared encoder and decoder modes so both directions agree.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Identifier types from lib/ref (DID, Handle, ATURI, ATIdentifier)
// encode as CBOR text strings through encoding.TextMarshaler and decode
// through encoding.TextUnmarshaler, so CBOR input is validated exactly
// as JSON input is.
//
// Input types carry `json` struct tags only. fxamacker/cbor reads
// `json` tags when `cbor` tags are absent, so one tag set names the
// fields in both formats.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
package codec
