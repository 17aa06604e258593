// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package xrpc turns ordinary typed Go functions into HTTP handlers for
// XRPC, the RPC-over-HTTP convention of the AT Protocol.
//
// A handler is a function whose parameters are extractors and whose
// result is a [Responder]:
//
//	func getAccountInfo(ctx context.Context, _ xrpc.MethodGet, query xrpc.Query[AccountQuery]) (xrpc.JSON[AccountView], error)
//
// Extractors come in two kinds. A [PartsExtractor] reads request
// metadata (method, URL, headers, peer address) and never touches the
// body. A [BodyExtractor] consumes the body exactly once. The Handle
// functions ([Handle0] through [Handle6]) accept functions whose
// parameters are all parts extractors; the HandleBody functions
// ([HandleBody1] through [HandleBody6]) accept functions whose last
// parameter is a body extractor. Mismatches are compile errors, not
// dispatch-time failures.
//
// Per request, the composed handler:
//
//  1. runs every parts extractor concurrently and returns the first
//     failure without waiting for the rest,
//  2. runs the body extractor, if any,
//  3. calls the function and writes its result, or its error.
//
// Failures are [Error] values: a closed set of protocol errors, each
// with an HTTP status and rendered as {"error": code, "message": text}.
// Any other error returned by an extractor or handler is reported as
// [ErrConnection] (HTTP 500) and its text is logged, never sent.
//
// [Router] dispatches on the method's NSID, the first path segment
// after the /xrpc prefix. [Recover] contains panics to the request
// that raised them.
package xrpc
