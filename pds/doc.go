// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pds is the HTTP surface of the personal data server.
//
// [NewServer] assembles the route table from an explicit [State] built
// once at startup:
//
//   - "/" serves the landing page, rendered from embedded markdown.
//   - "/robots.txt" serves the crawler policy.
//   - "/metrics" exposes Prometheus collectors for XRPC traffic.
//   - "/xrpc/{nsid}" dispatches to the com.atproto.admin and
//     com.atproto.identity methods, plus the "_health" probe.
//   - Anything else is a 404 with an empty body.
//
// Method handlers decode and validate their input through lib/xrpc
// extractors and hand the typed values to a [Backend]. [Unimplemented]
// answers every method with 501 not_implemented, so a server can be
// brought up before any business logic exists.
package pds
