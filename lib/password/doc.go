// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package password hashes account passwords with Argon2id.
//
// A [Hasher] is built once at startup from the configured cost
// parameters; [NewHasher] rejects parameters Argon2 cannot run with,
// so misconfiguration fails the process instead of a later request.
//
// Hashes are stored as a JSON record naming the family, algorithm,
// version, costs, and the unpadded base64 salt and digest. Verification
// reads the costs back from the record, so raising the configured
// costs does not invalidate existing hashes.
package password
