// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the rpds
// server.
//
// Configuration is loaded from a single file specified by either the
// RPDS_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search. RPDS_CONFIG may itself come from a .env file read by
// [LoadDotenv] before [Load] runs.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production additionally requires a
// password secret.
//
// Variable expansion is performed on listen, database.path, and
// password.secret after loading: ${HOME} and ${VAR:-default} patterns
// are expanded. This is how secrets stay out of the file itself.
//
// This package depends on no other rpds packages.
package config
