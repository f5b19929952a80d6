// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the bureau-audit command tree.
//
// Every command receives an [Environment] carrying the standard streams,
// the prober and the home resolver, so tests run commands against
// buffers and fixture files instead of the real process.
//
// Settings come from the configuration file (--config or
// $BUREAU_AUDIT_CONFIG) and are overridden by non-empty flags.
package commands
