// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint helper for bureau-audit.
// It covers the one legitimate raw write to stderr that happens outside
// the structured logger: reporting an error from run() when the logger
// may not be initialized yet, then exiting.
package process
