// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration for audit
// reports.
//
// Reports are written as text for people, JSON for scripts and CBOR for
// archival and signing pipelines. The encoder uses Core Deterministic
// Encoding (RFC 8949 §4.2), so the same run always produces identical
// bytes and a report can be hashed or compared across machines.
//
//	data, err := codec.Marshal(report)
//	err = codec.NewEncoder(os.Stdout).Encode(report)
//
// Report types carry `json` struct tags only. fxamacker/cbor v2 reads
// `json` tags when `cbor` tags are absent, so one tag controls field
// naming for both formats.
package codec
