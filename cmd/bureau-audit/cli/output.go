// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/bureau-foundation/audit/lib/codec"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// OutputParams is an embeddable struct that adds --format and --color to
// a command's parameter struct. Empty values mean "take it from the
// config file".
type OutputParams struct {
	Format string `json:"-" flag:"format" desc:"output format: text, json or cbor (default from config, text)"`
	Color  string `json:"-" flag:"color" desc:"color severity tags: always, ansi, auto or never (default from config, auto)"`
}

// Emit writes value to w in format. It returns (false, nil) for the text
// format so the caller proceeds with its own formatting.
//
// Nil slices are normalized to empty slices before serialization, so
// JSON output never contains null where a list is expected.
func Emit(w io.Writer, format string, value any) (bool, error) {
	switch format {
	case FormatText, "":
		return false, nil
	case FormatJSON:
		return true, WriteJSON(w, normalizeNilSlice(value))
	case FormatCBOR:
		return true, WriteCBOR(w, normalizeNilSlice(value))
	default:
		return true, fmt.Errorf("unknown output format %q", format)
	}
}

// WriteJSON marshals value as indented JSON and writes it to w.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// WriteCBOR writes value to w with deterministic CBOR encoding.
func WriteCBOR(w io.Writer, value any) error {
	return codec.NewEncoder(w).Encode(value)
}

// normalizeNilSlice returns an empty slice of the same type if value
// is a nil slice, so that JSON serialization produces [] instead of
// null. Returns value unchanged for all other types.
func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
