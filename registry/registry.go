// Copyright 2025 The snmptrap-gen Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package registry holds the table of bare substitute values used when
// fabricating notification payloads, keyed by semantic type name.
package registry

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
)

// Kind tags which field of a Value is set.
type Kind int

const (
	KindInt Kind = iota + 1
	KindString
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Value is a bare, untyped substitute. It only becomes a wire value once it
// has been cast against a specific MIB node.
type Value struct {
	Kind  Kind
	Int   int64
	Str   string
	Bytes []byte
}

func Int(i int64) Value     { return Value{Kind: KindInt, Int: i} }
func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Bytes(b []byte) Value  { return Value{Kind: KindBytes, Bytes: b} }

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindString:
		return strconv.Quote(v.Str)
	case KindBytes:
		return "0x" + hex.EncodeToString(v.Bytes)
	default:
		return "<invalid>"
	}
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
//
// Integers and strings map directly, raw octets are written as {hex: "0a0b"}.
func (v *Value) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch r := raw.(type) {
	case int:
		*v = Int(int64(r))
	case int64:
		*v = Int(r)
	case uint64:
		return fmt.Errorf("value %d does not fit a signed 64-bit integer", r)
	case string:
		*v = String(r)
	case map[interface{}]interface{}:
		h, ok := r["hex"].(string)
		if !ok || len(r) != 1 {
			return fmt.Errorf("octet values must be written as {hex: \"...\"}")
		}
		b, err := hex.DecodeString(h)
		if err != nil {
			return fmt.Errorf("invalid hex octets %q: %w", h, err)
		}
		*v = Bytes(b)
	default:
		return fmt.Errorf("unsupported bare value %v (%T)", raw, raw)
	}
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.Kind {
	case KindInt:
		return v.Int, nil
	case KindString:
		return v.Str, nil
	case KindBytes:
		return map[string]string{"hex": hex.EncodeToString(v.Bytes)}, nil
	}
	return nil, fmt.Errorf("cannot marshal bare value of kind %s", v.Kind)
}

// Registry maps semantic type identifiers to bare values.
type Registry struct {
	values map[string]Value
}

// New returns a registry holding Defaults with overrides layered on top.
func New(overrides map[string]Value) *Registry {
	r := &Registry{values: make(map[string]Value, len(Defaults)+len(overrides))}
	for k, v := range Defaults {
		r.values[k] = v
	}
	for k, v := range overrides {
		r.values[k] = v
	}
	return r
}

// Lookup returns the bare value registered for typeID.
func (r *Registry) Lookup(typeID string) (Value, bool) {
	v, ok := r.values[typeID]
	return v, ok
}

// Types returns the registered identifiers, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.values))
	for k := range r.values {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}
