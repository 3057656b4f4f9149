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

package catalog

import (
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cisco-cx/snmptrap-gen/registry"
)

// TypedValue is a value validated against an object's syntax. Value holds
// int64 for Integer32, uint64 for the unsigned types, a dotted quad string
// for IpAddress, []byte for OctetString, Opaque and Bits, and OID for
// ObjectIdentifier.
type TypedValue struct {
	Type  string
	Base  BaseType
	Hint  string
	Label string
	Value interface{}
}

func (v TypedValue) String() string {
	switch val := v.Value.(type) {
	case int64:
		if v.Label != "" {
			return fmt.Sprintf("%s(%d)", v.Label, val)
		}
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case string:
		return val
	case OID:
		return val.String()
	case []byte:
		if s, ok := formatDisplayHint(v.Hint, val); ok {
			return s
		}
		if printable(val) {
			return string(val)
		}
		return "0x" + fmt.Sprintf("%X", val)
	}
	return fmt.Sprint(v.Value)
}

func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// CastError describes a bare value that does not satisfy an object's syntax.
type CastError struct {
	OID    OID
	Type   string
	Bare   registry.Value
	Reason string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot cast %s value %s to %s at %s: %s", e.Bare.Kind, e.Bare, e.Type, e.OID, e.Reason)
}

func (e *CastError) Unwrap() error { return ErrCast }

// Cast builds the typed value of the object at oid from a bare value,
// enforcing the object's enumerations, ranges and size constraints.
func (c *Catalog) Cast(oid OID, bare registry.Value) (TypedValue, error) {
	n, err := c.node(oid)
	if err != nil {
		return TypedValue{}, err
	}
	if n.Kind != KindObject {
		return TypedValue{}, fmt.Errorf("%w: %s::%s is a %s without syntax", ErrUnresolved, n.module, n.Name, n.Kind)
	}
	tv := TypedValue{Type: n.SemanticType(), Base: n.Base, Hint: n.Hint}
	fail := func(format string, args ...interface{}) (TypedValue, error) {
		return TypedValue{}, &CastError{OID: n.Oid, Type: tv.Type, Bare: bare, Reason: fmt.Sprintf(format, args...)}
	}

	switch n.Base {
	case BaseInteger32:
		var v int64
		switch bare.Kind {
		case registry.KindInt:
			v = bare.Int
		case registry.KindString:
			if e, ok := n.Enums[bare.Str]; ok {
				v = e
				break
			}
			i, err := strconv.ParseInt(bare.Str, 10, 32)
			if err != nil {
				if len(n.Enums) > 0 {
					return fail("%q is not one of %s", bare.Str, n.enumList())
				}
				return fail("not an integer")
			}
			v = i
		default:
			return fail("octets cannot form an integer")
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return fail("%d out of 32-bit range", v)
		}
		if len(n.Enums) > 0 {
			label, ok := n.enumLabel(v)
			if !ok {
				return fail("%d is not one of %s", v, n.enumList())
			}
			tv.Label = label
		}
		if !contained(n.Ranges, v) {
			return fail("%d outside %s", v, rangesString(n.Ranges))
		}
		tv.Value = v

	case BaseUnsigned32, BaseGauge32, BaseCounter32, BaseCounter64, BaseTimeTicks:
		var v uint64
		switch bare.Kind {
		case registry.KindInt:
			if bare.Int < 0 {
				return fail("negative value for unsigned type")
			}
			v = uint64(bare.Int)
		case registry.KindString:
			u, err := strconv.ParseUint(bare.Str, 10, 64)
			if err != nil {
				return fail("not an unsigned integer")
			}
			v = u
		default:
			return fail("octets cannot form an unsigned integer")
		}
		if n.Base != BaseCounter64 && v > math.MaxUint32 {
			return fail("%d out of 32-bit range", v)
		}
		if len(n.Ranges) > 0 && (v > math.MaxInt64 || !contained(n.Ranges, int64(v))) {
			return fail("%d outside %s", v, rangesString(n.Ranges))
		}
		tv.Value = v

	case BaseIpAddress:
		var ip net.IP
		switch bare.Kind {
		case registry.KindString:
			ip = net.ParseIP(bare.Str).To4()
		case registry.KindBytes:
			if len(bare.Bytes) == net.IPv4len {
				ip = net.IP(bare.Bytes)
			}
		}
		if ip == nil {
			return fail("not an IPv4 address")
		}
		tv.Value = ip.String()

	case BaseOctetString, BaseOpaque:
		var b []byte
		switch bare.Kind {
		case registry.KindBytes:
			b = append([]byte{}, bare.Bytes...)
		case registry.KindString:
			if hasNumericFormat(n.Hint) {
				enc, err := encodeDisplayHint(n.Hint, bare.Str)
				if err != nil {
					return fail("display hint %q: %v", n.Hint, err)
				}
				b = enc
			} else {
				b = []byte(bare.Str)
			}
		default:
			return fail("integer cannot form an octet string")
		}
		if !contained(n.Sizes, int64(len(b))) {
			return fail("length %d outside size %s", len(b), rangesString(n.Sizes))
		}
		tv.Value = b

	case BaseBits:
		switch bare.Kind {
		case registry.KindBytes:
			tv.Value = append([]byte{}, bare.Bytes...)
		case registry.KindString:
			var b []byte
			for _, label := range strings.FieldsFunc(bare.Str, func(r rune) bool { return r == ',' || unicode.IsSpace(r) }) {
				bit, ok := n.Enums[label]
				if !ok || bit < 0 {
					return fail("unknown bit %q, expected one of %s", label, n.enumList())
				}
				for int64(len(b)) <= bit/8 {
					b = append(b, 0)
				}
				b[bit/8] |= 0x80 >> uint(bit%8)
			}
			tv.Value = b
		default:
			return fail("integer cannot form a bit string")
		}

	case BaseObjectIdentifier:
		if bare.Kind != registry.KindString {
			return fail("object identifiers must be written as dotted strings")
		}
		o, err := ParseOID(bare.Str)
		if err != nil {
			return fail("%v", err)
		}
		tv.Value = o

	default:
		return fail("unsupported base type %q", n.Base)
	}
	return tv, nil
}
