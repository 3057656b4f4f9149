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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// hextable uses uppercase for the RFC 2579 'x' format.
const hextable = "0123456789ABCDEF"

// formatOp is one octet-format specification of an RFC 2579 DISPLAY-HINT.
type formatOp struct {
	star bool
	take int
	fmt  byte
	sep  byte
	term byte
}

func (op formatOp) numeric() bool {
	return op.fmt == 'd' || op.fmt == 'x' || op.fmt == 'o'
}

// parseDisplayHint splits an OCTET STRING DISPLAY-HINT into its
// octet-format specifications:
//
//   - "1d.1d.1d.1d" -> {1,d,.} {1,d,.} {1,d,.} {1,d}
//   - "1x:" -> {1,x,:}, repeated for all remaining octets
//   - "2d-1d-1d,1d:1d:1d.1d,1a1d:1d" (DateAndTime) -> 10 specs
func parseDisplayHint(hint string) ([]formatOp, error) {
	if hint == "" {
		return nil, errors.New("empty hint")
	}
	var ops []formatOp
	pos := 0
	for pos < len(hint) {
		op := formatOp{}
		if hint[pos] == '*' {
			op.star = true
			pos++
		}
		start := pos
		for pos < len(hint) && isDigit(hint[pos]) {
			pos++
		}
		if start == pos {
			return nil, fmt.Errorf("expected octet length at position %d", start)
		}
		take, err := strconv.Atoi(hint[start:pos])
		if err != nil {
			return nil, err
		}
		if take == 0 {
			return nil, errors.New("zero octet length")
		}
		op.take = take
		if pos >= len(hint) {
			return nil, errors.New("expected format character")
		}
		switch hint[pos] {
		case 'd', 'x', 'o', 'a', 't':
			op.fmt = hint[pos]
			pos++
		default:
			return nil, fmt.Errorf("invalid format character %q", hint[pos])
		}
		if pos < len(hint) && !isDigit(hint[pos]) && hint[pos] != '*' {
			op.sep = hint[pos]
			pos++
			if op.star && pos < len(hint) && !isDigit(hint[pos]) && hint[pos] != '*' {
				op.term = hint[pos]
				pos++
			}
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// hasNumericFormat reports whether text values must be encoded through the
// hint rather than taken verbatim.
func hasNumericFormat(hint string) bool {
	ops, err := parseDisplayHint(hint)
	if err != nil {
		return false
	}
	for _, op := range ops {
		if op.numeric() {
			return true
		}
	}
	return false
}

// formatDisplayHint renders data according to hint. The last specification
// repeats until the data is exhausted and trailing separators are dropped.
// ok is false if the hint cannot be applied.
func formatDisplayHint(hint string, data []byte) (string, bool) {
	ops, err := parseDisplayHint(hint)
	if err != nil || len(data) == 0 {
		return "", false
	}
	var b strings.Builder
	pos := 0
	for i := 0; pos < len(data); i++ {
		op := ops[len(ops)-1]
		if i < len(ops) {
			op = ops[i]
		}
		repeat := 1
		if op.star {
			repeat = int(data[pos])
			pos++
		}
		for r := 0; r < repeat && pos < len(data); r++ {
			end := pos + op.take
			if end > len(data) {
				end = len(data)
			}
			chunk := data[pos:end]
			switch op.fmt {
			case 'd', 'o':
				if len(chunk) > 8 {
					return "", false
				}
				var v uint64
				for _, c := range chunk {
					v = v<<8 | uint64(c)
				}
				base := 10
				if op.fmt == 'o' {
					base = 8
				}
				b.WriteString(strconv.FormatUint(v, base))
			case 'x':
				for _, c := range chunk {
					b.WriteByte(hextable[c>>4])
					b.WriteByte(hextable[c&0x0f])
				}
			case 'a', 't':
				b.Write(chunk)
			}
			pos = end
			if op.sep != 0 && pos < len(data) && (op.term == 0 || r != repeat-1) {
				b.WriteByte(op.sep)
			}
		}
		if op.term != 0 && pos < len(data) {
			b.WriteByte(op.term)
		}
	}
	return b.String(), true
}

// encodeDisplayHint is the inverse of formatDisplayHint: it parses text
// written in the hint's notation back into octets. Repeat indicators are
// not supported.
func encodeDisplayHint(hint, text string) ([]byte, error) {
	ops, err := parseDisplayHint(hint)
	if err != nil {
		return nil, err
	}
	var out []byte
	pos := 0
	for i := 0; pos < len(text); i++ {
		op := ops[len(ops)-1]
		if i < len(ops) {
			op = ops[i]
		}
		if op.star {
			return nil, errors.New("repeat indicator not supported")
		}
		switch op.fmt {
		case 'a', 't':
			// take counts octets; UTF-8 characters are never split.
			end := pos
			for end < len(text) && end-pos < op.take {
				if op.sep != 0 && text[end] == op.sep {
					break
				}
				size := 1
				if op.fmt == 't' {
					_, size = utf8.DecodeRuneInString(text[end:])
					if end+size-pos > op.take {
						break
					}
				}
				end += size
			}
			if end == pos && (op.sep == 0 || text[pos] != op.sep) {
				return nil, fmt.Errorf("character at position %d of %q does not fit in %d octets", pos, text, op.take)
			}
			out = append(out, text[pos:end]...)
			pos = end
		default:
			start := pos
			maxDigits := len(text)
			if op.fmt == 'x' {
				maxDigits = 2 * op.take
			}
			for pos < len(text) && pos-start < maxDigits && validDigit(op.fmt, text[pos]) {
				pos++
			}
			if start == pos {
				return nil, fmt.Errorf("expected %c digits at position %d of %q", op.fmt, start, text)
			}
			v, err := strconv.ParseUint(text[start:pos], digitBase(op.fmt), 64)
			if err != nil {
				return nil, err
			}
			if op.take < 8 && v>>(8*uint(op.take)) != 0 {
				return nil, fmt.Errorf("%s does not fit in %d octets", text[start:pos], op.take)
			}
			buf := make([]byte, op.take)
			for j := op.take - 1; j >= 0 && v > 0; j-- {
				buf[j] = byte(v)
				v >>= 8
			}
			out = append(out, buf...)
		}
		if op.sep != 0 && pos < len(text) {
			if text[pos] != op.sep {
				return nil, fmt.Errorf("expected separator %q at position %d of %q", op.sep, pos, text)
			}
			pos++
		}
	}
	return out, nil
}

func digitBase(f byte) int {
	switch f {
	case 'x':
		return 16
	case 'o':
		return 8
	}
	return 10
}

func validDigit(f byte, c byte) bool {
	switch f {
	case 'x':
		return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	case 'o':
		return c >= '0' && c <= '7'
	}
	return isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
