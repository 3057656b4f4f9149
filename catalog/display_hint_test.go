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
	"reflect"
	"testing"
)

func TestFormatDisplayHint(t *testing.T) {
	cases := []struct {
		name   string
		hint   string
		data   []byte
		result string
		ok     bool
	}{
		{
			name:   "InetAddressIPv4",
			hint:   "1d.1d.1d.1d",
			data:   []byte{192, 168, 1, 1},
			result: "192.168.1.1",
			ok:     true,
		},
		{
			name:   "InetAddressIPv4z with zone",
			hint:   "1d.1d.1d.1d%4d",
			data:   []byte{192, 168, 1, 1, 0, 0, 0, 3},
			result: "192.168.1.1%3",
			ok:     true,
		},
		{
			name:   "PhysAddress with implicit repetition",
			hint:   "1x:",
			data:   []byte{0x00, 0x1a, 0x2b, 0x3c, 0x4d, 0x5e},
			result: "00:1A:2B:3C:4D:5E",
			ok:     true,
		},
		{
			name:   "DateAndTime",
			hint:   "2d-1d-1d,1d:1d:1d.1d,1a1d:1d",
			data:   []byte{0x07, 0xe3, 1, 28, 12, 0, 1, 0, '-', 4, 0},
			result: "2019-1-28,12:0:1.0,-4:0",
			ok:     true,
		},
		{
			name:   "DisplayString",
			hint:   "255a",
			data:   []byte("Hello, World!"),
			result: "Hello, World!",
			ok:     true,
		},
		{
			name:   "Octal",
			hint:   "1o",
			data:   []byte{8},
			result: "10",
			ok:     true,
		},
		{
			name:   "Repeat indicator with terminator",
			hint:   "*1d./1d",
			data:   []byte{2, 10, 20, 30},
			result: "10.20/30",
			ok:     true,
		},
		{
			name: "Invalid format character",
			hint: "1z",
			data: []byte{1},
		},
		{
			name: "Zero octet length",
			hint: "0a",
			data: []byte{1},
		},
		{
			name: "Empty data",
			hint: "1d",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := formatDisplayHint(c.hint, c.data)
			if ok != c.ok {
				t.Fatalf("formatDisplayHint(%q) ok = %v, want %v", c.hint, ok, c.ok)
			}
			if got != c.result {
				t.Errorf("formatDisplayHint(%q) = %q, want %q", c.hint, got, c.result)
			}
		})
	}
}

func TestEncodeDisplayHint(t *testing.T) {
	cases := []struct {
		name   string
		hint   string
		text   string
		result []byte
		fail   bool
	}{
		{
			name:   "DateAndTime",
			hint:   "2d-1d-1d,1d:1d:1d.1d,1a1d:1d",
			text:   "2019-1-28,12:00:01.0,-4:0",
			result: []byte{0x07, 0xe3, 1, 28, 12, 0, 1, 0, '-', 4, 0},
		},
		{
			name:   "DateAndTime without zone",
			hint:   "2d-1d-1d,1d:1d:1d.1d,1a1d:1d",
			text:   "2019-1-28,12:00:01.0",
			result: []byte{0x07, 0xe3, 1, 28, 12, 0, 1, 0},
		},
		{
			name:   "MacAddress",
			hint:   "1x:",
			text:   "00:1A:2B:3C:4D:5E",
			result: []byte{0x00, 0x1a, 0x2b, 0x3c, 0x4d, 0x5e},
		},
		{
			name:   "InetAddressIPv4",
			hint:   "1d.1d.1d.1d",
			text:   "1.1.1.1",
			result: []byte{1, 1, 1, 1},
		},
		{
			name:   "InetAddressIPv6",
			hint:   "2x:2x:2x:2x:2x:2x:2x:2x",
			text:   "2001:0DB8:0000:0000:0000:0000:0000:0001",
			result: []byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1},
		},
		{
			name:   "Octets without separator",
			hint:   "1x",
			text:   "0a0b",
			result: []byte{0x0a, 0x0b},
		},
		{
			name:   "UTF-8 text split by octets",
			hint:   "4t",
			text:   "héllo",
			result: []byte("héllo"),
		},
		{
			name: "UTF-8 field longer than its octet count",
			hint: "2t-",
			text: "hé-x",
			fail: true,
		},
		{
			name:   "UTF-8 character kept whole",
			hint:   "2t",
			text:   "aéb",
			result: []byte("aéb"),
		},
		{
			name: "UTF-8 character wider than the octet count",
			hint: "1t",
			text: "é",
			fail: true,
		},
		{
			name:   "ASCII text split by octets",
			hint:   "3a",
			text:   "abcdefg",
			result: []byte("abcdefg"),
		},
		{
			name: "Value too large for octet length",
			hint: "1d.1d.1d.1d",
			text: "256.1.1.1",
			fail: true,
		},
		{
			name: "Wrong separator",
			hint: "1d.1d",
			text: "1-1",
			fail: true,
		},
		{
			name: "Not a number",
			hint: "1d",
			text: "abc",
			fail: true,
		},
		{
			name: "Repeat indicator",
			hint: "*1d.",
			text: "1.2",
			fail: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := encodeDisplayHint(c.hint, c.text)
			if c.fail {
				if err == nil {
					t.Fatalf("encodeDisplayHint(%q, %q) = %v, want error", c.hint, c.text, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("encodeDisplayHint(%q, %q): %v", c.hint, c.text, err)
			}
			if !reflect.DeepEqual(got, c.result) {
				t.Errorf("encodeDisplayHint(%q, %q) = %v, want %v", c.hint, c.text, got, c.result)
			}
		})
	}
}

func TestHasNumericFormat(t *testing.T) {
	for hint, want := range map[string]bool{
		"255a":                         false,
		"255t":                         false,
		"":                             false,
		"1x:":                          true,
		"2d-1d-1d,1d:1d:1d.1d,1a1d:1d": true,
	} {
		if got := hasNumericFormat(hint); got != want {
			t.Errorf("hasNumericFormat(%q) = %v, want %v", hint, got, want)
		}
	}
}
