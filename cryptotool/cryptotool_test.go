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

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	data := []struct {
		input      string
		passphrase string
	}{
		{"input", "passphrase"},
		{"Long input with more than 16 characters", "passphrase"},
		{"input", "Long password with more then 16 characters"},
	}
	for _, d := range data {
		var enc bytes.Buffer
		if err := run(&enc, []string{"--passphrase", d.passphrase, "encrypt", d.input}); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(enc.String(), "aesgcm:") {
			t.Errorf("encrypted value %q lacks the aesgcm: prefix", enc.String())
		}
		var dec bytes.Buffer
		if err := run(&dec, []string{"--passphrase", d.passphrase, "decrypt", enc.String()}); err != nil {
			t.Fatal(err)
		}
		if got := strings.TrimSpace(dec.String()); got != d.input {
			t.Errorf("Decrypt passphrase %v\n  Expect: %v\n  Actual: %v", d.passphrase, d.input, got)
		}
	}
}

func TestDecryptError(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"--passphrase", "password", "decrypt", "aesgcm:AAAAAAAAAAAAAAAAAAAAAAAAAAA="})
	if err == nil {
		t.Errorf("decrypt did not return an error for a bad ciphertext")
	}
}

func TestMissingPassphrase(t *testing.T) {
	t.Setenv("SNMPTRAP_GEN_PASSPHRASE", "")
	var out bytes.Buffer
	if err := run(&out, []string{"encrypt", "data"}); err == nil {
		t.Errorf("expected an error without a passphrase")
	}
}
