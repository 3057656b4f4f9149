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

package sender

import (
	"context"
	"fmt"

	"github.com/gosnmp/gosnmp"

	"github.com/cisco-cx/snmptrap-gen/synthesizer"
)

func NewMockSender() *mockSender {
	return &mockSender{
		Failures: map[string]error{},
		sent:     make([]*synthesizer.Descriptor, 0),
	}
}

// mockSender records descriptors instead of sending them. Failures maps a
// trap OID to the error its Send returns.
type mockSender struct {
	Failures     map[string]error
	ConnectError error
	CloseError   error

	sent []*synthesizer.Descriptor
}

func (m *mockSender) Sent() []*synthesizer.Descriptor {
	return m.sent
}

func (m *mockSender) Send(_ context.Context, d *synthesizer.Descriptor) (*Result, error) {
	if err, ok := m.Failures[d.OID.String()]; ok {
		return nil, &TransportError{Target: "mock", Err: err}
	}
	pdus, err := PDUs(d)
	if err != nil {
		return nil, fmt.Errorf("mock: %w", err)
	}
	m.sent = append(m.sent, d)
	return &Result{Bindings: pdus}, nil
}

func (m *mockSender) Connect() error {
	return m.ConnectError
}

func (m *mockSender) Close() error {
	return m.CloseError
}

func (m *mockSender) SetOptions(...func(*gosnmp.GoSNMP)) {
}
