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

// Package sender delivers synthesized traps over SNMP.
package sender

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"

	"github.com/cisco-cx/snmptrap-gen/catalog"
	"github.com/cisco-cx/snmptrap-gen/synthesizer"
)

// SnmpTrapOID is snmpTrapOID.0, the varbind carrying the trap identity.
const SnmpTrapOID = ".1.3.6.1.6.3.1.1.4.1.0"

// ErrTransport is wrapped by every delivery failure.
var ErrTransport = errors.New("transport failure")

type Sender interface {
	Send(ctx context.Context, d *synthesizer.Descriptor) (*Result, error)
	Connect() error
	Close() error
	SetOptions(...func(*gosnmp.GoSNMP))
}

// Result holds the bindings acknowledged for a trap: the response variables
// of an inform, or the variables sent for a plain trap.
type Result struct {
	Bindings []gosnmp.SnmpPDU
}

// ProtocolError is an inform response carrying an error status.
type ProtocolError struct {
	Status gosnmp.SNMPError
	Index  uint8
	Name   string
}

func (e *ProtocolError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s at index %d (%s)", e.Status, e.Index, e.Name)
	}
	return fmt.Sprintf("%s at index %d", e.Status, e.Index)
}

func (e *ProtocolError) Unwrap() error { return ErrTransport }

// TransportError is a failure to connect to or write to the target.
type TransportError struct {
	Target string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("error sending to %s: %s", e.Target, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// PDUs returns the variable bindings of d as sent on the wire, starting with
// snmpTrapOID.0. sysUpTime.0 is added by gosnmp.
func PDUs(d *synthesizer.Descriptor) ([]gosnmp.SnmpPDU, error) {
	pdus := make([]gosnmp.SnmpPDU, 0, len(d.Bindings)+1)
	pdus = append(pdus, gosnmp.SnmpPDU{
		Name:  SnmpTrapOID,
		Type:  gosnmp.ObjectIdentifier,
		Value: "." + d.OID.String(),
	})
	for _, b := range d.Bindings {
		pdu, err := toPDU(b)
		if err != nil {
			return nil, err
		}
		pdus = append(pdus, pdu)
	}
	return pdus, nil
}

func toPDU(b synthesizer.Binding) (gosnmp.SnmpPDU, error) {
	pdu := gosnmp.SnmpPDU{Name: "." + b.OID.String()}
	v := b.Value
	switch v.Base {
	case catalog.BaseInteger32:
		i, ok := v.Value.(int64)
		if !ok {
			return pdu, typeMismatch(b)
		}
		pdu.Type, pdu.Value = gosnmp.Integer, int(i)
	case catalog.BaseUnsigned32, catalog.BaseGauge32, catalog.BaseCounter32, catalog.BaseTimeTicks:
		u, ok := v.Value.(uint64)
		if !ok {
			return pdu, typeMismatch(b)
		}
		pdu.Value = uint32(u)
		switch v.Base {
		case catalog.BaseCounter32:
			pdu.Type = gosnmp.Counter32
		case catalog.BaseTimeTicks:
			pdu.Type = gosnmp.TimeTicks
		default:
			// Unsigned32 shares the Gauge32 application tag.
			pdu.Type = gosnmp.Gauge32
		}
	case catalog.BaseCounter64:
		u, ok := v.Value.(uint64)
		if !ok {
			return pdu, typeMismatch(b)
		}
		pdu.Type, pdu.Value = gosnmp.Counter64, u
	case catalog.BaseIpAddress:
		s, ok := v.Value.(string)
		if !ok {
			return pdu, typeMismatch(b)
		}
		pdu.Type, pdu.Value = gosnmp.IPAddress, s
	case catalog.BaseOctetString, catalog.BaseBits, catalog.BaseOpaque:
		// BITS is encoded as an OCTET STRING on the wire.
		octets, ok := v.Value.([]byte)
		if !ok {
			return pdu, typeMismatch(b)
		}
		pdu.Type, pdu.Value = gosnmp.OctetString, octets
	case catalog.BaseObjectIdentifier:
		o, ok := v.Value.(catalog.OID)
		if !ok {
			return pdu, typeMismatch(b)
		}
		pdu.Type, pdu.Value = gosnmp.ObjectIdentifier, "."+o.String()
	default:
		return pdu, fmt.Errorf("binding %s: no SNMP type for %s", b.Name, v.Base)
	}
	return pdu, nil
}

func typeMismatch(b synthesizer.Binding) error {
	return fmt.Errorf("binding %s: %T is not a valid %s value", b.Name, b.Value.Value, b.Value.Base)
}

// FormatPDU renders a binding as "oid = value".
func FormatPDU(pdu gosnmp.SnmpPDU) string {
	name := strings.TrimPrefix(pdu.Name, ".")
	var value string
	switch v := pdu.Value.(type) {
	case []byte:
		if printable(v) {
			value = string(v)
		} else {
			value = fmt.Sprintf("0x%X", v)
		}
	case nil:
		value = pdu.Type.String()
	default:
		value = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s = %s", name, value)
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
