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

package registry

// Defaults is the built-in table. Keys are semantic type names as reported by
// the catalog, so two textual conventions sharing an encoding can carry
// different values.
var Defaults = map[string]Value{
	// SMI base types.
	"Counter32":        Int(10),
	"Gauge32":          Int(20),
	"Integer32":        Int(30),
	"Unsigned32":       Int(40),
	"Counter64":        Int(50),
	"TimeTicks":        Int(6000),
	"IpAddress":        String("1.1.1.1"),
	"OctetString":      String("abcdef"),
	"ObjectIdentifier": String("1.3.6.1.4.1"),

	// SNMPv2-TC, SNMP-FRAMEWORK-MIB, IF-MIB.
	"DateAndTime":     String("2019-1-28,12:00:01.0,-4:0"),
	"DisplayString":   String("dummy_display_string"),
	"SnmpAdminString": String("dummy_admin_string"),
	"TruthValue":      String("true"),
	"PhysAddress":     String("00:1A:2B:3C:4D:5E"),
	"MacAddress":      String("00:1A:2B:3C:4D:5E"),
	"TimeStamp":       Int(0),
	"InterfaceIndex":  Int(1),

	// INET-ADDRESS-MIB, IPV6-TC.
	"InetAddress":     Bytes([]byte{1, 1, 1, 1}),
	"InetAddressType": String("ipv4"),
	"InetAddressIPv4": String("1.1.1.1"),
	"InetAddressIPv6": String("2001:0DB8:0000:0000:0000:0000:0000:0001"),
	"InetPortNumber":  Int(162),
	"Ipv6Address":     Bytes([]byte("aaaaaaaaaaaaaaaa")),

	// STARENT-MIB.
	"StarENBID":                Int(1),
	"StarentCardType":          Int(2),
	"StarLongDurTimeoutAction": Int(3),
	"StarOSPFNeighborState":    Int(4),
	"StarShortName":            String("dummy_shortname"),
}
