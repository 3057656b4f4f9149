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

// baseModule owns the built-in tree nodes.
const baseModule = "SNMPv2-SMI"

// baseNodes are the well-known registration points from RFC 2578, present
// in every catalog so that hand-written files resolve to full label paths.
var baseNodes = []struct {
	name, oid string
}{
	{"ccitt", "0"},
	{"iso", "1"},
	{"joint-iso-ccitt", "2"},
	{"org", "1.3"},
	{"dod", "1.3.6"},
	{"internet", "1.3.6.1"},
	{"directory", "1.3.6.1.1"},
	{"mgmt", "1.3.6.1.2"},
	{"mib-2", "1.3.6.1.2.1"},
	{"experimental", "1.3.6.1.3"},
	{"private", "1.3.6.1.4"},
	{"enterprises", "1.3.6.1.4.1"},
	{"security", "1.3.6.1.5"},
	{"snmpV2", "1.3.6.1.6"},
	{"snmpDomains", "1.3.6.1.6.1"},
	{"snmpProxys", "1.3.6.1.6.2"},
	{"snmpModules", "1.3.6.1.6.3"},
}

// IsBase reports whether oid is one of the built-in registration points.
func IsBase(oid OID) bool {
	s := oid.String()
	for _, b := range baseNodes {
		if b.oid == s {
			return true
		}
	}
	return false
}
