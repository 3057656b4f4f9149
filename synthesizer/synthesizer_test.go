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

package synthesizer

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/common/promslog"
	"github.com/stretchr/testify/require"

	"github.com/cisco-cx/snmptrap-gen/catalog"
	"github.com/cisco-cx/snmptrap-gen/registry"
)

func newTestSynthesizer(t *testing.T, file string) (*Synthesizer, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Load(promslog.NewNopLogger(), file)
	require.NoError(t, err)
	return New(cat, registry.New(nil), NewDiagnostics(), promslog.NewNopLogger()), cat
}

func TestTempOverheat(t *testing.T) {
	s, _ := newTestSynthesizer(t, "testdata/test-mib.yml")
	got, err := s.LookupByName("TEST-MIB", "tempOverheat")
	require.NoError(t, err)

	want := &Descriptor{
		Module:   "TEST-MIB",
		Name:     "tempOverheat",
		Symbolic: "iso.org.dod.internet.private.enterprises.testMIB.tempOverheat",
		OID:      catalog.OID{1, 3, 6, 1, 4, 1, 9999, 1},
		Bindings: []Binding{
			{
				OID:   catalog.OID{1, 3, 6, 1, 4, 1, 9999, 1, 1},
				Name:  "cardTemp",
				Value: catalog.TypedValue{Type: "Gauge32", Base: catalog.BaseGauge32, Value: uint64(20)},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LookupByName() = %+v, want %+v", got, want)
	}
}

func TestUnknownSemanticType(t *testing.T) {
	s, _ := newTestSynthesizer(t, "testdata/foobar-mib.yml")
	_, err := s.LookupByName("TEST-MIB", "tempOverheat")
	require.ErrorIs(t, err, ErrUnknownSemanticType)

	var te *TrapError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "tempOverheat", te.Name)

	var ve *VarError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "FooBarType", ve.Type)
	require.Equal(t, "1.3.6.1.4.1.9999.1.1", ve.OID.String())
	require.Contains(t, err.Error(), "FooBarType")
	require.Contains(t, err.Error(), "1.3.6.1.4.1.9999.1.1")
	require.Contains(t, err.Error(), "TEST-MIB::tempOverheat")
}

func TestOrderPreservation(t *testing.T) {
	s, cat := newTestSynthesizer(t, "testdata/test-mib.yml")
	oids, err := cat.Notifications("TEST-MIB")
	require.NoError(t, err)
	for _, oid := range oids {
		d, err := s.SynthesizeOne(oid)
		require.NoError(t, err)
		objects, err := cat.Objects(oid)
		require.NoError(t, err)
		require.Len(t, d.Bindings, len(objects))
		for i, b := range d.Bindings {
			if !b.OID.Equal(objects[i]) {
				t.Errorf("%s binding %d = %s, want %s", d.Name, i, b.OID, objects[i])
			}
		}
	}
}

func TestLinkEventValues(t *testing.T) {
	s, _ := newTestSynthesizer(t, "testdata/test-mib.yml")
	d, err := s.LookupByName("TEST-MIB", "linkEvent")
	require.NoError(t, err)

	want := []struct {
		name, typ, value string
	}{
		{"linkDescr", "DisplayString", "dummy_display_string"},
		{"linkUp", "TruthValue", "true(1)"},
		{"linkIfIndex", "InterfaceIndex", "1"},
		{"linkTime", "DateAndTime", "2019-1-28,12:0:1.0,-4:0"},
		{"linkPeerType", "InetAddressType", "ipv4(1)"},
		{"linkPeer", "InetAddress", "0x01010101"},
	}
	require.Len(t, d.Bindings, len(want))
	for i, w := range want {
		b := d.Bindings[i]
		if b.Name != w.name || b.Value.Type != w.typ || b.Value.String() != w.value {
			t.Errorf("binding %d = %s %s %s, want %s %s %s", i, b.Name, b.Value.Type, b.Value, w.name, w.typ, w.value)
		}
	}
}

func TestEmptyNotification(t *testing.T) {
	s, _ := newTestSynthesizer(t, "testdata/test-mib.yml")
	d, err := s.LookupByName("TEST-MIB", "heartbeat")
	require.NoError(t, err)
	require.NotNil(t, d.Bindings)
	require.Empty(t, d.Bindings)
}

func TestIdempotence(t *testing.T) {
	s, _ := newTestSynthesizer(t, "testdata/test-mib.yml")
	first, err := s.SynthesizeAll("TEST-MIB")
	require.NoError(t, err)
	second, err := s.SynthesizeAll("TEST-MIB")
	require.NoError(t, err)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("SynthesizeAll() not idempotent:\n%+v\n%+v", first, second)
	}
	require.Len(t, first, 3)
	for _, o := range first {
		require.NoError(t, o.Err)
	}
}

func TestSynthesizeAllIsolatesFailures(t *testing.T) {
	s, _ := newTestSynthesizer(t, "testdata/mixed-mib.yml")
	outcomes, err := s.SynthesizeAll("MIXED-MIB")
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	require.NoError(t, outcomes[0].Err)
	require.Equal(t, "goodTrap", outcomes[0].Descriptor.Name)

	bad := outcomes[1]
	require.Nil(t, bad.Descriptor)
	require.ErrorIs(t, bad.Err, ErrUnknownSemanticType)
	require.ErrorIs(t, bad.Err, ErrValueCast)
	require.ErrorIs(t, bad.Err, catalog.ErrCast)
	vars := Variables(bad.Err)
	require.Len(t, vars, 3)
	got := make([]string, 0, len(vars))
	for _, v := range vars {
		got = append(got, v.Name+":"+v.Kind.Error())
	}
	require.Equal(t, []string{
		"fooValue:unknown semantic type",
		"narrowName:value cast failure",
		"barValue:unknown semantic type",
	}, got)
	require.NotNil(t, vars[1].Bare)
	require.Equal(t, registry.String("dummy_shortname"), *vars[1].Bare)

	orphan := outcomes[2]
	require.ErrorIs(t, orphan.Err, ErrUnresolvedIdentifier)
	require.Contains(t, orphan.Err.Error(), "missingValue")
	require.Empty(t, Variables(orphan.Err))

	diag := s.Diagnostics()
	require.Equal(t, []string{"BarBazType", "Counter32", "FooBarType", "StarShortName"}, diag.Seen())
	require.Equal(t, []string{"BarBazType", "FooBarType"}, diag.Unregistered(registry.New(nil)))
	require.Equal(t, 2, diag.Count("Counter32"))
}

func TestModuleNotFound(t *testing.T) {
	s, _ := newTestSynthesizer(t, "testdata/test-mib.yml")
	_, err := s.SynthesizeAll("NO-SUCH-MIB")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLookupErrors(t *testing.T) {
	s, _ := newTestSynthesizer(t, "testdata/test-mib.yml")
	cases := []struct {
		module, name string
		err          error
	}{
		{module: "TEST-MIB", name: "noSuchTrap", err: ErrNotFound},
		{module: "NO-SUCH-MIB", name: "tempOverheat", err: ErrNotFound},
		{module: "TEST-MIB", name: "cardTemp", err: ErrWrongNodeKind},
		{module: "TEST-MIB", name: "testMIB", err: ErrWrongNodeKind},
	}
	for _, c := range cases {
		_, err := s.LookupByName(c.module, c.name)
		if !errors.Is(err, c.err) {
			t.Errorf("LookupByName(%s, %s) error = %v, want %v", c.module, c.name, err, c.err)
			continue
		}
		if !strings.Contains(err.Error(), c.name) {
			t.Errorf("error %q does not name %s", err, c.name)
		}
	}
}

func TestLookupByOID(t *testing.T) {
	s, _ := newTestSynthesizer(t, "testdata/test-mib.yml")
	d, err := s.LookupByOID(catalog.MustParseOID("1.3.6.1.4.1.9999.1"))
	require.NoError(t, err)
	require.Equal(t, "tempOverheat", d.Name)

	_, err = s.LookupByOID(catalog.MustParseOID("1.3.6.1.4.1.9999.1.1"))
	require.ErrorIs(t, err, ErrWrongNodeKind)

	_, err = s.LookupByOID(catalog.MustParseOID("1.3.6.1.4.1.9999.77"))
	require.ErrorIs(t, err, ErrNotFound)
}

// shortLabels drops the last label of one OID to simulate a catalog that
// only partially resolves it.
type shortLabels struct {
	*catalog.Catalog
	oid catalog.OID
}

func (c shortLabels) Labels(oid catalog.OID) ([]string, error) {
	labels, err := c.Catalog.Labels(oid)
	if err == nil && oid.Equal(c.oid) {
		labels = labels[:len(labels)-1]
	}
	return labels, err
}

func TestPartialResolution(t *testing.T) {
	cat, err := catalog.Load(promslog.NewNopLogger(), "testdata/test-mib.yml")
	require.NoError(t, err)

	variable := catalog.MustParseOID("1.3.6.1.4.1.9999.1.1")
	s := New(shortLabels{Catalog: cat, oid: variable}, registry.New(nil), nil, promslog.NewNopLogger())
	_, err = s.LookupByName("TEST-MIB", "tempOverheat")
	require.ErrorIs(t, err, ErrUnresolvedIdentifier)
	vars := Variables(err)
	require.Len(t, vars, 1)
	require.Equal(t, variable, vars[0].OID)

	trap := catalog.MustParseOID("1.3.6.1.4.1.9999.1")
	s = New(shortLabels{Catalog: cat, oid: trap}, registry.New(nil), nil, promslog.NewNopLogger())
	_, err = s.SynthesizeOne(trap)
	require.ErrorIs(t, err, ErrUnresolvedIdentifier)
	require.Contains(t, err.Error(), "resolves only to")

	// The failing trap is still named, whichever way it was reached.
	var te *TrapError
	_, err = s.LookupByName("TEST-MIB", "tempOverheat")
	require.ErrorAs(t, err, &te)
	require.Equal(t, "TEST-MIB", te.Module)
	require.Equal(t, "tempOverheat", te.Name)
	require.Equal(t, trap, te.OID)

	outcomes, err := s.SynthesizeAll("TEST-MIB")
	require.NoError(t, err)
	var found bool
	for _, o := range outcomes {
		if !o.OID.Equal(trap) {
			continue
		}
		found = true
		require.ErrorAs(t, o.Err, &te)
		require.Equal(t, "tempOverheat", te.Name)
		require.Contains(t, o.Err.Error(), "trap TEST-MIB::tempOverheat (1.3.6.1.4.1.9999.1)")
	}
	require.True(t, found)
}

func TestRegistryCompleteness(t *testing.T) {
	cat, err := catalog.Load(promslog.NewNopLogger(), "testdata/test-mib.yml")
	require.NoError(t, err)
	reg := registry.New(nil)
	oids, err := cat.Notifications("TEST-MIB")
	require.NoError(t, err)
	for _, n := range oids {
		objects, err := cat.Objects(n)
		require.NoError(t, err)
		for _, o := range objects {
			typ, err := cat.TypeOf(o)
			require.NoError(t, err)
			if _, ok := reg.Lookup(typ); !ok {
				t.Errorf("no registry value for %s (%s)", typ, o)
			}
		}
	}
}

func TestRegistryOverride(t *testing.T) {
	cat, err := catalog.Load(promslog.NewNopLogger(), "testdata/foobar-mib.yml")
	require.NoError(t, err)
	reg := registry.New(map[string]registry.Value{"FooBarType": registry.Int(7)})
	s := New(cat, reg, nil, promslog.NewNopLogger())
	d, err := s.LookupByName("TEST-MIB", "tempOverheat")
	require.NoError(t, err)
	require.Equal(t, uint64(7), d.Bindings[0].Value.Value)
}
