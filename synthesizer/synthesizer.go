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

// Package synthesizer builds SNMP notifications from catalog definitions,
// filling every variable with the registry value for its semantic type.
package synthesizer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cisco-cx/snmptrap-gen/catalog"
	"github.com/cisco-cx/snmptrap-gen/registry"
)

// Catalog resolves identifiers and types. *catalog.Catalog implements it.
type Catalog interface {
	Resolve(module, name string) (catalog.OID, error)
	// Labels may return fewer labels than oid has arcs.
	Labels(oid catalog.OID) ([]string, error)
	Kind(oid catalog.OID) (catalog.Kind, error)
	TypeOf(oid catalog.OID) (string, error)
	Notifications(module string) ([]catalog.OID, error)
	Objects(notification catalog.OID) ([]catalog.OID, error)
	Cast(oid catalog.OID, bare registry.Value) (catalog.TypedValue, error)
	Lookup(oid catalog.OID) (*catalog.Node, error)
}

// Registry maps semantic types to bare values. *registry.Registry
// implements it.
type Registry interface {
	Lookup(typeID string) (registry.Value, bool)
}

// Binding is one variable of a synthesized trap.
type Binding struct {
	OID   catalog.OID
	Name  string
	Value catalog.TypedValue
}

// Descriptor is a fully synthesized trap. Bindings follow the declared
// object order of the notification.
type Descriptor struct {
	Module   string
	Name     string
	Symbolic string
	OID      catalog.OID
	Bindings []Binding
}

// Outcome is the result of synthesizing one trap of a module.
type Outcome struct {
	OID        catalog.OID
	Descriptor *Descriptor
	Err        error
}

type Synthesizer struct {
	catalog  Catalog
	registry Registry
	diag     *Diagnostics
	logger   *slog.Logger
}

// New returns a Synthesizer. A nil diag gets a private Diagnostics.
func New(cat Catalog, reg Registry, diag *Diagnostics, logger *slog.Logger) *Synthesizer {
	if diag == nil {
		diag = NewDiagnostics()
	}
	return &Synthesizer{catalog: cat, registry: reg, diag: diag, logger: logger}
}

// Diagnostics returns the accumulator the synthesizer records types into.
func (s *Synthesizer) Diagnostics() *Diagnostics {
	return s.diag
}

// SynthesizeAll synthesizes every notification of module in ascending OID
// order. Failures are reported per trap in the outcomes; the error is only
// set when the module itself cannot be listed.
func (s *Synthesizer) SynthesizeAll(module string) ([]Outcome, error) {
	oids, err := s.catalog.Notifications(module)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", module, translate(err))
	}
	outcomes := make([]Outcome, 0, len(oids))
	for _, oid := range oids {
		d, err := s.synthesize(module, "", oid)
		if err != nil {
			s.logger.Debug("Error synthesizing trap", "module", module, "oid", oid, "err", err)
		}
		outcomes = append(outcomes, Outcome{OID: oid, Descriptor: d, Err: err})
	}
	return outcomes, nil
}

// SynthesizeOne synthesizes the notification at oid.
func (s *Synthesizer) SynthesizeOne(oid catalog.OID) (*Descriptor, error) {
	return s.synthesize("", "", oid)
}

// LookupByName synthesizes the notification called name in module.
func (s *Synthesizer) LookupByName(module, name string) (*Descriptor, error) {
	oid, err := s.catalog.Resolve(module, name)
	if err != nil {
		return nil, &TrapError{Module: module, Name: name, Err: translate(err)}
	}
	if err := s.checkNotification(oid); err != nil {
		return nil, &TrapError{Module: module, Name: name, OID: oid, Err: err}
	}
	return s.synthesize(module, name, oid)
}

// LookupByOID synthesizes the notification at oid after checking that oid
// denotes one.
func (s *Synthesizer) LookupByOID(oid catalog.OID) (*Descriptor, error) {
	if err := s.checkNotification(oid); err != nil {
		return nil, &TrapError{OID: oid, Err: err}
	}
	return s.synthesize("", "", oid)
}

func (s *Synthesizer) checkNotification(oid catalog.OID) error {
	kind, err := s.catalog.Kind(oid)
	if err != nil {
		return &kindError{kind: ErrNotFound, err: err}
	}
	if kind != catalog.KindNotification {
		return fmt.Errorf("%w: %s is a %s", ErrWrongNodeKind, oid, kind)
	}
	return nil
}

// labels resolves oid to its full label path. Partial resolutions fail.
func (s *Synthesizer) labels(oid catalog.OID) ([]string, error) {
	labels, err := s.catalog.Labels(oid)
	if err != nil {
		return nil, translate(err)
	}
	if len(labels) != len(oid) {
		return nil, fmt.Errorf("%w: %s resolves only to %s", ErrUnresolvedIdentifier, oid, strings.Join(labels, "."))
	}
	return labels, nil
}

// synthesize builds the trap at oid. module and name are what the caller
// already knows about it and may be empty.
func (s *Synthesizer) synthesize(module, name string, oid catalog.OID) (*Descriptor, error) {
	labels, err := s.labels(oid)
	if err != nil {
		if n, lerr := s.catalog.Lookup(oid); lerr == nil {
			if name == "" {
				name = n.Name
			}
			if module == "" {
				module = n.Module()
			}
		}
		return nil, &TrapError{Module: module, Name: name, OID: oid, Err: err}
	}
	d := &Descriptor{
		Module:   module,
		Name:     labels[len(labels)-1],
		Symbolic: strings.Join(labels, "."),
		OID:      oid,
	}

	objects, err := s.catalog.Objects(oid)
	if err != nil {
		return nil, &TrapError{Module: module, Name: d.Name, OID: oid, Err: translate(err)}
	}

	// Every variable is examined so that one call reports all of them.
	bindings := make([]Binding, 0, len(objects))
	var errs []error
	for _, obj := range objects {
		b, err := s.bind(obj)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bindings = append(bindings, b)
	}
	if len(errs) > 0 {
		return nil, &TrapError{Module: module, Name: d.Name, OID: oid, Err: errors.Join(errs...)}
	}
	d.Bindings = bindings

	s.logger.Debug("Synthesized trap", "trap", d.Name, "oid", oid, "bindings", len(bindings))
	return d, nil
}

func (s *Synthesizer) bind(oid catalog.OID) (Binding, error) {
	labels, err := s.labels(oid)
	if err != nil {
		return Binding{}, &VarError{Kind: kindOf(err), OID: oid, Err: err}
	}
	name := labels[len(labels)-1]

	typ, err := s.catalog.TypeOf(oid)
	if err != nil {
		return Binding{}, &VarError{Kind: kindOf(err), Name: name, OID: oid, Err: err}
	}
	s.diag.Observe(typ)

	bare, ok := s.registry.Lookup(typ)
	if !ok {
		return Binding{}, &VarError{Kind: ErrUnknownSemanticType, Name: name, OID: oid, Type: typ}
	}

	value, err := s.catalog.Cast(oid, bare)
	if err != nil {
		return Binding{}, &VarError{Kind: kindOf(err), Name: name, OID: oid, Type: typ, Bare: &bare, Err: err}
	}
	return Binding{OID: oid, Name: name, Value: value}, nil
}
