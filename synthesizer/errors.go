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
	"fmt"
	"strings"

	"github.com/cisco-cx/snmptrap-gen/catalog"
	"github.com/cisco-cx/snmptrap-gen/registry"
)

var (
	// ErrUnresolvedIdentifier means an OID or label could not be fully
	// resolved; partial resolutions count as failures.
	ErrUnresolvedIdentifier = errors.New("unresolved identifier")
	// ErrUnknownSemanticType means the registry has no value for a type.
	ErrUnknownSemanticType = errors.New("unknown semantic type")
	// ErrValueCast means the registry value violates the object's syntax.
	ErrValueCast = errors.New("value cast failure")
	// ErrWrongNodeKind means a name or OID does not denote a notification.
	ErrWrongNodeKind = errors.New("not a notification")
	// ErrNotFound means the module or trap does not exist in the catalog.
	ErrNotFound = errors.New("not found")
)

// VarError reports the failure to bind one variable of a trap.
type VarError struct {
	Kind error
	Name string
	OID  catalog.OID
	Type string
	// Bare is set when the failure happened after the registry lookup.
	Bare *registry.Value
	Err  error
}

func (e *VarError) Error() string {
	var b strings.Builder
	b.WriteString("variable ")
	if e.Name != "" {
		fmt.Fprintf(&b, "%s (%s)", e.Name, e.OID)
	} else {
		b.WriteString(e.OID.String())
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " of type %s", e.Type)
	}
	if e.Bare != nil {
		fmt.Fprintf(&b, " with value %s", e.Bare)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *VarError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// TrapError reports the failure to synthesize one trap. Err may join
// several VarErrors.
type TrapError struct {
	Module string
	Name   string
	OID    catalog.OID
	Err    error
}

func (e *TrapError) Error() string {
	name := e.Name
	if e.Module != "" && name != "" {
		name = e.Module + "::" + name
	}
	switch {
	case name != "" && len(e.OID) > 0:
		return fmt.Sprintf("trap %s (%s): %s", name, e.OID, e.Err)
	case name != "":
		return fmt.Sprintf("trap %s: %s", name, e.Err)
	default:
		return fmt.Sprintf("trap %s: %s", e.OID, e.Err)
	}
}

func (e *TrapError) Unwrap() error { return e.Err }

// Variables returns the per-variable failures carried by err, if any.
func Variables(err error) []*VarError {
	var te *TrapError
	if !errors.As(err, &te) {
		return nil
	}
	if ve, ok := te.Err.(*VarError); ok {
		return []*VarError{ve}
	}
	joined, ok := te.Err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var vars []*VarError
	for _, e := range joined.Unwrap() {
		var ve *VarError
		if errors.As(e, &ve) {
			vars = append(vars, ve)
		}
	}
	return vars
}

// kindError tags a collaborator error with one of the sentinels above while
// keeping its message.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string   { return e.err.Error() }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }

// translate maps catalog errors onto the synthesizer's sentinels.
func translate(err error) error {
	return &kindError{kind: kindOf(err), err: err}
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, catalog.ErrCast):
		return ErrValueCast
	case errors.Is(err, catalog.ErrNotFound):
		return ErrNotFound
	default:
		return ErrUnresolvedIdentifier
	}
}
