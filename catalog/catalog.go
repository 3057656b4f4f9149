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

// Package catalog is a MIB catalog backed by YAML trap catalog files. It
// resolves symbolic and numeric identifiers, reports the semantic type of
// objects and casts bare values against an object's constraints.
//
// A catalog is loaded once and is read-only afterwards; all methods are safe
// for concurrent use.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

var (
	// ErrNotFound is returned for unknown modules and symbols.
	ErrNotFound = errors.New("not found")
	// ErrUnresolved is returned when an identifier or reference cannot be
	// resolved against the loaded tree.
	ErrUnresolved = errors.New("unresolved identifier")
	// ErrCast is wrapped by every CastError.
	ErrCast = errors.New("value cast failure")
)

// Kind identifies what a node represents.
type Kind string

const (
	KindNode         Kind = "node"
	KindObject       Kind = "object"
	KindNotification Kind = "notification"
)

// BaseType is the SMI base type underlying an object's syntax.
type BaseType string

const (
	BaseInteger32        BaseType = "Integer32"
	BaseUnsigned32       BaseType = "Unsigned32"
	BaseGauge32          BaseType = "Gauge32"
	BaseCounter32        BaseType = "Counter32"
	BaseCounter64        BaseType = "Counter64"
	BaseTimeTicks        BaseType = "TimeTicks"
	BaseIpAddress        BaseType = "IpAddress"
	BaseOctetString      BaseType = "OctetString"
	BaseObjectIdentifier BaseType = "ObjectIdentifier"
	BaseBits             BaseType = "Bits"
	BaseOpaque           BaseType = "Opaque"
)

var baseTypes = map[BaseType]struct{}{
	BaseInteger32: {}, BaseUnsigned32: {}, BaseGauge32: {}, BaseCounter32: {},
	BaseCounter64: {}, BaseTimeTicks: {}, BaseIpAddress: {}, BaseOctetString: {},
	BaseObjectIdentifier: {}, BaseBits: {}, BaseOpaque: {},
}

// ValidBaseType reports whether b is one of the SMI base types.
func ValidBaseType(b BaseType) bool {
	_, ok := baseTypes[b]
	return ok
}

// File is the on-disk catalog format.
type File struct {
	Modules map[string][]*Node `yaml:"modules"`
}

// Node is one definition of a MIB module.
type Node struct {
	Name        string           `yaml:"name"`
	Oid         OID              `yaml:"oid"`
	Kind        Kind             `yaml:"kind,omitempty"`
	Base        BaseType         `yaml:"base,omitempty"`
	Type        string           `yaml:"type,omitempty"`
	Hint        string           `yaml:"hint,omitempty"`
	Sizes       []Range          `yaml:"sizes,omitempty"`
	Ranges      []Range          `yaml:"ranges,omitempty"`
	Enums       map[string]int64 `yaml:"enums,omitempty"`
	Objects     []string         `yaml:"objects,omitempty"`
	Description string           `yaml:"description,omitempty"`

	module     string
	objects    []*Node
	unresolved []string
	// shadowedBy is the node of another module that owns the same OID.
	shadowedBy *Node
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (n *Node) UnmarshalYAML(unmarshal func(interface{}) error) error {
	*n = Node{Kind: KindNode}
	type plain Node
	if err := unmarshal((*plain)(n)); err != nil {
		return err
	}
	if n.Name == "" {
		return fmt.Errorf("node without a name")
	}
	if len(n.Oid) == 0 {
		return fmt.Errorf("node %s has no oid", n.Name)
	}
	switch n.Kind {
	case KindObject:
		if _, ok := baseTypes[n.Base]; !ok {
			return fmt.Errorf("object %s has unknown base type %q", n.Name, n.Base)
		}
	case KindNotification, KindNode:
		if n.Base != "" || n.Type != "" {
			return fmt.Errorf("%s %s cannot carry a syntax", n.Kind, n.Name)
		}
	default:
		return fmt.Errorf("node %s has unknown kind %q", n.Name, n.Kind)
	}
	if len(n.Objects) > 0 && n.Kind != KindNotification {
		return fmt.Errorf("only notifications can list objects, %s is a %s", n.Name, n.Kind)
	}
	return nil
}

// Module returns the name of the module defining the node.
func (n *Node) Module() string { return n.module }

// SemanticType is the textual convention name if there is one, otherwise
// the base type name.
func (n *Node) SemanticType() string {
	if n.Type != "" {
		return n.Type
	}
	return string(n.Base)
}

func (n *Node) enumLabel(v int64) (string, bool) {
	for label, value := range n.Enums {
		if value == v {
			return label, true
		}
	}
	return "", false
}

func (n *Node) enumList() string {
	labels := make([]string, 0, len(n.Enums))
	for label, value := range n.Enums {
		labels = append(labels, fmt.Sprintf("%s(%d)", label, value))
	}
	sort.Strings(labels)
	return "{" + strings.Join(labels, ", ") + "}"
}

// Range is an inclusive SMI range or size constraint, written "min..max" or
// as a single value.
type Range struct {
	Min, Max int64
}

func (r Range) String() string {
	if r.Min == r.Max {
		return strconv.FormatInt(r.Min, 10)
	}
	return fmt.Sprintf("%d..%d", r.Min, r.Max)
}

// MarshalYAML implements the yaml.Marshaler interface.
func (r Range) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (r *Range) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	lo, hi, found := strings.Cut(s, "..")
	min, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid range %q: %w", s, err)
	}
	max := min
	if found {
		max, err = strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid range %q: %w", s, err)
		}
	}
	if max < min {
		return fmt.Errorf("invalid range %q: upper bound below lower bound", s)
	}
	r.Min, r.Max = min, max
	return nil
}

func rangesString(rs []Range) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// Contained reports whether v is inside any of rs. No constraint allows all.
func contained(rs []Range, v int64) bool {
	if len(rs) == 0 {
		return true
	}
	for _, r := range rs {
		if v >= r.Min && v <= r.Max {
			return true
		}
	}
	return false
}

type module struct {
	name          string
	symbols       map[string]*Node
	notifications []*Node
}

type treeNode struct {
	node     *Node
	builtin  bool
	children map[uint32]*treeNode
}

func (t *treeNode) child(arc uint32) *treeNode {
	c, ok := t.children[arc]
	if !ok {
		c = &treeNode{children: map[uint32]*treeNode{}}
		t.children[arc] = c
	}
	return c
}

// Catalog is a loaded, resolved set of catalog files.
type Catalog struct {
	root    *treeNode
	modules map[string]*module
	logger  *slog.Logger
}

// LoadFile reads a single catalog file.
func LoadFile(filename string) (*File, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	f := &File{}
	if err := yaml.UnmarshalStrict(content, f); err != nil {
		return nil, fmt.Errorf("error parsing catalog %s: %w", filename, err)
	}
	return f, nil
}

// Load reads and resolves the given catalog files.
func Load(logger *slog.Logger, filenames ...string) (*Catalog, error) {
	files := make([]*File, 0, len(filenames))
	for _, filename := range filenames {
		f, err := LoadFile(filename)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return New(logger, files...)
}

// New builds a catalog from already parsed files. Files are applied in
// order; a module may only be defined once.
func New(logger *slog.Logger, files ...*File) (*Catalog, error) {
	c := &Catalog{
		root:    &treeNode{children: map[uint32]*treeNode{}},
		modules: map[string]*module{},
		logger:  logger,
	}
	for _, b := range baseNodes {
		t := c.walk(MustParseOID(b.oid), true)
		t.node = &Node{Name: b.name, Oid: MustParseOID(b.oid), Kind: KindNode, module: baseModule}
		t.builtin = true
	}

	for _, f := range files {
		names := make([]string, 0, len(f.Modules))
		for name := range f.Modules {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, ok := c.modules[name]; ok {
				return nil, fmt.Errorf("module %s defined more than once", name)
			}
			mod := &module{name: name, symbols: map[string]*Node{}}
			c.modules[name] = mod
			for _, n := range f.Modules[name] {
				if err := c.add(mod, n); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, mod := range c.modules {
		for _, n := range mod.notifications {
			c.resolveObjects(mod, n)
		}
		sort.Slice(mod.notifications, func(i, j int) bool {
			return mod.notifications[i].Oid.Compare(mod.notifications[j].Oid) < 0
		})
	}
	return c, nil
}

func (c *Catalog) walk(oid OID, create bool) *treeNode {
	t := c.root
	for _, arc := range oid {
		if create {
			t = t.child(arc)
			continue
		}
		next, ok := t.children[arc]
		if !ok {
			return nil
		}
		t = next
	}
	return t
}

func (c *Catalog) add(mod *module, n *Node) error {
	if n == nil {
		return fmt.Errorf("empty node in module %s", mod.name)
	}
	if _, ok := mod.symbols[n.Name]; ok {
		return fmt.Errorf("symbol %s defined twice in module %s", n.Name, mod.name)
	}
	n.module = mod.name
	mod.symbols[n.Name] = n

	t := c.walk(n.Oid, true)
	switch {
	case t.node == nil || t.builtin:
		t.node = n
		t.builtin = false
	case t.node.Name != n.Name || t.node.module != n.module:
		c.logger.Warn("OID already defined, keeping first definition",
			"oid", n.Oid, "kept", t.node.module+"::"+t.node.Name, "ignored", mod.name+"::"+n.Name)
		n.shadowedBy = t.node
		return nil
	}
	if n.Kind == KindNotification {
		mod.notifications = append(mod.notifications, n)
	}
	return nil
}

func (n *Node) shadowError() error {
	return fmt.Errorf("%w: %s::%s is shadowed by %s::%s at %s",
		ErrUnresolved, n.module, n.Name, n.shadowedBy.module, n.shadowedBy.Name, n.Oid)
}

func (c *Catalog) resolveObjects(mod *module, n *Node) {
	n.objects = make([]*Node, 0, len(n.Objects))
	for _, ref := range n.Objects {
		obj := c.symbol(mod, ref)
		if obj != nil && obj.shadowedBy != nil {
			n.unresolved = append(n.unresolved, fmt.Sprintf("%s (shadowed by %s::%s)", ref, obj.shadowedBy.module, obj.shadowedBy.Name))
			c.logger.Warn("Notification object is shadowed by another module", "notification", n.Name, "module", mod.name, "object", ref)
			continue
		}
		if obj == nil {
			n.unresolved = append(n.unresolved, ref)
			c.logger.Debug("Unresolved notification object", "notification", n.Name, "module", mod.name, "object", ref)
			continue
		}
		n.objects = append(n.objects, obj)
	}
}

// symbol finds "name" or "MODULE::name", preferring the referencing module.
func (c *Catalog) symbol(from *module, ref string) *Node {
	if modName, name, ok := strings.Cut(ref, "::"); ok {
		if m, ok := c.modules[modName]; ok {
			return m.symbols[name]
		}
		return nil
	}
	if n, ok := from.symbols[ref]; ok {
		return n
	}
	names := make([]string, 0, len(c.modules))
	for name := range c.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if n, ok := c.modules[name].symbols[ref]; ok {
			return n
		}
	}
	return nil
}

func (c *Catalog) node(oid OID) (*Node, error) {
	t := c.walk(oid, false)
	if t == nil || t.node == nil {
		return nil, fmt.Errorf("%w: no definition at %s", ErrUnresolved, oid)
	}
	return t.node, nil
}

// Modules returns the loaded module names, sorted.
func (c *Catalog) Modules() []string {
	names := make([]string, 0, len(c.modules))
	for name := range c.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the definition at oid.
func (c *Catalog) Lookup(oid OID) (*Node, error) {
	return c.node(oid)
}

// Resolve returns the numeric OID of name within module.
func (c *Catalog) Resolve(module, name string) (OID, error) {
	mod, ok := c.modules[module]
	if !ok {
		return nil, fmt.Errorf("%w: module %s", ErrNotFound, module)
	}
	n, ok := mod.symbols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s::%s", ErrNotFound, module, name)
	}
	if n.shadowedBy != nil {
		return nil, n.shadowError()
	}
	return n.Oid, nil
}

// Labels returns the symbolic labels along oid, as far as the tree has
// named nodes. The result is shorter than oid when resolution is partial.
func (c *Catalog) Labels(oid OID) ([]string, error) {
	labels := make([]string, 0, len(oid))
	t := c.root
	for _, arc := range oid {
		next, ok := t.children[arc]
		if !ok || next.node == nil {
			break
		}
		labels = append(labels, next.node.Name)
		t = next
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnresolved, oid)
	}
	return labels, nil
}

// Numeric resolves a full label path back to its numeric OID.
func (c *Catalog) Numeric(labels []string) (OID, error) {
	oid := make(OID, 0, len(labels))
	t := c.root
	for _, label := range labels {
		var found bool
		for arc, next := range t.children {
			if next.node != nil && next.node.Name == label {
				oid = append(oid, arc)
				t = next
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: no label %q below %s", ErrUnresolved, label, oid)
		}
	}
	return oid, nil
}

// Kind returns what the node at oid represents.
func (c *Catalog) Kind(oid OID) (Kind, error) {
	n, err := c.node(oid)
	if err != nil {
		return "", err
	}
	return n.Kind, nil
}

// TypeOf returns the semantic type identifier of the object at oid.
func (c *Catalog) TypeOf(oid OID) (string, error) {
	n, err := c.node(oid)
	if err != nil {
		return "", err
	}
	if n.Kind != KindObject {
		return "", fmt.Errorf("%w: %s::%s is a %s without syntax", ErrUnresolved, n.module, n.Name, n.Kind)
	}
	return n.SemanticType(), nil
}

// Notifications returns the notifications of module in ascending OID order.
func (c *Catalog) Notifications(module string) ([]OID, error) {
	mod, ok := c.modules[module]
	if !ok {
		return nil, fmt.Errorf("%w: module %s", ErrNotFound, module)
	}
	oids := make([]OID, 0, len(mod.notifications))
	for _, n := range mod.notifications {
		oids = append(oids, n.Oid)
	}
	return oids, nil
}

// Objects returns the OIDs of the objects a notification carries, in
// declaration order.
func (c *Catalog) Objects(notification OID) ([]OID, error) {
	n, err := c.node(notification)
	if err != nil {
		return nil, err
	}
	if n.Kind != KindNotification {
		return nil, fmt.Errorf("%w: %s::%s is a %s, not a notification", ErrUnresolved, n.module, n.Name, n.Kind)
	}
	if len(n.unresolved) > 0 {
		return nil, fmt.Errorf("%w: %s::%s references unknown objects %s",
			ErrUnresolved, n.module, n.Name, strings.Join(n.unresolved, ", "))
	}
	oids := make([]OID, 0, len(n.objects))
	for _, obj := range n.objects {
		oids = append(oids, obj.Oid)
	}
	return oids, nil
}
