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
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/cisco-cx/snmptrap-gen/catalog"
)

// Helper to walk MIB nodes.
func walkNode(n *Node, f func(n *Node)) {
	f(n)
	for _, c := range n.Children {
		walkNode(c, f)
	}
}

// Transform the tree.
func prepareTree(nodes *Node, logger *slog.Logger) map[string]*Node {
	// Build a map from names and oids to nodes.
	nameToNode := map[string]*Node{}
	walkNode(nodes, func(n *Node) {
		nameToNode[n.Oid] = n
		if prev, ok := nameToNode[n.Label]; ok && prev.Module != n.Module {
			logger.Debug("Label defined in more than one module", "label", n.Label, "modules", []string{prev.Module, n.Module})
		}
		nameToNode[n.Label] = n
	})

	// Trim down description to first sentence, removing extra whitespace.
	walkNode(nodes, func(n *Node) {
		s := strings.Join(strings.Fields(n.Description), " ")
		n.Description = strings.Split(s, ". ")[0]
	})

	// Include both ASCII and UTF-8 in DisplayString, even though DisplayString
	// is technically only ASCII.
	displayStringRe := regexp.MustCompile(`^\d+[at]$`)

	// Some MIBs refer to RFC1213 for strings and addresses, which is
	// too old to carry a textual convention. Derive one from the hint.
	walkNode(nodes, func(n *Node) {
		if n.TextualConvention != "" {
			return
		}
		switch {
		case n.Hint == "1x:":
			n.TextualConvention = "PhysAddress"
		case displayStringRe.MatchString(n.Hint):
			n.TextualConvention = "DisplayString"
		}
	})

	return nameToNode
}

// baseType maps a net-snmp type to its SMI base type.
func baseType(t string) (catalog.BaseType, bool) {
	switch t {
	case "INTEGER", "INTEGER32":
		return catalog.BaseInteger32, true
	case "UINTEGER", "UNSIGNED32":
		return catalog.BaseUnsigned32, true
	case "GAUGE":
		return catalog.BaseGauge32, true
	case "COUNTER":
		return catalog.BaseCounter32, true
	case "COUNTER64":
		return catalog.BaseCounter64, true
	case "TIMETICKS":
		return catalog.BaseTimeTicks, true
	case "IPADDR", "NETADDR":
		return catalog.BaseIpAddress, true
	case "OCTETSTR":
		return catalog.BaseOctetString, true
	case "OBJID":
		return catalog.BaseObjectIdentifier, true
	case "BITSTRING":
		return catalog.BaseBits, true
	case "OPAQUE":
		return catalog.BaseOpaque, true
	default:
		return "", false
	}
}

func isNotification(t string) bool {
	return t == "NOTIFTYPE" || t == "TRAPTYPE"
}

// objectRef names a notification object, qualified when it lives in
// another module.
func objectRef(module, label string, nameToNode map[string]*Node) string {
	obj, ok := nameToNode[label]
	if !ok || obj.Module == "" || obj.Module == module {
		return label
	}
	return obj.Module + "::" + label
}

func catalogNode(n *Node, module string, override Override, nameToNode map[string]*Node) (*catalog.Node, error) {
	oid, err := catalog.ParseOID(n.Oid)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.Label, err)
	}
	out := &catalog.Node{
		Name:        n.Label,
		Oid:         oid,
		Kind:        catalog.KindNode,
		Description: n.Description,
	}

	if isNotification(n.Type) {
		out.Kind = catalog.KindNotification
		for _, vb := range n.Varbinds {
			out.Objects = append(out.Objects, objectRef(module, vb, nameToNode))
		}
		return out, nil
	}

	base, ok := baseType(n.Type)
	if override.Base != "" {
		base, ok = override.Base, true
	}
	if !ok {
		return out, nil
	}
	out.Kind = catalog.KindObject
	out.Base = base
	out.Type = n.TextualConvention
	out.Hint = n.Hint
	if override.Type != "" {
		out.Type = override.Type
	}
	if override.Hint != "" {
		out.Hint = override.Hint
	}

	for _, r := range n.Ranges {
		rng := catalog.Range{Min: r.Low, Max: r.High}
		switch base {
		case catalog.BaseOctetString, catalog.BaseOpaque:
			out.Sizes = append(out.Sizes, rng)
		default:
			out.Ranges = append(out.Ranges, rng)
		}
	}
	if len(n.EnumValues) > 0 && (base == catalog.BaseInteger32 || base == catalog.BaseBits) {
		out.Enums = make(map[string]int64, len(n.EnumValues))
		for v, label := range n.EnumValues {
			out.Enums[label] = int64(v)
		}
	}
	return out, nil
}

// generateCatalogModule emits every node net-snmp attributes to module.
func generateCatalogModule(module string, cfg *ModuleConfig, node *Node, nameToNode map[string]*Node, logger *slog.Logger) ([]*catalog.Node, error) {
	wanted := map[string]bool{}
	for _, name := range cfg.Notifications {
		wanted[name] = false
	}

	out := []*catalog.Node{}
	var genErr error
	walkNode(node, func(n *Node) {
		if genErr != nil || n.Module != module || n.Label == "" {
			return
		}
		override := cfg.Overrides[n.Label]
		if override.Ignore {
			logger.Debug("Ignoring node", "module", module, "node", n.Label)
			return
		}
		if isNotification(n.Type) && len(wanted) > 0 {
			if _, ok := wanted[n.Label]; !ok {
				return
			}
			wanted[n.Label] = true
		}
		cn, err := catalogNode(n, module, override, nameToNode)
		if err != nil {
			genErr = err
			return
		}
		out = append(out, cn)
	})
	if genErr != nil {
		return nil, genErr
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no nodes found for module %s", module)
	}
	for name, found := range wanted {
		if !found {
			return nil, fmt.Errorf("notification %s not found in module %s", name, module)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Oid.Compare(out[j].Oid) < 0
	})
	return out, nil
}

// addMissingAncestors emits every ancestor of a generated node that neither
// a generated module nor the catalog's base tree defines. Each one becomes a
// plain node of the first module that needs it, so that the label path of
// a notification placed under another module's subtree (IF-MIB::linkDown
// below SNMPv2-MIB::snmpTraps) resolves in full.
func addMissingAncestors(file *catalog.File, modules []string, root *Node, logger *slog.Logger) {
	parent := map[string]*Node{}
	walkNode(root, func(n *Node) {
		for _, c := range n.Children {
			parent[c.Oid] = n
		}
	})

	emitted := map[string]bool{}
	for _, name := range modules {
		for _, n := range file.Modules[name] {
			emitted[n.Oid.String()] = true
		}
	}

	for _, name := range modules {
		symbols := map[string]bool{}
		for _, n := range file.Modules[name] {
			symbols[n.Name] = true
		}
		var added []*catalog.Node
		for _, n := range file.Modules[name] {
			for p := parent[n.Oid.String()]; p != nil && p.Label != ""; p = parent[p.Oid] {
				if emitted[p.Oid] {
					continue
				}
				oid, err := catalog.ParseOID(p.Oid)
				if err != nil || catalog.IsBase(oid) {
					continue
				}
				if symbols[p.Label] {
					logger.Warn("Cannot add ancestor, module already defines its label", "module", name, "ancestor", p.Module+"::"+p.Label, "oid", p.Oid)
					continue
				}
				logger.Debug("Adding ancestor from another module", "module", name, "ancestor", p.Module+"::"+p.Label, "oid", p.Oid)
				emitted[p.Oid] = true
				symbols[p.Label] = true
				added = append(added, &catalog.Node{Name: p.Label, Oid: oid, Kind: catalog.KindNode})
			}
		}
		if len(added) == 0 {
			continue
		}
		nodes := append(file.Modules[name], added...)
		sort.Slice(nodes, func(i, j int) bool {
			return nodes[i].Oid.Compare(nodes[j].Oid) < 0
		})
		file.Modules[name] = nodes
	}
}
