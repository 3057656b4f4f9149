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

/*
#cgo LDFLAGS: -lnetsnmp -L/usr/local/lib
#cgo CFLAGS: -I/usr/local/include
#include <net-snmp/net-snmp-config.h>
#include <net-snmp/mib_api.h>
#include <net-snmp/library/parse.h>
#include <unistd.h>
*/
import "C"

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// One entry in the tree of the MIB.
type Node struct {
	Oid               string
	Module            string
	Label             string
	Children          []*Node
	Description       string
	Type              string
	Hint              string
	TextualConvention string
	Units             string
	Access            string
	EnumValues        map[int]string
	Ranges            []Range
	Varbinds          []string
}

// A range or size constraint as net-snmp reports it.
type Range struct {
	Low, High int64
}

// Adapted from parse.h.
var (
	netSnmptypeMap = map[int]string{
		0:  "OTHER",
		1:  "OBJID",
		2:  "OCTETSTR",
		3:  "INTEGER",
		4:  "NETADDR",
		5:  "IPADDR",
		6:  "COUNTER",
		7:  "GAUGE",
		8:  "TIMETICKS",
		9:  "OPAQUE",
		10: "NULL",
		11: "COUNTER64",
		12: "BITSTRING",
		13: "NSAPADDRESS",
		14: "UINTEGER",
		15: "UNSIGNED32",
		16: "INTEGER32",
		20: "TRAPTYPE",
		21: "NOTIFTYPE",
		22: "OBJGROUP",
		23: "NOTIFGROUP",
		24: "MODID",
		25: "AGENTCAP",
		26: "MODCOMP",
		27: "OBJIDENTITY",
	}
	netSnmpaccessMap = map[int]string{
		18: "ACCESS_READONLY",
		19: "ACCESS_READWRITE",
		20: "ACCESS_WRITEONLY",
		21: "ACCESS_NOACCESS",
		67: "ACCESS_NOTIFY",
		48: "ACCESS_CREATE",
	}
)

// Initialize NetSNMP. Returns MIB parse errors.
//
// Warning: This function plays with the stderr file descriptor.
func initSNMP(logger *slog.Logger) (string, error) {
	// Load all the MIBs.
	os.Setenv("MIBS", "SNMPv2-MIB:IF-MIB:ALL")
	mibs := *userMibsDir
	if len(mibs) > 0 {
		os.Setenv("MIBDIRS", strings.Join(mibs, ":"))
	} else {
		mibs = strings.Split(C.GoString(C.netsnmp_get_mib_directory()), ":")
	}
	// Help the user find their MIB directories.
	logger.Info("Loading MIBs", "from", strings.Join(mibs, ":"))
	// We want the descriptions.
	C.snmp_set_save_descriptions(1)

	// Make stderr go to a pipe, as netsnmp tends to spew a
	// lot of errors on startup that there's no apparent
	// way to disable or redirect.
	r, w, err := os.Pipe()
	if err != nil {
		return "", fmt.Errorf("error creating pipe: %s", err)
	}
	defer r.Close()
	defer w.Close()
	savedStderrFd := C.dup(2)
	C.close(2)
	C.dup2(C.int(w.Fd()), 2)
	ch := make(chan string)
	errch := make(chan error)
	go func() {
		data, err := io.ReadAll(r)
		if err != nil {
			errch <- fmt.Errorf("error reading from pipe: %s", err)
			return
		}
		ch <- string(data)
	}()

	// Do the initialization.
	C.netsnmp_init_mib()

	// Restore stderr to normal.
	w.Close()
	C.close(2)
	C.dup2(savedStderrFd, 2)
	C.close(savedStderrFd)
	select {
	case data := <-ch:
		return data, nil
	case err := <-errch:
		return "", err
	}
}

// Walk NetSNMP MIB tree, building a Go tree from it.
func buildMIBTree(t *C.struct_tree, n *Node, oid string) {
	buf := make([]C.char, 256)

	if oid != "" {
		n.Oid = fmt.Sprintf("%s.%d", oid, t.subid)
	} else {
		n.Oid = fmt.Sprintf("%d", t.subid)
	}
	n.Label = C.GoString(t.label)
	n.Module = C.GoString(C.module_name(t.modid, &buf[0]))
	if typ, ok := netSnmptypeMap[int(t._type)]; ok {
		n.Type = typ
	} else {
		n.Type = "unknown"
	}

	if access, ok := netSnmpaccessMap[int(t.access)]; ok {
		n.Access = access
	} else {
		n.Access = "unknown"
	}

	n.Description = C.GoString(t.description)
	n.Hint = C.GoString(t.hint)
	n.TextualConvention = C.GoString(C.get_tc_descriptor(t.tc_index))
	n.Units = C.GoString(t.units)

	enum := t.enums
	for enum != nil {
		if n.EnumValues == nil {
			n.EnumValues = map[int]string{}
		}
		n.EnumValues[int(enum.value)] = C.GoString(enum.label)
		enum = enum.next
	}

	rng := t.ranges
	for rng != nil {
		n.Ranges = append(n.Ranges, Range{Low: int64(rng.low), High: int64(rng.high)})
		rng = rng.next
	}

	vb := t.varbinds
	for vb != nil {
		n.Varbinds = append(n.Varbinds, C.GoString(vb.vblabel))
		vb = vb.next
	}

	if t.child_list == nil {
		return
	}

	head := t.child_list
	n.Children = []*Node{}
	for head != nil {
		child := &Node{}
		// Prepend, as nodes are backwards.
		n.Children = append([]*Node{child}, n.Children...)
		buildMIBTree(head, child, n.Oid)
		head = head.next_peer
	}
}

// Convert the NetSNMP MIB tree to a Go data structure.
func getMIBTree() *Node {
	tree := C.get_tree_head()
	head := &Node{}
	buildMIBTree(tree, head, "")
	return head
}
