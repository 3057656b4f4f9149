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
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/cisco-cx/snmptrap-gen/synthesizer"
)

type GoSNMPWrapper struct {
	c      *gosnmp.GoSNMP
	inform bool
	logger *slog.Logger
}

// NewGoSNMP returns a sender for target, written as
// "[transport://]host[:port]". The port defaults to 162.
func NewGoSNMP(logger *slog.Logger, target, srcAddress string, debug bool) (*GoSNMPWrapper, error) {
	transport := "udp"
	if s := strings.SplitN(target, "://", 2); len(s) == 2 {
		transport = s[0]
		target = s[1]
	}
	port := uint16(162)
	if host, _port, err := net.SplitHostPort(target); err == nil {
		target = host
		p, err := strconv.ParseUint(_port, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("error converting port number to int for target %q: %w", target, err)
		}
		port = uint16(p)
	}
	target = strings.TrimSuffix(strings.TrimPrefix(target, "["), "]")
	g := &gosnmp.GoSNMP{
		Transport: transport,
		Target:    target,
		Port:      port,
		LocalAddr: srcAddress,
		MaxOids:   gosnmp.MaxOids,
	}
	if debug {
		g.Logger = gosnmp.NewLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	}
	return &GoSNMPWrapper{c: g, logger: logger}, nil
}

// SetInform makes Send use InformRequest PDUs and wait for a response.
func (g *GoSNMPWrapper) SetInform(inform bool) {
	g.inform = inform
}

func (g *GoSNMPWrapper) SetOptions(fns ...func(*gosnmp.GoSNMP)) {
	for _, fn := range fns {
		fn(g.c)
	}
}

func (g *GoSNMPWrapper) target() string {
	return g.c.Transport + "://" + net.JoinHostPort(g.c.Target, strconv.Itoa(int(g.c.Port)))
}

func (g *GoSNMPWrapper) Connect() error {
	if err := g.c.Connect(); err != nil {
		return &TransportError{Target: g.target(), Err: fmt.Errorf("connecting: %w", err)}
	}
	return nil
}

func (g *GoSNMPWrapper) Close() error {
	if g.c.Conn == nil {
		return nil
	}
	return g.c.Conn.Close()
}

func (g *GoSNMPWrapper) Send(ctx context.Context, d *synthesizer.Descriptor) (*Result, error) {
	pdus, err := PDUs(d)
	if err != nil {
		return nil, err
	}
	g.c.Context = ctx
	g.logger.Debug("Sending trap", "trap", d.Name, "oid", d.OID, "inform", g.inform, "bindings", len(d.Bindings))
	st := time.Now()
	packet, err := g.c.SendTrap(gosnmp.SnmpTrap{Variables: pdus, IsInform: g.inform})
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("send cancelled after %s (possible timeout): %w", time.Since(st), ctx.Err())
		}
		return nil, &TransportError{Target: g.target(), Err: err}
	}
	g.logger.Debug("Trap sent", "trap", d.Name, "duration_seconds", time.Since(st).Seconds())

	if !g.inform || packet == nil {
		return &Result{Bindings: pdus}, nil
	}
	if packet.Error != gosnmp.NoError {
		pe := &ProtocolError{Status: packet.Error, Index: packet.ErrorIndex}
		// The error index is 1-based and counts sysUpTime.0 first.
		if i := int(packet.ErrorIndex) - 1; i >= 0 && i < len(packet.Variables) {
			pe.Name = packet.Variables[i].Name
		}
		return nil, pe
	}
	return &Result{Bindings: packet.Variables}, nil
}
