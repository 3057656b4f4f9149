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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/cisco-cx/snmptrap-gen/catalog"
	"github.com/cisco-cx/snmptrap-gen/sender"
	"github.com/cisco-cx/snmptrap-gen/synthesizer"
)

// runner drives the synthesizer and the sender for one invocation.
type runner struct {
	synth   *synthesizer.Synthesizer
	reg     synthesizer.Registry
	sender  sender.Sender
	dryRun  bool
	out     io.Writer
	logger  *slog.Logger
	metrics Metrics
}

func (r *runner) instrument() {
	r.sender.SetOptions(func(g *gosnmp.GoSNMP) {
		var sent time.Time
		g.OnSent = func(*gosnmp.GoSNMP) {
			sent = time.Now()
			r.metrics.SNMPPackets.Inc()
		}
		g.OnRecv = func(*gosnmp.GoSNMP) {
			r.metrics.SNMPDuration.Observe(time.Since(sent).Seconds())
		}
		g.OnRetry = func(*gosnmp.GoSNMP) {
			r.metrics.SNMPRetries.Inc()
		}
	})
}

// sendAll sends every trap of module, continuing past failures. It returns
// the number of failed traps.
func (r *runner) sendAll(ctx context.Context, module string) (int, error) {
	outcomes, err := r.synth.SynthesizeAll(module)
	if err != nil {
		return 0, err
	}
	var sent, failed int
	for _, o := range outcomes {
		if ctx.Err() != nil {
			return failed, ctx.Err()
		}
		if o.Err != nil {
			r.synthesisFailed(o.Err)
			failed++
			continue
		}
		r.metrics.TrapsSynthesized.Inc()
		if err := r.send(ctx, o.Descriptor); err != nil {
			failed++
			continue
		}
		sent++
	}
	fmt.Fprintf(r.out, "%s: %d traps, %d sent, %d failed\n", module, len(outcomes), sent, failed)
	return failed, nil
}

// sendOne synthesizes and sends a single trap, found by name or OID.
func (r *runner) sendOne(ctx context.Context, lookup func() (*synthesizer.Descriptor, error)) error {
	d, err := lookup()
	if err != nil {
		r.synthesisFailed(err)
		return err
	}
	r.metrics.TrapsSynthesized.Inc()
	return r.send(ctx, d)
}

func (r *runner) send(ctx context.Context, d *synthesizer.Descriptor) error {
	res, err := r.sender.Send(ctx, d)
	if err != nil {
		r.metrics.TrapsFailed.WithLabelValues("send").Inc()
		r.logger.Error("Error sending trap", "trap", d.Name, "oid", d.OID, "err", err)
		var pe *sender.ProtocolError
		if errors.As(err, &pe) {
			fmt.Fprintf(r.out, "FAILED %s (%s): error status %s at index %d\n", trapName(d), d.OID, pe.Status, pe.Index)
		} else {
			fmt.Fprintf(r.out, "FAILED %s (%s): %s\n", trapName(d), d.OID, err)
		}
		return err
	}
	r.metrics.TrapsSent.Inc()
	r.logger.Info("Sent trap", "trap", trapName(d), "oid", d.OID, "bindings", len(d.Bindings), "dry_run", r.dryRun)
	verb := "Sent"
	if r.dryRun {
		verb = "Would send"
	}
	fmt.Fprintf(r.out, "%s %s (%s)\n", verb, trapName(d), d.OID)
	for _, pdu := range res.Bindings {
		fmt.Fprintln(r.out, sender.FormatPDU(pdu))
	}
	return nil
}

func (r *runner) synthesisFailed(err error) {
	r.metrics.TrapsFailed.WithLabelValues("synthesize").Inc()
	for _, v := range synthesizer.Variables(err) {
		r.metrics.SynthesisFailures.WithLabelValues(v.Kind.Error()).Inc()
	}
	r.logger.Error("Error synthesizing trap", "err", err)
	fmt.Fprintf(r.out, "FAILED %s\n", err)
}

// listTraps prints every trap of module with the values it would carry.
// It returns the number of traps that cannot be synthesized.
func (r *runner) listTraps(module string) (int, error) {
	outcomes, err := r.synth.SynthesizeAll(module)
	if err != nil {
		return 0, err
	}
	var failed int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(r.out, "%s FAILED: %s\n", o.OID, o.Err)
			continue
		}
		d := o.Descriptor
		fmt.Fprintf(r.out, "%s %s\n", d.OID, trapName(d))
		for _, b := range d.Bindings {
			fmt.Fprintf(r.out, "  %s %s %s = %s\n", b.OID, b.Name, b.Value.Type, b.Value)
		}
	}
	return failed, nil
}

// reportTypes logs and prints the semantic types seen during the run.
func (r *runner) reportTypes() {
	diag := r.synth.Diagnostics()
	seen := diag.Seen()
	missing := diag.Unregistered(r.reg)
	registered := map[string]string{}
	for _, t := range seen {
		registered[t] = "true"
	}
	for _, t := range missing {
		registered[t] = "false"
	}
	for _, t := range seen {
		r.metrics.SeenTypes.WithLabelValues(t, registered[t]).Set(float64(diag.Count(t)))
	}
	r.logger.Info("Semantic types seen", "types", strings.Join(seen, ","), "unregistered", strings.Join(missing, ","))
	fmt.Fprintf(r.out, "Seen types: %s\n", strings.Join(seen, ", "))
	if len(missing) > 0 {
		fmt.Fprintf(r.out, "Unregistered types: %s\n", strings.Join(missing, ", "))
	}
}

func trapName(d *synthesizer.Descriptor) string {
	if d.Module != "" {
		return d.Module + "::" + d.Name
	}
	return d.Name
}

// target builds the sender target from the host, port and transport flags.
func target(transport, host string, port uint16) string {
	return transport + "://" + net.JoinHostPort(host, strconv.Itoa(int(port)))
}

func parseTrapOID(s string) (catalog.OID, error) {
	oid, err := catalog.ParseOID(s)
	if err != nil {
		return nil, fmt.Errorf("invalid trap OID: %w", err)
	}
	return oid, nil
}
