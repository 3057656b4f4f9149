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
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/promslog"
	"github.com/prometheus/common/promslog/flag"
	"github.com/prometheus/common/version"

	"github.com/cisco-cx/snmptrap-gen/catalog"
	"github.com/cisco-cx/snmptrap-gen/config"
	"github.com/cisco-cx/snmptrap-gen/registry"
	"github.com/cisco-cx/snmptrap-gen/sender"
	"github.com/cisco-cx/snmptrap-gen/synthesizer"
)

var (
	configFile   = kingpin.Flag("config.file", "Path to configuration file. Built-in defaults are used when unset.").Default("").String()
	passphrase   = kingpin.Flag("config.passphrase", "Passphrase for "+config.EncryptedPrefix+" secrets in the configuration file.").Envar("SNMPTRAP_GEN_PASSPHRASE").Default("").String()
	catalogFiles = kingpin.Flag("catalog.file", "Path to a trap catalog file, may be repeated.").Default("catalog.yml").Strings()
	host         = kingpin.Flag("ipv6-host", "Host to send traps to.").Short('6').Default("::1").String()
	port         = kingpin.Flag("port", "Port to send traps to.").Short('p').Default("162").Uint16()
	transport    = kingpin.Flag("transport", "Transport to send traps over.").Default("udp").Enum("udp", "udp4", "udp6", "tcp", "tcp4", "tcp6")
	srcAddress   = kingpin.Flag("snmp.source-address", "Source address to send traps from in the format 'address:port'.").Default("").String()
	dryRun       = kingpin.Flag("dry-run", "Synthesize and print traps without sending them.").Bool()
	debugSNMP    = kingpin.Flag("snmp.debug", "Log SNMP packets at debug level.").Bool()
	metricsFile  = kingpin.Flag("metrics.textfile", "Write run metrics in the textfile collector format to this path.").Default("").String()

	sendAllCmd = kingpin.Command("send-all-traps-from-mib", "Send every trap of a MIB module.")
	sendAllMib = sendAllCmd.Arg("mib-name", "MIB module name.").Required().String()

	sendNameCmd  = kingpin.Command("send-trap-name", "Send one trap by name.")
	sendNameMib  = sendNameCmd.Arg("mib-name", "MIB module name.").Required().String()
	sendNameTrap = sendNameCmd.Arg("trap-name", "Notification name.").Required().String()

	sendOIDCmd = kingpin.Command("send-trap-oid", "Send one trap by numeric OID.")
	sendOID    = sendOIDCmd.Arg("trap-oid", "Notification OID.").Required().String()

	listCmd = kingpin.Command("list-traps", "List the traps of a MIB module with the values they would carry.")
	listMib = listCmd.Arg("mib-name", "MIB module name.").Required().String()
)

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig
	if *configFile != "" {
		c, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		cfg = *c
	}
	if err := cfg.DecryptSecrets(*passphrase); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newSender(logger *slog.Logger, cfg *config.Config) (sender.Sender, error) {
	if *dryRun {
		// Dry runs record the traps instead of sending them.
		return sender.NewMockSender(), nil
	}
	g, err := sender.NewGoSNMP(logger, target(*transport, *host, *port), *srcAddress, *debugSNMP)
	if err != nil {
		return nil, err
	}
	g.SetOptions(cfg.ConfigureSNMP)
	g.SetInform(cfg.Inform)
	return g, nil
}

func run(ctx context.Context, logger *slog.Logger, cmd string) (int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return 0, err
	}
	cat, err := catalog.Load(logger, *catalogFiles...)
	if err != nil {
		return 0, fmt.Errorf("error loading catalog: %w", err)
	}
	reg := registry.New(cfg.TypeValues)

	promRegistry := prometheus.NewRegistry()
	r := &runner{
		synth:   synthesizer.New(cat, reg, synthesizer.NewDiagnostics(), logger),
		reg:     reg,
		dryRun:  *dryRun,
		out:     os.Stdout,
		logger:  logger,
		metrics: NewMetrics(promRegistry),
	}
	defer func() {
		if *metricsFile == "" {
			return
		}
		if err := prometheus.WriteToTextfile(*metricsFile, promRegistry); err != nil {
			logger.Error("Error writing metrics", "file", *metricsFile, "err", err)
		}
	}()
	defer r.reportTypes()

	if cmd == listCmd.FullCommand() {
		return r.listTraps(*listMib)
	}

	if r.sender, err = newSender(logger, cfg); err != nil {
		return 0, err
	}
	r.instrument()
	if err := r.sender.Connect(); err != nil {
		return 0, err
	}
	defer r.sender.Close()

	switch cmd {
	case sendAllCmd.FullCommand():
		return r.sendAll(ctx, *sendAllMib)
	case sendNameCmd.FullCommand():
		err = r.sendOne(ctx, func() (*synthesizer.Descriptor, error) {
			return r.synth.LookupByName(*sendNameMib, *sendNameTrap)
		})
	case sendOIDCmd.FullCommand():
		oid, perr := parseTrapOID(*sendOID)
		if perr != nil {
			return 0, perr
		}
		err = r.sendOne(ctx, func() (*synthesizer.Descriptor, error) {
			return r.synth.LookupByOID(oid)
		})
	}
	if err != nil {
		return 1, nil
	}
	return 0, nil
}

func main() {
	promslogConfig := &promslog.Config{}
	flag.AddFlags(kingpin.CommandLine, promslogConfig)
	kingpin.Version(version.Print("snmptrap-gen"))
	kingpin.HelpFlag.Short('h')
	cmd := kingpin.Parse()
	logger := promslog.New(promslogConfig)

	logger.Info("Starting snmptrap-gen", "version", version.Info())
	logger.Info("operational information", "build_context", version.BuildContext())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed, err := run(ctx, logger, cmd)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Interrupted")
		} else {
			logger.Error("Error running snmptrap-gen", "err", err)
		}
		stop()
		os.Exit(1)
	}
	if failed > 0 {
		stop()
		os.Exit(1)
	}
}
