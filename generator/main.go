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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/common/promslog"
	"github.com/prometheus/common/promslog/flag"
	"gopkg.in/yaml.v2"

	"github.com/cisco-cx/snmptrap-gen/catalog"
)

// Generate a trap catalog based on the configuration.
func generateCatalog(nodes *Node, nameToNode map[string]*Node, cfg *Config, outputPath string, logger *slog.Logger) error {
	file, err := buildCatalogFile(nodes, nameToNode, cfg, logger)
	if err != nil {
		return err
	}

	// Make sure the output loads, so a broken catalog never reaches disk.
	if _, err := catalog.New(logger, file); err != nil {
		return fmt.Errorf("generated catalog does not load: %w", err)
	}

	out, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("error marshaling yml: %s", err)
	}

	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("error writing to output file: %s", err)
	}
	logger.Info("Catalog written", "file", outputPath)
	return nil
}

func buildCatalogFile(nodes *Node, nameToNode map[string]*Node, cfg *Config, logger *slog.Logger) (*catalog.File, error) {
	names := make([]string, 0, len(cfg.Modules))
	for name := range cfg.Modules {
		names = append(names, name)
	}
	sort.Strings(names)

	file := &catalog.File{Modules: map[string][]*catalog.Node{}}
	for _, name := range names {
		logger.Info("Generating catalog module", "module", name)
		mcfg := cfg.Modules[name]
		if mcfg == nil {
			mcfg = &ModuleConfig{Overrides: map[string]Override{}}
		}
		mod, err := generateCatalogModule(name, mcfg, nodes, nameToNode, logger)
		if err != nil {
			return nil, fmt.Errorf("error generating module %s: %w", name, err)
		}
		notifications := 0
		for _, n := range mod {
			if n.Kind != catalog.KindNotification {
				continue
			}
			notifications++
			for _, ref := range n.Objects {
				other, _, found := strings.Cut(ref, "::")
				if _, ok := cfg.Modules[other]; found && !ok {
					logger.Warn("Notification object lives in a module that is not generated", "notification", n.Name, "object", ref)
				}
			}
		}
		logger.Info("Generated catalog module", "module", name, "nodes", len(mod), "notifications", notifications)
		file.Modules[name] = mod
	}
	addMissingAncestors(file, names, nodes, logger)
	return file, nil
}

func loadGeneratorConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading yml config: %s", err)
	}
	cfg := &Config{}
	if err := yaml.UnmarshalStrict(content, cfg); err != nil {
		return nil, fmt.Errorf("error parsing yml config: %s", err)
	}
	return cfg, nil
}

var (
	failOnParseErrors  = kingpin.Flag("fail-on-parse-errors", "Exit with a non-zero status if there are MIB parsing errors").Default("true").Bool()
	userMibsDir        = kingpin.Flag("mibs-dir", "Paths to mibs directory").Default("").Short('m').Strings()
	generateCommand    = kingpin.Command("generate", "Generate catalog.yml from generator.yml")
	generatorYmlPath   = generateCommand.Flag("generator-path", "Path to the input generator.yml file").Default("generator.yml").Short('g').String()
	outputPath         = generateCommand.Flag("output-path", "Path to write the catalog").Default("catalog.yml").Short('o').String()
	parseErrorsCommand = kingpin.Command("parse_errors", "Debug: Print the parse errors output by NetSNMP")
	dumpCommand        = kingpin.Command("dump", "Debug: Dump the parsed and prepared MIBs")
)

func main() {
	promslogConfig := &promslog.Config{}
	flag.AddFlags(kingpin.CommandLine, promslogConfig)
	kingpin.HelpFlag.Short('h')
	command := kingpin.Parse()
	logger := promslog.New(promslogConfig)

	if err := run(command, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(command string, logger *slog.Logger) error {
	// Drop the empty default so net-snmp falls back to its own search path.
	dirs := (*userMibsDir)[:0]
	for _, d := range *userMibsDir {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	*userMibsDir = dirs

	parseOutput, err := initSNMP(logger)
	if err != nil {
		return fmt.Errorf("error initializing netsnmp: %w", err)
	}
	parseOutput = strings.TrimSpace(parseOutput)
	parseErrors := len(parseOutput) != 0
	if parseErrors && command != parseErrorsCommand.FullCommand() {
		logger.Warn("NetSNMP reported parse error(s)", "errors", len(strings.Split(parseOutput, "\n")))
	}

	nodes := getMIBTree()
	nameToNode := prepareTree(nodes, logger)

	switch command {
	case generateCommand.FullCommand():
		if *failOnParseErrors && parseErrors {
			return fmt.Errorf("failing on reported parse error(s), use 'generator parse_errors' command to debug")
		}
		cfg, err := loadGeneratorConfig(*generatorYmlPath)
		if err != nil {
			return err
		}
		outputPath, err := filepath.Abs(*outputPath)
		if err != nil {
			return fmt.Errorf("unable to determine absolute path for output: %w", err)
		}
		return generateCatalog(nodes, nameToNode, cfg, outputPath, logger)
	case parseErrorsCommand.FullCommand():
		if parseErrors {
			fmt.Printf("%s\n", parseOutput)
		} else {
			logger.Info("No parse errors")
		}
	case dumpCommand.FullCommand():
		walkNode(nodes, func(n *Node) {
			t := n.Type
			if n.TextualConvention != "" {
				t = fmt.Sprintf("%s(%s)", n.TextualConvention, n.Type)
			}
			fmt.Printf("%s %s %s %q %q %v %v %s\n", n.Oid, n.Module+"::"+n.Label, t, n.Hint, n.Units, n.Varbinds, n.EnumValues, n.Description)
		})
	}
	return nil
}
