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

	"github.com/cisco-cx/snmptrap-gen/catalog"
)

// The generator config.
type Config struct {
	Modules map[string]*ModuleConfig `yaml:"modules"`
}

type ModuleConfig struct {
	// Notifications restricts the emitted notifications. Empty means all of them.
	Notifications []string            `yaml:"notifications,omitempty"`
	Overrides     map[string]Override `yaml:"overrides,omitempty"`
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (c *ModuleConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain ModuleConfig
	if err := unmarshal((*plain)(c)); err != nil {
		return err
	}
	if c.Overrides == nil {
		c.Overrides = map[string]Override{}
	}
	return nil
}

// Override replaces what the MIB says about an object.
type Override struct {
	Ignore bool             `yaml:"ignore,omitempty"`
	Base   catalog.BaseType `yaml:"base,omitempty"`
	Type   string           `yaml:"type,omitempty"`
	Hint   string           `yaml:"hint,omitempty"`
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (c *Override) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Override
	if err := unmarshal((*plain)(c)); err != nil {
		return err
	}
	if c.Base != "" && !catalog.ValidBaseType(c.Base) {
		return fmt.Errorf("invalid base type override '%s'", c.Base)
	}
	return nil
}
