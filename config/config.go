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

package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/gosnmp/gosnmp"
	"gopkg.in/yaml.v2"

	"github.com/cisco-cx/snmptrap-gen/registry"
)

func LoadFile(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	err = yaml.UnmarshalStrict(content, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	DefaultAuth = Auth{
		Community:     "public",
		SecurityLevel: "authPriv",
		Username:      "user-sha-aes128",
		Password:      "authkey1",
		AuthProtocol:  "SHA",
		PrivProtocol:  "AES",
		PrivPassword:  "privkey1",
		EngineID:      "8000000001020304",
		EngineBoots:   1,
	}
	DefaultTrapParams = TrapParams{
		Version: 3,
		Retries: 3,
		Timeout: time.Second * 5,
		Auth:    DefaultAuth,
	}
	DefaultConfig = Config{
		TrapParams: DefaultTrapParams,
	}
)

var (
	authProtocols = map[string]gosnmp.SnmpV3AuthProtocol{
		"MD5":    gosnmp.MD5,
		"SHA":    gosnmp.SHA,
		"SHA224": gosnmp.SHA224,
		"SHA256": gosnmp.SHA256,
		"SHA384": gosnmp.SHA384,
		"SHA512": gosnmp.SHA512,
	}
	privProtocols = map[string]gosnmp.SnmpV3PrivProtocol{
		"DES":     gosnmp.DES,
		"AES":     gosnmp.AES,
		"AES192":  gosnmp.AES192,
		"AES256":  gosnmp.AES256,
		"AES192C": gosnmp.AES192C,
		"AES256C": gosnmp.AES256C,
	}
)

// Config for snmptrap-gen.
type Config struct {
	TrapParams `yaml:",inline"`
	// TypeValues overrides or extends the built-in semantic type values.
	TypeValues map[string]registry.Value `yaml:"type_values,omitempty"`
}

type TrapParams struct {
	Version int           `yaml:"version,omitempty"`
	Retries int           `yaml:"retries,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Inform  bool          `yaml:"inform,omitempty"`
	Auth    Auth          `yaml:"auth,omitempty"`
}

func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	*c = DefaultConfig
	type plain Config
	if err := unmarshal((*plain)(c)); err != nil {
		return err
	}
	for name := range c.TypeValues {
		if name == "" {
			return fmt.Errorf("type_values contains an empty type name")
		}
	}
	return c.TrapParams.validate()
}

func (c TrapParams) validate() error {
	if c.Version < 2 || c.Version > 3 {
		return fmt.Errorf("SNMP version must be 2 or 3 for traps. Got: %d", c.Version)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.Version == 3 {
		switch c.Auth.SecurityLevel {
		case "authPriv":
			if c.Auth.PrivPassword == "" {
				return fmt.Errorf("priv password is missing, required for SNMPv3 with priv")
			}
			if _, ok := privProtocols[c.Auth.PrivProtocol]; !ok {
				return fmt.Errorf("priv protocol must be DES, AES, AES192, AES256, AES192C or AES256C")
			}
			fallthrough
		case "authNoPriv":
			if c.Auth.Password == "" {
				return fmt.Errorf("auth password is missing, required for SNMPv3 with auth")
			}
			if _, ok := authProtocols[c.Auth.AuthProtocol]; !ok {
				return fmt.Errorf("auth protocol must be MD5, SHA, SHA224, SHA256, SHA384 or SHA512")
			}
			fallthrough
		case "noAuthNoPriv":
			if c.Auth.Username == "" {
				return fmt.Errorf("auth username is missing, required for SNMPv3")
			}
		default:
			return fmt.Errorf("security level must be one of authPriv, authNoPriv or noAuthNoPriv")
		}
		id, err := hex.DecodeString(c.Auth.EngineID)
		if err != nil {
			return fmt.Errorf("engine_id must be hex encoded: %w", err)
		}
		// RFC 3411 SnmpEngineID is 5 to 32 octets long.
		if len(id) < 5 || len(id) > 32 {
			return fmt.Errorf("engine_id must be 5 to 32 octets long. Got: %d", len(id))
		}
	}
	return nil
}

// ConfigureSNMP sets the version, timeout and auth settings.
func (c TrapParams) ConfigureSNMP(g *gosnmp.GoSNMP) {
	switch c.Version {
	case 2:
		g.Version = gosnmp.Version2c
	case 3:
		g.Version = gosnmp.Version3
	}
	g.Retries = c.Retries
	g.Timeout = c.Timeout
	g.Community = string(c.Auth.Community)
	g.ContextName = c.Auth.ContextName
	if c.Version != 3 {
		return
	}

	// v3 security settings. The sender of a notification is the
	// authoritative engine.
	engineID, _ := hex.DecodeString(c.Auth.EngineID)
	g.SecurityModel = gosnmp.UserSecurityModel
	usm := &gosnmp.UsmSecurityParameters{
		UserName:                 c.Auth.Username,
		AuthoritativeEngineID:    string(engineID),
		AuthoritativeEngineBoots: c.Auth.EngineBoots,
		AuthoritativeEngineTime:  c.Auth.EngineTime,
	}
	auth, priv := false, false
	switch c.Auth.SecurityLevel {
	case "noAuthNoPriv":
		g.MsgFlags = gosnmp.NoAuthNoPriv
	case "authNoPriv":
		g.MsgFlags = gosnmp.AuthNoPriv
		auth = true
	case "authPriv":
		g.MsgFlags = gosnmp.AuthPriv
		auth = true
		priv = true
	}
	if auth {
		usm.AuthenticationPassphrase = string(c.Auth.Password)
		usm.AuthenticationProtocol = authProtocols[c.Auth.AuthProtocol]
	}
	if priv {
		usm.PrivacyPassphrase = string(c.Auth.PrivPassword)
		usm.PrivacyProtocol = privProtocols[c.Auth.PrivProtocol]
	}
	g.SecurityParameters = usm
}

type Auth struct {
	Community     Secret `yaml:"community,omitempty"`
	SecurityLevel string `yaml:"security_level,omitempty"`
	Username      string `yaml:"username,omitempty"`
	Password      Secret `yaml:"password,omitempty"`
	AuthProtocol  string `yaml:"auth_protocol,omitempty"`
	PrivProtocol  string `yaml:"priv_protocol,omitempty"`
	PrivPassword  Secret `yaml:"priv_password,omitempty"`
	ContextName   string `yaml:"context_name,omitempty"`
	// EngineID is the hex encoded authoritative engine ID of the sender.
	EngineID    string `yaml:"engine_id,omitempty"`
	EngineBoots uint32 `yaml:"engine_boots,omitempty"`
	EngineTime  uint32 `yaml:"engine_time,omitempty"`
}
