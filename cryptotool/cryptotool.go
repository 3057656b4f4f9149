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
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cisco-cx/snmptrap-gen/config"
)

// run executes the tool with args, writing the result to w.
func run(w io.Writer, args []string) error {
	app := kingpin.New("cryptotool", "Encrypts and decrypts secrets for the snmptrap-gen configuration file.")
	passphrase := app.Flag("passphrase", "Passphrase the secrets are encrypted with.").Envar("SNMPTRAP_GEN_PASSPHRASE").Required().String()
	encryptCmd := app.Command("encrypt", "Encrypt a secret, printing a value usable in the configuration file.")
	encryptData := encryptCmd.Arg("data", "Secret to encrypt.").Required().String()
	decryptCmd := app.Command("decrypt", "Decrypt a secret from the configuration file.")
	decryptData := decryptCmd.Arg("data", "Encrypted secret, with or without the "+config.EncryptedPrefix+" prefix.").Required().String()

	cmd, err := app.Parse(args)
	if err != nil {
		return err
	}
	switch cmd {
	case encryptCmd.FullCommand():
		enc, err := config.EncryptSecret(*encryptData, *passphrase)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, enc)
	case decryptCmd.FullCommand():
		plain, err := config.DecryptSecret(strings.TrimSpace(*decryptData), *passphrase)
		if err != nil {
			return fmt.Errorf("decrypt error: %w", err)
		}
		fmt.Fprintln(w, plain)
	}
	return nil
}

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
