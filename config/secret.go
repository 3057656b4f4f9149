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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// EncryptedPrefix marks a secret stored AES-GCM encrypted and base64
// encoded in the configuration file.
const EncryptedPrefix = "aesgcm:"

// Secret is a string that must not be revealed on marshaling.
type Secret string

// Hack for writing a configuration with the secrets.
var (
	DoNotHideSecrets = false
)

// MarshalYAML implements the yaml.Marshaler interface.
func (s Secret) MarshalYAML() (interface{}, error) {
	if DoNotHideSecrets {
		return string(s), nil
	}
	if s != "" {
		return "<secret>", nil
	}
	return nil, nil
}

// Encrypted reports whether s still holds an encrypted value.
func (s Secret) Encrypted() bool {
	return strings.HasPrefix(string(s), EncryptedPrefix)
}

// DecryptSecrets replaces every encrypted secret of the auth section with
// its plain text.
func (c *Config) DecryptSecrets(passphrase string) error {
	for name, s := range map[string]*Secret{
		"community":     &c.Auth.Community,
		"password":      &c.Auth.Password,
		"priv_password": &c.Auth.PrivPassword,
	} {
		if !s.Encrypted() {
			continue
		}
		plain, err := DecryptSecret(string(*s), passphrase)
		if err != nil {
			return fmt.Errorf("error decrypting %s: %w", name, err)
		}
		*s = Secret(plain)
	}
	return nil
}

func passphraseToAesKey(passphrase string) []byte {
	key := sha256.Sum256([]byte(passphrase))
	return key[:]
}

func newGCM(passphrase string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(passphraseToAesKey(passphrase))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptSecret encrypts data and returns it in the form accepted by
// DecryptSecret.
func EncryptSecret(data, passphrase string) (string, error) {
	gcm, err := newGCM(passphrase)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(data), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptSecret decrypts a value produced by EncryptSecret. The prefix is
// optional.
func DecryptSecret(value, passphrase string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("base64 decode error: %w", err)
	}
	gcm, err := newGCM(passphrase)
	if err != nil {
		return "", err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("AesGcm cipher size of %d too short (should be at least %d)", len(data), nonceSize)
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
