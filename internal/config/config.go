// Package config loads the server's Settings file. The original emulator
// loads a TOML file named Settings from the working directory via Rust's
// config::File::with_name("Settings") (dks3_server/src/main.rs); this
// rebuilds that against github.com/BurntSushi/toml instead of the
// teacher's hand-rolled INI parser, since the wire format here is TOML,
// not INI.
package config

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the server's full configuration, matching spec.md §6's
// required fields one-to-one.
type Config struct {
	ServerIP       string `toml:"server_ip"`
	LoginPort      int    `toml:"login_port"`
	AuthPort       int    `toml:"auth_port"`
	GamePort       int    `toml:"game_port"`
	RSAPrivateKey  string `toml:"rsa_private_key"`
}

// LoadConfig reads and parses filename, failing with a descriptive error
// if the file is missing or any required key is absent — the same
// fail-fast posture the teacher's LoadConfig had for INI.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(filename, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ServerIP == "" {
		return fmt.Errorf("missing required key: server_ip")
	}
	if c.LoginPort == 0 {
		return fmt.Errorf("missing required key: login_port")
	}
	if c.AuthPort == 0 {
		return fmt.Errorf("missing required key: auth_port")
	}
	if c.GamePort == 0 {
		return fmt.Errorf("missing required key: game_port")
	}
	if c.RSAPrivateKey == "" {
		return fmt.Errorf("missing required key: rsa_private_key")
	}
	return nil
}

// ParseRSAPrivateKey decodes the PEM-encoded key from the config into an
// *rsa.PrivateKey, accepting both PKCS1 and PKCS8 encodings since the key
// generation tooling that produced the original fixtures (tools/genrsa,
// explicitly out of scope here) isn't pinned to one.
func (c *Config) ParseRSAPrivateKey() (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(c.RSAPrivateKey))
	if block == nil {
		return nil, fmt.Errorf("rsa_private_key is not valid PEM")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("rsa_private_key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("rsa_private_key is not an RSA key")
	}
	return rsaKey, nil
}
