package config_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"frpg2-server/internal/config"

	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func testPEMKey(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 512)
	require.NoError(t, err)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return string(pem.EncodeToMemory(block))
}

func TestLoadConfigValid(t *testing.T) {
	pemKey := testPEMKey(t)
	path := writeSettings(t, `
server_ip = "127.0.0.1"
login_port = 50000
auth_port = 50001
game_port = 50002
rsa_private_key = '''
`+pemKey+`
'''
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.ServerIP)
	require.Equal(t, 50000, cfg.LoginPort)
	require.Equal(t, 50001, cfg.AuthPort)
	require.Equal(t, 50002, cfg.GamePort)

	key, err := cfg.ParseRSAPrivateKey()
	require.NoError(t, err)
	require.NotNil(t, key)
}

func TestLoadConfigMissingKeyIsFatal(t *testing.T) {
	path := writeSettings(t, `
login_port = 50000
auth_port = 50001
game_port = 50002
rsa_private_key = "not a real key"
`)

	_, err := config.LoadConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "server_ip")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}
