package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestReadConfigYAML(t *testing.T) {
	t.Setenv("SPORE_TEST_PRIVATE_KEY", "k")
	dir := t.TempDir()
	p := writeFile(t, dir, "config.yaml", `
version: 0.1.0
spec: ./api.json
base_url: http://api
account_id: "42"
application_key: app
private_key: "{{ .ENV.SPORE_TEST_PRIVATE_KEY }}"
user_email: me@example.com
timeout: 5s
retries: 2
headers:
  - name: X-Client
    value: spore
cookies:
  - name: sid
    value: abc
    path: /
middlewares:
  - kind: add_header
    args:
      header: X-Trace
      value: "1"
`)
	cfg, err := ReadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "./api.json", cfg.Spec)
	assert.Equal(t, "k", cfg.PrivateKey)
	assert.Equal(t, uint(2), cfg.Retries)
	timeout, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
	require.Len(t, cfg.Headers, 1)
	assert.Equal(t, "X-Client", cfg.Headers[0].Name)
	require.Len(t, cfg.Cookies, 1)
	assert.Equal(t, "sid", cfg.Cookies[0].Name)
	require.Len(t, cfg.Middlewares, 1)
	assert.Equal(t, "add_header", cfg.Middlewares[0].Kind)
}

func TestReadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.toml", `
version = "0.1.0"
spec = "api.yaml"
format = "yaml"

[[headers]]
name = "X-Client"
value = "spore"
`)
	cfg, err := ReadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "api.yaml", cfg.Spec)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "spore", cfg.Headers[0].Value)
}

func TestReadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no spec", "base_url: http://api\n"},
		{"bad base url", "spec: a.json\nbase_url: not a url\n"},
		{"key without private key", "spec: a.json\napplication_key: app\n"},
		{"bad email", "spec: a.json\nuser_email: nope\n"},
		{"bad header", "spec: a.json\nheaders:\n  - name: Bad Header\n"},
		{"cookie without name", "spec: a.json\ncookies:\n  - value: x\n"},
		{"bad timeout", "spec: a.json\ntimeout: soon\n"},
		{"bad version constraint", "spec: a.json\nspec_version: whatever\n"},
		{"bad cookie attribute", "spec: a.json\ncookie_domain_attribute: host\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "config.yaml", tt.content)
			_, err := ReadConfig(p)
			assert.Error(t, err)
		})
	}

	p := writeFile(t, t.TempDir(), "config.yaml", "openapi: ./openapi.yaml\n")
	_, err := ReadConfig(p)
	assert.NoError(t, err)
}

func TestWriteConfigRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "nested", name)
			in := &Config{
				Version:   "0.1.0",
				Spec:      "api.json",
				AccountID: "42",
				Token:     "tok",
				Headers:   []HeaderConfig{{Name: "X-A", Value: "1"}},
			}
			require.NoError(t, in.WriteConfig(p))
			info, err := os.Stat(p)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			out, err := ReadConfig(p)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
	assert.Error(t, (&Config{}).WriteConfig(""))
}

func TestMorphBaseURL(t *testing.T) {
	assert.Equal(t, "", MorphBaseURL(""))
	assert.Equal(t, "https://api.example.com", MorphBaseURL("api.example.com/"))
	assert.Equal(t, "http://localhost:8080", MorphBaseURL("http://localhost:8080//"))
}
