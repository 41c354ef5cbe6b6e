package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shiptrack.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestMissingFileGivesDefaults(t *testing.T) {
	t.Setenv(EnvBaseURL, "")

	conf, err := LoadFromTomlFileAndValidate(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", conf.Client.BaseURL)
	assert.Equal(t, 8000, conf.Server.ListenPort)
	assert.Equal(t, "session_id", conf.Server.Session.Cookie.Name)
	assert.Len(t, conf.Server.Roles, 4)
	assert.True(t, conf.SecretWasGenerated())
	assert.GreaterOrEqual(t, len(conf.Server.Session.Cookie.Secret), 16)
}

func TestFileOverridesDefaults(t *testing.T) {
	t.Setenv(EnvBaseURL, "")

	path := writeConfig(t, `
[client]
base_url = "https://track.example.com/api/"
state_dir = "/tmp/shiptrack-state"

[server]
port = 9090
password = "hunter22"

[server.session.cookie]
secret = "0123456789abcdef-long-enough"

[server.roles.auditor]
label = "Auditor"
permissions = ["track"]
`)

	conf, err := LoadFromTomlFileAndValidate(path)
	require.NoError(t, err)

	assert.Equal(t, "https://track.example.com/api", conf.Client.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, filepath.Join("/tmp/shiptrack-state", "cookies.json"), conf.CookieJarPath())
	assert.Equal(t, 9090, conf.Server.ListenPort)
	assert.Equal(t, "hunter22", conf.Server.Password)
	assert.False(t, conf.SecretWasGenerated())

	require.Len(t, conf.Server.Roles, 1)
	assert.Equal(t, "Auditor", conf.Server.Roles["auditor"].Label)
}

func TestEnvOverridesBaseURL(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://10.0.0.5:8000/api")

	path := writeConfig(t, `
[client]
base_url = "https://track.example.com/api"
`)

	conf, err := LoadFromTomlFileAndValidate(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000/api", conf.Client.BaseURL)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv(EnvBaseURL, "")

	tests := map[string]string{
		"relative base url": `
[client]
base_url = "/api"`,
		"bad scheme": `
[client]
base_url = "ftp://example.com"`,
		"bad log level": `
[client]
log_level = "chatty"`,
		"port out of range": `
[server]
port = 70000`,
		"short secret": `
[server.session.cookie]
secret = "short"`,
		"role without label": `
[server.roles.ghost]
permissions = ["track"]`,
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromTomlFileAndValidate(writeConfig(t, contents))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestUnparseableFile(t *testing.T) {
	t.Setenv(EnvBaseURL, "")

	_, err := LoadFromTomlFileAndValidate(writeConfig(t, "this is = = not toml"))
	assert.Error(t, err)
}

func TestDefaultRolesMatchDemoAccounts(t *testing.T) {
	roles := DefaultRoles()

	assert.Equal(t, []string{"track"}, roles["viewer"].Permissions)
	assert.Contains(t, roles["admin"].Permissions, "admin")
	assert.Equal(t, "Freight Forwarder", roles["freight_forwarder"].Label)
}
