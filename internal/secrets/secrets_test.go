package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squadron/internal/instance"
	"squadron/internal/render"
)

func TestReplaceLine(t *testing.T) {
	content := "IP=0.0.0.0\nPort=21114\nPassword=\nQueueLimit=-1\n"

	replaced, err := ReplaceLine(content, "Password", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "IP=0.0.0.0\nPort=21114\nPassword=hunter2\nQueueLimit=-1\n", replaced)
}

func TestReplaceLineMissingKey(t *testing.T) {
	_, err := ReplaceLine("IP=0.0.0.0\n", "Password", "hunter2")
	assert.Error(t, err)
}

func TestReplaceLineDoesNotMatchPrefixes(t *testing.T) {
	content := "PasswordHint=none\nPassword=\n"
	replaced, err := ReplaceLine(content, "Password", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "PasswordHint=none\nPassword=s3cret\n", replaced)
}

func TestFileStoreTrimsTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	require.NoError(t, os.WriteFile(path, []byte("hunter2\n"), 0600))

	data, err := FileStore{}.Lookup(path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(data))
}

func TestInjectionsForPrefersFileReferences(t *testing.T) {
	cfg := instance.ServerConfig{
		Server: instance.ServerSettings{Password: "inline", PasswordFile: "/run/cred/server"},
		Rcon: instance.RconSettings{
			PasswordFile: "/run/cred/rcon",
			QueueLimit:   -1, KeepAlive: 30,
		},
		License:     "inline-license",
		LicenseFile: "/run/cred/license",
	}
	inst, err := instance.NewInstance("alpha", true, 7787, 27165, 21114, 15000,
		"/tmp/a", "/tmp/b", nil, cfg)
	require.NoError(t, err)

	injections := InjectionsFor(inst)
	require.Len(t, injections, 3)

	byName := map[string]Injection{}
	for _, inj := range injections {
		byName[inj.Name] = inj
	}
	assert.Equal(t, render.FileServer, byName["server password"].File)
	assert.Equal(t, "ServerPassword", byName["server password"].Key)
	assert.Equal(t, render.FileRcon, byName["rcon password"].File)
	assert.True(t, byName["license"].WholeFile)
}

func TestInjectionsForSkipsInlineOnlyFields(t *testing.T) {
	cfg := instance.ServerConfig{
		Server: instance.ServerSettings{Password: "inline"},
		Rcon:   instance.RconSettings{QueueLimit: -1, KeepAlive: 30},
	}
	inst, err := instance.NewInstance("alpha", true, 7787, 27165, 21114, 15000,
		"/tmp/a", "/tmp/b", nil, cfg)
	require.NoError(t, err)

	assert.Empty(t, InjectionsFor(inst))
}

func TestApplyRewritesSingleLine(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, render.FileRcon)
	require.NoError(t, os.WriteFile(target, []byte("IP=0.0.0.0\nPassword=\n"), 0600))

	credential := filepath.Join(dir, "rcon-password")
	require.NoError(t, os.WriteFile(credential, []byte("s3cret\n"), 0600))

	resolver := NewResolver(FileStore{})
	err := resolver.Apply(target, Injection{
		Name: "rcon password", File: render.FileRcon, Key: "Password", Ref: credential,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "IP=0.0.0.0\nPassword=s3cret\n", string(content))
}

func TestApplyWholeFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, render.FileLicense)
	require.NoError(t, os.WriteFile(target, []byte(""), 0600))

	credential := filepath.Join(dir, "license")
	require.NoError(t, os.WriteFile(credential, []byte("LICENSE-TOKEN"), 0600))

	resolver := NewResolver(FileStore{})
	err := resolver.Apply(target, Injection{
		Name: "license", File: render.FileLicense, Ref: credential, WholeFile: true,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "LICENSE-TOKEN\n", string(content))
}

func TestApplyMissingCredential(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, render.FileRcon)
	require.NoError(t, os.WriteFile(target, []byte("Password=\n"), 0600))

	resolver := NewResolver(FileStore{})
	err := resolver.Apply(target, Injection{
		Name: "rcon password", Key: "Password", Ref: filepath.Join(dir, "missing"),
	})
	assert.Error(t, err)

	// The target must be untouched on failure.
	content, _ := os.ReadFile(target)
	assert.Equal(t, "Password=\n", string(content))
}
