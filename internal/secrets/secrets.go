// Package secrets maps declared secret references to injection actions on
// already-rendered config files. Secret values exist in memory only between
// resolution and injection and are never logged.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"squadron/internal/instance"
	"squadron/internal/render"
)

// ResolutionError is fatal: the orchestrator aborts before the affected
// file is finalized so a partially-injected secret is never left behind.
// The secret value itself never appears in the message.
type ResolutionError struct {
	Instance string
	Secret   string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("instance %q: resolving secret %q: %v", e.Instance, e.Secret, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Store looks up credential material by reference. Implementations must
// never expose values through command lines or world-readable paths.
type Store interface {
	Lookup(ref string) ([]byte, error)
}

// FileStore resolves references as paths to credential files provisioned
// out of band (systemd credentials, agenix, plain root-owned files).
type FileStore struct{}

func (FileStore) Lookup(ref string) ([]byte, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(string(data), "\r\n")), nil
}

// Injection describes one deferred write: which rendered file, which key
// line to replace, and the reference to resolve. WholeFile replaces the
// entire content instead of a single line (the license file has no key
// grammar).
type Injection struct {
	Name      string
	File      string
	Key       string
	Ref       string
	WholeFile bool
}

// InjectionsFor returns the injections an instance requires. A file-based
// reference always wins over an inline value; with neither, the rendered
// content stands (possibly empty, meaning the feature is disabled).
func InjectionsFor(inst *instance.ServerInstance) []Injection {
	var out []Injection
	if f := inst.Config.Server.PasswordFile; f != "" {
		out = append(out, Injection{Name: "server password", File: render.FileServer, Key: "ServerPassword", Ref: f})
	}
	if f := inst.Config.Rcon.PasswordFile; f != "" {
		out = append(out, Injection{Name: "rcon password", File: render.FileRcon, Key: "Password", Ref: f})
	}
	if f := inst.Config.LicenseFile; f != "" {
		out = append(out, Injection{Name: "license", File: render.FileLicense, Ref: f, WholeFile: true})
	}
	return out
}

// Resolver applies injections to files already written to disk.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Apply resolves one injection and rewrites the target file in place.
// Only the matching Key= line changes; everything else is untouched.
func (r *Resolver) Apply(path string, inj Injection) error {
	secret, err := r.store.Lookup(inj.Ref)
	if err != nil {
		return err
	}

	if inj.WholeFile {
		return os.WriteFile(path, append(secret, '\n'), 0600)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	replaced, err := ReplaceLine(string(content), inj.Key, string(secret))
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(replaced), 0600)
}

// ReplaceLine swaps the value of a single Key= line in rendered content.
// A missing key is an error: it means the renderer and the injection table
// disagree, and silently appending would hide that.
func ReplaceLine(content, key, value string) (string, error) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, key+"=") {
			lines[i] = key + "=" + value
			return strings.Join(lines, "\n"), nil
		}
	}
	return "", fmt.Errorf("no %s= line in rendered content", key)
}
