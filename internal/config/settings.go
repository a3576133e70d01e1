// Package config carries the provisioner's operational settings and loads
// the instance declaration file.
package config

import (
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Settings are host-level knobs: where instances live and which external
// tools to invoke. They come from the environment (SQUADRON_* variables)
// with working defaults for a standard Linux host.
type Settings struct {
	DeclarationPath string `envconfig:"DECLARATION" default:"/etc/squadron/instances.toml"`
	DataDir         string `envconfig:"DATA_DIR" default:"/var/lib/squadron"`
	CacheDir        string `envconfig:"CACHE_DIR" default:"/var/cache/squadron"`
	JournalPath     string `envconfig:"JOURNAL"`
	SteamCmdBin     string `envconfig:"STEAMCMD" default:"steamcmd"`
	PatchelfBin     string `envconfig:"PATCHELF" default:"patchelf"`
	Interpreter     string `envconfig:"INTERPRETER" default:"/lib64/ld-linux-x86-64.so.2"`
	MinFreeDiskGB   uint64 `envconfig:"MIN_FREE_DISK_GB" default:"60"`
	Debug           bool   `envconfig:"DEBUG"`
}

func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("squadron", &s); err != nil {
		return nil, err
	}
	if s.JournalPath == "" {
		s.JournalPath = filepath.Join(s.DataDir, "journal.db")
	}
	return &s, nil
}

// MinFreeDiskBytes converts the configured threshold for the preflight
// disk check.
func (s *Settings) MinFreeDiskBytes() uint64 {
	return s.MinFreeDiskGB * 1024 * 1024 * 1024
}
