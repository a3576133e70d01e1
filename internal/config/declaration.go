package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"squadron/internal/instance"
)

// The declaration file is the single structured definition everything else
// derives from. Instances keep their file order.

type declaration struct {
	Instances []declInstance `toml:"instance"`
}

type declInstance struct {
	Name        string       `toml:"name"`
	Enabled     bool         `toml:"enabled"`
	GamePort    int          `toml:"game-port"`
	QueryPort   int          `toml:"query-port"`
	RconPort    int          `toml:"rcon-port"`
	BeaconPort  int          `toml:"beacon-port"`
	StateDir    string       `toml:"state-dir"`
	CacheDir    string       `toml:"cache-dir"`
	Mods        []int        `toml:"mods"`
	Server      declServer   `toml:"server"`
	Rcon        declRcon     `toml:"rcon"`
	AdminGroups []declGroup  `toml:"admin-groups"`
	Bans        []declBan    `toml:"bans"`
	Options     []declOption `toml:"options"`
	Lists       declLists    `toml:"lists"`
	MOTD        string       `toml:"motd"`
	License     string       `toml:"license"`
	LicenseFile string       `toml:"license-file"`
}

type declServer struct {
	Name                  string   `toml:"name"`
	Password              string   `toml:"password"`
	PasswordFile          string   `toml:"password-file"`
	MaxPlayers            int      `toml:"max-players"`
	ReservedSlots         int      `toml:"reserved-slots"`
	TickRate              int      `toml:"tick-rate"`
	Rotation              string   `toml:"rotation"`
	TeamKillKickThreshold int      `toml:"team-kill-kick-threshold"`
	TeamKillBanThreshold  int      `toml:"team-kill-ban-threshold"`
	Tags                  []string `toml:"tags"`
	Rules                 []string `toml:"rules"`
}

type declRcon struct {
	BindAddress       string `toml:"bind-address"`
	MaxConnections    int    `toml:"max-connections"`
	ConnectionTimeout int    `toml:"connection-timeout"`
	AuthTimeout       int    `toml:"auth-timeout"`
	KeepAlive         int    `toml:"keep-alive"`
	QueueLimit        int    `toml:"queue-limit"`
	Password          string `toml:"password"`
	PasswordFile      string `toml:"password-file"`
}

type declGroup struct {
	Name     string       `toml:"name"`
	Comments []string     `toml:"comments"`
	Levels   []string     `toml:"levels"`
	Members  []declMember `toml:"members"`
}

type declMember struct {
	ID      int64  `toml:"id"`
	Comment string `toml:"comment"`
}

type declBan struct {
	ID      int64 `toml:"id"`
	Expires int64 `toml:"expires"`
}

type declOption struct {
	Key     string `toml:"key"`
	Value   string `toml:"value"`
	Bool    *bool  `toml:"bool"`
	Numeric bool   `toml:"numeric"`
}

type declLists struct {
	ExcludedFactions      []string `toml:"excluded-factions"`
	ExcludedFactionSetups []string `toml:"excluded-faction-setups"`
	ExcludedLayers        []string `toml:"excluded-layers"`
	ExcludedLevels        []string `toml:"excluded-levels"`
	LevelRotation         []string `toml:"level-rotation"`
	LayerRotation         []string `toml:"layer-rotation"`
	ServerMessages        []string `toml:"server-messages"`
	AdminListHosts        []string `toml:"admin-list-hosts"`
	BanListHosts          []string `toml:"ban-list-hosts"`
}

// LoadDeclaration parses the declaration file and constructs the validated
// registry. A missing file is bootstrapped with a commented example so a
// fresh host has something to edit.
func LoadDeclaration(s *Settings) (*instance.Registry, error) {
	if _, err := os.Stat(s.DeclarationPath); os.IsNotExist(err) {
		if err := writeExample(s.DeclarationPath); err != nil {
			return nil, fmt.Errorf("writing example declaration: %w", err)
		}
		return nil, fmt.Errorf("no declaration at %s; an example was written there, edit it and re-run", s.DeclarationPath)
	}

	var decl declaration
	if _, err := toml.DecodeFile(s.DeclarationPath, &decl); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.DeclarationPath, err)
	}

	reg := instance.NewRegistry()
	for _, d := range decl.Instances {
		inst, err := buildInstance(s, d)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(inst); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func buildInstance(s *Settings, d declInstance) (*instance.ServerInstance, error) {
	cfg := instance.ServerConfig{
		Server: instance.ServerSettings{
			Name:                  d.Server.Name,
			Password:              d.Server.Password,
			PasswordFile:          d.Server.PasswordFile,
			MaxPlayers:            d.Server.MaxPlayers,
			ReservedSlots:         d.Server.ReservedSlots,
			TickRate:              d.Server.TickRate,
			Rotation:              instance.RotationMode(d.Server.Rotation),
			TeamKillKickThreshold: d.Server.TeamKillKickThreshold,
			TeamKillBanThreshold:  d.Server.TeamKillBanThreshold,
			Tags:                  d.Server.Tags,
			Rules:                 d.Server.Rules,
		},
		Rcon: instance.RconSettings{
			BindAddress:       d.Rcon.BindAddress,
			MaxConnections:    d.Rcon.MaxConnections,
			ConnectionTimeout: d.Rcon.ConnectionTimeout,
			AuthTimeout:       d.Rcon.AuthTimeout,
			KeepAlive:         d.Rcon.KeepAlive,
			QueueLimit:        d.Rcon.QueueLimit,
			Password:          d.Rcon.Password,
			PasswordFile:      d.Rcon.PasswordFile,
		},
		ExcludedFactions:      d.Lists.ExcludedFactions,
		ExcludedFactionSetups: d.Lists.ExcludedFactionSetups,
		ExcludedLayers:        d.Lists.ExcludedLayers,
		ExcludedLevels:        d.Lists.ExcludedLevels,
		LevelRotation:         d.Lists.LevelRotation,
		LayerRotation:         d.Lists.LayerRotation,
		ServerMessages:        d.Lists.ServerMessages,
		AdminListHosts:        d.Lists.AdminListHosts,
		BanListHosts:          d.Lists.BanListHosts,
		MOTD:                  d.MOTD,
		License:               d.License,
		LicenseFile:           d.LicenseFile,
	}

	for _, g := range d.AdminGroups {
		group := instance.AdminGroup{Name: g.Name, Comments: g.Comments}
		for _, lvl := range g.Levels {
			group.Levels = append(group.Levels, instance.AccessLevel(lvl))
		}
		for _, m := range g.Members {
			group.Members = append(group.Members, instance.AdminMember{ID: m.ID, Comment: m.Comment})
		}
		cfg.AdminGroups = append(cfg.AdminGroups, group)
	}
	for _, b := range d.Bans {
		cfg.Bans = append(cfg.Bans, instance.Ban{ID: b.ID, Expires: b.Expires})
	}
	for _, o := range d.Options {
		var value instance.OptionValue
		switch {
		case o.Bool != nil && o.Numeric:
			value = instance.NumericBoolOption(*o.Bool)
		case o.Bool != nil:
			value = instance.BoolOption(*o.Bool)
		default:
			value = instance.StringOption(o.Value)
		}
		cfg.Options = append(cfg.Options, instance.CustomOption{Key: o.Key, Value: value})
	}

	stateDir := d.StateDir
	if stateDir == "" {
		stateDir = filepath.Join(s.DataDir, d.Name)
	}
	cacheDir := d.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(s.CacheDir, d.Name)
	}

	return instance.NewInstance(d.Name, d.Enabled,
		d.GamePort, d.QueryPort, d.RconPort, d.BeaconPort,
		stateDir, cacheDir, d.Mods, cfg)
}

const exampleDeclaration = `# squadron instance declaration.
# Each [[instance]] block provisions one independent server on this host.

[[instance]]
name = "main"
enabled = true
game-port = 7787
query-port = 27165
rcon-port = 21114
beacon-port = 15000
mods = []

[instance.server]
name = "My Server"
max-players = 100
tags = ["community"]
rules = []

[instance.rcon]
max-connections = 5
connection-timeout = 300
auth-timeout = 60
keep-alive = 30
queue-limit = -1
# password-file = "/run/credentials/squadron/rcon-password"

[[instance.admin-groups]]
name = "Admin"
levels = ["kick", "ban", "chat"]

  [[instance.admin-groups.members]]
  id = 76561199101367413

[instance.lists]
layer-rotation = []
server-messages = []
`

func writeExample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(exampleDeclaration), 0644)
}
