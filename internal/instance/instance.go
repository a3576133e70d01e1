package instance

import (
	"fmt"
)

// ConfigurationError reports an invalid field value in a declared instance.
// It is surfaced before any provisioning starts and never retried.
type ConfigurationError struct {
	Instance string
	Field    string
	Value    string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("instance %q: invalid %s=%s: %s", e.Instance, e.Field, e.Value, e.Reason)
}

// AccessLevel is one of the server's admin permission flags. Unknown values
// are rejected when an instance is constructed.
type AccessLevel string

const (
	LevelChangeMap       AccessLevel = "changemap"
	LevelCheat           AccessLevel = "cheat"
	LevelPrivate         AccessLevel = "private"
	LevelBalance         AccessLevel = "balance"
	LevelChat            AccessLevel = "chat"
	LevelKick            AccessLevel = "kick"
	LevelBan             AccessLevel = "ban"
	LevelConfig          AccessLevel = "config"
	LevelCameraman       AccessLevel = "cameraman"
	LevelImmune          AccessLevel = "immune"
	LevelManageServer    AccessLevel = "manageserver"
	LevelFeatureTest     AccessLevel = "featuretest"
	LevelReserve         AccessLevel = "reserve"
	LevelDemos           AccessLevel = "demos"
	LevelClientDemos     AccessLevel = "clientdemos"
	LevelDebug           AccessLevel = "debug"
	LevelTeamChange      AccessLevel = "teamchange"
	LevelForceTeamChange AccessLevel = "forceteamchange"
	LevelCanSeeAdminChat AccessLevel = "canseeadminchat"
)

var validLevels = map[AccessLevel]bool{
	LevelChangeMap: true, LevelCheat: true, LevelPrivate: true,
	LevelBalance: true, LevelChat: true, LevelKick: true, LevelBan: true,
	LevelConfig: true, LevelCameraman: true, LevelImmune: true,
	LevelManageServer: true, LevelFeatureTest: true, LevelReserve: true,
	LevelDemos: true, LevelClientDemos: true, LevelDebug: true,
	LevelTeamChange: true, LevelForceTeamChange: true, LevelCanSeeAdminChat: true,
}

// RotationMode selects which rotation file the server plays through.
type RotationMode string

const (
	RotationLayers RotationMode = "LayerRotation"
	RotationLevels RotationMode = "LevelRotation"
)

// AdminMember is one entry inside an admin group.
type AdminMember struct {
	ID      int64
	Comment string
}

// AdminGroup maps a named group to its access levels and members.
type AdminGroup struct {
	Name     string
	Comments []string
	Levels   []AccessLevel
	Members  []AdminMember
}

// Ban is a single ban-list entry. Expires is a unix timestamp; zero means
// the ban is permanent.
type Ban struct {
	ID      int64
	Expires int64
}

// RconSettings holds the remote-admin console configuration. The password
// is carried as a reference, never as a value.
type RconSettings struct {
	BindAddress       string
	MaxConnections    int
	ConnectionTimeout int
	AuthTimeout       int
	KeepAlive         int
	QueueLimit        int
	Password          string
	PasswordFile      string
}

// ServerSettings are the core settings rendered into Server.cfg.
type ServerSettings struct {
	Name                  string
	Password              string
	PasswordFile          string
	MaxPlayers            int
	ReservedSlots         int
	TickRate              int
	Rotation              RotationMode
	TeamKillKickThreshold int
	TeamKillBanThreshold  int
	Tags                  []string
	Rules                 []string
}

// ServerConfig is the full structured configuration of one instance.
// Constructed through NewInstance and immutable afterwards.
type ServerConfig struct {
	Server                ServerSettings
	Rcon                  RconSettings
	AdminGroups           []AdminGroup
	Bans                  []Ban
	Options               []CustomOption
	ExcludedFactions      []string
	ExcludedFactionSetups []string
	ExcludedLayers        []string
	ExcludedLevels        []string
	LevelRotation         []string
	LayerRotation         []string
	ServerMessages        []string
	AdminListHosts        []string
	BanListHosts          []string
	MOTD                  string
	License               string
	LicenseFile           string
}

// ServerInstance is one declared server deployment. It owns its state and
// cache directories exclusively.
type ServerInstance struct {
	Name       string
	Enabled    bool
	GamePort   int
	QueryPort  int
	RconPort   int
	BeaconPort int
	StateDir   string
	CacheDir   string
	Mods       []int
	Config     ServerConfig
}

const (
	DefaultTickRate   = 35
	DefaultMaxPlayers = 100
)

// NewInstance validates raw declared values and returns an immutable
// instance with defaults applied.
func NewInstance(name string, enabled bool, gamePort, queryPort, rconPort, beaconPort int, stateDir, cacheDir string, mods []int, cfg ServerConfig) (*ServerInstance, error) {
	if name == "" {
		return nil, &ConfigurationError{Instance: name, Field: "name", Value: "", Reason: "must not be empty"}
	}
	for _, p := range []struct {
		field string
		value int
	}{
		{"game-port", gamePort},
		{"query-port", queryPort},
		{"rcon-port", rconPort},
		{"beacon-port", beaconPort},
	} {
		if p.value < 1 || p.value > 65535 {
			return nil, &ConfigurationError{Instance: name, Field: p.field, Value: fmt.Sprint(p.value), Reason: "must be in range 1-65535"}
		}
	}
	for _, m := range mods {
		if m <= 0 {
			return nil, &ConfigurationError{Instance: name, Field: "mods", Value: fmt.Sprint(m), Reason: "mod identifiers must be positive"}
		}
	}
	if err := validateConfig(name, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Name == "" {
		cfg.Server.Name = name
	}
	if cfg.Server.TickRate == 0 {
		cfg.Server.TickRate = DefaultTickRate
	}
	if cfg.Server.MaxPlayers == 0 {
		cfg.Server.MaxPlayers = DefaultMaxPlayers
	}
	if cfg.Server.Rotation == "" {
		cfg.Server.Rotation = RotationLayers
	}
	if cfg.Rcon.BindAddress == "" {
		cfg.Rcon.BindAddress = "0.0.0.0"
	}
	if cfg.Rcon.KeepAlive == 0 {
		cfg.Rcon.KeepAlive = 30
	}

	return &ServerInstance{
		Name:       name,
		Enabled:    enabled,
		GamePort:   gamePort,
		QueryPort:  queryPort,
		RconPort:   rconPort,
		BeaconPort: beaconPort,
		StateDir:   stateDir,
		CacheDir:   cacheDir,
		Mods:       mods,
		Config:     cfg,
	}, nil
}

func validateConfig(name string, cfg *ServerConfig) error {
	if t := cfg.Rcon.ConnectionTimeout; t < 0 || t > 86400 {
		return &ConfigurationError{Instance: name, Field: "rcon.connection-timeout", Value: fmt.Sprint(t), Reason: "must be in range 0-86400"}
	}
	if t := cfg.Rcon.AuthTimeout; t < 0 || t > 3600 {
		return &ConfigurationError{Instance: name, Field: "rcon.auth-timeout", Value: fmt.Sprint(t), Reason: "must be in range 0-3600"}
	}
	if t := cfg.Rcon.KeepAlive; t != 0 && (t < 30 || t > 3600) {
		return &ConfigurationError{Instance: name, Field: "rcon.keep-alive", Value: fmt.Sprint(t), Reason: "must be in range 30-3600"}
	}
	if q := cfg.Rcon.QueueLimit; q < -1 {
		return &ConfigurationError{Instance: name, Field: "rcon.queue-limit", Value: fmt.Sprint(q), Reason: "must be -1 or greater"}
	}
	if n := cfg.Rcon.MaxConnections; n < 0 {
		return &ConfigurationError{Instance: name, Field: "rcon.max-connections", Value: fmt.Sprint(n), Reason: "must not be negative"}
	}
	if n := cfg.Server.MaxPlayers; n < 0 {
		return &ConfigurationError{Instance: name, Field: "server.max-players", Value: fmt.Sprint(n), Reason: "must not be negative"}
	}
	if cfg.Server.Rotation != "" && cfg.Server.Rotation != RotationLayers && cfg.Server.Rotation != RotationLevels {
		return &ConfigurationError{Instance: name, Field: "server.rotation", Value: string(cfg.Server.Rotation), Reason: "must be LayerRotation or LevelRotation"}
	}
	for _, g := range cfg.AdminGroups {
		if g.Name == "" {
			return &ConfigurationError{Instance: name, Field: "admin-groups.name", Value: "", Reason: "must not be empty"}
		}
		for _, lvl := range g.Levels {
			if !validLevels[lvl] {
				return &ConfigurationError{Instance: name, Field: "admin-groups.levels", Value: string(lvl), Reason: "unknown access level"}
			}
		}
		for _, m := range g.Members {
			if m.ID <= 0 {
				return &ConfigurationError{Instance: name, Field: "admin-groups.members", Value: fmt.Sprint(m.ID), Reason: "identity must be positive"}
			}
		}
	}
	for _, b := range cfg.Bans {
		if b.ID <= 0 {
			return &ConfigurationError{Instance: name, Field: "bans", Value: fmt.Sprint(b.ID), Reason: "identity must be positive"}
		}
	}
	for _, o := range cfg.Options {
		if o.Key == "" {
			return &ConfigurationError{Instance: name, Field: "options", Value: "", Reason: "option key must not be empty"}
		}
	}
	return nil
}
