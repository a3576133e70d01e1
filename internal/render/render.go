// Package render turns one instance's configuration into the set of files
// the server reads from its config directory. Rendering is pure: no
// filesystem access, no timestamps, byte-identical output for equal input.
package render

import (
	"fmt"
	"strings"

	"squadron/internal/instance"
)

// RenderedFile is one (logical name, content) pair. Recomputed on every
// provisioning run, never mutated after creation.
type RenderedFile struct {
	Name    string
	Content []byte
}

// Logical file names, stable across rebuilds so external tooling can rely
// on them.
const (
	FileServer                = "Server.cfg"
	FileRcon                  = "Rcon.cfg"
	FileAdmins                = "Admins.cfg"
	FileBans                  = "Bans.cfg"
	FileCustomOptions         = "CustomOptions.cfg"
	FileExcludedFactions      = "ExcludedFactions.cfg"
	FileExcludedFactionSetups = "ExcludedFactionSetups.cfg"
	FileExcludedLayers        = "ExcludedLayers.cfg"
	FileExcludedLevels        = "ExcludedLevels.cfg"
	FileLevelRotation         = "LevelRotation.cfg"
	FileLayerRotation         = "LayerRotation.cfg"
	FileMOTD                  = "MOTD.cfg"
	FileServerMessages        = "ServerMessages.cfg"
	FileAdminListHosts        = "RemoteAdminListHosts.cfg"
	FileBanListHosts          = "RemoteBanListHosts.cfg"
	FileLicense               = "License.cfg"
	FileVoteConfig            = "VoteConfig.cfg"
)

// Voting is deprecated server-side; these values are forced and not
// exposed through the declaration.
const voteConfig = "VoteTime=120\nVotePassThreshold=50\nAllowVoting=False\n"

// Files renders every config file for one instance, in a fixed order.
func Files(inst *instance.ServerInstance) []RenderedFile {
	cfg := &inst.Config
	return []RenderedFile{
		{FileServer, serverCfg(cfg)},
		{FileRcon, rconCfg(inst)},
		{FileAdmins, adminsCfg(cfg.AdminGroups)},
		{FileBans, bansCfg(cfg.Bans)},
		{FileCustomOptions, optionsCfg(cfg.Options)},
		{FileExcludedFactions, lines(cfg.ExcludedFactions)},
		{FileExcludedFactionSetups, lines(cfg.ExcludedFactionSetups)},
		{FileExcludedLayers, lines(cfg.ExcludedLayers)},
		{FileExcludedLevels, lines(cfg.ExcludedLevels)},
		{FileLevelRotation, lines(cfg.LevelRotation)},
		{FileLayerRotation, lines(cfg.LayerRotation)},
		{FileMOTD, []byte(cfg.MOTD)},
		{FileServerMessages, lines(cfg.ServerMessages)},
		{FileAdminListHosts, lines(cfg.AdminListHosts)},
		{FileBanListHosts, lines(cfg.BanListHosts)},
		{FileLicense, []byte(cfg.License)},
		{FileVoteConfig, []byte(voteConfig)},
	}
}

func serverCfg(cfg *instance.ServerConfig) []byte {
	var b strings.Builder
	kv(&b, "ServerName", cfg.Server.Name)
	kv(&b, "ServerPassword", cfg.Server.Password)
	kv(&b, "MaxPlayers", fmt.Sprint(cfg.Server.MaxPlayers))
	kv(&b, "NumReservedSlots", fmt.Sprint(cfg.Server.ReservedSlots))
	kv(&b, "RotationMode", string(cfg.Server.Rotation))
	// Randomized rotation start is forced off; the server misbehaves with
	// it when rotations are managed declaratively.
	kv(&b, "RandomizeAtStart", boolValue(false))
	kv(&b, "TeamKillKickThreshold", fmt.Sprint(cfg.Server.TeamKillKickThreshold))
	kv(&b, "TeamKillBanThreshold", fmt.Sprint(cfg.Server.TeamKillBanThreshold))
	kv(&b, "Tags", strings.Join(cfg.Server.Tags, " "))
	kv(&b, "Rules", strings.Join(cfg.Server.Rules, " "))
	return []byte(b.String())
}

func rconCfg(inst *instance.ServerInstance) []byte {
	cfg := &inst.Config.Rcon
	var b strings.Builder
	kv(&b, "IP", cfg.BindAddress)
	kv(&b, "Port", fmt.Sprint(inst.RconPort))
	kv(&b, "Password", cfg.Password)
	kv(&b, "MaxConnections", fmt.Sprint(cfg.MaxConnections))
	kv(&b, "ConnectionTimeout", fmt.Sprint(cfg.ConnectionTimeout))
	kv(&b, "AuthenticationTimeout", fmt.Sprint(cfg.AuthTimeout))
	kv(&b, "KeepAliveInterval", fmt.Sprint(cfg.KeepAlive))
	kv(&b, "QueueLimit", fmt.Sprint(cfg.QueueLimit))
	return []byte(b.String())
}

// adminsCfg renders the two-level admin grammar: per group an optional
// comment block, a Group line with its comma-joined levels, then one Admin
// line per member. Groups keep their declared order.
func adminsCfg(groups []instance.AdminGroup) []byte {
	var b strings.Builder
	for _, g := range groups {
		for _, c := range g.Comments {
			b.WriteString("// " + c + "\n")
		}
		levels := make([]string, len(g.Levels))
		for i, lvl := range g.Levels {
			levels[i] = string(lvl)
		}
		b.WriteString("Group=" + g.Name + ":" + strings.Join(levels, ",") + "\n")
		for _, m := range g.Members {
			b.WriteString(fmt.Sprintf("Admin=%d:%s", m.ID, g.Name))
			if m.Comment != "" {
				b.WriteString(" // " + m.Comment)
			}
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

func bansCfg(bans []instance.Ban) []byte {
	var b strings.Builder
	for _, ban := range bans {
		b.WriteString(fmt.Sprintf("%d:%d\n", ban.ID, ban.Expires))
	}
	return []byte(b.String())
}

func optionsCfg(opts []instance.CustomOption) []byte {
	var b strings.Builder
	for _, o := range opts {
		kv(&b, o.Key, o.Value.Render())
	}
	return []byte(b.String())
}

func lines(items []string) []byte {
	if len(items) == 0 {
		return []byte{}
	}
	return []byte(strings.Join(items, "\n") + "\n")
}

func kv(b *strings.Builder, key, value string) {
	b.WriteString(key + "=" + value + "\n")
}

func boolValue(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
