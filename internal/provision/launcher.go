package provision

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"squadron/internal/instance"
	"squadron/internal/ports"
)

// Launcher hands a fully provisioned instance to the process supervisor.
// After a successful launch the supervisor owns the process: working
// directory placement, restart policy and output capture happen there.
type Launcher interface {
	Launch(inst *instance.ServerInstance, set ports.PortSet) error
}

// Relative path of the server executable inside the install directory.
const serverBinary = "SquadGame/Binaries/Linux/SquadGameServer"

// Argv builds the fixed startup argument vector the server accepts.
func Argv(inst *instance.ServerInstance, set ports.PortSet) []string {
	return []string{
		fmt.Sprintf("Port=%d", set.Game[0]),
		fmt.Sprintf("QueryPort=%d", set.Query[0]),
		fmt.Sprintf("FIXEDMAXTICKRATE=%d", inst.Config.Server.TickRate),
		fmt.Sprintf("FIXEDMAXPLAYERS=%d", inst.Config.Server.MaxPlayers),
		fmt.Sprintf("beaconport=%d", set.Beacon[0]),
	}
}

// ExecLauncher starts the server process directly and releases it. Meant
// for hosts where the provisioner itself runs under the supervisor.
type ExecLauncher struct {
	log *zap.Logger
}

func NewExecLauncher(log *zap.Logger) *ExecLauncher {
	return &ExecLauncher{log: log}
}

func (l *ExecLauncher) Launch(inst *instance.ServerInstance, set ports.PortSet) error {
	bin := filepath.Join(inst.StateDir, serverBinary)
	if _, err := os.Stat(bin); err != nil {
		return fmt.Errorf("server binary not found at %s: %w", bin, err)
	}

	cmd := exec.Command(bin, Argv(inst, set)...)
	cmd.Dir = inst.StateDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	l.log.Info("launched server",
		zap.String("instance", inst.Name),
		zap.Int("pid", cmd.Process.Pid))

	// The supervisor owns the process from here on.
	return cmd.Process.Release()
}
