// Package steamcmd drives the external content-fetch tool. Success and
// failure are communicated through the tool's exit status only.
package steamcmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

const (
	// Squad dedicated server application.
	ServerAppID = 403240
	// Workshop catalog the add-on content lives under.
	WorkshopAppID = 393380
)

// Fetcher installs or updates the server application and downloads add-on
// content. Implementations may be swapped out in tests.
type Fetcher interface {
	InstallApp(installDir string) error
	DownloadMod(cacheDir string, modID int) (string, error)
}

// Client runs the steamcmd binary with an anonymous login.
type Client struct {
	bin string
	log *zap.Logger
}

func NewClient(bin string, log *zap.Logger) *Client {
	return &Client{bin: bin, log: log}
}

// InstallApp installs or updates the server application in place with
// validation. Re-running against an existing install updates it.
func (c *Client) InstallApp(installDir string) error {
	c.log.Info("installing server application",
		zap.Int("app", ServerAppID),
		zap.String("dir", installDir))
	return c.run(
		"+force_install_dir", installDir,
		"+login", "anonymous",
		"+app_update", strconv.Itoa(ServerAppID), "validate",
		"+quit",
	)
}

// DownloadMod fetches one workshop item into the cache directory and
// returns the path the content landed in.
func (c *Client) DownloadMod(cacheDir string, modID int) (string, error) {
	err := c.run(
		"+force_install_dir", cacheDir,
		"+login", "anonymous",
		"+workshop_download_item", strconv.Itoa(WorkshopAppID), strconv.Itoa(modID),
		"+quit",
	)
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "steamapps", "workshop", "content",
		strconv.Itoa(WorkshopAppID), strconv.Itoa(modID)), nil
}

func (c *Client) run(args ...string) error {
	cmd := exec.Command(c.bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", c.bin, args, err)
	}
	return nil
}
