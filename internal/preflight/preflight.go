// Package preflight runs cheap host checks before fetching begins.
package preflight

import (
	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"
)

// CheckDisk warns when the filesystem holding path has less free space than
// a full server install typically needs. Low space is a warning rather than
// an error: steamcmd fails with its own diagnostics if it truly runs out.
func CheckDisk(log *zap.Logger, path string, minFreeBytes uint64) {
	usage, err := disk.Usage(path)
	if err != nil {
		log.Warn("disk usage check failed", zap.String("path", path), zap.Error(err))
		return
	}
	if usage.Free < minFreeBytes {
		log.Warn("low disk space for install",
			zap.String("path", path),
			zap.Uint64("free_bytes", usage.Free),
			zap.Uint64("wanted_bytes", minFreeBytes))
	}
}
