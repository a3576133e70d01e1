// Package patchelf rewrites the interpreter of the server's executables so
// upstream binaries run on hosts without the standard FHS loader path.
package patchelf

import (
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// Patcher patches every executable under an install tree. Re-patching an
// already-patched binary is a no-op for correctness.
type Patcher interface {
	PatchTree(root string) error
}

// Tool invokes the external patchelf binary once per executable file.
type Tool struct {
	bin         string
	interpreter string
	log         *zap.Logger
}

func NewTool(bin, interpreter string, log *zap.Logger) *Tool {
	return &Tool{bin: bin, interpreter: interpreter, log: log}
}

// PatchTree walks the install directory and patches each regular file with
// an execute bit set. The first tool failure aborts the walk; a patch
// failure indicates a toolchain mismatch that retrying cannot fix.
func (t *Tool) PatchTree(root string) error {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
			return nil
		}
		cmd := exec.Command(t.bin, "--set-interpreter", t.interpreter, path)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("patching %s: %w: %s", path, err, out)
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}
	t.log.Info("patched executables", zap.Int("count", count), zap.String("root", root))
	return nil
}
