// Package provision sequences the installation and launch of one instance:
// fetch, patch, render, inject secrets, fix permissions, launch. Every step
// except the add-on fetch is fail-fast; a failure aborts only the affected
// instance.
package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"squadron/internal/instance"
	"squadron/internal/journal"
	"squadron/internal/patchelf"
	"squadron/internal/ports"
	"squadron/internal/preflight"
	"squadron/internal/render"
	"squadron/internal/secrets"
	"squadron/internal/steamcmd"
)

// State names one step of the per-instance provisioning sequence.
type State string

const (
	StateFetching              State = "Fetching"
	StatePatchingBinaries      State = "PatchingBinaries"
	StateRendering             State = "Rendering"
	StateInjectingSecrets      State = "InjectingSecrets"
	StateFinalizingPermissions State = "FinalizingPermissions"
	StateLaunching             State = "Launching"
	StateRunning               State = "Running"
	StateFailed                State = "Failed"
)

// Add-on fetches are the only retried operation: they hit a third-party
// content source over the network.
const modFetchAttempts = 5

const (
	configDir = "SquadGame/ServerConfig"
	pluginDir = "SquadGame/Plugins/Mods"
)

// Orchestrator drives the provisioning sequence for instances. Distinct
// instances are independent and provisioned in parallel.
type Orchestrator struct {
	fetcher  steamcmd.Fetcher
	patcher  patchelf.Patcher
	launcher Launcher
	resolver *secrets.Resolver
	journal  *journal.Store
	log      *zap.Logger

	minFreeDisk uint64
}

func NewOrchestrator(fetcher steamcmd.Fetcher, patcher patchelf.Patcher, launcher Launcher, store secrets.Store, jrnl *journal.Store, minFreeDisk uint64, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher:     fetcher,
		patcher:     patcher,
		launcher:    launcher,
		resolver:    secrets.NewResolver(store),
		journal:     jrnl,
		log:         log,
		minFreeDisk: minFreeDisk,
	}
}

// ProvisionAll provisions every enabled instance in the registry.
func (o *Orchestrator) ProvisionAll(reg *instance.Registry) (map[string]error, error) {
	return o.ProvisionMany(reg, reg.Enabled())
}

// ProvisionMany validates ports across the whole registry, then provisions
// the given instances concurrently. Port validation is a barrier: no
// instance starts while any conflict remains anywhere in the registry.
// The returned map holds one result per instance; one instance failing
// does not stop the others.
func (o *Orchestrator) ProvisionMany(reg *instance.Registry, insts []*instance.ServerInstance) (map[string]error, error) {
	if err := ports.Validate(reg); err != nil {
		return nil, err
	}

	errs := make([]error, len(insts))
	var wg sync.WaitGroup
	for i, inst := range insts {
		wg.Add(1)
		go func(i int, inst *instance.ServerInstance) {
			defer wg.Done()
			errs[i] = o.Provision(inst)
		}(i, inst)
	}
	wg.Wait()

	results := make(map[string]error, len(insts))
	for i, inst := range insts {
		results[inst.Name] = errs[i]
	}
	return results, nil
}

// Provision runs the full sequence for one instance. The six steps are
// strictly sequential; each step's output is a precondition for the next.
func (o *Orchestrator) Provision(inst *instance.ServerInstance) error {
	log := o.log.With(zap.String("instance", inst.Name))

	run, err := o.journal.Begin(inst.Name)
	if err != nil {
		return fmt.Errorf("opening journal run: %w", err)
	}

	err = o.provision(inst, run, log)
	if err != nil {
		log.Error("provisioning failed", zap.Error(err))
		if jerr := o.journal.Finish(run, string(StateFailed), err); jerr != nil {
			log.Warn("journal update failed", zap.Error(jerr))
		}
		return err
	}

	if jerr := o.journal.Finish(run, string(StateRunning), nil); jerr != nil {
		log.Warn("journal update failed", zap.Error(jerr))
	}
	return nil
}

func (o *Orchestrator) provision(inst *instance.ServerInstance, run *journal.Run, log *zap.Logger) error {
	set := ports.Expand(inst)

	o.step(run, StateFetching, log)
	if err := o.fetch(inst, log); err != nil {
		return err
	}

	o.step(run, StatePatchingBinaries, log)
	if err := o.patcher.PatchTree(inst.StateDir); err != nil {
		return &PatchError{Instance: inst.Name, Err: err}
	}

	o.step(run, StateRendering, log)
	files := render.Files(inst)
	cfgDir := filepath.Join(inst.StateDir, configDir)
	if err := writeFiles(cfgDir, files); err != nil {
		return &StepError{Instance: inst.Name, Step: StateRendering, Err: err}
	}

	o.step(run, StateInjectingSecrets, log)
	for _, inj := range secrets.InjectionsFor(inst) {
		if err := o.resolver.Apply(filepath.Join(cfgDir, inj.File), inj); err != nil {
			return &secrets.ResolutionError{Instance: inst.Name, Secret: inj.Name, Err: err}
		}
	}

	o.step(run, StateFinalizingPermissions, log)
	for _, f := range files {
		if err := os.Chmod(filepath.Join(cfgDir, f.Name), 0400); err != nil {
			return &StepError{Instance: inst.Name, Step: StateFinalizingPermissions, Err: err}
		}
	}

	o.step(run, StateLaunching, log)
	if err := o.launcher.Launch(inst, set); err != nil {
		return &StepError{Instance: inst.Name, Step: StateLaunching, Err: err}
	}
	return nil
}

// fetch installs the base application, then each declared mod with a
// bounded retry loop. The base fetch is idempotent and never retried.
func (o *Orchestrator) fetch(inst *instance.ServerInstance, log *zap.Logger) error {
	preflight.CheckDisk(log, inst.StateDir, o.minFreeDisk)

	if err := o.fetcher.InstallApp(inst.StateDir); err != nil {
		return &FetchError{Instance: inst.Name, Err: err}
	}

	for _, modID := range inst.Mods {
		src, err := o.fetchMod(inst, modID, log)
		if err != nil {
			return err
		}
		if err := o.linkMod(inst, modID, src); err != nil {
			return &StepError{Instance: inst.Name, Step: StateFetching, Err: err}
		}
	}
	return nil
}

func (o *Orchestrator) fetchMod(inst *instance.ServerInstance, modID int, log *zap.Logger) (string, error) {
	var lastErr error
	for remaining := modFetchAttempts; remaining > 0; remaining-- {
		src, err := o.fetcher.DownloadMod(inst.CacheDir, modID)
		if err == nil {
			return src, nil
		}
		lastErr = err
		log.Warn("mod fetch failed",
			zap.Int("mod", modID),
			zap.Int("attempts_remaining", remaining-1),
			zap.Error(err))
	}
	return "", &FetchError{Instance: inst.Name, ModID: modID, Attempts: modFetchAttempts, Err: lastErr}
}

// linkMod links fetched workshop content into the directory the server
// loads plugins from. An existing link is replaced so re-provisioning
// picks up updated content.
func (o *Orchestrator) linkMod(inst *instance.ServerInstance, modID int, src string) error {
	dir := filepath.Join(inst.StateDir, pluginDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	dst := filepath.Join(dir, strconv.Itoa(modID))
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	return os.Symlink(src, dst)
}

func writeFiles(dir string, files []render.RenderedFile) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		// Clear read-only modes left by a previous run before overwriting.
		if err := os.Chmod(path, 0600); err != nil && !os.IsNotExist(err) {
			return err
		}
		if err := os.WriteFile(path, f.Content, 0600); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) step(run *journal.Run, state State, log *zap.Logger) {
	log.Info("entering step", zap.String("step", string(state)))
	if err := o.journal.SetStep(run, string(state)); err != nil {
		log.Warn("journal update failed", zap.Error(err))
	}
}
