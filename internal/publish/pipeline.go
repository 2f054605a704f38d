// Package publish orchestrates the publish transaction: open an edit,
// upload artifacts, synchronize metadata, update the release track,
// commit. Steps run strictly in order and the first failure stops the
// chain. No abort is issued on failure by default; a partially modified
// edit is left open on the remote service and expires on its own.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/stagehand-cli/stagehand/internal/artifact"
	"github.com/stagehand-cli/stagehand/internal/checkpoint"
	"github.com/stagehand-cli/stagehand/internal/config"
	"github.com/stagehand-cli/stagehand/internal/editapi"
	"github.com/stagehand-cli/stagehand/internal/logging"
	"github.com/stagehand-cli/stagehand/internal/metadata"
	"github.com/stagehand-cli/stagehand/internal/metrics"
	"github.com/stagehand-cli/stagehand/internal/notify"
	"github.com/stagehand-cli/stagehand/internal/track"
)

// Pipeline drives one publish run against the edit store.
type Pipeline struct {
	cfg  config.Config
	svc  editapi.Service
	sync *metadata.Synchronizer
	fsys afero.Fs
	cp   checkpoint.Manager
	emit notify.Emitter

	correlationID string
	log           *slog.Logger

	state   State
	summary Summary
}

// Options wires the pipeline's collaborators. Fs defaults to the OS
// filesystem; Checkpoint and Emitter default to no-ops.
type Options struct {
	Config     config.Config
	Service    editapi.Service
	Fs         afero.Fs
	Checkpoint checkpoint.Manager
	Emitter    notify.Emitter
}

// New creates a pipeline. Track and fraction are validated here so a bad
// combination fails before the first remote call.
func New(opts Options) (*Pipeline, error) {
	if opts.Service == nil {
		return nil, errors.New("edit service is required")
	}
	pub := opts.Config.Publish
	if pub.Package == "" {
		return nil, errors.New("package name is required")
	}
	if err := track.Validate(pub.Track, pub.UserFraction); err != nil {
		return nil, err
	}
	if len(pub.Artifacts) == 0 && pub.MetadataRoot == "" && pub.ChangelogFile == "" {
		return nil, errors.New("nothing to publish: no artifacts, metadata root or changelog file")
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	cp := opts.Checkpoint
	if cp == nil {
		cp, _ = checkpoint.NewManager(checkpoint.Config{})
	}
	emit := opts.Emitter
	if emit == nil {
		emit = notify.NewEmitter(config.NotifyConfig{})
	}

	correlationID := logging.GenerateCorrelationID()

	return &Pipeline{
		cfg:           opts.Config,
		svc:           opts.Service,
		sync:          metadata.NewSynchronizer(opts.Service, fsys, pub.Package),
		fsys:          fsys,
		cp:            cp,
		emit:          emit,
		correlationID: correlationID,
		log:           slog.With("component", "publish", "correlation_id", correlationID, "package", pub.Package),
	}, nil
}

// step is one unit of the ordered chain.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// Run executes the whole transaction and returns a summary on success.
// The returned error is always a *StepError naming the failing step.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()
	pub := p.cfg.Publish

	p.state = State{
		PackageName: pub.Package,
		Checksums:   make(map[string]string),
	}
	p.seedFallbackVersion(ctx)

	steps := []step{
		{StepResolveArtifacts, p.stepResolveArtifacts},
		{StepCreateEdit, p.stepCreateEdit},
		{StepUploadArtifact, p.stepUploadArtifacts},
		{StepSyncMetadata, p.stepSyncMetadata},
		{StepUpdateTrack, p.stepUpdateTrack},
		{StepPatchChangelog, p.stepPatchChangelog},
		{StepCommit, p.stepCommit},
	}

	for _, st := range steps {
		if err := st.run(ctx); err != nil {
			p.failStep(ctx, st.name, err)
			return nil, &StepError{Step: st.name, Err: err}
		}
	}

	p.summary.Package = pub.Package
	p.summary.EditID = p.state.EditID
	p.summary.Track = pub.Track
	p.summary.VersionCodes = p.state.VersionCodes
	p.summary.Duration = time.Since(started)

	p.afterCommit(ctx)

	p.log.Info("publish complete",
		"edit_id", p.summary.EditID,
		"track", p.summary.Track,
		"version_codes", p.summary.VersionCodes,
		"duration_ms", p.summary.Duration.Milliseconds(),
	)
	if m := metrics.Get(); m != nil {
		m.IncRunCompleted("ok")
	}

	return &p.summary, nil
}

// seedFallbackVersion loads the checkpoint so a metadata-only run still
// has a usable fallback version for changelog files.
func (p *Pipeline) seedFallbackVersion(ctx context.Context) {
	cp, err := p.cp.Load(ctx, p.cfg.Publish.Package, p.cfg.Publish.Track)
	if err != nil {
		if !errors.Is(err, checkpoint.ErrNoCheckpoint) {
			p.log.Warn("failed to load checkpoint", "error", err)
		}
		return
	}
	p.state.LastVersionCode = cp.LastVersionCode
	p.log.Debug("seeded fallback version from checkpoint", "version_code", cp.LastVersionCode)
}

// failStep records a fatal step failure and optionally aborts the edit.
func (p *Pipeline) failStep(ctx context.Context, name string, err error) {
	logging.StepLogger(p.correlationID, p.state.PackageName, name).
		Error("step failed", "error", err)
	if m := metrics.Get(); m != nil {
		m.IncStepFailure(name)
		m.IncRunCompleted("failed")
	}

	// Leaving the edit open is the documented default; edits expire on
	// their own. Abort only when explicitly asked for.
	if p.cfg.Publish.AbortOnFailure && p.state.EditID != "" && name != StepCommit {
		if aerr := p.svc.Abort(ctx, p.state.EditID); aerr != nil {
			p.log.Warn("failed to abort edit", "edit_id", p.state.EditID, "error", aerr)
		} else {
			p.log.Info("aborted edit", "edit_id", p.state.EditID)
		}
	}
}

// afterCommit persists the checkpoint and emits the publish receipt.
// The commit already happened: nothing here may fail the run.
func (p *Pipeline) afterCommit(ctx context.Context) {
	if len(p.state.VersionCodes) > 0 {
		err := p.cp.Save(ctx, &checkpoint.Checkpoint{
			Package:         p.state.PackageName,
			Track:           p.cfg.Publish.Track,
			EditID:          p.state.EditID,
			VersionCodes:    p.state.VersionCodes,
			LastVersionCode: p.state.LastVersionCode,
			UpdatedAt:       time.Now().UTC(),
		})
		if err != nil {
			p.log.Warn("failed to save checkpoint", "error", err)
		}
	}

	receipt := &notify.Receipt{
		Package:      p.state.PackageName,
		EditID:       p.state.EditID,
		Track:        p.cfg.Publish.Track,
		UserFraction: p.cfg.Publish.UserFraction,
		VersionCodes: p.state.VersionCodes,
		Checksums:    p.state.Checksums,
		Producer: notify.ProducerInfo{
			Name:    "stagehand",
			Version: Version,
			GitSHA:  GitSHA,
		},
	}
	if err := p.emit.Emit(ctx, receipt); err != nil {
		p.log.Warn("failed to emit publish receipt", "error", err)
	}
}

// stepResolveArtifacts expands glob patterns and inspects local files.
func (p *Pipeline) stepResolveArtifacts(ctx context.Context) error {
	patterns := p.cfg.Publish.Artifacts
	if len(patterns) == 0 {
		p.log.Info("no artifacts configured, metadata-only run")
		return nil
	}

	paths, err := artifact.Expand(patterns)
	if err != nil {
		return err
	}

	for _, path := range paths {
		info, err := artifact.Inspect(path)
		if err != nil {
			return err
		}
		if info.SHA256 != "" {
			p.state.Checksums[path] = info.SHA256
		}
	}

	p.state.ArtifactPaths = paths
	p.log.Info("artifacts resolved", "count", len(paths))
	return nil
}

// stepCreateEdit opens the transaction.
func (p *Pipeline) stepCreateEdit(ctx context.Context) error {
	edit, err := p.svc.CreateEdit(ctx)
	if err != nil {
		return err
	}
	p.state.EditID = edit.ID
	p.log.Info("edit opened", "edit_id", edit.ID, "expiry", edit.Expiry)
	return nil
}

// stepUploadArtifacts uploads each artifact in the given order. The
// version code of the last upload wins as the changelog fallback.
func (p *Pipeline) stepUploadArtifacts(ctx context.Context) error {
	for _, path := range p.state.ArtifactPaths {
		started := time.Now()

		r, err := artifact.Open(ctx, path)
		if err != nil {
			return err
		}

		code, err := p.svc.UploadArtifact(ctx, p.state.EditID, r)
		r.Close()
		if err != nil {
			return fmt.Errorf("upload %s: %w", path, err)
		}

		p.state.VersionCodes = append(p.state.VersionCodes, code)
		p.state.LastVersionCode = code

		if m := metrics.Get(); m != nil {
			size := int64(0)
			if info, ierr := p.fsys.Stat(path); ierr == nil {
				size = info.Size()
			}
			m.ObserveUpload(time.Since(started).Seconds(), size)
		}
		p.log.Info("artifact uploaded", "path", path, "version_code", code)
	}
	return nil
}

// stepSyncMetadata runs the synchronizer for every language directory.
// Iteration order is whatever the filesystem returns.
func (p *Pipeline) stepSyncMetadata(ctx context.Context) error {
	root := p.cfg.Publish.MetadataRoot
	if root == "" {
		return nil
	}

	langs, err := p.sync.Languages(root)
	if err != nil {
		return err
	}

	for _, lang := range langs {
		dir := p.sync.LanguageDir(root, lang)
		if err := p.sync.SyncLanguage(ctx, p.state.EditID, lang, dir, p.state.LastVersionCode); err != nil {
			return err
		}
		p.summary.LanguagesSynced = append(p.summary.LanguagesSynced, lang)
		p.log.Info("language synced", "language", lang)
	}
	return nil
}

// stepUpdateTrack assigns the uploaded version codes to the track.
// Skipped when nothing was uploaded (metadata-only run).
func (p *Pipeline) stepUpdateTrack(ctx context.Context) error {
	if len(p.state.VersionCodes) == 0 {
		p.log.Debug("no version codes, skipping track update")
		return nil
	}

	upd := track.NewUpdate(p.cfg.Publish.Track, p.state.VersionCodes, p.cfg.Publish.UserFraction)
	committed, err := p.svc.UpdateTrack(ctx, p.state.EditID, upd)
	if err != nil {
		return err
	}
	p.state.TrackUpdate = committed
	return nil
}

// stepPatchChangelog applies a standalone changelog file supplied outside
// the metadata tree, independent of the per-language sync.
func (p *Pipeline) stepPatchChangelog(ctx context.Context) error {
	path := p.cfg.Publish.ChangelogFile
	if path == "" {
		return nil
	}

	data, err := afero.ReadFile(p.fsys, path)
	if err != nil {
		return fmt.Errorf("read changelog file %s: %w", path, err)
	}

	cl := editapi.Changelog{
		VersionCode: metadata.ResolveVersionCode(path, p.state.LastVersionCode),
		Language:    p.cfg.Publish.Language,
		Text:        string(data),
	}
	if err := p.svc.PatchChangelog(ctx, p.state.EditID, cl); err != nil {
		return err
	}

	p.log.Info("changelog patched", "version_code", cl.VersionCode, "language", cl.Language)
	return nil
}

// stepCommit finalizes the edit.
func (p *Pipeline) stepCommit(ctx context.Context) error {
	return p.svc.Commit(ctx, p.state.EditID)
}
