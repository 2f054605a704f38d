// Package metadata maps the on-disk store-listing convention onto edit
// store update requests. The tree is read-only input:
//
//	metadata/<lang>/{title.txt, short_description.txt,
//	                 full_description.txt, video.txt,
//	                 changelog/<versionCode>.<ext>,
//	                 images/<slot>.{png,jpg,jpeg},
//	                 images/<slot>/*}
package metadata

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/stagehand-cli/stagehand/internal/editapi"
	"github.com/stagehand-cli/stagehand/internal/logging"
	"github.com/stagehand-cli/stagehand/internal/metrics"
)

// treeDir is the conventional subdirectory of the metadata root.
const treeDir = "metadata"

// Synchronizer walks a per-language directory and issues the listing,
// changelog and image updates for that language.
type Synchronizer struct {
	svc  editapi.Service
	fsys afero.Fs
	pkg  string
}

// NewSynchronizer creates a synchronizer over the given filesystem.
func NewSynchronizer(svc editapi.Service, fsys afero.Fs, pkg string) *Synchronizer {
	return &Synchronizer{svc: svc, fsys: fsys, pkg: pkg}
}

// Languages lists the language directories under root. The order is
// whatever the filesystem returns; no ordering is guaranteed.
func (s *Synchronizer) Languages(root string) ([]string, error) {
	dir := filepath.Join(root, treeDir)
	entries, err := afero.ReadDir(s.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read metadata tree %s: %w", dir, err)
	}

	var langs []string
	for _, entry := range entries {
		if entry.IsDir() {
			langs = append(langs, entry.Name())
		}
	}
	return langs, nil
}

// LanguageDir returns the directory for one language under root.
func (s *Synchronizer) LanguageDir(root, language string) string {
	return filepath.Join(root, treeDir, language)
}

// SyncLanguage pushes one language's metadata into the edit. The listing
// is patched unconditionally, even when every field is absent. Unreadable
// changelog or image files are logged and skipped; a failed remote call
// fails the language.
func (s *Synchronizer) SyncLanguage(ctx context.Context, editID, language, langDir string, fallbackVersion int64) error {
	log := logging.LanguageLogger(s.pkg, language)

	listing := BuildListing(s.fsys, language, langDir)
	if err := s.svc.PatchListing(ctx, editID, listing); err != nil {
		return fmt.Errorf("patch listing for %s: %w", language, err)
	}
	if m := metrics.Get(); m != nil {
		m.ListingsPatched.Inc()
	}
	log.Debug("listing patched")

	if err := s.syncChangelogs(ctx, editID, language, langDir, fallbackVersion, log); err != nil {
		return err
	}
	if err := s.syncImages(ctx, editID, language, langDir, log); err != nil {
		return err
	}

	if m := metrics.Get(); m != nil {
		m.LanguagesSynced.Inc()
	}
	return nil
}

// syncChangelogs issues one changelog patch per file in changelog/.
func (s *Synchronizer) syncChangelogs(ctx context.Context, editID, language, langDir string, fallbackVersion int64, log *slog.Logger) error {
	dir := filepath.Join(langDir, changelogDir)
	entries, err := afero.ReadDir(s.fsys, dir)
	if err != nil {
		// No changelog directory is the common case, not a problem.
		return nil
	}

	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := afero.ReadFile(s.fsys, path)
		if err != nil {
			log.Warn("skipping unreadable changelog", "file", path, "error", err)
			if m := metrics.Get(); m != nil {
				m.IncMetadataSkipped("changelog")
			}
			continue
		}

		cl := editapi.Changelog{
			VersionCode: ResolveVersionCode(entry.Name(), fallbackVersion),
			Language:    language,
			Text:        string(bytes.TrimSpace(data)),
		}
		if err := s.svc.PatchChangelog(ctx, editID, cl); err != nil {
			return fmt.Errorf("patch changelog %s for %s: %w", entry.Name(), language, err)
		}
		if m := metrics.Get(); m != nil {
			m.ChangelogsPatched.Inc()
		}
		log.Debug("changelog patched", "version_code", cl.VersionCode, "file", entry.Name())
	}

	return nil
}

// syncImages uploads every resolved image for every slot. A slot with no
// resolved files is silently skipped.
func (s *Synchronizer) syncImages(ctx context.Context, editID, language, langDir string, log *slog.Logger) error {
	for _, slot := range Slots {
		for _, path := range ResolveImages(s.fsys, langDir, slot) {
			data, err := afero.ReadFile(s.fsys, path)
			if err != nil {
				log.Warn("skipping unreadable image", "file", path, "error", err)
				if m := metrics.Get(); m != nil {
					m.IncMetadataSkipped("image")
				}
				continue
			}

			id, err := s.svc.UploadImage(ctx, editID, language, slot.Name, bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("upload image %s for %s: %w", filepath.Base(path), language, err)
			}
			if m := metrics.Get(); m != nil {
				m.ImagesUploaded.Inc()
			}
			log.Debug("image uploaded", "slot", slot.Name, "file", filepath.Base(path), "image_id", id)
		}
	}

	return nil
}
