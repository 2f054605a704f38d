package metadata

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// SlotKind selects the resolution strategy for an image slot.
type SlotKind int

const (
	// SlotSingle holds at most one file, probed by extension.
	SlotSingle SlotKind = iota
	// SlotRepeated holds zero or more files from a directory.
	SlotRepeated
)

// Slot is one logical image slot in a store listing.
type Slot struct {
	Name string
	Kind SlotKind
}

// Slots is the fixed set of image slots the store knows about. An image
// name outside this table is a programming error, not user input.
var Slots = []Slot{
	{Name: "featureGraphic", Kind: SlotSingle},
	{Name: "icon", Kind: SlotSingle},
	{Name: "promoGraphic", Kind: SlotSingle},
	{Name: "tvBanner", Kind: SlotSingle},
	{Name: "phoneScreenshots", Kind: SlotRepeated},
	{Name: "sevenInchScreenshots", Kind: SlotRepeated},
	{Name: "tenInchScreenshots", Kind: SlotRepeated},
	{Name: "tvScreenshots", Kind: SlotRepeated},
	{Name: "wearScreenshots", Kind: SlotRepeated},
}

// imageExtensions is the probe order for singleton slots. The order is
// fixed so resolution is deterministic when multiple candidates exist.
var imageExtensions = []string{".png", ".jpg", ".jpeg"}

// ResolveImages returns the file paths for one slot under a language
// directory. Singleton slots yield zero or one path; repeated slots yield
// every regular file directly inside images/<slot>/, without recursion.
// A missing file or directory yields an empty result, never an error.
func ResolveImages(fsys afero.Fs, langDir string, slot Slot) []string {
	imagesDir := filepath.Join(langDir, "images")

	switch slot.Kind {
	case SlotSingle:
		for _, ext := range imageExtensions {
			path := filepath.Join(imagesDir, slot.Name+ext)
			if info, err := fsys.Stat(path); err == nil && info.Mode().IsRegular() {
				return []string{path}
			}
		}
		return nil

	case SlotRepeated:
		dir := filepath.Join(imagesDir, slot.Name)
		info, err := fsys.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil
		}

		entries, err := afero.ReadDir(fsys, dir)
		if err != nil {
			return nil
		}

		var paths []string
		for _, entry := range entries {
			if entry.Mode().IsRegular() {
				paths = append(paths, filepath.Join(dir, entry.Name()))
			}
		}
		return paths

	default:
		panic(fmt.Sprintf("metadata: unknown slot kind %d for slot %q", slot.Kind, slot.Name))
	}
}
