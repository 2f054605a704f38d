package metadata

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/stagehand-cli/stagehand/internal/editapi"
)

// Text files feeding a listing patch, relative to the language directory.
const (
	titleFile            = "title.txt"
	shortDescriptionFile = "short_description.txt"
	fullDescriptionFile  = "full_description.txt"
	videoFile            = "video.txt"
)

// changelogDir holds per-version release-notes files named by version code.
const changelogDir = "changelog"

// BuildListing assembles a listing patch for one language from the text
// files present in langDir. A missing or unreadable file omits that field;
// a patch with no fields at all is still valid.
func BuildListing(fsys afero.Fs, language, langDir string) editapi.Listing {
	listing := editapi.Listing{Language: language}
	listing.Title = readTextField(fsys, filepath.Join(langDir, titleFile))
	listing.ShortDescription = readTextField(fsys, filepath.Join(langDir, shortDescriptionFile))
	listing.FullDescription = readTextField(fsys, filepath.Join(langDir, fullDescriptionFile))
	listing.Video = readTextField(fsys, filepath.Join(langDir, videoFile))
	return listing
}

// readTextField reads one listing text file, returning nil when absent.
func readTextField(fsys afero.Fs, path string) *string {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil
	}
	text := strings.TrimSpace(string(data))
	return &text
}
