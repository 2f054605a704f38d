package metadata

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListingAllFields(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "lang/title.txt", []byte("My App\n"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "lang/short_description.txt", []byte("Short"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "lang/full_description.txt", []byte("Full description."), 0644))
	require.NoError(t, afero.WriteFile(fsys, "lang/video.txt", []byte("https://example.com/v"), 0644))

	listing := BuildListing(fsys, "en-US", "lang")

	assert.Equal(t, "en-US", listing.Language)
	require.NotNil(t, listing.Title)
	assert.Equal(t, "My App", *listing.Title)
	require.NotNil(t, listing.ShortDescription)
	assert.Equal(t, "Short", *listing.ShortDescription)
	require.NotNil(t, listing.FullDescription)
	assert.Equal(t, "Full description.", *listing.FullDescription)
	require.NotNil(t, listing.Video)
	assert.Equal(t, "https://example.com/v", *listing.Video)
}

func TestBuildListingPartial(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "lang/title.txt", []byte("Only Title"), 0644))

	listing := BuildListing(fsys, "de-DE", "lang")

	require.NotNil(t, listing.Title)
	assert.Equal(t, "Only Title", *listing.Title)
	assert.Nil(t, listing.ShortDescription)
	assert.Nil(t, listing.FullDescription)
	assert.Nil(t, listing.Video)
}

func TestBuildListingEmptyDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("lang", 0755))

	listing := BuildListing(fsys, "fr-FR", "lang")

	assert.Nil(t, listing.Title)
	assert.Nil(t, listing.ShortDescription)
	assert.Nil(t, listing.FullDescription)
	assert.Nil(t, listing.Video)
}
