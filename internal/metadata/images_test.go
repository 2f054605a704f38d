package metadata

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotByName(t *testing.T, name string) Slot {
	t.Helper()
	for _, s := range Slots {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no slot named %q", name)
	return Slot{}
}

func TestResolveImagesSingletonExtensionPriority(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "lang/images/icon.png", []byte("png"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "lang/images/icon.jpg", []byte("jpg"), 0644))

	paths := ResolveImages(fsys, "lang", slotByName(t, "icon"))

	assert.Equal(t, []string{"lang/images/icon.png"}, paths)
}

func TestResolveImagesSingletonFallsThroughExtensions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "lang/images/featureGraphic.jpeg", []byte("jpeg"), 0644))

	paths := ResolveImages(fsys, "lang", slotByName(t, "featureGraphic"))

	assert.Equal(t, []string{"lang/images/featureGraphic.jpeg"}, paths)
}

func TestResolveImagesSingletonAbsent(t *testing.T) {
	fsys := afero.NewMemMapFs()

	paths := ResolveImages(fsys, "lang", slotByName(t, "promoGraphic"))

	assert.Empty(t, paths)
}

func TestResolveImagesRepeatedListsDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "lang/images/phoneScreenshots/1.png", []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "lang/images/phoneScreenshots/2.png", []byte("b"), 0644))
	// Nested directories are not descended into.
	require.NoError(t, fsys.MkdirAll("lang/images/phoneScreenshots/nested", 0755))

	paths := ResolveImages(fsys, "lang", slotByName(t, "phoneScreenshots"))

	assert.Len(t, paths, 2)
	assert.Contains(t, paths, "lang/images/phoneScreenshots/1.png")
	assert.Contains(t, paths, "lang/images/phoneScreenshots/2.png")
}

func TestResolveImagesRepeatedAbsentOrEmpty(t *testing.T) {
	fsys := afero.NewMemMapFs()

	assert.Empty(t, ResolveImages(fsys, "lang", slotByName(t, "phoneScreenshots")))

	require.NoError(t, fsys.MkdirAll("lang/images/tvScreenshots", 0755))
	assert.Empty(t, ResolveImages(fsys, "lang", slotByName(t, "tvScreenshots")))
}

func TestResolveImagesUnknownKindPanics(t *testing.T) {
	fsys := afero.NewMemMapFs()

	assert.Panics(t, func() {
		ResolveImages(fsys, "lang", Slot{Name: "bogus", Kind: SlotKind(99)})
	})
}
