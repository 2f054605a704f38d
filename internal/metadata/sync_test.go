package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand-cli/stagehand/internal/editapi"
	"github.com/stagehand-cli/stagehand/internal/track"
)

// fakeService records every edit store call.
type fakeService struct {
	calls      []string
	listings   []editapi.Listing
	changelogs []editapi.Changelog
	images     []string // "<language>/<slot>"

	failPatchListing bool
	failUploadImage  bool
}

func (f *fakeService) CreateEdit(ctx context.Context) (*editapi.Edit, error) {
	f.calls = append(f.calls, "createEdit")
	return &editapi.Edit{ID: "edit-1"}, nil
}

func (f *fakeService) GetTrack(ctx context.Context, editID, trackName string) (*track.Update, error) {
	f.calls = append(f.calls, "getTrack")
	return &track.Update{Track: trackName}, nil
}

func (f *fakeService) UpdateTrack(ctx context.Context, editID string, upd track.Update) (*track.Update, error) {
	f.calls = append(f.calls, "updateTrack")
	return &upd, nil
}

func (f *fakeService) UploadArtifact(ctx context.Context, editID string, artifact io.Reader) (int64, error) {
	f.calls = append(f.calls, "uploadArtifact")
	return 1, nil
}

func (f *fakeService) PatchListing(ctx context.Context, editID string, listing editapi.Listing) error {
	f.calls = append(f.calls, "patchListing")
	if f.failPatchListing {
		return errors.New("listing rejected")
	}
	f.listings = append(f.listings, listing)
	return nil
}

func (f *fakeService) PatchChangelog(ctx context.Context, editID string, cl editapi.Changelog) error {
	f.calls = append(f.calls, "patchChangelog")
	f.changelogs = append(f.changelogs, cl)
	return nil
}

func (f *fakeService) UploadImage(ctx context.Context, editID, language, slot string, image io.Reader) (string, error) {
	f.calls = append(f.calls, "uploadImage")
	if f.failUploadImage {
		return "", errors.New("image rejected")
	}
	f.images = append(f.images, fmt.Sprintf("%s/%s", language, slot))
	return "img-1", nil
}

func (f *fakeService) Commit(ctx context.Context, editID string) error {
	f.calls = append(f.calls, "commit")
	return nil
}

func (f *fakeService) Abort(ctx context.Context, editID string) error {
	f.calls = append(f.calls, "abort")
	return nil
}

var _ editapi.Service = (*fakeService)(nil)

func TestSyncLanguageTitleOnlyStillPatches(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "root/metadata/en-US/title.txt", []byte("My App"), 0644))

	svc := &fakeService{}
	s := NewSynchronizer(svc, fsys, "com.example.app")

	err := s.SyncLanguage(context.Background(), "edit-1", "en-US", "root/metadata/en-US", 7)
	require.NoError(t, err)

	require.Len(t, svc.listings, 1)
	require.NotNil(t, svc.listings[0].Title)
	assert.Equal(t, "My App", *svc.listings[0].Title)
	assert.Nil(t, svc.listings[0].FullDescription)
}

func TestSyncLanguageEmptyDirStillPatches(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("root/metadata/en-US", 0755))

	svc := &fakeService{}
	s := NewSynchronizer(svc, fsys, "com.example.app")

	err := s.SyncLanguage(context.Background(), "edit-1", "en-US", "root/metadata/en-US", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"patchListing"}, svc.calls)
}

func TestSyncLanguageListingFailureIsFatal(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("root/metadata/en-US", 0755))

	svc := &fakeService{failPatchListing: true}
	s := NewSynchronizer(svc, fsys, "com.example.app")

	err := s.SyncLanguage(context.Background(), "edit-1", "en-US", "root/metadata/en-US", 0)
	assert.Error(t, err)
}

func TestSyncLanguageChangelogs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := "root/metadata/en-US"
	require.NoError(t, afero.WriteFile(fsys, dir+"/changelog/42.txt", []byte("Fixed things.\n"), 0644))
	require.NoError(t, afero.WriteFile(fsys, dir+"/changelog/latest.txt", []byte("Fallback notes."), 0644))

	svc := &fakeService{}
	s := NewSynchronizer(svc, fsys, "com.example.app")

	err := s.SyncLanguage(context.Background(), "edit-1", "en-US", dir, 99)
	require.NoError(t, err)

	require.Len(t, svc.changelogs, 2)
	byCode := map[int64]string{}
	for _, cl := range svc.changelogs {
		byCode[cl.VersionCode] = cl.Text
		assert.Equal(t, "en-US", cl.Language)
	}
	assert.Equal(t, "Fixed things.", byCode[42])
	assert.Equal(t, "Fallback notes.", byCode[99])
}

func TestSyncLanguageImages(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := "root/metadata/en-US"
	require.NoError(t, afero.WriteFile(fsys, dir+"/images/icon.png", []byte("icon"), 0644))
	require.NoError(t, afero.WriteFile(fsys, dir+"/images/phoneScreenshots/1.png", []byte("s1"), 0644))
	require.NoError(t, afero.WriteFile(fsys, dir+"/images/phoneScreenshots/2.png", []byte("s2"), 0644))

	svc := &fakeService{}
	s := NewSynchronizer(svc, fsys, "com.example.app")

	err := s.SyncLanguage(context.Background(), "edit-1", "en-US", dir, 0)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"en-US/icon",
		"en-US/phoneScreenshots",
		"en-US/phoneScreenshots",
	}, svc.images)
}

func TestSyncLanguageImageUploadFailureIsFatal(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := "root/metadata/en-US"
	require.NoError(t, afero.WriteFile(fsys, dir+"/images/icon.png", []byte("icon"), 0644))

	svc := &fakeService{failUploadImage: true}
	s := NewSynchronizer(svc, fsys, "com.example.app")

	err := s.SyncLanguage(context.Background(), "edit-1", "en-US", dir, 0)
	assert.Error(t, err)
}

func TestLanguages(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("root/metadata/en-US", 0755))
	require.NoError(t, fsys.MkdirAll("root/metadata/de-DE", 0755))
	require.NoError(t, afero.WriteFile(fsys, "root/metadata/stray.txt", []byte("x"), 0644))

	s := NewSynchronizer(&fakeService{}, fsys, "com.example.app")

	langs, err := s.Languages("root")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en-US", "de-DE"}, langs)
}

func TestLanguagesMissingTree(t *testing.T) {
	s := NewSynchronizer(&fakeService{}, afero.NewMemMapFs(), "com.example.app")

	_, err := s.Languages("root")
	assert.Error(t, err)
}
