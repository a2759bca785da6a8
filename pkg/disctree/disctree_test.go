package disctree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/bgrewell/dts-kit/pkg/vfs"
)

// fakeFS is a minimal in-memory vfs.FileSystem double keyed by directory
// path, enough to drive Recognize/scanDtsDir without a real backend.
type fakeFS struct {
	dirs map[string][]vfs.DirEntry
}

func (f *fakeFS) IsFile(path string) bool                 { return false }
func (f *fakeFS) IsDir(path string) bool                   { _, ok := f.dirs[path]; return ok }
func (f *fakeFS) OpenFile(path string) (vfs.File, error)   { return nil, nil }
func (f *fakeFS) ReadDir(path string) ([]vfs.DirEntry, error) {
	return f.dirs[path], nil
}

func TestRecognizeReturnsNilWithoutMarker(t *testing.T) {
	fs := &fakeFS{dirs: map[string][]vfs.DirEntry{
		"/disc": {{Path: "/disc/readme.txt", Kind: vfs.KindFile}},
	}}
	tree, err := Recognize(fs, "/disc")
	require.NoError(t, err)
	require.Nil(t, tree)
}

func TestRecognizeFindsReelsAndTrailers(t *testing.T) {
	fs := &fakeFS{dirs: map[string][]vfs.DirEntry{
		"/disc": {
			{Path: "/disc/dts.exe", Kind: vfs.KindFile},
			{Path: "/disc/dts", Kind: vfs.KindDirectory},
		},
		"/disc/dts": {
			{Path: "/disc/dts/r1t5.aud", Kind: vfs.KindFile},
			{Path: "/disc/dts/r2t5.aud", Kind: vfs.KindFile},
			{Path: "/disc/dts/r14trlr.txt", Kind: vfs.KindFile},
			{Path: "/disc/dts/r14t5.aud", Kind: vfs.KindFile},
			{Path: "/disc/dts/other.bin", Kind: vfs.KindFile},
		},
	}}

	tree, err := Recognize(fs, "/disc")
	require.NoError(t, err)
	require.NotNil(t, tree)
	require.Len(t, tree.Reels, 2)
	require.Equal(t, "r1t5.aud", tree.Reels[0].LowerBase())
	require.Equal(t, "r2t5.aud", tree.Reels[1].LowerBase())
	require.NotNil(t, tree.Trailers)
	require.Equal(t, "r14trlr.txt", tree.Trailers.Metadata.LowerBase())
	require.Equal(t, "r14t5.aud", tree.Trailers.Audio.LowerBase())
}

func TestRecognizeOmitsTrailersWhenOnlyOneHalfPresent(t *testing.T) {
	fs := &fakeFS{dirs: map[string][]vfs.DirEntry{
		"/disc": {
			{Path: "/disc/dts.exe", Kind: vfs.KindFile},
			{Path: "/disc/dts", Kind: vfs.KindDirectory},
		},
		"/disc/dts": {
			{Path: "/disc/dts/r14trlr.txt", Kind: vfs.KindFile},
		},
	}}

	tree, err := Recognize(fs, "/disc")
	require.NoError(t, err)
	require.NotNil(t, tree)
	require.Nil(t, tree.Trailers)
}

func TestReelPatternRejectsOutOfRangeReelNumber(t *testing.T) {
	require.False(t, reelPattern.MatchString("r15t5.aud"))
	require.True(t, reelPattern.MatchString("r13t5.aue"))
}

func TestRecognizeIsCaseSensitiveForTheDiscMarker(t *testing.T) {
	fs := &fakeFS{dirs: map[string][]vfs.DirEntry{
		"/disc": {
			{Path: "/disc/DTS.EXE", Kind: vfs.KindFile},
			{Path: "/disc/DTS", Kind: vfs.KindDirectory},
		},
	}}

	tree, err := Recognize(fs, "/disc")
	require.NoError(t, err)
	require.Nil(t, tree)
}
