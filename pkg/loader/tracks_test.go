package loader

import (
	"bytes"
	"testing"

	disctest "github.com/rstms/disc-kit/internal/testing"
	"github.com/rstms/disc-kit/pkg/option"
	"github.com/rstms/disc-kit/pkg/wave"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const mixedSheet = `TRACK 01 MODE1/2048
  INDEX 01 00:00:00
TRACK 02 AUDIO
  INDEX 00 00:00:20
  INDEX 01 00:00:22
TRACK 03 AUDIO
  INDEX 01 00:00:30
`

func openMixed(t *testing.T, fs afero.Fs) (*Disc, []byte) {
	t.Helper()
	cooked := disctest.BuildVolume("RIP", disctest.Dir("", disctest.File("A.TXT;1", []byte("a"))))
	cooked = append(cooked, make([]byte, 20*2048-len(cooked))...)
	img := append(cooked, disctest.Audio(15, 1)...)
	require.NoError(t, afero.WriteFile(fs, "/in/disc.bin", img, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/disc.cue", []byte(mixedSheet), 0o644))
	d, err := Open("/in/disc.bin", "/in/disc.cue", option.WithFs(fs))
	require.NoError(t, err)
	return d, img
}

func TestDisc_ExtractTracks(t *testing.T) {
	t.Run("all audio tracks", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		d, _ := openMixed(t, fs)
		defer d.Close()

		written, err := d.ExtractTracks("/out", 0)
		require.NoError(t, err)
		require.Equal(t, []string{"/out/Track02.wav", "/out/Track03.wav"}, written)

		exists, err := afero.Exists(fs, "/out/Track01.wav")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("single track", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		d, img := openMixed(t, fs)
		defer d.Close()

		written, err := d.ExtractTracks("/out", 2)
		require.NoError(t, err)
		require.Len(t, written, 1)

		data, err := afero.ReadFile(fs, "/out/Track02.wav")
		require.NoError(t, err)
		require.Equal(t, "RIFF", string(data[0:4]))
		require.Equal(t, "WAVE", string(data[8:12]))
		// Audio offsets use 2352 byte sectors whatever the data track layout.
		require.True(t, bytes.Equal(img[22*2352:30*2352], data[wave.HeaderSize:]))
	})

	t.Run("data track writes nothing", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		d, _ := openMixed(t, fs)
		defer d.Close()

		written, err := d.ExtractTracks("/out", 1)
		require.NoError(t, err)
		require.Empty(t, written)

		exists, err := afero.DirExists(fs, "/out")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("truncated audio is not written", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeMDSDisc(t, fs, "disc.mds")
		mdf, err := afero.ReadFile(fs, "/discs/disc.mdf")
		require.NoError(t, err)
		require.NoError(t, afero.WriteFile(fs, "/discs/disc.mdf", mdf[:len(mdf)-2352], 0o644))

		d, err := Open("/discs/disc.mdf", "/discs/disc.mds", option.WithFs(fs))
		require.NoError(t, err)
		defer d.Close()

		written, err := d.ExtractTracks("/out", 0)
		require.ErrorIs(t, err, wave.ErrShortPayload)
		require.Empty(t, written)
		exists, err := afero.Exists(fs, "/out/Track02.wav")
		require.NoError(t, err)
		require.False(t, exists)
	})

	require.Equal(t, "Track07.wav", TrackFileName(7))
}
