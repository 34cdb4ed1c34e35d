package cue

import (
	"bytes"
	"io"
	"strings"
	"testing"

	disctest "github.com/rstms/disc-kit/internal/testing"
	"github.com/rstms/disc-kit/pkg/iso9660"
	"github.com/rstms/disc-kit/pkg/sector"
	"github.com/rstms/disc-kit/pkg/wave"
	"github.com/stretchr/testify/require"
)

const mixedSheet = `FILE "mixed.bin" BINARY
  TRACK 01 MODE1/2352
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    INDEX 00 00:00:30
    INDEX 01 00:00:32
  TRACK 03 AUDIO
    INDEX 01 00:00:40
`

// mixedImage returns 30 raw data sectors followed by 20 audio sectors.
func mixedImage(t *testing.T) []byte {
	t.Helper()
	cooked := disctest.BuildVolume("MIXED", disctest.Dir("",
		disctest.File("GAME.BIN;1", []byte("payload")),
	))
	require.LessOrEqual(t, len(cooked), 30*2048)
	cooked = append(cooked, make([]byte, 30*2048-len(cooked))...)
	img := disctest.ToRaw(cooked, 1)
	return append(img, disctest.Audio(20, 7)...)
}

// sizedImage reports a size without backing bytes.
type sizedImage struct {
	io.ReaderAt
	size int64
}

func (s sizedImage) Size() int64 { return s.size }

func TestNewReader(t *testing.T) {
	t.Run("mixed mode", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(mixedImage(t)), strings.NewReader(mixedSheet))
		require.NoError(t, err)
		require.Equal(t, 3, r.MaxTrack())
		require.Equal(t, int64(30*2352), r.dataEnd)
		require.Equal(t, 2352, r.sectorSize)
		require.Equal(t, 16, r.dataOffset)

		var _ sector.Reader = r
	})

	t.Run("geometry by track type", func(t *testing.T) {
		for mode, geo := range map[string][2]int{
			"MODE1/2048": {2048, 0},
			"MODE1/2352": {2352, 16},
			"MODE2/2352": {2352, 24},
		} {
			r, err := NewReader(bytes.NewReader(nil), strings.NewReader("TRACK 01 "+mode+"\nINDEX 01 00:00:00\n"))
			require.NoError(t, err, mode)
			require.Equal(t, geo[0], r.sectorSize, mode)
			require.Equal(t, geo[1], r.dataOffset, mode)
		}
	})

	t.Run("audio first track", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader(nil), strings.NewReader("TRACK 01 AUDIO\nINDEX 01 00:00:00\n"))
		require.ErrorIs(t, err, ErrNoDataTrack)
	})

	t.Run("missing first track", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader(nil), strings.NewReader("TRACK 02 MODE1/2352\nINDEX 01 00:00:00\n"))
		require.ErrorIs(t, err, ErrNoDataTrack)
	})

	t.Run("unsupported mode", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader(nil), strings.NewReader("TRACK 01 CDG\nINDEX 01 00:00:00\n"))
		require.ErrorIs(t, err, ErrUnsupportedTrackMode)
	})
}

func TestReader_ReadSector(t *testing.T) {
	r, err := NewReader(bytes.NewReader(mixedImage(t)), strings.NewReader(mixedSheet))
	require.NoError(t, err)

	fs, err := iso9660.Create(r)
	require.NoError(t, err)
	require.Equal(t, "MIXED", fs.VolumeLabel())

	rec, err := fs.Lookup("game.bin")
	require.NoError(t, err)
	data, err := fs.ExtractFile(rec)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))

	_, err = r.ReadSector(29)
	require.NoError(t, err)
	_, err = r.ReadSector(30)
	require.ErrorIs(t, err, sector.ErrSectorOutOfRange)
}

func TestReader_Span(t *testing.T) {
	t.Run("second track starts at its pregap", func(t *testing.T) {
		img := sizedImage{size: 20000 * 2352}
		r, err := NewReader(img, strings.NewReader(sampleSheet))
		require.NoError(t, err)

		start, end, err := r.Span(2)
		require.NoError(t, err)
		require.Equal(t, int64(13650*2352), start)
		require.Equal(t, int64((4*60*75+10*75+15)*2352), end)

		start, end, err = r.Span(3)
		require.NoError(t, err)
		require.Equal(t, int64((4*60*75+10*75+15)*2352), start)
		require.Equal(t, img.Size(), end)

		_, _, err = r.Span(9)
		require.Error(t, err)
	})

	t.Run("cooked data track then audio", func(t *testing.T) {
		sheet := "TRACK 01 MODE1/2048\nINDEX 01 00:00:00\nTRACK 02 AUDIO\nINDEX 00 03:00:00\nINDEX 01 03:02:00\n"
		img := sizedImage{size: 14000 * 2352}
		r, err := NewReader(img, strings.NewReader(sheet))
		require.NoError(t, err)
		require.Equal(t, 2, r.MaxTrack())

		c, err := r.ExtractTrack(1)
		require.NoError(t, err)
		require.Nil(t, c)

		first, err := r.Tracks().Get(2).StartSector()
		require.NoError(t, err)
		require.Equal(t, uint32(13500), first)

		start, end, err := r.Span(2)
		require.NoError(t, err)
		require.Equal(t, int64(13650*2352), start)
		require.Equal(t, img.Size(), end)
	})

	t.Run("image smaller than last track start", func(t *testing.T) {
		r, err := NewReader(sizedImage{size: 100}, strings.NewReader(sampleSheet))
		require.NoError(t, err)
		_, _, err = r.Span(3)
		require.Error(t, err)
	})
}

func TestReader_ExtractTrack(t *testing.T) {
	img := mixedImage(t)
	r, err := NewReader(bytes.NewReader(img), strings.NewReader(mixedSheet))
	require.NoError(t, err)

	t.Run("data track is not extracted", func(t *testing.T) {
		c, err := r.ExtractTrack(1)
		require.NoError(t, err)
		require.Nil(t, c)
	})

	t.Run("missing track is not extracted", func(t *testing.T) {
		c, err := r.ExtractTrack(7)
		require.NoError(t, err)
		require.Nil(t, c)
	})

	t.Run("middle track ends at next track", func(t *testing.T) {
		c, err := r.ExtractTrack(2)
		require.NoError(t, err)
		require.NotNil(t, c)
		require.Equal(t, int64(8*2352), c.PayloadLen())
		require.Equal(t, uint32(8*2352+36), c.Header().RIFFSize())

		var out bytes.Buffer
		_, err = c.WriteTo(&out)
		require.NoError(t, err)
		require.Equal(t, img[32*2352:40*2352], out.Bytes()[wave.HeaderSize:])
	})

	t.Run("last track runs to end of image", func(t *testing.T) {
		c, err := r.ExtractTrack(3)
		require.NoError(t, err)
		require.Equal(t, int64(10*2352), c.PayloadLen())
		require.Equal(t, uint32(10*2352), c.Header().DataSize())
	})

	t.Run("truncated image", func(t *testing.T) {
		short := img[:35*2352]
		r, err := NewReader(bytes.NewReader(short), strings.NewReader(mixedSheet))
		require.NoError(t, err)

		c, err := r.ExtractTrack(2)
		require.ErrorIs(t, err, wave.ErrShortPayload)
		require.Nil(t, c)
		require.Contains(t, err.Error(), "expected 18816 bytes, but read 7056 bytes")
	})

	t.Run("track too large for a wave header", func(t *testing.T) {
		sheet := "TRACK 01 MODE1/2048\nINDEX 01 00:00:00\nTRACK 02 AUDIO\nINDEX 01 00:00:02\n"
		r, err := NewReader(sizedImage{size: 2_000_000 * 2352}, strings.NewReader(sheet))
		require.NoError(t, err)

		c, err := r.ExtractTrack(2)
		require.ErrorIs(t, err, wave.ErrTooLarge)
		require.Nil(t, c)
	})
}
