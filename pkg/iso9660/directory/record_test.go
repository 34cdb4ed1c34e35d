package directory_test

import (
	"encoding/binary"
	"testing"

	disctest "github.com/rstms/disc-kit/internal/testing"
	"github.com/rstms/disc-kit/pkg/iso9660/directory"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func TestParse(t *testing.T) {
	t.Run("file with version suffix", func(t *testing.T) {
		buf := disctest.EncodeRecord([]byte("SYSTEM3.EXE;1"), 40, 12345, false)
		rec, err := directory.Parse(buf, 0, nil, true)
		require.NoError(t, err)
		require.Equal(t, "SYSTEM3.EXE", rec.Name())
		require.Equal(t, uint32(40), rec.Sector())
		require.Equal(t, uint32(12345), rec.Size())
		require.False(t, rec.IsDirectory())
		require.False(t, rec.IsSpecial())
		require.Equal(t, len(buf), rec.Length())

		recorded, err := rec.RecordingTime()
		require.NoError(t, err)
		require.True(t, disctest.Recorded.Equal(recorded))
	})

	t.Run("version kept when not stripping", func(t *testing.T) {
		buf := disctest.EncodeRecord([]byte("SYSTEM3.EXE;1"), 40, 1, false)
		rec, err := directory.Parse(buf, 0, nil, false)
		require.NoError(t, err)
		require.Equal(t, "SYSTEM3.EXE;1", rec.Name())
	})

	t.Run("pseudo entries keep raw names", func(t *testing.T) {
		self, err := directory.Parse(disctest.EncodeRecord([]byte{0x00}, 18, 2048, true), 0, japanese.ShiftJIS, true)
		require.NoError(t, err)
		require.Equal(t, directory.SELF_IDENTIFIER, self.Name())
		require.True(t, self.IsSpecial())
		require.True(t, self.IsDirectory())

		parent, err := directory.Parse(disctest.EncodeRecord([]byte{0x01}, 18, 2048, true), 0, japanese.ShiftJIS, true)
		require.NoError(t, err)
		require.Equal(t, directory.PARENT_IDENTIFIER, parent.Name())
		require.True(t, parent.IsSpecial())
	})

	t.Run("shift jis identifier", func(t *testing.T) {
		name := append([]byte{0x83, 0x51, 0x81, 0x5B, 0x83, 0x80}, []byte(".DAT;1")...)
		rec, err := directory.Parse(disctest.EncodeRecord(name, 50, 10, false), 0, japanese.ShiftJIS, true)
		require.NoError(t, err)
		require.Equal(t, "ゲーム.DAT", rec.Name())
	})

	t.Run("padding record", func(t *testing.T) {
		rec, err := directory.Parse(make([]byte, 64), 10, nil, true)
		require.NoError(t, err)
		require.True(t, rec.IsPadding())
		require.Zero(t, rec.Sector())
		require.Zero(t, rec.Size())
		require.False(t, rec.IsDirectory())
	})

	t.Run("record at offset", func(t *testing.T) {
		first := disctest.EncodeRecord([]byte("A;1"), 20, 1, false)
		second := disctest.EncodeRecord([]byte("DATA"), 21, 2048, true)
		buf := append(append([]byte{}, first...), second...)
		rec, err := directory.Parse(buf, len(first), nil, true)
		require.NoError(t, err)
		require.Equal(t, "DATA", rec.Name())
		require.True(t, rec.IsDirectory())
	})

	t.Run("length past buffer", func(t *testing.T) {
		buf := disctest.EncodeRecord([]byte("A;1"), 20, 1, false)
		_, err := directory.Parse(buf[:len(buf)-2], 0, nil, true)
		require.ErrorIs(t, err, directory.ErrRecordOverrun)
	})

	t.Run("length below minimum", func(t *testing.T) {
		buf := make([]byte, 40)
		buf[0] = 20
		_, err := directory.Parse(buf, 0, nil, true)
		require.Error(t, err)
	})

	t.Run("identifier longer than record", func(t *testing.T) {
		buf := disctest.EncodeRecord([]byte("A;1"), 20, 1, false)
		buf[32] = 30
		_, err := directory.Parse(buf, 0, nil, true)
		require.Error(t, err)
	})

	t.Run("offset outside buffer", func(t *testing.T) {
		_, err := directory.Parse(make([]byte, 10), 10, nil, true)
		require.Error(t, err)
	})
}

func TestRecord_CheckByteOrder(t *testing.T) {
	buf := disctest.EncodeRecord([]byte("SYSTEM3.EXE;1"), 40, 12345, false)
	rec, err := directory.Parse(buf, 0, nil, true)
	require.NoError(t, err)
	require.NoError(t, rec.CheckByteOrder())

	binary.BigEndian.PutUint32(buf[14:], 99999)
	require.Error(t, rec.CheckByteOrder())
	require.Equal(t, uint32(12345), rec.Size())

	binary.BigEndian.PutUint32(buf[14:], 12345)
	binary.BigEndian.PutUint32(buf[6:], 41)
	require.ErrorContains(t, rec.CheckByteOrder(), "extent location")
	require.Equal(t, uint32(40), rec.Sector())

	padding, err := directory.Parse(make([]byte, 40), 0, nil, true)
	require.NoError(t, err)
	require.NoError(t, padding.CheckByteOrder())
}

func TestFileFlags(t *testing.T) {
	flags := directory.FileFlags{Hidden: true, Directory: true, MultiExtent: true}
	require.Equal(t, byte(0x83), flags.Marshal())
	require.Equal(t, flags, directory.UnmarshalFileFlags(0x83))

	// Reserved bits 5 and 6 are ignored.
	require.Equal(t, directory.FileFlags{Directory: true}, directory.UnmarshalFileFlags(0x62))
}
