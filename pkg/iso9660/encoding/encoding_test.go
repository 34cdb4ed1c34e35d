package encoding

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func TestStripVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SYSTEM3.EXE;1", "SYSTEM3.EXE"},
		{"DATA.ALD;12", "DATA.ALD"},
		{"README;", "README"},
		{"GAMEDATA", "GAMEDATA"},
		{"ODD;NAME", "ODD;NAME"},
		{"\x00", "\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, StripVersion(tt.in))
		})
	}
}

func TestDecodeIdentifier(t *testing.T) {
	t.Run("shift_jis", func(t *testing.T) {
		// "ゲーム" in Shift_JIS
		raw := []byte{0x83, 0x51, 0x81, 0x5B, 0x83, 0x80}
		require.Equal(t, "ゲーム", DecodeIdentifier(raw, japanese.ShiftJIS))
	})

	t.Run("ascii passes through", func(t *testing.T) {
		require.Equal(t, "GAMEDATA", DecodeIdentifier([]byte("GAMEDATA"), japanese.ShiftJIS))
		require.Equal(t, "GAMEDATA", DecodeIdentifier([]byte("GAMEDATA"), nil))
	})
}

func TestByName(t *testing.T) {
	enc, err := ByName("SJIS")
	require.NoError(t, err)
	require.Equal(t, japanese.ShiftJIS, enc)

	enc, err = ByName("ascii")
	require.NoError(t, err)
	require.Nil(t, enc)

	_, err = ByName("klingon")
	require.Error(t, err)
}

func TestTrimIdentifier(t *testing.T) {
	require.Equal(t, "DISC LABEL", TrimIdentifier("DISC LABEL      \x00\x00"))
}

func TestUnmarshalUint32LSBMSB(t *testing.T) {
	buf := []byte{0x04, 0x03, 0x02, 0x01, 0x01, 0x02, 0x03, 0x04}
	v, err := UnmarshalUint32LSBMSB(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), v)

	buf[7] = 0xFF
	_, err = UnmarshalUint32LSBMSB(buf)
	require.Error(t, err)

	_, err = UnmarshalUint32LSBMSB(buf[:4])
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeRecordingTime(t *testing.T) {
	when, err := DecodeRecordingTime([]byte{98, 3, 12, 10, 30, 5, 36})
	require.NoError(t, err)
	require.True(t, time.Date(1998, time.March, 12, 10, 30, 5, 0, time.FixedZone("", 9*60*60)).Equal(when))
	_, offset := when.Zone()
	require.Equal(t, 9*60*60, offset)

	zero, err := DecodeRecordingTime(make([]byte, 7))
	require.NoError(t, err)
	require.True(t, zero.IsZero())

	_, err = DecodeRecordingTime([]byte{98, 13, 1, 0, 0, 0, 0})
	require.Error(t, err)
	_, err = DecodeRecordingTime([]byte{98, 1, 1})
	require.Error(t, err)
}
