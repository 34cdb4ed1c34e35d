package iso9660_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	disctest "github.com/rstms/disc-kit/internal/testing"
	"github.com/rstms/disc-kit/pkg/iso9660"
	"github.com/rstms/disc-kit/pkg/iso9660/directory"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
	"github.com/rstms/disc-kit/pkg/raw"
	"github.com/rstms/disc-kit/pkg/sector"
	"github.com/stretchr/testify/require"
)

func payload(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i%253)
	}
	return b
}

func mount(t *testing.T, img []byte, opts ...option.OpenOption) *iso9660.FileSystem {
	t.Helper()
	r, err := raw.NewReader(bytes.NewReader(img), opts...)
	require.NoError(t, err)
	fs, err := iso9660.Create(r, opts...)
	require.NoError(t, err)
	return fs
}

func sampleVolume() []byte {
	return disctest.BuildVolume("SAMPLE_DISC", disctest.Dir("",
		disctest.File("README.TXT;1", []byte("hello disc\n")),
		disctest.Dir("GAMEDATA",
			disctest.File("SYSTEM3.EXE;1", payload(5000, 3)),
			disctest.Dir("SOUND",
				disctest.File("BGM01.DAT;1", payload(2048, 9)),
			),
		),
		disctest.File("EMPTY.BIN;1", nil),
	))
}

func TestCreate(t *testing.T) {
	t.Run("cooked image", func(t *testing.T) {
		fs := mount(t, sampleVolume())
		require.Equal(t, "SAMPLE_DISC", fs.VolumeLabel())
		require.True(t, fs.RootDir().IsDirectory())
		require.Equal(t, uint32(18), fs.RootDir().Sector())
	})

	t.Run("raw mode1 image", func(t *testing.T) {
		fs := mount(t, disctest.ToRaw(sampleVolume(), 1))
		require.Equal(t, "SAMPLE_DISC", fs.VolumeLabel())
		rec, err := fs.Lookup("/GAMEDATA/SOUND/BGM01.DAT")
		require.NoError(t, err)
		data, err := fs.ExtractFile(rec)
		require.NoError(t, err)
		require.Equal(t, payload(2048, 9), data)
	})

	t.Run("raw mode2 image", func(t *testing.T) {
		fs := mount(t, disctest.ToRaw(sampleVolume(), 2))
		rec, err := fs.Lookup("GAMEDATA/SYSTEM3.EXE")
		require.NoError(t, err)
		data, err := fs.ExtractFile(rec)
		require.NoError(t, err)
		require.Equal(t, payload(5000, 3), data)
	})

	t.Run("missing primary descriptor", func(t *testing.T) {
		img := sampleVolume()
		img[16*2048] = 2
		r, err := raw.NewReader(bytes.NewReader(img))
		require.NoError(t, err)
		_, err = iso9660.Create(r)
		require.ErrorIs(t, err, iso9660.ErrNoPrimaryDescriptor)
	})

	t.Run("image too small", func(t *testing.T) {
		r, err := raw.NewReader(bytes.NewReader(make([]byte, 4*2048)))
		require.NoError(t, err)
		_, err = iso9660.Create(r)
		require.Error(t, err)
	})
}

func TestReadDir(t *testing.T) {
	fs := mount(t, sampleVolume())

	t.Run("root listing", func(t *testing.T) {
		entries, err := fs.ReadDir(fs.RootDir())
		require.NoError(t, err)
		require.Len(t, entries, 5)
		require.Equal(t, directory.SELF_IDENTIFIER, entries[0].Name())
		require.Equal(t, directory.PARENT_IDENTIFIER, entries[1].Name())
		require.Equal(t, "README.TXT", entries[2].Name())
		require.Equal(t, "GAMEDATA", entries[3].Name())
		require.True(t, entries[3].IsDirectory())
		require.Equal(t, "EMPTY.BIN", entries[4].Name())
	})

	t.Run("version kept when not stripping", func(t *testing.T) {
		fs := mount(t, sampleVolume(), option.WithStripVersionInfo(false))
		entries, err := fs.ReadDir(fs.RootDir())
		require.NoError(t, err)
		require.Equal(t, "README.TXT;1", entries[2].Name())
	})

	t.Run("file is not a directory", func(t *testing.T) {
		rec, err := fs.GetDirEnt("README.TXT", fs.RootDir())
		require.NoError(t, err)
		_, err = fs.ReadDir(rec)
		require.ErrorIs(t, err, iso9660.ErrNotDirectory)

		_, err = fs.ReadDir(nil)
		require.ErrorIs(t, err, iso9660.ErrNotDirectory)
	})

	t.Run("directory spanning sectors skips padding", func(t *testing.T) {
		var files []*disctest.Node
		for i := 0; i < 80; i++ {
			files = append(files, disctest.File(fmt.Sprintf("FILE%03d.BIN;1", i), []byte{byte(i)}))
		}
		root := disctest.Dir("", files...)
		fs := mount(t, disctest.BuildVolume("BIG", root))
		require.Equal(t, uint32(2*2048), fs.RootDir().Size())

		entries, err := fs.ReadDir(fs.RootDir())
		require.NoError(t, err)
		require.Len(t, entries, 82)
		for i, e := range entries[2:] {
			require.Equal(t, fmt.Sprintf("FILE%03d.BIN", i), e.Name())
		}

		last, err := fs.ExtractFile(entries[81])
		require.NoError(t, err)
		require.Equal(t, []byte{79}, last)
	})

	t.Run("record crossing a sector boundary", func(t *testing.T) {
		broken := disctest.Dir("BROKEN")
		img := disctest.BuildVolume("BROKEN", disctest.Dir("", broken))

		var records [][]byte
		records = append(records,
			disctest.EncodeRecord([]byte{0x00}, broken.Sector(), 2048, true),
			disctest.EncodeRecord([]byte{0x01}, 18, 2048, true),
		)
		// 68 + 9*218 puts the next record at 2030.
		for i := 0; i < 9; i++ {
			records = append(records, disctest.EncodeRecord([]byte(strings.Repeat("F", 183)+";1"), 0, 0, false))
		}
		sec := img[int(broken.Sector())*2048 : int(broken.Sector()+1)*2048]
		pos := 0
		for _, r := range records {
			pos += copy(sec[pos:], r)
		}
		require.Equal(t, 2030, pos)
		sec[pos] = 34

		fs := mount(t, img)
		dir, err := fs.Lookup("BROKEN")
		require.NoError(t, err)
		_, err = fs.ReadDir(dir)
		require.ErrorIs(t, err, iso9660.ErrRecordCrossesSector)
	})
}

func TestGetDirEnt(t *testing.T) {
	fs := mount(t, sampleVolume())

	rec, err := fs.GetDirEnt("gamedata", fs.RootDir())
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "GAMEDATA", rec.Name())
	require.True(t, rec.IsDirectory())

	exe, err := fs.GetDirEnt("system3.exe", rec)
	require.NoError(t, err)
	require.NotNil(t, exe)
	require.Equal(t, uint32(5000), exe.Size())

	missing, err := fs.GetDirEnt("nothing.here", fs.RootDir())
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestExtractFile(t *testing.T) {
	t.Run("contents match", func(t *testing.T) {
		fs := mount(t, sampleVolume())
		rec, err := fs.Lookup("README.TXT")
		require.NoError(t, err)
		data, err := fs.ExtractFile(rec)
		require.NoError(t, err)
		require.Equal(t, "hello disc\n", string(data))

		chunks, err := fs.ReadFile(rec)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
	})

	t.Run("multi sector file chunks", func(t *testing.T) {
		fs := mount(t, sampleVolume())
		rec, err := fs.Lookup("gamedata/system3.exe")
		require.NoError(t, err)
		chunks, err := fs.ReadFile(rec)
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		require.Len(t, chunks[0], 2048)
		require.Len(t, chunks[2], 5000-4096)
	})

	t.Run("empty file", func(t *testing.T) {
		fs := mount(t, sampleVolume())
		rec, err := fs.Lookup("EMPTY.BIN")
		require.NoError(t, err)
		data, err := fs.ExtractFile(rec)
		require.NoError(t, err)
		require.Empty(t, data)
	})

	t.Run("truncated image", func(t *testing.T) {
		img := disctest.BuildVolume("TRUNC", disctest.Dir("", disctest.File("BIG.BIN;1", payload(4096, 1))))
		fs := mount(t, img[:len(img)-100])
		rec, err := fs.Lookup("BIG.BIN")
		require.NoError(t, err)

		_, err = fs.ExtractFile(rec)
		require.ErrorIs(t, err, iso9660.ErrSizeMismatch)
		var mismatch *iso9660.SizeMismatchError
		require.True(t, errors.As(err, &mismatch))
		require.Equal(t, int64(4096), mismatch.Expected)
		require.Equal(t, int64(3996), mismatch.Actual)
		require.Contains(t, err.Error(), "expected 4096 bytes, but read 3996 bytes")
	})

	t.Run("declared size larger than image", func(t *testing.T) {
		img := disctest.BuildVolume("CORRUPT", disctest.Dir("", disctest.File("BIG.BIN;1", payload(4096, 1))))
		at := bytes.Index(img, []byte("BIG.BIN;1")) - 33
		require.Greater(t, at, 0)
		binary.LittleEndian.PutUint32(img[at+10:], 0xFFFFFFFF)
		binary.BigEndian.PutUint32(img[at+14:], 0xFFFFFFFF)

		fs := mount(t, img)
		rec, err := fs.Lookup("BIG.BIN")
		require.NoError(t, err)
		require.Equal(t, uint32(0xFFFFFFFF), rec.Size())

		chunks, err := fs.ReadFile(rec)
		require.NoError(t, err)
		require.LessOrEqual(t, sector.Total(chunks), int64(len(img)))

		_, err = fs.ExtractFile(rec)
		var mismatch *iso9660.SizeMismatchError
		require.True(t, errors.As(err, &mismatch))
		require.Equal(t, int64(0xFFFFFFFF), mismatch.Expected)
		require.Equal(t, sector.Total(chunks), mismatch.Actual)
	})
}

func TestReadDir_ByteOrderMismatch(t *testing.T) {
	img := sampleVolume()
	at := bytes.Index(img, []byte("README.TXT;1")) - 33
	require.Greater(t, at, 0)
	binary.BigEndian.PutUint32(img[at+14:], 7)

	var logged bytes.Buffer
	logger := logging.NewLogger(logging.NewSimpleLogger(&logged, logging.LEVEL_DEBUG, false))
	fs := mount(t, img, option.WithLogger(logger))

	rec, err := fs.Lookup("README.TXT")
	require.NoError(t, err)
	require.Error(t, rec.CheckByteOrder())
	data, err := fs.ExtractFile(rec)
	require.NoError(t, err)
	require.Equal(t, "hello disc\n", string(data))
	require.Contains(t, logged.String(), "byte order mismatch")
}

func TestLookup(t *testing.T) {
	fs := mount(t, sampleVolume())

	root, err := fs.Lookup("/")
	require.NoError(t, err)
	require.Equal(t, fs.RootDir().Sector(), root.Sector())

	rec, err := fs.Lookup("/GameData/Sound/bgm01.dat")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "BGM01.DAT", rec.Name())

	missing, err := fs.Lookup("/GAMEDATA/NOPE/BGM01.DAT")
	require.NoError(t, err)
	require.Nil(t, missing)

	throughFile, err := fs.Lookup("/README.TXT/INNER")
	require.NoError(t, err)
	require.Nil(t, throughFile)
}

func TestWalk(t *testing.T) {
	fs := mount(t, sampleVolume())

	t.Run("visits every entry", func(t *testing.T) {
		var paths []string
		err := fs.Walk(fs.RootDir(), func(p string, _ *directory.Record) error {
			paths = append(paths, p)
			return nil
		})
		require.NoError(t, err)
		sort.Strings(paths)
		require.Equal(t, []string{
			"/EMPTY.BIN",
			"/GAMEDATA",
			"/GAMEDATA/SOUND",
			"/GAMEDATA/SOUND/BGM01.DAT",
			"/GAMEDATA/SYSTEM3.EXE",
			"/README.TXT",
		}, paths)
	})

	t.Run("skip dir", func(t *testing.T) {
		var paths []string
		err := fs.Walk(fs.RootDir(), func(p string, rec *directory.Record) error {
			paths = append(paths, p)
			if rec.IsDirectory() && rec.Name() == "SOUND" {
				return iso9660.SkipDir
			}
			return nil
		})
		require.NoError(t, err)
		require.NotContains(t, paths, "/GAMEDATA/SOUND/BGM01.DAT")
		require.Contains(t, paths, "/GAMEDATA/SOUND")
	})

	t.Run("callback error stops the walk", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := fs.Walk(fs.RootDir(), func(string, *directory.Record) error {
			calls++
			return stop
		})
		require.ErrorIs(t, err, stop)
		require.Equal(t, 1, calls)
	})

	t.Run("counts", func(t *testing.T) {
		folders, files, err := disctest.GetFileAndFolderCounts(fs)
		require.NoError(t, err)
		require.Equal(t, 2, folders)
		require.Equal(t, 4, files)
	})
}
