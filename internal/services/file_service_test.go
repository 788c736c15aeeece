package services

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte('a' + i%26)
	}
	return data
}

func openNewFile(t *testing.T, fs *FileSystem, path string) uint16 {
	t.Helper()
	require.NoError(t, fs.MakeFile(path))
	fd, err := fs.Open(path)
	require.NoError(t, err)
	return fd
}

func TestWriteReadRoundTrip(t *testing.T) {
	maxFile := int(types.DefaultFsInfo().MaxFileSize())

	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"single byte", 1},
		{"one full block", 121},
		{"block boundary plus one", 122},
		{"several blocks", 500},
		{"max file size", maxFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, _ := newTestFileSystem(t)
			fd := openNewFile(t, fs, "/f")
			want := pattern(tt.size)

			n, err := fs.Write(fd, want)
			require.NoError(t, err)
			assert.Equal(t, tt.size, n)

			require.NoError(t, fs.Seek(fd, 0))
			got, err := fs.Read(fd, -1)
			require.NoError(t, err)
			assert.Equal(t, want, append([]byte{}, got...))
		})
	}
}

func TestWriteClampsToMaxFileSize(t *testing.T) {
	fs, _ := newTestFileSystem(t)
	fd := openNewFile(t, fs, "/big")

	n, err := fs.Write(fd, pattern(1000))
	require.NoError(t, err)
	assert.Equal(t, 968, n)

	stat, err := fs.Stat("/big")
	require.NoError(t, err)
	assert.Equal(t, uint32(968), stat.Size)
	assert.Equal(t, types.BlocksCountInInode, stat.BlocksUsed)

	// the file is full, further writes succeed with nothing written
	n, err = fs.Write(fd, []byte("more"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestWriteStopsWhenBlocksRunOut(t *testing.T) {
	fs, _ := newTestFileSystem(t)
	require.NoError(t, fs.MakeDir("/t"))
	fd := openNewFile(t, fs, "/f")

	// leave exactly one free block
	report, err := fs.Info()
	require.NoError(t, err)
	_, err = fillTree(t, fs, "/t", report.FreeBlocks-1)
	require.NoError(t, err)

	n, err := fs.Write(fd, pattern(500))
	require.NoError(t, err, "running out of blocks is a short write, not an error")
	assert.Equal(t, 242, n)

	report, err = fs.Info()
	require.NoError(t, err)
	assert.Equal(t, 0, report.FreeBlocks)

	require.NoError(t, fs.Seek(fd, 0))
	got, err := fs.Read(fd, -1)
	require.NoError(t, err)
	assert.Equal(t, pattern(242), got)
}

func TestOverwriteKeepsSize(t *testing.T) {
	fs, _ := newTestFileSystem(t)
	fd := openNewFile(t, fs, "/f")

	_, err := fs.Write(fd, []byte("hello world"))
	require.NoError(t, err)

	require.NoError(t, fs.Seek(fd, 0))
	_, err = fs.Write(fd, []byte("HE"))
	require.NoError(t, err)

	stat, err := fs.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, uint32(11), stat.Size)

	require.NoError(t, fs.Seek(fd, 0))
	data, err := fs.Read(fd, 100)
	require.NoError(t, err)
	assert.Equal(t, "HEllo world", string(data))
}

func TestAppendAcrossBlockBoundary(t *testing.T) {
	fs, _ := newTestFileSystem(t)
	fd := openNewFile(t, fs, "/f")
	want := pattern(300)

	// several small writes continue from the stored position
	for off := 0; off < len(want); off += 50 {
		n, err := fs.Write(fd, want[off:off+50])
		require.NoError(t, err)
		require.Equal(t, 50, n)
	}

	require.NoError(t, fs.Seek(fd, 100))
	got, err := fs.Read(fd, 50)
	require.NoError(t, err)
	assert.Equal(t, want[100:150], got)

	got, err = fs.Read(fd, -1)
	require.NoError(t, err)
	assert.Equal(t, want[150:], got)

	// at end of file a read returns nothing
	got, err = fs.Read(fd, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSeekRules(t *testing.T) {
	fs, _ := newTestFileSystem(t)
	fd := openNewFile(t, fs, "/f")
	_, err := fs.Write(fd, []byte("0123456789"))
	require.NoError(t, err)

	assert.NoError(t, fs.Seek(fd, 10), "end of file is a valid position")

	err = fs.Seek(fd, 11)
	assert.ErrorIs(t, err, ErrSeekOutOfRange)
	assert.Equal(t, KindLogical, KindOf(err))

	assert.ErrorIs(t, fs.Seek(fd, types.DefaultFsInfo().MaxFileSize()), ErrSeekOutOfRange)
	assert.ErrorIs(t, fs.Seek(fd+1, 0), ErrNotOpen)
}

func TestOpenRules(t *testing.T) {
	fs, _ := newTestFileSystem(t)
	require.NoError(t, fs.MakeDir("/d"))
	require.NoError(t, fs.MakeFile("/d/f"))

	_, err := fs.Open("/d")
	assert.ErrorIs(t, err, ErrIsDirectory)

	_, err = fs.Open("/")
	assert.ErrorIs(t, err, ErrIsDirectory)

	_, err = fs.Open("/d/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	fd, err := fs.Open("/d/f")
	require.NoError(t, err)

	_, err = fs.Open("/d/f")
	assert.ErrorIs(t, err, ErrAlreadyOpen)

	require.NoError(t, fs.Close(fd))
	assert.ErrorIs(t, fs.Close(fd), ErrNotOpen)

	reopened, err := fs.Open("/d/f")
	require.NoError(t, err)
	assert.Equal(t, fd, reopened)
}

func TestDescriptorTableFull(t *testing.T) {
	fs, _ := newTestFileSystem(t)
	for _, dir := range []string{"/a", "/b", "/c", "/e", "/a/s"} {
		require.NoError(t, fs.MakeDir(dir))
	}

	paths := []string{"/a/1", "/a/2", "/a/3", "/a/s/1"}
	for _, dir := range []string{"/b", "/c", "/e"} {
		for _, name := range []string{"1", "2", "3", "4"} {
			paths = append(paths, dir+"/"+name)
		}
	}
	require.Len(t, paths, int(types.DescriptorsCount))
	for _, path := range paths {
		openNewFile(t, fs, path)
	}

	require.NoError(t, fs.MakeFile("/a/s/../s/x"), "parent resolves through ..")
	_, err := fs.Open("/a/s/x")
	assert.ErrorIs(t, err, ErrNoFreeDescriptor)
	assert.Equal(t, KindExhausted, KindOf(err))
}

func TestReadWriteOnClosedDescriptor(t *testing.T) {
	fs, _ := newTestFileSystem(t)

	_, err := fs.Read(0, 10)
	assert.ErrorIs(t, err, ErrNotOpen)

	_, err = fs.Write(0, []byte("x"))
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestReadToWriteFrom(t *testing.T) {
	fs, _ := newTestFileSystem(t)
	dir := t.TempDir()
	fd := openNewFile(t, fs, "/copy")

	src := filepath.Join(dir, "src.txt")
	content := bytes.Repeat([]byte("minifs "), 40)
	require.NoError(t, os.WriteFile(src, content, 0o600))

	n, err := fs.WriteFrom(fd, src)
	require.NoError(t, err)
	assert.Equal(t, len(content), n)

	require.NoError(t, fs.Seek(fd, 0))
	dst := filepath.Join(dir, "dst.txt")
	n, err = fs.ReadTo(fd, dst, -1)
	require.NoError(t, err)
	assert.Equal(t, len(content), n)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = fs.WriteFrom(fd, filepath.Join(dir, "missing"))
	assert.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
}
