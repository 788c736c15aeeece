package device

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDeviceReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.img")

	_, err := OpenFile(path, false, false)
	require.Error(t, err, "opening a missing image without create should fail")

	dev, err := OpenFile(path, true, true)
	require.NoError(t, err)
	defer dev.Close()

	require.NoError(t, dev.Truncate(64))
	size, err := dev.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(64), size)

	_, err = dev.WriteAt([]byte("minifs"), 10)
	require.NoError(t, err)

	buf := make([]byte, 6)
	_, err = dev.ReadAt(buf, 10)
	require.NoError(t, err)
	assert.Equal(t, "minifs", string(buf))
	assert.Equal(t, path, dev.Path())
}

func TestFileDeviceShortRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.img")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))

	dev, err := OpenFile(path, false, false)
	require.NoError(t, err)
	defer dev.Close()

	_, err = dev.ReadAt(make([]byte, 10), 0)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "short read should surface io.ErrUnexpectedEOF, got %v", err)
}

func TestMemoryDevice(t *testing.T) {
	dev := NewMemoryDevice(nil)

	_, err := dev.ReadAt(make([]byte, 1), 0)
	assert.Error(t, err)

	_, err = dev.WriteAt([]byte{1, 2, 3}, 5)
	require.NoError(t, err)
	size, _ := dev.Size()
	assert.Equal(t, int64(8), size)

	require.NoError(t, dev.Truncate(4))
	assert.Equal(t, []byte{0, 0, 0, 0}, dev.Bytes())
}

func TestMemoryOpenerSharesDevices(t *testing.T) {
	opener := NewMemoryOpener()

	_, err := opener.Open("a.img", false)
	assert.ErrorIs(t, err, os.ErrNotExist)

	first, err := opener.Open("a.img", true)
	require.NoError(t, err)
	_, err = first.WriteAt([]byte("x"), 0)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := opener.Open("a.img", false)
	require.NoError(t, err)
	buf := make([]byte, 1)
	_, err = second.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "x", string(buf))
}

func TestLoadDeviceConfig(t *testing.T) {
	v := viper.New()
	config, err := LoadDeviceConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "./minifs.img", config.ImagePath)
	assert.False(t, config.SyncWrites)

	v = viper.New()
	v.Set("image", "/tmp/other.img")
	v.Set("sync_writes", true)
	config, err = LoadDeviceConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.img", config.ImagePath)
	assert.True(t, config.SyncWrites)

	opener := NewFileOpener(config)
	assert.True(t, opener.SyncWrites)
}
