package strikestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileStrikeStoreBasics(t *testing.T) {
	p := filepath.Join(t.TempDir(), "strikes.json")
	testStrikeStoreBasics(t, NewFileStrikeStore(p, nil))
	testStrikeStoreConcurrent(t, NewFileStrikeStore(filepath.Join(t.TempDir(), "strikes.json"), nil))
}

func TestFileStrikeStoreMissingFile(t *testing.T) {
	assert := assert.New(t)
	p := filepath.Join(t.TempDir(), "strikes.json")

	fs := NewFileStrikeStore(p, nil)
	assert.Empty(fs.Snapshot())

	raw, err := os.ReadFile(p)
	assert.NoError(err)
	assert.Equal("{}", string(raw))
}

func TestFileStrikeStoreCorruptFile(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	fixtures := []string{
		"{not json",
		"[1, 2, 3]",
		`{"111": "three"}`,
		`{"111": -2}`,
		`{"111": 1.5}`,
	}
	for _, fix := range fixtures {
		p := filepath.Join(t.TempDir(), "strikes.json")
		assert.NoError(os.WriteFile(p, []byte(fix), 0o644))

		fs := NewFileStrikeStore(p, nil)
		assert.Empty(fs.Snapshot(), fix)
		c, err := fs.GetStrikes(ctx, "111")
		assert.NoError(err)
		assert.Equal(0, c)

		raw, err := os.ReadFile(p)
		assert.NoError(err)
		assert.Equal("{}", string(raw), fix)
	}
}

func TestFileStrikeStoreReload(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "strikes.json")

	fs := NewFileStrikeStore(p, nil)
	for _, u := range []string{"111", "111", "222", "111", "333"} {
		_, err := fs.IncrementStrikes(ctx, u)
		assert.NoError(err)
	}
	before := fs.Snapshot()
	assert.Equal(map[string]int{"111": 3, "222": 1, "333": 1}, before)

	// saving and re-loading yields an identical mapping
	reloaded := NewFileStrikeStore(p, nil)
	assert.Equal(before, reloaded.Snapshot())
	assert.NoError(reloaded.Save())
	assert.Equal(before, NewFileStrikeStore(p, nil).Snapshot())

	onDisk, err := ReadStrikeFile(p)
	assert.NoError(err)
	assert.Equal(before, onDisk)

	// strikes keep accumulating after a restart
	c, err := reloaded.IncrementStrikes(ctx, "111")
	assert.NoError(err)
	assert.Equal(4, c)
}

func TestFileStrikeStoreFileFormat(t *testing.T) {
	assert := assert.New(t)
	p := filepath.Join(t.TempDir(), "strikes.json")

	fs := NewFileStrikeStore(p, nil)
	_, err := fs.IncrementStrikes(context.Background(), "123456789")
	assert.NoError(err)

	raw, err := os.ReadFile(p)
	assert.NoError(err)
	assert.Equal("{\n  \"123456789\": 1\n}", string(raw))
}

func TestFileStrikeStoreWriteFailure(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// parent directory does not exist, so every write fails
	p := filepath.Join(t.TempDir(), "missing-dir", "strikes.json")
	fs := NewFileStrikeStore(p, nil)

	// in-memory state stays authoritative
	for i := 1; i <= 3; i++ {
		c, err := fs.IncrementStrikes(ctx, "111")
		assert.NoError(err)
		assert.Equal(i, c)
	}
	assert.Error(fs.Save())

	_, err := ReadStrikeFile(p)
	assert.Error(err)
}
