package setstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemSetStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := filepath.Join(t.TempDir(), "sets.json")
	assert.NoError(os.WriteFile(p, []byte(`{"banned-words": ["heck", "darn", "heck"], "empty": []}`), 0644))

	ss := NewMemSetStore()
	assert.NoError(ss.LoadFromFileJSON(p))

	ok, err := ss.InSet(ctx, BannedWordsSet, "darn")
	assert.NoError(err)
	assert.True(ok)

	ok, err = ss.InSet(ctx, BannedWordsSet, "hello")
	assert.NoError(err)
	assert.False(ok)

	ok, err = ss.InSet(ctx, "unknown-set", "darn")
	assert.NoError(err)
	assert.False(ok)

	assert.Equal([]string{"darn", "heck"}, ss.Members(BannedWordsSet))
	assert.Equal([]string{}, ss.Members("empty"))
	assert.Nil(ss.Members("unknown-set"))
}

func TestMemSetStoreBadFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	ss := NewMemSetStore()
	assert.Error(ss.LoadFromFileJSON(filepath.Join(dir, "missing.json")))

	p := filepath.Join(dir, "bad.json")
	assert.NoError(os.WriteFile(p, []byte(`["not", "an", "object"]`), 0644))
	assert.Error(ss.LoadFromFileJSON(p))
}
