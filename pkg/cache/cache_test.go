package cache

import (
	"context"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Hour))
	data, hit, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "key"))
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "fonts:abc", []byte(`{"fontSizes":[14]}`), 0))
	data, hit, err := c.Get(ctx, "fonts:abc")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, `{"fontSizes":[14]}`, string(data))

	_, hit, err = c.Get(ctx, "fonts:other")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Delete(ctx, "fonts:abc"))
	_, hit, _ = c.Get(ctx, "fonts:abc")
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "fonts:abc"), "deleting a missing key")
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
	_, statErr := os.Stat(c.path("k"))
	assert.True(t, os.IsNotExist(statErr), "expired entry is removed")
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, os.WriteFile(c.path("k"), []byte("not json"), 0o644))

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}
	n, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "subdirectories are removed")

	n, err = c.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHash(t *testing.T) {
	assert.Equal(t, Hash([]byte("hello")), Hash([]byte("hello")))
	assert.NotEqual(t, Hash([]byte("hello")), Hash([]byte("world")))
	assert.Len(t, Hash([]byte("hello")), 64)
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	assert.Equal(t, "http:worldbank:https://example.org/gdp.csv", k.HTTPKey("worldbank", "https://example.org/gdp.csv"))

	fk := k.FontSettingsKey(FontKeyOpts{Family: "Go", Ladder: []int{36, 14}})
	assert.True(t, strings.HasPrefix(fk, "fonts:"))
	assert.Equal(t, fk, k.FontSettingsKey(FontKeyOpts{Family: "Go", Ladder: []int{36, 14}}))
	assert.NotEqual(t, fk, k.FontSettingsKey(FontKeyOpts{Family: "Go", Ladder: []int{36, 12}}))

	f1 := k.FrameKey("data", FrameKeyOpts{Zoom: "root", Width: 960})
	f2 := k.FrameKey("data", FrameKeyOpts{Zoom: "zoomed(ECS)", Width: 960})
	f3 := k.FrameKey("other", FrameKeyOpts{Zoom: "root", Width: 960})
	assert.NotEqual(t, f1, f2)
	assert.NotEqual(t, f1, f3)
	assert.True(t, strings.HasPrefix(f1, "frame:"))

	a1 := k.ArtifactKey("frame", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("frame", ArtifactKeyOpts{Format: "pdf"})
	assert.NotEqual(t, a1, a2)
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "wb:2023:")
	assert.Equal(t, "wb:2023:http:worldbank:gdp", scoped.HTTPKey("worldbank", "gdp"))
	assert.True(t, strings.HasPrefix(scoped.FrameKey("h", FrameKeyOpts{}), "wb:2023:frame:"))
	assert.True(t, strings.HasPrefix(scoped.FontSettingsKey(FontKeyOpts{}), "wb:2023:fonts:"))
	assert.True(t, strings.HasPrefix(scoped.ArtifactKey("h", ArtifactKeyOpts{}), "wb:2023:artifact:"))

	assert.Equal(t, "p:http:t:k", NewScopedKeyer(nil, "p:").HTTPKey("t", "k"))
}

func TestRedisKeys(t *testing.T) {
	c := &RedisCache{namespace: "gdpmap:"}
	assert.Equal(t, "gdpmap:fonts:abc", c.key("fonts:abc"))
	assert.Equal(t, "gdpmap:*", c.pattern())

	tests := []struct{ in, want string }{
		{"plain:", "plain:"},
		{"a*b?", `a\*b\?`},
		{"[x]", `\[x\]`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeGlob(tt.in), tt.in)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "http://localhost:6379", "gdpmap:")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfiguration))
}

func TestMongoEntry(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	forever := newMongoEntry("fonts:abc", []byte("x"), 0, now)
	assert.Nil(t, forever.ExpiresAt)
	assert.False(t, forever.expired(now.Add(100*365*24*time.Hour)))

	day := newMongoEntry("http:wb:gdp", []byte("y"), 24*time.Hour, now)
	require.NotNil(t, day.ExpiresAt)
	assert.False(t, day.expired(now.Add(time.Hour)))
	assert.True(t, day.expired(now.Add(25*time.Hour)))

	raw, err := bson.Marshal(forever)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "fonts:abc", doc["_id"])
	assert.NotContains(t, doc, "expires_at")
}

func TestMongoNamespaceFilter(t *testing.T) {
	assert.Empty(t, namespaceFilter(""), "no namespace clears the whole collection")

	filter := namespaceFilter("gdpmap.eu:")
	id, ok := filter["_id"].(bson.M)
	require.True(t, ok, "filter = %v", filter)
	pattern, ok := id["$regex"].(string)
	require.True(t, ok, "filter = %v", filter)

	re := regexp.MustCompile(pattern)
	keyer := NewScopedKeyer(NewDefaultKeyer(), "gdpmap.eu:")
	other := NewScopedKeyer(NewDefaultKeyer(), "other:")
	assert.True(t, re.MatchString(keyer.HTTPKey("worldbank", "gdp.zip")))
	assert.True(t, re.MatchString(keyer.FontSettingsKey(FontKeyOpts{Family: "Go"})))
	assert.False(t, re.MatchString(other.HTTPKey("worldbank", "gdp.zip")))
	// The dot is literal, so a lookalike namespace stays untouched.
	assert.False(t, re.MatchString("gdpmapxeu:http:worldbank:gdp.zip"))
	// Only prefixes match.
	assert.False(t, re.MatchString("other:gdpmap.eu:fonts:abc"))
}
