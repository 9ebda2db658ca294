package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/common"
)

func TestKey(t *testing.T) {
	a := Key("render", "post-1", "en")
	b := Key("render", "post-1", "es")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Key("render", "post-1", "en"))
	assert.Contains(t, a, "render:")
	assert.Len(t, a, len("render:")+16)
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Second))

	now = now.Add(2 * time.Second)
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 1, m.Purge())
}

func TestMemoryClearByPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	require.NoError(t, m.Set(ctx, "response:a", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "render:b", []byte("2"), 0))

	require.NoError(t, m.Clear(ctx, "response:"))

	_, err := m.Get(ctx, "response:a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = m.Get(ctx, "render:b")
	assert.NoError(t, err)
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory(time.Minute)
	require.NoError(t, m.Close())

	_, err := m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheClosed)
	assert.ErrorIs(t, m.Set(context.Background(), "k", nil, 0), ErrCacheClosed)
}

func TestRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, url, "folio-test:", time.Minute)
	require.NoError(t, err)
	defer r.Close()
	defer r.Clear(ctx, "")

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, r.Set(ctx, "response:a", []byte("v"), 0))
	got, err := r.Get(ctx, "response:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, r.Clear(ctx, "response:"))
	_, err = r.Get(ctx, "response:a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMiddlewareCachesGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMemory(time.Minute)
	calls := 0

	r := gin.New()
	r.Use(Middleware(m, time.Minute, "lang", common.DiscardLogger()))
	r.GET("/posts", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"calls":1}`, w.Body.String())
	}
	assert.Equal(t, 1, calls)
}

func TestInvalidateClearsAfterWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	m := NewMemory(time.Minute)
	require.NoError(t, m.Set(ctx, Key(ResponsePrefix, "/posts"), []byte("{}"), 0))

	r := gin.New()
	r.Use(Invalidate(m, common.DiscardLogger()))
	r.POST("/posts", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/posts", nil))

	_, err := m.Get(ctx, Key(ResponsePrefix, "/posts"))
	assert.ErrorIs(t, err, ErrCacheMiss)
}
