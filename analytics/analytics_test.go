package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"folio/common"
	"folio/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type countingRepo struct {
	calls map[string]int
}

func (r *countingRepo) IncrementViewCount(_ context.Context, id string) (bool, error) {
	r.calls[id]++
	return true, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func setupTracker(t *testing.T) (*ViewTracker, *countingRepo) {
	repo := &countingRepo{calls: map[string]int{}}
	tracker, err := NewViewTracker(setupTestDB(t), map[models.ContentType]ViewCounter{
		models.ContentBlogPost: repo,
	}, common.DiscardLogger())
	require.NoError(t, err)
	return tracker, repo
}

func track(t *testing.T, tracker *ViewTracker, ct models.ContentType, id, cookie, ua string) (bool, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: cookie})
	}
	c.Request = req

	counted, err := tracker.Track(c, ct, id)
	require.NoError(t, err)
	return counted, w
}

func TestTrackThrottlesRepeatedViews(t *testing.T) {
	tracker, repo := setupTracker(t)

	counted, _ := track(t, tracker, models.ContentBlogPost, "post-1", "visitor-a", chromeUA)
	assert.True(t, counted)

	counted, _ = track(t, tracker, models.ContentBlogPost, "post-1", "visitor-a", chromeUA)
	assert.False(t, counted)

	counted, _ = track(t, tracker, models.ContentBlogPost, "post-1", "visitor-b", chromeUA)
	assert.True(t, counted)

	assert.Equal(t, 2, repo.calls["post-1"])
}

func TestTrackCountsAgainAfterWindow(t *testing.T) {
	tracker, repo := setupTracker(t)
	now := time.Now().UTC()
	tracker.now = func() time.Time { return now }

	track(t, tracker, models.ContentBlogPost, "post-1", "visitor-a", chromeUA)

	now = now.Add(ThrottleWindow + time.Minute)
	counted, _ := track(t, tracker, models.ContentBlogPost, "post-1", "visitor-a", chromeUA)
	assert.True(t, counted)
	assert.Equal(t, 2, repo.calls["post-1"])
}

func TestTrackIgnoresBots(t *testing.T) {
	tracker, repo := setupTracker(t)

	counted, _ := track(t, tracker, models.ContentBlogPost, "post-1", "bot", "Googlebot/2.1 (+http://www.google.com/bot.html)")
	assert.False(t, counted)
	assert.Zero(t, repo.calls["post-1"])
}

func TestTrackSetsVisitorCookie(t *testing.T) {
	tracker, _ := setupTracker(t)

	_, w := track(t, tracker, models.ContentProject, "project-1", "", chromeUA)
	assert.Contains(t, w.Header().Get("Set-Cookie"), VisitorCookie+"=")
}

func TestTrackStoresClientDetails(t *testing.T) {
	tracker, _ := setupTracker(t)
	track(t, tracker, models.ContentProject, "project-1", "visitor-a", chromeUA)

	var view ContentView
	require.NoError(t, tracker.db.First(&view).Error)
	assert.Equal(t, "Chrome", view.Browser)
	assert.Equal(t, "desktop", view.Device)
	assert.Equal(t, "pt-BR", view.Language)
}

func TestVisitsByDay(t *testing.T) {
	tracker, _ := setupTracker(t)
	track(t, tracker, models.ContentBlogPost, "post-1", "a", chromeUA)
	track(t, tracker, models.ContentBlogPost, "post-2", "a", chromeUA)

	days, err := tracker.VisitsByDay(context.Background(), models.ContentBlogPost, 7)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), days[6].Date)
	assert.Equal(t, int64(2), days[6].Count)
	assert.Zero(t, days[0].Count)
}

func TestTopContent(t *testing.T) {
	tracker, _ := setupTracker(t)
	track(t, tracker, models.ContentBlogPost, "post-1", "a", chromeUA)
	track(t, tracker, models.ContentBlogPost, "post-1", "b", chromeUA)
	track(t, tracker, models.ContentBlogPost, "post-2", "a", chromeUA)

	top, err := tracker.TopContent(context.Background(), "", 30, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "post-1", top[0].ContentID)
	assert.Equal(t, int64(2), top[0].Count)
}
