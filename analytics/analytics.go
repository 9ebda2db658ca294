package analytics

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"gorm.io/gorm"

	"folio/models"
)

const (
	VisitorCookie = "folio_visitor_id"
	// ThrottleWindow is how long repeated views from one visitor of one
	// item count once.
	ThrottleWindow = 30 * time.Minute
)

// ContentView is one counted view of a piece of public content.
type ContentView struct {
	ID          uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentType models.ContentType `gorm:"size:20;not null;index:idx_content_views_content" json:"contentType"`
	ContentID   string             `gorm:"size:36;not null;index:idx_content_views_content" json:"contentId"`
	VisitorID   string             `gorm:"size:64;not null;index" json:"-"`
	IP          string             `gorm:"size:64" json:"-"`
	Language    string             `gorm:"size:35" json:"language"`
	Browser     string             `gorm:"size:50" json:"browser"`
	OS          string             `gorm:"size:50" json:"os"`
	Device      string             `gorm:"size:20" json:"device"`
	CreatedAt   time.Time          `gorm:"index" json:"createdAt"`
}

// ViewCounter bumps the denormalized counter on the content row.
type ViewCounter interface {
	IncrementViewCount(ctx context.Context, id string) (bool, error)
}

type ViewTracker struct {
	db       *gorm.DB
	counters map[models.ContentType]ViewCounter
	log      *slog.Logger
	now      func() time.Time
}

// NewViewTracker migrates its own table. counters maps content types whose
// rows carry a view_count column to the repository that increments it.
func NewViewTracker(db *gorm.DB, counters map[models.ContentType]ViewCounter, log *slog.Logger) (*ViewTracker, error) {
	if err := db.AutoMigrate(&ContentView{}); err != nil {
		return nil, err
	}
	return &ViewTracker{db: db, counters: counters, log: log, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Track records a view unless the same visitor viewed the same item within
// ThrottleWindow or the client is a bot. It reports whether the view counted.
func (t *ViewTracker) Track(c *gin.Context, ct models.ContentType, contentID string) (bool, error) {
	ctx := c.Request.Context()
	visitor := visitorID(c)
	now := t.now()

	var recent int64
	err := t.db.WithContext(ctx).Model(&ContentView{}).
		Where("visitor_id = ? AND content_type = ? AND content_id = ? AND created_at > ?",
			visitor, ct, contentID, now.Add(-ThrottleWindow)).
		Count(&recent).Error
	if err != nil {
		return false, err
	}
	if recent > 0 {
		return false, nil
	}

	ua := useragent.Parse(c.Request.UserAgent())
	if ua.Bot {
		return false, nil
	}

	view := ContentView{
		ContentType: ct,
		ContentID:   contentID,
		VisitorID:   visitor,
		IP:          clientIP(c),
		Language:    preferredLanguage(c.GetHeader("Accept-Language")),
		Browser:     orUnknown(ua.Name),
		OS:          orUnknown(ua.OS),
		Device:      device(ua),
		CreatedAt:   now,
	}
	if err := t.db.WithContext(ctx).Create(&view).Error; err != nil {
		return false, err
	}

	if counter, ok := t.counters[ct]; ok {
		if _, err := counter.IncrementViewCount(ctx, contentID); err != nil {
			t.log.Warn("incrementing view count", "type", ct, "id", contentID, "error", err)
		}
	}
	return true, nil
}

func visitorID(c *gin.Context) string {
	if id, err := c.Cookie(VisitorCookie); err == nil && id != "" && len(id) <= 64 {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(VisitorCookie, id, 60*60*24*365*2, "/", "", false, true)
	return id
}

func clientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		first, _, _ := strings.Cut(ip, ",")
		return strings.TrimSpace(first)
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// preferredLanguage keeps the first tag of an Accept-Language header.
func preferredLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func device(ua useragent.UserAgent) string {
	switch {
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	}
	return "desktop"
}

type DayVisits struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type ContentVisits struct {
	ContentType models.ContentType `json:"contentType"`
	ContentID   string             `json:"contentId"`
	Count       int64              `json:"count"`
}

// VisitsByDay returns one entry per day for the last days days, oldest
// first, with zero counts filled in. An empty ct covers every type.
func (t *ViewTracker) VisitsByDay(ctx context.Context, ct models.ContentType, days int) ([]DayVisits, error) {
	if days < 1 {
		days = 30
	}
	now := t.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	q := t.db.WithContext(ctx).Model(&ContentView{}).
		Select("DATE(created_at) AS date, COUNT(*) AS count").
		Where("created_at >= ?", start)
	if ct != "" {
		q = q.Where("content_type = ?", ct)
	}
	var rows []DayVisits
	if err := q.Group("DATE(created_at)").Order("date ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Date] = r.Count
	}
	out := make([]DayVisits, days)
	for i := range out {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		out[i] = DayVisits{Date: date, Count: counts[date]}
	}
	return out, nil
}

// TopContent returns the most viewed items of the last days days.
func (t *ViewTracker) TopContent(ctx context.Context, ct models.ContentType, days, limit int) ([]ContentVisits, error) {
	if days < 1 {
		days = 30
	}
	if limit < 1 {
		limit = 10
	}
	q := t.db.WithContext(ctx).Model(&ContentView{}).
		Select("content_type, content_id, COUNT(*) AS count").
		Where("created_at >= ?", t.now().AddDate(0, 0, -days))
	if ct != "" {
		q = q.Where("content_type = ?", ct)
	}
	results := []ContentVisits{}
	err := q.Group("content_type, content_id").Order("count DESC").Limit(limit).Scan(&results).Error
	return results, err
}
