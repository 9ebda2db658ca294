package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"folio/common"
	"folio/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

func testBase(name string) Base {
	return NewBase(common.DiscardLogger(), name, nil)
}

func ptr[T any](v T) *T {
	return &v
}

func assertKind(t *testing.T, err error, kind common.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, common.KindOf(err), err.Error())
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 1, ReadingTime(""))
	assert.Equal(t, 1, ReadingTime("a few words"))
	words := make([]byte, 0, 401*2)
	for range 401 {
		words = append(words, 'w', ' ')
	}
	assert.Equal(t, 3, ReadingTime(string(words)))
}

func TestTruncateKeepsCharactersWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 255))
	assert.Equal(t, "ab", truncate("abc", 2))

	// "é" is two bytes, so a cut at byte 3 would split the second one.
	got := truncate("éé", 3)
	assert.Equal(t, "é", got)

	long := strings.Repeat("日", 100)
	got = truncate(long, 255)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 255)
	assert.Equal(t, 85, utf8.RuneCountInString(got))

	assert.Equal(t, "ok", truncate("o\xffk", 10))
}

func TestFail(t *testing.T) {
	b := testBase("test")
	ctx := context.Background()

	assert.Nil(t, b.fail(ctx, "op", nil))
	assertKind(t, b.fail(ctx, "op", gorm.ErrDuplicatedKey), common.KindConflict)
	assertKind(t, b.fail(ctx, "op", common.ErrForbidden), common.KindForbidden)
	assertKind(t, b.fail(ctx, "op", context.DeadlineExceeded), common.KindInternal)
	assertKind(t, b.fail(ctx, "op", assert.AnError), common.KindInternal)
}

func TestChangesDate(t *testing.T) {
	ch := changes{}
	var dst *time.Time
	now := time.Now()

	ch.date("end_date", &dst, &now)
	require.NotNil(t, dst)
	assert.Equal(t, now, ch["end_date"])

	ch.date("end_date", &dst, &time.Time{})
	assert.Nil(t, dst)
	assert.Nil(t, ch["end_date"])
}
