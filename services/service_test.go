package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"linklytics/cache"
	"linklytics/models"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Link{}, &models.Visit{}))
	return db
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, cache.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.Dial(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, cache.NewRedisCache(client)
}

func seedLink(t *testing.T, db *gorm.DB, userID uint, alias, longURL, topic string) *models.Link {
	t.Helper()
	link := &models.Link{
		UserID:    userID,
		LongURL:   longURL,
		Alias:     alias,
		Topic:     topic,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(link).Error)
	return link
}

func seedVisit(t *testing.T, db *gorm.DB, linkID uint, ip, osType, deviceType string, ts time.Time) {
	t.Helper()
	visit := &models.Visit{
		LinkID:     linkID,
		Timestamp:  ts,
		IPAddress:  ip,
		OSType:     osType,
		DeviceType: deviceType,
		Country:    "Unknown",
		City:       "Unknown",
	}
	require.NoError(t, db.Create(visit).Error)
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
