package workers

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"linklytics/cache"
	"linklytics/geo"
	"linklytics/models"
	"linklytics/services"
)

var workerDBSeq atomic.Int64

func TestVisitWorkersDrainTheQueue(t *testing.T) {
	dsn := fmt.Sprintf("file:workertest%d?mode=memory&cache=shared", workerDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Link{}, &models.Visit{}))

	mr := miniredis.RunT(t)
	client, err := cache.Dial(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	link := models.Link{UserID: 1, LongURL: "https://example.com", Alias: "worker01", Topic: models.TopicAcquisition, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&link).Error)

	visits := services.NewVisitService(db, cache.NewRedisCache(client), geo.NoopLocator{}, zap.NewNop())

	events := make(chan models.VisitEvent, 8)
	StartVisitWorkers(2, events, visits, zap.NewNop())

	for i := 0; i < 5; i++ {
		events <- models.VisitEvent{
			Alias:     "worker01",
			IPAddress: fmt.Sprintf("203.0.113.%d", i+1),
			Timestamp: time.Now().UTC(),
		}
	}
	close(events)

	// Workers run asynchronously; poll until every event lands.
	deadline := time.Now().Add(5 * time.Second)
	for {
		var updated models.Link
		require.NoError(t, db.First(&updated, link.ID).Error)
		if updated.Clicks == 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 5 recorded clicks, got %d", updated.Clicks)
		}
		time.Sleep(10 * time.Millisecond)
	}

	var count int64
	require.NoError(t, db.Model(&models.Visit{}).Count(&count).Error)
	assert.EqualValues(t, 5, count)
}
