package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mileusna/useragent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"linklytics/cache"
	"linklytics/geo"
	"linklytics/models"
)

const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
)

// VisitService records redirect visits off the hot path and keeps the
// aggregate caches honest afterwards. Everything here is best-effort;
// the visitor never sees a recording failure.
type VisitService struct {
	db      *gorm.DB
	cache   cache.Cache
	locator geo.Locator
	log     *zap.Logger
}

func NewVisitService(db *gorm.DB, c cache.Cache, locator geo.Locator, log *zap.Logger) *VisitService {
	return &VisitService{db: db, cache: c, locator: locator, log: log}
}

// Record persists one visit: append the event, bump the mapping's click
// counter, then invalidate the owner's cached aggregates. A stale alias
// (mapping deleted while the cache still served it) is dropped silently.
func (s *VisitService) Record(ctx context.Context, event models.VisitEvent) error {
	var link models.Link
	err := s.db.WithContext(ctx).Where("alias = ?", event.Alias).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve alias for visit: %w", err)
	}

	ip := normalizeIP(event.IPAddress)
	location := s.locator.Lookup(ip)
	osName, deviceType := detectClient(event.UserAgent)

	visit := models.Visit{
		LinkID:     link.ID,
		Timestamp:  event.Timestamp,
		IPAddress:  ip,
		UserAgent:  event.UserAgent,
		Country:    location.Country,
		City:       location.City,
		Latitude:   location.Latitude,
		Longitude:  location.Longitude,
		OSType:     osName,
		DeviceType: deviceType,
	}
	if err := s.db.WithContext(ctx).Create(&visit).Error; err != nil {
		return fmt.Errorf("record visit: %w", err)
	}

	// Atomic in-database increment; concurrent visits to the same alias
	// must not lose updates.
	err = s.db.WithContext(ctx).Model(&link).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}

	s.invalidate(ctx, link.UserID, link.Alias)
	return nil
}

// invalidate evicts every cached aggregate the new visit made stale:
// the alias entry, the owner's overall entry, and all of the owner's
// topic entries. The topic delete is deliberately coarse; the cache key
// does not record which topic an alias belongs to, and the TTL bounds
// the cost of a lost eviction.
func (s *VisitService) invalidate(ctx context.Context, userID uint, alias string) {
	err := s.cache.Del(ctx, cache.AnalyticsKey(alias, userID), cache.OverallKey(userID))
	if err != nil {
		s.log.Warn("cache eviction failed", zap.String("alias", alias), zap.Error(err))
	}
	if err := s.cache.DelPattern(ctx, cache.TopicPattern(userID)); err != nil {
		s.log.Warn("topic cache eviction failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func detectClient(rawUA string) (osName, deviceType string) {
	ua := useragent.Parse(rawUA)
	osName = ua.OS
	if osName == "" {
		osName = "Unknown"
	}
	if ua.Mobile || ua.Tablet {
		return osName, DeviceMobile
	}
	return osName, DeviceDesktop
}

func normalizeIP(ip string) string {
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}
