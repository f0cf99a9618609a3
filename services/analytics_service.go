package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"linklytics/cache"
	"linklytics/models"
)

const (
	aliasAnalyticsTTL   = time.Hour
	topicAnalyticsTTL   = 30 * time.Minute
	overallAnalyticsTTL = 30 * time.Minute

	// Only the trailing week feeds the clicks-by-date trend chart.
	trendWindow = 7 * 24 * time.Hour

	dateLayout = "2006-01-02"
)

// AnalyticsService computes per-alias, per-topic and overall rollups
// over the visit log, each behind its own cache-aside key.
type AnalyticsService struct {
	db    *gorm.DB
	cache cache.Cache
	log   *zap.Logger
}

func NewAnalyticsService(db *gorm.DB, c cache.Cache, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{db: db, cache: c, log: log}
}

// URLAnalytics returns the rollup for a single alias. A missing alias
// and someone else's alias both come back as ErrNotFound.
func (s *AnalyticsService) URLAnalytics(ctx context.Context, alias string, userID uint) (models.URLAnalytics, error) {
	return cache.Fetch(ctx, s.cache, s.log, cache.AnalyticsKey(alias, userID), aliasAnalyticsTTL,
		func() (models.URLAnalytics, error) {
			var result models.URLAnalytics

			var link models.Link
			err := s.db.WithContext(ctx).
				Where("alias = ? AND user_id = ?", alias, userID).
				First(&link).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result, ErrNotFound
			}
			if err != nil {
				return result, fmt.Errorf("load link: %w", err)
			}

			ids := []uint{link.ID}
			uniqueUsers, err := s.distinctVisitors(ctx, ids)
			if err != nil {
				return result, err
			}
			clicksByDate, err := s.clicksByDate(ctx, ids)
			if err != nil {
				return result, err
			}
			osStats, deviceStats, err := s.clientBreakdowns(ctx, ids)
			if err != nil {
				return result, err
			}

			result = models.URLAnalytics{
				TotalClicks:  link.Clicks,
				UniqueUsers:  uniqueUsers,
				ClicksByDate: clicksByDate,
				OSType:       osStats,
				DeviceType:   deviceStats,
			}
			return result, nil
		})
}

// TopicAnalytics aggregates across every link the user owns under one
// topic. A topic with no links for this user is ErrNotFound.
func (s *AnalyticsService) TopicAnalytics(ctx context.Context, topic string, userID uint) (models.TopicAnalytics, error) {
	return cache.Fetch(ctx, s.cache, s.log, cache.TopicKey(topic, userID), topicAnalyticsTTL,
		func() (models.TopicAnalytics, error) {
			var result models.TopicAnalytics

			var links []models.Link
			err := s.db.WithContext(ctx).
				Where("topic = ? AND user_id = ?", topic, userID).
				Order("id").
				Find(&links).Error
			if err != nil {
				return result, fmt.Errorf("load topic links: %w", err)
			}
			if len(links) == 0 {
				return result, ErrNotFound
			}

			ids := make([]uint, 0, len(links))
			totalClicks := 0
			for _, link := range links {
				ids = append(ids, link.ID)
				totalClicks += link.Clicks
			}

			uniqueUsers, err := s.distinctVisitors(ctx, ids)
			if err != nil {
				return result, err
			}
			clicksByDate, err := s.clicksByDate(ctx, ids)
			if err != nil {
				return result, err
			}
			perLink, err := s.distinctVisitorsPerLink(ctx, ids)
			if err != nil {
				return result, err
			}

			urls := make([]models.TopicURLStats, 0, len(links))
			for _, link := range links {
				urls = append(urls, models.TopicURLStats{
					ShortURL:    link.Alias,
					TotalClicks: link.Clicks,
					UniqueUsers: perLink[link.ID],
				})
			}

			result = models.TopicAnalytics{
				TotalClicks:  totalClicks,
				UniqueUsers:  uniqueUsers,
				ClicksByDate: clicksByDate,
				URLs:         urls,
			}
			return result, nil
		})
}

// OverallAnalytics aggregates across everything the user owns. Owning
// nothing is a valid, cacheable zero-valued result, not an error.
func (s *AnalyticsService) OverallAnalytics(ctx context.Context, userID uint) (models.OverallAnalytics, error) {
	return cache.Fetch(ctx, s.cache, s.log, cache.OverallKey(userID), overallAnalyticsTTL,
		func() (models.OverallAnalytics, error) {
			result := models.OverallAnalytics{
				ClicksByDate: []models.DateClicks{},
				OSType:       []models.OSStat{},
				DeviceType:   []models.DeviceStat{},
			}

			var links []models.Link
			err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&links).Error
			if err != nil {
				return result, fmt.Errorf("load user links: %w", err)
			}
			if len(links) == 0 {
				return result, nil
			}

			ids := make([]uint, 0, len(links))
			totalClicks := 0
			for _, link := range links {
				ids = append(ids, link.ID)
				totalClicks += link.Clicks
			}

			uniqueUsers, err := s.distinctVisitors(ctx, ids)
			if err != nil {
				return result, err
			}
			clicksByDate, err := s.clicksByDate(ctx, ids)
			if err != nil {
				return result, err
			}
			osStats, deviceStats, err := s.clientBreakdowns(ctx, ids)
			if err != nil {
				return result, err
			}

			result = models.OverallAnalytics{
				TotalURLs:    len(links),
				TotalClicks:  totalClicks,
				UniqueUsers:  uniqueUsers,
				ClicksByDate: clicksByDate,
				OSType:       osStats,
				DeviceType:   deviceStats,
			}
			return result, nil
		})
}

func (s *AnalyticsService) distinctVisitors(ctx context.Context, linkIDs []uint) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Visit{}).
		Where("link_id IN ?", linkIDs).
		Distinct("ip_address").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count distinct visitors: %w", err)
	}
	return int(count), nil
}

type linkVisitors struct {
	LinkID uint
	Users  int
}

func (s *AnalyticsService) distinctVisitorsPerLink(ctx context.Context, linkIDs []uint) (map[uint]int, error) {
	var rows []linkVisitors
	err := s.db.WithContext(ctx).Model(&models.Visit{}).
		Select("link_id, COUNT(DISTINCT ip_address) AS users").
		Where("link_id IN ?", linkIDs).
		Group("link_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count visitors per link: %w", err)
	}
	result := make(map[uint]int, len(rows))
	for _, row := range rows {
		result[row.LinkID] = row.Users
	}
	return result, nil
}

// clicksByDate builds the 7-day daily histogram, ascending by date.
// Bucketing happens in Go; the window keeps the row count small and the
// query stays portable across SQL dialects.
func (s *AnalyticsService) clicksByDate(ctx context.Context, linkIDs []uint) ([]models.DateClicks, error) {
	since := time.Now().UTC().Add(-trendWindow)
	var stamps []time.Time
	err := s.db.WithContext(ctx).Model(&models.Visit{}).
		Where("link_id IN ? AND timestamp >= ?", linkIDs, since).
		Pluck("timestamp", &stamps).Error
	if err != nil {
		return nil, fmt.Errorf("load trend window: %w", err)
	}

	counts := make(map[string]int)
	for _, ts := range stamps {
		counts[ts.UTC().Format(dateLayout)]++
	}
	dates := make([]string, 0, len(counts))
	for date := range counts {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	histogram := make([]models.DateClicks, 0, len(dates))
	for _, date := range dates {
		histogram = append(histogram, models.DateClicks{Date: date, Count: counts[date]})
	}
	return histogram, nil
}

type clientGroup struct {
	Name   string
	Clicks int
	Users  int
}

func (s *AnalyticsService) clientBreakdowns(ctx context.Context, linkIDs []uint) ([]models.OSStat, []models.DeviceStat, error) {
	osGroups, err := s.groupBy(ctx, linkIDs, "os_type")
	if err != nil {
		return nil, nil, err
	}
	deviceGroups, err := s.groupBy(ctx, linkIDs, "device_type")
	if err != nil {
		return nil, nil, err
	}

	osStats := make([]models.OSStat, 0, len(osGroups))
	for _, g := range osGroups {
		osStats = append(osStats, models.OSStat{
			OSName:       g.Name,
			UniqueClicks: g.Clicks,
			UniqueUsers:  g.Users,
		})
	}
	deviceStats := make([]models.DeviceStat, 0, len(deviceGroups))
	for _, g := range deviceGroups {
		deviceStats = append(deviceStats, models.DeviceStat{
			DeviceName:   g.Name,
			UniqueClicks: g.Clicks,
			UniqueUsers:  g.Users,
		})
	}
	return osStats, deviceStats, nil
}

func (s *AnalyticsService) groupBy(ctx context.Context, linkIDs []uint, column string) ([]clientGroup, error) {
	var rows []clientGroup
	err := s.db.WithContext(ctx).Model(&models.Visit{}).
		Select(column+" AS name, COUNT(*) AS clicks, COUNT(DISTINCT ip_address) AS users").
		Where("link_id IN ?", linkIDs).
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group visits by %s: %w", column, err)
	}
	return rows, nil
}
