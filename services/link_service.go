package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"linklytics/cache"
	"linklytics/models"
)

const (
	aliasCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	aliasLength  = 8

	// A fresh random alias colliding is already unlikely; the retry
	// loop only guards the rare case.
	maxAliasAttempts = 5

	urlCacheTTL = 6 * time.Hour
)

type LinkService struct {
	db    *gorm.DB
	cache cache.Cache
	log   *zap.Logger
}

func NewLinkService(db *gorm.DB, c cache.Cache, log *zap.Logger) *LinkService {
	return &LinkService{db: db, cache: c, log: log}
}

// CreateShortLink stores a new alias -> destination mapping. A custom
// alias must be free; without one a random alias is generated and
// re-checked for uniqueness.
func (s *LinkService) CreateShortLink(ctx context.Context, userID uint, longURL, customAlias, topic string) (*models.Link, error) {
	if topic == "" {
		topic = models.TopicAcquisition
	}
	if !models.ValidTopic(topic) {
		return nil, ErrInvalidTopic
	}

	alias := customAlias
	if alias != "" {
		taken, err := s.aliasTaken(ctx, alias)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrAliasTaken
		}
	} else {
		var err error
		alias, err = s.generateAlias(ctx)
		if err != nil {
			return nil, err
		}
	}

	link := models.Link{
		UserID:    userID,
		LongURL:   longURL,
		Alias:     alias,
		Topic:     topic,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		// Two concurrent creations can pass the uniqueness check; the
		// unique index settles the race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAliasTaken
		}
		return nil, fmt.Errorf("create link: %w", err)
	}

	// Warm the redirect cache; failures here only cost a later miss.
	if err := s.cache.SetEX(ctx, cache.URLKey(alias), longURL, urlCacheTTL); err != nil {
		s.log.Warn("cache write failed", zap.String("alias", alias), zap.Error(err))
	}

	return &link, nil
}

// Resolve returns the destination for an alias, reading through the
// cache. A cache failure is treated as a miss, never an error.
func (s *LinkService) Resolve(ctx context.Context, alias string) (string, error) {
	dest, err := s.cache.Get(ctx, cache.URLKey(alias))
	if err == nil {
		return dest, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("cache read failed", zap.String("alias", alias), zap.Error(err))
	}

	var link models.Link
	err = s.db.WithContext(ctx).Where("alias = ?", alias).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve alias: %w", err)
	}

	if err := s.cache.SetEX(ctx, cache.URLKey(alias), link.LongURL, urlCacheTTL); err != nil {
		s.log.Warn("cache write failed", zap.String("alias", alias), zap.Error(err))
	}
	return link.LongURL, nil
}

func (s *LinkService) generateAlias(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAliasAttempts; attempt++ {
		alias, err := randomAlias(aliasLength)
		if err != nil {
			return "", err
		}
		taken, err := s.aliasTaken(ctx, alias)
		if err != nil {
			return "", err
		}
		if !taken {
			return alias, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique alias after %d attempts", maxAliasAttempts)
}

func (s *LinkService) aliasTaken(ctx context.Context, alias string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Link{}).Where("alias = ?", alias).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check alias: %w", err)
	}
	return count > 0, nil
}

func randomAlias(length int) (string, error) {
	code := make([]byte, length)
	charsetLength := big.NewInt(int64(len(aliasCharset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			return "", fmt.Errorf("generate alias: %w", err)
		}
		code[i] = aliasCharset[n.Int64()]
	}
	return string(code), nil
}
