// Package repotest opens throwaway databases for tests.
package repotest

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Egorka7485/tgkadsf/internal/models"
)

// NewDB returns a migrated in-memory database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,

		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.WithContext(context.Background()).AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

// Channels is a small catalog spanning both platforms.
func Channels() []models.Channel {
	return []models.Channel{
		{Name: "Tech Insider", Description: "Latest technology news, reviews, and leaks.", Handle: "@techinsider", AvatarURL: "https://img.example/tech.png", Category: "Technology", Platform: models.PlatformTelegram, Subscribers: 154000, Views: 45000, ERR: 29.2, Price: 15000, Verified: true},
		{Name: "Crypto Signals VIP", Description: "Crypto trading signals and market analysis.", Handle: "@cryptovip", AvatarURL: "https://img.example/crypto.png", Category: "Finance", Platform: models.PlatformTelegram, Subscribers: 89000, Views: 32000, ERR: 35.9, Price: 25000, Verified: true},
		{Name: "Funny Memes 24/7", Description: "Your daily dose of laughter.", Handle: "@funnymemes", AvatarURL: "https://img.example/memes.png", Category: "Entertainment", Platform: models.PlatformTelegram, Subscribers: 450000, Views: 120000, ERR: 26.6, Price: 8000},
		{Name: "World News Daily", Description: "News coverage from around the globe.", Handle: "@worldnews", AvatarURL: "https://img.example/news.png", Category: "News", Platform: models.PlatformTelegram, Subscribers: 210000, Views: 85000, ERR: 40.5, Price: 18000, Verified: true},
		{Name: "Healthy Living", Description: "Diet plans and workout routines.", Handle: "@healthylife", AvatarURL: "https://img.example/health.png", Category: "Health", Platform: models.PlatformTelegram, Subscribers: 65000, Views: 15000, ERR: 23.1, Price: 5000},
		{Name: "Dance Tok", Description: "Short dance clips.", Handle: "@dancetok", AvatarURL: "https://img.example/dance.png", Category: "Entertainment", Platform: models.PlatformTikTok, Subscribers: 980000, Views: 300000, ERR: 30.6, Price: 40000, Verified: true},
	}
}

// SeedChannels inserts Channels and returns them with their ids.
func SeedChannels(t *testing.T, db *gorm.DB) []models.Channel {
	t.Helper()
	chs := Channels()
	require.NoError(t, db.Create(&chs).Error)
	return chs
}
