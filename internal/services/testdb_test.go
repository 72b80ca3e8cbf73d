package services

import (
	"testing"
	"time"

	"github.com/emoteforge/emoteforge-backend/internal/config"
	"github.com/emoteforge/emoteforge-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Emote{},
		&models.Bundle{},
		&models.Purchase{},
		&models.EmoteOwnership{},
		&models.Subscription{},
		&models.WebhookEvent{},
		&models.SystemLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "test-secret",
		JWTAccessExpiry:     15 * time.Minute,
		JWTRefreshExpiry:    168 * time.Hour,
		StripePriceBasic:    "price_basic_test",
		StripePriceStandard: "price_standard_test",
		StripePricePremium:  "price_premium_test",
		FrontendURL:         "http://localhost:3000",
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string, credits int64) *models.User {
	t.Helper()

	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "not-a-real-hash",
		Credits:  credits,
		Tier:     models.TierFree,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func createMarketplaceEmote(t *testing.T, db *gorm.DB, ownerID uuid.UUID, title string, priceCents int64) *models.Emote {
	t.Helper()

	emote := models.Emote{
		ID:         uuid.New(),
		UserID:     ownerID,
		Title:      title,
		Prompt:     title + " prompt",
		ImageURL:   "https://cdn.test/emotes/" + title + ".png",
		PriceCents: &priceCents,
		Status:     models.EmoteStatusMarketplace,
	}
	if err := db.Create(&emote).Error; err != nil {
		t.Fatalf("failed to create test emote: %v", err)
	}
	return &emote
}
