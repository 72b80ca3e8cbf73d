package services

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/emoteforge/emoteforge-backend/internal/config"
)

// MarketingService pushes new contacts to the marketing automation API.
// Sync failures are logged, never surfaced to the user.
type MarketingService struct {
	cfg    *config.Config
	client *http.Client
}

func NewMarketingService(cfg *config.Config) *MarketingService {
	return &MarketingService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *MarketingService) SyncContact(email string) {
	if m.cfg.MarketingAPIURL == "" || m.cfg.MarketingAPIKey == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"email":  email,
		"source": "emoteforge-signup",
	})
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, m.cfg.MarketingAPIURL, bytes.NewReader(payload))
	if err != nil {
		slog.Warn("marketing sync request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.MarketingAPIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		slog.Warn("marketing contact sync failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		slog.Warn("marketing contact sync rejected", "status", resp.StatusCode)
	}
}
