package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/emoteforge/emoteforge-backend/internal/dto"
	"github.com/emoteforge/emoteforge-backend/internal/models"
)

type stubGenerator struct {
	calls   int
	prompts []string
	data    []byte
	err     error
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) ([]byte, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return g.data, g.err
}

type stubStore struct {
	calls   int
	keys    []string
	failKey string
}

func (s *stubStore) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	s.calls++
	s.keys = append(s.keys, key)
	if s.failKey != "" && strings.HasPrefix(key, s.failKey) {
		return "", errors.New("upload rejected")
	}
	return "https://cdn.test/" + key, nil
}

func TestGenerateSpendsOneCredit(t *testing.T) {
	db := setupTestDB(t)
	generator := &stubGenerator{data: []byte("png-bytes")}
	store := &stubStore{}
	svc := NewGenerationService(db, generator, store, nil)

	user := createTestUser(t, db, "gen@test.dev", 5)

	emote, remaining, err := svc.Generate(context.Background(), user.ID, &dto.GenerateRequest{
		Prompt: "angry doge", Style: "chibi",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if remaining != 4 {
		t.Errorf("remaining credits = %d, want 4", remaining)
	}
	if emote.Status != models.EmoteStatusDraft {
		t.Errorf("status = %q, want draft", emote.Status)
	}
	if emote.ImageURL == "" || emote.PreviewURL == "" {
		t.Errorf("missing URLs: image=%q preview=%q", emote.ImageURL, emote.PreviewURL)
	}

	if generator.calls != 1 {
		t.Errorf("generator calls = %d, want 1", generator.calls)
	}
	if !strings.Contains(generator.prompts[0], "angry doge") ||
		!strings.Contains(generator.prompts[0], "chibi style") {
		t.Errorf("prompt %q missing user text or style suffix", generator.prompts[0])
	}
	if store.calls != 2 {
		t.Errorf("upload calls = %d, want 2 (image + preview)", store.calls)
	}

	var saved models.Emote
	if err := db.First(&saved, "id = ?", emote.ID).Error; err != nil {
		t.Fatalf("emote row not saved: %v", err)
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	db := setupTestDB(t)
	generator := &stubGenerator{data: []byte("png")}
	svc := NewGenerationService(db, generator, &stubStore{}, nil)
	user := createTestUser(t, db, "gen@test.dev", 5)

	_, _, err := svc.Generate(context.Background(), user.ID, &dto.GenerateRequest{})
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("got %v, want ErrEmptyPrompt", err)
	}
	if got := getUser(t, db, user.ID); got.Credits != 5 {
		t.Errorf("credits = %d, want unchanged 5", got.Credits)
	}
}

// A user with no credits must be rejected before any upstream call is made.
func TestGenerateInsufficientCredits(t *testing.T) {
	db := setupTestDB(t)
	generator := &stubGenerator{data: []byte("png")}
	store := &stubStore{}
	svc := NewGenerationService(db, generator, store, nil)
	user := createTestUser(t, db, "broke@test.dev", 0)

	_, _, err := svc.Generate(context.Background(), user.ID, &dto.GenerateRequest{Prompt: "doge"})
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("got %v, want ErrInsufficientCredits", err)
	}

	if generator.calls != 0 {
		t.Errorf("generator called %d times, want 0", generator.calls)
	}
	if store.calls != 0 {
		t.Errorf("store called %d times, want 0", store.calls)
	}
	if got := getUser(t, db, user.ID); got.Credits != 0 {
		t.Errorf("credits = %d, want 0", got.Credits)
	}

	var count int64
	db.Model(&models.Emote{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("emote rows = %d, want 0", count)
	}
}

func TestGenerateRefundsOnGeneratorFailure(t *testing.T) {
	db := setupTestDB(t)
	generator := &stubGenerator{err: errors.New("model overloaded")}
	store := &stubStore{}
	svc := NewGenerationService(db, generator, store, nil)
	user := createTestUser(t, db, "refund@test.dev", 3)

	_, _, err := svc.Generate(context.Background(), user.ID, &dto.GenerateRequest{Prompt: "doge"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("got %v, want ErrGenerationFailed", err)
	}

	if got := getUser(t, db, user.ID); got.Credits != 3 {
		t.Errorf("credits = %d, want refunded 3", got.Credits)
	}
	if store.calls != 0 {
		t.Errorf("store called %d times, want 0", store.calls)
	}
}

func TestGenerateRefundsOnUploadFailure(t *testing.T) {
	db := setupTestDB(t)
	generator := &stubGenerator{data: []byte("png")}
	store := &stubStore{failKey: "emotes/"}
	svc := NewGenerationService(db, generator, store, nil)
	user := createTestUser(t, db, "upload@test.dev", 3)

	_, _, err := svc.Generate(context.Background(), user.ID, &dto.GenerateRequest{Prompt: "doge"})
	if !errors.Is(err, ErrStorageFailed) {
		t.Fatalf("got %v, want ErrStorageFailed", err)
	}

	if got := getUser(t, db, user.ID); got.Credits != 3 {
		t.Errorf("credits = %d, want refunded 3", got.Credits)
	}
	var count int64
	db.Model(&models.Emote{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("emote rows = %d, want 0", count)
	}
}
