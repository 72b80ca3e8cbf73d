package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/emoteforge/emoteforge-backend/internal/dto"
	"github.com/emoteforge/emoteforge-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmptyPrompt         = errors.New("prompt is required")
	ErrInsufficientCredits = errors.New("not enough credits")
	ErrGenerationFailed    = errors.New("image generation failed")
	ErrStorageFailed       = errors.New("image upload failed")
)

// GenerationCost is the credit price of one emote generation.
const GenerationCost = 1

// ImageGenerator produces image bytes for a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// BlobStore uploads image bytes and returns a public URL.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Style suffixes appended to the user prompt.
var stylePrompts = map[string]string{
	"chibi":  "chibi style, oversized head, cute proportions",
	"pixel":  "pixel art style, 32x32 retro game sprite",
	"kawaii": "kawaii style, pastel colors, soft shading",
	"meme":   "bold meme style, thick outlines, exaggerated expression",
}

type GenerationService struct {
	db          *gorm.DB
	generator   ImageGenerator
	store       BlobStore
	watermarker *Watermarker
}

func NewGenerationService(db *gorm.DB, generator ImageGenerator, store BlobStore, watermarker *Watermarker) *GenerationService {
	return &GenerationService{db: db, generator: generator, store: store, watermarker: watermarker}
}

// Generate spends one credit, produces an emote image, uploads the full
// image plus a watermarked preview, and records a draft emote.
//
// The credit is taken with a single conditional decrement before any
// external call; zero affected rows means the balance was too low and
// nothing else happens. Upstream failures refund the credit.
func (s *GenerationService) Generate(ctx context.Context, userID uuid.UUID, req *dto.GenerateRequest) (*models.Emote, int64, error) {
	if req.Prompt == "" {
		return nil, 0, ErrEmptyPrompt
	}

	result := s.db.Model(&models.User{}).
		Where("id = ? AND credits >= ?", userID, GenerationCost).
		UpdateColumn("credits", gorm.Expr("credits - ?", GenerationCost))
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to spend credit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, 0, ErrInsufficientCredits
	}

	fullPrompt := req.Prompt
	if suffix, ok := stylePrompts[req.Style]; ok {
		fullPrompt = req.Prompt + ", " + suffix
	}

	imageData, err := s.generator.Generate(ctx, fullPrompt)
	if err != nil {
		s.refund(userID)
		slog.Error("emote generation failed", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	preview := imageData
	if s.watermarker != nil {
		if marked, err := s.watermarker.Apply(imageData); err == nil {
			preview = marked
		} else {
			slog.Warn("watermark failed, using unmarked preview", "error", err)
		}
	}

	emoteID := uuid.New()
	imageURL, err := s.store.Upload(ctx, "emotes/"+emoteID.String()+".png", imageData, "image/png")
	if err != nil {
		s.refund(userID)
		slog.Error("emote upload failed", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	previewURL, err := s.store.Upload(ctx, "previews/"+emoteID.String()+".png", preview, "image/png")
	if err != nil {
		s.refund(userID)
		slog.Error("preview upload failed", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	params, _ := json.Marshal(map[string]string{
		"prompt": req.Prompt,
		"style":  req.Style,
	})

	emote := models.Emote{
		ID:         emoteID,
		UserID:     userID,
		Title:      req.Prompt,
		Prompt:     req.Prompt,
		Style:      req.Style,
		ImageURL:   imageURL,
		PreviewURL: previewURL,
		Status:     models.EmoteStatusDraft,
		GenParams:  datatypes.JSON(params),
	}
	if err := s.db.Create(&emote).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to save emote: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return &emote, 0, nil
	}
	return &emote, user.Credits, nil
}

func (s *GenerationService) refund(userID uuid.UUID) {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits + ?", GenerationCost)).Error; err != nil {
		slog.Error("credit refund failed", "user_id", userID, "error", err)
	}
}
