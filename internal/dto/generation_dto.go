package dto

import "github.com/emoteforge/emoteforge-backend/internal/models"

type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

type GenerateResponse struct {
	Emote            models.Emote `json:"emote"`
	CreditsRemaining int64        `json:"credits_remaining"`
}
