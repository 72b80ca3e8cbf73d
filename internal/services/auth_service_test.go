package services

import (
	"errors"
	"testing"

	"github.com/emoteforge/emoteforge-backend/internal/dto"
	"github.com/emoteforge/emoteforge-backend/internal/models"
	"github.com/google/uuid"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	resp, err := svc.Register(&dto.RegisterRequest{
		Email: "new@test.dev", Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("token pair missing from registration response")
	}
	if resp.User.Tier != models.TierFree {
		t.Errorf("new user tier = %q, want free", resp.User.Tier)
	}

	if _, err := svc.Register(&dto.RegisterRequest{
		Email: "new@test.dev", Password: "another-password",
	}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate register returned %v, want ErrEmailTaken", err)
	}

	if _, err := svc.Login(&dto.LoginRequest{
		Email: "new@test.dev", Password: "wrong",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password returned %v, want ErrInvalidCredentials", err)
	}

	login, err := svc.Login(&dto.LoginRequest{
		Email: "new@test.dev", Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.Email != "new@test.dev" {
		t.Errorf("login user email = %q", login.User.Email)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	reg, err := svc.Register(&dto.RegisterRequest{Email: "rot@test.dev", Password: "correct-horse"})
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if next.RefreshToken == reg.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The consumed token is revoked and cannot be replayed.
	if _, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("replayed refresh returned %v, want ErrInvalidToken", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	reg, err := svc.Register(&dto.RegisterRequest{Email: "out@test.dev", Password: "correct-horse"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(&dto.LogoutRequest{RefreshToken: reg.RefreshToken}); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh after logout returned %v, want ErrInvalidToken", err)
	}
}

// Account deletion removes listings and entitlements but keeps the purchase
// ledger for accounting.
func TestDeleteAccountKeepsPurchases(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	reg, err := svc.Register(&dto.RegisterRequest{Email: "gone@test.dev", Password: "correct-horse"})
	if err != nil {
		t.Fatal(err)
	}
	userID := reg.User.ID

	emote := createMarketplaceEmote(t, db, userID, "leftover", 500)
	purchase := models.Purchase{
		ID: uuid.New(), BuyerID: userID, EmoteID: &emote.ID,
		AmountCents: 500, Routing: models.RoutingDirect,
	}
	if err := db.Create(&purchase).Error; err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteAccount(userID, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password returned %v, want ErrInvalidCredentials", err)
	}
	if err := svc.DeleteAccount(userID, "correct-horse"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	if _, err := svc.Me(userID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Me after delete returned %v, want ErrUserNotFound", err)
	}

	var emotes int64
	db.Model(&models.Emote{}).Where("user_id = ?", userID).Count(&emotes)
	if emotes != 0 {
		t.Errorf("emote rows after delete = %d, want 0", emotes)
	}
	var purchases int64
	db.Model(&models.Purchase{}).Where("buyer_id = ?", userID).Count(&purchases)
	if purchases != 1 {
		t.Errorf("purchase rows after delete = %d, want 1", purchases)
	}
}
