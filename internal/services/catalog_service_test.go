package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/emoteforge/emoteforge-backend/internal/dto"
	"github.com/emoteforge/emoteforge-backend/internal/models"
	"github.com/google/uuid"
)

func TestListMarketplacePagination(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	seller := createTestUser(t, db, "seller@test.dev", 0)

	for i := 0; i < 45; i++ {
		createMarketplaceEmote(t, db, seller.ID, fmt.Sprintf("emote-%02d", i), 500)
	}
	// Drafts never show up in marketplace listings.
	price := int64(500)
	draft := models.Emote{
		ID: uuid.New(), UserID: seller.ID, Title: "hidden-draft",
		PriceCents: &price, Status: models.EmoteStatusDraft,
	}
	if err := db.Create(&draft).Error; err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		page    int
		want    int
		hasMore bool
	}{
		{1, 20, true},
		{2, 20, true},
		{3, 5, false},
		{4, 0, false},
	}

	for _, tt := range tests {
		emotes, total, hasMore, err := svc.ListMarketplace(tt.page, 20, "")
		if err != nil {
			t.Fatalf("ListMarketplace(page=%d) failed: %v", tt.page, err)
		}
		if total != 45 {
			t.Errorf("page %d: total = %d, want 45", tt.page, total)
		}
		if len(emotes) != tt.want {
			t.Errorf("page %d: got %d emotes, want %d", tt.page, len(emotes), tt.want)
		}
		if hasMore != tt.hasMore {
			t.Errorf("page %d: hasMore = %v, want %v", tt.page, hasMore, tt.hasMore)
		}
	}
}

// hasMore must be false when the page boundary lands exactly on the total.
func TestListMarketplaceHasMoreBoundary(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	seller := createTestUser(t, db, "seller@test.dev", 0)

	for i := 0; i < 40; i++ {
		createMarketplaceEmote(t, db, seller.ID, fmt.Sprintf("emote-%02d", i), 500)
	}

	_, _, hasMore, err := svc.ListMarketplace(2, 20, "")
	if err != nil {
		t.Fatal(err)
	}
	if hasMore {
		t.Error("hasMore = true on the final full page, want false")
	}
}

func TestListMarketplaceSearchIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	seller := createTestUser(t, db, "seller@test.dev", 0)

	createMarketplaceEmote(t, db, seller.ID, "Angry Doge", 500)
	createMarketplaceEmote(t, db, seller.ID, "happy cat", 500)
	createMarketplaceEmote(t, db, seller.ID, "SLEEPY DOGE", 500)

	for _, query := range []string{"doge", "DOGE", "Doge"} {
		emotes, total, _, err := svc.ListMarketplace(1, 20, query)
		if err != nil {
			t.Fatalf("search %q failed: %v", query, err)
		}
		if total != 2 || len(emotes) != 2 {
			t.Errorf("search %q: got %d emotes (total %d), want 2", query, len(emotes), total)
		}
	}

	// Prompt text is searched too. The fixture prompt is "<title> prompt".
	emotes, _, _, err := svc.ListMarketplace(1, 20, "CAT PROMPT")
	if err != nil {
		t.Fatal(err)
	}
	if len(emotes) != 1 {
		t.Errorf("prompt search: got %d emotes, want 1", len(emotes))
	}
}

func TestPublishEmote(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	owner := createTestUser(t, db, "owner@test.dev", 0)
	stranger := createTestUser(t, db, "stranger@test.dev", 0)

	newDraft := func(imageURL string) *models.Emote {
		emote := models.Emote{
			ID: uuid.New(), UserID: owner.ID, Title: "draft",
			ImageURL: imageURL, Status: models.EmoteStatusDraft,
		}
		if err := db.Create(&emote).Error; err != nil {
			t.Fatal(err)
		}
		return &emote
	}

	price := int64(500)
	lowPrice := int64(99)

	t.Run("not owner", func(t *testing.T) {
		emote := newDraft("https://cdn.test/a.png")
		_, err := svc.Publish(stranger.ID, emote.ID, &dto.PublishEmoteRequest{PriceCents: &price})
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("got %v, want ErrNotOwner", err)
		}
	})

	t.Run("missing image", func(t *testing.T) {
		emote := newDraft("")
		_, err := svc.Publish(owner.ID, emote.ID, &dto.PublishEmoteRequest{PriceCents: &price})
		if !errors.Is(err, ErrInvalidListing) {
			t.Fatalf("got %v, want ErrInvalidListing", err)
		}
	})

	t.Run("price below minimum", func(t *testing.T) {
		emote := newDraft("https://cdn.test/b.png")
		_, err := svc.Publish(owner.ID, emote.ID, &dto.PublishEmoteRequest{PriceCents: &lowPrice})
		if !errors.Is(err, ErrInvalidListing) {
			t.Fatalf("got %v, want ErrInvalidListing", err)
		}
	})

	t.Run("no price at all", func(t *testing.T) {
		emote := newDraft("https://cdn.test/c.png")
		_, err := svc.Publish(owner.ID, emote.ID, &dto.PublishEmoteRequest{})
		if !errors.Is(err, ErrInvalidListing) {
			t.Fatalf("got %v, want ErrInvalidListing", err)
		}
	})

	t.Run("marketplace listing", func(t *testing.T) {
		emote := newDraft("https://cdn.test/d.png")
		published, err := svc.Publish(owner.ID, emote.ID, &dto.PublishEmoteRequest{
			PriceCents: &price, Marketplace: true,
		})
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		if published.Status != models.EmoteStatusMarketplace {
			t.Errorf("status = %q, want marketplace", published.Status)
		}
		if published.PriceCents == nil || *published.PriceCents != 500 {
			t.Errorf("price = %v, want 500", published.PriceCents)
		}
	})
}

func TestCreateBundle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	owner := createTestUser(t, db, "owner@test.dev", 0)
	other := createTestUser(t, db, "other@test.dev", 0)

	mine := createMarketplaceEmote(t, db, owner.ID, "mine", 300)
	theirs := createMarketplaceEmote(t, db, other.ID, "theirs", 300)

	t.Run("empty bundle", func(t *testing.T) {
		_, err := svc.CreateBundle(owner.ID, &dto.CreateBundleRequest{Name: "Empty", PriceCents: 500})
		if !errors.Is(err, ErrEmptyBundle) {
			t.Fatalf("got %v, want ErrEmptyBundle", err)
		}
	})

	t.Run("contains someone else's emote", func(t *testing.T) {
		_, err := svc.CreateBundle(owner.ID, &dto.CreateBundleRequest{
			Name: "Mixed", PriceCents: 500,
			EmoteIDs: []uuid.UUID{mine.ID, theirs.ID},
		})
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("got %v, want ErrNotOwner", err)
		}
	})

	t.Run("valid bundle", func(t *testing.T) {
		bundle, err := svc.CreateBundle(owner.ID, &dto.CreateBundleRequest{
			Name: "Pack", PriceCents: 500,
			EmoteIDs: []uuid.UUID{mine.ID},
		})
		if err != nil {
			t.Fatalf("CreateBundle failed: %v", err)
		}
		if len(bundle.Emotes) != 1 {
			t.Errorf("bundle has %d emotes, want 1", len(bundle.Emotes))
		}

		fetched, err := svc.GetBundle(bundle.ID)
		if err != nil {
			t.Fatalf("GetBundle failed: %v", err)
		}
		if len(fetched.Emotes) != 1 || fetched.Emotes[0].ID != mine.ID {
			t.Errorf("fetched bundle emotes = %v", fetched.Emotes)
		}
	})
}

func TestOwnsEmote(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	seller := createTestUser(t, db, "seller@test.dev", 0)
	buyer := createTestUser(t, db, "buyer@test.dev", 0)
	emote := createMarketplaceEmote(t, db, seller.ID, "owned-check", 500)

	owned, err := svc.OwnsEmote(buyer.ID, emote.ID)
	if err != nil {
		t.Fatal(err)
	}
	if owned {
		t.Error("OwnsEmote = true before purchase, want false")
	}

	if err := db.Create(&models.EmoteOwnership{
		ID: uuid.New(), UserID: buyer.ID, EmoteID: emote.ID,
	}).Error; err != nil {
		t.Fatal(err)
	}

	owned, err = svc.OwnsEmote(buyer.ID, emote.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !owned {
		t.Error("OwnsEmote = false after purchase, want true")
	}
}
