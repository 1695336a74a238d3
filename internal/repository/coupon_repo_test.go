package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Cheertaboi/coupon-keeper/internal/cache"
	"github.com/Cheertaboi/coupon-keeper/internal/models"
)

type brokenSlot struct{}

func (brokenSlot) Load(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (brokenSlot) Save(context.Context, string, []byte) error   { return errors.New("disk gone") }

func TestCouponRepoEmptySlot(t *testing.T) {
	repo := NewCouponRepo(cache.NewMemorySlot())
	got, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d coupons from empty slot", len(got))
	}
}

func TestCouponRepoCorruptSlot(t *testing.T) {
	ctx := context.Background()
	slot := cache.NewMemorySlot()
	_ = slot.Save(ctx, StorageKey, []byte(`{not json`))

	_, err := NewCouponRepo(slot).LoadAll(ctx)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestCouponRepoSlotFailure(t *testing.T) {
	repo := NewCouponRepo(brokenSlot{})
	ctx := context.Background()

	if _, err := repo.LoadAll(ctx); err == nil || errors.Is(err, ErrCorrupt) {
		t.Fatalf("LoadAll err = %v, want non-corrupt failure", err)
	}
	if err := repo.SaveAll(ctx, nil); err == nil {
		t.Fatal("SaveAll: expected error")
	}
}

func TestCouponRepoKeepsProvenance(t *testing.T) {
	ctx := context.Background()
	repo := NewCouponRepo(cache.NewMemorySlot())
	detectedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	in := []models.Coupon{{
		ID:        "c1",
		StoreName: "Target",
		Category:  "Auto-Detected",
		Code:      "TARGET15",
		DetectedFrom: &models.DetectionSource{
			URL:        "https://target.com/promotions",
			DetectedAt: detectedAt,
			Confidence: 0.8,
		},
	}}
	if err := repo.SaveAll(ctx, in); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	out, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(out) != 1 || out[0].DetectedFrom == nil {
		t.Fatalf("unexpected result %+v", out)
	}
	if !out[0].DetectedFrom.DetectedAt.Equal(detectedAt) || out[0].DetectedFrom.Confidence != 0.8 {
		t.Errorf("provenance changed: %+v", out[0].DetectedFrom)
	}
}
