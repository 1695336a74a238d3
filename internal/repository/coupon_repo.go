package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/Cheertaboi/coupon-keeper/internal/models"
)

// StorageKey is the slot holding the serialized coupon array.
const StorageKey = "coupon_keeper_coupons"

// Slot is a single-value key-value store. Load returns nil, nil when the
// key has never been written.
type Slot interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// ErrCorrupt marks a slot whose contents could not be decoded.
var ErrCorrupt = errors.New("corrupt coupon data")

type CouponRepo struct {
	slot Slot
}

func NewCouponRepo(slot Slot) *CouponRepo {
	return &CouponRepo{slot: slot}
}

func (r *CouponRepo) LoadAll(ctx context.Context) ([]models.Coupon, error) {
	raw, err := r.slot.Load(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load coupons: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var coupons []models.Coupon
	if err := json.Unmarshal(raw, &coupons); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return coupons, nil
}

func (r *CouponRepo) SaveAll(ctx context.Context, coupons []models.Coupon) error {
	if coupons == nil {
		coupons = []models.Coupon{}
	}
	raw, err := json.Marshal(coupons)
	if err != nil {
		return fmt.Errorf("encode coupons: %w", err)
	}
	if err := r.slot.Save(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save coupons: %w", err)
	}
	return nil
}
