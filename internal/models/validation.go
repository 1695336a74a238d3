package models

import (
	"errors"
	"strings"
)

var ErrInvalidCoupon = errors.New("code and storeName required")

// CouponInput is the partial coupon accepted by the store's Add.
type CouponInput struct {
	StoreName    string           `json:"storeName"`
	Category     string           `json:"category"`
	Code         string           `json:"code"`
	Description  string           `json:"description,omitempty"`
	ExpiryDate   string           `json:"expiryDate,omitempty"`
	DetectedFrom *DetectionSource `json:"detectedFrom,omitempty"`
}

func (in CouponInput) Validate() error {
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.StoreName) == "" {
		return ErrInvalidCoupon
	}
	return nil
}
