package models

import "time"

type Coupon struct {
	ID           string           `json:"id"`
	StoreName    string           `json:"storeName"`
	Category     string           `json:"category"`
	Code         string           `json:"code"`
	Description  string           `json:"description,omitempty"`
	ExpiryDate   string           `json:"expiryDate,omitempty"` // RFC3339 or YYYY-MM-DD
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	DetectedFrom *DetectionSource `json:"detectedFrom,omitempty"`

	// Last computed snapshot; refreshed on every read.
	IsExpired       bool `json:"isExpired"`
	DaysUntilExpiry *int `json:"daysUntilExpiry,omitempty"`
}

// DetectionSource records where an auto-detected coupon came from.
type DetectionSource struct {
	URL        string    `json:"url,omitempty"`
	AppName    string    `json:"appName,omitempty"`
	DetectedAt time.Time `json:"detectedAt"`
	Confidence float64   `json:"confidence"`
}

// DetectedCouponData is produced by one scan and consumed by ingestion.
type DetectedCouponData struct {
	Code        string          `json:"code"`
	StoreName   string          `json:"storeName"`
	Description string          `json:"description,omitempty"`
	ExpiryDate  string          `json:"expiryDate,omitempty"`
	Source      DetectionSource `json:"source"`
	Confidence  float64         `json:"confidence"`
}
