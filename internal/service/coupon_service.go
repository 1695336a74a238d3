package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Cheertaboi/coupon-keeper/internal/expiry"
	"github.com/Cheertaboi/coupon-keeper/internal/metrics"
	"github.com/Cheertaboi/coupon-keeper/internal/models"
	"github.com/Cheertaboi/coupon-keeper/internal/repository"
)

const (
	DefaultCategory      = "General"
	AutoDetectedCategory = "Auto-Detected"

	// DefaultMinIngestConfidence is the acceptance gate for auto-ingestion.
	// Detections must be strictly above it, independently of the scan-time
	// sensitivity threshold.
	DefaultMinIngestConfidence = 0.7
)

var ErrCouponNotFound = errors.New("coupon_not_found")

// CouponRepo is the storage the service needs (use an interface to allow mocking).
type CouponRepo interface {
	LoadAll(ctx context.Context) ([]models.Coupon, error)
	SaveAll(ctx context.Context, coupons []models.Coupon) error
}

type Options struct {
	Now                 func() time.Time
	ExpiringSoonDays    int
	MinIngestConfidence float64
}

// CouponView is a coupon plus its display tier, computed at read time.
type CouponView struct {
	models.Coupon
	Status expiry.Status `json:"status"`
	Label  string        `json:"label"`
}

type CouponService struct {
	repo    CouponRepo
	opts    Options
	metrics *metrics.Metrics
	log     zerolog.Logger

	// serializes load-modify-save cycles on the single slot
	mu sync.Mutex
}

func NewCouponService(repo CouponRepo, opts Options, m *metrics.Metrics, log zerolog.Logger) *CouponService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExpiringSoonDays <= 0 {
		opts.ExpiringSoonDays = expiry.DefaultExpiringSoonDays
	}
	if opts.MinIngestConfidence <= 0 {
		opts.MinIngestConfidence = DefaultMinIngestConfidence
	}
	return &CouponService{
		repo:    repo,
		opts:    opts,
		metrics: m,
		log:     log.With().Str("component", "coupon_service").Logger(),
	}
}

func (s *CouponService) ExpiringSoonDays() int { return s.opts.ExpiringSoonDays }

// GetAll returns every coupon with freshly computed expiry fields. Storage
// failures are logged and read as "no coupons".
func (s *CouponService) GetAll(ctx context.Context) []models.Coupon {
	coupons, _ := s.load(ctx)
	return coupons
}

func (s *CouponService) Get(ctx context.Context, id string) (models.Coupon, error) {
	for _, c := range s.GetAll(ctx) {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Coupon{}, ErrCouponNotFound
}

// Add stores a new coupon. Persisting is best effort: a failed save is
// logged and the built coupon is still returned.
func (s *CouponService) Add(ctx context.Context, in models.CouponInput) (models.Coupon, error) {
	if err := in.Validate(); err != nil {
		return models.Coupon{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, writable := s.load(ctx)
	c := s.build(in)
	if writable {
		s.save(ctx, append(existing, c))
	}
	return c, nil
}

// Delete removes a coupon by id. An unreadable store makes it a logged no-op.
func (s *CouponService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, writable := s.load(ctx)
	if !writable {
		// load already logged the failure
		return nil
	}
	idx := slices.IndexFunc(existing, func(c models.Coupon) bool { return c.ID == id })
	if idx < 0 {
		return ErrCouponNotFound
	}
	s.save(ctx, slices.Delete(existing, idx, idx+1))
	return nil
}

// Categories returns the distinct categories in use, sorted.
func (s *CouponService) Categories(ctx context.Context) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range s.GetAll(ctx) {
		if _, ok := seen[c.Category]; ok {
			continue
		}
		seen[c.Category] = struct{}{}
		out = append(out, c.Category)
	}
	sort.Strings(out)
	return out
}

// Search matches store, code, category and description case-insensitively.
// A blank term matches everything.
func (s *CouponService) Search(ctx context.Context, term string) []models.Coupon {
	all := s.GetAll(ctx)
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return all
	}
	var out []models.Coupon
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.StoreName), term) ||
			strings.Contains(strings.ToLower(c.Code), term) ||
			strings.Contains(strings.ToLower(c.Category), term) ||
			strings.Contains(strings.ToLower(c.Description), term) {
			out = append(out, c)
		}
	}
	return out
}

func (s *CouponService) Expired(ctx context.Context) []models.Coupon {
	var out []models.Coupon
	for _, c := range s.GetAll(ctx) {
		if c.IsExpired {
			out = append(out, c)
		}
	}
	return out
}

// ExpiringSoon lists live coupons expiring within days; days <= 0 uses the
// configured window.
func (s *CouponService) ExpiringSoon(ctx context.Context, days int) []models.Coupon {
	if days <= 0 {
		days = s.opts.ExpiringSoonDays
	}
	var out []models.Coupon
	for _, c := range s.GetAll(ctx) {
		if !c.IsExpired && c.DaysUntilExpiry != nil && *c.DaysUntilExpiry <= days {
			out = append(out, c)
		}
	}
	return out
}

func (s *CouponService) Status(c models.Coupon) expiry.Status {
	return expiry.StatusOf(infoOf(c), s.opts.ExpiringSoonDays)
}

func (s *CouponService) View(c models.Coupon) CouponView {
	info := infoOf(c)
	return CouponView{
		Coupon: c,
		Status: expiry.StatusOf(info, s.opts.ExpiringSoonDays),
		Label:  expiry.Label(info),
	}
}

func (s *CouponService) Views(coupons []models.Coupon) []CouponView {
	out := make([]CouponView, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, s.View(c))
	}
	return out
}

// IngestDetected promotes high-confidence detections into the store,
// skipping any whose code and store (case-insensitive) already exist. It
// returns the coupons that were added.
func (s *CouponService) IngestDetected(ctx context.Context, detected []models.DetectedCouponData) []models.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, writable := s.load(ctx)
	if !writable {
		s.log.Warn().Int("detected", len(detected)).Msg("store unreadable, skipping ingestion")
		return nil
	}

	var added []models.Coupon
	for _, d := range detected {
		if d.Confidence <= s.opts.MinIngestConfidence {
			s.metrics.IngestSkip("low_confidence")
			continue
		}
		if containsCoupon(existing, d.Code, d.StoreName) {
			s.metrics.IngestSkip("duplicate")
			continue
		}
		source := d.Source
		c := s.build(models.CouponInput{
			StoreName:    d.StoreName,
			Category:     AutoDetectedCategory,
			Code:         d.Code,
			Description:  d.Description,
			ExpiryDate:   d.ExpiryDate,
			DetectedFrom: &source,
		})
		existing = append(existing, c)
		added = append(added, c)
		s.metrics.CouponIngested()
	}

	if len(added) > 0 {
		s.save(ctx, existing)
		s.log.Info().Int("added", len(added)).Int("detected", len(detected)).Msg("ingested detected coupons")
	}
	return added
}

func containsCoupon(coupons []models.Coupon, code, store string) bool {
	for _, c := range coupons {
		if c.Code == code && strings.EqualFold(c.StoreName, store) {
			return true
		}
	}
	return false
}

func (s *CouponService) build(in models.CouponInput) models.Coupon {
	now := s.opts.Now().UTC()
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}
	c := models.Coupon{
		ID:           uuid.NewString(),
		StoreName:    strings.TrimSpace(in.StoreName),
		Category:     category,
		Code:         strings.TrimSpace(in.Code),
		Description:  in.Description,
		ExpiryDate:   strings.TrimSpace(in.ExpiryDate),
		CreatedAt:    now,
		UpdatedAt:    now,
		DetectedFrom: in.DetectedFrom,
	}
	return s.refresh(c, now)
}

func (s *CouponService) refresh(c models.Coupon, now time.Time) models.Coupon {
	info := expiry.ClassifyString(c.ExpiryDate, now)
	c.IsExpired = info.IsExpired
	c.DaysUntilExpiry = info.DaysUntilExpiry
	return c
}

// load reads the slot and refreshes derived fields. writable is false when
// the slot could not be read at all, in which case writing back would clobber
// data we never saw. A corrupt slot counts as empty and stays writable.
func (s *CouponService) load(ctx context.Context) (coupons []models.Coupon, writable bool) {
	stored, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.metrics.StorageError("load")
		if errors.Is(err, repository.ErrCorrupt) {
			s.log.Error().Err(err).Msg("coupon data corrupt, treating as empty")
			return nil, true
		}
		s.log.Error().Err(err).Msg("failed to load coupons")
		return nil, false
	}

	now := s.opts.Now()
	out := make([]models.Coupon, 0, len(stored))
	for _, c := range stored {
		out = append(out, s.refresh(c, now))
	}
	return out, true
}

func (s *CouponService) save(ctx context.Context, coupons []models.Coupon) {
	if err := s.repo.SaveAll(ctx, coupons); err != nil {
		s.metrics.StorageError("save")
		s.log.Error().Err(err).Int("count", len(coupons)).Msg("failed to save coupons")
	}
}

func infoOf(c models.Coupon) expiry.Info {
	return expiry.Info{IsExpired: c.IsExpired, DaysUntilExpiry: c.DaysUntilExpiry}
}
