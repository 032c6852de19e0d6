package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no active row matches the requested id
var ErrNotFound = errors.New("inventory item not found")

// CatalogLookup resolves a barcode against a branch point-of-sale catalog.
// Returns (nil, nil) when the barcode does not exist there.
type CatalogLookup interface {
	FindByBarcode(ctx context.Context, branchCode, barcode string) (*models.CatalogProduct, error)
}

// Store owns the extended inventory table: catalog products that have been
// given trazability metadata (expiration date, temperature, promotion flag).
type Store struct {
	db      *gorm.DB
	catalog CatalogLookup
	now     func() time.Time
}

// NewStore creates a Store. catalog may be nil when attach validation against
// the remote catalog is not needed (tests, offline tooling).
func NewStore(db *gorm.DB, catalog CatalogLookup) *Store {
	return &Store{db: db, catalog: catalog, now: time.Now}
}

// SetClock overrides the store clock (tests)
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// ListFilters narrows ListActive results
type ListFilters struct {
	BranchCode       string
	Search           string
	MaxDaysRemaining *int
	PromotionOnly    bool
}

// ItemView is an inventory row plus its derived urgency
type ItemView struct {
	models.ExtendedInventoryItem
	DaysRemaining int     `json:"daysRemaining"`
	Urgency       Urgency `json:"urgency"`
}

// startOfDay truncates t to UTC midnight. Expiration dates are stored as
// UTC midnights, so day cutoffs must be computed in the same zone or a
// server west of UTC shifts the window by a day.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// hasTable reports whether the inventory table exists. A missing table is a
// legitimate empty state (fresh install), not an error.
func (s *Store) hasTable() bool {
	return s.db.Migrator().HasTable(&models.ExtendedInventoryItem{})
}

// ListActive returns active rows ordered by ascending expiration date, each
// classified against the server clock. Returns an empty slice when the
// backing table is absent.
func (s *Store) ListActive(ctx context.Context, filters ListFilters) ([]ItemView, error) {
	if !s.hasTable() {
		return []ItemView{}, nil
	}

	now := s.now()
	query := s.db.WithContext(ctx).
		Model(&models.ExtendedInventoryItem{}).
		Where("is_active = ?", true).
		Order("expiration_date ASC")

	if filters.BranchCode != "" {
		query = query.Where("branch_code = ?", filters.BranchCode)
	}
	if filters.PromotionOnly {
		query = query.Where("is_promotion = ?", true)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(barcode) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filters.MaxDaysRemaining != nil {
		cutoff := startOfDay(now).AddDate(0, 0, *filters.MaxDaysRemaining+1)
		query = query.Where("expiration_date < ?", cutoff)
	}

	var items []models.ExtendedInventoryItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		days := item.DaysRemaining(now)
		views = append(views, ItemView{
			ExtendedInventoryItem: item,
			DaysRemaining:         days,
			Urgency:               Classify(days),
		})
	}
	return views, nil
}

// BatchError ties a failed barcode to its reason
type BatchError struct {
	Barcode string `json:"barcode"`
	Reason  string `json:"reason"`
}

// BatchResult reports every barcode of an attach batch independently.
// Within each category input order is preserved.
type BatchResult struct {
	Inserted         []models.ExtendedInventoryItem `json:"inserted"`
	AlreadyProcessed []string                       `json:"alreadyProcessed"`
	Errors           []BatchError                   `json:"errors"`
}

// AttachRequest carries the trazability data applied to a batch of barcodes
type AttachRequest struct {
	BranchCode     string
	Barcodes       []string
	ExpirationDate time.Time
	Temperature    *string
	Notes          *string
}

// AttachBatch attaches trazability data to each barcode independently: one
// failing barcode never aborts the rest. A barcode with an existing active
// row is reported as already processed, not as an error. The existence check
// and insert run in one transaction per item, keeping a single active row per
// barcode without a schema uniqueness constraint (historical soft-deleted
// rows for the same barcode must stay valid).
func (s *Store) AttachBatch(ctx context.Context, req AttachRequest) (*BatchResult, error) {
	if req.ExpirationDate.IsZero() {
		return nil, errors.New("expiration date is required")
	}

	result := &BatchResult{
		Inserted:         []models.ExtendedInventoryItem{},
		AlreadyProcessed: []string{},
		Errors:           []BatchError{},
	}

	for _, barcode := range req.Barcodes {
		barcode = strings.TrimSpace(barcode)
		if barcode == "" {
			result.Errors = append(result.Errors, BatchError{Barcode: barcode, Reason: "empty barcode"})
			continue
		}

		product, err := s.lookupCatalog(ctx, req.BranchCode, barcode)
		if err != nil {
			result.Errors = append(result.Errors, BatchError{Barcode: barcode, Reason: err.Error()})
			continue
		}
		if product == nil {
			result.Errors = append(result.Errors, BatchError{Barcode: barcode, Reason: "barcode not found in catalog"})
			continue
		}

		item := models.ExtendedInventoryItem{
			BranchCode:     req.BranchCode,
			Barcode:        barcode,
			Description:    product.Description,
			PriceDate:      product.PriceDate,
			ExpirationDate: req.ExpirationDate,
			Temperature:    req.Temperature,
			Notes:          req.Notes,
			IsActive:       true,
		}

		duplicate := false
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.ExtendedInventoryItem{}).
				Where("barcode = ? AND is_active = ?", barcode, true).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				duplicate = true
				return nil
			}
			return tx.Create(&item).Error
		})

		switch {
		case err != nil:
			result.Errors = append(result.Errors, BatchError{Barcode: barcode, Reason: err.Error()})
		case duplicate:
			result.AlreadyProcessed = append(result.AlreadyProcessed, barcode)
		default:
			result.Inserted = append(result.Inserted, item)
		}
	}

	return result, nil
}

func (s *Store) lookupCatalog(ctx context.Context, branchCode, barcode string) (*models.CatalogProduct, error) {
	if s.catalog == nil {
		return nil, errors.New("catalog reader not configured")
	}
	product, err := s.catalog.FindByBarcode(ctx, branchCode, barcode)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}
	return product, nil
}

// PromotionResult is the outcome of a promotion toggle
type PromotionResult struct {
	ID          uint   `json:"id"`
	IsPromotion bool   `json:"isPromotion"`
	Description string `json:"name"`
}

// TogglePromotion flips the promotion flag of an active row
func (s *Store) TogglePromotion(ctx context.Context, id uint) (*PromotionResult, error) {
	var item models.ExtendedInventoryItem
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	item.IsPromotion = !item.IsPromotion
	item.UpdatedAt = s.now()
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return &PromotionResult{ID: item.ID, IsPromotion: item.IsPromotion, Description: item.Description}, nil
}

// SoftDelete marks an active row inactive. The row stays in the table.
func (s *Store) SoftDelete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.ExtendedInventoryItem{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": s.now()})
	if res.Error != nil {
		return fmt.Errorf("failed to delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates active inventory rows
type Stats struct {
	Total                  int64      `json:"total"`
	Critical               int64      `json:"critical"`
	Warning                int64      `json:"warning"`
	WithTemperatureControl int64      `json:"withTemperatureControl"`
	Promotions             int64      `json:"promotions"`
	NextExpirationDate     *time.Time `json:"nextExpirationDate,omitempty"`
	LastCreatedAt          *time.Time `json:"lastCreatedAt,omitempty"`
}

// Stats returns aggregates over active rows. An empty or absent table yields
// an all-zero result, never an error.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	if !s.hasTable() {
		return stats, nil
	}

	now := s.now()
	criticalCutoff := startOfDay(now).AddDate(0, 0, 4) // expiry < today+4 => days <= 3
	warningCutoff := startOfDay(now).AddDate(0, 0, 8)  // expiry < today+8 => days <= 7

	active := func() *gorm.DB {
		return s.db.WithContext(ctx).
			Model(&models.ExtendedInventoryItem{}).
			Where("is_active = ?", true)
	}

	if err := active().Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count inventory: %w", err)
	}
	if stats.Total == 0 {
		return stats, nil
	}

	if err := active().Where("expiration_date < ?", criticalCutoff).Count(&stats.Critical).Error; err != nil {
		return nil, fmt.Errorf("failed to count critical items: %w", err)
	}
	if err := active().
		Where("expiration_date >= ? AND expiration_date < ?", criticalCutoff, warningCutoff).
		Count(&stats.Warning).Error; err != nil {
		return nil, fmt.Errorf("failed to count warning items: %w", err)
	}
	if err := active().
		Where("temperature IS NOT NULL AND temperature <> ''").
		Count(&stats.WithTemperatureControl).Error; err != nil {
		return nil, fmt.Errorf("failed to count temperature items: %w", err)
	}
	if err := active().Where("is_promotion = ?", true).Count(&stats.Promotions).Error; err != nil {
		return nil, fmt.Errorf("failed to count promotions: %w", err)
	}

	var next models.ExtendedInventoryItem
	if err := active().Order("expiration_date ASC").First(&next).Error; err == nil {
		stats.NextExpirationDate = &next.ExpirationDate
	}
	var last models.ExtendedInventoryItem
	if err := active().Order("created_at DESC").First(&last).Error; err == nil {
		stats.LastCreatedAt = &last.CreatedAt
	}

	return stats, nil
}

// MarkProcessed fills the Processed flag on catalog products that already
// have an active extended inventory row.
func (s *Store) MarkProcessed(ctx context.Context, products []models.CatalogProduct) error {
	if len(products) == 0 || !s.hasTable() {
		return nil
	}

	barcodes := make([]string, 0, len(products))
	for _, p := range products {
		barcodes = append(barcodes, p.Barcode)
	}

	var existing []string
	err := s.db.WithContext(ctx).
		Model(&models.ExtendedInventoryItem{}).
		Where("barcode IN ? AND is_active = ?", barcodes, true).
		Pluck("barcode", &existing).Error
	if err != nil {
		return fmt.Errorf("failed to check processed barcodes: %w", err)
	}

	processed := make(map[string]bool, len(existing))
	for _, b := range existing {
		processed[b] = true
	}
	for i := range products {
		products[i].Processed = processed[products[i].Barcode]
	}
	return nil
}
