package catalog

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/config"
	"github.com/beachmarket/beachmarketgo/internal/models"
	"github.com/beachmarket/beachmarketgo/internal/utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrBranchNotFound is returned when a branch code has no registry entry
var ErrBranchNotFound = errors.New("branch not found")

// Reader queries branch point-of-sale databases. Every branch has its own
// credentials, so connections are opened per request and always released,
// never pooled long-term like the local inventory database.
type Reader struct {
	db     *gorm.DB // local DB holding the branch registry
	cfg    config.CatalogConfig
	encKey string
}

// NewReader creates a catalog reader backed by the branch registry
func NewReader(db *gorm.DB, cfg config.CatalogConfig, encKey string) *Reader {
	return &Reader{db: db, cfg: cfg, encKey: encKey}
}

// resolveBranch loads an active branch from the registry
func (r *Reader) resolveBranch(ctx context.Context, branchCode string) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", branchCode, true).
		First(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBranchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load branch %s: %w", branchCode, err)
	}
	return &branch, nil
}

// branchDSN builds the MySQL DSN for a branch, with bounded connect and
// request timeouts baked in so a dead branch cannot hang a request.
func branchDSN(branch *models.Branch, password string, cfg config.CatalogConfig) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		branch.CatalogUser,
		password,
		branch.CatalogHost,
		branch.CatalogPort,
		branch.CatalogDatabase,
		int(cfg.ConnectTimeout.Seconds()),
		int(cfg.RequestTimeout.Seconds()),
		int(cfg.RequestTimeout.Seconds()),
	)
}

// open connects to a branch catalog. The returned close func must be called
// on every exit path.
func (r *Reader) open(ctx context.Context, branchCode string) (*gorm.DB, func(), error) {
	branch, err := r.resolveBranch(ctx, branchCode)
	if err != nil {
		return nil, nil, err
	}

	password, err := utils.DecryptCredential(branch.CatalogPassword, r.encKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt catalog credentials: %w", err)
	}

	db, err := gorm.Open(mysql.Open(branchDSN(branch, password, r.cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to branch catalog: %w", err)
	}

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to get catalog connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetConnMaxLifetime(r.cfg.RequestTimeout)

	return db, closeFn, nil
}

// FindByBarcode looks one barcode up in the branch catalog. Returns
// (nil, nil) when the barcode does not exist there.
func (r *Reader) FindByBarcode(ctx context.Context, branchCode, barcode string) (*models.CatalogProduct, error) {
	db, closeFn, err := r.open(ctx, branchCode)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var product models.CatalogProduct
	err = db.WithContext(ctx).Raw(
		"SELECT barcode, description, price_date, family_name FROM products WHERE barcode = ? LIMIT 1",
		barcode,
	).Scan(&product).Error
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	if product.Barcode == "" {
		return nil, nil
	}
	return &product, nil
}

// ProductFilters narrows RecentProducts results
type ProductFilters struct {
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

// RecentProducts returns catalog products ordered by most recent price date
func (r *Reader) RecentProducts(ctx context.Context, branchCode string, filters ProductFilters) ([]models.CatalogProduct, error) {
	db, closeFn, err := r.open(ctx, branchCode)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	query := "SELECT barcode, description, price_date, family_name FROM products WHERE 1=1"
	var args []interface{}

	if filters.Search != "" {
		query += " AND (LOWER(barcode) LIKE ? OR LOWER(description) LIKE ?)"
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		args = append(args, pattern, pattern)
	}
	if filters.DateFrom != nil {
		query += " AND price_date >= ?"
		args = append(args, *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query += " AND price_date <= ?"
		args = append(args, *filters.DateTo)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += " ORDER BY price_date DESC LIMIT ?"
	args = append(args, limit)

	var products []models.CatalogProduct
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&products).Error; err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	return products, nil
}

// SalesSummary aggregates sales rows from the branch point-of-sale database
type SalesSummary struct {
	BranchCode   string     `json:"branchCode"`
	Transactions int64      `json:"transactions"`
	TotalAmount  float64    `json:"totalAmount"`
	FirstSaleAt  *time.Time `json:"firstSaleAt,omitempty"`
	LastSaleAt   *time.Time `json:"lastSaleAt,omitempty"`
}

// Sales returns a summary of branch sales in a date range
func (r *Reader) Sales(ctx context.Context, branchCode string, from, to time.Time) (*SalesSummary, error) {
	db, closeFn, err := r.open(ctx, branchCode)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	summary := &SalesSummary{BranchCode: branchCode}
	err = db.WithContext(ctx).Raw(
		"SELECT COUNT(*) AS transactions, COALESCE(SUM(total),0) AS total_amount, MIN(sold_at) AS first_sale_at, MAX(sold_at) AS last_sale_at FROM sales WHERE sold_at >= ? AND sold_at <= ?",
		from, to,
	).Scan(summary).Error
	if err != nil {
		return nil, fmt.Errorf("sales query failed: %w", err)
	}
	return summary, nil
}

// HealthResult distinguishes network reachability from database availability
type HealthResult struct {
	NetworkOk  bool
	DatabaseOk bool
	Detail     string
}

// Health checks a branch in two steps: a raw TCP dial to separate network
// failures from database failures, then a real catalog query.
func (r *Reader) Health(ctx context.Context, branchCode string) (*HealthResult, error) {
	branch, err := r.resolveBranch(ctx, branchCode)
	if err != nil {
		return nil, err
	}

	result := &HealthResult{}

	// Network and database are checked independently so an outage can be
	// classified as NETWORK, DATABASE or BOTH.
	addr := fmt.Sprintf("%s:%d", branch.CatalogHost, branch.CatalogPort)
	conn, err := net.DialTimeout("tcp", addr, r.cfg.ConnectTimeout)
	if err != nil {
		result.Detail = err.Error()
	} else {
		conn.Close()
		result.NetworkOk = true
	}

	db, closeFn, err := r.open(ctx, branchCode)
	if err != nil {
		if result.Detail == "" {
			result.Detail = err.Error()
		}
		return result, nil
	}
	defer closeFn()

	var one int
	if err := db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		if result.Detail == "" {
			result.Detail = err.Error()
		}
		return result, nil
	}
	result.DatabaseOk = true
	return result, nil
}
