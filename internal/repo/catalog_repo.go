package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopreviews/catalog/internal/db"
	"github.com/shopreviews/catalog/internal/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrCustomerNotFound is returned when a customer is not found
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrItemNotFound is returned when an item is not found
	ErrItemNotFound = errors.New("item not found")

	// ErrReviewNotFound is returned when a review is not found
	ErrReviewNotFound = errors.New("review not found")
)

const (
	entityCustomer = "customer"
	entityItem     = "item"
	entityReview   = "review"
)

// Stats holds row counts of the catalog tables
type Stats struct {
	Customers int64
	Items     int64
	Reviews   int64
}

// CatalogRepository handles customer, item and review persistence.
// Constraint violations from the store are returned as they are.
type CatalogRepository struct {
	db      *db.DB
	log     *zap.Logger
	metrics *metrics.StoreMetrics
}

// NewCatalogRepository creates a new catalog repository. m may be nil.
func NewCatalogRepository(database *db.DB, logger *zap.Logger, m *metrics.StoreMetrics) *CatalogRepository {
	return &CatalogRepository{
		db:      database,
		log:     logger,
		metrics: m,
	}
}

// CreateCustomer inserts a customer
func (r *CatalogRepository) CreateCustomer(ctx context.Context, customer *db.Customer) error {
	err := r.db.WithContext(ctx).Create(customer).Error
	r.metrics.Observe(entityCustomer, "create", err, nil)
	if err != nil {
		r.log.Error("Failed to create customer", zap.Error(err))
		return err
	}

	r.log.Info("Customer created", zap.Uint("id", customer.ID))
	return nil
}

// CreateItem inserts an item
func (r *CatalogRepository) CreateItem(ctx context.Context, item *db.Item) error {
	err := r.db.WithContext(ctx).Create(item).Error
	r.metrics.Observe(entityItem, "create", err, nil)
	if err != nil {
		r.log.Error("Failed to create item", zap.Error(err))
		return err
	}

	r.log.Info("Item created", zap.Uint("id", item.ID))
	return nil
}

// CreateReview inserts a review. Unsaved customer or item associations are
// inserted along with it; saved ones must still exist.
func (r *CatalogRepository) CreateReview(ctx context.Context, review *db.Review) error {
	err := db.CreateReview(r.db.WithContext(ctx), review)
	r.metrics.Observe(entityReview, "create", err, nil)
	if err != nil {
		r.log.Error("Failed to create review", zap.Error(err))
		return err
	}

	r.log.Info("Review created",
		zap.Uint("id", review.ID),
		zap.Uintp("customer_id", review.CustomerID),
		zap.Uintp("item_id", review.ItemID),
	)
	return nil
}

// GetCustomer retrieves a customer by ID
func (r *CatalogRepository) GetCustomer(ctx context.Context, id uint) (*db.Customer, error) {
	var customer db.Customer
	err := r.first(ctx, &customer, id, ErrCustomerNotFound)
	r.metrics.Observe(entityCustomer, "get", err, ErrCustomerNotFound)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetItem retrieves an item by ID
func (r *CatalogRepository) GetItem(ctx context.Context, id uint) (*db.Item, error) {
	var item db.Item
	err := r.first(ctx, &item, id, ErrItemNotFound)
	r.metrics.Observe(entityItem, "get", err, ErrItemNotFound)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetReview retrieves a review by ID with its customer and item loaded
func (r *CatalogRepository) GetReview(ctx context.Context, id uint) (*db.Review, error) {
	var review db.Review
	err := r.first(ctx, &review, id, ErrReviewNotFound, "Customer", "Item")
	r.metrics.Observe(entityReview, "get", err, ErrReviewNotFound)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *CatalogRepository) first(ctx context.Context, dest interface{}, id uint, notFound error, preload ...string) error {
	query := r.db.WithContext(ctx)
	for _, assoc := range preload {
		query = query.Preload(assoc)
	}

	err := query.First(dest, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		r.log.Error("Failed to get record", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ListCustomers returns all customers ordered by ID
func (r *CatalogRepository) ListCustomers(ctx context.Context) ([]db.Customer, error) {
	var customers []db.Customer
	err := r.db.WithContext(ctx).Order("id").Find(&customers).Error
	r.metrics.Observe(entityCustomer, "list", err, nil)
	if err != nil {
		r.log.Error("Failed to list customers", zap.Error(err))
		return nil, err
	}
	return customers, nil
}

// ListItems returns all items ordered by ID
func (r *CatalogRepository) ListItems(ctx context.Context) ([]db.Item, error) {
	var items []db.Item
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	r.metrics.Observe(entityItem, "list", err, nil)
	if err != nil {
		r.log.Error("Failed to list items", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// ListReviews returns all reviews ordered by ID with customers and items loaded
func (r *CatalogRepository) ListReviews(ctx context.Context) ([]db.Review, error) {
	var reviews []db.Review
	err := r.db.WithContext(ctx).Preload("Customer").Preload("Item").Order("id").Find(&reviews).Error
	r.metrics.Observe(entityReview, "list", err, nil)
	if err != nil {
		r.log.Error("Failed to list reviews", zap.Error(err))
		return nil, err
	}
	return reviews, nil
}

// ReviewsByCustomer returns the reviews authored by a customer, each with
// its item loaded
func (r *CatalogRepository) ReviewsByCustomer(ctx context.Context, customerID uint) ([]db.Review, error) {
	var reviews []db.Review
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&reviews).Error
	r.metrics.Observe(entityReview, "by_customer", err, nil)
	if err != nil {
		r.log.Error("Failed to list customer reviews", zap.Uint("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	return reviews, nil
}

// ReviewsByItem returns the reviews written about an item
func (r *CatalogRepository) ReviewsByItem(ctx context.Context, itemID uint) ([]db.Review, error) {
	var reviews []db.Review
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("id").
		Find(&reviews).Error
	r.metrics.Observe(entityReview, "by_item", err, nil)
	if err != nil {
		r.log.Error("Failed to list item reviews", zap.Uint("item_id", itemID), zap.Error(err))
		return nil, err
	}
	return reviews, nil
}

// CustomerPayload loads a customer and its reviews and serializes them
func (r *CatalogRepository) CustomerPayload(ctx context.Context, id uint) (db.CustomerPayload, error) {
	customer, err := r.GetCustomer(ctx, id)
	if err != nil {
		return db.CustomerPayload{}, err
	}

	reviews, err := r.ReviewsByCustomer(ctx, id)
	if err != nil {
		return db.CustomerPayload{}, err
	}

	return customer.Payload(reviews), nil
}

// ItemPayload loads an item and its reviews and serializes them
func (r *CatalogRepository) ItemPayload(ctx context.Context, id uint) (db.ItemPayload, error) {
	item, err := r.GetItem(ctx, id)
	if err != nil {
		return db.ItemPayload{}, err
	}

	reviews, err := r.ReviewsByItem(ctx, id)
	if err != nil {
		return db.ItemPayload{}, err
	}

	return item.Payload(reviews), nil
}

// ReviewPayload loads a review with its customer and item and serializes it
func (r *CatalogRepository) ReviewPayload(ctx context.Context, id uint) (db.ReviewPayload, error) {
	review, err := r.GetReview(ctx, id)
	if err != nil {
		return db.ReviewPayload{}, err
	}
	return review.Payload(), nil
}

// DeleteCustomer removes a customer. Reviews referencing it are left to the
// store's default foreign key action.
func (r *CatalogRepository) DeleteCustomer(ctx context.Context, id uint) error {
	err := r.delete(ctx, &db.Customer{}, id, ErrCustomerNotFound)
	r.metrics.Observe(entityCustomer, "delete", err, ErrCustomerNotFound)
	return err
}

// DeleteItem removes an item. Reviews referencing it are left to the store's
// default foreign key action.
func (r *CatalogRepository) DeleteItem(ctx context.Context, id uint) error {
	err := r.delete(ctx, &db.Item{}, id, ErrItemNotFound)
	r.metrics.Observe(entityItem, "delete", err, ErrItemNotFound)
	return err
}

// DeleteReview removes a review
func (r *CatalogRepository) DeleteReview(ctx context.Context, id uint) error {
	err := r.delete(ctx, &db.Review{}, id, ErrReviewNotFound)
	r.metrics.Observe(entityReview, "delete", err, ErrReviewNotFound)
	return err
}

func (r *CatalogRepository) delete(ctx context.Context, model interface{}, id uint, notFound error) error {
	result := r.db.WithContext(ctx).Delete(model, id)
	if result.Error != nil {
		r.log.Error("Failed to delete record", zap.Uint("id", id), zap.Error(result.Error))
		return result.Error
	}

	if result.RowsAffected == 0 {
		return notFound
	}

	r.log.Info("Record deleted", zap.String("table", tableName(model)), zap.Uint("id", id))
	return nil
}

func tableName(model interface{}) string {
	if t, ok := model.(interface{ TableName() string }); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", model)
}

// Stats returns row counts of the catalog tables
func (r *CatalogRepository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := r.db.WithContext(ctx).Model(&db.Customer{}).Count(&stats.Customers).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count customers: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&db.Item{}).Count(&stats.Items).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count items: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&db.Review{}).Count(&stats.Reviews).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count reviews: %w", err)
	}
	return stats, nil
}

// Snapshot is the serialized content of the whole catalog
type Snapshot struct {
	Customers []db.CustomerPayload `json:"customers"`
	Items     []db.ItemPayload     `json:"items"`
	Reviews   []db.ReviewPayload   `json:"reviews"`
}

// Snapshot serializes every customer, item and review
func (r *CatalogRepository) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		Customers: []db.CustomerPayload{},
		Items:     []db.ItemPayload{},
		Reviews:   []db.ReviewPayload{},
	}

	customers, err := r.ListCustomers(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for i := range customers {
		reviews, err := r.ReviewsByCustomer(ctx, customers[i].ID)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Customers = append(snap.Customers, customers[i].Payload(reviews))
	}

	items, err := r.ListItems(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for i := range items {
		reviews, err := r.ReviewsByItem(ctx, items[i].ID)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Items = append(snap.Items, items[i].Payload(reviews))
	}

	reviews, err := r.ListReviews(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for i := range reviews {
		snap.Reviews = append(snap.Reviews, reviews[i].Payload())
	}

	return snap, nil
}
