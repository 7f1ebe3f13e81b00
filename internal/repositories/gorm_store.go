package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"watchshop/internal/models"
)

// GORMStore is a GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new instance of GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db: db,
	}
}

// Repos returns repositories bound to ctx outside of any transaction.
func (s *GORMStore) Repos(ctx context.Context) Repositories {
	return gormRepositories(s.db.WithContext(ctx), false)
}

// Atomic runs fn inside a database transaction. Row reads inside fn use SELECT ... FOR UPDATE
// so a concurrent unit of work touching the same watch or order waits for this one to finish.
func (s *GORMStore) Atomic(ctx context.Context, fn func(repos Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormRepositories(tx, true))
	})
}

func gormRepositories(db *gorm.DB, forUpdate bool) Repositories {
	return Repositories{
		Watches:       &GORMWatchRepository{db: db, forUpdate: forUpdate},
		Components:    &GORMComponentRepository{db: db, forUpdate: forUpdate},
		CustomWatches: &GORMCustomWatchRepository{db: db},
		Orders:        &GORMOrderRepository{db: db, forUpdate: forUpdate},
		Inventory:     &GORMInventoryRepository{db: db},
	}
}

// locking adds a row lock to reads made inside a transaction. SQLite ignores the clause.
func locking(db *gorm.DB, forUpdate bool) *gorm.DB {
	if forUpdate {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s with ID %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s by ID %s: %w", what, id, err)
}

// sortOrderItems restores submission order, which preloads do not guarantee.
func sortOrderItems(order *models.Order) {
	sort.SliceStable(order.Items, func(i, j int) bool { return order.Items[i].Position < order.Items[j].Position })
	for i := range order.Items {
		if cw := order.Items[i].CustomWatch; cw != nil {
			sortCustomWatchComponents(cw)
		}
	}
}

func sortCustomWatchComponents(cw *models.CustomWatch) {
	sort.SliceStable(cw.Components, func(i, j int) bool { return cw.Components[i].Position < cw.Components[j].Position })
}
