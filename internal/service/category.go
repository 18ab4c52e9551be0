package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/enat-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryExists       = errors.New("category already exists")
)

// CategoryStore defines the DB methods the category service needs.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
	CreateCategory(ctx context.Context, name string) (database.Category, error)
	GetCategoryByName(ctx context.Context, name string) (database.Category, error)
	RenameCategory(ctx context.Context, arg database.RenameCategoryParams) (database.Category, error)
	DeleteCategoryByName(ctx context.Context, name string) (uuid.UUID, error)
	RelabelMenuItemsCategory(ctx context.Context, arg database.RelabelMenuItemsCategoryParams) (int64, error)
}

// NewCategoryStore creates a CategoryStore from a DBTX (pool or tx).
type NewCategoryStore func(db database.DBTX) CategoryStore

// CategoryService manages the category label set and keeps menu items
// consistent with it.
type CategoryService struct {
	pool     DB
	newStore NewCategoryStore
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(pool DB, newStore NewCategoryStore) *CategoryService {
	return &CategoryService{pool: pool, newStore: newStore}
}

// List returns all categories in display order.
func (s *CategoryService) List(ctx context.Context) ([]database.Category, error) {
	return s.newStore(s.pool).ListCategories(ctx)
}

// Add creates a category. Names are compared case-insensitively; adding an
// existing name returns ErrCategoryExists.
func (s *CategoryService) Add(ctx context.Context, name string) (*database.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category, err := s.newStore(s.pool).CreateCategory(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// ON CONFLICT DO NOTHING returned no row.
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

// RenameResult reports the outcome of a rename cascade.
type RenameResult struct {
	Category     database.Category
	ItemsUpdated int64
}

// Rename changes a category's name and relabels every menu item that carried
// the old name, in one transaction. No item is ever left pointing at a name
// that no longer exists.
func (s *CategoryService) Rename(ctx context.Context, oldName, newName string) (*RenameResult, error) {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return nil, ErrCategoryNameRequired
	}
	if oldName == newName {
		category, err := s.newStore(s.pool).GetCategoryByName(ctx, oldName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("get category: %w", err)
		}
		return &RenameResult{Category: category}, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetCategoryByName(ctx, newName); err == nil {
		return nil, ErrCategoryExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get category: %w", err)
	}

	category, err := store.RenameCategory(ctx, database.RenameCategoryParams{
		OldName: oldName,
		NewName: newName,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("rename category: %w", err)
	}

	updated, err := store.RelabelMenuItemsCategory(ctx, database.RelabelMenuItemsCategoryParams{
		OldCategory: oldName,
		NewCategory: newName,
	})
	if err != nil {
		return nil, fmt.Errorf("relabel menu items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &RenameResult{Category: category, ItemsUpdated: updated}, nil
}

// Remove deletes a category label. Menu items keep their category string;
// they surface under a synthetic group until reassigned.
func (s *CategoryService) Remove(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrCategoryNameRequired
	}

	if _, err := s.newStore(s.pool).DeleteCategoryByName(ctx, name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
