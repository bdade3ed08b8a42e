// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/danielhkuo/sitetime/db"
)

// Store is the persistence layer. Every mutation runs in its own
// transaction; reads return independent snapshots.
//
// Add and Remove operations report domain rejections (duplicate, missing
// reference, not found) as false with a nil error. A non-nil error always
// means the storage itself failed.
type Store struct {
	db *gorm.DB
}

// New wraps an open connection. The schema must already be migrated.
func New(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err came from a unique or primary key
// constraint, whichever driver raised it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

func (s *Store) listNames(ctx context.Context, model any) ([]string, error) {
	names := []string{}
	if err := s.db.WithContext(ctx).Model(model).Order("id").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list %T: %w", model, err)
	}
	return names, nil
}

func (s *Store) nameExists(ctx context.Context, model any, name string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up %T %q: %w", model, name, err)
	}
	return count > 0, nil
}

// addNamed inserts row unless a row with the same name exists. The pre-check
// only produces the common rejection early; the unique index decides races.
func (s *Store) addNamed(ctx context.Context, model any, name string, row any) (bool, error) {
	added := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(model).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				return nil
			}
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to add %q: %w", name, err)
	}
	return added, nil
}

func (s *Store) removeNamed(ctx context.Context, model any, name string) (bool, error) {
	removed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("name = ?", name).Delete(model)
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove %q: %w", name, err)
	}
	return removed, nil
}

// ListWorkers returns worker names in creation order.
func (s *Store) ListWorkers(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, &db.Worker{})
}

// WorkerExists reports whether a worker with that exact name is registered.
func (s *Store) WorkerExists(ctx context.Context, name string) (bool, error) {
	return s.nameExists(ctx, &db.Worker{}, name)
}

// AddWorker returns false if the name is already taken.
func (s *Store) AddWorker(ctx context.Context, name string) (bool, error) {
	return s.addNamed(ctx, &db.Worker{}, name, &db.Worker{Name: name})
}

// RemoveWorker returns false if no worker has that name. Records that
// reference the worker are left in place.
func (s *Store) RemoveWorker(ctx context.Context, name string) (bool, error) {
	return s.removeNamed(ctx, &db.Worker{}, name)
}

// ListProjects returns project names in creation order.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, &db.Project{})
}

func (s *Store) ProjectExists(ctx context.Context, name string) (bool, error) {
	return s.nameExists(ctx, &db.Project{}, name)
}

// AddProject returns false if the name is already taken.
func (s *Store) AddProject(ctx context.Context, name string) (bool, error) {
	return s.addNamed(ctx, &db.Project{}, name, &db.Project{Name: name})
}

// RemoveProject returns false if no project has that name. Records and
// photo rows that reference the project are left in place.
func (s *Store) RemoveProject(ctx context.Context, name string) (bool, error) {
	return s.removeNamed(ctx, &db.Project{}, name)
}
