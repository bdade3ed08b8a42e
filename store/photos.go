// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/danielhkuo/sitetime/db"
	"github.com/danielhkuo/sitetime/models"
)

// ListPhotos returns the relative paths stored for a project, oldest first.
// An unknown project yields an empty list.
func (s *Store) ListPhotos(ctx context.Context, project string) ([]string, error) {
	urls := []string{}
	err := s.db.WithContext(ctx).
		Model(&db.Photo{}).
		Joins("JOIN projects ON projects.id = photos.project_id").
		Where("projects.name = ?", project).
		Order("photos.id").
		Pluck("photos.url", &urls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for %q: %w", project, err)
	}
	return urls, nil
}

// AddPhoto records a stored file against a project. It returns false when
// the project does not exist or the path is already recorded.
func (s *Store) AddPhoto(ctx context.Context, project, url string) (bool, error) {
	added := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p db.Project
		if err := tx.Where("name = ?", project).Take(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Omit("Project").Create(&db.Photo{URL: url, ProjectID: p.ID}).Error; err != nil {
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
		return false, fmt.Errorf("failed to add photo %q: %w", url, err)
	}
	return added, nil
}

// ListAPIKeys returns every stored key.
func (s *Store) ListAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	var rows []db.APIKey
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	keys := make([]models.APIKey, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, models.APIKey{Key: r.Key, Description: r.Description})
	}
	return keys, nil
}

// AddAPIKey returns false if the key already exists.
func (s *Store) AddAPIKey(ctx context.Context, key, description string) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&db.APIKey{Key: key, Description: description}).Error
	})
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to add api key: %w", err)
	}
	return true, nil
}

// RemoveAPIKey returns false if the key does not exist.
func (s *Store) RemoveAPIKey(ctx context.Context, key string) (bool, error) {
	removed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("key = ?", key).Delete(&db.APIKey{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove api key: %w", err)
	}
	return removed, nil
}

// VerifyAPIKey reports whether key matches a stored key exactly.
func (s *Store) VerifyAPIKey(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.APIKey{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to verify api key: %w", err)
	}
	return count > 0, nil
}
