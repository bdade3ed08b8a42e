// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielhkuo/sitetime/db"
	"github.com/danielhkuo/sitetime/models"
)

// AddRecord inserts a time entry. It returns false when the worker or the
// project does not exist, or when the id is already used. An empty id is
// replaced with a generated one and written back to rec.
func (s *Store) AddRecord(ctx context.Context, rec *models.NewRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	added := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var worker db.Worker
		if err := tx.Where("name = ?", rec.Worker).Take(&worker).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		var project db.Project
		if err := tx.Where("name = ?", rec.Project).Take(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		row := db.Record{
			ID:          rec.ID,
			Date:        rec.Date,
			WorkerID:    worker.ID,
			ProjectID:   project.ID,
			StartTime:   rec.StartTime,
			BreakStart:  rec.BreakStart,
			BreakEnd:    rec.BreakEnd,
			EndTime:     rec.EndTime,
			Hours:       rec.Hours,
			Description: rec.Description,
			Synced:      rec.Synced,
		}
		// Omit associations so gorm does not upsert the referenced rows.
		if err := tx.Omit("Worker", "Project").Create(&row).Error; err != nil {
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
		return false, fmt.Errorf("failed to add record %s: %w", rec.ID, err)
	}
	return added, nil
}

// RemoveRecord returns false if no record has that id.
func (s *Store) RemoveRecord(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&db.Record{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove record %s: %w", id, err)
	}
	return removed, nil
}

// ListRecords returns records for one project, or for every project when
// project is empty. An unknown project yields an empty list.
func (s *Store) ListRecords(ctx context.Context, project string) ([]models.Record, error) {
	q := s.db.WithContext(ctx).Model(&db.Record{})
	if project != "" {
		var p db.Project
		err := s.db.WithContext(ctx).Where("name = ?", project).Take(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Record{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up project %q: %w", project, err)
		}
		q = q.Where("project_id = ?", p.ID)
	}
	return s.findRecords(q)
}

// ListUnsyncedRecords returns every record whose synced flag is false.
func (s *Store) ListUnsyncedRecords(ctx context.Context) ([]models.Record, error) {
	return s.findRecords(s.db.WithContext(ctx).Model(&db.Record{}).Where("synced = ?", false))
}

// MarkRecordSynced sets the synced flag. It returns true whenever the
// record exists, including when it was already synced.
func (s *Store) MarkRecordSynced(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Record{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		found = true
		return tx.Model(&db.Record{}).Where("id = ?", id).Update("synced", true).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to mark record %s synced: %w", id, err)
	}
	return found, nil
}

// findRecords resolves worker and project ids to names. Records whose worker
// or project was removed render with an empty name.
func (s *Store) findRecords(q *gorm.DB) ([]models.Record, error) {
	var rows []db.Record
	if err := q.Preload("Worker").Preload("Project").Order("created_at").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	out := make([]models.Record, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		out = append(out, models.Record{
			ID:          r.ID,
			Date:        r.Date,
			Worker:      r.Worker.Name,
			Project:     r.Project.Name,
			StartTime:   r.StartTime,
			BreakStart:  r.BreakStart,
			BreakEnd:    r.BreakEnd,
			EndTime:     r.EndTime,
			Hours:       r.Hours,
			Description: r.Description,
			Synced:      r.Synced,
		})
	}
	return out, nil
}
