// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
)

// PendingFile is one queued upload awaiting forwarding.
type PendingFile struct {
	Project string
	Name    string
}

func (p PendingFile) path() string {
	return path.Join(PendingDir, p.Project, p.Name)
}

// Pending lists queued files ordered by project then name.
func (s *Store) Pending() ([]PendingFile, error) {
	fsys := s.root.FS()
	projects, err := fs.ReadDir(fsys, PendingDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending queue: %w", err)
	}

	var out []PendingFile
	for _, p := range projects {
		if !p.IsDir() {
			continue
		}
		entries, err := fs.ReadDir(fsys, path.Join(PendingDir, p.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read pending folder %s: %w", p.Name(), err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				out = append(out, PendingFile{Project: p.Name(), Name: e.Name()})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Project != out[j].Project {
			return out[i].Project < out[j].Project
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// OpenPending opens a queued file for reading.
func (s *Store) OpenPending(p PendingFile) (io.ReadCloser, error) {
	f, err := s.root.Open(p.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// RemovePending deletes a queued file after it has been delivered.
func (s *Store) RemovePending(p PendingFile) error {
	if err := s.root.Remove(p.path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove pending %s: %w", p.path(), err)
	}
	return nil
}
