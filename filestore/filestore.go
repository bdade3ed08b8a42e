// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PendingDir holds copies of uploads waiting to be forwarded.
const PendingDir = ".pending"

var (
	ErrNotFound       = errors.New("file not found")
	ErrInvalidProject = errors.New("invalid project folder name")
	ErrNotAllowed     = errors.New("file type not allowed")
)

// Store keeps uploaded photos under one directory, one folder per project.
// All access goes through an os.Root so no path can leave that directory.
type Store struct {
	dir     string
	root    *os.Root
	allowed map[string]struct{}
	queue   bool
}

// Open creates dir if needed. Extensions are compared case-insensitively
// without the dot. When queue is set every saved file is also copied into
// PendingDir.
func Open(dir string, extensions []string, queue bool) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open uploads dir: %w", err)
	}

	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Store{dir: dir, root: root, allowed: allowed, queue: queue}, nil
}

func (s *Store) Close() error {
	return s.root.Close()
}

// Dir returns the uploads directory.
func (s *Store) Dir() string {
	return s.dir
}

// Queueing reports whether uploads are copied to the pending queue.
func (s *Store) Queueing() bool {
	return s.queue
}

// Allowed reports whether filename has an allowed extension.
func (s *Store) Allowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return false
	}
	_, ok := s.allowed[ext]
	return ok
}

// ValidProject reports whether name can be used as a single folder name.
func ValidProject(name string) bool {
	if name == "" || name != strings.TrimSpace(name) {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\:`) {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return filepath.IsLocal(name)
}

// Save writes r to <project>/<uuid hex>_<original base name> and returns
// the relative path and the number of bytes written.
func (s *Store) Save(project, original string, r io.Reader) (string, int64, error) {
	if !ValidProject(project) {
		return "", 0, ErrInvalidProject
	}
	if !s.Allowed(original) {
		return "", 0, ErrNotAllowed
	}

	name := GenerateName(original)
	rel := path.Join(project, name)

	if err := s.root.MkdirAll(project, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create project folder: %w", err)
	}
	n, err := s.write(rel, r)
	if err != nil {
		return "", 0, err
	}

	if s.queue {
		if err := s.enqueue(project, name, rel); err != nil {
			_ = s.root.Remove(rel)
			return "", 0, err
		}
	}
	return rel, n, nil
}

func (s *Store) write(rel string, r io.Reader) (int64, error) {
	f, err := s.root.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", rel, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.root.Remove(rel)
		return 0, fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return n, nil
}

func (s *Store) enqueue(project, name, rel string) error {
	dir := path.Join(PendingDir, project)
	if err := s.root.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create pending folder: %w", err)
	}
	src, err := s.root.Open(rel)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = s.write(path.Join(dir, name), src)
	return err
}

// Open returns a stored photo by relative path. Paths outside project
// folders, directories and the pending queue all report ErrNotFound.
func (s *Store) Open(rel string) (*os.File, fs.FileInfo, error) {
	clean, ok := cleanRel(rel)
	if !ok || clean == PendingDir || strings.HasPrefix(clean, PendingDir+"/") {
		return nil, nil, ErrNotFound
	}

	// also fails for symlinks that escape the root
	f, err := s.root.Open(clean)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}

func cleanRel(rel string) (string, bool) {
	rel = strings.ReplaceAll(rel, `\`, "/")
	if rel == "" || strings.HasPrefix(rel, "/") {
		return "", false
	}
	clean := path.Clean(rel)
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", false
	}
	return clean, true
}

// GenerateName returns "<32 hex chars>_<sanitized base name>".
func GenerateName(original string) string {
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + SanitizeName(original)
}

// SanitizeName reduces a client supplied file name to a safe base name made
// of ASCII letters, digits, dot, dash and underscore.
func SanitizeName(original string) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), "._")
	if name == "" || !strings.Contains(name, ".") {
		return "photo" + strings.ToLower(path.Ext(base))
	}
	return name
}

// Remove deletes a stored photo and its pending copy, if any.
func (s *Store) Remove(rel string) error {
	clean, ok := cleanRel(rel)
	if !ok {
		return ErrNotFound
	}
	if err := s.root.Remove(path.Join(PendingDir, clean)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove pending copy of %s: %w", clean, err)
	}
	if err := s.root.Remove(clean); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove %s: %w", clean, err)
	}
	return nil
}
