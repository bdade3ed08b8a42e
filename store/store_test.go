// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/sitetime/models"
	"github.com/danielhkuo/sitetime/store"
	"github.com/danielhkuo/sitetime/testutil"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(testutil.SetupTestDB(t))
}

func strPtr(s string) *string { return &s }

func sampleRecord(id, worker, project string) *models.NewRecord {
	return &models.NewRecord{
		ID:          id,
		Worker:      worker,
		Project:     project,
		Date:        "2024-05-01",
		StartTime:   "07:00",
		BreakStart:  "12:00",
		BreakEnd:    "12:30",
		EndTime:     "15:30",
		Hours:       8,
		Description: strPtr("framing"),
	}
}

func TestWorkers_AddListRemove(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ok, err := s.AddWorker(ctx, "Alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AddWorker(ctx, "Alice")
	require.NoError(t, err)
	assert.False(t, ok, "duplicate add must be rejected")

	ok, err = s.AddWorker(ctx, "Bob")
	require.NoError(t, err)
	assert.True(t, ok)

	workers, err := s.ListWorkers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, workers)

	exists, err := s.WorkerExists(ctx, "Alice")
	require.NoError(t, err)
	assert.True(t, exists)

	ok, err = s.RemoveWorker(ctx, "Alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RemoveWorker(ctx, "Alice")
	require.NoError(t, err)
	assert.False(t, ok)

	workers, err = s.ListWorkers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, workers)
}

func TestWorkers_EmptyListIsNotNil(t *testing.T) {
	s := newStore(t)

	workers, err := s.ListWorkers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, workers)
	assert.Empty(t, workers)
}

func TestProjects_RemoveMissingLeavesListUnchanged(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.AddProject(ctx, "Site1")
	require.NoError(t, err)

	ok, err := s.RemoveProject(ctx, "Nowhere")
	require.NoError(t, err)
	assert.False(t, ok)

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Site1"}, projects)
}

func TestAddWorker_ConcurrentDuplicates(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	results := make([]bool, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.AddWorker(ctx, "Alice")
		}(i)
	}
	wg.Wait()

	added := 0
	for i := range n {
		require.NoError(t, errs[i])
		if results[i] {
			added++
		}
	}
	assert.Equal(t, 1, added)

	workers, err := s.ListWorkers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, workers)
}

func TestAddRecord(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, err := s.AddWorker(ctx, "Alice")
	require.NoError(t, err)
	_, err = s.AddProject(ctx, "Site1")
	require.NoError(t, err)

	tests := []struct {
		name string
		rec  *models.NewRecord
		want bool
	}{
		{"valid", sampleRecord("r1", "Alice", "Site1"), true},
		{"unknown worker", sampleRecord("r2", "Bob", "Site1"), false},
		{"unknown project", sampleRecord("r3", "Alice", "Site9"), false},
		{"duplicate id", sampleRecord("r1", "Alice", "Site1"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := s.AddRecord(ctx, tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	records, err := s.ListRecords(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "Alice", records[0].Worker)
	assert.Equal(t, "Site1", records[0].Project)
	assert.Equal(t, 8.0, records[0].Hours)
	require.NotNil(t, records[0].Description)
	assert.Equal(t, "framing", *records[0].Description)
	assert.False(t, records[0].Synced)
}

func TestAddRecord_GeneratesID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, _ = s.AddWorker(ctx, "Alice")
	_, _ = s.AddProject(ctx, "Site1")

	rec := sampleRecord("", "Alice", "Site1")
	rec.Description = nil
	ok, err := s.AddRecord(ctx, rec)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, rec.ID)

	records, err := s.ListRecords(ctx, "Site1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Nil(t, records[0].Description)
}

func TestListRecords_ScopedByProject(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, _ = s.AddWorker(ctx, "Alice")
	_, _ = s.AddProject(ctx, "Site1")
	_, _ = s.AddProject(ctx, "Site2")

	for _, rec := range []*models.NewRecord{
		sampleRecord("a", "Alice", "Site1"),
		sampleRecord("b", "Alice", "Site2"),
		sampleRecord("c", "Alice", "Site1"),
	} {
		ok, err := s.AddRecord(ctx, rec)
		require.NoError(t, err)
		require.True(t, ok)
	}

	site1, err := s.ListRecords(ctx, "Site1")
	require.NoError(t, err)
	assert.Len(t, site1, 2)

	all, err := s.ListRecords(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.ListRecords(ctx, "Nowhere")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListRecords_OrphanedAfterWorkerRemoval(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, _ = s.AddWorker(ctx, "Alice")
	_, _ = s.AddProject(ctx, "Site1")
	_, err := s.AddRecord(ctx, sampleRecord("r1", "Alice", "Site1"))
	require.NoError(t, err)

	ok, err := s.RemoveWorker(ctx, "Alice")
	require.NoError(t, err)
	require.True(t, ok)

	records, err := s.ListRecords(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Worker)
	assert.Equal(t, "Site1", records[0].Project)
}

func TestRemoveRecord(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, _ = s.AddWorker(ctx, "Alice")
	_, _ = s.AddProject(ctx, "Site1")
	_, _ = s.AddRecord(ctx, sampleRecord("r1", "Alice", "Site1"))

	ok, err := s.RemoveRecord(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RemoveRecord(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkRecordSynced_Idempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, _ = s.AddWorker(ctx, "Alice")
	_, _ = s.AddProject(ctx, "Site1")
	_, _ = s.AddRecord(ctx, sampleRecord("r1", "Alice", "Site1"))
	_, _ = s.AddRecord(ctx, sampleRecord("r2", "Alice", "Site1"))

	unsynced, err := s.ListUnsyncedRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 2)

	for range 2 {
		ok, err := s.MarkRecordSynced(ctx, "r1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := s.MarkRecordSynced(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	unsynced, err = s.ListUnsyncedRecords(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, "r2", unsynced[0].ID)
}

func TestPhotos(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, _ = s.AddProject(ctx, "Site1")

	ok, err := s.AddPhoto(ctx, "Site1", "Site1/a_photo.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AddPhoto(ctx, "Site1", "Site1/a_photo.png")
	require.NoError(t, err)
	assert.False(t, ok, "duplicate path")

	ok, err = s.AddPhoto(ctx, "Nowhere", "Nowhere/b.png")
	require.NoError(t, err)
	assert.False(t, ok, "unknown project")

	photos, err := s.ListPhotos(ctx, "Site1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Site1/a_photo.png"}, photos)

	photos, err = s.ListPhotos(ctx, "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestAPIKeys(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ok, err := s.VerifyAPIKey(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.AddAPIKey(ctx, "k1", "tablet")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AddAPIKey(ctx, "k1", "again")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.VerifyAPIKey(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.VerifyAPIKey(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := s.ListAPIKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.APIKey{{Key: "k1", Description: "tablet"}}, keys)

	ok, err = s.RemoveAPIKey(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RemoveAPIKey(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}
