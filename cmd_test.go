// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGlobals(t *testing.T) (*Globals, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "cli-test-secret-0123456789")
	t.Setenv("DATABASE_URL", filepath.Join(dir, "records.db"))
	t.Setenv("UPLOAD_FOLDER", filepath.Join(dir, "uploads"))
	t.Setenv("LOG_LEVEL", "disabled")

	var out bytes.Buffer
	return &Globals{ctx: context.Background(), out: &out}, &out
}

func TestAPIKeyCommands(t *testing.T) {
	g, out := testGlobals(t)

	require.NoError(t, (&APIKeyAddCmd{Key: "office-tool", Description: "office sync"}).Run(g))
	assert.Error(t, (&APIKeyAddCmd{Key: "office-tool"}).Run(g))

	out.Reset()
	require.NoError(t, (&APIKeyListCmd{}).Run(g))
	assert.Contains(t, out.String(), "office-tool\toffice sync")

	require.NoError(t, (&APIKeyRemoveCmd{Key: "office-tool"}).Run(g))
	assert.Error(t, (&APIKeyRemoveCmd{Key: "office-tool"}).Run(g))
}

func TestSyncCommands(t *testing.T) {
	g, out := testGlobals(t)

	require.NoError(t, (&SyncRecordsCmd{}).Run(g))
	assert.JSONEq(t, "[]", out.String())

	assert.Error(t, (&SyncMarkCmd{ID: "missing"}).Run(g))
	assert.ErrorContains(t, (&SyncPhotosCmd{}).Run(g), "sync.endpoint")
}

func TestVersionCommand(t *testing.T) {
	g, out := testGlobals(t)
	require.NoError(t, (&VersionCmd{}).Run(g))
	assert.Equal(t, version+"\n", out.String())
}
