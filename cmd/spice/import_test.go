package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineImporter reads one record ID per line; a file starting with "bad" fails.
type lineImporter struct{}

func (lineImporter) ParseFile(_ context.Context, r io.Reader) ([]model.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(string(data), "bad") {
		return nil, errors.New("not an OFX document")
	}
	var records []model.Transaction
	for _, id := range strings.Fields(string(data)) {
		records = append(records, model.Transaction{ID: id, Description: "Payee " + id})
	}
	return records, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.qfx", "")
	b := writeFile(t, dir, "b.qfx", "")
	plain := writeFile(t, dir, "statement.ofx", "")

	files, err := expandFiles([]string{filepath.Join(dir, "*.qfx"), plain, filepath.Join(dir, "missing.ofx")})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, plain}, files)
}

func TestExpandFiles_NothingFound(t *testing.T) {
	_, err := expandFiles([]string{filepath.Join(t.TempDir(), "*.qfx")})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestParseStatements(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "jan.qfx", "t1 t2"),
		writeFile(t, dir, "broken.qfx", "bad data"),
		writeFile(t, dir, "feb.qfx", "t2 t3"),
	}

	progress := 0
	records, skipped := parseStatements(context.Background(), lineImporter{}, files, func() { progress++ })

	assert.Equal(t, 1, skipped)
	assert.Equal(t, 3, progress)
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids)
}

func TestParseStatements_Cancelled(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeFile(t, dir, "jan.qfx", "t1")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records, skipped := parseStatements(ctx, lineImporter{}, files, func() {})
	assert.Empty(t, records)
	assert.Zero(t, skipped)
}
