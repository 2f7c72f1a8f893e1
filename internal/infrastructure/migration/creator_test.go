package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add contacts table", "contacts linked to accounts")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14, "version is a sortable timestamp")
	assert.Equal(t, "Add contacts table", mf.Name)
	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_contacts_table.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_contacts_table.down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: Add contacts table")
	assert.Contains(t, string(up), "contacts linked to accounts")
	assert.Contains(t, string(up), "BEGIN;")
	assert.Contains(t, string(up), "COMMIT;")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
	assert.Contains(t, string(down), "Rollback for contacts linked to accounts")
}

func TestCreateMigrationMakesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(dir, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Add contacts table", "add_contacts_table"},
		{"add-invoice-payments", "add_invoice_payments"},
		{"Quote  PDF   export", "quote_pdf_export"},
		{"trailing space ", "trailing_space"},
		{"Ledger (v2)!", "ledger_v2"},
		{"UPPER_case_MIX", "upper_case_mix"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.name))
		})
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{
		"20260101000000_init_schema.up.sql",
		"20260101000000_init_schema.down.sql",
		"20260201000000_add_contacts.up.sql",
		"20260201000000_add_contacts.down.sql",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0755))

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20260101000000_init_schema",
		"20260201000000_add_contacts",
	}, names)
}

func TestListMigrationsMissingDirectory(t *testing.T) {
	names, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, names)
}
