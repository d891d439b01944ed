package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, db, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", "", "--sqlite", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedAndAudit(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ctl.db")

	out, err := run(t, db, "", "seed", "--admin-password", "secret1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1984 by George Orwell")
	assert.Contains(t, out, "admin account created")

	// 第二次不会重复写入
	out, err = run(t, db, "", "seed")
	require.NoError(t, err, out)
	assert.Contains(t, out, "already has 10 books")

	out, err = run(t, db, "", "stock-audit")
	require.NoError(t, err, out)
	assert.Contains(t, out, "stock audit ok")

	out, err = run(t, db, "", "report", "--days", "3")
	require.NoError(t, err, out)
	assert.Contains(t, out, "books: 10")
	assert.Contains(t, out, "revenue: 0.00")
}

func TestCreateAdminAndPromote(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ctl.db")

	out, err := run(t, db, "secret1\n", "create-admin", "ops")
	require.NoError(t, err, out)
	assert.Contains(t, out, "admin ops created")

	_, err = run(t, db, "", "promote", "nobody")
	assert.Error(t, err)

	out, err = run(t, db, "short\n", "create-admin", "weak")
	assert.Error(t, err, out)
}
