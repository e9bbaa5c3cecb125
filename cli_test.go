package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zachkp/portfolio/internal/catalog"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/db"
)

// runCLI runs the app with args and returns stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newCLIApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"portfolio"}, args...))
	return out.String(), err
}

func TestCLI_HashPassword(t *testing.T) {
	out, err := runCLI(t, "", "hash-password", "--cost", "4", "hunter2")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))

	out, err = runCLI(t, "from-stdin\n", "hash-password", "--cost", "4")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("from-stdin")))

	_, err = runCLI(t, "", "hash-password")
	assert.ErrorContains(t, err, "password is required")
}

func TestCLI_Catalog(t *testing.T) {
	clearConfigEnv(t)
	sheet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, testSheet)
	}))
	defer sheet.Close()
	t.Setenv("SHEET_URL", sheet.URL)

	out, err := runCLI(t, "", "catalog")
	require.NoError(t, err)
	var projects []catalog.Project
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	require.Len(t, projects, 2)
	assert.Equal(t, "p2", projects[0].ID)

	out, err = runCLI(t, "", "catalog", "--featured", "--format", "table")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "p1"))

	out, err = runCLI(t, "", "catalog", "--category", "ai-ml", "--url", sheet.URL+"/other")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	require.Len(t, projects, 1)

	_, err = runCLI(t, "", "catalog", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestCLI_CatalogFallsBack(t *testing.T) {
	clearConfigEnv(t)
	sheet := httptest.NewServer(http.NotFoundHandler())
	defer sheet.Close()
	t.Setenv("SHEET_URL", sheet.URL)

	out, err := runCLI(t, "", "catalog")
	require.NoError(t, err)
	var projects []catalog.Project
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	assert.Len(t, projects, len(catalog.Fallback()))
}

func TestCLI_Messages(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("DB_PATH", path)

	conn, err := db.Init(path)
	require.NoError(t, err)
	svc := contact.NewService(contact.NewRepository(conn), contact.WithLogger(quietLogger()))
	_, err = svc.Submit(context.Background(), contact.Submission{Name: "Ada", Email: "ada@example.com", Message: "Hi"})
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	out, err := runCLI(t, "", "messages", "--unread")
	require.NoError(t, err)
	var messages []contact.Message
	require.NoError(t, json.Unmarshal([]byte(out), &messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "Ada", messages[0].Name)
	assert.Equal(t, contact.StatusNew, messages[0].Status)
}

func TestCLI_InvalidConfig(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LOG_LEVEL", "loud")
	_, err := runCLI(t, "", "messages")
	assert.ErrorContains(t, err, "invalid config")
}
