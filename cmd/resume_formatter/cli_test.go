package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/resume-formatter/internal/auth"
	"github.com/jonathan/resume-formatter/internal/rendering"
	"github.com/jonathan/resume-formatter/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend is a minimal resume processing API.
type backend struct {
	mu      sync.Mutex
	token   string
	history []types.HistoryEntry
	deletes []string
	auth    []string
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds types.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]string{"detail": "Incorrect username or password"})
			return
		}
		writeJSON(w, types.LoginResponse{AccessToken: b.token, TokenType: "bearer"})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, types.RegisterResponse{Message: "User created"})
	})
	mux.HandleFunc("POST /resume/upload", func(w http.ResponseWriter, r *http.Request) {
		b.seen(r)
		writeJSON(w, types.UploadResponse{TaskID: "task-1"})
	})
	mux.HandleFunc("GET /resume/progress/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.seen(r)
		writeJSON(w, types.ProgressResponse{
			Stage:    types.StageCompletion,
			Progress: 100,
			Status:   types.TaskCompleted,
			Data:     json.RawMessage(`{"name":"Jane Doe","summary":"Engineer"}`),
		})
	})
	mux.HandleFunc("GET /resume/history", func(w http.ResponseWriter, r *http.Request) {
		b.seen(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, b.history)
	})
	mux.HandleFunc("GET /resume/history/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.seen(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, e := range b.history {
			if e.ID == r.PathValue("id") {
				e.ResumeData = &types.ResumeRecord{Name: types.Text("Jane Doe"), Summary: "Engineer"}
				writeJSON(w, e)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"detail": "Resume not found"})
	})
	mux.HandleFunc("DELETE /resume/history/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.seen(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.deletes = append(b.deletes, r.PathValue("id"))
		writeJSON(w, map[string]string{"message": "deleted"})
	})
	return mux
}

func (b *backend) seen(r *http.Request) {
	b.mu.Lock()
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	b.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type env struct {
	backend   *backend
	tokenPath string
	outDir    string
}

// newEnv points the CLI at a fake backend through the environment.
func newEnv(t *testing.T) *env {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "jane"}).SignedString([]byte("test"))
	require.NoError(t, err)

	b := &backend{token: token}
	api := httptest.NewServer(b.handler())
	t.Cleanup(api.Close)

	dir := t.TempDir()
	e := &env{
		backend:   b,
		tokenPath: filepath.Join(dir, "token"),
		outDir:    filepath.Join(dir, "out"),
	}
	require.NoError(t, os.Mkdir(e.outDir, 0o755))

	t.Setenv("RESUME_BACKEND_URL", api.URL)
	t.Setenv("RESUME_TOKEN_PATH", e.tokenPath)
	t.Setenv("RESUME_OUTPUT_DIR", e.outDir)
	t.Setenv("RESUME_POLL_INTERVAL", "1ms")
	t.Setenv("RESUME_LOG_FILE", "")
	return e
}

func (e *env) login(t *testing.T) {
	t.Helper()
	require.NoError(t, auth.NewStore(e.tokenPath).Save(e.backend.token))
}

// resetFlags restores every flag so consecutive executions start clean.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the root command in-process and returns combined output.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	current = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoginCommand_StoresToken(t *testing.T) {
	e := newEnv(t)

	out, err := runCLI(t, "secret\n", "login", "-u", "jane", "--password-stdin")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Logged in as jane")

	stored, err := auth.NewStore(e.tokenPath).Load()
	require.NoError(t, err)
	assert.Equal(t, e.backend.token, stored)

	out, err = runCLI(t, "", "whoami")
	require.NoError(t, err, out)
	assert.Contains(t, out, "jane")
}

func TestLoginCommand_Failures(t *testing.T) {
	tests := []struct {
		name        string
		stdin       string
		args        []string
		errorString string
	}{
		{
			name:        "Missing --username flag",
			args:        []string{"login", "-p", "secret"},
			errorString: "required",
		},
		{
			name:        "Missing password",
			args:        []string{"login", "-u", "jane"},
			errorString: "username and password are required",
		},
		{
			name:        "Wrong password",
			args:        []string{"login", "-u", "jane", "-p", "nope"},
			errorString: "Incorrect username or password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := runCLI(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
			assert.NoFileExists(t, e.tokenPath)
		})
	}
}

func TestRegisterCommand(t *testing.T) {
	newEnv(t)
	out, err := runCLI(t, "", "register", "-u", "jane", "-p", "secret")
	require.NoError(t, err, out)
	assert.Contains(t, out, "User created")
}

func TestLogoutCommand(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := runCLI(t, "", "logout")
	require.NoError(t, err, out)
	assert.NoFileExists(t, e.tokenPath)

	_, err = runCLI(t, "", "whoami")
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestUploadCommand_RequiresLogin(t *testing.T) {
	newEnv(t)
	path := writeResume(t, "cv.pdf")

	_, err := runCLI(t, "", "upload", path)
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestUploadCommand_WritesDocuments(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	path := writeResume(t, "cv.pdf")

	out, err := runCLI(t, "", "upload", "--quiet", "--formats", "html,docx", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Processing complete")

	html, err := os.ReadFile(filepath.Join(e.outDir, "Jane Doe.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Jane Doe")
	assert.FileExists(t, filepath.Join(e.outDir, "Jane Doe.docx"))
	assert.Contains(t, e.backend.auth, "Bearer "+e.backend.token)
}

func TestUploadCommand_NoRender(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	path := writeResume(t, "cv.docx")

	out, err := runCLI(t, "", "upload", "--quiet", "--no-render", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "PARSED RESUME: cv.docx")
	assert.Contains(t, out, "Jane Doe")

	entries, err := os.ReadDir(e.outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadCommand_Validation(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	_, err := runCLI(t, "", "upload", writeResume(t, "a.pdf"), writeResume(t, "b.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--batch")

	_, err = runCLI(t, "", "upload", writeResume(t, "notes.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = runCLI(t, "", "upload", "--formats", "odt", writeResume(t, "c.pdf"))
	assert.Error(t, err)

	assert.Empty(t, e.backend.auth, "nothing reaches the backend")
}

func TestHistoryCommands(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	for i, id := range []string{"a", "b", "c", "d", "e", "f"} {
		status := types.TaskCompleted
		if i == 5 {
			status = types.TaskProcessing
		}
		e.backend.history = append(e.backend.history, types.HistoryEntry{
			ID: id, Filename: id + ".pdf", OriginalFileType: "pdf", FileSize: 2048, Status: status,
		})
	}

	out, err := runCLI(t, "", "history", "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Page 1 of 2")
	assert.Contains(t, out, "2.0 KB")

	out, err = runCLI(t, "", "history", "list", "--page", "2")
	require.NoError(t, err, out)
	assert.Contains(t, out, "f.pdf")
	assert.Contains(t, out, "PROCESSING")

	_, err = runCLI(t, "", "history", "list", "--rows", "7")
	assert.Error(t, err)

	out, err = runCLI(t, "", "history", "show", "--json", "a")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"name": "Jane Doe"`)

	out, err = runCLI(t, "", "history", "download", "--formats", "html", "b")
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(e.outDir, "Jane Doe.html"))

	out, err = runCLI(t, "", "history", "delete", "c")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deleted c")
	assert.Equal(t, []string{"c"}, e.backend.deletes)
}

func TestRenderCommand(t *testing.T) {
	e := newEnv(t)
	in := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"name":"Jane Doe","professional_experience":["Shipped"]}`), 0o644))

	out, err := runCLI(t, "", "render", "--in", in, "--formats", "html")
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(e.outDir, "Jane Doe.html"))

	out, err = runCLI(t, `{"name":"Jane Doe"}`, "render", "--in", "-", "--formats", "html")
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(e.outDir, "Jane Doe (1).html"))
}

func TestRenderCommand_InvalidRecord(t *testing.T) {
	newEnv(t)
	in := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"summary": "no name"}`), 0o644))

	_, err := runCLI(t, "", "render", "--in", in, "--formats", "html")
	assert.Error(t, err)
}

func TestParseFormats(t *testing.T) {
	got, err := parseFormats("", []string{"pdf", "docx"})
	require.NoError(t, err)
	assert.Equal(t, []rendering.Format{rendering.FormatPDF, rendering.FormatDOCX}, got)

	got, err = parseFormats(" HTML, html ,docx", nil)
	require.NoError(t, err)
	assert.Equal(t, []rendering.Format{rendering.FormatHTML, rendering.FormatDOCX}, got)

	_, err = parseFormats("rtf", nil)
	assert.Error(t, err)
}

func TestWriteDocuments_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	doc := &rendering.Document{Format: rendering.FormatHTML, Filename: "cv.html", Data: []byte("one")}

	first, err := writeDocuments(dir, []*rendering.Document{doc})
	require.NoError(t, err)
	second, err := writeDocuments(dir, []*rendering.Document{doc})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "cv.html"), first[0])
	assert.Equal(t, filepath.Join(dir, "cv (1).html"), second[0])
}

func writeResume(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 resume"), 0o644))
	return path
}
