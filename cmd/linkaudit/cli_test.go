package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// coursePages is a small site with one page per link category and a
// lesson page reachable from the start page.
var coursePages = map[string]string{
	"/": `<html><head><title>Course</title></head><body>
<a href="/files/syllabus.pdf">Syllabus</a>
<a href="https://www.youtube.com/watch?v=abc123">Intro video</a>
<a href="/about">About</a>
<a href="/lesson-1">Lesson 1</a>
</body></html>`,
	"/lesson-1": `<html><head><title>Lesson 1</title></head><body>
<a href="/files/lesson-1-notes.pdf">Notes</a>
<a href="https://youtu.be/xyz789">Lecture</a>
</body></html>`,
	"/about": `<html><body><p>About this course</p></body></html>`,
}

// newCourseServer serves coursePages and 404 for anything else.
func newCourseServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := coursePages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// emptyConfig writes an empty config file so tests never pick up a
// .linkaudit.yaml from the working or home directory.
func emptyConfig(t *testing.T) string {
	t.Helper()
	return writeConfig(t, "settings: {}\n")
}

// writeConfig writes content to a config file in a temp dir.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".linkaudit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// cliResult is the outcome of one CLI invocation.
type cliResult struct {
	stdout string
	stderr string
	code   int
}

// runCLI executes the root command with args, the way main does.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	code := reportError(&stderr, err, verboseFlag(cmd))

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}
