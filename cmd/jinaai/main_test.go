package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears every variable the config layer reads.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"JINA_API_KEY", "UseTokenForReader", "JINA_USE_TOKEN_FOR_READER", "DebugMode",
		"PROJECT_BASE_PATH", "SERVER_PORT", "IMAGESERVER_IMAGE_KEY", "VarHttpUrl",
		"JINA_READER_URL", "JINA_SEARCH_URL", "JINA_GROUNDING_URL", "JINA_BATCH_CONCURRENCY",
	} {
		t.Setenv(name, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func decodeEnvelope(t *testing.T, stdout string) map[string]string {
	t.Helper()
	var env map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &env), "stdout: %s", stdout)
	return env
}

func readerServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":200,"status":20000,"data":{"title":"Example Domain","url":"https://example.com/","content":"Hello <world>"}}`)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRun_SingleCommand(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JINA_READER_URL", readerServer(t).URL)

	stdout, stderr, err := execute(t, `{"command":"read_url","url":"https://example.com"}`)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	env := decodeEnvelope(t, stdout)
	assert.Equal(t, "success", env["status"])
	assert.True(t, strings.HasPrefix(env["result"], "### Example Domain\n\n**Url:** https://example.com/\n"))
	assert.Contains(t, stdout, "Hello <world>", "HTML characters must not be escaped in the envelope")
}

func TestRun_Batch(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JINA_READER_URL", readerServer(t).URL)

	stdout, _, err := execute(t, `{"command1":"reader","url1":"https://example.com","command2":"bogus"}`)
	require.NoError(t, err)

	env := decodeEnvelope(t, stdout)
	assert.Equal(t, "success", env["status"])
	result := env["result"]
	assert.Contains(t, result, "Executed 2 operations: 1 succeeded, 1 failed.")
	assert.Contains(t, result, "#### Operation 1: reader (#1)\n**Status:** ✅ Success\n### Example Domain")
	assert.Contains(t, result, "#### Operation 2: bogus (#2)\n**Status:** ❌ Failed\n**Error:** [InvalidCommand] Unknown command 'bogus'")
}

func TestRun_EmptyInput(t *testing.T) {
	isolateEnv(t)

	stdout, stderr, err := execute(t, "  \n")
	require.ErrorIs(t, err, errReported)

	env := decodeEnvelope(t, stdout)
	assert.Equal(t, map[string]string{"status": "error", "error": "No input data from stdin."}, env)
	assert.Equal(t, "[JinaAI Error] No input data from stdin.\n", stderr)
}

func TestRun_MalformedJSON(t *testing.T) {
	isolateEnv(t)

	for _, in := range []string{`{"command":`, `[1,2]`, `null`} {
		stdout, _, err := execute(t, in)
		require.ErrorIs(t, err, errReported, in)
		env := decodeEnvelope(t, stdout)
		assert.Equal(t, "error", env["status"])
		assert.True(t, strings.HasPrefix(env["error"], "Invalid JSON input"), env["error"])
	}
}

func TestRun_Unauthorized(t *testing.T) {
	isolateEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer bad-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()
	t.Setenv("JINA_SEARCH_URL", ts.URL)
	t.Setenv("JINA_API_KEY", "bad-key")

	stdout, stderr, err := execute(t, `{"command":"search","q":"golang"}`)
	require.ErrorIs(t, err, errReported)

	want := "[Unauthorized] Search rejected the API key. Please check your JINA_API_KEY."
	assert.Equal(t, map[string]string{"status": "error", "error": want}, decodeEnvelope(t, stdout))
	assert.Contains(t, stderr, "[JinaAI Error] "+want)
}

func TestRun_ScreenshotWithoutImageStore(t *testing.T) {
	isolateEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "screenshot", r.Header.Get("X-Return-Format"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 100))
	}))
	defer ts.Close()
	t.Setenv("JINA_READER_URL", ts.URL)

	stdout, _, err := execute(t, `{"command":"read_url","url":"https://example.com","format":"screenshot"}`)
	require.NoError(t, err)

	result := decodeEnvelope(t, stdout)["result"]
	assert.Contains(t, result, "### Screenshot Result")
	assert.Contains(t, result, "Screenshot generated (Base64 fallback):\n`data:image/png;base64,")
	assert.NotContains(t, result, "Image Url")
}

func TestRun_InputFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JINA_READER_URL", readerServer(t).URL)

	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cmd":"read","webpage":"https://example.com"}`), 0644))

	stdout, _, err := execute(t, "", "--input", path)
	require.NoError(t, err)
	assert.Equal(t, "success", decodeEnvelope(t, stdout)["status"])
}

func TestCommandsCmd(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := execute(t, "", "commands")
	require.NoError(t, err)
	for _, want := range []string{"read_url", "search", "ground_statement", "factcheck", "web_search", "required: url"} {
		assert.Contains(t, stdout, want)
	}
}
