package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/config"
)

const salesCSV = "date,region,value\n" +
	"2024-01-05,north,10\n" +
	"2024-02-09,south,5\n" +
	"2024-03-11,north,12\n"

// stubAsker records the prompt it received and returns a canned response.
type stubAsker struct {
	system string
	user   string
	reply  string
	err    error
}

func (a *stubAsker) Ask(_ context.Context, system, user string) (string, error) {
	a.system = system
	a.user = user
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

func testConfig() *config.Global {
	return &config.Global{
		ListenAddr:     ":0",
		MaxUploadMB:    8,
		PreviewRows:    100,
		ExecTimeoutSec: 5,
	}
}

func newTestServer(t *testing.T, llm Asker) http.Handler {
	t.Helper()
	return New(testConfig(), zerolog.Nop(), llm).Handler()
}

func uploadCSV(t *testing.T, h http.Handler, name, content string) uploadResponse {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func postQuery(t *testing.T, h http.Handler, sessionID, promptText string) queryResponse {
	t.Helper()
	body, err := json.Marshal(queryRequest{SessionID: sessionID, Prompt: promptText})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestUpload(t *testing.T) {
	h := newTestServer(t, nil)
	resp := uploadCSV(t, h, "sales.csv", salesCSV)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 3, resp.Rows)
	assert.Equal(t, 3, resp.Cols)
	require.Len(t, resp.Profile, 3)
	assert.Equal(t, "datetime", resp.Profile[0].Kind)
	assert.Equal(t, "numeric", resp.Profile[2].Kind)
	require.NotNil(t, resp.Preview)
	assert.Len(t, resp.Preview.Rows, 3)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestUploadMalformed(t *testing.T) {
	h := newTestServer(t, nil)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "bad.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("a,b\n\"oops,1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestQueryBuiltInTable(t *testing.T) {
	h := newTestServer(t, nil)
	up := uploadCSV(t, h, "sales.csv", salesCSV)

	resp := postQuery(t, h, up.SessionID,
		"Show summary statistics (count, mean, std, min, 25%, 50%, 75%, max) for numeric columns.")
	require.Equal(t, "table", resp.Kind)
	require.NotNil(t, resp.Table)
	assert.Equal(t, "value", resp.Table.Rows[0][0])
}

func TestQueryBuiltInChart(t *testing.T) {
	h := newTestServer(t, nil)
	up := uploadCSV(t, h, "sales.csv", salesCSV)

	resp := postQuery(t, h, up.SessionID, "Create a histogram of the numeric column 'value'.")
	require.Equal(t, "chart", resp.Kind)
	png, err := base64.StdEncoding.DecodeString(resp.ChartPNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestQueryLLMBacked(t *testing.T) {
	llm := &stubAsker{reply: "Sure, here you go:\n```\nplot.line(df, \"date\", \"value\")\n```"}
	h := newTestServer(t, llm)
	up := uploadCSV(t, h, "trend.csv", "date,value\n2024-01-05,10\n2024-02-09,5\n2024-03-11,12\n")

	resp := postQuery(t, h, up.SessionID, "what is the trend over time?")
	require.Equal(t, "chart", resp.Kind, "error: %s stage: %s", resp.Error, resp.Stage)
	assert.NotEmpty(t, resp.ChartPNG)

	// The model prompt must carry the schema and the question.
	assert.Contains(t, llm.user, "date")
	assert.Contains(t, llm.user, "value")
	assert.Contains(t, llm.user, "what is the trend over time?")
	assert.Contains(t, llm.system, "plot.hist")
}

func TestQueryWithoutLLM(t *testing.T) {
	h := newTestServer(t, nil)
	up := uploadCSV(t, h, "sales.csv", salesCSV)

	resp := postQuery(t, h, up.SessionID, "why did revenue dip in March?")
	assert.Equal(t, "error", resp.Kind)
	assert.Equal(t, "prompt_built", resp.Stage)
	assert.Contains(t, resp.Error, "API key")
}

func TestQueryLLMFailureReportsStage(t *testing.T) {
	llm := &stubAsker{err: errors.New("rate limited")}
	h := newTestServer(t, llm)
	up := uploadCSV(t, h, "sales.csv", salesCSV)

	resp := postQuery(t, h, up.SessionID, "free-form question")
	assert.Equal(t, "error", resp.Kind)
	assert.Equal(t, "awaiting_llm", resp.Stage)
}

func TestQueryBadScriptReportsExecuting(t *testing.T) {
	llm := &stubAsker{reply: "```\nresult = df.column(\"nope\")\n```"}
	h := newTestServer(t, llm)
	up := uploadCSV(t, h, "sales.csv", salesCSV)

	resp := postQuery(t, h, up.SessionID, "free-form question")
	assert.Equal(t, "error", resp.Kind)
	assert.Equal(t, "executing", resp.Stage)
}

func TestQueryUnknownSession(t *testing.T) {
	h := newTestServer(t, nil)
	body, _ := json.Marshal(queryRequest{SessionID: "nope", Prompt: "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadLastTable(t *testing.T) {
	h := newTestServer(t, nil)
	up := uploadCSV(t, h, "sales.csv", salesCSV)

	// No result yet.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/result.csv?session_id="+up.SessionID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	postQuery(t, h, up.SessionID, "Show the top 10 rows sorted by 'value' descending.")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/result.csv?session_id="+up.SessionID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4) // header + 3 rows
	assert.True(t, strings.HasPrefix(lines[1], "2024-03-11"), "rows should be sorted by value descending: %q", lines[1])
}

func TestSuggestionsEndpoint(t *testing.T) {
	h := newTestServer(t, nil)
	up := uploadCSV(t, h, "sales.csv", salesCSV)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/suggestions?session_id="+up.SessionID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, up.Suggestions, resp["suggestions"])
}

func TestReuploadReplacesDataset(t *testing.T) {
	h := newTestServer(t, nil)
	up := uploadCSV(t, h, "sales.csv", salesCSV)
	postQuery(t, h, up.SessionID, "Show the top 10 rows sorted by 'value' descending.")

	// A fresh upload on the same session clears the last result too.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "other.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("a,b\n1,2\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("session_id", up.SessionID))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var second uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, up.SessionID, second.SessionID)
	assert.Equal(t, 1, second.Rows)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/result.csv?session_id="+up.SessionID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestIndexServed(t *testing.T) {
	h := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}
