package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-cli/internal/config"
	"github.com/sells-group/lead-cli/internal/importer"
	"github.com/sells-group/lead-cli/internal/model"
)

// stubStore is an in-memory store.Store for handler tests.
type stubStore struct {
	countries []model.Country
	statuses  []model.Status
	users     []model.User

	inserted    []model.LeadRecord
	insertCalls int
	failOnCall  int // 1-based call number that fails; 0 = never
	batches     []model.ImportBatch
}

func (s *stubStore) InsertLeads(_ context.Context, leads []model.LeadRecord) (int, error) {
	s.insertCalls++
	if s.failOnCall > 0 && s.insertCalls == s.failOnCall {
		return 0, eris.New("stub: insert failed")
	}
	s.inserted = append(s.inserted, leads...)
	return len(leads), nil
}

func (s *stubStore) ListCountries(context.Context) ([]model.Country, error) {
	return s.countries, nil
}

func (s *stubStore) ListStatuses(context.Context) ([]model.Status, error) {
	return s.statuses, nil
}

func (s *stubStore) ListAssignableUsers(context.Context) ([]model.User, error) {
	return s.users, nil
}

func (s *stubStore) RecordImportBatch(_ context.Context, batch model.ImportBatch) error {
	s.batches = append(s.batches, batch)
	return nil
}

func (s *stubStore) Migrate(context.Context) error { return nil }
func (s *stubStore) Close() error                  { return nil }

func newStubStore() *stubStore {
	return &stubStore{
		countries: []model.Country{
			{ID: "c1", Name: "India", Code: "IN"},
			{ID: "c2", Name: "Germany", Code: "DE"},
		},
		statuses: []model.Status{
			{ID: "s1", Name: "New", SortOrder: 1},
			{ID: "s2", Name: "Contacted", SortOrder: 2},
		},
		users: []model.User{
			{ID: "u1", FullName: "Jane Doe", Role: "admin"},
		},
	}
}

func setTestConfig(t *testing.T) {
	t.Helper()
	old := cfg
	cfg = &config.Config{
		Import: config.ImportConfig{ChunkSize: 50, PreviewRows: 30},
		Server: config.ServerConfig{MaxUploadBytes: 10 << 20},
	}
	t.Cleanup(func() { cfg = old })
}

// multipartBody builds a multipart form with one file field plus extra fields.
func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

const testCSV = `Company Name,Country,Status,Email,Lead Score
Acme Industries,India,New,info@acme.com,75
,Germany,Contacted,bad@example.com,40
Globex GmbH,Germany,Contacted,hello@globex.de,60
`

func TestHandleImport_DryRunPreview(t *testing.T) {
	setTestConfig(t)
	st := newStubStore()

	body, ctype := multipartBody(t, "leads.csv", testCSV, nil)
	req := httptest.NewRequest(http.MethodPost, "/import?dry_run=1", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()

	handleImport(st)(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var preview importer.Preview
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &preview))
	assert.Equal(t, 3, preview.Total)
	assert.Equal(t, 2, preview.Valid)
	assert.Equal(t, 1, preview.Skipped)
	assert.Len(t, preview.Rows, 3)
	assert.Equal(t, "Acme Industries", preview.Rows[0].Company)
	assert.Equal(t, "Unassigned", preview.Rows[0].Owner)

	// Dry run never touches the leads table.
	assert.Zero(t, st.insertCalls)
	assert.Empty(t, st.batches)
}

func TestHandleImport_Success(t *testing.T) {
	setTestConfig(t)
	st := newStubStore()

	body, ctype := multipartBody(t, "leads.csv", testCSV, map[string]string{"owner": "Jane Doe"})
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()

	handleImport(st)(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var report importer.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, -1, report.FailedChunk)

	require.Len(t, st.inserted, 2)
	for _, rec := range st.inserted {
		require.NotNil(t, rec.OwnerID)
		assert.Equal(t, "u1", *rec.OwnerID)
	}

	require.Len(t, st.batches, 1)
	assert.Equal(t, "leads.csv", st.batches[0].FileName)
	assert.Equal(t, model.BatchOutcomeComplete, st.batches[0].Outcome)
}

func TestHandleImport_UnknownOwner(t *testing.T) {
	setTestConfig(t)
	st := newStubStore()

	body, ctype := multipartBody(t, "leads.csv", testCSV, map[string]string{"owner": "Nobody Here"})
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()

	handleImport(st)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "not an assignable user")
	assert.Zero(t, st.insertCalls)
}

func TestHandleImport_UnsupportedExtension(t *testing.T) {
	setTestConfig(t)
	st := newStubStore()

	body, ctype := multipartBody(t, "leads.pdf", "junk", nil)
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()

	handleImport(st)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unsupported file type")
}

func TestHandleImport_MissingFile(t *testing.T) {
	setTestConfig(t)
	st := newStubStore()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("owner", "Jane Doe"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()

	handleImport(st)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "file field is required")
}

func TestHandleImport_HeaderOnly(t *testing.T) {
	setTestConfig(t)
	st := newStubStore()

	body, ctype := multipartBody(t, "leads.csv", "Company Name,Email\n", nil)
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()

	handleImport(st)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no data rows found")
}

func TestHandleImport_ChunkFailure(t *testing.T) {
	setTestConfig(t)
	cfg.Import.ChunkSize = 1

	st := newStubStore()
	st.failOnCall = 2

	body, ctype := multipartBody(t, "leads.csv", testCSV, nil)
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()

	handleImport(st)(rr, req)

	require.Equal(t, http.StatusBadGateway, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["inserted"])
	assert.Equal(t, float64(1), resp["failed_chunk"])

	// The halted batch is still recorded as partial.
	require.Len(t, st.batches, 1)
	assert.Equal(t, model.BatchOutcomePartial, st.batches[0].Outcome)
	assert.Equal(t, 1, st.batches[0].Inserted)
}
