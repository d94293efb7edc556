package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"borelog/domain/borehole"
	"borelog/internal/analysis"
	"borelog/internal/ledger"
	"borelog/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boreholeCSV = "BOREHOLE,Depth,Classification,SPTValue,Gravel\n" +
	"BH-1,1.0,CL,10,\n" +
	"BH-1,3.0,SM,20,\n" +
	"BH-1,5.0,GW,32,\n" +
	"BH-2,0.5,GW,35,40\n" +
	"BH-2,2.5,GP,38,55\n"

type fakeLedger struct {
	uploads []borehole.Upload
}

func (l *fakeLedger) Record(_ context.Context, u borehole.Upload) error {
	l.uploads = append([]borehole.Upload{u}, l.uploads...)
	return nil
}

func (l *fakeLedger) Recent(_ context.Context, limit int) ([]borehole.Upload, error) {
	if limit < len(l.uploads) {
		return l.uploads[:limit], nil
	}
	return l.uploads, nil
}

func newTestServer(t *testing.T) (*Server, *fakeLedger) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := &fakeLedger{}
	controller := session.NewController(session.DefaultOptions(), l)
	s, err := NewServer(os.DirFS(".."), controller, l, Options{MaxUploadBytes: 1 << 20, ReportConcurrency: 2})
	require.NoError(t, err)
	return s, l
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	return do(s, httptest.NewRequest(http.MethodGet, path, nil))
}

func uploadRequest(t *testing.T, filename, content, tab string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if tab != "" {
		require.NoError(t, mw.WriteField("tab", tab))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func loadedServer(t *testing.T) (*Server, *fakeLedger) {
	t.Helper()
	s, l := newTestServer(t)
	w := do(s, uploadRequest(t, "logs.csv", boreholeCSV, "raw"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	return s, l
}

func TestTabs_WithoutData(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(s, "/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/tabs/raw", w.Header().Get("Location"))

	w = get(s, "/tabs/raw")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Upload a CSV file with a valid")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = get(s, "/tabs/statistics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please upload a CSV file.")

	assert.Equal(t, http.StatusNotFound, get(s, "/tabs/unknown").Code)
}

func TestUpload(t *testing.T) {
	s, l := newTestServer(t)

	w := do(s, uploadRequest(t, "logs.csv", boreholeCSV, "statistics"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tabs/statistics", w.Header().Get("Location"))
	require.Len(t, l.uploads, 1)
	assert.Equal(t, "logs.csv", l.uploads[0].Filename)

	w = get(s, "/tabs/raw")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "logs.csv uploaded successfully!")
	assert.Contains(t, body, "Borehole BH-1")
	assert.Contains(t, body, `<option value="BH-2"`)
}

func TestUpload_Rejected(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, uploadRequest(t, "", "", "raw"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "Choose a CSV file to upload.", s.controller.Snapshot().Message.Text)

	w = do(s, uploadRequest(t, "empty.csv", "BOREHOLE,Depth\n", "raw"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	st := s.controller.Snapshot()
	assert.False(t, st.Loaded())
	assert.Equal(t, session.LevelWarning, st.Message.Level)
}

func TestSelectAndReset(t *testing.T) {
	s, _ := loadedServer(t)

	form := "borehole=BH-2&tab=statistics&query=sub%3Dhistogram"
	req := httptest.NewRequest(http.MethodPost, "/select", bytes.NewBufferString(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(s, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tabs/statistics?sub=histogram", w.Header().Get("Location"))
	assert.Equal(t, "BH-2", s.controller.Snapshot().Selected)

	req = httptest.NewRequest(http.MethodPost, "/reset", nil)
	w = do(s, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tabs/raw", w.Header().Get("Location"))
	assert.False(t, s.controller.Snapshot().Loaded())
}

func TestTabs_Loaded(t *testing.T) {
	s, _ := loadedServer(t)

	for _, tb := range tabs {
		t.Run(tb.Key, func(t *testing.T) {
			w := get(s, "/tabs/"+tb.Key)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tb.Title)
		})
	}

	for _, sub := range []string{"describe", "correlation", "histogram", "boxplot"} {
		w := get(s, "/tabs/statistics?sub="+sub+"&column=SPTValue")
		require.Equal(t, http.StatusOK, w.Code, sub)
	}

	w := get(s, "/tabs/reliability")
	assert.Contains(t, w.Body.String(), "data:image/png;base64,")
	assert.Contains(t, w.Body.String(), "column(s) have more than")
}

func TestReliabilityTab_ListsEveryColumn(t *testing.T) {
	s, _ := newTestServer(t)
	csv := "BOREHOLE,Depth,Classification,SPTValue,Constant\n" +
		"BH-1,1.0,CL,10,7\n" +
		"BH-1,2.0,SM,inf,7\n" +
		"BH-1,3.0,GW,12,7\n"
	require.Equal(t, http.StatusSeeOther, do(s, uploadRequest(t, "odd.csv", csv, "reliability")).Code)

	w := get(s, "/tabs/reliability")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<td>Constant</td><td>0.00</td><td></td>")
	assert.Contains(t, body, "<td>SPTValue</td><td>0.00</td><td></td>")
	assert.Contains(t, body, "<td>Depth</td><td>0.00</td><td>50.00</td>")

	w = get(s, "/api/reliability")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, json.Valid(w.Body.Bytes()))

	assert.Equal(t, http.StatusOK, get(s, "/charts/missing.png").Code)
	assert.Equal(t, http.StatusOK, get(s, "/charts/cov.png").Code)
}

func TestProfileChart_InfiniteDepth(t *testing.T) {
	s, _ := newTestServer(t)
	csv := "BOREHOLE,Depth,Classification,SPTValue\n" +
		"BH-1,1.0,CL,10\n" +
		"BH-1,inf,SM,11\n" +
		"BH-1,4.0,GW,12\n"
	require.Equal(t, http.StatusSeeOther, do(s, uploadRequest(t, "odd.csv", csv, "profile")).Code)

	w := get(s, "/charts/profile.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestCharts(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(s, "/charts/profile.png").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/charts/histogram.png").Code)

	s, _ = loadedServer(t)
	for _, path := range []string{
		"/charts/profile.png",
		"/charts/heatmap.png",
		"/charts/histogram.png?column=SPTValue",
		"/charts/boxplot.png?column=Depth",
		"/charts/missing.png",
		"/charts/cov.png",
	} {
		w := get(s, path)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"), path)
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")), path)
	}

	w := get(s, "/charts/profile.svg?download=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="borehole_BH-1.svg"`, w.Header().Get("Content-Disposition"))
}

func TestDownloads(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(s, "/downloads/report.xlsx").Code)

	s, _ = loadedServer(t)
	for _, path := range []string{"/downloads/report.xlsx", "/downloads/reliability.xlsx"} {
		w := get(s, path)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))
		// XLSX is a zip archive.
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), path)
	}
}

func TestAPI(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(s, "/api/state")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"loaded":false,"boreholes":[],"rows":0,"columns":[],"numeric":[]}`, w.Body.String())

	w = get(s, "/api/summary")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")

	s, _ = loadedServer(t)
	w = get(s, "/api/state")
	var state stateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Loaded)
	assert.Equal(t, "BH-1", state.Selected)
	assert.Equal(t, 5, state.Rows)
	assert.Equal(t, []string{"Depth", "SPTValue", "Gravel"}, state.Numeric)

	w = get(s, "/api/summary")
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Columns []summaryRow `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.Len(t, summary.Columns, 3)
	assert.Equal(t, "Gravel", summary.Columns[2].Column)
	assert.Equal(t, 2, summary.Columns[2].Count)

	w = get(s, "/api/reliability")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"high_missing"`)

	w = get(s, "/api/columns/SPTValue")
	require.Equal(t, http.StatusOK, w.Code)
	var column struct {
		Summary   summaryRow         `json:"summary"`
		Histogram analysis.Histogram `json:"histogram"`
		Boxplot   *boxResponse       `json:"boxplot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &column))
	assert.Equal(t, 5, column.Summary.Count)
	assert.NotEmpty(t, column.Histogram.Counts)
	require.NotNil(t, column.Boxplot)
	assert.Equal(t, 32.0, column.Boxplot.Median)

	assert.Equal(t, http.StatusNotFound, get(s, "/api/columns/Classification").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/api/unknown").Code)
}

func TestAPIUploads(t *testing.T) {
	s, l := newTestServer(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Record(context.Background(), borehole.Upload{
			ID:         fmt.Sprintf("id-%d", i),
			Filename:   fmt.Sprintf("f%d.csv", i),
			UploadedAt: time.Now().UTC(),
		}))
	}

	w := get(s, "/api/uploads?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Uploads []borehole.Upload `json:"uploads"`
		Count   int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "f2.csv", resp.Uploads[0].Filename)

	assert.Equal(t, http.StatusBadRequest, get(s, "/api/uploads?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/api/uploads?limit=0").Code)
}

func TestAPIUploads_NoopLedger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	controller := session.NewController(session.DefaultOptions(), ledger.Noop{})
	s, err := NewServer(os.DirFS(".."), controller, ledger.Noop{}, Options{})
	require.NoError(t, err)

	w := get(s, "/api/uploads")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uploads":[],"count":0}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("boom")))
	assert.Equal(t, "Abc", capitalize("abc"))
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "BH_1_A", safeName("BH 1/A"))
}
