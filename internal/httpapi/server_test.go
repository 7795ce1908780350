package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"planfact/internal/pipeline"
	"planfact/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() AnalysisRequest {
	req := AnalysisRequest{
		Facts: sales.Table{Header: sales.FactColumns},
		Plans: sales.Table{Header: sales.PlanColumns},
	}
	for i, month := range []string{"2025-01", "2025-02", "2025-03"} {
		price := fmt.Sprintf("%d", 100+i*10)
		req.Facts.Rows = append(req.Facts.Rows, []string{"M1", month + "-15", "Premium", price, "1", price})
		req.Plans.Rows = append(req.Plans.Rows, []string{"M1", "Premium", month, "100", "1"})
	}
	return req
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) ([]byte, int, string) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return data, resp.StatusCode, resp.Header.Get("Content-Type")
}

func TestHealth(t *testing.T) {
	app := NewServer(pipeline.DefaultOptions()).App()
	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestModels(t *testing.T) {
	app := NewServer(pipeline.DefaultOptions()).App()
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/models", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Models    []string `json:"models"`
		Scenarios []string `json:"scenarios"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Models, "ensemble")
	assert.Contains(t, body.Models, "wma")
	assert.Equal(t, []string{"optimistic", "realistic", "pessimistic"}, body.Scenarios)
}

func TestAnalysis_JSON(t *testing.T) {
	app := NewServer(pipeline.DefaultOptions()).App()
	req := fixture()
	req.Options = pipeline.Request{Horizon: 2, Scenario: "optimistic"}

	data, status, _ := postJSON(t, app, "/api/v1/analysis", req)
	require.Equal(t, 200, status, string(data))

	var report pipeline.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.NotEmpty(t, report.RunID)
	assert.Len(t, report.Reconciled, 3)
	require.NotNil(t, report.Scenario)
	assert.Len(t, report.Scenario.Points, 2)
	assert.Equal(t, 1.20, report.Scenario.Factor)
}

func TestAnalysis_BadRequests(t *testing.T) {
	app := NewServer(pipeline.DefaultOptions()).App()

	missing := fixture()
	missing.Facts.Header = []string{"Magazin"}
	data, status, _ := postJSON(t, app, "/api/v1/analysis", missing)
	assert.Equal(t, 400, status)
	assert.Contains(t, string(data), "missing columns")

	badModel := fixture()
	badModel.Options.Model = "arima"
	_, status, _ = postJSON(t, app, "/api/v1/analysis", badModel)
	assert.Equal(t, 400, status)

	badHorizon := fixture()
	badHorizon.Options.Horizon = 100
	_, status, _ = postJSON(t, app, "/api/v1/analysis", badHorizon)
	assert.Equal(t, 400, status)

	badMonth := fixture()
	badMonth.Options.Months = []string{"2025/02"}
	data, status, _ = postJSON(t, app, "/api/v1/analysis", badMonth)
	assert.Equal(t, 400, status)
	assert.Contains(t, string(data), "Months[0]")

	badGrain := fixture()
	badGrain.Options.Grain = "weekly"
	_, status, _ = postJSON(t, app, "/api/v1/analysis", badGrain)
	assert.Equal(t, 400, status)

	req := httptest.NewRequest("POST", "/api/v1/analysis", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAnalysis_MultipartUpload(t *testing.T) {
	app := NewServer(pipeline.DefaultOptions()).App()
	fx := fixture()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, table := range map[string]sales.Table{"facts": fx.Facts, "plans": fx.Plans} {
		w, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		fmt.Fprintln(w, strings.Join(table.Header, ","))
		for _, row := range table.Rows {
			fmt.Fprintln(w, strings.Join(row, ","))
		}
	}
	require.NoError(t, mw.WriteField("horizon", "4"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/analysis", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var report pipeline.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 4, report.Options.Horizon)
	assert.Len(t, report.SmartPlan, 4)
}

func TestExport(t *testing.T) {
	app := NewServer(pipeline.DefaultOptions()).App()
	data, status, contentType := postJSON(t, app, "/api/v1/analysis/export", fixture())
	require.Equal(t, 200, status, string(data))
	assert.Contains(t, contentType, "spreadsheetml")
	// XLSX files are zip archives
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}
