package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falculator/falculator/api"
	"github.com/falculator/falculator/config"
	"github.com/falculator/falculator/core"
	"github.com/falculator/falculator/item"
	"github.com/falculator/falculator/store/sqlite"
)

func newTestHandler(t *testing.T) (*api.Handler, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return api.NewHandler(store), store
}

func baseConfigBody() *config.Config {
	return &config.Config{
		BirthDate:     core.NewSimDate(1990, time.January, 1),
		SimName:       "api-test",
		YearsToSim:    1,
		StepIncrement: config.StepMonthly,
		StartDate:     core.NewSimDate(2026, time.January, 1),
		TaxMode:       config.TaxNone,
		LogLevel:      config.LogError,
		Items: []*item.FinancialItem{
			{
				ID: "savings", Name: "Main Savings", Type: item.TypeSavings,
				Value: core.MustMoney("1000"), IsMainSavings: true, IsLiquidAsset: true,
				StartEnabled: true, EndDate: core.NewSimDate(2100, time.January, 1),
			},
		},
		MainSavingsIdx: 0,
	}
}

func doRequest(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateConfig_SanitizesAndPersists(t *testing.T) {
	h, _ := newTestHandler(t)
	r := api.NewRouter(h)

	rec := doRequest(t, r, http.MethodPost, "/api/configs", baseConfigBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID          string `json:"id"`
		Config      config.Config
		Corrections []core.SanitizationCorrection
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "api-test", resp.Config.SimName)
}

func TestCreateConfig_RejectsMultipleMainSavings(t *testing.T) {
	h, _ := newTestHandler(t)
	r := api.NewRouter(h)

	bad := baseConfigBody()
	bad.Items = append(bad.Items, &item.FinancialItem{
		ID: "savings2", Name: "Second Savings", Type: item.TypeSavings,
		Value: core.MustMoney("500"), IsMainSavings: true, IsLiquidAsset: true,
		StartEnabled: true, EndDate: core.NewSimDate(2100, time.January, 1),
	})

	rec := doRequest(t, r, http.MethodPost, "/api/configs", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetConfig_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	r := api.NewRouter(h)

	rec := doRequest(t, r, http.MethodGet, "/api/configs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListConfigs_ReturnsSavedSummaries(t *testing.T) {
	h, _ := newTestHandler(t)
	r := api.NewRouter(h)

	doRequest(t, r, http.MethodPost, "/api/configs", baseConfigBody())

	rec := doRequest(t, r, http.MethodGet, "/api/configs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []api.ConfigSummaryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "api-test", summaries[0].SimName)
}

func TestPreviewSanitize_DoesNotPersist(t *testing.T) {
	h, _ := newTestHandler(t)
	r := api.NewRouter(h)

	rec := doRequest(t, r, http.MethodPost, "/api/configs/preview/sanitize", baseConfigBody())
	require.Equal(t, http.StatusOK, rec.Code)

	listRec := doRequest(t, r, http.MethodGet, "/api/configs", nil)
	var summaries []api.ConfigSummaryDTO
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &summaries))
	assert.Empty(t, summaries)
}

func TestSimulationLifecycle_RunThenFetchFrames(t *testing.T) {
	h, store := newTestHandler(t)
	r := api.NewRouter(h)

	createRec := doRequest(t, r, http.MethodPost, "/api/configs", baseConfigBody())
	require.Equal(t, http.StatusCreated, createRec.Code)
	var created struct{ ID string }
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))

	simRec := doRequest(t, r, http.MethodPost, "/api/simulations", map[string]string{"config_id": created.ID})
	require.Equal(t, http.StatusCreated, simRec.Code)

	var simResp api.SimulationResponse
	require.NoError(t, json.Unmarshal(simRec.Body.Bytes(), &simResp))
	assert.Equal(t, "completed", simResp.Status)
	assert.NotEmpty(t, simResp.ID)

	framesRec := doRequest(t, r, http.MethodGet, "/api/simulations/"+simResp.ID+"/frames", nil)
	require.Equal(t, http.StatusOK, framesRec.Code)

	var framesResp api.FramesResponse
	require.NoError(t, json.Unmarshal(framesRec.Body.Bytes(), &framesResp))
	assert.NotEmpty(t, framesResp.Frames)

	run, err := store.GetRun(context.Background(), simResp.ID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, sqlite.RunCompleted, run.Status)
}

func TestCreateSimulation_UnknownConfig(t *testing.T) {
	h, _ := newTestHandler(t)
	r := api.NewRouter(h)

	rec := doRequest(t, r, http.MethodPost, "/api/simulations", map[string]string{"config_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelSimulation_UnknownRun(t *testing.T) {
	h, _ := newTestHandler(t)
	r := api.NewRouter(h)

	rec := doRequest(t, r, http.MethodPost, "/api/simulations/missing/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
