package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fortuna/augur/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() momentPayload {
	return momentPayload{
		MomentID:      "moment-1",
		PlayerID:      "2544",
		MomentType:    "dunk",
		GameDate:      "2026-01-15",
		SerialNumber:  42,
		CurrentPrice:  120,
		MarketplaceID: "topshot",
	}
}

func TestMomentPayloadToRequest(t *testing.T) {
	payload := validPayload()

	req, err := payload.toRequest()
	require.NoError(t, err)

	assert.Equal(t, "moment-1", req.MomentID)
	assert.Equal(t, analysis.MomentDunk, req.MomentType)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), req.GameDate)
	assert.Equal(t, 42, req.SerialNumber)
}

func TestMomentPayloadValidation(t *testing.T) {
	missing := validPayload()
	missing.PlayerID = ""
	_, err := missing.toRequest()
	assert.ErrorContains(t, err, "player_id")

	badSerial := validPayload()
	badSerial.SerialNumber = 0
	_, err = badSerial.toRequest()
	assert.ErrorContains(t, err, "serial_number")

	badPrice := validPayload()
	badPrice.CurrentPrice = 0
	_, err = badPrice.toRequest()
	assert.ErrorContains(t, err, "current_price")

	badDate := validPayload()
	badDate.GameDate = "01/15/2026"
	_, err = badDate.toRequest()
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func TestBatchPayloadLimits(t *testing.T) {
	empty := batchPayload{}
	_, err := empty.toRequests(maxBatchMoments)
	assert.ErrorContains(t, err, "empty")

	over := batchPayload{Moments: make([]momentPayload, maxBatchMoments+1)}
	for i := range over.Moments {
		over.Moments[i] = validPayload()
	}
	_, err = over.toRequests(maxBatchMoments)
	assert.ErrorContains(t, err, "too many moments")

	// A bad entry reports its index.
	batch := batchPayload{Moments: []momentPayload{validPayload(), {}}}
	_, err = batch.toRequests(maxBatchMoments)
	assert.ErrorContains(t, err, "moment 1")
}

func TestDaysBackParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/reasoning/performance", nil)
	assert.Equal(t, 30, daysBackParam(r, 30))

	r = httptest.NewRequest(http.MethodGet, "/reasoning/performance?days_back=90", nil)
	assert.Equal(t, 90, daysBackParam(r, 30))

	// Out-of-range values fall back to the default.
	r = httptest.NewRequest(http.MethodGet, "/reasoning/performance?days_back=4000", nil)
	assert.Equal(t, 30, daysBackParam(r, 30))

	r = httptest.NewRequest(http.MethodGet, "/reasoning/performance?days_back=nope", nil)
	assert.Equal(t, 7, daysBackParam(r, 7))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight should not reach the handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/analyze/moment", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, http.StatusNotFound, "Player not found", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Player not found")
}
