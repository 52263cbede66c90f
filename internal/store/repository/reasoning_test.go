package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/augur/internal/reasoning"
)

var reasoningColumns = []string{
	"id", "moment_id", "decision", "confidence_score",
	"primary_reasoning", "supporting_reasons", "risk_factors",
	"key_statistics", "analysis_version", "created_at",
	"player_analysis", "market_context", "scarcity_analysis",
}

var factorColumns = []string{
	"factor_type", "name", "weight", "value", "raw_value",
	"impact", "confidence", "description", "supporting_data",
}

func storedResult() *reasoning.AIReasoningResult {
	return &reasoning.AIReasoningResult{
		MomentID:         "moment-1",
		Decision:         "buy",
		ConfidenceScore:  0.85,
		PrimaryReasoning: "Strong buy signal",
		SupportingReasons: []string{
			"Player Performance Analysis: positive impact",
		},
		RiskFactors:   []string{},
		KeyStatistics: map[string]interface{}{"fair_value": 150.0},
		Factors: []reasoning.ReasoningFactor{
			{FactorType: reasoning.FactorTypePlayerPerformance, Name: "Player Performance Analysis", Weight: 0.35, Value: 0.75, Impact: 37.5, Confidence: 0.8},
			{FactorType: reasoning.FactorTypeScarcity, Name: "Scarcity and Rarity Analysis", Weight: 0.25, Value: 0.9, Impact: 45, Confidence: 0.8},
			{FactorType: reasoning.FactorTypeMarketTrend, Name: "Market Trend Analysis", Weight: 0.20, Value: 0.3, Impact: -24, Confidence: 0.8},
		},
		AnalysisVersion: "1.0",
	}
}

func TestSaveReasoningRunsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	result := storedResult()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ai_reasoning").WillReturnResult(sqlmock.NewResult(0, 1))
	for range result.Factors {
		mock.ExpectExec("INSERT INTO reasoning_factors").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("INSERT INTO reasoning_context").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewReasoningRepository(db)
	id, err := repo.SaveReasoning(context.Background(), result, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReasoningRollsBackOnFactorFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ai_reasoning").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reasoning_factors").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	repo := NewReasoningRepository(db)
	_, err = repo.SaveReasoning(context.Background(), storedResult(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting reasoning factor")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReasoningByMomentReturnsFactorsByDescendingWeight(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM ai_reasoning").
		WithArgs("moment-1", 10).
		WillReturnRows(sqlmock.NewRows(reasoningColumns).AddRow(
			"rid-1", "moment-1", "buy", 0.85,
			"Strong buy signal", []byte(`["reason one"]`), []byte(`[]`),
			[]byte(`{"fair_value":150}`), "1.0", createdAt,
			[]byte(`{}`), []byte(`{}`), []byte(`{}`),
		))

	// Factor query orders by weight; rows arrive heaviest first.
	mock.ExpectQuery("ORDER BY weight DESC").
		WithArgs("rid-1").
		WillReturnRows(sqlmock.NewRows(factorColumns).
			AddRow("player_performance", "Player Performance Analysis", 0.35, 0.75, 75.0, 37.5, 0.8, "", []byte(`{}`)).
			AddRow("scarcity", "Scarcity and Rarity Analysis", 0.25, 0.9, nil, 45.0, 0.8, "", []byte(`{}`)).
			AddRow("market_trend", "Market Trend Analysis", 0.20, 0.3, nil, -24.0, 0.8, "", []byte(`{}`)))

	repo := NewReasoningRepository(db)
	results, err := repo.ReasoningByMoment(context.Background(), "moment-1", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Decision, confidence and factor count survive the round trip.
	got := results[0]
	assert.Equal(t, "buy", got.Decision)
	assert.Equal(t, 0.85, got.ConfidenceScore)
	require.Len(t, got.Factors, 3)

	for i := 1; i < len(got.Factors); i++ {
		assert.GreaterOrEqual(t, got.Factors[i-1].Weight, got.Factors[i].Weight)
	}
	assert.Equal(t, reasoning.FactorTypePlayerPerformance, got.Factors[0].FactorType)
	require.NotNil(t, got.Factors[0].RawValue)
	assert.Equal(t, 75.0, *got.Factors[0].RawValue)
	assert.Nil(t, got.Factors[1].RawValue)

	assert.NoError(t, mock.ExpectationsWereMet())
}
