package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fortuna/augur/internal/reasoning"
)

// ReasoningRepository persists reasoning records in PostgreSQL.
type ReasoningRepository struct {
	db *sql.DB
}

func NewReasoningRepository(db *sql.DB) *ReasoningRepository {
	return &ReasoningRepository{db: db}
}

// SaveReasoning stores a reasoning record, its factors and its context
// blocks in a single transaction and returns the new record id.
func (r *ReasoningRepository) SaveReasoning(ctx context.Context, result *reasoning.AIReasoningResult, userID string) (string, error) {
	reasoningID := uuid.New().String()

	supportingReasons, err := json.Marshal(result.SupportingReasons)
	if err != nil {
		return "", fmt.Errorf("encoding supporting reasons: %w", err)
	}
	riskFactors, err := json.Marshal(result.RiskFactors)
	if err != nil {
		return "", fmt.Errorf("encoding risk factors: %w", err)
	}
	keyStatistics, err := json.Marshal(result.KeyStatistics)
	if err != nil {
		return "", fmt.Errorf("encoding key statistics: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ai_reasoning (
			id, moment_id, user_id, decision, confidence_score,
			primary_reasoning, supporting_reasons, risk_factors,
			key_statistics, analysis_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		reasoningID,
		result.MomentID,
		nullString(userID),
		result.Decision,
		result.ConfidenceScore,
		result.PrimaryReasoning,
		supportingReasons,
		riskFactors,
		keyStatistics,
		result.AnalysisVersion,
	)
	if err != nil {
		return "", fmt.Errorf("inserting reasoning: %w", err)
	}

	for _, factor := range result.Factors {
		supportingData, err := json.Marshal(factor.SupportingData)
		if err != nil {
			return "", fmt.Errorf("encoding factor supporting data: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO reasoning_factors (
				reasoning_id, factor_type, name, weight, value,
				raw_value, impact, confidence, description, supporting_data
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			reasoningID,
			string(factor.FactorType),
			factor.Name,
			factor.Weight,
			factor.Value,
			factor.RawValue,
			factor.Impact,
			factor.Confidence,
			factor.Description,
			supportingData,
		)
		if err != nil {
			return "", fmt.Errorf("inserting reasoning factor: %w", err)
		}
	}

	playerAnalysis, err := json.Marshal(result.PlayerAnalysis)
	if err != nil {
		return "", fmt.Errorf("encoding player analysis: %w", err)
	}
	marketContext, err := json.Marshal(result.MarketContext)
	if err != nil {
		return "", fmt.Errorf("encoding market context: %w", err)
	}
	scarcityAnalysis, err := json.Marshal(result.ScarcityAnalysis)
	if err != nil {
		return "", fmt.Errorf("encoding scarcity analysis: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reasoning_context (
			reasoning_id, player_analysis, market_context, scarcity_analysis
		) VALUES ($1, $2, $3, $4)`,
		reasoningID, playerAnalysis, marketContext, scarcityAnalysis,
	)
	if err != nil {
		return "", fmt.Errorf("inserting reasoning context: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing reasoning: %w", err)
	}

	return reasoningID, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ReasoningByMoment returns stored reasoning for a moment, most recent first.
func (r *ReasoningRepository) ReasoningByMoment(ctx context.Context, momentID string, limit int) ([]reasoning.AIReasoningResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.moment_id, r.decision, r.confidence_score,
		       r.primary_reasoning, r.supporting_reasons, r.risk_factors,
		       r.key_statistics, r.analysis_version, r.created_at,
		       rc.player_analysis, rc.market_context, rc.scarcity_analysis
		FROM ai_reasoning r
		LEFT JOIN reasoning_context rc ON r.id = rc.reasoning_id
		WHERE r.moment_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2`,
		momentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reasoning for moment %s: %w", momentID, err)
	}
	defer rows.Close()

	results := []reasoning.AIReasoningResult{}
	ids := []string{}
	for rows.Next() {
		var id string
		result, err := scanReasoningRow(rows, &id)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reasoning rows: %w", err)
	}

	for i, id := range ids {
		factors, err := r.reasoningFactors(ctx, id)
		if err != nil {
			return nil, err
		}
		results[i].Factors = factors
	}

	return results, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReasoningRow(scanner rowScanner, id *string) (*reasoning.AIReasoningResult, error) {
	var (
		result            reasoning.AIReasoningResult
		supportingReasons []byte
		riskFactors       []byte
		keyStatistics     []byte
		playerAnalysis    []byte
		marketContext     []byte
		scarcityAnalysis  []byte
	)

	err := scanner.Scan(
		id,
		&result.MomentID,
		&result.Decision,
		&result.ConfidenceScore,
		&result.PrimaryReasoning,
		&supportingReasons,
		&riskFactors,
		&keyStatistics,
		&result.AnalysisVersion,
		&result.Timestamp,
		&playerAnalysis,
		&marketContext,
		&scarcityAnalysis,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning reasoning row: %w", err)
	}

	if err := json.Unmarshal(supportingReasons, &result.SupportingReasons); err != nil {
		return nil, fmt.Errorf("decoding supporting reasons: %w", err)
	}
	if err := json.Unmarshal(riskFactors, &result.RiskFactors); err != nil {
		return nil, fmt.Errorf("decoding risk factors: %w", err)
	}
	if err := json.Unmarshal(keyStatistics, &result.KeyStatistics); err != nil {
		return nil, fmt.Errorf("decoding key statistics: %w", err)
	}
	if len(playerAnalysis) > 0 {
		if err := json.Unmarshal(playerAnalysis, &result.PlayerAnalysis); err != nil {
			return nil, fmt.Errorf("decoding player analysis: %w", err)
		}
	}
	if len(marketContext) > 0 {
		if err := json.Unmarshal(marketContext, &result.MarketContext); err != nil {
			return nil, fmt.Errorf("decoding market context: %w", err)
		}
	}
	if len(scarcityAnalysis) > 0 {
		if err := json.Unmarshal(scarcityAnalysis, &result.ScarcityAnalysis); err != nil {
			return nil, fmt.Errorf("decoding scarcity analysis: %w", err)
		}
	}

	return &result, nil
}

func (r *ReasoningRepository) reasoningFactors(ctx context.Context, reasoningID string) ([]reasoning.ReasoningFactor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT factor_type, name, weight, value, raw_value,
		       impact, confidence, description, supporting_data
		FROM reasoning_factors
		WHERE reasoning_id = $1
		ORDER BY weight DESC`,
		reasoningID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reasoning factors: %w", err)
	}
	defer rows.Close()

	factors := []reasoning.ReasoningFactor{}
	for rows.Next() {
		var (
			factor         reasoning.ReasoningFactor
			factorType     string
			rawValue       sql.NullFloat64
			supportingData []byte
		)
		err := rows.Scan(
			&factorType,
			&factor.Name,
			&factor.Weight,
			&factor.Value,
			&rawValue,
			&factor.Impact,
			&factor.Confidence,
			&factor.Description,
			&supportingData,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning reasoning factor: %w", err)
		}

		factor.FactorType = reasoning.ReasoningFactorType(factorType)
		if rawValue.Valid {
			factor.RawValue = &rawValue.Float64
		}
		if err := json.Unmarshal(supportingData, &factor.SupportingData); err != nil {
			return nil, fmt.Errorf("decoding factor supporting data: %w", err)
		}

		factors = append(factors, factor)
	}
	return factors, rows.Err()
}

// SearchReasoning runs a filtered history query and returns the total match
// count plus one page of records.
func (r *ReasoningRepository) SearchReasoning(ctx context.Context, query *reasoning.SearchQuery) (int, []reasoning.ReasoningHistory, error) {
	conditions := []string{}
	args := []interface{}{}

	if len(query.MomentIDs) > 0 {
		args = append(args, pq.Array(query.MomentIDs))
		conditions = append(conditions, fmt.Sprintf("r.moment_id = ANY($%d)", len(args)))
	}
	if len(query.DecisionTypes) > 0 {
		args = append(args, pq.Array(query.DecisionTypes))
		conditions = append(conditions, fmt.Sprintf("r.decision = ANY($%d)", len(args)))
	}
	if query.DateFrom != nil {
		args = append(args, *query.DateFrom)
		conditions = append(conditions, fmt.Sprintf("r.created_at >= $%d", len(args)))
	}
	if query.DateTo != nil {
		args = append(args, *query.DateTo)
		conditions = append(conditions, fmt.Sprintf("r.created_at <= $%d", len(args)))
	}
	if query.MinConfidence != nil {
		args = append(args, *query.MinConfidence)
		conditions = append(conditions, fmt.Sprintf("r.confidence_score >= $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ai_reasoning r %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("counting reasoning matches: %w", err)
	}

	args = append(args, query.Limit, query.Offset)
	pageQuery := fmt.Sprintf(`
		SELECT r.id, r.moment_id, r.decision, r.confidence_score,
		       r.primary_reasoning, r.supporting_reasons, r.risk_factors,
		       r.key_statistics, r.analysis_version, r.created_at,
		       rc.player_analysis, rc.market_context, rc.scarcity_analysis,
		       r.user_id
		FROM ai_reasoning r
		LEFT JOIN reasoning_context rc ON r.id = rc.reasoning_id
		%s
		ORDER BY r.created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("querying reasoning history: %w", err)
	}
	defer rows.Close()

	histories := []reasoning.ReasoningHistory{}
	for rows.Next() {
		var (
			id                string
			userID            sql.NullString
			result            reasoning.AIReasoningResult
			supportingReasons []byte
			riskFactors       []byte
			keyStatistics     []byte
			playerAnalysis    []byte
			marketContext     []byte
			scarcityAnalysis  []byte
		)
		err := rows.Scan(
			&id,
			&result.MomentID,
			&result.Decision,
			&result.ConfidenceScore,
			&result.PrimaryReasoning,
			&supportingReasons,
			&riskFactors,
			&keyStatistics,
			&result.AnalysisVersion,
			&result.Timestamp,
			&playerAnalysis,
			&marketContext,
			&scarcityAnalysis,
			&userID,
		)
		if err != nil {
			return 0, nil, fmt.Errorf("scanning reasoning history: %w", err)
		}

		if err := json.Unmarshal(supportingReasons, &result.SupportingReasons); err != nil {
			return 0, nil, fmt.Errorf("decoding supporting reasons: %w", err)
		}
		if err := json.Unmarshal(riskFactors, &result.RiskFactors); err != nil {
			return 0, nil, fmt.Errorf("decoding risk factors: %w", err)
		}
		if err := json.Unmarshal(keyStatistics, &result.KeyStatistics); err != nil {
			return 0, nil, fmt.Errorf("decoding key statistics: %w", err)
		}
		if len(playerAnalysis) > 0 {
			if err := json.Unmarshal(playerAnalysis, &result.PlayerAnalysis); err != nil {
				return 0, nil, fmt.Errorf("decoding player analysis: %w", err)
			}
		}
		if len(marketContext) > 0 {
			if err := json.Unmarshal(marketContext, &result.MarketContext); err != nil {
				return 0, nil, fmt.Errorf("decoding market context: %w", err)
			}
		}
		if len(scarcityAnalysis) > 0 {
			if err := json.Unmarshal(scarcityAnalysis, &result.ScarcityAnalysis); err != nil {
				return 0, nil, fmt.Errorf("decoding scarcity analysis: %w", err)
			}
		}

		histories = append(histories, reasoning.ReasoningHistory{
			ID:              id,
			MomentID:        result.MomentID,
			UserID:          userID.String,
			ReasoningResult: result,
		})
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterating reasoning history: %w", err)
	}

	for i := range histories {
		factors, err := r.reasoningFactors(ctx, histories[i].ID)
		if err != nil {
			return 0, nil, err
		}
		histories[i].ReasoningResult.Factors = factors
	}

	return total, histories, nil
}

// SaveOutcome records the actual outcome of a past decision.
func (r *ReasoningRepository) SaveOutcome(ctx context.Context, outcome *reasoning.ReasoningOutcome) error {
	actualOutcome, err := json.Marshal(outcome.ActualOutcome)
	if err != nil {
		return fmt.Errorf("encoding actual outcome: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reasoning_outcomes (reasoning_id, actual_outcome, accuracy_score, recorded_at)
		VALUES ($1, $2, $3, $4)`,
		outcome.ReasoningID, actualOutcome, outcome.AccuracyScore, outcome.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting reasoning outcome: %w", err)
	}
	return nil
}

// DecisionStats returns the decision count and average confidence for a
// period.
func (r *ReasoningRepository) DecisionStats(ctx context.Context, from, to time.Time) (int, float64, error) {
	var (
		total         int
		avgConfidence sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), AVG(confidence_score)
		FROM ai_reasoning
		WHERE created_at BETWEEN $1 AND $2`,
		from, to,
	).Scan(&total, &avgConfidence)
	if err != nil {
		return 0, 0, fmt.Errorf("querying decision stats: %w", err)
	}
	return total, avgConfidence.Float64, nil
}

// AccurateDecisions counts decisions whose recorded outcome scored at least
// 0.7 accuracy.
func (r *ReasoningRepository) AccurateDecisions(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM ai_reasoning r
		JOIN reasoning_outcomes ro ON r.id = ro.reasoning_id
		WHERE r.created_at BETWEEN $1 AND $2
		AND ro.accuracy_score >= 0.7`,
		from, to,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting accurate decisions: %w", err)
	}
	return count, nil
}

// FactorImportance ranks factor types by average absolute impact.
func (r *ReasoningRepository) FactorImportance(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rf.factor_type, AVG(ABS(rf.impact)) AS avg_impact
		FROM reasoning_factors rf
		JOIN ai_reasoning r ON rf.reasoning_id = r.id
		WHERE r.created_at BETWEEN $1 AND $2
		GROUP BY rf.factor_type
		ORDER BY avg_impact DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("querying factor importance: %w", err)
	}
	defer rows.Close()

	importance := map[string]float64{}
	for rows.Next() {
		var (
			factorType string
			avgImpact  float64
		)
		if err := rows.Scan(&factorType, &avgImpact); err != nil {
			return nil, fmt.Errorf("scanning factor importance: %w", err)
		}
		importance[factorType] = avgImpact
	}
	return importance, rows.Err()
}

// ConfidenceAccuracyPairs joins each decision's confidence with the accuracy
// of its recorded outcome.
func (r *ReasoningRepository) ConfidenceAccuracyPairs(ctx context.Context, from, to time.Time) ([]reasoning.ConfidenceAccuracyPair, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.confidence_score, ro.accuracy_score
		FROM ai_reasoning r
		JOIN reasoning_outcomes ro ON r.id = ro.reasoning_id
		WHERE r.created_at BETWEEN $1 AND $2`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("querying confidence outcomes: %w", err)
	}
	defer rows.Close()

	pairs := []reasoning.ConfidenceAccuracyPair{}
	for rows.Next() {
		var pair reasoning.ConfidenceAccuracyPair
		if err := rows.Scan(&pair.Confidence, &pair.Accuracy); err != nil {
			return nil, fmt.Errorf("scanning confidence outcome: %w", err)
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

// ActiveTemplates returns the active reasoning templates.
func (r *ReasoningRepository) ActiveTemplates(ctx context.Context) ([]reasoning.ReasoningTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT template_id, decision_type, template_text,
		       required_variables, optional_variables
		FROM reasoning_templates
		WHERE is_active = true`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reasoning templates: %w", err)
	}
	defer rows.Close()

	templates := []reasoning.ReasoningTemplate{}
	for rows.Next() {
		var (
			template reasoning.ReasoningTemplate
			required []byte
			optional []byte
		)
		if err := rows.Scan(&template.TemplateID, &template.DecisionType, &template.TemplateText, &required, &optional); err != nil {
			return nil, fmt.Errorf("scanning reasoning template: %w", err)
		}
		if err := json.Unmarshal(required, &template.RequiredVariables); err != nil {
			return nil, fmt.Errorf("decoding required variables: %w", err)
		}
		if err := json.Unmarshal(optional, &template.OptionalVariables); err != nil {
			return nil, fmt.Errorf("decoding optional variables: %w", err)
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}
