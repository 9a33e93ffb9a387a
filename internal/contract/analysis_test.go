package contract_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/contract/contracttest"
	"github.com/ericksa/lexinegotiate/internal/fault"
)

func encode(t *testing.T, doc map[string]any) string {
	t.Helper()
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(b)
}

func firstClause(doc map[string]any) map[string]any {
	return doc["clauses"].([]any)[0].(map[string]any)
}

func TestDecodeAnalysis_Valid(t *testing.T) {
	got, err := contract.DecodeAnalysis(contracttest.AnalysisJSON())
	require.NoError(t, err)

	if diff := cmp.Diff(contracttest.Analysis(), got); diff != "" {
		t.Fatalf("decoded analysis mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, got.TotalPotentialExposure)
}

func TestDecodeAnalysis_LatePaymentScenario(t *testing.T) {
	got, err := contract.DecodeAnalysis(contracttest.AnalysisJSON())
	require.NoError(t, err)

	var matched bool
	for _, c := range got.Clauses {
		category := strings.ToLower(c.Category)
		if (strings.Contains(category, "payment") || strings.Contains(category, "penalty")) &&
			c.DetailedFinancials != nil && c.DetailedFinancials.ImmediateRisk > 0 {
			matched = true
		}
	}
	assert.True(t, matched, "expected a payment/penalty clause with positive immediate risk")
}

func TestDecodeAnalysis_IntegralFloatScores(t *testing.T) {
	raw := strings.Replace(contracttest.AnalysisJSON(), `"riskScore":72`, `"riskScore":72.0`, 1)

	got, err := contract.DecodeAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, 72, got.RiskScore)
}

func TestDecodeAnalysis_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		path   string
	}{
		{
			name:   "unknown risk level",
			mutate: func(doc map[string]any) { firstClause(doc)["riskLevel"] = "CRITICAL" },
			path:   "clauses[0].riskLevel",
		},
		{
			name:   "lowercase risk level is not coerced",
			mutate: func(doc map[string]any) { firstClause(doc)["riskLevel"] = "high" },
			path:   "clauses[0].riskLevel",
		},
		{
			name:   "risk score above range",
			mutate: func(doc map[string]any) { doc["riskScore"] = 101 },
			path:   "riskScore",
		},
		{
			name:   "negative negotiability score",
			mutate: func(doc map[string]any) { firstClause(doc)["negotiabilityScore"] = -1 },
			path:   "clauses[0].negotiabilityScore",
		},
		{
			name:   "fractional score",
			mutate: func(doc map[string]any) { firstClause(doc)["negotiabilityScore"] = 55.5 },
			path:   "clauses[0].negotiabilityScore",
		},
		{
			name:   "missing summary",
			mutate: func(doc map[string]any) { delete(doc, "summary") },
			path:   "summary",
		},
		{
			name: "missing nested strategy tier",
			mutate: func(doc map[string]any) {
				delete(firstClause(doc)["strategy"].(map[string]any), "tier3")
			},
			path: "clauses[0].strategy.tier3",
		},
		{
			name: "missing sweetener on tier 2",
			mutate: func(doc map[string]any) {
				tier2 := firstClause(doc)["strategy"].(map[string]any)["tier2"].(map[string]any)
				delete(tier2, "sweetener")
			},
			path: "clauses[0].strategy.tier2.sweetener",
		},
		{
			name: "partial financial breakdown",
			mutate: func(doc map[string]any) {
				delete(firstClause(doc)["detailedFinancials"].(map[string]any), "currency")
			},
			path: "clauses[0].detailedFinancials.currency",
		},
		{
			name:   "unknown change type",
			mutate: func(doc map[string]any) { firstClause(doc)["changeSummary"].([]any)[0].(map[string]any)["type"] = "rewritten" },
			path:   "clauses[0].changeSummary[0].type",
		},
		{
			name:   "clauses not an array",
			mutate: func(doc map[string]any) { doc["clauses"] = "none" },
			path:   "clauses",
		},
		{
			name: "duplicate clause id",
			mutate: func(doc map[string]any) {
				clauses := doc["clauses"].([]any)
				clauses[1].(map[string]any)["id"] = firstClause(doc)["id"]
			},
			path: "clauses[1].id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := contracttest.AnalysisDocument()
			tt.mutate(doc)

			got, err := contract.DecodeAnalysis(encode(t, doc))
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, fault.ErrSchemaViolation)
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

func TestDecodeAnalysis_OptionalFieldsMayBeAbsent(t *testing.T) {
	doc := contracttest.AnalysisDocument()
	delete(firstClause(doc), "detailedFinancials")
	delete(firstClause(doc), "financialImpact")

	got, err := contract.DecodeAnalysis(encode(t, doc))
	require.NoError(t, err)
	assert.Nil(t, got.Clauses[0].DetailedFinancials)
}

func TestDecodeAnalysis_OptionalFieldsMayBeNull(t *testing.T) {
	doc := contracttest.AnalysisDocument()
	doc["totalPotentialExposure"] = nil
	doc["totalPotentialSavings"] = nil
	firstClause(doc)["detailedFinancials"] = nil
	firstClause(doc)["financialImpact"] = nil

	raw := encode(t, doc)
	require.Contains(t, raw, `"totalPotentialExposure":null`)

	got, err := contract.DecodeAnalysis(raw)
	require.NoError(t, err)
	assert.Nil(t, got.TotalPotentialExposure)
	assert.Nil(t, got.TotalPotentialSavings)
	assert.Nil(t, got.Clauses[0].DetailedFinancials)
	assert.Empty(t, got.Clauses[0].FinancialImpact)
}

func TestDecodeAnalysis_RequiredFieldMayNotBeNull(t *testing.T) {
	doc := contracttest.AnalysisDocument()
	doc["summary"] = nil

	_, err := contract.DecodeAnalysis(encode(t, doc))
	assert.ErrorIs(t, err, fault.ErrSchemaViolation)
	assert.Contains(t, err.Error(), "summary: expected string, got null")
}

func TestDecodeAnalysis_ParseFailures(t *testing.T) {
	for _, raw := range []string{"", "   ", "I cannot analyze this document.", `{"riskScore": 10`, `{} {}`} {
		_, err := contract.DecodeAnalysis(raw)
		assert.ErrorIs(t, err, fault.ErrParseFailure, "input %q", raw)
	}
}

func TestAnalysisSchema_RequiredLists(t *testing.T) {
	s := contract.AnalysisSchema()
	assert.Equal(t, []string{"riskScore", "summary", "overallRecommendation", "clauses"}, s.Required())

	clause := s.Fields[len(s.Fields)-1].Schema.Items
	assert.NotContains(t, clause.Required(), "detailedFinancials")
	assert.Contains(t, clause.Required(), "successStories")
	assert.Contains(t, clause.Required(), "strategy")
}

func TestSchemaSkeleton(t *testing.T) {
	skeleton := contract.AnalysisSchema().Skeleton()

	assert.Contains(t, skeleton, `"riskLevel": "HIGH" | "MEDIUM" | "LOW"`)
	assert.Contains(t, skeleton, `"riskScore": integer (0-100)`)
	assert.Contains(t, skeleton, `"commonConcerns": ["..."]`)
}
