package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ericksa/lexinegotiate/internal/fault"
)

func str() *Schema { return &Schema{Type: TypeString} }
func num() *Schema { return &Schema{Type: TypeNumber} }

func score() *Schema {
	lo, hi := 0.0, 100.0
	return &Schema{Type: TypeInteger, Minimum: &lo, Maximum: &hi}
}

func enum(values ...string) *Schema { return &Schema{Type: TypeString, Enum: values} }
func list(items *Schema) *Schema    { return &Schema{Type: TypeArray, Items: items} }
func object(fields ...Field) *Schema {
	return &Schema{Type: TypeObject, Fields: fields}
}
func req(name string, s *Schema) Field { return Field{Name: name, Schema: s, Required: true} }
func opt(name string, s *Schema) Field { return Field{Name: name, Schema: s} }

func allRequired(names ...string) *Schema {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = req(n, str())
	}
	return object(fields...)
}

// AnalysisSchema describes a ContractAnalysis document. Every field listed as
// required is enforced on decode; the aggregate totals, the clause
// financial breakdown and the free-text financial impact are optional.
func AnalysisSchema() *Schema {
	email := allRequired("subject", "body")

	strategy := object(
		req("difficulty", enum(string(DifficultyEasy), string(DifficultyMedium), string(DifficultyHard))),
		req("tier1", allRequired("position", "script", "reasoning")),
		req("tier2", allRequired("position", "script", "reasoning", "sweetener")),
		req("tier3", allRequired("bottomLine", "walkAwayAdvice")),
		req("contextTips", str()),
		req("emailOptions", object(
			req(string(ToneFormal), email),
			req(string(ToneProfessionalFriendly), email),
			req(string(ToneCollaborative), email),
		)),
	)

	financials := object(
		req("immediateRisk", num()),
		req("annualExposure", num()),
		req("lifetimeCost", num()),
		req("comparisonSavings", num()),
		req("riskReductionPercentage", num()),
		req("currency", str()),
	)

	clause := object(
		req("id", str()),
		req("category", str()),
		req("originalText", str()),
		req("simplifiedText", str()),
		req("riskLevel", enum(string(RiskHigh), string(RiskMedium), string(RiskLow))),
		req("riskExplanation", str()),
		req("negotiabilityScore", score()),
		req("negotiabilityExplanation", str()),
		req("successStories", list(allRequired("title", "originalClause", "counterProposal", "result", "landlordResponse", "date"))),
		req("stats", object(
			req("successRate", num()),
			req("avgResolutionDays", num()),
			req("commonConcerns", list(str())),
			req("winningArguments", list(str())),
		)),
		req("changeSummary", list(object(
			req("type", enum(string(ChangeDeleted), string(ChangeAdded), string(ChangeClarified))),
			req("originalText", str()),
			req("recommendedText", str()),
			req("impact", str()),
			req("protectionGained", str()),
			req("legalBasis", str()),
		))),
		opt("financialImpact", str()),
		opt("detailedFinancials", financials),
		req("industryStandard", str()),
		req("suggestedCounterProposal", str()),
		req("negotiationScript", str()),
		req("strategy", strategy),
	)

	return object(
		req("riskScore", score()),
		req("summary", str()),
		req("overallRecommendation", str()),
		opt("totalPotentialExposure", num()),
		opt("totalPotentialSavings", num()),
		req("clauses", list(clause)),
	)
}

// DecodeAnalysis turns a raw model response into a validated analysis.
// Invalid JSON is a parse failure; JSON that misses required fields, carries
// unknown enum values or out-of-range scores is a schema violation.
func DecodeAnalysis(raw string) (*ContractAnalysis, error) {
	const op = "decode analysis"

	body := strings.TrimSpace(raw)
	if body == "" {
		return nil, fault.New(fault.KindParseFailure, op, "the model returned an empty response")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fault.Wrap(fault.KindParseFailure, op, err, "the model response is not valid JSON")
	}
	if dec.More() {
		return nil, fault.New(fault.KindParseFailure, op, "the model response has trailing data after the JSON document")
	}

	if violations := AnalysisSchema().Check(doc); len(violations) > 0 {
		return nil, schemaViolation(op, violations)
	}

	// Re-encode the checked document so integral floats such as 72.0 land in
	// int fields.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fault.Wrap(fault.KindParseFailure, op, err, "the model response could not be normalized")
	}
	var analysis ContractAnalysis
	if err := json.Unmarshal(normalized, &analysis); err != nil {
		return nil, fault.Wrap(fault.KindSchemaViolation, op, err, "the model response does not match the analysis shape")
	}

	seen := make(map[string]int, len(analysis.Clauses))
	for i, c := range analysis.Clauses {
		if prev, dup := seen[c.ID]; dup {
			return nil, schemaViolation(op, []Violation{{
				Path:    fmt.Sprintf("clauses[%d].id", i),
				Problem: fmt.Sprintf("duplicate id %q (also clauses[%d])", c.ID, prev),
			}})
		}
		seen[c.ID] = i
	}
	return &analysis, nil
}

func schemaViolation(op string, violations []Violation) error {
	const shown = 3
	parts := make([]string, 0, shown)
	for i, v := range violations {
		if i == shown {
			parts = append(parts, fmt.Sprintf("and %d more", len(violations)-shown))
			break
		}
		parts = append(parts, v.String())
	}
	return fault.New(fault.KindSchemaViolation, op, "the analysis is incomplete or invalid: "+strings.Join(parts, "; "))
}
