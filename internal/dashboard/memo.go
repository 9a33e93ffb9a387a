package dashboard

import (
	"fmt"
	"strings"

	"github.com/ericksa/lexinegotiate/internal/contract"
)

// Memo renders the whole analysis as a Markdown negotiation memo.
func Memo(a *contract.ContractAnalysis) string {
	var b strings.Builder
	gauge := NewGauge(a.RiskScore)
	totals := ComputeTotals(a).View()

	b.WriteString("# Contract negotiation memo\n\n")
	fmt.Fprintf(&b, "**Risk score:** %d/100 (%s)\n\n", a.RiskScore, gauge.Message)
	fmt.Fprintf(&b, "%s\n\n", a.Summary)
	fmt.Fprintf(&b, "> %s\n\n", a.OverallRecommendation)

	fmt.Fprintf(&b, "| Potential exposure | Potential savings |\n|---|---|\n| %s | %s |\n\n", totals.ExposureFormatted, totals.SavingsFormatted)
	if totals.Derived {
		b.WriteString("_Totals estimated from clause figures._\n\n")
	}

	for _, c := range a.Clauses {
		writeClause(&b, c, "##")
	}
	return b.String()
}

// ClauseMemo renders a single clause as Markdown.
func ClauseMemo(c contract.Clause) string {
	var b strings.Builder
	writeClause(&b, c, "#")
	return b.String()
}

func writeClause(b *strings.Builder, c contract.Clause, h string) {
	leverage := NewLeverage(c.NegotiabilityScore)

	fmt.Fprintf(b, "%s %s (%s risk)\n\n", h, c.Category, strings.ToLower(string(c.RiskLevel)))
	fmt.Fprintf(b, "%s\n\n", c.RiskExplanation)
	fmt.Fprintf(b, "- **Negotiability:** %d/100, %s. %s\n", c.NegotiabilityScore, leverage.Label, c.NegotiabilityExplanation)
	fmt.Fprintf(b, "- **Difficulty:** %s\n", DifficultyLabel(c.Strategy.Difficulty))
	if f := c.DetailedFinancials; f != nil {
		fmt.Fprintf(b, "- **Immediate risk:** %s, **lifetime cost:** %s, **savings if negotiated:** %s\n",
			FormatCurrency(f.ImmediateRisk, f.Currency),
			FormatCurrency(f.LifetimeCost, f.Currency),
			FormatCurrency(f.ComparisonSavings, f.Currency))
	} else if c.FinancialImpact != "" {
		fmt.Fprintf(b, "- **Financial impact:** %s\n", c.FinancialImpact)
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "%s# Comparison\n\n", h)
	fmt.Fprintf(b, "| Original | Plain language | Industry standard | Counter-proposal |\n|---|---|---|---|\n| %s | %s | %s | %s |\n\n",
		cell(c.OriginalText), cell(c.SimplifiedText), cell(c.IndustryStandard), cell(c.SuggestedCounterProposal))

	s := c.Strategy
	fmt.Fprintf(b, "%s# Strategy\n\n", h)
	fmt.Fprintf(b, "1. **%s.** %s\n   > %s\n\n   %s\n", TierLabels[0], s.Tier1.Position, s.Tier1.Script, s.Tier1.Reasoning)
	fmt.Fprintf(b, "2. **%s.** %s\n   > %s\n\n   %s", TierLabels[1], s.Tier2.Position, s.Tier2.Script, s.Tier2.Reasoning)
	if s.Tier2.Sweetener != "" {
		fmt.Fprintf(b, " Sweetener: %s", s.Tier2.Sweetener)
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "3. **%s.** %s\n   Walk away: %s\n\n", TierLabels[2], s.Tier3.BottomLine, s.Tier3.WalkAwayAdvice)
	if s.ContextTips != "" {
		fmt.Fprintf(b, "_Tip: %s_\n\n", s.ContextTips)
	}
	fmt.Fprintf(b, "**Script:** %s\n\n", c.NegotiationScript)

	if len(c.ChangeSummary) > 0 {
		fmt.Fprintf(b, "%s# Changes\n\n| Change | Original | Recommended | Protection | Legal basis |\n|---|---|---|---|---|\n", h)
		for _, ch := range c.ChangeSummary {
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n", ch.Type, cell(ch.OriginalText), cell(ch.RecommendedText), cell(ch.ProtectionGained), cell(ch.LegalBasis))
		}
		b.WriteString("\n")
	}

	if len(c.SuccessStories) > 0 {
		fmt.Fprintf(b, "%s# Success stories\n\n", h)
		for _, st := range c.SuccessStories {
			fmt.Fprintf(b, "- **%s** (%s): %s. Partner: \"%s\"\n", st.Title, st.Date, st.Result, st.LandlordResponse)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "_%g%% success rate, resolved in %g days on average._\n\n", c.Stats.SuccessRate, c.Stats.AvgResolutionDays)

	if draft, ok := s.EmailOptions.Draft(DefaultTone); ok {
		fmt.Fprintf(b, "%s# Email draft (%s)\n\n**Subject:** %s\n\n%s\n\n", h, ToneLabel(DefaultTone), draft.Subject, draft.Body)
	}
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
