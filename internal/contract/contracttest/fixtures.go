// Package contracttest provides analysis fixtures shared by tests.
package contracttest

import (
	"encoding/json"

	"github.com/ericksa/lexinegotiate/internal/contract"
)

// LatePaymentText is a one-line lease excerpt with a penalty clause.
const LatePaymentText = "Tenant shall pay a penalty of 500 EUR for any late payment."

// Analysis returns a complete analysis of LatePaymentText with two clauses.
func Analysis() *contract.ContractAnalysis {
	return &contract.ContractAnalysis{
		RiskScore:             72,
		Summary:               "The lease imposes a fixed late-payment penalty well above the legal norm.",
		OverallRecommendation: "Negotiate the penalty down to a proportional interest charge before signing.",
		Clauses: []contract.Clause{
			penaltyClause(),
			depositClause(),
		},
	}
}

// AnalysisJSON is Analysis encoded the way the model returns it.
func AnalysisJSON() string {
	b, err := json.Marshal(Analysis())
	if err != nil {
		panic(err)
	}
	return string(b)
}

// AnalysisDocument is Analysis decoded into generic JSON values, ready to be
// mutated by tests before re-encoding.
func AnalysisDocument() map[string]any {
	var doc map[string]any
	if err := json.Unmarshal([]byte(AnalysisJSON()), &doc); err != nil {
		panic(err)
	}
	return doc
}

func penaltyClause() contract.Clause {
	return contract.Clause{
		ID:              "late-payment-penalty",
		Category:        "Payment Terms / Late Payment Penalty",
		OriginalText:    LatePaymentText,
		SimplifiedText:  "Every late payment costs you a flat 500 EUR, however late it is.",
		RiskLevel:       contract.RiskHigh,
		RiskExplanation: "A flat penalty is disproportionate for a one-day delay and may be unenforceable.",
		FinancialImpact: "Up to 6,000 EUR per year if rent is late every month.",
		DetailedFinancials: &contract.FinancialImpact{
			ImmediateRisk:           500,
			AnnualExposure:          6000,
			LifetimeCost:            18000,
			ComparisonSavings:       5400,
			RiskReductionPercentage: 90,
			Currency:                "€",
		},
		IndustryStandard:         "Late fees are usually capped at the legal interest rate on the overdue amount.",
		SuggestedCounterProposal: "Late payments accrue interest at the legal rate after a 10-day grace period.",
		NegotiationScript:        "I'd like to clarify the late-payment clause so it reflects the legal interest rate.",
		Strategy: contract.NegotiationStrategy{
			Difficulty: contract.DifficultyMedium,
			Tier1: contract.NegotiationTier{
				Position:  "Replace the penalty with legal-rate interest",
				Script:    "Could we align the late fee with the legal interest rate?",
				Reasoning: "Fixed penalties are routinely struck down.",
			},
			Tier2: contract.NegotiationTier{
				Position:  "Cap the penalty at 50 EUR after a grace period",
				Script:    "Would a 50 EUR fee after ten days work for you?",
				Reasoning: "Keeps a deterrent while staying proportionate.",
				Sweetener: "Offer automatic bank transfer on the 1st.",
			},
			Tier3: contract.BottomLine{
				BottomLine:     "Any penalty must include a grace period.",
				WalkAwayAdvice: "Walk away if the landlord insists on an immediate flat fee.",
			},
			ContextTips: "Frame this as a clarification of how lateness is measured.",
			EmailOptions: contract.EmailOptions{
				Formal:               contract.EmailTemplate{Subject: "Clarification of clause 4", Body: "Dear Sir or Madam, ..."},
				ProfessionalFriendly: contract.EmailTemplate{Subject: "Quick question on late fees", Body: "Hi, before signing I'd like to clarify..."},
				Collaborative:        contract.EmailTemplate{Subject: "Finding a fair late-fee rule", Body: "Hello, I'd love to find a rule that works for both of us..."},
			},
		},
		NegotiabilityScore:       78,
		NegotiabilityExplanation: "Landlords rarely defend flat penalties once challenged.",
		ChangeSummary: []contract.ChangeSummaryItem{{
			Type:             contract.ChangeClarified,
			OriginalText:     "a penalty of 500 EUR",
			RecommendedText:  "interest at the legal rate after 10 days",
			Impact:           "Removes the flat fee.",
			ProtectionGained: "Proportional cost for short delays.",
			LegalBasis:       "Civil Code art. 1231-5",
		}},
		SuccessStories: []contract.SuccessStory{{
			Title:            "Freelance lease in Lyon (Mar 2025)",
			OriginalClause:   "300 EUR late fee",
			CounterProposal:  "Legal interest after 7 days",
			Result:           "Accepted after one email exchange",
			LandlordResponse: "Fine, that's fair.",
			Date:             "March 2025",
		}},
		Stats: contract.Statistics{
			SuccessRate:       64,
			AvgResolutionDays: 5,
			CommonConcerns:    []string{"Cash flow"},
			WinningArguments:  []string{"Proportionality"},
		},
	}
}

func depositClause() contract.Clause {
	c := penaltyClause()
	c.ID = "security-deposit"
	c.Category = "Security Deposit"
	c.OriginalText = "The deposit is returned within 90 days."
	c.RiskLevel = contract.RiskLow
	c.RiskExplanation = "Return period is longer than usual but not abusive."
	c.FinancialImpact = ""
	c.DetailedFinancials = &contract.FinancialImpact{
		ImmediateRisk:           0,
		AnnualExposure:          0,
		LifetimeCost:            1200,
		ComparisonSavings:       300,
		RiskReductionPercentage: 25,
		Currency:                "€",
	}
	c.Strategy.Difficulty = contract.DifficultyEasy
	c.NegotiabilityScore = 25
	c.NegotiationScript = "Could the deposit be returned within 30 days?"
	return c
}
