// Package contract holds the typed contract analysis produced by the model and
// the schema that every analysis response must satisfy.
package contract

// RiskLevel grades a clause.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// Difficulty grades how hard a clause is to renegotiate.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ChangeType is the kind of a single redline.
type ChangeType string

const (
	ChangeDeleted   ChangeType = "deleted"
	ChangeAdded     ChangeType = "added"
	ChangeClarified ChangeType = "clarified"
)

// Tone selects one of the three email drafts.
type Tone string

const (
	ToneFormal               Tone = "formal"
	ToneProfessionalFriendly Tone = "professionalFriendly"
	ToneCollaborative        Tone = "collaborative"
)

// ContractAnalysis is the result of one analysis call. It is replaced
// wholesale on re-analysis and never edited in place.
type ContractAnalysis struct {
	RiskScore              int      `json:"riskScore"`
	Summary                string   `json:"summary"`
	OverallRecommendation  string   `json:"overallRecommendation"`
	TotalPotentialExposure *float64 `json:"totalPotentialExposure,omitempty"`
	TotalPotentialSavings  *float64 `json:"totalPotentialSavings,omitempty"`
	Clauses                []Clause `json:"clauses"`
}

// Clause finds a clause by id.
func (a *ContractAnalysis) Clause(id string) (Clause, bool) {
	for _, c := range a.Clauses {
		if c.ID == id {
			return c, true
		}
	}
	return Clause{}, false
}

type Clause struct {
	ID                       string              `json:"id"`
	Category                 string              `json:"category"`
	OriginalText             string              `json:"originalText"`
	SimplifiedText           string              `json:"simplifiedText"`
	RiskLevel                RiskLevel           `json:"riskLevel"`
	RiskExplanation          string              `json:"riskExplanation"`
	FinancialImpact          string              `json:"financialImpact,omitempty"`
	DetailedFinancials       *FinancialImpact    `json:"detailedFinancials,omitempty"`
	IndustryStandard         string              `json:"industryStandard"`
	SuggestedCounterProposal string              `json:"suggestedCounterProposal"`
	NegotiationScript        string              `json:"negotiationScript"`
	Strategy                 NegotiationStrategy `json:"strategy"`
	NegotiabilityScore       int                 `json:"negotiabilityScore"`
	NegotiabilityExplanation string              `json:"negotiabilityExplanation"`
	ChangeSummary            []ChangeSummaryItem `json:"changeSummary"`
	SuccessStories           []SuccessStory      `json:"successStories"`
	Stats                    Statistics          `json:"stats"`
}

type FinancialImpact struct {
	ImmediateRisk           float64 `json:"immediateRisk"`
	AnnualExposure          float64 `json:"annualExposure"`
	LifetimeCost            float64 `json:"lifetimeCost"`
	ComparisonSavings       float64 `json:"comparisonSavings"`
	RiskReductionPercentage float64 `json:"riskReductionPercentage"`
	Currency                string  `json:"currency"`
}

// NegotiationTier is an ask with its script. Sweetener is only set on tier 2.
type NegotiationTier struct {
	Position  string `json:"position"`
	Script    string `json:"script"`
	Reasoning string `json:"reasoning"`
	Sweetener string `json:"sweetener,omitempty"`
}

// BottomLine is the walk-away tier.
type BottomLine struct {
	BottomLine     string `json:"bottomLine"`
	WalkAwayAdvice string `json:"walkAwayAdvice"`
}

type EmailTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type EmailOptions struct {
	Formal               EmailTemplate `json:"formal"`
	ProfessionalFriendly EmailTemplate `json:"professionalFriendly"`
	Collaborative        EmailTemplate `json:"collaborative"`
}

// Draft returns the email for a tone.
func (o EmailOptions) Draft(t Tone) (EmailTemplate, bool) {
	switch t {
	case ToneFormal:
		return o.Formal, true
	case ToneProfessionalFriendly:
		return o.ProfessionalFriendly, true
	case ToneCollaborative:
		return o.Collaborative, true
	default:
		return EmailTemplate{}, false
	}
}

type NegotiationStrategy struct {
	Difficulty   Difficulty      `json:"difficulty"`
	Tier1        NegotiationTier `json:"tier1"`
	Tier2        NegotiationTier `json:"tier2"`
	Tier3        BottomLine      `json:"tier3"`
	ContextTips  string          `json:"contextTips"`
	EmailOptions EmailOptions    `json:"emailOptions"`
}

type ChangeSummaryItem struct {
	Type             ChangeType `json:"type"`
	OriginalText     string     `json:"originalText"`
	RecommendedText  string     `json:"recommendedText"`
	Impact           string     `json:"impact"`
	ProtectionGained string     `json:"protectionGained"`
	LegalBasis       string     `json:"legalBasis"`
}

// SuccessStory is an illustrative, anonymized negotiation outcome.
type SuccessStory struct {
	Title            string `json:"title"`
	OriginalClause   string `json:"originalClause"`
	CounterProposal  string `json:"counterProposal"`
	Result           string `json:"result"`
	LandlordResponse string `json:"landlordResponse"`
	Date             string `json:"date"`
}

type Statistics struct {
	SuccessRate       float64  `json:"successRate"`
	AvgResolutionDays float64  `json:"avgResolutionDays"`
	CommonConcerns    []string `json:"commonConcerns"`
	WinningArguments  []string `json:"winningArguments"`
}
