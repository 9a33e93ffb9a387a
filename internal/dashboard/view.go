package dashboard

import (
	"time"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/session"
)

// ImageRetryHint is shown with image-related analysis failures.
const ImageRetryHint = "The document could not be processed. Try copying the text instead or ensure the image is clear."

// FinancialsView is a clause breakdown with formatted amounts.
type FinancialsView struct {
	contract.FinancialImpact
	ImmediateRiskFormatted     string `json:"immediate_risk_formatted"`
	AnnualExposureFormatted    string `json:"annual_exposure_formatted"`
	LifetimeCostFormatted      string `json:"lifetime_cost_formatted"`
	ComparisonSavingsFormatted string `json:"comparison_savings_formatted"`
}

func newFinancialsView(f *contract.FinancialImpact) *FinancialsView {
	if f == nil {
		return nil
	}
	return &FinancialsView{
		FinancialImpact:            *f,
		ImmediateRiskFormatted:     FormatCurrency(f.ImmediateRisk, f.Currency),
		AnnualExposureFormatted:    FormatCurrency(f.AnnualExposure, f.Currency),
		LifetimeCostFormatted:      FormatCurrency(f.LifetimeCost, f.Currency),
		ComparisonSavingsFormatted: FormatCurrency(f.ComparisonSavings, f.Currency),
	}
}

// ClauseCard is the summary of one clause on the dashboard.
type ClauseCard struct {
	ID              string             `json:"id"`
	Category        string             `json:"category"`
	RiskLevel       contract.RiskLevel `json:"risk_level"`
	RiskExplanation string             `json:"risk_explanation"`
	SimplifiedText  string             `json:"simplified_text"`
	FinancialImpact string             `json:"financial_impact,omitempty"`
	Financials      *FinancialsView    `json:"financials,omitempty"`
	Leverage        Leverage           `json:"leverage"`
	Difficulty      string             `json:"difficulty"`
	Script          string             `json:"script"`
	Playing         bool               `json:"playing"`
}

// NewClauseCard builds the card of a clause.
func NewClauseCard(c contract.Clause) ClauseCard {
	return ClauseCard{
		ID:              c.ID,
		Category:        c.Category,
		RiskLevel:       c.RiskLevel,
		RiskExplanation: c.RiskExplanation,
		SimplifiedText:  c.SimplifiedText,
		FinancialImpact: c.FinancialImpact,
		Financials:      newFinancialsView(c.DetailedFinancials),
		Leverage:        NewLeverage(c.NegotiabilityScore),
		Difficulty:      DifficultyLabel(c.Strategy.Difficulty),
		Script:          c.NegotiationScript,
	}
}

// TierView is one rung of the negotiation ladder.
type TierView struct {
	Label     string `json:"label"`
	Position  string `json:"position"`
	Script    string `json:"script,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	Sweetener string `json:"sweetener,omitempty"`
	WalkAway  string `json:"walk_away,omitempty"`
}

// ClauseDetail is the comparison and negotiation view of one clause.
type ClauseDetail struct {
	ClauseCard
	OriginalText             string                       `json:"original_text"`
	IndustryStandard         string                       `json:"industry_standard"`
	SuggestedCounterProposal string                       `json:"suggested_counter_proposal"`
	NegotiabilityExplanation string                       `json:"negotiability_explanation"`
	Tiers                    [3]TierView                  `json:"tiers"`
	ContextTips              string                       `json:"context_tips"`
	Emails                   map[contract.Tone]EmailLink  `json:"emails"`
	ChangeSummary            []contract.ChangeSummaryItem `json:"change_summary"`
	SuccessStories           []contract.SuccessStory      `json:"success_stories"`
	Stats                    contract.Statistics          `json:"stats"`
}

// NewClauseDetail builds the detail view, with compose links for every tone
// opened in client.
func NewClauseDetail(c contract.Clause, client MailClient) ClauseDetail {
	s := c.Strategy
	d := ClauseDetail{
		ClauseCard:               NewClauseCard(c),
		OriginalText:             c.OriginalText,
		IndustryStandard:         c.IndustryStandard,
		SuggestedCounterProposal: c.SuggestedCounterProposal,
		NegotiabilityExplanation: c.NegotiabilityExplanation,
		Tiers: [3]TierView{
			{Label: TierLabels[0], Position: s.Tier1.Position, Script: s.Tier1.Script, Reasoning: s.Tier1.Reasoning},
			{Label: TierLabels[1], Position: s.Tier2.Position, Script: s.Tier2.Script, Reasoning: s.Tier2.Reasoning, Sweetener: s.Tier2.Sweetener},
			{Label: TierLabels[2], Position: s.Tier3.BottomLine, WalkAway: s.Tier3.WalkAwayAdvice},
		},
		ContextTips:    s.ContextTips,
		Emails:         make(map[contract.Tone]EmailLink, 3),
		ChangeSummary:  c.ChangeSummary,
		SuccessStories: c.SuccessStories,
		Stats:          c.Stats,
	}
	for _, tone := range []contract.Tone{contract.ToneFormal, contract.ToneProfessionalFriendly, contract.ToneCollaborative} {
		if link, err := NewEmailLink(c, tone, client); err == nil {
			d.Emails[tone] = link
		}
	}
	return d
}

// FailureView is the last analysis error.
type FailureView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Image   bool   `json:"image"`
	Hint    string `json:"hint,omitempty"`
}

// UploadView describes the upload preview without its payload.
type UploadView struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	IsPDF    bool   `json:"is_pdf"`
	DataURI  string `json:"data_uri,omitempty"`
}

// AnalysisView is the dashboard of a ready session.
type AnalysisView struct {
	Gauge                 Gauge        `json:"gauge"`
	Summary               string       `json:"summary"`
	OverallRecommendation string       `json:"overall_recommendation"`
	Totals                TotalsView   `json:"totals"`
	Clauses               []ClauseCard `json:"clauses"`
}

// NewAnalysisView builds the dashboard of an analysis.
func NewAnalysisView(a *contract.ContractAnalysis, playingClause string) *AnalysisView {
	if a == nil {
		return nil
	}
	v := &AnalysisView{
		Gauge:                 NewGauge(a.RiskScore),
		Summary:               a.Summary,
		OverallRecommendation: a.OverallRecommendation,
		Totals:                ComputeTotals(a).View(),
		Clauses:               make([]ClauseCard, 0, len(a.Clauses)),
	}
	for _, c := range a.Clauses {
		card := NewClauseCard(c)
		card.Playing = c.ID == playingClause
		v.Clauses = append(v.Clauses, card)
	}
	return v
}

// SessionView is everything a client needs to render a session.
type SessionView struct {
	ID               string                 `json:"id"`
	Phase            session.Phase          `json:"phase"`
	InputText        string                 `json:"input_text"`
	Upload           *UploadView            `json:"upload,omitempty"`
	Analysis         *AnalysisView          `json:"analysis,omitempty"`
	Error            *FailureView           `json:"error,omitempty"`
	Chat             []contract.ChatMessage `json:"chat"`
	ChatSending      bool                   `json:"chat_sending"`
	SpeechPlaying    bool                   `json:"speech_playing"`
	StarterQuestions []string               `json:"starter_questions,omitempty"`
	LastSeen         time.Time              `json:"last_seen"`
}

// NewSessionView renders a session snapshot. starters are offered while the
// transcript is empty; includePreview controls whether the upload data URI
// is echoed back.
func NewSessionView(st session.State, starters []string, includePreview bool) SessionView {
	v := SessionView{
		ID:            st.ID,
		Phase:         st.Phase,
		InputText:     st.InputText,
		Analysis:      NewAnalysisView(st.Analysis, st.SpeechClause),
		Chat:          st.Chat,
		ChatSending:   st.ChatSending,
		SpeechPlaying: st.SpeechPlaying,
		LastSeen:      st.LastSeen,
	}
	if v.Chat == nil {
		v.Chat = []contract.ChatMessage{}
	}
	if st.Upload != nil {
		v.Upload = &UploadView{Name: st.Upload.Name, MIMEType: st.Upload.MIMEType, IsPDF: st.Upload.IsPDF()}
		if includePreview {
			v.Upload.DataURI = st.Upload.DataURI
		}
	}
	if st.Failure != nil {
		v.Error = &FailureView{Kind: string(st.Failure.Kind), Message: st.Failure.Message, Image: st.Failure.Image}
		if st.Failure.Image {
			v.Error.Hint = ImageRetryHint
		}
	}
	if st.Phase == session.PhaseReady && len(st.Chat) == 0 {
		v.StarterQuestions = starters
	}
	return v
}
