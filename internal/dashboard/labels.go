// Package dashboard turns session state into presentation-ready view models:
// the risk gauge, clause cards, financial totals, email compose links, the
// share payload and the Markdown negotiation memo.
package dashboard

import "github.com/ericksa/lexinegotiate/internal/contract"

// Band is a coarse risk classification of a score.
type Band string

const (
	BandSafe    Band = "safe"
	BandCaution Band = "caution"
	BandHigh    Band = "high"
)

// Gauge is the overall risk dial.
type Gauge struct {
	Score   int    `json:"score"`
	Band    Band   `json:"band"`
	Message string `json:"message"`
}

// NewGauge classifies a 0-100 risk score.
func NewGauge(score int) Gauge {
	switch {
	case score < 30:
		return Gauge{Score: score, Band: BandSafe, Message: "Generally safe terms, standard for industry."}
	case score < 70:
		return Gauge{Score: score, Band: BandCaution, Message: "Proceed with caution. Several points need negotiation."}
	default:
		return Gauge{Score: score, Band: BandHigh, Message: "High risk detected. Major red flags in liability and payment."}
	}
}

// Leverage is how much room a clause leaves for negotiation.
type Leverage struct {
	Score int    `json:"score"`
	Level string `json:"level"`
	// Label is shown in the clause detail; CardLabel on the clause card.
	Label     string `json:"label"`
	CardLabel string `json:"card_label"`
}

// NewLeverage classifies a 0-100 negotiability score.
func NewLeverage(score int) Leverage {
	switch {
	case score >= 70:
		return Leverage{Score: score, Level: "high", Label: "High Leverage", CardLabel: "High Leverage Detected"}
	case score < 30:
		return Leverage{Score: score, Level: "limited", Label: "Limited Room", CardLabel: "Strict Standard"}
	default:
		return Leverage{Score: score, Level: "standard", Label: "Standard Negotiation", CardLabel: "Negotiable with Strategy"}
	}
}

// DifficultyLabel describes a strategy difficulty with its typical success rate.
func DifficultyLabel(d contract.Difficulty) string {
	switch d {
	case contract.DifficultyEasy:
		return "Easy (90% success rate)"
	case contract.DifficultyMedium:
		return "Medium (60% success rate)"
	case contract.DifficultyHard:
		return "Hard (30% success rate)"
	}
	return string(d)
}

// ToneLabel is the display name of an email tone.
func ToneLabel(t contract.Tone) string {
	switch t {
	case contract.ToneFormal:
		return "Formal"
	case contract.ToneProfessionalFriendly:
		return "Friendly Pro"
	case contract.ToneCollaborative:
		return "Collaborative"
	}
	return string(t)
}

// TierLabels name the three negotiation tiers in order.
var TierLabels = [3]string{"Tier 1: Ideal", "Tier 2: Compromise", "Tier 3: Minimum"}
