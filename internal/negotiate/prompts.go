package negotiate

import (
	"strings"

	"github.com/ericksa/lexinegotiate/internal/contract"
)

// AdditionalTextHeader prefixes pasted contract text sent alongside the prompt.
const AdditionalTextHeader = "ADDITIONAL TEXT CONTENT FROM CONTRACT:\n"

// SpeechInstructionPrefix is prepended to every negotiation script read aloud.
const SpeechInstructionPrefix = "Read this negotiation script professionally: "

// StarterQuestions are offered before the first chat message.
var StarterQuestions = []string{
	"Is this legal in France?",
	"They rejected my counter-offer",
	"What is my biggest risk?",
}

// AnalysisPrompt is the instruction sent with every analysis request. The JSON
// skeleton is rendered from the same schema used to validate the response.
func AnalysisPrompt() string {
	var b strings.Builder
	b.WriteString("Analyze the following contract. Provide a detailed risk assessment, a precise FINANCIAL IMPACT CALCULATOR, ")
	b.WriteString("a sophisticated 3-TIER NEGOTIATION STRATEGY, and a NEGOTIABILITY SCORE (0-100) for each problematic clause.\n\n")
	b.WriteString("Additionally, generate:\n")
	b.WriteString("1. A GRANULAR CHANGE SUMMARY for each clause mapping specific phrases to counter-proposals.\n")
	b.WriteString("2. ANONYMIZED SUCCESS STORIES (2 per clause) of similar successful negotiations.\n")
	b.WriteString("3. NEGOTIATION STATISTICS for the clause type (success rate, avg resolution days, common concerns).\n\n")
	b.WriteString("Give every clause a unique id. Use the exact upper-case values for riskLevel and difficulty.\n\n")
	b.WriteString("The JSON must follow this structure:\n")
	b.WriteString(contract.AnalysisSchema().Skeleton())
	return b.String()
}

// ChatInstruction is the coach persona with the contract context embedded.
func ChatInstruction(contractContext string) string {
	return `You are an empathetic mentor and expert contract negotiator.
Context: ` + contractContext + `.

Your personality: Professional, encouraging, firm but diplomatic.
Rules:
1. Responses should be concise (2-4 sentences) unless depth is requested.
2. If asked about rejections, provide concrete 1-2-3 fallback options.
3. If asked about legality (especially French Law like ALUR), provide specific article references if possible.
4. Always encourage the user to frame changes as 'clarifications' rather than 'demands' to maintain leverage.

RESPONSE FORMAT: You MUST return a JSON object with:
{
  "text": "Your helpful response string here...",
  "actions": [
    {"label": "Generate email for this", "type": "email", "payload": "context string"},
    {"label": "Explain the legal basis", "type": "legal", "payload": "topic"},
    {"label": "Show success stories", "type": "success_story"},
    {"label": "Another query", "type": "query", "payload": "Suggested follow up question"}
  ]
}

Always suggest 2-3 relevant action buttons.`
}

// ContractContext condenses an analysis for the coach: the summary, then one
// "category: risk explanation" line per clause.
func ContractContext(a *contract.ContractAnalysis) string {
	if a == nil {
		return ""
	}
	lines := make([]string, 0, len(a.Clauses))
	for _, c := range a.Clauses {
		lines = append(lines, c.Category+": "+c.RiskExplanation)
	}
	return a.Summary + "\n" + strings.Join(lines, "\n")
}
