package dashboard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/fault"
)

// MailClient selects how an email draft is opened.
type MailClient string

const (
	ClientGmail   MailClient = "gmail"
	ClientOutlook MailClient = "outlook"
)

// DefaultTone is the email tone selected when none is given.
const DefaultTone = contract.ToneProfessionalFriendly

// EmailLink is a ready-to-open compose link for one clause draft.
type EmailLink struct {
	ClauseID string                 `json:"clause_id"`
	Tone     contract.Tone          `json:"tone"`
	Client   MailClient             `json:"client"`
	Template contract.EmailTemplate `json:"template"`
	URL      string                 `json:"url"`
}

// encodeComponent percent-encodes s for use in a URL query value, with
// spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// ComposeURL builds the compose link for a template. Unknown clients fall
// back to a mailto link.
func ComposeURL(client MailClient, t contract.EmailTemplate) string {
	subject, body := encodeComponent(t.Subject), encodeComponent(t.Body)
	if client == ClientGmail {
		return "https://mail.google.com/mail/?view=cm&fs=1&su=" + subject + "&body=" + body
	}
	return "mailto:?subject=" + subject + "&body=" + body
}

// NewEmailLink picks the clause draft for tone (default professionalFriendly)
// and builds its compose link (default outlook, i.e. mailto).
func NewEmailLink(c contract.Clause, tone contract.Tone, client MailClient) (EmailLink, error) {
	if tone == "" {
		tone = DefaultTone
	}
	if client == "" {
		client = ClientOutlook
	}
	if client != ClientGmail && client != ClientOutlook {
		return EmailLink{}, fault.New(fault.KindInputMissing, "email", fmt.Sprintf("unknown mail client %q", client))
	}
	tmpl, ok := c.Strategy.EmailOptions.Draft(tone)
	if !ok {
		return EmailLink{}, fault.New(fault.KindInputMissing, "email", fmt.Sprintf("unknown tone %q", tone))
	}
	return EmailLink{
		ClauseID: c.ID,
		Tone:     tone,
		Client:   client,
		Template: tmpl,
		URL:      ComposeURL(client, tmpl),
	}, nil
}
