package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/fault"
)

// ShareTitle is the title of every shared analysis.
const ShareTitle = "LexiNegotiate Contract Analysis"

// ShareFallbackMessage is shown when neither sharing nor copying worked.
const ShareFallbackMessage = "Clipboard copy failed. Please copy the URL from your browser."

// ErrShareCancelled is returned by a Sharer when the user dismissed the share
// sheet. It is not a failure.
var ErrShareCancelled = errors.New("share cancelled")

// SharePayload is what gets shared.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url,omitempty"`
}

// ClipboardText is the text copied when native sharing is unavailable.
func (p SharePayload) ClipboardText() string {
	if p.URL == "" {
		return p.Text
	}
	return p.Text + "\n" + p.URL
}

// NewSharePayload summarizes an analysis. The page URL is attached only when
// it is an http(s) URL.
func NewSharePayload(a *contract.ContractAnalysis, pageURL string) SharePayload {
	p := SharePayload{
		Title: ShareTitle,
		Text:  fmt.Sprintf("LexiNegotiate Analysis: Risk Score %d/100. %s", a.RiskScore, a.OverallRecommendation),
	}
	if strings.HasPrefix(pageURL, "http://") || strings.HasPrefix(pageURL, "https://") {
		p.URL = pageURL
	}
	return p
}

// Sharer is a native share facility, such as a desktop share sheet. The
// gateway returns the payload to its client instead of sharing, and lexictl
// has no share sheet so it passes nil and relies on the clipboard. A program
// embedding this package with a real share sheet plugs it in here.
type Sharer interface {
	Share(ctx context.Context, p SharePayload) error
}

// Clipboard copies text.
type Clipboard interface {
	WriteAll(text string) error
}

// ShareMethod records how the payload was delivered.
type ShareMethod string

const (
	SharedNative    ShareMethod = "native"
	SharedClipboard ShareMethod = "clipboard"
	ShareCancelled  ShareMethod = "cancelled"
)

// ShareResult is the outcome of Share.
type ShareResult struct {
	Method  ShareMethod  `json:"method"`
	Payload SharePayload `json:"payload"`
	Message string       `json:"message,omitempty"`
}

// Share tries the native sharer first, then the clipboard. Either may be
// nil. When both fail the error is ShareUnavailable carrying
// ShareFallbackMessage.
func Share(ctx context.Context, p SharePayload, sharer Sharer, clip Clipboard) (ShareResult, error) {
	if sharer != nil {
		err := sharer.Share(ctx, p)
		if err == nil {
			return ShareResult{Method: SharedNative, Payload: p}, nil
		}
		if errors.Is(err, ErrShareCancelled) {
			return ShareResult{Method: ShareCancelled, Payload: p}, nil
		}
	}

	if clip != nil {
		if err := clip.WriteAll(p.ClipboardText()); err == nil {
			return ShareResult{Method: SharedClipboard, Payload: p, Message: "Analysis summary and link copied to clipboard!"}, nil
		}
	}
	return ShareResult{Payload: p}, fault.New(fault.KindShareUnavailable, "share", ShareFallbackMessage)
}
