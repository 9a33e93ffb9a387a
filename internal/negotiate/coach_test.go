package negotiate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/contract/contracttest"
	"github.com/ericksa/lexinegotiate/internal/fault"
)

func TestConverseReplaysHistory(t *testing.T) {
	fake := &fakeChat{raw: `{"text":"Ask for a grace period.","actions":[{"label":"Draft it","type":"email","payload":"grace"}]}`}
	c := NewCoach(fake, nil)

	history := []contract.Turn{
		{Role: contract.RoleUser, Text: "What is my biggest risk?"},
		{Role: contract.RoleModel, Text: "The late fee."},
	}
	reply, err := c.Converse(context.Background(), history, "How do I push back?", "ctx-summary")
	require.NoError(t, err)
	assert.Equal(t, "Ask for a grace period.", reply.Text)
	require.Len(t, reply.Actions, 1)
	assert.Equal(t, contract.ActionEmail, reply.Actions[0].Type)

	require.Len(t, fake.calls, 1)
	req := fake.calls[0]
	assert.Equal(t, history, req.History)
	assert.Equal(t, "How do I push back?", req.Message)
	assert.Contains(t, req.SystemInstruction, "Context: ctx-summary.")
	assert.Contains(t, req.SystemInstruction, "1-2-3 fallback options")
}

func TestConverseBlankMessage(t *testing.T) {
	fake := &fakeChat{}
	c := NewCoach(fake, nil)

	_, err := c.Converse(context.Background(), nil, "   ", "")
	assert.ErrorIs(t, err, fault.ErrInputMissing)
	assert.Empty(t, fake.calls)
}

func TestConverseTransportFailure(t *testing.T) {
	c := NewCoach(&fakeChat{err: errors.New("boom")}, nil)

	_, err := c.Converse(context.Background(), nil, "hi", "")
	assert.ErrorIs(t, err, fault.ErrTransportFailure)
}

func TestDecodeReply(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantText    string
		wantActions []contract.ChatAction
	}{
		{
			name:     "plain prose degrades to text",
			raw:      "Sure, ask for a cap.",
			wantText: "Sure, ask for a cap.",
		},
		{
			name:     "json without text degrades to raw",
			raw:      `{"actions":[]}`,
			wantText: `{"actions":[]}`,
		},
		{
			name:     "unknown action kinds are dropped",
			raw:      `{"text":"ok","actions":[{"label":"Go","type":"navigate"},{"label":"More?","type":"query","payload":"What next?"},{"label":"","type":"legal"}]}`,
			wantText: "ok",
			wantActions: []contract.ChatAction{
				{Label: "More?", Type: contract.ActionQuery, Payload: "What next?"},
			},
		},
		{
			name:     "malformed action is skipped",
			raw:      `{"text":"ok","actions":[{"label":5},{"label":"Stories","type":"success_story"}]}`,
			wantText: "ok",
			wantActions: []contract.ChatAction{
				{Label: "Stories", Type: contract.ActionSuccessStory},
			},
		},
		{
			name:     "actions object instead of array keeps the text",
			raw:      `{"text":"Ask for a cap.","actions":{"label":"Go","type":"query"}}`,
			wantText: "Ask for a cap.",
		},
		{
			name:     "null actions",
			raw:      `{"text":"ok","actions":null}`,
			wantText: "ok",
		},
		{
			name:     "empty response",
			raw:      "",
			wantText: emptyReplyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeReply(tt.raw)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantActions, got.Actions)
		})
	}
}

func TestContractContext(t *testing.T) {
	got := ContractContext(contracttest.Analysis())
	want := "The lease imposes a fixed late-payment penalty well above the legal norm.\n" +
		"Payment Terms / Late Payment Penalty: A flat penalty is disproportionate for a one-day delay and may be unenforceable.\n" +
		"Security Deposit: Return period is longer than usual but not abusive."
	assert.Equal(t, want, got)
	assert.Empty(t, ContractContext(nil))
}
