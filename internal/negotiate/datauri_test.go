package negotiate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericksa/lexinegotiate/internal/fault"
)

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantMIME string
		wantData string
	}{
		{"png", "data:image/png;base64,aGVsbG8=", "image/png", "hello"},
		{"pdf", "data:application/pdf;base64,JVBERi0=", "application/pdf", "%PDF-"},
		{"missing header defaults to jpeg", ",aGVsbG8=", DefaultImageMIMEType, "hello"},
		{"header without base64 marker", "data:image/png,aGVsbG8=", DefaultImageMIMEType, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mimeType, data, err := ParseDataURI(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, mimeType)
			assert.Equal(t, tt.wantData, string(data))
		})
	}
}

func TestDataURILiteralRoundTrip(t *testing.T) {
	const uri = "data:image/png;base64,AAAA"

	mimeType, data, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, []byte{0, 0, 0}, data)
	assert.Equal(t, uri, EncodeDataURI(mimeType, data))
}

func TestParseDataURIRejects(t *testing.T) {
	for _, uri := range []string{"no comma at all", "data:image/png;base64,", "data:image/png;base64,***"} {
		_, _, err := ParseDataURI(uri)
		assert.ErrorIs(t, err, fault.ErrMalformedImage, uri)
		assert.True(t, fault.IsImageRelated(err), uri)
	}
}

func TestEncodeDataURIRoundTrip(t *testing.T) {
	uri := EncodeDataURI("image/webp", []byte{1, 2, 3})
	assert.Equal(t, "data:image/webp;base64,AQID", uri)

	mimeType, data, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mimeType)
	assert.Equal(t, []byte{1, 2, 3}, data)
}
