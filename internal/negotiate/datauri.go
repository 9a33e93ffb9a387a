package negotiate

import (
	"encoding/base64"
	"strings"

	"github.com/ericksa/lexinegotiate/internal/fault"
)

// DefaultImageMIMEType is assumed when a data URI carries no media type header.
const DefaultImageMIMEType = "image/jpeg"

const base64Marker = ";base64,"

// ParseDataURI splits "data:<mime>;base64,<payload>" into its media type and
// decoded bytes. A URI without a recognizable header is treated as
// image/jpeg; a URI without a comma or with a non-base64 payload is rejected.
func ParseDataURI(uri string) (string, []byte, error) {
	const op = "parse image"

	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return "", nil, imageError(op, "the uploaded file is not a valid data URI", nil)
	}

	mimeType := DefaultImageMIMEType
	if header := uri[:comma+1]; strings.HasPrefix(header, "data:") && strings.HasSuffix(header, base64Marker) {
		if m := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), base64Marker); m != "" {
			mimeType = m
		}
	}

	payload := uri[comma+1:]
	if payload == "" {
		return "", nil, imageError(op, "the uploaded file is empty", nil)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, imageError(op, "the uploaded file is not base64 encoded", err)
	}
	return mimeType, data, nil
}

// EncodeDataURI builds the data URI used as an upload preview.
func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + base64Marker + base64.StdEncoding.EncodeToString(data)
}

func imageError(op, msg string, err error) error {
	return &fault.Error{Kind: fault.KindMalformedImage, Op: op, Message: msg, Image: true, Err: err}
}
