package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ericksa/lexinegotiate/internal/dashboard"
	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/logging"
	"github.com/ericksa/lexinegotiate/internal/negotiate"
)

func TestReadInputText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lease.txt")
	require.NoError(t, os.WriteFile(path, []byte("Clause 4: late fees."), 0o644))

	in, err := readInput("Preamble.", path)
	require.NoError(t, err)
	assert.Equal(t, "Preamble.\n\nClause 4: late fees.", in.Text)
	assert.Empty(t, in.Image)
}

func TestReadInputDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lease.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\n..."), 0o644))

	in, err := readInput("", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(in.Image, "data:application/pdf;base64,"), in.Image)
}

func TestReadInputRejectsUnknownBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lease.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0x03}, 0o644))

	_, err := readInput("", path)
	assert.ErrorIs(t, err, fault.ErrMalformedImage)

	_, err = readInput("", filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestPrintMemo(t *testing.T) {
	var raw bytes.Buffer
	require.NoError(t, printMemo(&raw, "# Memo\n\n**Risk score:** 72/100\n", true))
	assert.Equal(t, "# Memo\n\n**Risk score:** 72/100\n", raw.String())

	out, err := renderMemo("# Memo\n\n**Risk score:** 72/100\n", "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "72/100")
}

func TestShareMessage(t *testing.T) {
	res := dashboard.ShareResult{Method: dashboard.SharedClipboard, Message: "Analysis summary and link copied to clipboard!"}
	assert.Equal(t, "Analysis summary and link copied to clipboard!", shareMessage(res, nil))

	err := fault.New(fault.KindShareUnavailable, "share", dashboard.ShareFallbackMessage)
	assert.Equal(t, dashboard.ShareFallbackMessage, shareMessage(dashboard.ShareResult{}, err))
	assert.Equal(t, "boom", shareMessage(dashboard.ShareResult{}, errors.New("boom")))
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.wav")
	buf := &negotiate.AudioBuffer{SampleRate: negotiate.SpeechSampleRate, Channels: 1, Samples: []float32{0.25, -0.25}}

	require.NoError(t, writeWAV(path, buf))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Len(t, data, 48)
}

func TestCLILoggerLevel(t *testing.T) {
	quiet, err := logging.New(cliLogConfig(false))
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.WarnLevel))

	loud, err := logging.New(cliLogConfig(true))
	require.NoError(t, err)
	assert.True(t, loud.Core().Enabled(zapcore.DebugLevel))
}
