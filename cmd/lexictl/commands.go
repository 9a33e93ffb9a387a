package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ericksa/lexinegotiate/internal/coordinator"
	"github.com/ericksa/lexinegotiate/internal/dashboard"
	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/negotiate"
)

// textExtensions are read as pasted text rather than sent as documents.
var textExtensions = map[string]bool{".txt": true, ".md": true, ".text": true}

// readInput builds the analysis input from --text and --file.
func readInput(text, path string) (negotiate.Input, error) {
	in := negotiate.Input{Text: text}
	if path == "" {
		return in, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("read %s: %w", path, err)
	}
	if textExtensions[strings.ToLower(filepath.Ext(path))] {
		if in.Text != "" {
			in.Text += "\n\n"
		}
		in.Text += string(data)
		return in, nil
	}

	mimeType := http.DetectContentType(data)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !coordinator.AcceptedUpload(mimeType) {
		return in, &fault.Error{
			Kind:    fault.KindMalformedImage,
			Op:      "read input",
			Message: fmt.Sprintf("unsupported file type %q: use an image, a PDF or a text file", mimeType),
			Image:   true,
		}
	}
	in.Image = negotiate.EncodeDataURI(mimeType, data)
	return in, nil
}

// renderMemo renders Markdown for the terminal.
func renderMemo(md string, style string) (string, error) {
	opt := glamour.WithAutoStyle()
	if style != "" {
		opt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// shareMessage reports a share attempt to the user.
func shareMessage(res dashboard.ShareResult, err error) string {
	if err != nil {
		return fault.Message(err)
	}
	return res.Message
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	path, _ := cmd.Flags().GetString("file")
	clauseID, _ := cmd.Flags().GetString("clause")
	share, _ := cmd.Flags().GetBool("share")
	pageURL, _ := cmd.Flags().GetString("url")
	raw, _ := cmd.Flags().GetBool("raw")

	in, err := readInput(text, path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	gemini, err := newGemini(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Analyzing contract...")
	analysis, err := negotiate.NewAnalyzer(gemini, logger).Analyze(ctx, in)
	if err != nil {
		if fault.IsImageRelated(err) {
			return fmt.Errorf("%w\n%s", err, dashboard.ImageRetryHint)
		}
		return err
	}

	md := dashboard.Memo(analysis)
	if clauseID != "" {
		c, ok := analysis.Clause(clauseID)
		if !ok {
			return fmt.Errorf("clause %q not found", clauseID)
		}
		md = dashboard.ClauseMemo(c)
	}
	if err := printMemo(cmd.OutOrStdout(), md, raw); err != nil {
		return err
	}

	if share {
		res, err := dashboard.Share(ctx, dashboard.NewSharePayload(analysis, pageURL), nil, systemClipboard{})
		if msg := shareMessage(res, err); msg != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		}
	}
	return nil
}

func printMemo(w io.Writer, md string, raw bool) error {
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}
	out, err := renderMemo(md, "")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func runSpeak(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	out, _ := cmd.Flags().GetString("out")
	voice, _ := cmd.Flags().GetString("voice")
	if voice == "" {
		voice = cfg.Gemini.Voice
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	gemini, err := newGemini(ctx)
	if err != nil {
		return err
	}

	buf, err := negotiate.NewSpeaker(gemini, voice, logger).Synthesize(ctx, text)
	if err != nil {
		return err
	}
	if err := writeWAV(out, buf); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", out, buf.Duration().Round(10*time.Millisecond))
	return nil
}

func writeWAV(path string, buf *negotiate.AudioBuffer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := buf.WriteWAV(f); err != nil {
		return errors.Join(err, os.Remove(path))
	}
	return nil
}
