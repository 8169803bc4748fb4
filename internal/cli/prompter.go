package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// ErrInputTerminated is returned when the input stream ends mid-prompt.
var ErrInputTerminated = errors.New("input terminated")

// Prompter asks the user questions on a terminal.
type Prompter struct {
	reader *NonBlockingReader
	writer io.Writer
}

// NewCLIPrompter creates a prompter reading from reader and writing to writer.
func NewCLIPrompter(reader io.Reader, writer io.Writer) *Prompter {
	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// Prompt shows label and returns the trimmed answer.
func (p *Prompter) Prompt(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := p.reader.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		return "", ErrInputTerminated
	}
	return line, err
}

// Confirm asks a yes/no question until it gets a valid answer. An empty
// answer means no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		answer, err := p.Prompt(ctx, question+" [y/N]")
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Please answer y or n.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

// NewProgressBar returns a progress bar for total rows, writing to w.
// A negative total renders a spinner.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
