package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OutputRenderer handles different output formats.
type OutputRenderer[T any] struct {
	RenderJSON  func(w io.Writer, data T) error
	RenderYAML  func(w io.Writer, data T) error
	RenderTable func(w io.Writer, data T) error
}

// Render outputs data in the specified format.
func (o *OutputRenderer[T]) Render(w io.Writer, data T, format string) error {
	switch format {
	case constants.FormatJSON:
		return o.RenderJSON(w, data)
	case constants.FormatYAML:
		return o.RenderYAML(w, data)
	default:
		return o.RenderTable(w, data)
	}
}

// render writes data to the command output in the configured format.
func render[T any](cmd *cobra.Command, data T, table func(io.Writer, T) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	renderer := &OutputRenderer[T]{
		RenderJSON:  renderJSON[T],
		RenderYAML:  renderYAML[T],
		RenderTable: table,
	}

	return renderer.Render(cmd.OutOrStdout(), data, format)
}

func outputFormat() (string, error) {
	format := viper.GetString(KeyOutput)
	if format == "" {
		return constants.FormatTable, nil
	}

	if !validOutputFormat(format) {
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}

	return format, nil
}

func validOutputFormat(format string) bool {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return true
	default:
		return false
	}
}

func renderJSON[T any](w io.Writer, data T) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	return encoder.Encode(data)
}

func renderYAML[T any](w io.Writer, data T) error {
	encoder := yaml.NewEncoder(w)
	defer func() { _ = encoder.Close() }()

	return encoder.Encode(data)
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return constants.NotAvailable
	}

	return t.Format("2006-01-02 15:04:05")
}

func truncate(value string, length int) string {
	value = strings.TrimSpace(strings.SplitN(value, "\n", 2)[0]) //nolint:mnd // first line only
	runes := []rune(value)
	if len(runes) <= length {
		return value
	}

	return string(runes[:length-3]) + "..."
}

func shortSHA(sha string) string {
	if len(sha) <= constants.ShortSHALength {
		return sha
	}

	return sha[:constants.ShortSHALength]
}

func checkMark(value bool) string {
	if value {
		return constants.CheckMarkSymbol
	}

	return ""
}
