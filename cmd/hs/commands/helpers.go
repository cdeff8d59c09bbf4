package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Constants for repeated strings.
const (
	ConfigDirName  = ".hs"
	ConfigFileName = "config.yml"

	OutputFormatTable = "table"
	OutputFormatJSON  = constants.FormatJSON
	OutputFormatYAML  = constants.FormatYAML

	PropertyHeader = "Property"
	ValueHeader    = "Value"
)

var userAgent = "hs-cli"

// SetUserAgent sets the User-Agent header sent by every command.
func SetUserAgent(ua string) {
	userAgent = ua
}

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output"))
	switch format {
	case "", OutputFormatTable:
		return OutputFormatTable, nil
	case OutputFormatJSON, OutputFormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutput, format)
	}
}

// render writes value as JSON or YAML, or calls table for the default
// output format.
func render(cmd *cobra.Command, value interface{}, table func(out io.Writer) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	default:
		return table(out)
	}
}

// renderProperties draws a two column property table.
func renderProperties(out io.Writer, rows [][]string) error {
	table := tablewriter.NewWriter(out)
	table.Header(PropertyHeader, ValueHeader)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderList draws a table with the given header.
func renderList(out io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(out)

	headers := make([]any, len(header))
	for i, h := range header {
		headers[i] = h
	}

	table.Header(headers...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// printMessage writes a status line unless a machine readable format was
// requested, in which case value is encoded instead.
func printMessage(cmd *cobra.Command, value interface{}, format string, args ...interface{}) error {
	return render(cmd, value, func(out io.Writer) error {
		_, err := fmt.Fprintf(out, format+"\n", args...)

		return err
	})
}

// readPassword prompts for a password without echo.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd()) // #nosec G115 -- file descriptors fit in int
	if !term.IsTerminal(fd) {
		return "", constants.ErrNoTerminal
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)

	password, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

// parseDate parses a YYYY-MM-DD flag value. An empty value yields the zero
// time.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", constants.ErrInvalidDate, value)
	}

	return parsed, nil
}

func yesNo(v bool) string {
	if v {
		return constants.CheckMarkSymbol
	}

	return ""
}

func orNotAvailable(v string) string {
	if v == "" {
		return constants.NotAvailable
	}

	return v
}

func maskSecret(v string) string {
	if v == "" {
		return ""
	}

	return constants.MaskedSecret
}
