package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/a11yscan.yaml
var configTemplate []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter a11yscan configuration file",
		Long: `Init writes a commented configuration file with the default audit
settings: concurrency, the delay between waves, the fetch timeout, the fetch
source and the report format. Rule phrase lists are included as comments.

a11yscan audit picks the file up from the current directory, the home
directory or the XDG config directory, or from the path given with -c.

Examples:
  # Write .a11yscan in the current directory
  a11yscan init

  # Write somewhere else, replacing an existing file
  a11yscan init -o ~/.config/a11yscan/config.yaml -f

  # Print the template without writing anything
  a11yscan init --print`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile, "Path of the file to write")
	cmd.Flags().BoolP("force", "f", false, "Replace the file if it already exists")
	cmd.Flags().BoolP("print", "p", false, "Print the template to stdout instead of writing a file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	toStdout, err := cmd.Flags().GetBool("print")
	if err != nil {
		return err
	}
	if toStdout {
		_, err := out.Write(configTemplate)
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if err := writeTemplate(outputPath, force); err != nil {
		return err
	}
	printNextSteps(out, outputPath)
	return nil
}

// writeTemplate writes the embedded template to path with owner-only
// permissions. Without force an existing file is left alone.
func writeTemplate(path string, force bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0600)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	if _, err := f.Write(configTemplate); err != nil {
		f.Close() //nolint:errcheck,gosec // the write error is the one reported
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return f.Close()
}

func printNextSteps(out io.Writer, path string) {
	fmt.Fprintf(out, "Created configuration file: %s\n\n", path)
	if path == config.DefaultConfigFile {
		fmt.Fprintln(out, "Run an audit from this directory:")
		fmt.Fprintln(out, "  a11yscan audit https://example.com/")
		return
	}
	fmt.Fprintln(out, "Run an audit with it:")
	fmt.Fprintf(out, "  a11yscan audit -c %s https://example.com/\n", path)
}
