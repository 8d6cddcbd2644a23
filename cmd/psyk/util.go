package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	perrors "github.com/psyk-lang/psyk/errors"
	"github.com/spf13/cobra"
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// useColor reports whether w is a terminal that should receive colors.
func useColor(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// printError writes err in the Rust-like diagnostic style. Aggregated
// parse errors are listed one by one.
func printError(w io.Writer, err error) {
	formatter := perrors.NewFormatter(useColor(w))
	var merr *multierror.Error
	if errors.As(err, &merr) {
		var formatted []*perrors.FormattedError
		for _, e := range merr.Errors {
			var fe perrors.FormattableError
			if !errors.As(e, &fe) {
				fmt.Fprint(w, formatter.FormatError(e))
				continue
			}
			formatted = append(formatted, fe.ToFormatted())
		}
		fmt.Fprint(w, formatter.FormatMultiple(formatted))
		return
	}
	fmt.Fprint(w, formatter.FormatError(err))
}

// source is the text a command works on and where it came from.
type source struct {
	text      string
	fromStdin bool
}

// readSource determines what text is to be processed. There are three
// possibilities:
//  1. --code <text>
//  2. --stdin (read from stdin)
//  3. path as args[0]
func readSource(cmd *cobra.Command, args []string) (source, error) {
	var codeFlagSet bool
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeFlagSet = true
	}
	stdinFlagSet, _ := cmd.Flags().GetBool("stdin")
	pathSupplied := len(args) > 0

	count := 0
	for _, set := range []bool{codeFlagSet, stdinFlagSet, pathSupplied} {
		if set {
			count++
		}
	}
	if count > 1 {
		return source{}, errors.New("multiple input sources specified")
	}
	if count == 0 {
		return source{}, errors.New("no input provided")
	}

	switch {
	case stdinFlagSet:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return source{}, err
		}
		return source{text: string(data), fromStdin: true}, nil
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return source{}, err
		}
		return source{text: string(data)}, nil
	}
	code, _ := cmd.Flags().GetString("code")
	return source{text: code}, nil
}

func addSourceFlags(cmd *cobra.Command, what string) {
	cmd.Flags().StringP("code", "c", "", what+" given inline")
	cmd.Flags().Bool("stdin", false, "Read "+what+" from stdin")
}

// writeJSON prints v as indented JSON, colored when w is a terminal.
func writeJSON(w io.Writer, v any) error {
	var data []byte
	var err error
	if useColor(w) {
		data, err = prettyjson.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// formatJSON re-indents raw JSON, colored when w is a terminal.
func formatJSON(w io.Writer, data []byte) ([]byte, error) {
	if useColor(w) {
		return prettyjson.Format(data)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}
