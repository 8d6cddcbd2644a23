package main

import (
	"fmt"
	"os"

	"github.com/psyk-lang/psyk"
	"github.com/psyk-lang/psyk/dis"
	"github.com/spf13/cobra"
)

func (a *app) compileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [ast.json]",
		Short: "Compile a JSON syntax tree into an instruction stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			if echo, _ := cmd.Flags().GetBool("ast-json"); echo {
				formatted, err := formatJSON(cmd.ErrOrStderr(), []byte(src.text))
				if err != nil {
					return fmt.Errorf("decode program: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), string(formatted))
			}
			program, err := psyk.CompileJSON([]byte(src.text), a.compileOptions()...)
			if err != nil {
				return err
			}
			a.logger.Info().Int("instructions", program.InstructionCount()).Msg("compiled")
			if path, _ := cmd.Flags().GetString("output"); path != "" {
				return os.WriteFile(path, []byte(program.String()), 0o644)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), program.String())
			return err
		},
	}
	addSourceFlags(cmd, "syntax tree JSON")
	cmd.Flags().StringP("output", "o", "", "Write the instruction stream to a file")
	cmd.Flags().Bool("ast-json", false, "Echo the decoded syntax tree to stderr")
	return cmd
}

func (a *app) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [program.psyki]",
		Short: "Run an instruction stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			program, err := psyk.Parse(src.text)
			if err != nil {
				return err
			}
			opts := a.options(cmd, programInput(cmd, src.fromStdin))
			return psyk.Run(cmd.Context(), program, opts...)
		},
	}
	addSourceFlags(cmd, "instruction stream")
	return cmd
}

func (a *app) evalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [ast.json]",
		Short: "Compile a JSON syntax tree and run it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			opts := a.options(cmd, programInput(cmd, src.fromStdin))
			return psyk.EvalJSON(cmd.Context(), []byte(src.text), opts...)
		},
	}
	addSourceFlags(cmd, "syntax tree JSON")
	return cmd
}

func (a *app) disCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [program.psyki]",
		Short: "Disassemble an instruction stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			program, err := psyk.Parse(src.text)
			if err != nil {
				return err
			}
			instructions, err := dis.Disassemble(program)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), instructions)
			}
			dis.Print(instructions, cmd.OutOrStdout())
			return nil
		},
	}
	addSourceFlags(cmd, "instruction stream")
	cmd.Flags().Bool("json", false, "Print the disassembly as JSON")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [program.psyki]",
		Short: "Report every malformed line and unknown jump target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			program, err := psyk.Parse(src.text)
			if err != nil {
				return err
			}
			if err := program.Validate(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d lines\n", program.InstructionCount())
			return err
		},
	}
	addSourceFlags(cmd, "instruction stream")
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"version": version,
					"commit":  commit,
					"date":    date,
				})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "psyk %s (commit %s, built %s)\n", version, commit, date)
			return err
		},
	}
	cmd.Flags().Bool("json", false, "Print version information as JSON")
	return cmd
}
