package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wbrown/masked_lm"
)

// TargetSeparator splits a REPL line into its sentence and its targets.
const TargetSeparator = "|||"

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Turn sentences typed on stdin into instances",
	Long: "Each line is `sentence ||| target target ...`; the targets part " +
		"is optional.",
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	flags := replCmd.Flags()
	flags.String("tokenizer", "just_spaces",
		"just_spaces, prose, sentencepiece or wordpiece")
	flags.String("model", "", "tokenizer model path, URL or HuggingFace id")
	flags.Bool("lowercase", false, "lowercase before wordpiece tokenization")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	config, err := configFromCommand(cmd.Flags())
	if err != nil {
		return err
	}
	config.Reader.Type = masked_lm.MaskedLanguageModelingName
	reader, err := masked_lm.NewDatasetReader(config.Reader)
	if err != nil {
		return err
	}
	return Repl(reader, cmd.InOrStdin(), cmd.OutOrStdout())
}

// Repl answers every input line with the instance built from it, or with
// the error that prevented building one.
func Repl(reader masked_lm.DatasetReader, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, ">>> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			description, err := describeLine(reader, line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			} else {
				fmt.Fprint(out, description)
			}
		}
		fmt.Fprint(out, ">>> ")
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

// splitReplLine separates `sentence ||| t1 t2` into its parts. A missing
// or empty targets part yields nil targets.
func splitReplLine(line string) (string, []string) {
	sentence, targets, found := strings.Cut(line, TargetSeparator)
	sentence = strings.TrimSpace(sentence)
	if !found {
		return sentence, nil
	}
	fieldsOf := strings.Fields(targets)
	if len(fieldsOf) == 0 {
		return sentence, nil
	}
	return sentence, fieldsOf
}

func describeLine(reader masked_lm.DatasetReader, line string) (string,
	error) {
	sentence, targets := splitReplLine(line)
	summary, err := masked_lm.SummarizeText(reader, sentence, targets)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("tokens: %v\nmask_positions: %v\ntargets: %v\n",
		summary.Tokens, summary.MaskPositions, summary.Targets), nil
}
