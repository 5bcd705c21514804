package main

import (
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/wbrown/masked_lm/resources"
	"github.com/wbrown/masked_lm/tokenizers"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch MODEL",
	Short: "Download the files a tokenizer needs",
	Long: "MODEL is a URL or HuggingFace id. Files already present in the " +
		"destination with the right size are not downloaded again.",
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	flags := fetchCmd.Flags()
	flags.String("tokenizer", "",
		"sentencepiece or wordpiece, defaults to the configured tokenizer")
	flags.String("dir", "./", "where to download the files to")
	flags.Bool("optional", false, "also fetch optional files")
	flags.String("auth", "", "bearer token for private models")
	rootCmd.AddCommand(fetchCmd)
}

// resourceEntries returns the files that make up a tokenizer type.
func resourceEntries(tokenizerType string) (resources.ResourceEntryDefs,
	error) {
	switch tokenizerType {
	case tokenizers.WordPieceType:
		return resources.WordPieceEntries(), nil
	case tokenizers.SentencePieceType:
		return resources.SentencePieceEntries(), nil
	}
	return nil, errors.Wrapf(tokenizers.ErrUnknownTokenizer,
		"%q has no downloadable resources", tokenizerType)
}

func runFetch(cmd *cobra.Command, args []string) error {
	config, err := configFromCommand(cmd.Flags())
	if err != nil {
		return err
	}
	defs, err := resourceEntries(config.Reader.Tokenizer.Type)
	if err != nil {
		return err
	}
	level := resources.RESOURCE_REQUIRED
	if config.Fetch.Optional {
		level = resources.RESOURCE_OPTIONAL
	}
	if err = os.MkdirAll(config.Fetch.Dir, 0755); err != nil {
		return err
	}
	rsrcs, err := resources.ResolveResources(args[0], config.Fetch.Dir, defs,
		level, config.Reader.Tokenizer.Auth)
	if err != nil {
		return errors.Wrap(err, "error downloading model resources")
	}
	defer rsrcs.Cleanup()

	names := make([]string, 0, len(*rsrcs))
	for name := range *rsrcs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry := (*rsrcs)[name]
		size := 0
		if entry.Data != nil {
			size = len(*entry.Data)
		}
		log.Info().
			Str("file", name).
			Str("size", humanize.Bytes(uint64(size))).
			Msg("resolved")
	}
	return nil
}
