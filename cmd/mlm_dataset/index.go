package main

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/wbrown/masked_lm"
	"github.com/wbrown/masked_lm/fields"
	"github.com/wbrown/masked_lm/vocab"
)

var indexCmd = &cobra.Command{
	Use:   "index CORPUS",
	Short: "Index a corpus and write its ids as JSON lines",
	Long: "CORPUS is a file, a directory, or an s3://bucket/prefix. Each " +
		"instance is written as one JSON object mapping field names to ids.",
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	flags := indexCmd.Flags()
	flags.String("reader", masked_lm.MaskedCorpusName, "dataset reader type")
	flags.Bool("lazy", false, "stream the corpus instead of reading it up front")
	flags.String("tokenizer", "just_spaces",
		"just_spaces, prose, sentencepiece or wordpiece")
	flags.String("model", "", "tokenizer model path, URL or HuggingFace id")
	flags.String("auth", "", "bearer token for remote models")
	flags.Bool("lowercase", false, "lowercase before wordpiece tokenization")
	flags.String("format", "", "jsonl, tsv or text; empty guesses per file")
	flags.String("sort", "", "order of corpus files, e.g. path_ascending")
	flags.Int("workers", 0, "documents parsed concurrently, 0 for all cores")
	flags.Bool("skip-invalid", false, "log and skip invalid records")
	flags.Bool("sanitize", false, "normalize whitespace in sentences")
	flags.String("s3-region", "us-east-1", "region of s3:// corpora")
	flags.String("vocab-load", "", "directory of a saved vocabulary")
	flags.String("vocab-save", "", "directory to save the vocabulary to")
	flags.String("sentencepiece", "",
		"build the vocabulary from a sentencepiece model")
	flags.Int("min-count", 1, "minimum count for corpus vocabulary items")
	flags.String("output", "", "output path, stdout when empty or -")
	flags.String("indexer", "tokens", "token indexer whose ids are written")
	rootCmd.AddCommand(indexCmd)
}

// IndexStats summarizes an IndexCorpus run.
type IndexStats struct {
	Instances int
	Tokens    int
	Masks     int
	Elapsed   time.Duration
}

func (stats IndexStats) InstancesPerSecond() float64 {
	if stats.Elapsed <= 0 {
		return 0
	}
	return float64(stats.Instances) / stats.Elapsed.Seconds()
}

func runIndex(cmd *cobra.Command, args []string) error {
	config, err := configFromCommand(cmd.Flags())
	if err != nil {
		return err
	}
	reader, err := masked_lm.NewDatasetReader(config.Reader)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if config.Output.Path != "" && config.Output.Path != "-" {
		outFile, createErr := os.Create(config.Output.Path)
		if createErr != nil {
			return createErr
		}
		defer outFile.Close()
		out = outFile
	}

	stats, err := IndexCorpus(reader, args[0], config, out)
	if err != nil {
		return err
	}
	log.Info().
		Str("instances", humanize.Comma(int64(stats.Instances))).
		Str("tokens", humanize.Comma(int64(stats.Tokens))).
		Str("masks", humanize.Comma(int64(stats.Masks))).
		Str("elapsed", stats.Elapsed.Round(time.Millisecond).String()).
		Str("rate", humanize.CommafWithDigits(stats.InstancesPerSecond(),
			1)+" instances/s").
		Msg("indexed corpus")
	return nil
}

// loadVocabulary returns the configured pre-built vocabulary, or nil when
// it should be counted from the corpus.
func loadVocabulary(config VocabConfig) (*vocab.Vocabulary, error) {
	switch {
	case config.Load != "":
		return vocab.FromFiles(config.Load)
	case config.SentencePiece != "":
		return vocab.FromSentencePiece(config.SentencePiece, config.Namespace)
	}
	return nil, nil
}

// IndexCorpus reads location with reader, indexes every instance and writes
// one JSON object of ids per instance to w. Without a pre-built vocabulary
// the whole corpus is read first to count one.
func IndexCorpus(reader masked_lm.DatasetReader, location string,
	config *Config, w io.Writer) (IndexStats, error) {
	var stats IndexStats
	start := time.Now()

	vocabulary, err := loadVocabulary(config.Vocab)
	if err != nil {
		return stats, errors.Wrap(err, "loading vocabulary")
	}
	iterator, err := reader.Read(location)
	if err != nil {
		return stats, err
	}
	if vocabulary == nil {
		instances, collectErr := masked_lm.CollectInstances(iterator)
		if collectErr != nil {
			return stats, collectErr
		}
		vocabulary = vocab.FromInstances(instances, config.Vocab.MinCount,
			config.Vocab.NonPadded...)
		iterator = masked_lm.SliceIterator(instances)
	}
	defer iterator.Close()
	log.Info().Str("vocabulary", vocabulary.String()).Msg("vocabulary ready")
	if config.Vocab.Save != "" {
		if err = vocabulary.SaveToFiles(config.Vocab.Save); err != nil {
			return stats, errors.Wrap(err, "saving vocabulary")
		}
	}

	buffered := bufio.NewWriter(w)
	encoder := json.NewEncoder(buffered)
	for {
		instance, nextErr := iterator.Next()
		if nextErr != nil {
			return stats, nextErr
		}
		if instance == nil {
			break
		}
		if err = instance.IndexFields(vocabulary); err != nil {
			return stats, errors.Wrapf(err, "indexing instance %d",
				stats.Instances)
		}
		ids, idsErr := instanceIds(instance, config.Output.Indexer)
		if idsErr != nil {
			return stats, idsErr
		}
		if err = encoder.Encode(ids); err != nil {
			return stats, err
		}
		stats.Instances++
		stats.Tokens += len(ids[masked_lm.TokensField])
		stats.Masks += len(ids[masked_lm.MaskPositionsField])
	}
	if err = buffered.Flush(); err != nil {
		return stats, err
	}
	stats.Elapsed = time.Since(start)
	return stats, nil
}

// instanceIds flattens the tensors of an indexed instance. Text fields
// contribute the ids of the named indexer.
func instanceIds(instance *fields.Instance,
	indexer string) (map[string][]int, error) {
	tensors, err := instance.AsTensorDict(nil)
	if err != nil {
		return nil, err
	}
	ids := make(map[string][]int, len(tensors))
	for name, array := range tensors {
		var values []int
		if array.Indexed != nil {
			indexed, ok := array.Indexed[indexer]
			if !ok {
				return nil, errors.Errorf("field %q has no indexer %q",
					name, indexer)
			}
			values = fields.Ints(indexed)
		} else {
			values = fields.Ints(array.Tensor)
		}
		if values == nil {
			values = []int{}
		}
		ids[name] = values
	}
	return ids, nil
}
