package masked_lm

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/wbrown/masked_lm/corpus"
	"github.com/wbrown/masked_lm/fields"
	"github.com/wbrown/masked_lm/tokenizers"
	"github.com/wbrown/masked_lm/types"
)

// CorpusOptions configures how MaskedCorpusReader finds and parses
// documents.
type CorpusOptions struct {
	// Format is `jsonl`, `tsv` or `text`; empty picks it per file from the
	// extension.
	Format string `mapstructure:"format"`
	// SortSpec reorders directory and S3 listings, see corpus.ReorderPaths.
	SortSpec string `mapstructure:"sort"`
	// Workers bounds the documents parsed at once when reading eagerly.
	Workers     int  `mapstructure:"workers"`
	SkipInvalid bool `mapstructure:"skip_invalid"`
	Sanitize    bool `mapstructure:"sanitize"`
	// RepairMojibake undoes Windows-1252 misdecoding before sanitizing.
	RepairMojibake bool            `mapstructure:"repair_mojibake"`
	S3Region       string          `mapstructure:"s3_region"`
	S3Client       corpus.S3Client `mapstructure:"-"`
}

// MaskedCorpusReader reads corpora whose placeholders and targets are
// already in place, turning each record into an instance with the
// embedded reader's TextToInstance.
type MaskedCorpusReader struct {
	*MaskedLanguageModelingReader
	options CorpusOptions
	// Splits FormatText sentences, keeping `[MASK]` whole even when
	// punctuation touches it.
	sentenceTokenizer tokenizers.Tokenizer
}

func NewMaskedCorpusReader(options CorpusOptions,
	opts ...ReaderOption) *MaskedCorpusReader {
	if options.Workers < 1 {
		options.Workers = runtime.GOMAXPROCS(0)
	}
	embedded := NewMaskedLanguageModelingReader(opts...)
	return &MaskedCorpusReader{
		MaskedLanguageModelingReader: embedded,
		options:                      options,
		sentenceTokenizer: tokenizers.EnsureSpecials(embedded.Tokenizer(),
			MaskToken),
	}
}

func (reader *MaskedCorpusReader) Options() CorpusOptions {
	return reader.options
}

// Read opens a file, a directory, or an `s3://bucket/prefix` location.
//
// Eager readers parse every document up front, concurrently, and return the
// first error from Read itself. Lazy readers stream documents in the
// background; errors then come from the iterator. Either way instances come
// out in document order, then record order.
func (reader *MaskedCorpusReader) Read(path string) (InstancesIterator,
	error) {
	format, err := corpus.ParseFormat(reader.options.Format)
	if err != nil {
		return nil, err
	}
	s3Client := reader.options.S3Client
	if s3Client == nil && corpus.IsS3URI(path) {
		if s3Client, err = corpus.NewS3Client(
			reader.options.S3Region); err != nil {
			return nil, err
		}
	}
	source, err := corpus.OpenSource(path, corpus.SourceOptions{
		Extensions: format.Extensions(),
		SortSpec:   reader.options.SortSpec,
		S3Client:   s3Client,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening corpus %s", path)
	}
	log.Info().
		Str("path", path).
		Int("documents", source.Len()).
		Bool("lazy", reader.Lazy()).
		Msg("reading corpus")

	sanitizer := corpus.CreateTextSanitizer(reader.options.Sanitize,
		reader.options.RepairMojibake)
	if reader.Lazy() {
		return reader.readLazy(source, format, sanitizer), nil
	}
	return reader.readEager(source, format, sanitizer)
}

func (reader *MaskedCorpusReader) readEager(source *corpus.Source,
	format corpus.Format, sanitizer corpus.Sanitizer) (InstancesIterator,
	error) {
	results := make([][]*fields.Instance, source.Len())
	p := pool.New().
		WithErrors().
		WithFirstError().
		WithMaxGoroutines(reader.options.Workers)
	for idx := 0; idx < source.Len(); idx++ {
		docIdx := idx
		p.Go(func() error {
			instances, err := reader.documentInstances(source, docIdx,
				format, sanitizer)
			if err != nil {
				return err
			}
			results[docIdx] = instances
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	total := 0
	for _, instances := range results {
		total += len(instances)
	}
	all := make([]*fields.Instance, 0, total)
	for _, instances := range results {
		all = append(all, instances...)
	}
	return SliceIterator(all), nil
}

type lazyResult struct {
	instance *fields.Instance
	err      error
}

// lazyIterator streams the instances a background producer sends. The next
// document is parsed while the prior one is being consumed.
type lazyIterator struct {
	results <-chan lazyResult
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func (iterator *lazyIterator) Next() (*fields.Instance, error) {
	select {
	case <-iterator.done:
		return nil, nil
	default:
	}
	next, ok := <-iterator.results
	if !ok {
		return nil, nil
	}
	return next.instance, next.err
}

// Close stops the producer and waits for it to exit. A document being
// parsed is finished first.
func (iterator *lazyIterator) Close() {
	iterator.once.Do(func() {
		close(iterator.done)
	})
	<-iterator.stopped
}

func (reader *MaskedCorpusReader) readLazy(source *corpus.Source,
	format corpus.Format, sanitizer corpus.Sanitizer) InstancesIterator {
	results := make(chan lazyResult, 64)
	iterator := &lazyIterator{
		results: results,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	send := func(result lazyResult) bool {
		select {
		case results <- result:
			return true
		case <-iterator.done:
			return false
		}
	}
	go func() {
		defer close(iterator.stopped)
		defer close(results)
		for idx := 0; idx < source.Len(); idx++ {
			select {
			case <-iterator.done:
				return
			default:
			}
			instances, err := reader.documentInstances(source, idx, format,
				sanitizer)
			if err != nil {
				send(lazyResult{err: err})
				return
			}
			for _, instance := range instances {
				if !send(lazyResult{instance: instance}) {
					log.Debug().Int("document", idx).
						Msg("lazy read closed early")
					return
				}
			}
		}
	}()
	return iterator
}

// documentInstances reads and converts one document. Invalid records abort
// with a *corpus.RecordError unless SkipInvalid is set.
func (reader *MaskedCorpusReader) documentInstances(source *corpus.Source,
	idx int, format corpus.Format,
	sanitizer corpus.Sanitizer) ([]*fields.Instance, error) {
	doc, err := source.Read(idx)
	if err != nil {
		return nil, err
	}
	records, err := corpus.ParseDocument(doc, format, sanitizer)
	if err != nil {
		return nil, err
	}
	instances := make([]*fields.Instance, 0, len(records))
	skipped := 0
	for _, record := range records {
		instance, recordErr := reader.recordToInstance(record)
		if recordErr == nil {
			instances = append(instances, instance)
			continue
		}
		if !reader.options.SkipInvalid {
			return nil, &corpus.RecordError{
				Path: record.Path,
				Line: record.Line,
				Err:  recordErr,
			}
		}
		skipped++
		log.Warn().
			Err(recordErr).
			Str("path", record.Path).
			Int("line", record.Line).
			Msg("skipping invalid record")
	}
	log.Debug().
		Str("path", doc.Path).
		Int("instances", len(instances)).
		Int("skipped", skipped).
		Msg("converted document")
	return instances, nil
}

func (reader *MaskedCorpusReader) recordToInstance(
	record corpus.Record) (*fields.Instance, error) {
	if record.Err != nil {
		return nil, record.Err
	}
	var tokens types.Tokens
	switch {
	case len(record.Tokens) > 0:
		tokens = types.TokensFromTexts(record.Tokens)
	case record.Format == corpus.FormatText:
		tokenized, err := reader.sentenceTokenizer.Tokenize(record.Sentence)
		if err != nil {
			return nil, errors.Wrap(err, "tokenizing sentence")
		}
		tokens = tokenized
	}
	return reader.TextToInstance(record.Sentence, tokens, record.Targets)
}
