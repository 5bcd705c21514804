package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wbrown/masked_lm/tokenizers"
)

type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatTSV   Format = "tsv"
	FormatText  Format = "text"
)

const maskToken = "[MASK]"

var (
	ErrUnknownFormat = errors.New("unknown corpus format")
	ErrEmptyRecord   = errors.New("record has neither sentence nor tokens")
)

// ParseFormat accepts a format name. An empty name yields the empty
// Format, meaning the format is picked per file by FormatForPath.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case "":
		return "", nil
	case FormatJSONL, "json":
		return FormatJSONL, nil
	case FormatTSV:
		return FormatTSV, nil
	case FormatText, "txt":
		return FormatText, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", name)
}

// FormatForPath guesses a format from a file extension, defaulting to
// FormatText.
func FormatForPath(filePath string) Format {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".jsonl", ".json":
		return FormatJSONL
	case ".tsv":
		return FormatTSV
	}
	return FormatText
}

// Extensions lists the file extensions globbed for a format. The empty
// format globs all of them.
func (format Format) Extensions() []string {
	switch format {
	case FormatJSONL:
		return []string{"jsonl", "json"}
	case FormatTSV:
		return []string{"tsv"}
	case FormatText:
		return []string{"txt"}
	}
	return []string{"jsonl", "json", "tsv", "txt"}
}

// Record is one pre-masked example. Exactly one of Sentence or Tokens is
// normally set; Tokens wins when both are. Err is set when the record could
// not be parsed, and Line points at it either way.
//
// FormatText sentences come out of sentence segmentation, so a mask may
// touch punctuation as in `the [MASK].`; they must be tokenized with the
// mask kept whole.
type Record struct {
	Path     string
	Line     int
	Format   Format
	Sentence string
	Tokens   []string
	Targets  []string
	Err      error
}

// RecordError attaches a location to a record-level failure.
type RecordError struct {
	Path string
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

type jsonRecord struct {
	Sentence string   `json:"sentence"`
	Tokens   []string `json:"tokens"`
	Targets  []string `json:"targets"`
}

// ParseDocument splits a document into records. Blank lines are skipped in
// the line oriented formats. The sanitizer, if any, is applied to each
// record's sentence, or to the whole document for FormatText.
func ParseDocument(doc Document, format Format,
	sanitize Sanitizer) ([]Record, error) {
	if format == "" {
		format = FormatForPath(doc.Path)
	}
	var records []Record
	var err error
	switch format {
	case FormatJSONL:
		records, err = parseLines(doc, func(record *Record, line string) {
			var parsed jsonRecord
			if err := json.Unmarshal([]byte(line), &parsed); err != nil {
				record.Err = errors.Wrap(err, "malformed json")
				return
			}
			record.Sentence = parsed.Sentence
			record.Tokens = parsed.Tokens
			record.Targets = parsed.Targets
			if record.Sentence == "" && len(record.Tokens) == 0 {
				record.Err = ErrEmptyRecord
			}
		}, sanitize)
	case FormatTSV:
		records, err = parseLines(doc, func(record *Record, line string) {
			columns := strings.SplitN(line, "\t", 2)
			record.Sentence = columns[0]
			if len(columns) == 2 {
				record.Targets = strings.Fields(columns[1])
			}
			if strings.TrimSpace(record.Sentence) == "" {
				record.Err = ErrEmptyRecord
			}
		}, sanitize)
	case FormatText:
		records, err = parseText(doc, sanitize)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	if err != nil {
		return nil, err
	}
	for idx := range records {
		records[idx].Format = format
	}
	return records, nil
}

func parseLines(doc Document, parse func(record *Record, line string),
	sanitize Sanitizer) ([]Record, error) {
	records := make([]Record, 0)
	scanner := bufio.NewScanner(strings.NewReader(doc.Text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		record := Record{Path: doc.Path, Line: lineNum}
		parse(&record, line)
		if record.Err == nil && sanitize != nil && record.Sentence != "" {
			record.Sentence = sanitize(record.Sentence)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", doc.Path)
	}
	return records, nil
}

// parseText segments free text into sentences and keeps those whose text
// holds at least one mask, wherever it sits. Line is the 1-based sentence number.
func parseText(doc Document, sanitize Sanitizer) ([]Record, error) {
	text := doc.Text
	if sanitize != nil {
		text = sanitize(text)
	}
	sentences, err := tokenizers.SplitSentences(text)
	if err != nil {
		return nil, errors.Wrapf(err, "segmenting %s", doc.Path)
	}
	records := make([]Record, 0)
	skipped := 0
	for idx, sentence := range sentences {
		if !strings.Contains(sentence, maskToken) {
			skipped++
			continue
		}
		records = append(records, Record{
			Path:     doc.Path,
			Line:     idx + 1,
			Sentence: sentence,
		})
	}
	if skipped > 0 {
		log.Debug().
			Str("path", doc.Path).
			Int("skipped", skipped).
			Int("kept", len(records)).
			Msg("skipped sentences without a mask")
	}
	return records, nil
}
