package masked_lm

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/masked_lm/corpus"
	"github.com/wbrown/masked_lm/fields"
)

const jsonlCorpus = `{"sentence": "The [MASK] sat on the mat .", "targets": ["cat"]}
{"tokens": ["[MASK]", "barked", "at", "the", "[MASK]"], "targets": ["dog", "mailman"]}
{"sentence": "Nothing [MASK] here ."}
`

func writeCorpus(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, contents := range files {
		full := path.Join(dir, name)
		require.NoError(t, os.MkdirAll(path.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(contents), 0644))
	}
	return dir
}

func targetTexts(t *testing.T, instance *fields.Instance) []string {
	return fieldTexts(t, instance, TargetIdsField)
}

func TestCorpusReaderEagerJSONL(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"train.jsonl": jsonlCorpus})
	reader := NewMaskedCorpusReader(CorpusOptions{})

	iterator, err := reader.Read(path.Join(dir, "train.jsonl"))
	require.NoError(t, err)
	instances, err := CollectInstances(iterator)
	require.NoError(t, err)
	require.Len(t, instances, 3)

	assert.Equal(t, []int{1}, maskPositions(t, instances[0]))
	assert.Equal(t, []string{"cat"}, targetTexts(t, instances[0]))
	assert.Equal(t, []int{0, 4}, maskPositions(t, instances[1]))
	assert.Equal(t, []string{"dog", "mailman"}, targetTexts(t, instances[1]))
	assert.Empty(t, targetTexts(t, instances[2]))
}

func TestCorpusReaderDirectoryOrder(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.tsv":       "[MASK] one\tfirst\n",
		"b/c.tsv":     "[MASK] two\tsecond\n[MASK] three\tthird\n",
		"d.tsv":       "[MASK] four\tfourth\n",
		"ignored.txt": "A [MASK] in a text file.",
	})
	for _, lazy := range []bool{false, true} {
		reader := NewMaskedCorpusReader(CorpusOptions{
			Format:   "tsv",
			SortSpec: "path_ascending",
			Workers:  3,
		}, WithLazy(lazy))
		iterator, err := reader.Read(dir)
		require.NoError(t, err)
		instances, err := CollectInstances(iterator)
		require.NoError(t, err)

		targets := make([]string, 0)
		for _, instance := range instances {
			targets = append(targets, targetTexts(t, instance)...)
		}
		assert.Equal(t, []string{"first", "second", "third", "fourth"},
			targets, "lazy=%v", lazy)
	}
}

func TestCorpusReaderInvalidRecord(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"bad.jsonl": `{"sentence": "fine [MASK]", "targets": ["x"]}
{"sentence": "no placeholder"}
{"sentence": "[MASK] [MASK]", "targets": ["only one"]}
{broken
{"sentence": "also [MASK] fine"}
`,
	})
	location := path.Join(dir, "bad.jsonl")

	_, err := NewMaskedCorpusReader(CorpusOptions{}).Read(location)
	var recordErr *corpus.RecordError
	require.True(t, errors.As(err, &recordErr))
	assert.Equal(t, 2, recordErr.Line)
	assert.Equal(t, location, recordErr.Path)
	assert.True(t, errors.Is(err, ErrNoMaskTokens))

	iterator, err := NewMaskedCorpusReader(CorpusOptions{},
		WithLazy(true)).Read(location)
	require.NoError(t, err)
	instances, err := CollectInstances(iterator)
	assert.Empty(t, instances)
	assert.True(t, errors.Is(err, ErrNoMaskTokens))

	iterator, err = NewMaskedCorpusReader(CorpusOptions{SkipInvalid: true}).
		Read(location)
	require.NoError(t, err)
	instances, err = CollectInstances(iterator)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, []string{"also", "[MASK]", "fine"},
		fieldTexts(t, instances[1], TokensField))
}

func TestCorpusReaderLazyError(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.tsv": "[MASK] ok\tfine\n",
		"b.tsv": "[MASK] [MASK]\tjust-one\n",
	})
	reader := NewMaskedCorpusReader(CorpusOptions{
		SortSpec: "path_ascending",
	}, WithLazy(true))
	iterator, err := reader.Read(dir)
	require.NoError(t, err)
	defer iterator.Close()

	first, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"fine"}, targetTexts(t, first))
	_, err = iterator.Next()
	assert.True(t, errors.Is(err, ErrTargetCountMismatch))
}

func TestCorpusReaderTextFormat(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"book.txt": "It was a dark night.  The [MASK] howled.\t" +
			"Nobody slept.",
	})
	reader := NewMaskedCorpusReader(CorpusOptions{Sanitize: true})
	iterator, err := reader.Read(dir)
	require.NoError(t, err)
	instances, err := CollectInstances(iterator)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, []string{"The", "[MASK]", "howled."},
		fieldTexts(t, instances[0], TokensField))
}

func TestCorpusReaderTextFormatMaskBeforePunctuation(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"book.txt": "The dog chased the [MASK].",
	})
	for _, lazy := range []bool{false, true} {
		reader := NewMaskedCorpusReader(CorpusOptions{}, WithLazy(lazy))
		iterator, err := reader.Read(dir)
		require.NoError(t, err)
		instances, err := CollectInstances(iterator)
		require.NoError(t, err, "lazy=%v", lazy)
		require.Len(t, instances, 1)
		assert.Equal(t, []string{"The", "dog", "chased", "the", "[MASK]", "."},
			fieldTexts(t, instances[0], TokensField))
		assert.Equal(t, []int{4}, maskPositions(t, instances[0]))
	}
}

func TestCorpusReaderLazyClose(t *testing.T) {
	var sb strings.Builder
	for idx := 0; idx < 500; idx++ {
		sb.WriteString(fmt.Sprintf("[MASK] line %d\tx\n", idx))
	}
	dir := writeCorpus(t, map[string]string{"big.tsv": sb.String()})
	baseline := runtime.NumGoroutine()

	reader := NewMaskedCorpusReader(CorpusOptions{}, WithLazy(true))
	iterator, err := reader.Read(dir)
	require.NoError(t, err)
	first, err := iterator.Next()
	require.NoError(t, err)
	require.NotNil(t, first)

	iterator.Close()
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline
	}, time.Second, 10*time.Millisecond)

	instance, err := iterator.Next()
	assert.NoError(t, err)
	assert.Nil(t, instance)
	iterator.Close()
}

func TestSliceIterator(t *testing.T) {
	instances := []*fields.Instance{fields.NewInstance(), fields.NewInstance()}
	iterator := SliceIterator(instances)
	first, err := iterator.Next()
	require.NoError(t, err)
	assert.Same(t, instances[0], first)
	iterator.Close()
	rest, err := CollectInstances(iterator)
	require.NoError(t, err)
	assert.Empty(t, rest)

	all, err := CollectInstances(SliceIterator(instances))
	require.NoError(t, err)
	assert.Equal(t, instances, all)
}

func TestCorpusReaderErrors(t *testing.T) {
	reader := NewMaskedCorpusReader(CorpusOptions{Format: "parquet"})
	_, err := reader.Read(t.TempDir())
	assert.True(t, errors.Is(err, corpus.ErrUnknownFormat))

	reader = NewMaskedCorpusReader(CorpusOptions{})
	_, err = reader.Read(path.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)

	_, err = reader.Read(t.TempDir())
	assert.True(t, errors.Is(err, corpus.ErrNoFiles))
}

type s3Objects map[string]string

func (objects s3Objects) ListObjectsV2(input *s3.ListObjectsV2Input) (
	*s3.ListObjectsV2Output, error) {
	contents := make([]*s3.Object, 0)
	for key, body := range objects {
		if strings.HasPrefix(key, aws.StringValue(input.Prefix)) {
			contents = append(contents, &s3.Object{
				Key:  aws.String(key),
				Size: aws.Int64(int64(len(body))),
			})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents,
		IsTruncated: aws.Bool(false)}, nil
}

func (objects s3Objects) GetObject(input *s3.GetObjectInput) (
	*s3.GetObjectOutput, error) {
	body, ok := objects[aws.StringValue(input.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))},
		nil
}

func TestCorpusReaderS3(t *testing.T) {
	reader := NewMaskedCorpusReader(CorpusOptions{
		SortSpec: "path_descending",
		S3Client: s3Objects{
			"corpus/1.tsv":    "[MASK] one\tx\n",
			"corpus/2.tsv":    "[MASK] two\ty\n",
			"elsewhere/3.tsv": "[MASK] three\tz\n",
		},
	})
	iterator, err := reader.Read("s3://bucket/corpus/")
	require.NoError(t, err)
	instances, err := CollectInstances(iterator)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, []string{"y"}, targetTexts(t, instances[0]))
	assert.Equal(t, []string{"x"}, targetTexts(t, instances[1]))
}
