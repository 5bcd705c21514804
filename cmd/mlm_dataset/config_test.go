package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wbrown/masked_lm"
	"github.com/wbrown/masked_lm/indexers"
	"github.com/wbrown/masked_lm/tokenizers"
)

const testConfig = `
reader:
  lazy: true
  tokenizer:
    type: prose
  token_indexers:
    words:
      namespace: words
      lowercase_tokens: true
  corpus:
    format: tsv
    workers: 4
vocab:
  min_count: 2
  non_padded:
    - "*labels"
output:
  path: out.jsonl
`

// ConfigTestSuite runs every test in a scratch working directory.
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)
	suite.tempDir = suite.T().TempDir()
	require.NoError(suite.T(), os.Chdir(suite.tempDir))
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
}

func (suite *ConfigTestSuite) writeConfig(name string) string {
	configPath := filepath.Join(suite.tempDir, name)
	require.NoError(suite.T(), os.WriteFile(configPath, []byte(testConfig),
		0644))
	return configPath
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	config, err := LoadConfig("", nil)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), masked_lm.MaskedCorpusName, config.Reader.Type)
	assert.False(suite.T(), config.Reader.Lazy)
	assert.Equal(suite.T(), tokenizers.JustSpacesType,
		config.Reader.Tokenizer.Type)
	assert.Equal(suite.T(), "us-east-1", config.Reader.Corpus.S3Region)
	assert.Equal(suite.T(), 1, config.Vocab.MinCount)
	assert.Equal(suite.T(), indexers.DefaultNamespace, config.Vocab.Namespace)
	assert.Equal(suite.T(), indexers.DefaultName, config.Output.Indexer)
	assert.Empty(suite.T(), config.Output.Path)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configPath := suite.writeConfig("custom.yaml")
	config, err := LoadConfig(configPath, nil)
	require.NoError(suite.T(), err)
	suite.assertFileValues(config)
}

func (suite *ConfigTestSuite) TestLoadConfigFindsDefaultFile() {
	suite.writeConfig(DefaultConfigName + ".yaml")
	config, err := LoadConfig("", nil)
	require.NoError(suite.T(), err)
	suite.assertFileValues(config)
}

func (suite *ConfigTestSuite) assertFileValues(config *Config) {
	assert.True(suite.T(), config.Reader.Lazy)
	assert.Equal(suite.T(), tokenizers.ProseType, config.Reader.Tokenizer.Type)
	assert.Equal(suite.T(), map[string]indexers.Config{
		"words": {Namespace: "words", LowercaseTokens: true},
	}, config.Reader.TokenIndexers)
	assert.Equal(suite.T(), "tsv", config.Reader.Corpus.Format)
	assert.Equal(suite.T(), 4, config.Reader.Corpus.Workers)
	assert.Equal(suite.T(), 2, config.Vocab.MinCount)
	assert.Equal(suite.T(), []string{"*labels"}, config.Vocab.NonPadded)
	assert.Equal(suite.T(), "out.jsonl", config.Output.Path)
}

func (suite *ConfigTestSuite) TestEnvironmentOverridesFile() {
	configPath := suite.writeConfig("custom.yaml")
	suite.T().Setenv("MLM_READER_CORPUS_FORMAT", "jsonl")
	suite.T().Setenv("MLM_VOCAB_MIN_COUNT", "5")

	config, err := LoadConfig(configPath, nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "jsonl", config.Reader.Corpus.Format)
	assert.Equal(suite.T(), 5, config.Vocab.MinCount)
	assert.Equal(suite.T(), 4, config.Reader.Corpus.Workers)
}

func (suite *ConfigTestSuite) TestFlagsOverrideEverything() {
	configPath := suite.writeConfig("custom.yaml")
	suite.T().Setenv("MLM_READER_CORPUS_FORMAT", "jsonl")

	flags := pflag.NewFlagSet("index", pflag.ContinueOnError)
	flags.String("format", "", "")
	flags.Int("min-count", 1, "")
	flags.Int("workers", 0, "")
	require.NoError(suite.T(), flags.Parse([]string{"--format=text",
		"--min-count=7"}))

	config, err := LoadConfig(configPath, flags)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "text", config.Reader.Corpus.Format)
	assert.Equal(suite.T(), 7, config.Vocab.MinCount)
	// Unset flags leave the file's value alone.
	assert.Equal(suite.T(), 4, config.Reader.Corpus.Workers)
}

func (suite *ConfigTestSuite) TestMissingConfigFile() {
	_, err := LoadConfig(filepath.Join(suite.tempDir, "missing.yaml"), nil)
	assert.Error(suite.T(), err)
}

func (suite *ConfigTestSuite) TestConfigBuildsReader() {
	configPath := suite.writeConfig("custom.yaml")
	config, err := LoadConfig(configPath, nil)
	require.NoError(suite.T(), err)

	reader, err := masked_lm.NewDatasetReader(config.Reader)
	require.NoError(suite.T(), err)
	corpusReader, ok := reader.(*masked_lm.MaskedCorpusReader)
	require.True(suite.T(), ok)
	assert.True(suite.T(), corpusReader.Lazy())
	assert.Equal(suite.T(), []string{"words"},
		corpusReader.TokenIndexers().Names())
}
