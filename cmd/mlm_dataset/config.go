package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/wbrown/masked_lm"
	"github.com/wbrown/masked_lm/indexers"
	"github.com/wbrown/masked_lm/tokenizers"
)

const (
	DefaultConfigName = "mlm_dataset"
	EnvPrefix         = "MLM"
)

// Config stores the settings of every subcommand. Values come from, in
// increasing precedence, defaults, a config file, `MLM_` environment
// variables and command line flags.
type Config struct {
	Reader masked_lm.ReaderConfig `mapstructure:"reader"`
	Vocab  VocabConfig            `mapstructure:"vocab"`
	Output OutputConfig           `mapstructure:"output"`
	Fetch  FetchConfig            `mapstructure:"fetch"`
}

// VocabConfig selects where the vocabulary comes from. Load wins over
// SentencePiece, which wins over counting the corpus.
type VocabConfig struct {
	Load          string   `mapstructure:"load"`
	SentencePiece string   `mapstructure:"sentencepiece"`
	Namespace     string   `mapstructure:"namespace"`
	Save          string   `mapstructure:"save"`
	MinCount      int      `mapstructure:"min_count"`
	NonPadded     []string `mapstructure:"non_padded"`
}

type OutputConfig struct {
	// Path is the JSONL destination; empty or `-` writes to stdout.
	Path string `mapstructure:"path"`
	// Indexer names which token indexer's ids are written for text fields.
	Indexer string `mapstructure:"indexer"`
}

type FetchConfig struct {
	Dir      string `mapstructure:"dir"`
	Optional bool   `mapstructure:"optional"`
}

// flagKeys maps command line flags onto their configuration keys.
var flagKeys = map[string]string{
	"reader":        "reader.type",
	"lazy":          "reader.lazy",
	"tokenizer":     "reader.tokenizer.type",
	"model":         "reader.tokenizer.model",
	"auth":          "reader.tokenizer.auth",
	"lowercase":     "reader.tokenizer.lowercase",
	"format":        "reader.corpus.format",
	"sort":          "reader.corpus.sort",
	"workers":       "reader.corpus.workers",
	"skip-invalid":  "reader.corpus.skip_invalid",
	"sanitize":      "reader.corpus.sanitize",
	"s3-region":     "reader.corpus.s3_region",
	"vocab-load":    "vocab.load",
	"vocab-save":    "vocab.save",
	"sentencepiece": "vocab.sentencepiece",
	"min-count":     "vocab.min_count",
	"output":        "output.path",
	"indexer":       "output.indexer",
	"dir":           "fetch.dir",
	"optional":      "fetch.optional",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("reader.type", masked_lm.MaskedCorpusName)
	v.SetDefault("reader.lazy", false)
	v.SetDefault("reader.tokenizer.type", tokenizers.JustSpacesType)
	v.SetDefault("reader.tokenizer.model", "")
	v.SetDefault("reader.tokenizer.dir", "./")
	v.SetDefault("reader.tokenizer.auth", "")
	v.SetDefault("reader.tokenizer.lowercase", false)
	v.SetDefault("reader.tokenizer.cache_size", 0)
	v.SetDefault("reader.corpus.format", "")
	v.SetDefault("reader.corpus.sort", "")
	v.SetDefault("reader.corpus.workers", 0)
	v.SetDefault("reader.corpus.skip_invalid", false)
	v.SetDefault("reader.corpus.sanitize", false)
	v.SetDefault("reader.corpus.repair_mojibake", false)
	v.SetDefault("reader.corpus.s3_region", "us-east-1")
	v.SetDefault("vocab.load", "")
	v.SetDefault("vocab.sentencepiece", "")
	v.SetDefault("vocab.namespace", indexers.DefaultNamespace)
	v.SetDefault("vocab.save", "")
	v.SetDefault("vocab.min_count", 1)
	v.SetDefault("output.path", "")
	v.SetDefault("output.indexer", indexers.DefaultName)
	v.SetDefault("fetch.dir", "./")
	v.SetDefault("fetch.optional", false)
}

// LoadConfig reads configuration from configPath, or `mlm_dataset.yaml` in
// the working directory when empty, then layers the environment and any
// flags that were set on top.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(flag *pflag.Flag) {
			key, ok := flagKeys[flag.Name]
			if !ok || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, flag)
		})
		if bindErr != nil {
			return nil, errors.Wrap(bindErr, "binding flags")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	return &config, nil
}

// configFromCommand loads the configuration for a running subcommand.
func configFromCommand(flags *pflag.FlagSet) (*Config, error) {
	configPath, _ := flags.GetString("config")
	return LoadConfig(configPath, flags)
}
