package main

//go:generate gopherjs build --minify

import (
	"log"

	"github.com/gopherjs/gopherjs/js"
	"github.com/wbrown/masked_lm"
)

var reader = masked_lm.NewMaskedLanguageModelingReader()

// TextToInstance returns the token texts, mask positions and targets of a
// sentence, or an `error` entry when it cannot be turned into an instance.
func TextToInstance(sentence string, targets []string) map[string]interface{} {
	summary, err := masked_lm.SummarizeText(reader, sentence, targets)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	return map[string]interface{}{
		masked_lm.TokensField:        summary.Tokens,
		masked_lm.MaskPositionsField: summary.MaskPositions,
		masked_lm.TargetIdsField:     summary.Targets,
	}
}

func init() {
	js.Module.Get("exports").Set("textToInstance", TextToInstance)
	log.Printf("Masked LM reader loaded")
}

func main() {

}
