package main

import (
	"github.com/extism/go-pdk"
	msgpack "github.com/vmihailenco/msgpack/v5"
	"github.com/wbrown/masked_lm"
)

var reader = masked_lm.NewMaskedLanguageModelingReader()

// Request is the msgpack encoded input of text_to_instance.
type Request struct {
	Sentence string   `msgpack:"sentence"`
	Targets  []string `msgpack:"targets"`
}

// TextToInstance decodes a Request and returns the msgpack encoded
// masked_lm.Summary of its instance.
func TextToInstance(input []byte) ([]byte, error) {
	var request Request
	if err := msgpack.Unmarshal(input, &request); err != nil {
		return nil, err
	}
	summary, err := masked_lm.SummarizeText(reader, request.Sentence,
		request.Targets)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(summary)
}

//go:wasmexport text_to_instance
func textToInstance() int32 {
	output, err := TextToInstance(pdk.Input())
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	pdk.Output(output)
	return 0
}

//go:wasmexport mask_positions
func maskPositions() int32 {
	summary, err := masked_lm.SummarizeText(reader, pdk.InputString(), nil)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	bytes, err := msgpack.Marshal(summary.MaskPositions)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	pdk.Output(bytes)
	return 0
}

func main() {}
