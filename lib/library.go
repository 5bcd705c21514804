package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"encoding/json"
	"strings"
	"sync"
	"unsafe"

	"github.com/wbrown/masked_lm"
	"github.com/wbrown/masked_lm/tokenizers"
)

var (
	readersMu sync.Mutex
	readers   = make(map[string]masked_lm.DatasetReader)
)

// readerFor returns the reader for a tokenizer type, building it on first
// use.
func readerFor(tokenizerType string) (masked_lm.DatasetReader, error) {
	readersMu.Lock()
	defer readersMu.Unlock()
	if reader, ok := readers[tokenizerType]; ok {
		return reader, nil
	}
	reader, err := masked_lm.NewDatasetReader(masked_lm.ReaderConfig{
		Tokenizer: tokenizers.Config{Type: tokenizerType},
	})
	if err != nil {
		return nil, err
	}
	readers[tokenizerType] = reader
	return reader, nil
}

// instanceJSON is the Go side of textToInstance. Targets are space
// separated; an empty string means there are none.
func instanceJSON(tokenizerType string, sentence string,
	targets string) string {
	var result interface{}
	reader, err := readerFor(tokenizerType)
	if err == nil {
		var targetList []string
		if fields := strings.Fields(targets); len(fields) > 0 {
			targetList = fields
		}
		result, err = masked_lm.SummarizeText(reader, sentence, targetList)
	}
	if err != nil {
		result = map[string]string{"error": err.Error()}
	}
	encoded, _ := json.Marshal(result)
	return string(encoded)
}

//export textToInstance
// textToInstance accepts a tokenizer type, a sentence and space separated
// targets as C strings, and returns a malloc'ed JSON C string holding the
// tokens, mask positions and targets, or an error.
func textToInstance(tokenizerType *C.char, sentence *C.char,
	targets *C.char) *C.char {
	return C.CString(instanceJSON(C.GoString(tokenizerType),
		C.GoString(sentence), C.GoString(targets)))
}

//export freeString
// freeString releases a string returned by textToInstance.
func freeString(str *C.char) {
	C.free(unsafe.Pointer(str))
}

// wrapTextToInstance simulates a C call from golang, and is here rather
// than in the test package as the test package is incompatible with CGo.
func wrapTextToInstance(tokenizerType string, sentence string,
	targets string) string {
	cType := C.CString(tokenizerType)
	cSentence := C.CString(sentence)
	cTargets := C.CString(targets)
	defer C.free(unsafe.Pointer(cType))
	defer C.free(unsafe.Pointer(cSentence))
	defer C.free(unsafe.Pointer(cTargets))
	result := textToInstance(cType, cSentence, cTargets)
	defer freeString(result)
	return C.GoString(result)
}

func main() {}
