package vocab

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wbrown/masked_lm/resources"
)

const (
	DefaultPaddingToken = "@@PADDING@@"
	DefaultOOVToken     = "@@UNKNOWN@@"

	NonPaddedNamespacesFile = "non_padded_namespaces.txt"
	// SpecialTokensFile holds the padding token on its first line and the
	// OOV token on its second.
	SpecialTokensFile = "special_tokens.txt"
)

var (
	ErrUnknownToken     = errors.New("token not in vocabulary")
	ErrUnknownIndex     = errors.New("index not in vocabulary")
	ErrUnknownNamespace = errors.New("namespace not in vocabulary")
)

// DefaultNonPaddedNamespaces are the patterns of namespaces that hold
// labels rather than text, and so get no padding or OOV entries.
var DefaultNonPaddedNamespaces = []string{"*tags", "*labels"}

// Counter accumulates namespace -> token -> count before a Vocabulary is
// built.
type Counter map[string]map[string]int

// Add increments the count of token in namespace.
func (counter Counter) Add(namespace string, token string) {
	tokens, ok := counter[namespace]
	if !ok {
		tokens = make(map[string]int)
		counter[namespace] = tokens
	}
	tokens[token]++
}

// Vocabulary maps token text to integer ids, partitioned into namespaces.
// Padded namespaces reserve id 0 for the padding token and id 1 for the OOV
// token. It is safe for concurrent use.
type Vocabulary struct {
	mu                  sync.RWMutex
	tokenToIndex        map[string]map[string]int
	indexToToken        map[string][]string
	nonPaddedNamespaces []string
	PaddingToken        string
	OOVToken            string
}

// NewVocabulary returns an empty Vocabulary using the default padding and
// OOV tokens. nonPadded overrides DefaultNonPaddedNamespaces when given.
func NewVocabulary(nonPadded ...string) *Vocabulary {
	if len(nonPadded) == 0 {
		nonPadded = DefaultNonPaddedNamespaces
	}
	return &Vocabulary{
		tokenToIndex:        make(map[string]map[string]int),
		indexToToken:        make(map[string][]string),
		nonPaddedNamespaces: append([]string(nil), nonPadded...),
		PaddingToken:        DefaultPaddingToken,
		OOVToken:            DefaultOOVToken,
	}
}

// namespaceMatch reports whether namespace matches pattern, where a leading
// `*` matches any prefix.
func namespaceMatch(pattern string, namespace string) bool {
	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(namespace, pattern[1:])
	}
	return pattern == namespace
}

// IsPadded reports whether namespace carries padding and OOV entries.
func (v *Vocabulary) IsPadded(namespace string) bool {
	for _, pattern := range v.nonPaddedNamespaces {
		if namespaceMatch(pattern, namespace) {
			return false
		}
	}
	return true
}

// ensureNamespace must be called with the write lock held.
func (v *Vocabulary) ensureNamespace(namespace string) {
	if _, ok := v.tokenToIndex[namespace]; ok {
		return
	}
	v.tokenToIndex[namespace] = make(map[string]int)
	v.indexToToken[namespace] = make([]string, 0)
	if v.IsPadded(namespace) {
		v.addLocked(namespace, v.PaddingToken)
		v.addLocked(namespace, v.OOVToken)
	}
}

func (v *Vocabulary) addLocked(namespace string, token string) int {
	if idx, ok := v.tokenToIndex[namespace][token]; ok {
		return idx
	}
	idx := len(v.indexToToken[namespace])
	v.tokenToIndex[namespace][token] = idx
	v.indexToToken[namespace] = append(v.indexToToken[namespace], token)
	return idx
}

// AddTokenToNamespace adds token if it is not present already, and returns
// its index.
func (v *Vocabulary) AddTokenToNamespace(token string,
	namespace string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ensureNamespace(namespace)
	return v.addLocked(namespace, token)
}

// AddTokensToNamespace adds every token in order, returning their indices.
func (v *Vocabulary) AddTokensToNamespace(tokens []string,
	namespace string) []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ensureNamespace(namespace)
	indices := make([]int, len(tokens))
	for idx := range tokens {
		indices[idx] = v.addLocked(namespace, tokens[idx])
	}
	return indices
}

// GetTokenIndex returns the index of token. Unknown tokens map to the OOV
// token in padded namespaces, and are an error otherwise.
func (v *Vocabulary) GetTokenIndex(token string, namespace string) (int,
	error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	tokens, ok := v.tokenToIndex[namespace]
	if !ok {
		if v.IsPadded(namespace) {
			// An empty padded namespace still has its OOV slot.
			return 1, nil
		}
		return 0, errors.Wrapf(ErrUnknownNamespace, "%q", namespace)
	}
	if idx, ok := tokens[token]; ok {
		return idx, nil
	}
	if oov, ok := tokens[v.OOVToken]; ok {
		return oov, nil
	}
	return 0, errors.Wrapf(ErrUnknownToken, "%q in namespace %q", token,
		namespace)
}

// GetTokenFromIndex is the inverse of GetTokenIndex.
func (v *Vocabulary) GetTokenFromIndex(idx int, namespace string) (string,
	error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	tokens, ok := v.indexToToken[namespace]
	if !ok {
		return "", errors.Wrapf(ErrUnknownNamespace, "%q", namespace)
	}
	if idx < 0 || idx >= len(tokens) {
		return "", errors.Wrapf(ErrUnknownIndex, "%d in namespace %q", idx,
			namespace)
	}
	return tokens[idx], nil
}

// GetVocabSize returns the number of entries in namespace, including the
// padding and OOV entries.
func (v *Vocabulary) GetVocabSize(namespace string) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if tokens, ok := v.indexToToken[namespace]; ok {
		return len(tokens)
	} else if v.IsPadded(namespace) {
		return 2
	}
	return 0
}

// Namespaces returns the namespace names in sorted order.
func (v *Vocabulary) Namespaces() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.indexToToken))
	for name := range v.indexToToken {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtendFromCounter adds every token counted at least minCount times. Tokens
// are added in descending count order, ties broken by text, so that ids are
// deterministic.
func (v *Vocabulary) ExtendFromCounter(counter Counter, minCount int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for namespace, counts := range counter {
		v.ensureNamespace(namespace)
		tokens := make([]string, 0, len(counts))
		for token, count := range counts {
			if count >= minCount {
				tokens = append(tokens, token)
			}
		}
		sort.Slice(tokens, func(i, j int) bool {
			if counts[tokens[i]] != counts[tokens[j]] {
				return counts[tokens[i]] > counts[tokens[j]]
			}
			return tokens[i] < tokens[j]
		})
		for _, token := range tokens {
			v.addLocked(namespace, token)
		}
	}
}

// SaveToFiles writes one `<namespace>.txt` file per namespace, one token per
// line in index order, along with the list of non-padded namespace patterns
// and the padding and OOV tokens. Padding and OOV entries are not written
// into namespace files; they are restored on load.
func (v *Vocabulary) SaveToFiles(dir string) error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	nonPadded := strings.Join(v.nonPaddedNamespaces, "\n") + "\n"
	if err := os.WriteFile(path.Join(dir, NonPaddedNamespacesFile),
		[]byte(nonPadded), 0644); err != nil {
		return err
	}
	for _, special := range []string{v.PaddingToken, v.OOVToken} {
		if special == "" || strings.Contains(special, "\n") {
			return errors.Errorf("cannot save special token %q", special)
		}
	}
	specials := v.PaddingToken + "\n" + v.OOVToken + "\n"
	if err := os.WriteFile(path.Join(dir, SpecialTokensFile),
		[]byte(specials), 0644); err != nil {
		return err
	}
	for namespace, tokens := range v.indexToToken {
		start := 0
		if v.IsPadded(namespace) {
			start = 2
		}
		buf := bytes.NewBuffer(make([]byte, 0, 16*len(tokens)))
		for _, token := range tokens[start:] {
			if strings.Contains(token, "\n") {
				return errors.Errorf("token %q in namespace %q contains "+
					"a newline", token, namespace)
			}
			buf.WriteString(token)
			buf.WriteByte('\n')
		}
		if err := os.WriteFile(path.Join(dir, namespace+".txt"), buf.Bytes(),
			0644); err != nil {
			return err
		}
	}
	return nil
}

func readLines(filePath string) ([]string, error) {
	rsrcs, err := resources.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer rsrcs.Cleanup()
	lines := make([]string, 0)
	for _, entry := range *rsrcs {
		scanner := bufio.NewScanner(bytes.NewReader(*entry.Data))
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if scanErr := scanner.Err(); scanErr != nil {
			return nil, scanErr
		}
	}
	return lines, nil
}

// FromFiles loads a Vocabulary written by SaveToFiles. Directories without
// a SpecialTokensFile get the default padding and OOV tokens.
func FromFiles(dir string) (*Vocabulary, error) {
	patterns, err := readLines(path.Join(dir, NonPaddedNamespacesFile))
	if err != nil {
		return nil, errors.Wrap(err, "reading non-padded namespaces")
	}
	nonPadded := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern != "" {
			nonPadded = append(nonPadded, pattern)
		}
	}
	vocabulary := NewVocabulary(nonPadded...)
	specials, err := readLines(path.Join(dir, SpecialTokensFile))
	switch {
	case err == nil && len(specials) >= 2:
		vocabulary.PaddingToken = specials[0]
		vocabulary.OOVToken = specials[1]
	case err == nil:
		return nil, errors.Errorf("%s holds %d tokens, expected 2",
			SpecialTokensFile, len(specials))
	case !os.IsNotExist(err):
		return nil, errors.Wrap(err, "reading special tokens")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == NonPaddedNamespacesFile ||
			name == SpecialTokensFile || !strings.HasSuffix(name, ".txt") {
			continue
		}
		namespace := strings.TrimSuffix(name, ".txt")
		tokens, readErr := readLines(path.Join(dir, name))
		if readErr != nil {
			return nil, errors.Wrapf(readErr, "reading namespace %q",
				namespace)
		}
		vocabulary.AddTokensToNamespace(tokens, namespace)
		log.Debug().
			Str("namespace", namespace).
			Int("size", vocabulary.GetVocabSize(namespace)).
			Msg("loaded vocabulary namespace")
	}
	return vocabulary, nil
}

func (v *Vocabulary) String() string {
	var sb strings.Builder
	sb.WriteString("Vocabulary with namespaces:")
	for _, namespace := range v.Namespaces() {
		sb.WriteString(fmt.Sprintf(" %s(%d)", namespace,
			v.GetVocabSize(namespace)))
	}
	return sb.String()
}
