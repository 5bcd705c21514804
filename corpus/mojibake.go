package corpus

import (
	"sort"
	"strings"
)

// mojibakeTable maps UTF-8 text that was decoded as Windows-1252 back to
// the characters it started as.
var mojibakeTable = map[string]string{
	"â‚¬": "€",
	"â€š": "‚",
	"Æ’":  "ƒ",
	"â€ž": "„",
	"â€¦": "…",
	"â€¡": "‡",
	"Ë†":  "ˆ",
	"â€°": "‰",
	"â€¹": "‹",
	"Å’":  "Œ",
	"Å½":  "Ž",
	"â€˜": "‘",
	"â€™": "’",
	"â€œ": "“",
	"â€¢": "•",
	"â€“": "–",
	"â€”": "—",
	"Ëœ":  "˜",
	"â„¢": "™",
	"Å¡":  "š",
	"â€º": "›",
	"Å“":  "œ",
	"Å¾":  "ž",
	"Å¸":  "Ÿ",
	"Â¡":  "¡",
	"Â¢":  "¢",
	"Â£":  "£",
	"Â¤":  "¤",
	"Â¥":  "¥",
	"Â¦":  "¦",
	"Â§":  "§",
	"Â¨":  "¨",
	"Â©":  "©",
	"Âª":  "ª",
	"Â«":  "«",
	"Â®":  "®",
	"Â¯":  "¯",
	"Â°":  "°",
	"Â±":  "±",
	"Â²":  "²",
	"Â³":  "³",
	"Â´":  "´",
	"Âµ":  "µ",
	"Â¶":  "¶",
	"Â·":  "·",
	"Â¸":  "¸",
	"Â¹":  "¹",
	"Âº":  "º",
	"Â»":  "»",
	"Â¼":  "¼",
	"Â½":  "½",
	"Â¾":  "¾",
	"Â¿":  "¿",
	"Ã€":  "À",
	"Ã‚":  "Â",
	"Ãƒ":  "Ã",
	"Ã„":  "Ä",
	"Ã…":  "Å",
	"Ã†":  "Æ",
	"Ã‡":  "Ç",
	"Ãˆ":  "È",
	"Ã‰":  "É",
	"ÃŠ":  "Ê",
	"Ã‹":  "Ë",
	"ÃŒ":  "Ì",
	"ÃŽ":  "Î",
	"Ã‘":  "Ñ",
	"Ã’":  "Ò",
	"Ã“":  "Ó",
	"Ã”":  "Ô",
	"Ã•":  "Õ",
	"Ã–":  "Ö",
	"Ã—":  "×",
	"Ã˜":  "Ø",
	"Ã™":  "Ù",
	"Ãš":  "Ú",
	"Ã›":  "Û",
	"Ãœ":  "Ü",
	"Ãž":  "Þ",
	"ÃŸ":  "ß",
	"Ã¡":  "á",
	"Ã¢":  "â",
	"Ã£":  "ã",
	"Ã¤":  "ä",
	"Ã¥":  "å",
	"Ã¦":  "æ",
	"Ã§":  "ç",
	"Ã¨":  "è",
	"Ã©":  "é",
	"Ãª":  "ê",
	"Ã«":  "ë",
	"Ã¬":  "ì",
	"Ã®":  "î",
	"Ã¯":  "ï",
	"Ã°":  "ð",
	"Ã±":  "ñ",
	"Ã²":  "ò",
	"Ã³":  "ó",
	"Ã´":  "ô",
	"Ãµ":  "õ",
	"Ã¶":  "ö",
	"Ã·":  "÷",
	"Ã¸":  "ø",
	"Ã¹":  "ù",
	"Ãº":  "ú",
	"Ã»":  "û",
	"Ã¼":  "ü",
	"Ã½":  "ý",
	"Ã¾":  "þ",
	"Ã¿":  "ÿ",
}

var mojibakeReplacer = newMojibakeReplacer()

func newMojibakeReplacer() *strings.Replacer {
	keys := make([]string, 0, len(mojibakeTable))
	for key := range mojibakeTable {
		keys = append(keys, key)
	}
	// Longest first, so a three rune sequence wins over its prefix.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, key, mojibakeTable[key])
	}
	return strings.NewReplacer(pairs...)
}

// RepairMojibake undoes the common Windows-1252 misdecoding of UTF-8 text.
func RepairMojibake(text string) string {
	return mojibakeReplacer.Replace(text)
}
