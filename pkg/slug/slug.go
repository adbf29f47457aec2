package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var translit = strings.NewReplacer(
	// Cyrillic
	"а", "a", "б", "b", "в", "v", "г", "g", "д", "d", "е", "e", "ё", "e",
	"ж", "zh", "з", "z", "и", "i", "й", "y", "к", "k", "л", "l", "м", "m",
	"н", "n", "о", "o", "п", "p", "р", "r", "с", "s", "т", "t", "у", "u",
	"ф", "f", "х", "kh", "ц", "ts", "ч", "ch", "ш", "sh", "щ", "shch",
	"ъ", "", "ы", "y", "ь", "", "э", "e", "ю", "yu", "я", "ya",
	// Latin diacritics common in author names
	"à", "a", "á", "a", "â", "a", "ä", "a", "å", "a", "ç", "c",
	"è", "e", "é", "e", "ê", "e", "ë", "e", "ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n", "ò", "o", "ó", "o", "ô", "o", "ö", "o", "ø", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u", "ß", "ss", "ğ", "g", "ş", "s",
)

// segment turns a title, author or genre into a lowercase ASCII slug.
// Cyrillic is transliterated.
//
// Examples:
//   - "Научная фантастика" → "nauchnaya-fantastika"
//   - "Gabriel García Márquez" → "gabriel-garcia-marquez"
//   - "Hello   World!" → "hello-world"
func segment(name string) string {
	s := translit.Replace(strings.ToLower(strings.TrimSpace(name)))
	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}

// Key joins the slugs of parts with ":" for use as a cache key segment.
// Empty parts become "_" so positions stay stable.
func Key(parts ...string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		if out[i] = segment(p); out[i] == "" {
			out[i] = "_"
		}
	}
	return strings.Join(out, ":")
}
