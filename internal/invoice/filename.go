// Package invoice names downloaded invoice documents.
package invoice

import (
	"fmt"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind selects the document prefix: FC for purchases, FV for sales.
type Kind string

const (
	Purchase Kind = "FC"
	Sale     Kind = "FV"
)

const idSuffixLen = 8

// Filename builds `<FV|FC>_<sanitizedName>_<YYYYMMDD>_<idSuffix>.pdf`.
func Filename(kind Kind, counterpartyName string, on time.Time, transactionID string) string {
	return fmt.Sprintf("%s_%s_%s_%s.pdf", kind, Sanitize(counterpartyName), on.Format("20060102"), idSuffix(transactionID))
}

// Sanitize strips diacritics and removes every non-letter rune from a
// counterparty name, keeping filenames portable.
func Sanitize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	decomposed, _, err := transform.String(t, name)
	if err != nil {
		decomposed = name
	}
	out := make([]rune, 0, len(decomposed))
	for _, r := range decomposed {
		if unicode.IsLetter(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

var wireDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// ParseWireDate parses the transaction date strings the listing endpoints
// return. Unparseable input falls back to the current day so a download
// still gets a dated name.
func ParseWireDate(s string) time.Time {
	for _, layout := range wireDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}

func idSuffix(id string) string {
	runes := []rune(id)
	if len(runes) <= idSuffixLen {
		return id
	}
	return string(runes[len(runes)-idSuffixLen:])
}
