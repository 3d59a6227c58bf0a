package args

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Markers are the characters that introduce a flag token.
const Markers = "-/"

// entry keeps the key as the user spelled it for diagnostics.
type entry struct {
	key   string
	value string
}

// Dictionary is a case-insensitive, insertion-ordered flag map.
type Dictionary struct {
	entries *orderedmap.OrderedMap[string, entry]
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: orderedmap.New[string, entry]()}
}

// Split separates the command name from its flag tokens. A missing or blank
// command name is ErrNoCommand.
func Split(argv []string) (string, []string, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return "", nil, ErrNoCommand
	}
	return argv[0], argv[1:], nil
}

// Parse builds a dictionary from flag tokens. The command name must already
// have been removed (see Split).
func Parse(tokens []string) (*Dictionary, error) {
	dict := NewDictionary()
	for _, token := range tokens {
		key, value, err := ParseToken(token)
		if err != nil {
			return nil, err
		}
		dict.Set(key, value)
	}
	return dict, nil
}

// ParseToken splits a single flag token into its key and value.
func ParseToken(token string) (key, value string, err error) {
	if len(token) < 2 || !strings.ContainsRune(Markers, rune(token[0])) {
		return "", "", &MalformedArgumentError{Token: token}
	}
	body := token[1:]
	key, value, _ = strings.Cut(body, "=")
	if key == "" {
		return "", "", &MalformedArgumentError{Token: token}
	}
	return key, value, nil
}

// Set stores value under key, replacing any earlier value for the same key.
func (d *Dictionary) Set(key, value string) {
	d.entries.Set(fold(key), entry{key: key, value: value})
}

// Get returns the value stored for key.
func (d *Dictionary) Get(key string) (string, bool) {
	e, ok := d.entries.Get(fold(key))
	return e.value, ok
}

// Has reports whether key is present.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.entries.Get(fold(key))
	return ok
}

// Len returns the number of distinct keys.
func (d *Dictionary) Len() int {
	return d.entries.Len()
}

// Keys returns the keys in insertion order, spelled as last given.
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, d.entries.Len())
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Value.key)
	}
	return keys
}

// Each calls fn for every entry in insertion order and stops at the first error.
func (d *Dictionary) Each(fn func(key, value string) error) error {
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		if err := fn(pair.Value.key, pair.Value.value); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dictionary) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		if pair != d.entries.Oldest() {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%q", pair.Value.key, pair.Value.value)
	}
	sb.WriteByte('}')
	return sb.String()
}

func fold(key string) string {
	return strings.ToLower(key)
}
