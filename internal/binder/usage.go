package binder

import (
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// DefaultWidth is used when the caller has no terminal width.
const DefaultWidth = 80

// minWrap keeps descriptions readable on very narrow terminals.
const minWrap = 20

// Usage prints the fields of the table as an aligned, word-wrapped list:
//
//	Possible arguments:
//	Data      (required) text to print, wrapped at the
//	          terminal width
//	Repeat    number of times to print it
func (t *Table[C]) Usage(w io.Writer, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	fields := t.Fields()
	if _, err := fmt.Fprintln(w, "Possible arguments:"); err != nil {
		return err
	}
	if len(fields) == 0 {
		_, err := fmt.Fprintln(w, "  (none)")
		return err
	}

	longest := 0
	for _, f := range fields {
		longest = max(longest, len(f.name))
	}
	pad := longest + 2
	wrapAt := max(width-longest-3, minWrap)

	for _, f := range fields {
		for i, line := range descriptionLines(f, wrapAt) {
			label := ""
			if i == 0 {
				label = f.name
			}
			if _, err := fmt.Fprintf(w, "%-*s%s\n", pad, label, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func descriptionLines[C any](f Field[C], wrapAt int) []string {
	text := f.description
	if text == "" {
		text = f.typeName
	}
	if f.required {
		text = "(required) " + text
	}
	return strings.Split(wordwrap.WrapString(text, uint(wrapAt)), "\n")
}
