package host

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/opencode-ai/runhost/internal/binder"
)

// Width returns the column count of w when it is a terminal, and
// binder.DefaultWidth otherwise.
func Width(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return binder.DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return binder.DefaultWidth
	}
	return width
}
