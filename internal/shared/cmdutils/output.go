// Package cmdutils holds terminal output helpers shared by CLI commands.
package cmdutils

import (
	"fmt"
	"io"
)

// Logo prefixes CLI banners.
const Logo = "🧬"

// PrintAnswer writes a labelled final answer to w.
func PrintAnswer(w io.Writer, mode, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(w, "\n%s bioreason [%s]\n%s\n\n", Logo, mode, text)
}
