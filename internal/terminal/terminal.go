// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides small helpers for interactive prompts.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Width returns the terminal width, or 80 when it cannot be determined.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// linesFor returns how many rows textLength characters occupy at the given
// width, plus the row the cursor moved to after Enter.
func linesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	n := int(math.Ceil(float64(textLength) / float64(width)))
	if n < 1 {
		n = 1
	}
	return n + 1
}

// ClearPreviousLines erases a prompt and the answer typed after it.
func ClearPreviousLines(w io.Writer, textLength int) {
	lines := linesFor(textLength, Width())
	for i := 0; i < lines; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < lines-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}

// Confirm prints prompt, reads one line from r and reports whether the answer
// equals want (case-insensitive). The prompt and answer are erased afterwards
// on interactive terminals.
func Confirm(r io.Reader, w io.Writer, prompt, want string) bool {
	fmt.Fprint(w, prompt)
	ans, _ := bufio.NewReader(r).ReadString('\n')
	ans = strings.TrimSpace(ans)
	if IsInteractive() {
		ClearPreviousLines(w, len(prompt)+len(ans))
	}
	return strings.EqualFold(ans, want)
}
