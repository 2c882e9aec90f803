// Package prompt asks questions on the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads answers from one input and writes questions to out. All
// questions share one buffered reader so consecutive answers are not lost.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a prompter over in and out
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm prints question with a [y/N] or [Y/n] hint and reads one line.
// An empty answer picks def; read errors count as no.
func (p *Prompter) Confirm(question string, def bool) bool {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s ", question, hint)

	input, err := p.in.ReadString('\n')
	if err != nil && input == "" {
		fmt.Fprintln(p.out)
		return false
	}

	input = strings.TrimSpace(strings.ToLower(input))
	switch input {
	case "":
		return def
	case "y", "yes":
		return true
	}
	return false
}

// Line prints question and returns the trimmed answer
func (p *Prompter) Line(question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	input, err := p.in.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
