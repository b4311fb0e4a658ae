package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers from stdin. Lines are read through one buffered
// reader so consecutive prompts on a pipe see consecutive lines.
type prompter struct {
	stdin  io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(stdin io.Reader, out io.Writer) *prompter {
	return &prompter{stdin: stdin, reader: bufio.NewReader(stdin), out: out}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *prompter) password(label string) (string, error) {
	fmt.Fprint(p.out, label)
	// Check if stdin is a terminal
	if f, ok := p.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out) // Print newline after password input
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	s, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Confirm asks a yes/no question; anything but y or yes is no.
func (p *prompter) Confirm(question string) bool {
	answer, err := p.line(question + " [y/N]: ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// fill prompts for every empty value, in order.
func (p *prompter) fill(fields ...field) error {
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		var err error
		if f.secret {
			*f.value, err = p.password(f.label + ": ")
		} else {
			*f.value, err = p.line(f.label + ": ")
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", strings.ToLower(f.label), err)
		}
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return fmt.Errorf("%s cannot be empty", strings.ToLower(f.label))
		}
	}
	return nil
}

type field struct {
	label  string
	value  *string
	secret bool
}
