package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ConsolePrompter resolves harvest conflicts interactively on the terminal.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter prompts on stdin/stdout.
func NewConsolePrompter() *ConsolePrompter {
	return &ConsolePrompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

// Select lists the candidate values numbered, plus an escape hatch to type a
// new value, and loops until the user picks one.
func (c *ConsolePrompter) Select(field Field, options []string) (string, error) {
	for {
		fmt.Fprintf(c.out, "Multiple values found for %s:\n", color.CyanString(string(field)))
		for i, opt := range options {
			fmt.Fprintf(c.out, "  %d. %s\n", i+1, opt)
		}
		fmt.Fprintf(c.out, "  n. enter a new %s\n", field)
		fmt.Fprintf(c.out, "Select the value to use in all profiles: ")

		line, err := c.in.ReadString('\n')
		if err != nil {
			return "", err
		}
		choice := strings.TrimSpace(line)

		if strings.EqualFold(choice, "n") {
			fmt.Fprintf(c.out, "Enter the new %s: ", field)
			val, err := c.in.ReadString('\n')
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(val), nil
		}
		if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		color.Yellow("Invalid choice %q, enter a number from the list or n.", choice)
	}
}

// Secret reads a value without echoing when stdin is a terminal, falling
// back to a plain read otherwise so piped input still works.
func (c *ConsolePrompter) Secret(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(c.out)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	line, err := c.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question, treating an empty answer as yes.
func (c *ConsolePrompter) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s [Y/n] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.TrimSpace(strings.ToLower(line))
	return answer != "n" && answer != "no", nil
}
