// Package fuzzy provides the interactive pickers used by the setup flow:
// a plain numbered selector for small fixed choices such as the connection
// mode, and an fzf-backed finder for selecting accounts.
package fuzzy

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Option represents a selectable option.
type Option struct {
	Value       string
	Description string
}

// Finder is a plain numbered selector.
type Finder struct {
	prompt  string
	options []Option
}

// New creates a new finder with the given prompt.
func New(prompt string) *Finder {
	return &Finder{
		prompt:  prompt,
		options: make([]Option, 0),
	}
}

// AddOption adds an option to the finder.
func (f *Finder) AddOption(value, description string) {
	f.options = append(f.options, Option{
		Value:       value,
		Description: description,
	})
}

// Select displays the options and lets the operator pick one by number.
func (f *Finder) Select() (string, error) {
	if len(f.options) == 0 {
		return "", fmt.Errorf("no options available")
	}

	fmt.Println(f.prompt)
	fmt.Println(strings.Repeat("-", len(f.prompt)))

	for i, option := range f.options {
		fmt.Printf("%d. %s", i+1, option.Value)
		if option.Description != "" {
			fmt.Printf(" - %s", option.Description)
		}
		fmt.Println()
	}

	fmt.Print("\nSelect option (1-" + strconv.Itoa(len(f.options)) + "): ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	selection, err := strconv.Atoi(input)
	if err != nil {
		return "", fmt.Errorf("invalid selection: %s", input)
	}

	if selection < 1 || selection > len(f.options) {
		return "", fmt.Errorf("selection out of range: %d", selection)
	}

	return f.options[selection-1].Value, nil
}
