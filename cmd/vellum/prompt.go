package main

import (
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
)

// interactive reports whether stdin and stdout are both attached to a
// terminal, the condition under which prompting for missing flags makes
// sense instead of failing fast with a usage error.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// promptForPath asks the user to fill in a required path-shaped flag that
// was left empty on the command line. Only called when interactive()
// already returned true.
func promptForPath(label, help string) (string, error) {
	var value string

	field := huh.NewInput().
		Title(label).
		Description(help).
		Validate(func(s string) error {
			if s == "" {
				return errEmptyPath
			}

			return nil
		}).
		Value(&value)

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return "", err
	}

	return value, nil
}

var errEmptyPath = errors.New("a path is required")

// resolveRequiredPath returns value as-is if set; otherwise it prompts
// interactively, or fails fast with a usage-shaped error when not attached
// to a terminal.
func resolveRequiredPath(value, label, help string) (string, error) {
	if value != "" {
		return value, nil
	}

	if !interactive() {
		return "", usageErrorf("missing required flag for %s", label)
	}

	return promptForPath(label, help)
}
