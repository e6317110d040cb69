package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// uiContext is what decides whether the progress view is worth showing.
type uiContext struct {
	tty    bool
	stdout bool // formatted content goes to stdout
	quiet  bool
	files  int
}

func shouldUseTUI(mode uiMode, uc uiContext) bool {
	switch mode {
	case uiModeOn:
		return !uc.stdout
	case uiModeOff:
		return false
	default:
		return uc.tty && !uc.stdout && !uc.quiet && uc.files > 1
	}
}

func stdoutIsTerminal() bool {
	return isTerminal(os.Stdout)
}
