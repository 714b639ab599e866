package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Confirm asks a yes/no question on stdin, defaulting to no. The default
// is deliberate: every prompt in this CLI guards a transaction, and a
// stray newline must never spend tokens.
func Confirm(prompt string) bool {
	return ask(StyleWarning.Render(prompt))
}

// ConfirmDanger is Confirm in the error color, for irreversible actions
// like fusing flair or removing a wallet.
func ConfirmDanger(prompt string) bool {
	return ask(StyleError.Render("⚠ " + prompt))
}

func ask(rendered string) bool {
	fmt.Printf("%s [y/N]: ", rendered)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.TrimSpace(strings.ToLower(line)) {
	case "y", "yes":
		return true
	}
	return false
}
