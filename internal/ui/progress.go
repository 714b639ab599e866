package ui

import (
	"fmt"
	"strings"
)

const progressWidth = 30

// phaseLabels maps mint pipeline phases to display text.
var phaseLabels = map[string]string{
	"idle":                "Waiting",
	"approving":           "Approving token spend",
	"generating_metadata": "Generating pin artwork",
	"submitting":          "Submitting transaction",
	"complete":            "Complete",
	"failed":              "Failed",
}

// PhaseLabel returns a human-friendly label for a mint phase.
func PhaseLabel(phase string) string {
	if label, ok := phaseLabels[phase]; ok {
		return label
	}
	return phase
}

// ProgressBar renders a fixed-width bar for pct in [0,100].
func ProgressBar(pct int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * progressWidth / 100
	bar := StyleSuccess.Render(strings.Repeat("█", filled)) +
		StyleMeta.Render(strings.Repeat("░", progressWidth-filled))
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// MintProgress renders one line of mint pipeline progress, suitable for
// overwriting in place with a leading \r.
func MintProgress(phase string, pct int) string {
	label := PhaseLabel(phase)
	switch phase {
	case "complete":
		label = StyleSuccess.Render("✓ " + label)
	case "failed":
		label = StyleError.Render("✗ " + label)
	default:
		label = StyleInfo.Render(label)
	}
	return fmt.Sprintf("%s  %s", ProgressBar(pct), padR(label, 26))
}
