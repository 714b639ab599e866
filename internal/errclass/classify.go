// Package errclass maps raw wallet/RPC/contract failures to typed,
// user-facing error records. Classification is string matching over
// provider error text because the wallet/RPC layer is not under our control
// and exposes heterogeneous error shapes; structured revert names are
// preferred whenever the gateway was able to decode them.
package errclass

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind is the failure category. Exactly one kind per error.
type Kind string

const (
	UserRejected      Kind = "user_rejected"
	InsufficientFunds Kind = "insufficient_funds"
	ContractRevert    Kind = "contract_revert"
	NetworkError      Kind = "network_error"
	Unknown           Kind = "unknown"
)

// Severity determines the default UI treatment.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Parsed is the classified, user-facing error record.
type Parsed struct {
	Kind       Kind
	Title      string
	Message    string
	ActionHint string
	Severity   Severity
	Technical  string // dev-only detail, shown under --verbose
}

// Context names where the failure happened, embedded only in Technical.
type Context struct {
	Facet    string
	Function string
}

// revertNamer is implemented by errors carrying a decoded custom-error name
// (the gateway's normalized revert shape).
type revertNamer interface {
	RevertName() string
}

var userRejectedPhrases = []string{
	"user rejected",
	"user denied",
	"cancelled by user",
	"canceled by user",
	"rejected the request",
	"request rejected",
}

var insufficientFundsPhrases = []string{
	"insufficient funds",
	"insufficient balance",
	"exceeds balance",
	"not enough funds",
	"gas required exceeds allowance",
}

var networkPhrases = []string{
	"network error",
	"timeout",
	"timed out",
	"econnrefused",
	"econnreset",
	"connection refused",
	"no such host",
	"context deadline exceeded",
	"rpc request failed",
	"service unavailable",
	"too many requests",
}

// Ordered extraction patterns for a custom error identifier. The generic
// Namespace__ErrorName token comes last so the explicit revert framings win.
var revertNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`execution reverted:\s*([A-Za-z_][A-Za-z0-9_]*)`),
	regexp.MustCompile(`ContractFunctionRevertedError:\s*([A-Za-z_][A-Za-z0-9_]*)`),
	regexp.MustCompile(`reverted with the following reason:\s*([A-Za-z_][A-Za-z0-9_]*)`),
	regexp.MustCompile(`\b([A-Za-z][A-Za-z0-9]*__[A-Za-z][A-Za-z0-9]*)\b`),
}

// Classify maps err to a Parsed record. Pure and deterministic for the same
// error text; first match wins, in priority order, so a revert reason that
// happens to contain the word "timeout" is still a revert.
func Classify(err error, cctx *Context) Parsed {
	if err == nil {
		return Parsed{Kind: Unknown, Severity: SeverityError, Title: "Something went wrong"}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	for _, p := range userRejectedPhrases {
		if strings.Contains(lower, p) {
			return Parsed{
				Kind:     UserRejected,
				Severity: SeverityWarning,
				Title:    "Transaction cancelled",
				Message:  "You rejected the request in your wallet.",
				Technical: msg,
			}
		}
	}

	for _, p := range insufficientFundsPhrases {
		if strings.Contains(lower, p) {
			return Parsed{
				Kind:       InsufficientFunds,
				Severity:   SeverityError,
				Title:      "Insufficient funds",
				Message:    "Your balance does not cover this action plus gas.",
				ActionHint: "Add funds to your wallet and try again.",
				Technical:  msg,
			}
		}
	}

	if name, structured := extractRevertName(err, msg); name != "" {
		if entry, ok := revertTable[name]; ok {
			return Parsed{
				Kind:       ContractRevert,
				Severity:   SeverityError,
				Title:      entry.Title,
				Message:    entry.Message,
				ActionHint: entry.Hint,
				Technical:  msg,
			}
		}
		if structured {
			// The gateway decoded this revert from return data, so it is
			// definitely a revert even without friendly copy for it.
			return Parsed{
				Kind:      ContractRevert,
				Severity:  SeverityError,
				Title:     "Transaction would fail",
				Message:   "The contract rejected this action (" + name + ").",
				Technical: msg,
			}
		}
		// An identifier scraped out of provider text with no table entry is
		// not trusted as a revert; the later phrase checks may know better.
	}

	for _, p := range networkPhrases {
		if strings.Contains(lower, p) {
			return Parsed{
				Kind:       NetworkError,
				Severity:   SeverityError,
				Title:      "Network problem",
				Message:    "Could not reach the chain. This is usually temporary.",
				ActionHint: "Check your connection and retry.",
				Technical:  msg,
			}
		}
	}

	technical := msg
	if cctx != nil {
		technical = fmt.Sprintf("%s.%s: %s", cctx.Facet, cctx.Function, msg)
	}
	return Parsed{
		Kind:      Unknown,
		Severity:  SeverityError,
		Title:     "Something went wrong",
		Message:   "The action could not be completed.",
		Technical: technical,
	}
}

// extractRevertName prefers a structured decoded name over string patterns.
// structured reports whether the name came from a decoded revert rather
// than pattern matching over provider text.
func extractRevertName(err error, msg string) (name string, structured bool) {
	var rn revertNamer
	if errors.As(err, &rn) {
		if name := rn.RevertName(); name != "" {
			return name, true
		}
	}
	for _, re := range revertNamePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			return m[1], false
		}
	}
	return "", false
}
