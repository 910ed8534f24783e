package skill

import (
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Severity classifies a violation as a hard failure or an advisory.
type Severity string

const (
	// SeverityError marks violations of the descriptor contract.
	SeverityError Severity = "error"
	// SeverityWarning marks advisory findings that do not fail validation.
	SeverityWarning Severity = "warning"
)

// Violation is a single failed check against a descriptor.
type Violation struct {
	Field    string   `json:"field"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Severity, v.Field, v.Message)
}

// triggerPhrases is the keyword heuristic for "the description states when
// to use the skill". Inherently fuzzy, so any hit only silences a warning.
var triggerPhrases = []string{
	"use when",
	"use this",
	"use it when",
	"when the user",
	"when you",
	"when asked",
	"trigger",
}

// Validate runs every contract check independently and returns all
// violations found; it never stops at the first failure. An empty result
// means the descriptor satisfies the contract. Advisory findings are
// reported separately by Advisories.
func (d *Descriptor) Validate() []Violation {
	var violations []Violation

	if err := validation.Validate(d.Name, validation.Required); err != nil {
		violations = append(violations, Violation{
			Field:    "name",
			Rule:     "name-required",
			Message:  "name is required",
			Severity: SeverityError,
		})
	} else {
		if err := validation.Validate(d.Name, validation.Match(namePattern)); err != nil {
			violations = append(violations, Violation{
				Field:    "name",
				Rule:     "name-charset",
				Message:  "name must contain only lowercase letters, digits, and hyphens",
				Severity: SeverityError,
			})
		}
		if err := validation.Validate(d.Name, validation.RuneLength(0, MaxNameLength)); err != nil {
			violations = append(violations, Violation{
				Field:    "name",
				Rule:     "name-length",
				Message:  fmt.Sprintf("name must be at most %d characters", MaxNameLength),
				Severity: SeverityError,
			})
		}
	}

	if err := validation.Validate(d.Description, validation.Required); err != nil {
		violations = append(violations, Violation{
			Field:    "description",
			Rule:     "description-required",
			Message:  "description is required",
			Severity: SeverityError,
		})
	} else {
		if err := validation.Validate(d.Description, validation.RuneLength(0, MaxDescriptionLength)); err != nil {
			violations = append(violations, Violation{
				Field:    "description",
				Rule:     "description-length",
				Message:  fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength),
				Severity: SeverityError,
			})
		}
	}

	for i, tool := range d.AllowedTools {
		if strings.TrimSpace(tool) == "" {
			violations = append(violations, Violation{
				Field:    "allowed-tools",
				Rule:     "allowed-tools-empty",
				Message:  fmt.Sprintf("allowed-tools entry %d is empty", i),
				Severity: SeverityError,
			})
		}
	}

	return violations
}

// Advisories reports warning-severity findings: conventions a well-authored
// skill follows but that the contract does not enforce. The trigger-language
// check is a keyword heuristic and intentionally never a hard failure.
func (d *Descriptor) Advisories() []Violation {
	var advisories []Violation

	if d.Description != "" && !hasTriggerLanguage(d.Description) {
		advisories = append(advisories, Violation{
			Field:    "description",
			Rule:     "description-trigger",
			Message:  `description should state when to use the skill (e.g. "Use when ...")`,
			Severity: SeverityWarning,
		})
	}

	if d.Body != "" && !bodyHasHeading(d.Body) {
		advisories = append(advisories, Violation{
			Field:    "body",
			Rule:     "body-structure",
			Message:  "body has no headings; consider structuring instructions under headings",
			Severity: SeverityWarning,
		})
	}

	return advisories
}

func hasTriggerLanguage(description string) bool {
	lowered := strings.ToLower(description)
	for _, phrase := range triggerPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// bodyHasHeading walks the Markdown AST looking for any heading node.
func bodyHasHeading(body string) bool {
	source := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.Heading); ok {
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

// CheckDirectoryMatch reports whether the descriptor name matches the base
// name of the directory it lives in. The convention is not enforced
// anywhere, so a mismatch is only a warning; nil means the names agree.
func CheckDirectoryMatch(d *Descriptor, dir string) *Violation {
	base := filepath.Base(filepath.Clean(dir))
	if d.Name == "" || base == d.Name {
		return nil
	}
	return &Violation{
		Field:    "name",
		Rule:     "name-dir-mismatch",
		Message:  fmt.Sprintf("name %q does not match directory name %q", d.Name, base),
		Severity: SeverityWarning,
	}
}

// HasErrors reports whether any violation in the list is error severity.
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}
