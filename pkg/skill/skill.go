// Package skill defines the SKILL.md descriptor contract: the YAML
// frontmatter fields a skill must carry, strict parsing and canonical
// serialization of skill documents, and field-level validation.
//
// A skill document looks like:
//
//	---
//	name: code-reviewer
//	description: Reviews code for common issues. Use when asked to review a PR.
//	---
//
//	# Code Reviewer
//	...
//
// Parsing is strict (both `---` delimiters required); discovery elsewhere in
// this module is deliberately more forgiving and simply skips documents this
// package rejects.
package skill

import "regexp"

const (
	// MaxNameLength is the maximum number of characters in a skill name.
	MaxNameLength = 64

	// MaxDescriptionLength is the maximum number of characters in a skill description.
	MaxDescriptionLength = 1024

	// FileName is the well-known file name of a skill document within its directory.
	FileName = "SKILL.md"
)

// namePattern is the allowed charset for skill names: lowercase letters,
// digits, and hyphens.
var namePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Descriptor is the parsed metadata and body of a skill document.
type Descriptor struct {
	// Name uniquely identifies the skill within its scope. Lowercase
	// letters, digits, and hyphens only; at most MaxNameLength characters.
	Name string `yaml:"name" json:"name" jsonschema:"pattern=^[a-z0-9-]+$,maxLength=64,description=Unique skill identifier"`

	// Description states what the skill does and when to use it. At most
	// MaxDescriptionLength characters.
	Description string `yaml:"description" json:"description" jsonschema:"maxLength=1024,description=What the skill does and when to use it"`

	// AllowedTools restricts which tools the skill may invoke. Empty means
	// unrestricted.
	AllowedTools []string `yaml:"allowed-tools,omitempty" json:"allowed-tools,omitempty" jsonschema:"description=Tool names the skill is limited to"`

	// Body is the Markdown instructional content following the frontmatter.
	Body string `yaml:"-" json:"-"`
}
