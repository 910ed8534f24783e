package skill

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ParseError indicates a document whose frontmatter block could not be
// extracted or decoded. Field-level validation is never run on such a
// document.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// frontmatter mirrors the YAML block of a skill document.
type frontmatter struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	AllowedTools toolList `yaml:"allowed-tools,omitempty"`
}

// toolList accepts both a YAML sequence and a comma-separated scalar;
// skill catalogs in the wild use both spellings.
type toolList []string

func (t *toolList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var entries []string
		if err := value.Decode(&entries); err != nil {
			return err
		}
		*t = entries
		return nil
	case yaml.ScalarNode:
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			*t = nil
			return nil
		}
		parts := strings.Split(raw, ",")
		entries := make([]string, len(parts))
		for i, p := range parts {
			entries[i] = strings.TrimSpace(p)
		}
		*t = entries
		return nil
	default:
		return errors.New("allowed-tools must be a list or comma-separated string")
	}
}

// Parse extracts and decodes the frontmatter block of a skill document.
// The block is the region between the first and second lines consisting of
// exactly "---"; anything after the closing delimiter becomes the body.
// A missing or malformed block yields a *ParseError.
func Parse(text string) (*Descriptor, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != delimiter {
		return nil, &ParseError{Reason: "missing opening frontmatter delimiter"}
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == delimiter {
			closing = i
			break
		}
	}
	if closing == -1 {
		return nil, &ParseError{Reason: "missing closing frontmatter delimiter"}
	}

	block := strings.Join(lines[1:closing], "\n")

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, &ParseError{Reason: "malformed frontmatter", Err: err}
	}

	// Body is normalized: no leading blank lines, no trailing newlines.
	// MarshalDocument re-adds a single trailing newline, so parse and
	// serialize round-trip to identical descriptors.
	body := strings.Trim(strings.Join(lines[closing+1:], "\n"), "\n")

	return &Descriptor{
		Name:         fm.Name,
		Description:  fm.Description,
		AllowedTools: fm.AllowedTools,
		Body:         body,
	}, nil
}

// MarshalFrontmatter renders the descriptor's canonical frontmatter block,
// including both delimiters.
func (d *Descriptor) MarshalFrontmatter() ([]byte, error) {
	meta, err := yaml.Marshal(frontmatter{
		Name:         d.Name,
		Description:  d.Description,
		AllowedTools: d.AllowedTools,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal frontmatter")
	}

	var sb strings.Builder
	sb.WriteString(delimiter)
	sb.WriteByte('\n')
	sb.Write(meta)
	sb.WriteString(delimiter)
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

// MarshalDocument renders the full canonical document: frontmatter followed
// by the body. Parse(MarshalDocument(d)) yields a descriptor identical to d.
func (d *Descriptor) MarshalDocument() ([]byte, error) {
	fm, err := d.MarshalFrontmatter()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.Write(fm)
	if d.Body != "" {
		sb.WriteByte('\n')
		sb.WriteString(d.Body)
		if !strings.HasSuffix(d.Body, "\n") {
			sb.WriteByte('\n')
		}
	}
	return []byte(sb.String()), nil
}
