package skill

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// FrontmatterSchema returns the JSON Schema for the SKILL.md frontmatter
// contract, suitable for editor integrations and external validators.
func FrontmatterSchema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	schema := reflector.Reflect(&Descriptor{})
	schema.Title = "Skill frontmatter"
	schema.Description = "Metadata block required at the top of every SKILL.md"

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal frontmatter schema")
	}
	return out, nil
}
