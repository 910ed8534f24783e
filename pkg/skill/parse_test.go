package skill

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("well-formed document", func(t *testing.T) {
		doc := `---
name: my-skill
description: Does X. Use when Y.
---
Body text.
`
		d, err := Parse(doc)
		require.NoError(t, err)
		assert.Equal(t, "my-skill", d.Name)
		assert.Equal(t, "Does X. Use when Y.", d.Description)
		assert.Empty(t, d.AllowedTools)
		assert.Equal(t, "Body text.", d.Body)
	})

	t.Run("missing opening delimiter", func(t *testing.T) {
		doc := "name: my-skill\ndescription: Does X.\n---\nBody.\n"
		d, err := Parse(doc)
		assert.Nil(t, d)
		require.Error(t, err)
		assert.True(t, IsParseError(err))
		assert.Contains(t, err.Error(), "opening")
	})

	t.Run("missing closing delimiter", func(t *testing.T) {
		doc := "---\nname: my-skill\ndescription: Does X.\n"
		d, err := Parse(doc)
		assert.Nil(t, d)
		require.Error(t, err)
		assert.True(t, IsParseError(err))
		assert.Contains(t, err.Error(), "closing")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		doc := "---\nname: [unclosed\n---\nBody.\n"
		_, err := Parse(doc)
		require.Error(t, err)
		assert.True(t, IsParseError(err))
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := Parse("")
		require.Error(t, err)
		assert.True(t, IsParseError(err))
	})

	t.Run("crlf line endings", func(t *testing.T) {
		doc := "---\r\nname: my-skill\r\ndescription: Does X. Use when Y.\r\n---\r\nBody.\r\n"
		d, err := Parse(doc)
		require.NoError(t, err)
		assert.Equal(t, "my-skill", d.Name)
		assert.Equal(t, "Body.", d.Body)
	})

	t.Run("allowed-tools as list", func(t *testing.T) {
		doc := `---
name: my-skill
description: Does X.
allowed-tools:
  - bash
  - read
---
Body.
`
		d, err := Parse(doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"bash", "read"}, d.AllowedTools)
	})

	t.Run("allowed-tools as comma-separated string", func(t *testing.T) {
		doc := `---
name: my-skill
description: Does X.
allowed-tools: bash, read, grep
---
Body.
`
		d, err := Parse(doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"bash", "read", "grep"}, d.AllowedTools)
	})

	t.Run("absent allowed-tools means unrestricted", func(t *testing.T) {
		doc := "---\nname: my-skill\ndescription: Does X.\n---\n"
		d, err := Parse(doc)
		require.NoError(t, err)
		assert.Nil(t, d.AllowedTools)
	})
}

func TestMarshalDocumentRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		descriptor Descriptor
	}{
		{
			name: "basic",
			descriptor: Descriptor{
				Name:        "my-skill",
				Description: "Does X. Use when Y.",
				Body:        "Body text.",
			},
		},
		{
			name: "with allowed tools",
			descriptor: Descriptor{
				Name:         "tooled-skill",
				Description:  "Runs tools. Use when tooling.",
				AllowedTools: []string{"bash", "read"},
				Body:         "# Instructions\n\nDo the thing.",
			},
		},
		{
			name: "no body",
			descriptor: Descriptor{
				Name:        "headless",
				Description: "No body at all.",
			},
		},
		{
			name: "long description",
			descriptor: Descriptor{
				Name:        "wordy",
				Description: strings.Repeat("use when needed ", 40),
				Body:        "## Steps\n\n1. one\n2. two",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.descriptor.MarshalDocument()
			require.NoError(t, err)

			parsed, err := Parse(string(out))
			require.NoError(t, err)
			assert.Equal(t, &tt.descriptor, parsed)

			// Serialization is a fixed point: marshalling the re-parsed
			// descriptor produces identical bytes.
			again, err := parsed.MarshalDocument()
			require.NoError(t, err)
			assert.Equal(t, string(out), string(again))
		})
	}
}

func TestMarshalFrontmatterOmitsEmptyToolList(t *testing.T) {
	d := Descriptor{Name: "my-skill", Description: "Does X."}
	out, err := d.MarshalFrontmatter()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "allowed-tools")
}
