package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		name     string
		arg      string
		wantRepo string
		wantRef  string
	}{
		{"plain repo", "acme/toolkit", "acme/toolkit", ""},
		{"with tag", "acme/toolkit@v1.0.0", "acme/toolkit", "v1.0.0"},
		{"with branch", "acme/toolkit@main", "acme/toolkit", "main"},
		{"ref wins on last at-sign", "acme/tool@kit@v2", "acme/tool@kit", "v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ref := parseRepoRef(tt.arg)
			assert.Equal(t, tt.wantRepo, repo)
			assert.Equal(t, tt.wantRef, ref)
		})
	}
}
