// Package discovery locates skills on disk. Skills are searched across
// three scopes in fixed precedence order: project (./.skillet/skills),
// personal (~/.skillet/skills), and plugin (skills shipped inside installed
// plugins). The first skill found for a given name wins; no merging occurs.
//
// Discovery is deliberately lenient: documents that fail to parse are
// skipped here and reported by the lint engine instead.
package discovery

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/skilletlabs/skillet/pkg/skill"
)

// Scope identifies the precedence tier a skill was discovered in.
type Scope string

const (
	// ScopeProject is the repo-local skills directory, highest precedence.
	ScopeProject Scope = "project"
	// ScopePersonal is the user-global skills directory.
	ScopePersonal Scope = "personal"
	// ScopePlugin is a skills directory shipped inside an installed plugin.
	ScopePlugin Scope = "plugin"
)

// Entry is a discovered skill: its descriptor plus where it was found.
type Entry struct {
	// Name is the effective skill name; plugin skills are namespaced as
	// "org/repo/name".
	Name       string
	Descriptor *skill.Descriptor
	// Directory is the skill directory containing SKILL.md.
	Directory string
	// Path is the full path to the SKILL.md file.
	Path  string
	Scope Scope
}

// Root is a directory scanned for skills.
type Root struct {
	Dir    string
	Scope  Scope
	Prefix string // prepended to skill names, e.g. "org/repo/"
}

// Discovery handles skill discovery from a fixed, ordered set of roots.
type Discovery struct {
	roots   []Root
	allowed []string
}

// Option configures a Discovery.
type Option func(*Discovery) error

// WithRoots sets explicit roots, replacing the defaults. Precedence follows
// the given order.
func WithRoots(roots ...Root) Option {
	return func(d *Discovery) error {
		d.roots = roots
		return nil
	}
}

// WithSkillDirs is a convenience for tests and ad-hoc scans: each dir
// becomes a project-scope root in the given order.
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		for _, dir := range dirs {
			d.roots = append(d.roots, Root{Dir: dir, Scope: ScopeProject})
		}
		return nil
	}
}

// WithDefaultRoots initializes the standard three-scope search order.
func WithDefaultRoots() Option {
	return func(d *Discovery) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}

		d.roots = []Root{
			{Dir: filepath.Join(".", ".skillet", "skills"), Scope: ScopeProject},
			{Dir: filepath.Join(homeDir, ".skillet", "skills"), Scope: ScopePersonal},
		}

		d.addPluginRoots(filepath.Join(".", ".skillet", "plugins"))
		d.addPluginRoots(filepath.Join(homeDir, ".skillet", "plugins"))

		return nil
	}
}

// addPluginRoots scans a plugins directory and adds every plugin's skills
// directory as a plugin-scope root. Supports nested org/repo layouts.
func (d *Discovery) addPluginRoots(pluginsDir string) {
	_ = filepath.Walk(pluginsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}

		skillsDir := filepath.Join(path, "skills")
		if _, err := os.Stat(skillsDir); err != nil {
			return nil
		}

		relPath, err := filepath.Rel(pluginsDir, path)
		if err != nil {
			return nil
		}

		pluginName := filepath.ToSlash(relPath)
		d.roots = append(d.roots, Root{
			Dir:    skillsDir,
			Scope:  ScopePlugin,
			Prefix: pluginName + "/",
		})

		return filepath.SkipDir
	})
}

// WithAllowed restricts discovery to skills whose effective name matches
// one of the given glob patterns. Empty means no restriction.
func WithAllowed(patterns ...string) Option {
	return func(d *Discovery) error {
		d.allowed = patterns
		return nil
	}
}

// New creates a Discovery. With no options the default three-scope roots
// are used.
func New(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		opts = []Option{WithDefaultRoots()}
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Roots returns the scanned roots in precedence order.
func (d *Discovery) Roots() []Root {
	return d.roots
}

// Discover finds all available skills. When two scopes define the same
// name, the earlier root wins.
func (d *Discovery) Discover() (map[string]*Entry, error) {
	entries := make(map[string]*Entry)

	for _, root := range d.roots {
		d.discoverFromRoot(root, entries)
	}

	return FilterAllowed(entries, d.allowed), nil
}

// discoverFromRoot scans the immediate children of a root for skill
// directories.
func (d *Discovery) discoverFromRoot(root Root, entries map[string]*Entry) {
	dirEntries, err := os.ReadDir(root.Dir)
	if err != nil {
		return
	}

	for _, dirEntry := range dirEntries {
		entryPath := filepath.Join(root.Dir, dirEntry.Name())

		// Stat follows symlinks so linked skill directories work.
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		skillPath := filepath.Join(entryPath, skill.FileName)
		descriptor, err := loadDescriptor(skillPath)
		if err != nil {
			continue
		}

		name := root.Prefix + descriptor.Name
		if _, exists := entries[name]; exists {
			continue
		}
		entries[name] = &Entry{
			Name:       name,
			Descriptor: descriptor,
			Directory:  entryPath,
			Path:       skillPath,
			Scope:      root.Scope,
		}
	}
}

// Get returns a specific skill by its effective name.
func (d *Discovery) Get(name string) (*Entry, error) {
	entries, err := d.Discover()
	if err != nil {
		return nil, err
	}

	entry, exists := entries[name]
	if !exists {
		return nil, errors.Errorf("skill '%s' not found", name)
	}

	return entry, nil
}

// ListNames returns the sorted names of all available skills.
func (d *Discovery) ListNames() ([]string, error) {
	entries, err := d.Discover()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// loadDescriptor reads a SKILL.md leniently via goldmark's metadata
// extension. Name and description are mandatory even here; everything else
// is left to lint.
func loadDescriptor(path string) (*skill.Descriptor, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)

	if name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}
	if description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}

	return &skill.Descriptor{
		Name:         name,
		Description:  description,
		AllowedTools: toolsFromMeta(metaData["allowed-tools"]),
		Body:         extractBody(string(content)),
	}, nil
}

// toolsFromMeta converts the goldmark-meta representation of allowed-tools
// (a YAML list or a comma-separated string) into a string slice.
func toolsFromMeta(raw any) []string {
	switch v := raw.(type) {
	case []any:
		tools := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				tools = append(tools, s)
			}
		}
		return tools
	case string:
		if d, err := skill.Parse("---\nallowed-tools: " + v + "\n---\n"); err == nil {
			return d.AllowedTools
		}
		return nil
	default:
		return nil
	}
}

// extractBody strips the frontmatter block and surrounding blank lines.
func extractBody(content string) string {
	if d, err := skill.Parse(content); err == nil {
		return d.Body
	}
	return content
}

// FilterAllowed filters entries by an allowlist of names. Patterns use glob
// syntax ("data-*", "org/repo/*"); an empty allowlist keeps everything.
func FilterAllowed(entries map[string]*Entry, allowed []string) map[string]*Entry {
	if len(allowed) == 0 {
		return entries
	}

	matchers := make([]glob.Glob, 0, len(allowed))
	for _, pattern := range allowed {
		g, err := glob.Compile(pattern)
		if err != nil {
			continue
		}
		matchers = append(matchers, g)
	}

	filtered := make(map[string]*Entry)
	for name, entry := range entries {
		for _, g := range matchers {
			if g.Match(name) {
				filtered[name] = entry
				break
			}
		}
	}
	return filtered
}
