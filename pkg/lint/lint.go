// Package lint runs the skill contract checks over many files at once.
// Every file is validated independently; violations are collected per file
// and reported together, never short-circuited, so an author can fix a
// whole batch of issues in one editing pass.
package lint

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/skilletlabs/skillet/pkg/logger"
	"github.com/skilletlabs/skillet/pkg/skill"
)

// Cache stores findings keyed by file identity so unchanged files are not
// re-validated. Implementations live elsewhere (see pkg/lintcache).
type Cache interface {
	Get(path string, size int64, mtimeNS int64) ([]skill.Violation, bool)
	Put(path string, size int64, mtimeNS int64, violations []skill.Violation) error
}

// Runner validates a batch of skill files.
type Runner struct {
	jobs  int
	cache Cache
}

// Option configures a Runner.
type Option func(*Runner)

// WithJobs sets the number of parallel workers. Values below 1 fall back
// to the number of CPUs.
func WithJobs(jobs int) Option {
	return func(r *Runner) {
		if jobs > 0 {
			r.jobs = jobs
		}
	}
}

// WithCache enables result caching.
func WithCache(cache Cache) Option {
	return func(r *Runner) {
		r.cache = cache
	}
}

// NewRunner creates a lint runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{jobs: runtime.NumCPU()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves targets to SKILL.md files and validates each one. Targets
// may be files, directories (walked recursively), or doublestar globs.
// Unreadable files are aggregated into the returned error; contract
// violations live in the report.
func (r *Runner) Run(ctx context.Context, targets []string) (*Report, error) {
	paths, err := ResolveTargets(targets)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Files:   len(paths),
	}

	log := logger.G(ctx).WithField("run_id", report.RunID)
	log.WithField("files", len(paths)).WithField("jobs", r.jobs).Debug("starting lint run")

	type result struct {
		path     string
		findings []Finding
		err      error
	}

	pathCh := make(chan string)
	resultCh := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < r.jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathCh {
				findings, err := r.lintFile(path)
				select {
				case resultCh <- result{path: path, findings: findings, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(pathCh)
		for _, path := range paths {
			select {
			case pathCh <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var runErr *multierror.Error
	for res := range resultCh {
		if res.err != nil {
			runErr = multierror.Append(runErr, errors.Wrapf(res.err, "failed to lint %s", res.path))
			continue
		}
		report.Findings = append(report.Findings, res.findings...)
	}

	// Workers finish in arbitrary order; reports are ordered by filename.
	sort.Slice(report.Findings, func(i, j int) bool {
		if report.Findings[i].Path != report.Findings[j].Path {
			return report.Findings[i].Path < report.Findings[j].Path
		}
		return report.Findings[i].Field < report.Findings[j].Field
	})

	report.Duration = time.Since(report.Started)
	log.WithField("findings", len(report.Findings)).Debug("lint run finished")

	return report, runErr.ErrorOrNil()
}

// lintFile validates a single SKILL.md, consulting the cache first.
func (r *Runner) lintFile(path string) ([]Finding, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	size, mtime := info.Size(), info.ModTime().UnixNano()

	if r.cache != nil {
		if violations, ok := r.cache.Get(path, size, mtime); ok {
			return toFindings(path, violations), nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	violations := Check(string(content), filepath.Dir(path))

	if r.cache != nil {
		// A failed cache write only costs a re-validation next run.
		_ = r.cache.Put(path, size, mtime, violations)
	}

	return toFindings(path, violations), nil
}

// Check validates one document's text against the full contract: parse,
// field checks, advisories, and the name/directory convention. On a parse
// failure the single parse violation is returned and field checks are
// skipped.
func Check(text string, dir string) []skill.Violation {
	descriptor, err := skill.Parse(text)
	if err != nil {
		return []skill.Violation{{
			Field:    "frontmatter",
			Rule:     "parse-error",
			Message:  err.Error(),
			Severity: skill.SeverityError,
		}}
	}

	violations := descriptor.Validate()
	violations = append(violations, descriptor.Advisories()...)
	if dir != "" {
		if v := skill.CheckDirectoryMatch(descriptor, dir); v != nil {
			violations = append(violations, *v)
		}
	}
	return violations
}

func toFindings(path string, violations []skill.Violation) []Finding {
	findings := make([]Finding, 0, len(violations))
	for _, v := range violations {
		findings = append(findings, Finding{Path: path, Violation: v})
	}
	return findings
}

// ResolveTargets expands files, directories, and globs into the list of
// SKILL.md paths to validate, deduplicated and sorted.
func ResolveTargets(targets []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	for _, target := range targets {
		switch {
		case strings.ContainsAny(target, "*?["):
			matches, err := doublestar.FilepathGlob(target)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid glob pattern %q", target)
			}
			for _, match := range matches {
				if info, err := os.Stat(match); err == nil && !info.IsDir() {
					add(match)
				}
			}
		default:
			info, err := os.Stat(target)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot lint %q", target)
			}
			if !info.IsDir() {
				add(target)
				continue
			}
			err = filepath.Walk(target, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && (info.Name() == ".git" || info.Name() == "node_modules") {
					return filepath.SkipDir
				}
				if !info.IsDir() && info.Name() == skill.FileName {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, errors.Wrapf(err, "failed to walk %q", target)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}
