// Package trigger evaluates configured project rules against review events
// and drives the event lifecycle: scan bracketing, project-triggered
// notifications, build launches and the coarse all-builds-completed signal.
package trigger

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/config"
)

// matcher matches one string field of an event against a configured pattern.
type matcher interface {
	match(s string) bool
}

type plainMatcher string

func (m plainMatcher) match(s string) bool { return string(m) == s }

type regexpMatcher struct{ re *regexp.Regexp }

func (m regexpMatcher) match(s string) bool { return m.re.MatchString(s) }

// matchAll is used for an empty branch pattern.
type matchAll struct{}

func (matchAll) match(string) bool { return true }

func compileMatcher(style, pattern string) (matcher, error) {
	switch style {
	case "plain":
		return plainMatcher(pattern), nil
	case "wildcard":
		// Translate the wildcard pattern into an anchored regexp where
		// '*' matches any run of characters.
		quoted := regexp.QuoteMeta(pattern)
		expr := "^" + strings.ReplaceAll(quoted, `\*`, ".*") + "$"
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling wildcard pattern %q: %w", pattern, err)
		}
		return regexpMatcher{re}, nil
	case "regexp":
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling regexp pattern %q: %w", pattern, err)
		}
		return regexpMatcher{re}, nil
	default:
		return nil, fmt.Errorf("unknown pattern style %q", style)
	}
}

// ProjectRule is one compiled trigger rule: when an event's review project
// and branch match, the rule's build-target project is triggered.
type ProjectRule struct {
	name    string
	project matcher
	branch  matcher
	command []string
	silent  bool
}

// CompileRule compiles a single rule from its configuration.
func CompileRule(cfg config.RuleConfig) (*ProjectRule, error) {
	project, err := compileMatcher(cfg.PatternStyle, cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", cfg.Name, err)
	}
	var branch matcher = matchAll{}
	if cfg.Branch != "" {
		branch, err = compileMatcher(cfg.BranchStyle, cfg.Branch)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", cfg.Name, err)
		}
	}
	return &ProjectRule{
		name:    cfg.Name,
		project: project,
		branch:  branch,
		command: cfg.Command,
		silent:  cfg.Silent,
	}, nil
}

// CompileRules compiles every configured rule, failing on the first error.
func CompileRules(cfgs []config.RuleConfig) ([]*ProjectRule, error) {
	rules := make([]*ProjectRule, 0, len(cfgs))
	for _, cfg := range cfgs {
		rule, err := CompileRule(cfg)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Name returns the build-target project this rule triggers.
func (r *ProjectRule) Name() string { return r.name }

// Command returns the build command.
func (r *ProjectRule) Command() []string { return r.command }

// Silent reports whether this rule's builds are excluded from the coarse
// all-builds-completed signal.
func (r *ProjectRule) Silent() bool { return r.silent }

// Matches reports whether the rule triggers for the given review project and
// branch.
func (r *ProjectRule) Matches(project, branch string) bool {
	return r.project.match(project) && r.branch.match(branch)
}
