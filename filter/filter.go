package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/devcybiko/junk-email/model"
)

// Options captures the filtering configuration.
type Options struct {
	IncludeSender  []string
	IncludeSubject []string
	IncludeBody    []string
	ExcludeSender  []string
	ExcludeSubject []string
	ExcludeBody    []string
}

// Filter holds compiled regex patterns applied to retrieved messages before
// address extraction.
type Filter struct {
	includeMode    bool
	excludeMode    bool
	includeSender  []*regexp.Regexp
	includeSubject []*regexp.Regexp
	includeBody    []*regexp.Regexp
	excludeSender  []*regexp.Regexp
	excludeSubject []*regexp.Regexp
	excludeBody    []*regexp.Regexp
}

// New creates a new Filter from the provided options. Include and exclude
// patterns are mutually exclusive.
func New(opts Options) (*Filter, error) {
	includeSender, err := compilePatterns(opts.IncludeSender)
	if err != nil {
		return nil, fmt.Errorf("compile include-sender pattern: %w", err)
	}
	includeSubject, err := compilePatterns(opts.IncludeSubject)
	if err != nil {
		return nil, fmt.Errorf("compile include-subject pattern: %w", err)
	}
	includeBody, err := compilePatterns(opts.IncludeBody)
	if err != nil {
		return nil, fmt.Errorf("compile include-body pattern: %w", err)
	}
	excludeSender, err := compilePatterns(opts.ExcludeSender)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-sender pattern: %w", err)
	}
	excludeSubject, err := compilePatterns(opts.ExcludeSubject)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-subject pattern: %w", err)
	}
	excludeBody, err := compilePatterns(opts.ExcludeBody)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-body pattern: %w", err)
	}

	includeActive := len(includeSender) > 0 || len(includeSubject) > 0 || len(includeBody) > 0
	excludeActive := len(excludeSender) > 0 || len(excludeSubject) > 0 || len(excludeBody) > 0
	if includeActive && excludeActive {
		return nil, fmt.Errorf("include and exclude filters are mutually exclusive")
	}

	return &Filter{
		includeMode:    includeActive,
		excludeMode:    excludeActive,
		includeSender:  includeSender,
		includeSubject: includeSubject,
		includeBody:    includeBody,
		excludeSender:  excludeSender,
		excludeSubject: excludeSubject,
		excludeBody:    excludeBody,
	}, nil
}

// Allows returns true if the record passes the filter criteria.
func (f *Filter) Allows(rec model.Record) bool {
	if f.includeMode {
		return matchAny(f.includeSender, rec.Sender) ||
			matchAny(f.includeSubject, rec.Subject) ||
			matchAny(f.includeBody, rec.Body)
	}

	if f.excludeMode {
		if matchAny(f.excludeSender, rec.Sender) ||
			matchAny(f.excludeSubject, rec.Subject) ||
			matchAny(f.excludeBody, rec.Body) {
			return false
		}
	}

	return true
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
