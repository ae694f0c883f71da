// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher decides whether a trimmed reply line is the one a command expects.
type Matcher interface {
	Match(reply string) bool
	String() string
}

type exactMatcher string

func (m exactMatcher) Match(reply string) bool { return reply == string(m) }
func (m exactMatcher) String() string          { return fmt.Sprintf("%q", string(m)) }

type prefixMatcher string

func (m prefixMatcher) Match(reply string) bool { return strings.HasPrefix(reply, string(m)) }
func (m prefixMatcher) String() string          { return fmt.Sprintf("prefix %q", string(m)) }

type containsMatcher string

func (m containsMatcher) Match(reply string) bool { return strings.Contains(reply, string(m)) }
func (m containsMatcher) String() string          { return fmt.Sprintf("containing %q", string(m)) }

type anyMatcher struct{}

func (anyMatcher) Match(string) bool { return true }
func (anyMatcher) String() string    { return "any reply" }

type notMatcher struct{ m Matcher }

func (n notMatcher) Match(reply string) bool { return !n.m.Match(reply) }
func (n notMatcher) String() string          { return "not " + n.m.String() }

type allMatcher []Matcher

func (a allMatcher) Match(reply string) bool {
	for _, m := range a {
		if !m.Match(reply) {
			return false
		}
	}
	return true
}

func (a allMatcher) String() string {
	parts := make([]string, len(a))
	for i, m := range a {
		parts[i] = m.String()
	}
	return strings.Join(parts, " and ")
}

type regexpMatcher struct{ re *regexp.Regexp }

func (r regexpMatcher) Match(reply string) bool { return r.re.MatchString(reply) }
func (r regexpMatcher) String() string          { return fmt.Sprintf("/%s/", r.re.String()) }

// Exact matches a reply equal to s.
func Exact(s string) Matcher { return exactMatcher(s) }

// Prefix matches a reply starting with s.
func Prefix(s string) Matcher { return prefixMatcher(s) }

// Contains matches a reply containing s anywhere.
func Contains(s string) Matcher { return containsMatcher(s) }

// Any matches every reply.
func Any() Matcher { return anyMatcher{} }

// Not inverts m.
func Not(m Matcher) Matcher { return notMatcher{m: m} }

// All matches when every matcher matches.
func All(ms ...Matcher) Matcher { return allMatcher(ms) }

// Regexp matches the whole reply against pattern. The pattern is anchored and
// compiled once; it panics on an invalid pattern, like regexp.MustCompile.
func Regexp(pattern string) Matcher {
	return regexpMatcher{re: regexp.MustCompile(`^(?:` + pattern + `)$`)}
}
