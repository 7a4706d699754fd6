package pathiter

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"pathit/internal/errs"
)

type ignoreRule struct {
	neg     bool // '!' prefix
	dirOnly bool // trailing '/'
	rx      *regexp.Regexp
}

// Matcher holds gitignore-style patterns. Supported syntax:
//   - '#' comments and blank lines are ignored
//   - '!' re-includes a previously ignored path
//   - a leading or inner '/' anchors the pattern to the root
//   - a trailing '/' restricts the pattern to directories
//   - '**' crosses directories, '*' and '?' do not
//
// The last matching rule wins. A nil Matcher matches nothing.
type Matcher struct {
	rules []ignoreRule
}

// ParsePatterns compiles patterns in order.
func ParsePatterns(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		if r, ok := parseRule(p); ok {
			m.rules = append(m.rules, r)
		}
	}
	return m
}

// ReadPatterns compiles one pattern per line of r.
func ReadPatterns(r io.Reader) (*Matcher, error) {
	var lines []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return ParsePatterns(lines), nil
}

// LoadIgnoreFile reads patterns from a file such as .gitignore.
func LoadIgnoreFile(path string) (*Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewReadIgnore(path, err)
	}
	defer f.Close()
	m, err := ReadPatterns(f)
	if err != nil {
		return nil, errs.NewReadIgnore(path, err)
	}
	return m, nil
}

// Match reports whether rel, a normalized root-relative path without the
// directory slash, is ignored.
func (m *Matcher) Match(rel string, isDir bool) bool {
	if m.empty() {
		return false
	}
	rel = strings.TrimSuffix(rel, "/")
	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if r.rx.MatchString(rel) {
			ignored = !r.neg
		}
	}
	return ignored
}

// Len returns the number of compiled rules.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

func (m *Matcher) empty() bool { return m.Len() == 0 }

func (m *Matcher) merge(o *Matcher) *Matcher {
	if o.empty() {
		return m
	}
	if m.empty() {
		return o
	}
	rules := make([]ignoreRule, 0, len(m.rules)+len(o.rules))
	rules = append(rules, m.rules...)
	rules = append(rules, o.rules...)
	return &Matcher{rules: rules}
}

func parseRule(line string) (ignoreRule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}
	var r ignoreRule
	if strings.HasPrefix(line, "!") {
		r.neg = true
		line = strings.TrimSpace(line[1:])
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	anchored := strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return ignoreRule{}, false
	}
	r.rx = compileGlob(line, anchored)
	return r, true
}

func compileGlob(glob string, anchored bool) *regexp.Regexp {
	esc := regexp.QuoteMeta(glob)
	esc = strings.ReplaceAll(esc, `\*\*/`, "\x00")
	esc = strings.ReplaceAll(esc, `\*\*`, "\x01")
	esc = strings.ReplaceAll(esc, `\*`, "[^/]*")
	esc = strings.ReplaceAll(esc, `\?`, "[^/]")
	esc = strings.ReplaceAll(esc, "\x00", "(?:.*/)?")
	esc = strings.ReplaceAll(esc, "\x01", ".*")
	if anchored {
		return regexp.MustCompile("^" + esc + "$")
	}
	return regexp.MustCompile("(?:^|.*/)" + esc + "$")
}
