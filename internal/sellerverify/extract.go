package sellerverify

import (
	"fmt"
	"regexp"
	"strings"
)

// StudentIDParser pulls a structured student id out of OCR text.
type StudentIDParser interface {
	Parse(text string) (string, bool)
}

type RegexParser struct {
	pattern *regexp.Regexp
}

func NewRegexParser(pattern string) (*RegexParser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile student id pattern: %w", err)
	}
	return &RegexParser{pattern: re}, nil
}

func (p *RegexParser) Parse(text string) (string, bool) {
	match := p.pattern.FindString(text)
	return match, match != ""
}

// CampusText recognises the institution's printed name. Both markers must be
// present; one alone does not count.
type CampusText struct {
	Name string
	Kind string
}

func (c CampusText) Matches(text string) bool {
	return strings.Contains(text, c.Name) && strings.Contains(text, c.Kind)
}
