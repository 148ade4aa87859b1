package css

import (
	"errors"
	"io"
	"strings"
)

// Parser parses the small CSS subset used by editor markup: a user-agent
// stylesheet of simple rules and inline style attributes
type Parser struct{}

// Rule is a selector list with its declarations
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration is a single property-value pair
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet is an ordered list of rules
type Stylesheet struct {
	Rules []*Rule
}

var errInvalidRule = errors.New("invalid rule")

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses a stylesheet from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses a stylesheet from an io.Reader. Invalid rules and at-rules are skipped.
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	sheet := &Stylesheet{}
	for _, ruleStr := range splitRules(removeComments(string(content))) {
		if strings.HasPrefix(ruleStr, "@") {
			continue
		}
		rule, err := parseRule(ruleStr)
		if err != nil {
			continue
		}
		sheet.Rules = append(sheet.Rules, rule)
	}
	return sheet, nil
}

// ParseInline parses the value of a style="" attribute
func (p *Parser) ParseInline(style string) []*Declaration {
	return parseDeclarations(removeComments(style))
}

func parseRule(ruleStr string) (*Rule, error) {
	open := strings.IndexByte(ruleStr, '{')
	if open < 0 {
		return nil, errInvalidRule
	}

	selectors := parseSelectors(ruleStr[:open])
	if len(selectors) == 0 {
		return nil, errInvalidRule
	}
	body := strings.TrimSuffix(strings.TrimSpace(ruleStr[open+1:]), "}")

	return &Rule{
		Selectors:    selectors,
		Declarations: parseDeclarations(body),
	}, nil
}

func parseSelectors(selectorStr string) []string {
	var out []string
	for _, s := range strings.Split(selectorStr, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDeclarations(body string) []*Declaration {
	var out []*Declaration
	for _, decl := range strings.Split(body, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}

		important := false
		if v, found := strings.CutSuffix(value, "!important"); found {
			important = true
			value = strings.TrimSpace(v)
		}
		out = append(out, &Declaration{Property: prop, Value: value, Important: important})
	}
	return out
}

func removeComments(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "/*")
		if start < 0 {
			b.WriteString(content)
			return b.String()
		}
		b.WriteString(content[:start])
		end := strings.Index(content[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		content = content[start+2+end+2:]
	}
}

// splitRules splits content into top-level "selector { ... }" chunks
func splitRules(content string) []string {
	var rules []string
	var cur strings.Builder
	depth := 0

	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				cur.WriteByte(ch)
				rules = append(rules, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
		}
		if depth > 0 || !isWhitespace(ch) || cur.Len() > 0 {
			cur.WriteByte(ch)
		}
	}
	return rules
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
