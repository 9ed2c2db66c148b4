package entity

import (
	"fmt"
	"strings"
)

type Strategy string

const (
	StrategyID    Strategy = "id"
	StrategyCSS   Strategy = "css"
	StrategyXPath Strategy = "xpath"
)

// Locator describes how to find an element. It is a value type; copy freely.
type Locator struct {
	Strategy Strategy
	Value    string
}

func ByID(id string) Locator {
	return Locator{Strategy: StrategyID, Value: id}
}

func ByCSS(selector string) Locator {
	return Locator{Strategy: StrategyCSS, Value: selector}
}

func ByXPath(expr string) Locator {
	return Locator{Strategy: StrategyXPath, Value: expr}
}

func (l Locator) IsZero() bool {
	return l.Strategy == "" && l.Value == ""
}

func (l Locator) Validate() error {
	switch l.Strategy {
	case StrategyID, StrategyCSS, StrategyXPath:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidLocator, l.Strategy)
	}
	if strings.TrimSpace(l.Value) == "" {
		return fmt.Errorf("%w: empty %s selector", ErrInvalidLocator, l.Strategy)
	}
	return nil
}

// CSS renders ID and CSS locators as a CSS selector. XPath locators have no
// CSS form and return ok=false.
func (l Locator) CSS() (string, bool) {
	switch l.Strategy {
	case StrategyID:
		return fmt.Sprintf(`[id=%q]`, l.Value), true
	case StrategyCSS:
		return l.Value, true
	default:
		return "", false
	}
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}

// XPathLiteral quotes s for use inside an XPath expression. XPath 1.0 has no
// escape sequences, so text containing both quote kinds is built with concat().
func XPathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
