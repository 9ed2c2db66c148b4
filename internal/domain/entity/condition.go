package entity

import (
	"fmt"
	"strings"
)

type ConditionKind int

const (
	ConditionElementPresent ConditionKind = iota + 1
	ConditionElementVisible
	ConditionElementEnabled
	ConditionElementAbsent
	ConditionTitleContains
	ConditionAlertPresent
	ConditionAnyOf
)

func (k ConditionKind) String() string {
	switch k {
	case ConditionElementPresent:
		return "ElementPresent"
	case ConditionElementVisible:
		return "ElementVisible"
	case ConditionElementEnabled:
		return "ElementEnabled"
	case ConditionElementAbsent:
		return "ElementAbsent"
	case ConditionTitleContains:
		return "TitleContains"
	case ConditionAlertPresent:
		return "AlertPresent"
	case ConditionAnyOf:
		return "AnyOf"
	default:
		return fmt.Sprintf("ConditionKind(%d)", int(k))
	}
}

// WaitCondition is a predicate over observed browser state. Which fields are
// meaningful depends on Kind.
type WaitCondition struct {
	Kind    ConditionKind
	Locator Locator
	Text    string
	Any     []WaitCondition
}

func ElementPresent(loc Locator) WaitCondition {
	return WaitCondition{Kind: ConditionElementPresent, Locator: loc}
}

func ElementVisible(loc Locator) WaitCondition {
	return WaitCondition{Kind: ConditionElementVisible, Locator: loc}
}

func ElementEnabled(loc Locator) WaitCondition {
	return WaitCondition{Kind: ConditionElementEnabled, Locator: loc}
}

func ElementAbsent(loc Locator) WaitCondition {
	return WaitCondition{Kind: ConditionElementAbsent, Locator: loc}
}

func TitleContains(text string) WaitCondition {
	return WaitCondition{Kind: ConditionTitleContains, Text: text}
}

func AlertPresent() WaitCondition {
	return WaitCondition{Kind: ConditionAlertPresent}
}

// AnyOf is satisfied as soon as one of conds is; members are probed in order.
func AnyOf(conds ...WaitCondition) WaitCondition {
	members := make([]WaitCondition, len(conds))
	copy(members, conds)
	return WaitCondition{Kind: ConditionAnyOf, Any: members}
}

func (c WaitCondition) IsZero() bool {
	return c.Kind == 0
}

// TargetsElement reports whether the condition resolves to an element handle
// when satisfied.
func (c WaitCondition) TargetsElement() bool {
	switch c.Kind {
	case ConditionElementPresent, ConditionElementVisible, ConditionElementEnabled:
		return true
	}
	return false
}

func (c WaitCondition) String() string {
	switch c.Kind {
	case ConditionTitleContains:
		return fmt.Sprintf("%s(%q)", c.Kind, c.Text)
	case ConditionAlertPresent:
		return c.Kind.String()
	case ConditionAnyOf:
		parts := make([]string, len(c.Any))
		for i, m := range c.Any {
			parts[i] = m.String()
		}
		return fmt.Sprintf("AnyOf(%s)", strings.Join(parts, ", "))
	case 0:
		return "none"
	default:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Locator)
	}
}
