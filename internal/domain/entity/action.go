package entity

import "fmt"

type ActionKind int

const (
	ActionClick ActionKind = iota + 1
	ActionType
	ActionReadText
	ActionClear
)

func (k ActionKind) String() string {
	switch k {
	case ActionClick:
		return "click"
	case ActionType:
		return "type"
	case ActionReadText:
		return "read_text"
	case ActionClear:
		return "clear"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

type Action struct {
	Kind ActionKind
	Text string
}

func Click() Action {
	return Action{Kind: ActionClick}
}

func Type(text string) Action {
	return Action{Kind: ActionType, Text: text}
}

func ReadText() Action {
	return Action{Kind: ActionReadText}
}

func Clear() Action {
	return Action{Kind: ActionClear}
}

// Mutating reports whether the action changes page state and therefore needs
// the element to be visible first.
func (a Action) Mutating() bool {
	return a.Kind != ActionReadText
}

func (a Action) String() string {
	if a.Kind == ActionType {
		return fmt.Sprintf("type(%d chars)", len(a.Text))
	}
	return a.Kind.String()
}
