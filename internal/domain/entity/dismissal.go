package entity

// DismissalRule pairs a detector with the controls that close whatever it
// detected. An AlertPresent detector with no candidates accepts the alert.
type DismissalRule struct {
	Name       string
	Detector   WaitCondition
	Candidates []Locator
}

func (r DismissalRule) AcceptsAlert() bool {
	return r.Detector.Kind == ConditionAlertPresent && len(r.Candidates) == 0
}

var passwordBubbleLabels = []string{"Close", "Not now", "Dismiss", "OK", "Cancel"}

var passwordBubbleTexts = []string{"Not now", "No thanks", "Never"}

var breachWarningTexts = []string{
	"Change your password",
	"Check your passwords",
	"password was found in a data breach",
}

var breachWarningButtons = []string{"OK", "Not now", "Dismiss", "Close", "Maybe later", "Later"}

// DefaultDismissalRules returns a fresh copy of the built-in interstitial
// table: JS alerts, the save-password bubble and the password breach warning.
func DefaultDismissalRules() []DismissalRule {
	rules := []DismissalRule{
		{Name: "alert", Detector: AlertPresent()},
	}

	bubble := make([]Locator, 0, len(passwordBubbleLabels)+len(passwordBubbleTexts))
	for _, label := range passwordBubbleLabels {
		bubble = append(bubble, ByXPath("//button[@aria-label="+XPathLiteral(label)+"]"))
	}
	for _, text := range passwordBubbleTexts {
		bubble = append(bubble, ByXPath("//button[normalize-space()="+XPathLiteral(text)+"]"))
	}
	bubbleVisible := make([]WaitCondition, len(bubble))
	for i, loc := range bubble {
		bubbleVisible[i] = ElementVisible(loc)
	}
	rules = append(rules, DismissalRule{
		Name:       "password-manager",
		Detector:   AnyOf(bubbleVisible...),
		Candidates: bubble,
	})

	detectors := make([]WaitCondition, 0, len(breachWarningTexts))
	for _, text := range breachWarningTexts {
		detectors = append(detectors, ElementPresent(ByXPath("//*[contains(text(), "+XPathLiteral(text)+")]")))
	}
	buttons := make([]Locator, 0, len(breachWarningButtons))
	for _, text := range breachWarningButtons {
		buttons = append(buttons, ByXPath("//button[normalize-space()="+XPathLiteral(text)+"]"))
	}
	rules = append(rules, DismissalRule{
		Name:       "password-breach-warning",
		Detector:   AnyOf(detectors...),
		Candidates: buttons,
	})

	return rules
}
