package assistant

import (
	"regexp"
	"strings"
)

// Intent is the coarse purpose of a user message.
type Intent string

const (
	IntentGreeting      Intent = "greeting"
	IntentHelpRequest   Intent = "help_request"
	IntentDataRequest   Intent = "data_request"
	IntentActionRequest Intent = "action_request"
	IntentGoodbye       Intent = "goodbye"
	IntentGeneralQuery  Intent = "general_query"
)

type intentRule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// Checked in order; the first matching group wins.
var intentRules = []intentRule{
	{IntentGreeting, compile(
		`\b(hi|hello|hey|good morning|good afternoon|good evening)\b`,
		`\bhow are you\b`,
		`\b(start|begin)\b`,
	)},
	{IntentHelpRequest, compile(
		`\b(help|assist|support)\b`,
		`\b(how to|how do i|what is)\b`,
		`\b(can you help|need help)\b`,
	)},
	{IntentDataRequest, compile(
		`\b(show|display|get|fetch)\b`,
		`\b(count|number|how many)\b`,
		`\b(report|analytics|metrics)\b`,
		`\b(hr status|candidate status|new candidates)\b`,
		`\bstatus.*candidate|candidate.*status\b`,
		`\bcandidates.*last week\b`,
		`\bcandidates.*manager|manager.*assigned\b`,
	)},
	{IntentActionRequest, compile(
		`\b(create|add|new)\b`,
		`\b(edit|update|modify)\b`,
		`\b(delete|remove)\b`,
		`\b(schedule|book|arrange)\b`,
	)},
	{IntentGoodbye, compile(
		`\b(bye|goodbye|see you|later)\b`,
		`\b(thank you|thanks)\b`,
		`\b(that's all|done)\b`,
	)},
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// AnalyzeIntent classifies a message. Anything unmatched is a general query.
func AnalyzeIntent(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, re := range rule.patterns {
			if re.MatchString(lower) {
				return rule.intent
			}
		}
	}
	return IntentGeneralQuery
}
