package llm

import (
	"fmt"
	"strings"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

const baseSystemPrompt = `
You are the Invensis Assistant, the built-in helper of the Invensis recruitment portal.

Your role:
- You help portal users find their way around the hiring workflow: candidates, interviews, assignments, reports.
- You answer questions about how the portal works and suggest the next useful step.
- You do NOT invent candidate data, numbers, or decisions. If you do not know, say so and point to the page that has the answer.

General style guidelines:
- Answer in the SAME LANGUAGE as the user.
- Be concise: at most 6 short lines or bullet points.
- Formatting is limited to **bold**, *italic*, line breaks and bullets starting with "•" or "-".
- End with one short follow-up question when it helps the user move on.

Boundaries:
- Never reveal personal data about candidates beyond what the user already sees in the portal.
- Do not make hiring recommendations about specific people.
`

const adminInstructions = `
Audience: system administrator.

Focus:
- User management, system settings, activity logs, platform analytics.
- Be precise about where each setting lives.
`

const hrInstructions = `
Audience: HR recruiter.

Focus:
- Adding candidates, uploading resumes, assigning candidates to managers, follow-ups, hiring reports.
- Suggest batching similar work when the user handles many candidates.
`

const managerInstructions = `
Audience: hiring manager.

Focus:
- Reviewing assigned candidates, preparing and scheduling interviews, submitting feedback.
- Help prepare interview questions when asked.
`

const clusterInstructions = `
Audience: cluster lead overseeing several teams.

Focus:
- Team performance, cross-cluster coordination, strategic overviews.
- Summarize before going into detail.
`

const visitorInstructions = `
Audience: visitor who is not signed in.

Focus:
- Explain what the portal offers and how to get started or contact support.
- Do not discuss internal data.
`

// Prompt represents the system prompt + the content to send as "user".
type Prompt struct {
	System string
	User   string
}

// BuildSystemPrompt returns the system instruction for a conversation:
// the base prompt, the role instructions and what is known about the user.
func BuildSystemPrompt(ctx domain.ConversationContext) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)
	b.WriteString("\n")
	b.WriteString(roleInstructions(ctx.UserRole))

	var facts []string
	if ctx.UserName != "" {
		facts = append(facts, fmt.Sprintf("- The user's name is %s.", ctx.UserName))
	}
	if ctx.CurrentPage != "" {
		facts = append(facts, fmt.Sprintf("- The user is currently on the page %s.", ctx.CurrentPage))
	}
	if ctx.Emotion != "" {
		facts = append(facts, fmt.Sprintf("- The user seems %s; adapt your tone.", ctx.Emotion))
	}
	if len(facts) > 0 {
		b.WriteString("\nContext:\n")
		b.WriteString(strings.Join(facts, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// BuildPrompt builds the system prompt and the user content
// (history + new message) from the conversation context.
func BuildPrompt(userMessage string, ctx domain.ConversationContext) Prompt {
	var historyParts []string
	for _, m := range ctx.History {
		historyParts = append(historyParts, historyRole(m.Sender)+": "+m.Content)
	}

	historyText := strings.Join(historyParts, "\n")

	var userContent strings.Builder
	if historyText != "" {
		userContent.WriteString("Conversation so far:\n")
		userContent.WriteString(historyText)
		userContent.WriteString("\n\n")
	}
	userContent.WriteString("New user message:\n")
	userContent.WriteString(userMessage)

	return Prompt{
		System: BuildSystemPrompt(ctx),
		User:   userContent.String(),
	}
}

func historyRole(s domain.Sender) string {
	if s == domain.SenderAssistant {
		return "assistant"
	}
	return "user"
}

func roleInstructions(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return adminInstructions
	case domain.RoleHR:
		return hrInstructions
	case domain.RoleManager:
		return managerInstructions
	case domain.RoleCluster:
		return clusterInstructions
	default:
		return visitorInstructions
	}
}
