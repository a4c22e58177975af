package llm

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

const baseSystemPrompt = `
You are a wisdom coach focused on mental well-being and personal growth.
You read a summary of the user's recent journaling and offer a short reflection.

Your role:
- You listen with empathy and without judgment.
- You help the user notice patterns in what they feel and what they need.
- You are NOT a therapist, doctor, or emergency service and you do NOT give medical or psychiatric diagnoses.

General style guidelines:
- Answer in the SAME LANGUAGE as the journal entries.
- Be concise: 2–4 short paragraphs.
- Start with the pattern you observed, then offer one gentle question.
- Invite the user to take small, realistic steps rather than big changes.

Boundaries and safety:
- If the entries mention self-harm, suicide, or hurting someone, encourage the user to seek immediate help from local emergency services or a trusted person.
- Never give instructions on how to self-harm or harm others.
`

const periodicInstructions = `
Template: periodic coaching

Focus:
- A trigger fired over the last days of journaling. Name the pattern behind it.
- Connect moods, people and life areas when the summary shows a link.
- Suggest one small step for this week.

Tone:
- Curious, warm, grounded.
`

const urgentInstructions = `
Template: urgent support

Focus:
- The latest entry shows acute distress. Respond to that entry first.
- Validate what the user is feeling, without minimizing it.
- Encourage contacting a trusted person or a professional today.

Tone:
- Calm, steady, caring. Short sentences.
`

// Prompt represents the system prompt + the content to send as "user".
type Prompt struct {
	System string
	User   string
}

// BuildPrompt renders the template for templateID with the payload.
func BuildPrompt(templateID domain.PromptTemplateID, payload domain.PromptPayload) Prompt {
	return Prompt{
		System: BuildSystemPrompt(templateID),
		User:   buildUserContent(payload),
	}
}

func BuildSystemPrompt(templateID domain.PromptTemplateID) string {
	return baseSystemPrompt + "\n" + templateInstructions(templateID)
}

func templateInstructions(templateID domain.PromptTemplateID) string {
	switch templateID {
	case domain.PromptUrgentSupport:
		return urgentInstructions
	case domain.PromptPeriodicCoaching:
		fallthrough
	default:
		return periodicInstructions
	}
}

func buildUserContent(p domain.PromptPayload) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session started by: %s\n", p.TriggeredBy)
	if p.TriggerNote != "" {
		fmt.Fprintf(&b, "Reason: %s\n", p.TriggerNote)
	}

	if p.FocusEntry != nil {
		b.WriteString("\nLatest entry:\n")
		if p.FocusEntry.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", p.FocusEntry.Title)
		}
		if p.FocusEntry.Mood != "" {
			fmt.Fprintf(&b, "Mood: %s\n", p.FocusEntry.Mood)
		}
		b.WriteString(p.FocusEntry.Body)
		b.WriteString("\n")
	}

	if c := p.Context; c != nil {
		if len(c.RecentEntries) > 0 {
			fmt.Fprintf(&b, "\nRecent entries (last %d days):\n", c.LookbackDays)
			for _, e := range c.RecentEntries {
				fmt.Fprintf(&b, "- %s mood=%s sentiment=%d areas=%s %s\n",
					e.Date.Format("2006-01-02"), orDash(string(e.Mood)), e.Sentiment,
					orDash(strings.Join(e.LifeAreas, ",")), e.Title)
			}
		}
		if len(c.RelationshipDynamics) > 0 {
			b.WriteString("\nPeople mentioned:\n")
			for _, r := range c.RelationshipDynamics {
				fmt.Fprintf(&b, "- %s: %d mentions, %s\n", r.Person, r.MentionFrequency, r.SentimentTrend)
			}
		}
		if len(c.LifeAreaTrends) > 0 {
			b.WriteString("\nLife areas:\n")
			for _, t := range c.LifeAreaTrends {
				fmt.Fprintf(&b, "- %s: %s (%d days since last ritual)\n", t.LifeArea, t.Trend, t.DaysSinceRitual)
			}
		}
	}

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
