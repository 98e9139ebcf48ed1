package outline

import (
	"fmt"
	"strings"
)

const systemPrompt = `You design skill trees for self-directed learners.
A skill tree breaks a subject into skills and sub-skills. A learner ticks off
the smallest skills (the leaves) as they master them; a skill is mastered once
all of its sub-skills are.

Rules:
- Order skills from foundational to advanced.
- Leaves must be concrete enough to practise and check off.
- Labels are short noun phrases. No numbering, no trailing punctuation.
- Do not repeat a skill under two parents.
- Return the tree in pre-order: each skill is immediately followed by its sub-skills.`

func buildUserMessage(in Input, cfg Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Maximum depth: %d levels (depth 0 to %d)\n", cfg.MaxDepth, cfg.MaxDepth-1)
	fmt.Fprintf(&b, "Maximum number of skills: %d\n", cfg.MaxItems)
	if len(in.Existing) > 0 {
		b.WriteString("\nThe learner's tree already has these top-level skills; do not repeat them:\n")
		for _, s := range in.Existing {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if in.Notes != "" {
		fmt.Fprintf(&b, "\nNotes from the learner: %s\n", in.Notes)
	}
	return b.String()
}
