package orchestrator

import (
	"fmt"
	"strings"
)

var systemPromptByCategory = map[Category]string{
	CategoryFactual:     "You answer factual questions concisely using only the supplied context. If the context does not contain the answer, say so.",
	CategoryExplanatory: "You explain concepts clearly using the supplied context, favoring plain language over jargon.",
	CategoryProcedural:  "You give step-by-step instructions grounded in the supplied context, numbering each step.",
	CategoryComparative: "You compare the subjects of the question point by point using only the supplied context.",
	CategoryCreative:    "You produce the requested creative output, drawing inspiration from the supplied context where relevant.",
}

// buildPrompt renders the system+user pair for one generate call: a
// concise per-category system instruction and a user turn with the
// retrieval context formatted as a numbered list (spec.md §4.9).
func buildPrompt(category Category, question string, docs []RetrievedDoc) (system, user string) {
	system = systemPromptByCategory[category]
	if system == "" {
		system = systemPromptByCategory[CategoryFactual]
	}

	var sb strings.Builder
	if len(docs) == 0 {
		sb.WriteString("No context was retrieved.\n\n")
	} else {
		sb.WriteString("Context:\n")
		for i, d := range docs {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, d.Content)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Question: %s", question)
	user = sb.String()
	return system, user
}
