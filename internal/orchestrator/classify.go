package orchestrator

import "strings"

// Category is a coarse question shape used to pick a generate-node prompt
// template (spec.md §4.9).
type Category string

const (
	CategoryFactual     Category = "factual"
	CategoryExplanatory Category = "explanatory"
	CategoryProcedural  Category = "procedural"
	CategoryComparative Category = "comparative"
	CategoryCreative    Category = "creative"
)

var proceduralMarkers = []string{"how to", "how do i", "how can i", "怎么做", "如何", "怎样"}
var comparativeMarkers = []string{"compare", "difference between", "versus", " vs ", "区别", "对比", "哪个更"}
var explanatoryMarkers = []string{"why", "explain", "为什么", "解释"}
var creativeMarkers = []string{"write a", "create a", "design a", "generate a", "写一个", "创作", "设计一个"}

// classifyQuestion picks a Category via keyword heuristics, checked in
// order from most to least specific so "how to explain the difference"
// lands on procedural rather than explanatory.
func classifyQuestion(question string) Category {
	lower := strings.ToLower(question)
	switch {
	case containsAny(lower, proceduralMarkers):
		return CategoryProcedural
	case containsAny(lower, comparativeMarkers):
		return CategoryComparative
	case containsAny(lower, creativeMarkers):
		return CategoryCreative
	case containsAny(lower, explanatoryMarkers):
		return CategoryExplanatory
	default:
		return CategoryFactual
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
