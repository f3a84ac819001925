package orchestrator

import (
	"strings"

	"github.com/compass-mentor/server/internal/mentor/model"
)

// emotionFollowUps answer first when the analysis asked for validation;
// the student's state matters more than the reply's topic.
var emotionFollowUps = map[model.Emotion]string{
	model.EmotionLowConfidence: "💙 I'm here for every question - big or small!",
	model.EmotionUrgency:       "⏰ What's the most urgent thing you need help with?",
	model.EmotionConfusion:     "💡 Does that make sense? Ask me to explain anything!",
	model.EmotionExcitement:    "🚀 What else would you like to explore?",
	model.EmotionGratitude:     "😊 Happy to help! What else can I do for you?",
	model.EmotionNeutral:       "💬 What else would you like to know?",
}

// keywordFollowUps is a priority list matched against the lowercased
// reply; the first predicate that holds wins.
type followUpRule struct {
	match  func(string) bool
	prompt string
}

func has(subs ...string) func(string) bool {
	return func(text string) bool {
		for _, s := range subs {
			if strings.Contains(text, s) {
				return true
			}
		}
		return false
	}
}

func all(preds ...func(string) bool) func(string) bool {
	return func(text string) bool {
		for _, p := range preds {
			if !p(text) {
				return false
			}
		}
		return true
	}
}

func not(p func(string) bool) func(string) bool {
	return func(text string) bool { return !p(text) }
}

var followUpRules = []followUpRule{
	{all(has("rank"), has("category")), "💡 Share your rank and category, and I'll show you personalized college options!"},
	{all(has("exam"), not(has("rank"))), "🎯 Once you share your rank, I can show you exactly which colleges you can get!"},
	{all(has("college"), has("found")), "🔍 Want me to compare these colleges or check their fees and placements?"},
	{has("safe", "moderate", "ambitious"), "📚 Need help deciding between these options? I can compare them or explain more about any college!"},
	{has("fees", "fee", "affordable"), "💰 Want to see more affordable options or compare fee structures?"},
	{has("cutoff"), "📊 Curious about your chances at specific colleges? Just ask!"},
	{has("bits", "iit", "nit"), "🎓 Want to know more about this college or compare it with others?"},
	{has("branch", "cse", "ece"), "💼 Wondering about other branches or career prospects? I can help!"},
}

const defaultFollowUp = "💬 Any other questions? I'm here to help with colleges, cutoffs, fees, or career advice!"

// deriveFollowUp picks the follow-up prompt for a reply: the emotion
// table when the analysis called for validation, then the keyword
// priority list over the reply text, then the generic invitation.
func deriveFollowUp(reply string, analysis model.EmotionalAnalysis) string {
	if analysis.ValidationNeeded {
		if prompt, ok := emotionFollowUps[analysis.Emotion]; ok {
			return prompt
		}
	}
	text := strings.ToLower(reply)
	for _, rule := range followUpRules {
		if rule.match(text) {
			return rule.prompt
		}
	}
	return defaultFollowUp
}
