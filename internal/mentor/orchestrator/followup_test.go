package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/compass-mentor/server/internal/mentor/model"
)

func TestFollowUpKeywordPriority(t *testing.T) {
	neutral := model.EmotionalAnalysis{Emotion: model.EmotionNeutral}

	cases := []struct {
		reply string
		want  string
	}{
		{"Share your rank and category please", "💡 Share your rank and category, and I'll show you personalized college options!"},
		{"Which exam did you take?", "🎯 Once you share your rank, I can show you exactly which colleges you can get!"},
		{"I found 12 college options for you", "🔍 Want me to compare these colleges or check their fees and placements?"},
		{"Your safe options are listed first", "📚 Need help deciding between these options? I can compare them or explain more about any college!"},
		{"The fee at this institute is 4L", "💰 Want to see more affordable options or compare fee structures?"},
		{"The cutoff closed at 12000 last year", "📊 Curious about your chances at specific colleges? Just ask!"},
		{"IIT Bombay is the top choice", "🎓 Want to know more about this college or compare it with others?"},
		{"CSE is the most competitive branch", "💼 Wondering about other branches or career prospects? I can help!"},
		{"Hello! How can I help you today?", defaultFollowUp},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, deriveFollowUp(tc.reply, neutral), "reply %q", tc.reply)
	}
}

func TestFollowUpEmotionTableWinsWhenValidationNeeded(t *testing.T) {
	a := model.EmotionalAnalysis{Emotion: model.EmotionUrgency, ValidationNeeded: true}
	got := deriveFollowUp("The cutoff closed at 12000 last year", a)
	assert.Equal(t, emotionFollowUps[model.EmotionUrgency], got)
}

func TestFollowUpEmotionIgnoredWithoutValidation(t *testing.T) {
	a := model.EmotionalAnalysis{Emotion: model.EmotionGratitude}
	got := deriveFollowUp("The cutoff closed at 12000 last year", a)
	assert.Equal(t, "📊 Curious about your chances at specific colleges? Just ask!", got)
}
