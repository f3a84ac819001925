package emotion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compass-mentor/server/internal/mentor/model"
)

func TestAnalyzeNoTriggers(t *testing.T) {
	analysis := Analyze("Show me colleges in Hyderabad")

	assert.Equal(t, model.EmotionNeutral, analysis.Emotion)
	assert.Equal(t, 0, analysis.Intensity)
	assert.False(t, analysis.ValidationNeeded)
}

func TestAnalyzeEmptyMessage(t *testing.T) {
	analysis := Analyze("")

	assert.Equal(t, model.EmotionNeutral, analysis.Emotion)
	assert.Equal(t, 0, analysis.Intensity)
	assert.False(t, analysis.ValidationNeeded)
}

func TestAnalyzeLowConfidence(t *testing.T) {
	analysis := Analyze("I am so confused and worried about my options")

	assert.Equal(t, model.EmotionLowConfidence, analysis.Emotion)
	assert.True(t, analysis.ValidationNeeded)
	require.NotEmpty(t, analysis.SuggestedValidation)
	assert.Contains(t, ValidationPool(model.EmotionLowConfidence), analysis.SuggestedValidation)
}

func TestAnalyzeGratitudeNoValidation(t *testing.T) {
	analysis := Analyze("thanks, that was helpful")

	assert.Equal(t, model.EmotionGratitude, analysis.Emotion)
	assert.False(t, analysis.ValidationNeeded)
	assert.Empty(t, analysis.SuggestedValidation)
}

func TestAnalyzeQuestionMarksRaiseConfusion(t *testing.T) {
	analysis := Analyze("Which college? Which branch? Which exam?")

	assert.Equal(t, model.EmotionConfusion, analysis.Emotion)
	assert.GreaterOrEqual(t, analysis.Intensity, 3)
}

func TestAnalyzeExclamationsRaiseExcitement(t *testing.T) {
	analysis := Analyze("I got in!!! Best day ever!!!")

	assert.Equal(t, model.EmotionExcitement, analysis.Emotion)
}

func TestAnalyzeLongMessageRaisesLowConfidence(t *testing.T) {
	msg := strings.Repeat("my situation is complicated and long winded ", 6)
	require.Greater(t, len(msg), 200)

	analysis := Analyze(msg)
	found := false
	for _, s := range analysis.AllEmotions {
		if s.Emotion == model.EmotionLowConfidence {
			found = true
		}
	}
	assert.True(t, found, "long messages should score lowConfidence")
}

func TestAnalyzeIdempotentCategoryAndIntensity(t *testing.T) {
	msg := "I'm stressed and the deadline is close, please help quickly"

	first := Analyze(msg)
	for i := 0; i < 10; i++ {
		again := Analyze(msg)
		assert.Equal(t, first.Emotion, again.Emotion)
		assert.Equal(t, first.Intensity, again.Intensity)
	}
}

func TestAnalyzeTieBrokenByDeclarationOrder(t *testing.T) {
	// "worried" scores lowConfidence, "urgent" scores urgency; one each.
	analysis := Analyze("worried and urgent")

	assert.Equal(t, model.EmotionLowConfidence, analysis.Emotion)
	assert.Equal(t, 1, analysis.Intensity)
}

func TestAnalyzeAllEmotionsSortedDescending(t *testing.T) {
	analysis := Analyze("I'm confused, lost and scared but thank you for trying")

	require.NotEmpty(t, analysis.AllEmotions)
	for i := 1; i < len(analysis.AllEmotions); i++ {
		assert.GreaterOrEqual(t, analysis.AllEmotions[i-1].Score, analysis.AllEmotions[i].Score)
	}
	assert.Equal(t, analysis.AllEmotions[0].Emotion, analysis.Emotion)
	assert.Equal(t, analysis.AllEmotions[0].Score, analysis.Intensity)
}

func TestMicroStepsIncompleteProfile(t *testing.T) {
	steps := MicroSteps(model.UserContext{}, false, 0)

	require.Len(t, steps, 3)
	assert.Equal(t, "Share your complete details", steps[0].Action)
	assert.Equal(t, "Get personalized recommendations", steps[1].Action)
	assert.Equal(t, "Create your preference list", steps[2].Action)
}

func TestMicroStepsCompleteProfileWithMatches(t *testing.T) {
	ctx := model.UserContext{Rank: 5000, Category: "OBC"}
	steps := MicroSteps(ctx, true, 7)

	require.Len(t, steps, 3)
	assert.Equal(t, "Review your matches", steps[0].Action)
	assert.Equal(t, "Deep-dive on top 3", steps[1].Action)
}

func TestNewActionCard(t *testing.T) {
	analysis := Analyze("I'm so confused about counseling")
	steps := MicroSteps(model.UserContext{}, false, 0)

	card := NewActionCard(analysis, steps)

	assert.Equal(t, ActionCardType, card.Type)
	assert.Equal(t, analysis.Emotion, card.Mood)
	assert.Equal(t, analysis.SuggestedValidation, card.Validation)
	assert.Len(t, card.NextSteps, 3)
	assert.NotEmpty(t, card.Inspiration)
	assert.False(t, card.Timestamp.IsZero())
}
