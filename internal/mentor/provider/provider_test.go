package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compass-mentor/server/internal/mentor/model"
)

func TestComposeResultActionCard(t *testing.T) {
	analysis := model.EmotionalAnalysis{Emotion: model.EmotionNeutral}
	calls := []ExecutedCall{{Name: "predict_admission", Result: json.RawMessage(`{}`)}}

	res := composeResult("reply", calls, model.UserContext{}, analysis)
	require.NotNil(t, res.ActionCard)
	assert.Equal(t, "reply", res.Reply)
	assert.NotEmpty(t, res.ActionCard.NextSteps)
	assert.Equal(t, model.EmotionNeutral, res.ActionCard.Mood)
}

func TestMoodLine(t *testing.T) {
	neutral := moodLine(model.EmotionalAnalysis{Emotion: model.EmotionNeutral})
	assert.Contains(t, neutral, "neutral")
	assert.NotContains(t, neutral, "needs validation first")

	line := moodLine(model.EmotionalAnalysis{Emotion: model.EmotionUrgency, ValidationNeeded: true})
	assert.Contains(t, line, "urgency")
	assert.Contains(t, line, "needs validation first")
}

func TestContextSummary(t *testing.T) {
	assert.Empty(t, contextSummary(model.UserContext{}))

	s := contextSummary(model.UserContext{Rank: 15000, Category: "OBC", HomeState: "Telangana"})
	assert.Contains(t, s, "Rank: 15000")
	assert.Contains(t, s, "OBC")
	assert.Contains(t, s, "Telangana")
}
