package emotion

import (
	"time"

	"github.com/compass-mentor/server/internal/mentor/model"
)

const ActionCardType = "zenith_action_card"

var inspirationalQuotes = map[model.Emotion]string{
	model.EmotionLowConfidence: "Every expert was once a beginner. You're not behind - you're exactly where you need to be.",
	model.EmotionUrgency:       "Pressure creates diamonds. You've got this!",
	model.EmotionConfusion:     "Confusion is the beginning of understanding. Keep asking questions!",
	model.EmotionExcitement:    "Your enthusiasm will open doors that qualification alone can't.",
	model.EmotionGratitude:     "Gratitude is the foundation of growth. You're on the right path!",
	model.EmotionDetermination: "With determination like yours, success is inevitable.",
	model.EmotionNeutral:       "One step at a time, one choice at a time. You'll find your way.",
}

// MicroSteps derives the "next 3 steps" block. Step one depends on whether
// the profile is complete, step two on whether recommendations exist, step
// three is always building the preference list.
func MicroSteps(ctx model.UserContext, examKnown bool, recommendations int) []model.Step {
	steps := make([]model.Step, 0, 3)

	if ctx.Rank == 0 || ctx.Category == "" || !examKnown {
		steps = append(steps, model.Step{
			Number: 1,
			Action: "Share your complete details",
			Detail: "I need your exam name, rank, category, and home state to give you accurate predictions.",
			Emoji:  "📝",
		})
	} else {
		steps = append(steps, model.Step{
			Number: 1,
			Action: "Review your matches",
			Detail: "Look at the Safe options first, they are your strongest chances.",
			Emoji:  "✅",
		})
	}

	if recommendations > 0 {
		steps = append(steps, model.Step{
			Number: 2,
			Action: "Deep-dive on top 3",
			Detail: "Pick 3 colleges from your Safe/Moderate list. Ask me to compare them or check their fees and placements.",
			Emoji:  "🔍",
		})
	} else {
		steps = append(steps, model.Step{
			Number: 2,
			Action: "Get personalized recommendations",
			Detail: "Once I have your details, I'll show you Safe, Moderate, and Ambitious options with probabilities.",
			Emoji:  "🎯",
		})
	}

	steps = append(steps, model.Step{
		Number: 3,
		Action: "Create your preference list",
		Detail: "Start filling your counseling preferences with Safe options first, then Moderate, then Ambitious.",
		Emoji:  "📋",
	})

	return steps
}

// NewActionCard assembles the coaching card from the analysis and the
// derived steps. At most three steps are kept.
func NewActionCard(analysis model.EmotionalAnalysis, nextSteps []model.Step) *model.ActionCard {
	if len(nextSteps) > 3 {
		nextSteps = nextSteps[:3]
	}
	card := &model.ActionCard{
		Type:        ActionCardType,
		NextSteps:   nextSteps,
		Inspiration: Inspiration(analysis.Emotion),
		Mood:        analysis.Emotion,
		Timestamp:   time.Now(),
	}
	if analysis.ValidationNeeded {
		card.Validation = analysis.SuggestedValidation
	}
	return card
}

// Inspiration returns the motivational line for an emotion.
func Inspiration(e model.Emotion) string {
	if q, ok := inspirationalQuotes[e]; ok {
		return q
	}
	return inspirationalQuotes[model.EmotionNeutral]
}
