package emotion

import (
	"math/rand"
	"strings"

	"github.com/compass-mentor/server/internal/mentor/model"
)

// marker holds the trigger phrases for one emotion. Declaration order
// matters: it breaks score ties, first listed wins.
type marker struct {
	emotion  model.Emotion
	triggers []string
}

var markers = []marker{
	{model.EmotionLowConfidence, []string{
		"confused", "lost", "don't know", "unsure", "worried", "scared",
		"overwhelmed", "stressed", "anxious", "nervous", "helpless",
		"stuck", "frustrated", "afraid", "hopeless", "nothing", "failure",
		"can't", "unable", "impossible", "too hard", "give up",
	}},
	{model.EmotionUrgency, []string{
		"urgent", "asap", "quickly", "emergency", "deadline", "last chance",
		"running out", "running out of time", "too late", "missed",
	}},
	{model.EmotionConfusion, []string{
		"confused", "don't understand", "unclear", "what does", "how does",
		"why", "explain", "not sure", "confusing", "complicated",
	}},
	{model.EmotionExcitement, []string{
		"excited", "happy", "great", "awesome", "amazing", "fantastic",
		"wonderful", "excellent", "perfect", "love", "thrilled",
	}},
	{model.EmotionGratitude, []string{
		"thank", "thanks", "appreciate", "grateful", "helpful", "helped me",
	}},
	{model.EmotionDetermination, []string{
		"will", "going to", "determined", "committed", "motivated",
		"ready", "let's do this", "i can",
	}},
}

var validationTemplates = map[model.Emotion][]string{
	model.EmotionLowConfidence: {
		"I completely understand feeling this way - choosing a college is one of the biggest decisions you'll make, and it's totally normal to feel overwhelmed.",
		"Hey, take a breath. What you're feeling right now? Completely valid. Every student I've helped has been exactly where you are.",
		"First, let me say this: feeling lost or confused doesn't mean you're behind. It means you're taking this seriously, which is actually a good sign.",
		"I hear you, and I want you to know something important: uncertainty at this stage is not weakness - it's wisdom. You're being thoughtful about your future.",
	},
	model.EmotionUrgency: {
		"I can feel the time pressure, and I'm here to help you navigate this quickly but smartly.",
		"Okay, let's focus. When things feel urgent, having a clear next step is everything. I've got you.",
		"I understand you're working against the clock. Let's break this down into immediate action items.",
	},
	model.EmotionConfusion: {
		"Great question! The fact that you're asking means you're thinking critically, which is exactly what you should be doing.",
		"I love that you're asking this - clarity beats confusion every time. Let me break this down for you.",
		"This is actually a very common point of confusion, and I'm glad you brought it up. Let's clear it up together.",
	},
	model.EmotionExcitement: {
		"I love your energy! Let's channel that enthusiasm into finding the perfect college for you! 🎉",
		"Your excitement is contagious! This is exactly the attitude that will help you make the best choice.",
		"That's the spirit! When you're this motivated, great things happen. Let's find your ideal match!",
	},
	model.EmotionGratitude: {
		"You're so welcome! Helping students like you find their path is exactly why I'm here. 😊",
		"I'm really happy I could help! Your success is what matters most to me.",
		"Thank you for trusting me with this decision. I'm here whenever you need guidance!",
	},
	model.EmotionNeutral: {
		"Absolutely, I can help with that!",
		"Great question - let me guide you through this.",
		"I'm here to help you figure this out. Let's dive in!",
	},
}

// Analyze scores a message against the trigger lexicon and returns the
// dominant emotion. Pure and total: an empty message yields neutral with
// zero intensity, never an error.
//
// Heuristics beyond trigger counting: more than one question mark raises
// confusion by the question-mark count, more than two exclamation marks
// raise excitement by the exclamation count, and messages over 200
// characters raise lowConfidence by one.
func Analyze(message string) model.EmotionalAnalysis {
	if message == "" {
		return model.EmotionalAnalysis{
			Emotion:          model.EmotionNeutral,
			ValidationNeeded: false,
		}
	}

	lower := strings.ToLower(message)
	scores := make(map[model.Emotion]int, len(markers))
	for _, m := range markers {
		for _, trigger := range m.triggers {
			if strings.Contains(lower, trigger) {
				scores[m.emotion]++
			}
		}
	}

	if q := strings.Count(message, "?"); q > 1 {
		scores[model.EmotionConfusion] += q
	}
	if e := strings.Count(message, "!"); e > 2 {
		scores[model.EmotionExcitement] += e
	}
	if len(message) > 200 {
		scores[model.EmotionLowConfidence]++
	}

	// Rank positive scores in marker declaration order so ties are stable.
	var ranked []model.EmotionScore
	for _, m := range markers {
		if s := scores[m.emotion]; s > 0 {
			ranked = append(ranked, model.EmotionScore{Emotion: m.emotion, Score: s})
		}
	}
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].Score > ranked[j-1].Score; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	if len(ranked) == 0 {
		return model.EmotionalAnalysis{
			Emotion:             model.EmotionNeutral,
			Intensity:           0,
			ValidationNeeded:    false,
			SuggestedValidation: randomValidation(model.EmotionNeutral),
		}
	}

	primary := ranked[0]
	needed := validationNeeded(primary.Emotion)
	analysis := model.EmotionalAnalysis{
		Emotion:          primary.Emotion,
		Intensity:        primary.Score,
		ValidationNeeded: needed,
		AllEmotions:      ranked,
	}
	if needed {
		analysis.SuggestedValidation = randomValidation(primary.Emotion)
	}
	return analysis
}

func validationNeeded(e model.Emotion) bool {
	switch e {
	case model.EmotionLowConfidence, model.EmotionUrgency, model.EmotionConfusion:
		return true
	}
	return false
}

func randomValidation(e model.Emotion) string {
	pool, ok := validationTemplates[e]
	if !ok {
		pool = validationTemplates[model.EmotionNeutral]
	}
	return pool[rand.Intn(len(pool))]
}

// ValidationPool returns the validation templates for an emotion. Used by
// tests to assert a suggestion came from the right pool.
func ValidationPool(e model.Emotion) []string {
	return validationTemplates[e]
}
