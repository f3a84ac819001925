package model

import "time"

// Emotion tags the dominant sentiment detected in a student message.
type Emotion string

const (
	EmotionLowConfidence Emotion = "lowConfidence"
	EmotionUrgency       Emotion = "urgency"
	EmotionConfusion     Emotion = "confusion"
	EmotionExcitement    Emotion = "excitement"
	EmotionGratitude     Emotion = "gratitude"
	EmotionDetermination Emotion = "determination"
	EmotionNeutral       Emotion = "neutral"
)

// EmotionScore pairs an emotion with the number of triggers that matched.
type EmotionScore struct {
	Emotion Emotion `json:"emotion"`
	Score   int     `json:"score"`
}

// EmotionalAnalysis is derived from the latest user turn only. It is
// stateless and recomputed per request.
type EmotionalAnalysis struct {
	Emotion             Emotion        `json:"emotion"`
	Intensity           int            `json:"intensity"`
	ValidationNeeded    bool           `json:"validationNeeded"`
	SuggestedValidation string         `json:"suggestedValidation,omitempty"`
	AllEmotions         []EmotionScore `json:"allEmotions,omitempty"`
}

// Step is one entry of the "next 3 steps" micro-pathing block.
type Step struct {
	Number int    `json:"number"`
	Action string `json:"action"`
	Detail string `json:"detail"`
	Emoji  string `json:"emoji"`
}

// ActionCard is the structured coaching block attached to a reply:
// validation of the detected mood, at most three next steps, and an
// inspirational line.
type ActionCard struct {
	Type        string    `json:"type"`
	Validation  string    `json:"validation,omitempty"`
	NextSteps   []Step    `json:"nextSteps"`
	Inspiration string    `json:"inspiration"`
	Mood        Emotion   `json:"mood"`
	Timestamp   time.Time `json:"timestamp"`
}

// FeeStructure holds category-wise annual fees in rupees.
type FeeStructure struct {
	General int `json:"general"`
	OBC     int `json:"obc"`
	SC      int `json:"sc"`
	ST      int `json:"st"`
}

// Card is a display-oriented projection of a tool result, tagged by the
// originating tool. Which fields are populated depends on Type:
// prediction_summary, prediction, eligibility_check, eligibility,
// college, comparison, cutoff, fees.
type Card struct {
	Type string `json:"type"`

	// prediction_summary
	Exam       string `json:"exam,omitempty"`
	Rank       int    `json:"rank,omitempty"`
	Category   string `json:"category,omitempty"`
	HomeState  string `json:"homeState,omitempty"`
	TargetCity string `json:"targetCity,omitempty"`
	TotalFound int    `json:"totalFound,omitempty"`
	ExamInfo   string `json:"examInfo,omitempty"`

	// prediction / eligibility
	ChanceCategory string `json:"chanceCategory,omitempty"`
	ChanceEmoji    string `json:"chanceEmoji,omitempty"`
	ChanceText     string `json:"chanceText,omitempty"`
	CollegeName    string `json:"collegeName,omitempty"`
	Acronym        string `json:"acronym,omitempty"`
	Branch         string `json:"branch,omitempty"`
	CutoffRank     int    `json:"cutoffRank,omitempty"`
	YourRank       int    `json:"yourRank,omitempty"`
	Margin         int    `json:"margin,omitempty"`
	Probability    int    `json:"probability,omitempty"`
	Location       string `json:"location,omitempty"`
	CollegeType    string `json:"collegeType,omitempty"`
	Year           int    `json:"year,omitempty"`

	// eligibility_check
	ExamProvided string `json:"examProvided,omitempty"`
	Eligible     *bool  `json:"eligible,omitempty"`
	RequiredExam string `json:"requiredExam,omitempty"`
	Message      string `json:"message,omitempty"`
	Suggestion   string `json:"suggestion,omitempty"`

	// college / comparison / cutoff / fees
	NIRFRank    int           `json:"nirfRank,omitempty"`
	Fees        *FeeStructure `json:"fees,omitempty"`
	GeneralFee  int           `json:"generalFee,omitempty"`
	Branches    []string      `json:"branches,omitempty"`
	ClosingRank int           `json:"closingRank,omitempty"`
}

// ReplyEnvelope is the contract surfaced to the caller. Constructed fresh
// per request.
type ReplyEnvelope struct {
	Reply             string             `json:"reply"`
	Cards             []Card             `json:"cards"`
	FollowUp          string             `json:"followUp,omitempty"`
	ActionCard        *ActionCard        `json:"actionCard,omitempty"`
	EmotionalAnalysis *EmotionalAnalysis `json:"emotionalAnalysis,omitempty"`
	ModelUsed         string             `json:"modelUsed"`
}
