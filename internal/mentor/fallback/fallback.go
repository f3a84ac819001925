package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/compass-mentor/server/internal/mentor/emotion"
	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/provider"
	"github.com/compass-mentor/server/internal/mentor/tools"
	logx "github.com/compass-mentor/server/pkg/logger"
)

// ModelName is the modelUsed value reported when the rule-based
// responder produced the answer.
const ModelName = "rule-based"

// Responder is the deterministic end of the fallback chain. It matches
// keywords against the latest user turn and answers from templates,
// optionally grounding predictions through the same gated executor the
// model adapters use. It performs no network calls and never fails.
type Responder struct{}

func New() *Responder { return &Responder{} }

func (r *Responder) Name() string    { return ModelName }
func (r *Responder) Label() string   { return ModelName }
func (r *Responder) Available() bool { return true }

// exam aliases scanned in order; longer aliases first so "jee advanced"
// wins over "jee".
var examAliases = []string{
	"jee advanced",
	"jee main",
	"jee",
	"bitsat",
	"ts eamcet",
	"ap eamcet",
	"eamcet",
	"kcet",
	"mht cet",
	"wbjee",
	"neet",
}

var rankPattern = regexp.MustCompile(`(?i)rank\s*(?:is|was|:)?\s*([\d,]+)`)
var numberPattern = regexp.MustCompile(`[\d,]{2,}`)

var categoryPattern = regexp.MustCompile(`(?i)\b(ews|obc|sc|st|pwd|general)\b`)

const welcomeReply = "👋 Hi! I'm Compass Mentor. I can help you with:\n\n" +
	"• Finding colleges based on your rank\n" +
	"• Comparing different institutions\n" +
	"• Understanding fee structures\n" +
	"• Checking your eligibility\n\n" +
	"To get started, please tell me:\n" +
	"1. Your exam rank\n" +
	"2. Which exam (JEE Main/EAMCET/etc.)\n" +
	"3. Your category (General/OBC/SC/ST)"

const askExamReply = "I can see you have a rank, which is great! 🎯 But to give you accurate college predictions, " +
	"I need to know which exam you took.\n\n" +
	"Was it JEE Main, JEE Advanced, TS EAMCET, AP EAMCET, KCET, MHT CET, WBJEE, BITSAT, or NEET? " +
	"Each exam opens doors to a different set of colleges, so this really matters!"

const feesReply = "💰 Fee structures vary a lot by institution type. Roughly: government engineering colleges " +
	"run around ₹1.5L per year, private ones ₹4L. Government medical colleges are about ₹50K, private medical " +
	"much higher. Reserved categories get significant concessions. Tell me a specific college and I'll pull its numbers!"

const cutoffReply = "📊 Cutoffs shift every year with difficulty and seat matrix changes. Share your exam, rank, " +
	"and category and I'll map you to realistic options instead of raw cutoff tables."

const compareReply = "🔍 Happy to compare! Name two or more colleges (for example \"compare NIT Warangal and NIT Trichy\") " +
	"and I'll line up their rankings, fees, and branches side by side."

func (r *Responder) Converse(ctx context.Context, history []model.Turn, userCtx model.UserContext, exec provider.ToolExecutor) (*provider.Result, error) {
	message := model.LastUserContent(history)
	analysis := emotion.Analyze(message)
	lower := strings.ToLower(message)

	rank := userCtx.Rank
	if rank == 0 {
		rank = extractRank(message)
	}
	exam := extractExam(lower)
	category := userCtx.Category
	if category == "" {
		category = extractCategory(message)
	}

	var (
		reply string
		calls []provider.ExecutedCall
	)

	switch {
	case rank > 0 && exam == "":
		reply = askExamReply
	case rank > 0 && exam != "":
		reply, calls = r.predict(ctx, exec, exam, rank, category)
	case strings.Contains(lower, "fee") || strings.Contains(lower, "afford"):
		reply = feesReply
	case strings.Contains(lower, "cutoff"):
		reply = cutoffReply
	case strings.Contains(lower, "compare") || strings.Contains(lower, " vs "):
		reply = compareReply
	default:
		reply = welcomeReply
	}

	examKnown := exam != "" && len(calls) > 0
	steps := emotion.MicroSteps(userCtx, examKnown, len(calls))
	return &provider.Result{
		Reply:      reply,
		Calls:      calls,
		Analysis:   analysis,
		ActionCard: emotion.NewActionCard(analysis, steps),
	}, nil
}

// predict grounds the answer through the gated executor. A blocked or
// failed execution degrades to the ask-exam template so the responder
// still cannot fail.
func (r *Responder) predict(ctx context.Context, exec provider.ToolExecutor, exam string, rank int, category string) (string, []provider.ExecutedCall) {
	args := map[string]any{"exam": exam, "rank": rank}
	if category != "" {
		args["category"] = category
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return askExamReply, nil
	}

	result, err := exec.Execute(ctx, "predict_admission", raw)
	if err != nil {
		logx.Warn().Err(err).Msg("rule-based responder: prediction failed")
		return askExamReply, nil
	}

	var probe struct {
		Error      bool `json:"error"`
		TotalFound int  `json:"totalFound"`
	}
	if jsonErr := json.Unmarshal(result, &probe); jsonErr != nil || probe.Error {
		return askExamReply, nil
	}

	call := provider.ExecutedCall{Name: "predict_admission", Arguments: raw, Result: result}
	if probe.TotalFound == 0 {
		return fmt.Sprintf("I checked %s options for rank %s and came up empty in this dataset. "+
			"Try widening your branch preferences or ask me about nearby states!", exam, strconv.Itoa(rank)), []provider.ExecutedCall{call}
	}
	return fmt.Sprintf("Based on your %s rank of %s, I found %d matching colleges! 🎯 "+
		"They're grouped below as Safe, Moderate, and Ambitious so you can build a balanced list.",
		exam, strconv.Itoa(rank), probe.TotalFound), []provider.ExecutedCall{call}
}

func extractRank(message string) int {
	m := rankPattern.FindStringSubmatch(message)
	if m == nil {
		m = numberPattern.FindStringSubmatch(message)
		if m == nil {
			return 0
		}
		m = []string{"", m[0]}
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func extractExam(lower string) string {
	for _, alias := range examAliases {
		if strings.Contains(lower, alias) {
			if exam, ok := tools.ResolveExam(alias); ok {
				return exam.Name
			}
		}
	}
	return ""
}

func extractCategory(message string) string {
	m := categoryPattern.FindString(message)
	if m == "" {
		return ""
	}
	return tools.NormalizeCategory(m)
}
