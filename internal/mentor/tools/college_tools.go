package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/compass-mentor/server/internal/mentor/model"
)

// flexInt decodes both 5000 and "5000"; models are inconsistent about
// quoting numeric arguments.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		// tolerate "5000.0"
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		n = int(fl)
	}
	*f = flexInt(n)
	return nil
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

// ================ predict_admission ================

type predictArgs struct {
	Exam       string  `json:"exam"`
	Rank       flexInt `json:"rank"`
	Category   string  `json:"category"`
	HomeState  string  `json:"homeState"`
	TargetCity string  `json:"targetCity"`
}

// PredictionEntry is one college/branch option in a prediction bucket.
type PredictionEntry struct {
	CollegeName  string `json:"collegeName"`
	Acronym      string `json:"acronym,omitempty"`
	Branch       string `json:"branch"`
	CutoffRank   int    `json:"cutoffRank"`
	YourRank     int    `json:"yourRank"`
	Margin       int    `json:"margin"`
	Probability  int    `json:"probability"`
	ChanceLabel  string `json:"chanceLabel"`
	Reason       string `json:"reason"`
	Location     string `json:"location"`
	CollegeType  string `json:"collegeType"`
	Year         int    `json:"year"`
	CategoryUsed string `json:"categoryUsed"`
}

// PredictInputSummary echoes the resolved prediction inputs.
type PredictInputSummary struct {
	Exam       string `json:"exam"`
	Rank       int    `json:"rank"`
	Category   string `json:"category"`
	HomeState  string `json:"homeState,omitempty"`
	TargetCity string `json:"targetCity,omitempty"`
}

// PredictResult groups options into safe, moderate and ambitious buckets.
type PredictResult struct {
	InputSummary PredictInputSummary `json:"inputSummary"`
	TotalFound   int                 `json:"totalFound"`
	ExamInfo     string              `json:"examInfo"`
	Results      struct {
		Safe      []PredictionEntry `json:"safe"`
		Moderate  []PredictionEntry `json:"moderate"`
		Ambitious []PredictionEntry `json:"ambitious"`
	} `json:"results"`
}

const bucketLimit = 5

func predictAdmissionTool(data *Dataset) *Definition {
	return &Definition{
		Name:        "predict_admission",
		Description: "Predict admission chances across colleges for a given exam rank. Returns Safe (strong chance), Moderate (good chance) and Ambitious (reach) options with cutoffs and probabilities. Requires the exam name; a rank has no meaning without it.",
		Parameters: map[string]Parameter{
			"exam":       {Type: "string", Description: "Entrance exam the rank belongs to, e.g. JEE Main, JEE Advanced, TS EAMCET, BITSAT, NEET.", Required: true},
			"rank":       {Type: "number", Description: "The student's rank in that exam.", Required: true},
			"category":   {Type: "string", Description: "Reservation category: General, EWS, OBC, SC, ST or PwD.", Required: false},
			"homeState":  {Type: "string", Description: "Student's home state, used for state quota context.", Required: false},
			"targetCity": {Type: "string", Description: "Restrict results to colleges in this city.", Required: false},
		},
		Run: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args predictArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			exam, ok := ResolveExam(args.Exam)
			if !ok {
				return nil, fmt.Errorf("unknown exam %q, valid exams: %s", args.Exam, strings.Join(ValidExamNames(), ", "))
			}
			rank := int(args.Rank)
			if rank <= 0 {
				return nil, fmt.Errorf("a positive rank is required")
			}
			category := NormalizeCategory(args.Category)

			res := PredictResult{
				InputSummary: PredictInputSummary{
					Exam:       exam.Name,
					Rank:       rank,
					Category:   category,
					HomeState:  args.HomeState,
					TargetCity: args.TargetCity,
				},
				ExamInfo: exam.Info,
			}

			for _, c := range data.EligibleFor(exam, args.TargetCity) {
				for _, branch := range c.Branches {
					closing := ClosingRank(c, branch, category)
					entry := PredictionEntry{
						CollegeName:  c.Name,
						Acronym:      c.Acronym,
						Branch:       branch,
						CutoffRank:   closing,
						YourRank:     rank,
						Margin:       closing - rank,
						Location:     c.Location(),
						CollegeType:  c.Type,
						Year:         CutoffYear,
						CategoryUsed: category,
					}
					switch {
					case rank*4 <= closing*3:
						entry.Probability = 90
						entry.ChanceLabel = "High"
						entry.Reason = "Last year's cutoff is comfortably above your rank."
						if len(res.Results.Safe) < bucketLimit {
							res.Results.Safe = append(res.Results.Safe, entry)
							res.TotalFound++
						}
					case rank <= closing:
						entry.Probability = 65
						entry.ChanceLabel = "Good"
						entry.Reason = "Your rank is within last year's closing rank."
						if len(res.Results.Moderate) < bucketLimit {
							res.Results.Moderate = append(res.Results.Moderate, entry)
							res.TotalFound++
						}
					case rank*10 <= closing*13:
						entry.Probability = 35
						entry.ChanceLabel = "Tough"
						entry.Reason = "Your rank is slightly beyond last year's cutoff; cutoffs can shift 5-10% each year."
						if len(res.Results.Ambitious) < bucketLimit {
							res.Results.Ambitious = append(res.Results.Ambitious, entry)
							res.TotalFound++
						}
					}
				}
			}
			return res, nil
		},
	}
}

// ================ check_college_eligibility ================

type eligibilityArgs struct {
	CollegeName string `json:"collegeName"`
	Exam        string `json:"exam"`
}

// EligibilityResult answers whether an exam can admit into a college.
type EligibilityResult struct {
	CollegeName  string `json:"collegeName"`
	ExamProvided string `json:"examProvided"`
	Eligible     bool   `json:"eligible"`
	RequiredExam string `json:"requiredExam,omitempty"`
	Message      string `json:"message"`
	Suggestion   string `json:"suggestion,omitempty"`
}

func checkEligibilityTool(data *Dataset) *Definition {
	return &Definition{
		Name:        "check_college_eligibility",
		Description: "Check whether a specific college admits through a given exam. Use before any prediction when the student asks about a particular college.",
		Parameters: map[string]Parameter{
			"collegeName": {Type: "string", Description: "College name or acronym, e.g. IIT Bombay, NIT-WAR.", Required: true},
			"exam":        {Type: "string", Description: "The exam the student has taken or plans to take.", Required: true},
		},
		Run: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args eligibilityArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			college, ok := data.Find(args.CollegeName)
			if !ok {
				return nil, fmt.Errorf("college %q not found", args.CollegeName)
			}
			required := RequiredExam(college)
			res := EligibilityResult{
				CollegeName:  college.Name,
				ExamProvided: args.Exam,
				RequiredExam: required,
			}

			exam, ok := ResolveExam(args.Exam)
			if ok && exam.AcceptsCollege(college) {
				res.Eligible = true
				res.Message = fmt.Sprintf("%s admits through %s, so your exam works here.", college.Name, exam.Name)
				return res, nil
			}
			res.Eligible = false
			res.Message = fmt.Sprintf("%s does not admit through %s. Admission requires %s.", college.Name, args.Exam, required)
			res.Suggestion = fmt.Sprintf("Ask me what your %s rank can get you instead, or how to appear for %s.", args.Exam, required)
			return res, nil
		},
	}
}

// ================ compare_colleges ================

type compareArgs struct {
	CollegeNames []string `json:"collegeNames"`
}

// ComparisonEntry is one college row of a comparison.
type ComparisonEntry struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	GeneralFees int    `json:"generalFees"`
	NIRFRank    int    `json:"nirfRank"`
	Type        string `json:"type"`
}

// CompareResult lists the matched colleges side by side.
type CompareResult struct {
	Comparison []ComparisonEntry `json:"comparison"`
	NotFound   []string          `json:"notFound,omitempty"`
}

func compareCollegesTool(data *Dataset) *Definition {
	return &Definition{
		Name:        "compare_colleges",
		Description: "Compare two or more colleges on location, fees and ranking. Use when the student mentions 'vs' or asks to choose between colleges.",
		Parameters: map[string]Parameter{
			"collegeNames": {Type: "array", Items: "string", Description: "Names or acronyms of the colleges to compare.", Required: true},
		},
		Run: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args compareArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			var res CompareResult
			for _, name := range args.CollegeNames {
				c, ok := data.Find(name)
				if !ok {
					res.NotFound = append(res.NotFound, name)
					continue
				}
				res.Comparison = append(res.Comparison, ComparisonEntry{
					Name:        c.Name,
					Location:    c.Location(),
					GeneralFees: c.Fees.General,
					NIRFRank:    c.NIRFRank,
					Type:        c.Type,
				})
			}
			if len(res.Comparison) == 0 {
				return nil, fmt.Errorf("none of the requested colleges were found")
			}
			return res, nil
		},
	}
}

// ================ get_college_details ================

type detailsArgs struct {
	CollegeName string `json:"collegeName"`
}

// DetailsResult carries the full profile of one college.
type DetailsResult struct {
	College struct {
		Name     string             `json:"name"`
		Acronym  string             `json:"acronym"`
		Location string             `json:"location"`
		NIRFRank int                `json:"nirfRank"`
		Type     string             `json:"type"`
		Fees     model.FeeStructure `json:"fees"`
		Branches []string           `json:"branches"`
	} `json:"college"`
}

func collegeDetailsTool(data *Dataset) *Definition {
	return &Definition{
		Name:        "get_college_details",
		Description: "Get the full profile of one college: location, ranking, branches and category-wise fees.",
		Parameters: map[string]Parameter{
			"collegeName": {Type: "string", Description: "College name or acronym.", Required: true},
		},
		Run: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args detailsArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			c, ok := data.Find(args.CollegeName)
			if !ok {
				return nil, fmt.Errorf("college %q not found", args.CollegeName)
			}
			var res DetailsResult
			res.College.Name = c.Name
			res.College.Acronym = c.Acronym
			res.College.Location = c.Location()
			res.College.NIRFRank = c.NIRFRank
			res.College.Type = c.Type
			res.College.Fees = c.Fees
			res.College.Branches = c.Branches
			return res, nil
		},
	}
}

// ================ search_colleges_by_rank ================

type searchArgs struct {
	Exam     string  `json:"exam"`
	Rank     flexInt `json:"rank"`
	Category string  `json:"category"`
	Limit    flexInt `json:"limit"`
}

// SearchEntry is one eligible college/branch match for a rank.
type SearchEntry struct {
	CollegeName      string `json:"collegeName"`
	Branch           string `json:"branch"`
	CutoffRank       int    `json:"cutoffRank"`
	Location         string `json:"location"`
	AdmissionChance  int    `json:"admissionChance"`
	MarginFromCutoff int    `json:"marginFromCutoff"`
}

// SearchResult lists colleges a rank can realistically reach.
type SearchResult struct {
	Colleges []SearchEntry `json:"colleges"`
}

func searchByRankTool(data *Dataset) *Definition {
	return &Definition{
		Name:        "search_colleges_by_rank",
		Description: "List colleges where a rank falls within last year's closing rank. Requires the exam name.",
		Parameters: map[string]Parameter{
			"exam":     {Type: "string", Description: "Entrance exam the rank belongs to.", Required: true},
			"rank":     {Type: "number", Description: "The student's rank in that exam.", Required: true},
			"category": {Type: "string", Description: "Reservation category, defaults to General.", Required: false},
			"limit":    {Type: "number", Description: "Maximum number of matches to return, defaults to 10.", Required: false},
		},
		Run: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args searchArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			exam, ok := ResolveExam(args.Exam)
			if !ok {
				return nil, fmt.Errorf("unknown exam %q, valid exams: %s", args.Exam, strings.Join(ValidExamNames(), ", "))
			}
			rank := int(args.Rank)
			if rank <= 0 {
				return nil, fmt.Errorf("a positive rank is required")
			}
			category := NormalizeCategory(args.Category)
			limit := int(args.Limit)
			if limit <= 0 {
				limit = 10
			}

			var res SearchResult
			for _, c := range data.EligibleFor(exam, "") {
				for _, branch := range c.Branches {
					closing := ClosingRank(c, branch, category)
					if rank > closing {
						continue
					}
					chance := 65
					if rank*4 <= closing*3 {
						chance = 90
					}
					res.Colleges = append(res.Colleges, SearchEntry{
						CollegeName:      c.Name,
						Branch:           branch,
						CutoffRank:       closing,
						Location:         c.Location(),
						AdmissionChance:  chance,
						MarginFromCutoff: closing - rank,
					})
					if len(res.Colleges) >= limit {
						return res, nil
					}
				}
			}
			return res, nil
		},
	}
}

// ================ get_affordable_colleges ================

type affordableArgs struct {
	MaxBudget flexInt `json:"maxBudget"`
	Category  string  `json:"category"`
	Stream    string  `json:"stream"`
}

// AffordableEntry is one college within budget.
type AffordableEntry struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Fees     int    `json:"fees"`
	NIRFRank int    `json:"nirfRank"`
}

// AffordableResult lists colleges whose category fee fits the budget.
type AffordableResult struct {
	Colleges []AffordableEntry `json:"colleges"`
}

func affordableCollegesTool(data *Dataset) *Definition {
	return &Definition{
		Name:        "get_affordable_colleges",
		Description: "List colleges whose annual fee fits a budget. Use when the student mentions fees, budget or affordability.",
		Parameters: map[string]Parameter{
			"maxBudget": {Type: "number", Description: "Maximum annual fee in rupees.", Required: true},
			"category":  {Type: "string", Description: "Reservation category for fee concessions, defaults to General.", Required: false},
			"stream":    {Type: "string", Description: "Engineering or Medical, defaults to Engineering.", Required: false},
		},
		Run: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args affordableArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			budget := int(args.MaxBudget)
			if budget <= 0 {
				return nil, fmt.Errorf("a positive maxBudget is required")
			}
			category := NormalizeCategory(args.Category)
			stream := strings.TrimSpace(args.Stream)
			if stream == "" {
				stream = "Engineering"
			}

			var res AffordableResult
			for _, c := range data.All() {
				if !strings.EqualFold(c.Stream, stream) {
					continue
				}
				fee := c.Fees.General
				switch category {
				case "OBC":
					fee = c.Fees.OBC
				case "SC":
					fee = c.Fees.SC
				case "ST":
					fee = c.Fees.ST
				}
				if fee > budget {
					continue
				}
				res.Colleges = append(res.Colleges, AffordableEntry{
					Name:     c.Name,
					Location: c.Location(),
					Fees:     fee,
					NIRFRank: c.NIRFRank,
				})
				if len(res.Colleges) >= 10 {
					break
				}
			}
			return res, nil
		},
	}
}

// ================ get_cutoff_data ================

type cutoffArgs struct {
	CollegeName string `json:"collegeName"`
	Category    string `json:"category"`
}

// CutoffEntry is one branch's closing rank.
type CutoffEntry struct {
	Branch      string `json:"branch"`
	ClosingRank int    `json:"closingRank"`
	Category    string `json:"category"`
	Year        int    `json:"year"`
}

// CutoffResult lists branch-wise cutoffs for a college.
type CutoffResult struct {
	CollegeName string        `json:"collegeName"`
	Cutoffs     []CutoffEntry `json:"cutoffs"`
}

func cutoffDataTool(data *Dataset) *Definition {
	return &Definition{
		Name:        "get_cutoff_data",
		Description: "Branch-wise closing ranks for one college, per category.",
		Parameters: map[string]Parameter{
			"collegeName": {Type: "string", Description: "College name or acronym.", Required: true},
			"category":    {Type: "string", Description: "Reservation category, defaults to General.", Required: false},
		},
		Run: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args cutoffArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			c, ok := data.Find(args.CollegeName)
			if !ok {
				return nil, fmt.Errorf("college %q not found", args.CollegeName)
			}
			category := NormalizeCategory(args.Category)
			res := CutoffResult{CollegeName: c.Name}
			for _, branch := range c.Branches {
				res.Cutoffs = append(res.Cutoffs, CutoffEntry{
					Branch:      branch,
					ClosingRank: ClosingRank(c, branch, category),
					Category:    category,
					Year:        CutoffYear,
				})
			}
			return res, nil
		},
	}
}
