package orchestrator

import (
	"encoding/json"

	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/provider"
	"github.com/compass-mentor/server/internal/mentor/tools"
	logx "github.com/compass-mentor/server/pkg/logger"
)

// synthesizeCards walks the executed tool calls in order and projects
// each structured result into display cards. Results carrying an error
// flag contribute nothing.
func synthesizeCards(calls []provider.ExecutedCall) []model.Card {
	cards := []model.Card{}
	for _, call := range calls {
		var probe struct {
			Error bool `json:"error"`
		}
		if err := json.Unmarshal(call.Result, &probe); err != nil {
			logx.Warn().Err(err).Str("tool", call.Name).Msg("unparseable tool result, skipping cards")
			continue
		}
		if probe.Error {
			continue
		}
		cards = append(cards, cardsFor(call.Name, call.Result)...)
	}
	return cards
}

func cardsFor(name string, result json.RawMessage) []model.Card {
	switch name {
	case "predict_admission":
		return predictionCards(result)
	case "check_college_eligibility":
		return eligibilityCheckCards(result)
	case "search_colleges_by_rank":
		return searchCards(result)
	case "get_college_details":
		return detailsCards(result)
	case "compare_colleges":
		return comparisonCards(result)
	case "get_cutoff_data":
		return cutoffCards(result)
	case "get_affordable_colleges":
		return affordableCards(result)
	}
	return nil
}

// chance presentation per bucket, fixed.
var chanceEmoji = map[string]string{"safe": "🟢", "moderate": "🟡", "ambitious": "🔴"}
var chanceText = map[string]string{"safe": "Strong Chance", "moderate": "Good Chance", "ambitious": "Reach Goal"}

func predictionCards(result json.RawMessage) []model.Card {
	var res tools.PredictResult
	if err := json.Unmarshal(result, &res); err != nil {
		return nil
	}

	cards := []model.Card{{
		Type:       "prediction_summary",
		Exam:       res.InputSummary.Exam,
		Rank:       res.InputSummary.Rank,
		Category:   res.InputSummary.Category,
		HomeState:  res.InputSummary.HomeState,
		TargetCity: res.InputSummary.TargetCity,
		TotalFound: res.TotalFound,
		ExamInfo:   res.ExamInfo,
	}}

	appendBucket := func(bucket string, entries []tools.PredictionEntry) {
		for _, e := range entries {
			cards = append(cards, model.Card{
				Type:           "prediction",
				ChanceCategory: bucket,
				ChanceEmoji:    chanceEmoji[bucket],
				ChanceText:     chanceText[bucket],
				CollegeName:    e.CollegeName,
				Acronym:        e.Acronym,
				Branch:         e.Branch,
				CutoffRank:     e.CutoffRank,
				YourRank:       e.YourRank,
				Margin:         e.Margin,
				Probability:    e.Probability,
				Location:       e.Location,
				CollegeType:    e.CollegeType,
				Year:           e.Year,
				Category:       e.CategoryUsed,
			})
		}
	}
	appendBucket("safe", res.Results.Safe)
	appendBucket("moderate", res.Results.Moderate)
	appendBucket("ambitious", res.Results.Ambitious)
	return cards
}

func eligibilityCheckCards(result json.RawMessage) []model.Card {
	var res tools.EligibilityResult
	if err := json.Unmarshal(result, &res); err != nil {
		return nil
	}
	eligible := res.Eligible
	return []model.Card{{
		Type:         "eligibility_check",
		CollegeName:  res.CollegeName,
		ExamProvided: res.ExamProvided,
		Eligible:     &eligible,
		RequiredExam: res.RequiredExam,
		Message:      res.Message,
		Suggestion:   res.Suggestion,
	}}
}

func searchCards(result json.RawMessage) []model.Card {
	var res tools.SearchResult
	if err := json.Unmarshal(result, &res); err != nil {
		return nil
	}
	var cards []model.Card
	for _, c := range res.Colleges {
		cards = append(cards, model.Card{
			Type:        "eligibility",
			CollegeName: c.CollegeName,
			Branch:      c.Branch,
			CutoffRank:  c.CutoffRank,
			Location:    c.Location,
			Probability: c.AdmissionChance,
			Margin:      c.MarginFromCutoff,
		})
	}
	return cards
}

func detailsCards(result json.RawMessage) []model.Card {
	var res tools.DetailsResult
	if err := json.Unmarshal(result, &res); err != nil {
		return nil
	}
	fees := res.College.Fees
	return []model.Card{{
		Type:        "college",
		CollegeName: res.College.Name,
		Location:    res.College.Location,
		NIRFRank:    res.College.NIRFRank,
		Fees:        &fees,
		Branches:    res.College.Branches,
	}}
}

func comparisonCards(result json.RawMessage) []model.Card {
	var res tools.CompareResult
	if err := json.Unmarshal(result, &res); err != nil {
		return nil
	}
	var cards []model.Card
	for _, c := range res.Comparison {
		cards = append(cards, model.Card{
			Type:        "comparison",
			CollegeName: c.Name,
			Location:    c.Location,
			GeneralFee:  c.GeneralFees,
			NIRFRank:    c.NIRFRank,
		})
	}
	return cards
}

func cutoffCards(result json.RawMessage) []model.Card {
	var res tools.CutoffResult
	if err := json.Unmarshal(result, &res); err != nil {
		return nil
	}
	var cards []model.Card
	for _, c := range res.Cutoffs {
		cards = append(cards, model.Card{
			Type:        "cutoff",
			CollegeName: res.CollegeName,
			Branch:      c.Branch,
			ClosingRank: c.ClosingRank,
			Category:    c.Category,
			Year:        c.Year,
		})
	}
	return cards
}

func affordableCards(result json.RawMessage) []model.Card {
	var res tools.AffordableResult
	if err := json.Unmarshal(result, &res); err != nil {
		return nil
	}
	var cards []model.Card
	for _, c := range res.Colleges {
		cards = append(cards, model.Card{
			Type:        "fees",
			CollegeName: c.Name,
			Location:    c.Location,
			GeneralFee:  c.Fees,
			NIRFRank:    c.NIRFRank,
		})
	}
	return cards
}
