package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeJSON[T any](t *testing.T, reg *Registry, name, args string) T {
	t.Helper()
	out, err := reg.Execute(context.Background(), name, json.RawMessage(args))
	require.NoError(t, err)

	var sentinel ErrorResult
	require.NoError(t, json.Unmarshal(out, &sentinel))
	require.False(t, sentinel.Error, "unexpected tool error: %s", sentinel.Message)

	var result T
	require.NoError(t, json.Unmarshal(out, &result))
	return result
}

func TestPredictAdmissionStateExam(t *testing.T) {
	reg := NewRegistry(NewDataset())

	res := executeJSON[PredictResult](t, reg, "predict_admission",
		`{"exam":"TS EAMCET","rank":5000,"category":"OBC","homeState":"Telangana","targetCity":"Hyderabad"}`)

	assert.Equal(t, "TS EAMCET", res.InputSummary.Exam)
	assert.Equal(t, 5000, res.InputSummary.Rank)
	assert.Equal(t, "OBC", res.InputSummary.Category)
	assert.Greater(t, res.TotalFound, 0)

	all := append(append(res.Results.Safe, res.Results.Moderate...), res.Results.Ambitious...)
	require.NotEmpty(t, all)
	for _, entry := range all {
		assert.Contains(t, entry.Location, "Hyderabad")
		assert.NotContains(t, entry.CollegeName, "Indian Institute of Technology",
			"a state exam must never surface IITs")
		assert.NotContains(t, entry.CollegeName, "National Institute of Technology")
		assert.Equal(t, 5000, entry.YourRank)
		assert.Equal(t, entry.CutoffRank-entry.YourRank, entry.Margin)
	}
}

func TestPredictAdmissionUnknownExamFails(t *testing.T) {
	reg := NewRegistry(NewDataset())

	out, err := reg.Execute(context.Background(), "predict_admission",
		json.RawMessage(`{"exam":"SAT","rank":1200}`))
	require.NoError(t, err)

	var sentinel ErrorResult
	require.NoError(t, json.Unmarshal(out, &sentinel))
	assert.True(t, sentinel.Error)
	assert.Contains(t, sentinel.Message, "SAT")
}

func TestPredictAdmissionQuotedRank(t *testing.T) {
	reg := NewRegistry(NewDataset())

	res := executeJSON[PredictResult](t, reg, "predict_admission",
		`{"exam":"JEE Main","rank":"15,000","category":"General"}`)
	assert.Equal(t, 15000, res.InputSummary.Rank)
}

func TestPredictAdmissionBucketOrdering(t *testing.T) {
	reg := NewRegistry(NewDataset())

	res := executeJSON[PredictResult](t, reg, "predict_admission",
		`{"exam":"JEE Main","rank":20000,"category":"General"}`)

	for _, e := range res.Results.Safe {
		assert.Equal(t, 90, e.Probability)
		assert.Greater(t, e.Margin, 0)
	}
	for _, e := range res.Results.Moderate {
		assert.Equal(t, 65, e.Probability)
		assert.GreaterOrEqual(t, e.Margin, 0)
	}
	for _, e := range res.Results.Ambitious {
		assert.Equal(t, 35, e.Probability)
		assert.Less(t, e.Margin, 0)
	}
	assert.LessOrEqual(t, len(res.Results.Safe), bucketLimit)
	assert.LessOrEqual(t, len(res.Results.Moderate), bucketLimit)
	assert.LessOrEqual(t, len(res.Results.Ambitious), bucketLimit)
}

func TestCheckEligibilityMismatch(t *testing.T) {
	reg := NewRegistry(NewDataset())

	res := executeJSON[EligibilityResult](t, reg, "check_college_eligibility",
		`{"collegeName":"IIT-BOM","exam":"TS EAMCET"}`)

	assert.False(t, res.Eligible)
	assert.Equal(t, "JEE Advanced", res.RequiredExam)
	assert.NotEmpty(t, res.Message)
	assert.NotEmpty(t, res.Suggestion)
}

func TestCheckEligibilityMatch(t *testing.T) {
	reg := NewRegistry(NewDataset())

	res := executeJSON[EligibilityResult](t, reg, "check_college_eligibility",
		`{"collegeName":"National Institute of Technology Warangal","exam":"JEE Main"}`)

	assert.True(t, res.Eligible)
}

func TestCompareColleges(t *testing.T) {
	reg := NewRegistry(NewDataset())

	res := executeJSON[CompareResult](t, reg, "compare_colleges",
		`{"collegeNames":["IIT-BOM","NIT-WAR","Hogwarts"]}`)

	require.Len(t, res.Comparison, 2)
	assert.Equal(t, []string{"Hogwarts"}, res.NotFound)
	assert.NotZero(t, res.Comparison[0].GeneralFees)
}

func TestGetCollegeDetails(t *testing.T) {
	reg := NewRegistry(NewDataset())

	res := executeJSON[DetailsResult](t, reg, "get_college_details",
		`{"collegeName":"Thapar"}`)

	assert.Equal(t, "Thapar Institute of Engineering and Technology", res.College.Name)
	assert.NotEmpty(t, res.College.Branches)
	assert.NotZero(t, res.College.Fees.General)
}

func TestSearchCollegesByRank(t *testing.T) {
	reg := NewRegistry(NewDataset())

	res := executeJSON[SearchResult](t, reg, "search_colleges_by_rank",
		`{"exam":"JEE Main","rank":9000,"category":"General","limit":5}`)

	require.NotEmpty(t, res.Colleges)
	assert.LessOrEqual(t, len(res.Colleges), 5)
	for _, c := range res.Colleges {
		assert.GreaterOrEqual(t, c.CutoffRank, 9000)
		assert.Equal(t, c.CutoffRank-9000, c.MarginFromCutoff)
	}
}

func TestGetAffordableColleges(t *testing.T) {
	reg := NewRegistry(NewDataset())

	res := executeJSON[AffordableResult](t, reg, "get_affordable_colleges",
		`{"maxBudget":200000}`)

	require.NotEmpty(t, res.Colleges)
	for _, c := range res.Colleges {
		assert.LessOrEqual(t, c.Fees, 200000)
	}
}

func TestGetCutoffData(t *testing.T) {
	reg := NewRegistry(NewDataset())

	res := executeJSON[CutoffResult](t, reg, "get_cutoff_data",
		`{"collegeName":"NIT-WAR","category":"OBC"}`)

	assert.Equal(t, "National Institute of Technology Warangal", res.CollegeName)
	require.NotEmpty(t, res.Cutoffs)
	for _, c := range res.Cutoffs {
		assert.Equal(t, "OBC", c.Category)
		assert.Equal(t, CutoffYear, c.Year)
		assert.Positive(t, c.ClosingRank)
	}
}

func TestClosingRankDeterministicOrdering(t *testing.T) {
	data := NewDataset()
	nit, ok := data.Find("NIT-WAR")
	require.True(t, ok)

	cse := ClosingRank(nit, "CSE", "General")
	mech := ClosingRank(nit, "MECH", "General")
	cseOBC := ClosingRank(nit, "CSE", "OBC")

	assert.Less(t, cse, mech, "CSE must close earlier than MECH")
	assert.Less(t, cse, cseOBC, "reserved categories close later")
	assert.Equal(t, cse, ClosingRank(nit, "CSE", "General"))
}
