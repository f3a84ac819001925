package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCatalogue(t *testing.T) {
	reg := NewRegistry(NewDataset())

	names := make([]string, 0)
	for _, d := range reg.Catalogue() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"predict_admission",
		"check_college_eligibility",
		"compare_colleges",
		"get_college_details",
		"search_colleges_by_rank",
		"get_affordable_colleges",
		"get_cutoff_data",
	}, names)
}

func TestRegistryUnknownToolReturnsErrorSentinel(t *testing.T) {
	reg := NewRegistry(NewDataset())

	out, err := reg.Execute(context.Background(), "book_flight", nil)
	require.NoError(t, err)

	var sentinel ErrorResult
	require.NoError(t, json.Unmarshal(out, &sentinel))
	assert.True(t, sentinel.Error)
	assert.Contains(t, sentinel.Message, "book_flight")
}

func TestRegistryExecutorFailureReturnsErrorSentinel(t *testing.T) {
	reg := NewRegistry(NewDataset())

	out, err := reg.Execute(context.Background(), "get_college_details",
		json.RawMessage(`{"collegeName":"Hogwarts"}`))
	require.NoError(t, err)

	var sentinel ErrorResult
	require.NoError(t, json.Unmarshal(out, &sentinel))
	assert.True(t, sentinel.Error)
}

func TestRegistryExecuteCancelled(t *testing.T) {
	reg := NewRegistry(NewDataset())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reg.Execute(ctx, "get_college_details", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictionToolsSet(t *testing.T) {
	assert.True(t, PredictionTools["predict_admission"])
	assert.True(t, PredictionTools["search_colleges_by_rank"])
	assert.False(t, PredictionTools["get_college_details"])
}
