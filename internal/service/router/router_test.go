package router_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/titanic-chat/backend/internal/analysis/chart"
	"github.com/zhouzirui/titanic-chat/backend/internal/analysis/stats"
	"github.com/zhouzirui/titanic-chat/backend/internal/model/passenger"
	"github.com/zhouzirui/titanic-chat/backend/internal/service/router"
)

type stubEncoder struct {
	calls int
	err   error
}

func (s *stubEncoder) Encode(stats.Histogram) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "aW1n", nil
}

func ptr(v float64) *float64 { return &v }

func sampleTable() *passenger.Table {
	return passenger.NewTable([]passenger.Passenger{
		{ID: 1, Sex: "male", Age: ptr(22), Fare: ptr(7.25), Embarked: "S"},
		{ID: 2, Sex: "female", Age: ptr(38), Fare: ptr(71.28), Embarked: "C"},
		{ID: 3, Sex: "male", Embarked: "S"},
	})
}

func TestRulesPriorityOrder(t *testing.T) {
	r := router.New(sampleTable(), &stubEncoder{}, nil)

	var phrases []string
	for _, rule := range r.Rules() {
		phrases = append(phrases, rule.Phrase)
	}
	assert.Equal(t, []string{
		"percentage of passengers were male",
		"histogram of passenger ages",
		"average ticket fare",
		"embarked from each port",
	}, phrases)
}

func TestRouteMalePercentage(t *testing.T) {
	r := router.New(sampleTable(), &stubEncoder{}, nil)
	ans := r.Route("What percentage of passengers were male on the Titanic?")
	assert.Equal(t, router.IntentMalePercentage, ans.Intent)
	assert.Equal(t, "Approximately 66.7% of passengers were male.", ans.Text)
	assert.Empty(t, ans.Image)
}

func TestRouteFirstMatchWins(t *testing.T) {
	r := router.New(sampleTable(), &stubEncoder{}, nil)
	ans := r.Route("What percentage of passengers were male and average ticket fare?")
	assert.Equal(t, router.IntentMalePercentage, ans.Intent)
}

func TestRouteCaseInsensitive(t *testing.T) {
	enc := &stubEncoder{}
	r := router.New(sampleTable(), enc, nil)

	upper := r.Route("HISTOGRAM OF PASSENGER AGES")
	lower := r.Route("histogram of passenger ages")
	assert.Equal(t, lower, upper)
	assert.Equal(t, router.IntentAgeHistogram, upper.Intent)
	assert.Equal(t, router.HistogramCaption, upper.Text)
	assert.Equal(t, "aW1n", upper.Image)
	assert.Equal(t, 2, enc.calls)
}

func TestRouteAverageFare(t *testing.T) {
	r := router.New(sampleTable(), &stubEncoder{}, nil)
	ans := r.Route("What was the average ticket fare?")
	assert.Equal(t, router.IntentAverageFare, ans.Intent)
	assert.Equal(t, "The average ticket fare was £39.27.", ans.Text)
}

func TestRouteEmbarkation(t *testing.T) {
	r := router.New(sampleTable(), &stubEncoder{}, nil)
	ans := r.Route("How many passengers embarked from each port?")
	assert.Equal(t, router.IntentEmbarkationCounts, ans.Intent)
	assert.Equal(t, "Passengers embarked from these ports:\n- S: 2 passengers\n- C: 1 passengers\n", ans.Text)
}

func TestRouteFallback(t *testing.T) {
	enc := &stubEncoder{}
	r := router.New(sampleTable(), enc, nil)
	ans := r.Route("What is your favorite color?")
	assert.Equal(t, router.IntentUnrecognized, ans.Intent)
	assert.Equal(t, router.FallbackText, ans.Text)
	assert.Empty(t, ans.Image)
	assert.Zero(t, enc.calls)
}

func TestRouteEmptyTable(t *testing.T) {
	r := router.New(passenger.NewTable(nil), &stubEncoder{}, nil)
	for _, q := range []string{
		"percentage of passengers were male",
		"histogram of passenger ages",
		"average ticket fare",
		"embarked from each port",
	} {
		ans := r.Route(q)
		assert.Equal(t, router.EmptyDatasetText, ans.Text, q)
		assert.Empty(t, ans.Image, q)
	}
}

func TestRouteRenderFailureKeepsText(t *testing.T) {
	enc := &stubEncoder{err: fmt.Errorf("%w: boom", chart.ErrRender)}
	r := router.New(sampleTable(), enc, nil)

	ans := r.Route("Show me a histogram of passenger ages")
	assert.Equal(t, router.IntentAgeHistogram, ans.Intent)
	assert.Contains(t, ans.Text, router.HistogramCaption)
	assert.Contains(t, ans.Text, router.RenderFailedText)
	assert.Empty(t, ans.Image)
}

func TestRouteUnexpectedError(t *testing.T) {
	rules := []router.Rule{{
		Intent: "broken",
		Phrase: "broken",
		Answer: func(*passenger.Table) (router.Answer, error) {
			return router.Answer{}, errors.New("kaput")
		},
	}}
	r := router.NewWithRules(sampleTable(), rules, nil)
	ans := r.Route("Broken question")
	assert.Equal(t, router.Intent("broken"), ans.Intent)
	assert.Equal(t, router.FailureText, ans.Text)
}

func TestRouteWithRealRenderer(t *testing.T) {
	r := router.New(sampleTable(), chart.NewRenderer(320, 240), nil)
	ans := r.Route("Show me a histogram of passenger ages")
	require.Equal(t, router.IntentAgeHistogram, ans.Intent)
	assert.NotEmpty(t, ans.Image)
}
