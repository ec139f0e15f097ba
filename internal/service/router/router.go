package router

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/titanic-chat/backend/internal/analysis/chart"
	"github.com/zhouzirui/titanic-chat/backend/internal/analysis/stats"
	"github.com/zhouzirui/titanic-chat/backend/internal/model/passenger"
)

// Intent names the kind of question a rule answers.
type Intent string

const (
	IntentMalePercentage    Intent = "male_percentage"
	IntentAgeHistogram      Intent = "age_histogram"
	IntentAverageFare       Intent = "average_fare"
	IntentEmbarkationCounts Intent = "embarkation_counts"
	IntentUnrecognized      Intent = "unrecognized"
)

// Canned responses.
const (
	FallbackText     = "I'm not sure how to answer that. Try asking about passenger demographics, fares, or embarkation ports!"
	HistogramCaption = "Here's a histogram showing the distribution of passenger ages."
	EmptyDatasetText = "There are no passenger records available to answer that question."
	RenderFailedText = "(The chart could not be rendered, so only the text answer is shown.)"
	FailureText      = "Something went wrong while computing that answer."
)

// Answer is the text and optional base64 PNG produced for one question.
type Answer struct {
	Intent Intent `json:"intent"`
	Text   string `json:"text"`
	Image  string `json:"image,omitempty"`
}

// Encoder turns a histogram into base64 PNG text.
type Encoder interface {
	Encode(hist stats.Histogram) (string, error)
}

// Rule pairs a trigger phrase with the computation that answers it.
// Phrase must be lower case.
type Rule struct {
	Intent Intent
	Phrase string
	Answer func(t *passenger.Table) (Answer, error)
}

// Matches reports whether the lower-cased question contains the rule's phrase.
func (r Rule) Matches(lowered string) bool {
	return strings.Contains(lowered, r.Phrase)
}

// DefaultRules returns the supported questions in priority order.
func DefaultRules(encoder Encoder) []Rule {
	return []Rule{
		{
			Intent: IntentMalePercentage,
			Phrase: "percentage of passengers were male",
			Answer: func(t *passenger.Table) (Answer, error) {
				pct, err := stats.MalePercentage(t)
				if err != nil {
					return Answer{}, err
				}
				return Answer{Text: stats.FormatMalePercentage(pct)}, nil
			},
		},
		{
			Intent: IntentAgeHistogram,
			Phrase: "histogram of passenger ages",
			Answer: func(t *passenger.Table) (Answer, error) {
				hist, err := stats.AgeHistogram(t)
				if err != nil {
					return Answer{}, err
				}
				img, err := encoder.Encode(hist)
				if err != nil {
					return Answer{Text: HistogramCaption}, err
				}
				return Answer{Text: HistogramCaption, Image: img}, nil
			},
		},
		{
			Intent: IntentAverageFare,
			Phrase: "average ticket fare",
			Answer: func(t *passenger.Table) (Answer, error) {
				avg, err := stats.AverageFare(t)
				if err != nil {
					return Answer{}, err
				}
				return Answer{Text: stats.FormatAverageFare(avg)}, nil
			},
		},
		{
			Intent: IntentEmbarkationCounts,
			Phrase: "embarked from each port",
			Answer: func(t *passenger.Table) (Answer, error) {
				counts, err := stats.EmbarkationCounts(t)
				if err != nil {
					return Answer{}, err
				}
				return Answer{Text: stats.FormatEmbarkationCounts(counts)}, nil
			},
		},
	}
}

// Router dispatches questions to the first matching rule.
type Router struct {
	table  *passenger.Table
	rules  []Rule
	logger *zap.Logger
}

// New builds a Router over table using DefaultRules.
func New(table *passenger.Table, encoder Encoder, logger *zap.Logger) *Router {
	return NewWithRules(table, DefaultRules(encoder), logger)
}

// NewWithRules builds a Router with a caller-supplied ordered rule list.
func NewWithRules(table *passenger.Table, rules []Rule, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		table:  table,
		rules:  append([]Rule(nil), rules...),
		logger: logger,
	}
}

// Rules returns the rule list in priority order.
func (r *Router) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Match returns the first rule whose phrase occurs in question, ignoring case.
func (r *Router) Match(question string) (Rule, bool) {
	lowered := strings.ToLower(question)
	for _, rule := range r.rules {
		if rule.Matches(lowered) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Route answers question. It never fails: computation errors become a
// textual answer without an image.
func (r *Router) Route(question string) Answer {
	rule, ok := r.Match(question)
	if !ok {
		r.logger.Debug("question not recognized", zap.String("question", question))
		return Answer{Intent: IntentUnrecognized, Text: FallbackText}
	}

	ans, err := rule.Answer(r.table)
	ans.Intent = rule.Intent
	if err == nil {
		r.logger.Debug("question answered", zap.String("intent", string(rule.Intent)), zap.Bool("image", ans.Image != ""))
		return ans
	}

	r.logger.Warn("question answer degraded", zap.String("intent", string(rule.Intent)), zap.Error(err))
	switch {
	case errors.Is(err, chart.ErrRender):
		return Answer{Intent: rule.Intent, Text: strings.TrimSpace(ans.Text + " " + RenderFailedText)}
	case errors.Is(err, stats.ErrEmptyDataset):
		return Answer{Intent: rule.Intent, Text: EmptyDatasetText}
	default:
		return Answer{Intent: rule.Intent, Text: FailureText}
	}
}
