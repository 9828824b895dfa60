package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resolvedesk/resolvedesk/internal/models"
)

func TestFallbackAnalysis(t *testing.T) {
	cases := []struct {
		name      string
		title     string
		desc      string
		category  models.Category
		priority  models.Priority
		sentiment models.Sentiment
	}{
		{
			name: "bug keywords", title: "App error", desc: "it crashes on startup",
			category: models.CategoryBug, priority: models.PriorityMedium, sentiment: models.SentimentNeutral,
		},
		{
			name: "payment is high priority", title: "Double charge", desc: "charged twice for one order",
			category: models.CategoryPaymentIssue, priority: models.PriorityHigh, sentiment: models.SentimentNeutral,
		},
		{
			name: "account keywords", title: "Login broken", desc: "password reset never arrives",
			category: models.CategoryAccountIssue, priority: models.PriorityMedium, sentiment: models.SentimentNeutral,
		},
		{
			name: "feature request is low priority", title: "Suggestion", desc: "could you add dark mode",
			category: models.CategoryFeatureRequest, priority: models.PriorityLow, sentiment: models.SentimentNeutral,
		},
		{
			name: "angry overrides priority", title: "Refund", desc: "this is unacceptable, fix it immediately",
			category: models.CategoryPaymentIssue, priority: models.PriorityHigh, sentiment: models.SentimentAngry,
		},
		{
			name: "polite text reads calm", title: "Question", desc: "please tell me about your pricing, thank you",
			category: models.CategoryGeneralQuery, priority: models.PriorityMedium, sentiment: models.SentimentCalm,
		},
		{
			name: "no keywords", title: "Hello", desc: "just checking in",
			category: models.CategoryGeneralQuery, priority: models.PriorityMedium, sentiment: models.SentimentNeutral,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := FallbackAnalysis(tc.title, tc.desc)
			assert.Equal(t, tc.category, result.Category)
			assert.Equal(t, tc.priority, result.Priority)
			assert.Equal(t, tc.sentiment, result.Sentiment)
			assert.NotEmpty(t, result.Summary)
			assert.NotEmpty(t, result.SuggestedReply)
		})
	}
}

func TestFallbackAnalysisTruncatesLongTitles(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	result := FallbackAnalysis(string(long), "")
	assert.LessOrEqual(t, len(result.Summary), len("General Query ticket: ")+100)
}

func TestFallbackAnalysisAlwaysValid(t *testing.T) {
	result := FallbackAnalysis("", "")
	assert.True(t, models.ValidCategory(result.Category))
	assert.True(t, models.ValidPriority(result.Priority))
	assert.True(t, models.ValidSentiment(result.Sentiment))
}
