package classifier

import (
	"fmt"
	"strings"

	"github.com/resolvedesk/resolvedesk/internal/models"
)

const fallbackReply = "Thank you for contacting our support team. We have received your request and will respond shortly. If this is urgent, please let us know."

// FallbackAnalysis is the deterministic keyword heuristic used when the
// provider is fully unavailable. It always yields a valid result, so
// ticket creation never fails on provider outage.
func FallbackAnalysis(title, description string) models.ClassificationResult {
	text := strings.ToLower(title + " " + description)

	category := models.CategoryGeneralQuery
	priority := models.PriorityMedium
	sentiment := models.SentimentNeutral

	switch {
	case containsAny(text, "bug", "error", "crash", "not working"):
		category = models.CategoryBug
	case containsAny(text, "payment", "billing", "charge", "refund"):
		category = models.CategoryPaymentIssue
		priority = models.PriorityHigh
	case containsAny(text, "account", "login", "password", "access"):
		category = models.CategoryAccountIssue
	case containsAny(text, "feature", "suggest", "would like", "could you add"):
		category = models.CategoryFeatureRequest
		priority = models.PriorityLow
	}

	if containsAny(text, "urgent", "immediately", "angry", "frustrated", "unacceptable") {
		sentiment = models.SentimentAngry
		priority = models.PriorityHigh
	} else if containsAny(text, "please", "thank", "appreciate") {
		sentiment = models.SentimentCalm
	}

	return models.ClassificationResult{
		Category:       category,
		Priority:       priority,
		Sentiment:      sentiment,
		Summary:        fmt.Sprintf("%s ticket: %s", category, truncate(title, 100)),
		SuggestedReply: fallbackReply,
	}
}

func containsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
