// package classifier turns free ticket text into a ClassificationResult
// using the generative-text provider, with a deterministic local fallback
// so ticket intake keeps working when the provider does not.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/resolvedesk/resolvedesk/internal/credentials"
	"github.com/resolvedesk/resolvedesk/internal/failover"
	"github.com/resolvedesk/resolvedesk/internal/models"
	"github.com/resolvedesk/resolvedesk/internal/provider"
)

// TextGenerator is the provider surface the classifier needs. Satisfied
// by *provider.Client.
type TextGenerator interface {
	Generate(ctx context.Context, cred credentials.Credential, prompt string) (string, error)
}

type Classifier struct {
	exec *failover.Executor
	gen  TextGenerator
}

func New(exec *failover.Executor, gen TextGenerator) *Classifier {
	return &Classifier{exec: exec, gen: gen}
}

const (
	defaultSummary = "Unable to generate summary"
	defaultReply   = "Thank you for reaching out. Our team will review your request and get back to you shortly."
)

const analyzePrompt = `You are an AI assistant for a customer support ticketing system. Analyze the following support ticket and provide a structured response.

TICKET TITLE: %s

TICKET DESCRIPTION: %s

Analyze this ticket and respond with ONLY a valid JSON object (no markdown, no code blocks) with the following structure:
{
    "category": "<one of: Bug, Payment Issue, Account Issue, Feature Request, General Query>",
    "priority": "<one of: Low, Medium, High>",
    "sentiment": "<one of: Angry, Frustrated, Neutral, Calm, Happy>",
    "summary": "<brief 1-2 sentence summary of the issue>",
    "suggestedReply": "<professional and empathetic response to the customer, 2-3 sentences>"
}

PRIORITY GUIDELINES:
- High: Payment failures, account lockouts, data loss, service outages
- Medium: Feature not working, slow performance, account issues
- Low: General questions, feature requests, minor issues

RESPONSE TONE:
- Be empathetic and professional
- Acknowledge the customer's concern
- Provide helpful next steps if possible`

type rawClassification struct {
	Category       string `json:"category"`
	Priority       string `json:"priority"`
	Sentiment      string `json:"sentiment"`
	Summary        string `json:"summary"`
	SuggestedReply string `json:"suggestedReply"`
}

// Classify analyzes a ticket and always returns a fully valid result.
// Provider failures of any kind fall back to the local keyword heuristic;
// the caller never sees an error.
func (c *Classifier) Classify(ctx context.Context, title, description string) models.ClassificationResult {
	var raw rawClassification
	err := c.exec.Execute(ctx, func(ctx context.Context, cred credentials.Credential) error {
		text, err := c.gen.Generate(ctx, cred, fmt.Sprintf(analyzePrompt, title, description))
		if err != nil {
			return err
		}
		parsed, err := parseJSONObject(text)
		if err != nil {
			return err
		}
		raw = parsed
		return nil
	})
	if err != nil {
		log.Printf("[classifier] analysis failed, using heuristic fallback: %v", err)
		return FallbackAnalysis(title, description)
	}

	result := models.ClassificationResult{
		Category:       validCategory(raw.Category),
		Priority:       validPriority(raw.Priority),
		Sentiment:      validSentiment(raw.Sentiment),
		Summary:        raw.Summary,
		SuggestedReply: raw.SuggestedReply,
	}
	if result.Summary == "" {
		result.Summary = defaultSummary
	}
	if result.SuggestedReply == "" {
		result.SuggestedReply = defaultReply
	}
	return result
}

const predictPrompt = `Analyze this support ticket title: "%s".
Predict the most likely PRIORITY (Low, Medium, High) and CATEGORY (Bug, Payment Issue, Account Issue, Feature Request, General Query).

CRITICAL: Respond ONLY with a raw JSON object. No markdown blocks, no prefix/suffix.
Example: {"priority": "High", "category": "Payment Issue"}`

// PredictFromTitle gives a fast priority/category estimate for
// interactive use while the user is still composing the ticket.
func (c *Classifier) PredictFromTitle(ctx context.Context, title string) models.TitlePrediction {
	var raw rawClassification
	err := c.exec.Execute(ctx, func(ctx context.Context, cred credentials.Credential) error {
		text, err := c.gen.Generate(ctx, cred, fmt.Sprintf(predictPrompt, title))
		if err != nil {
			return err
		}
		parsed, err := parseJSONObject(text)
		if err != nil {
			return err
		}
		raw = parsed
		return nil
	})
	if err != nil {
		log.Printf("[classifier] title prediction failed: %v", err)
		return models.TitlePrediction{Priority: models.PriorityMedium, Category: models.CategoryGeneralQuery}
	}
	return models.TitlePrediction{
		Priority: validPriority(raw.Priority),
		Category: validCategory(raw.Category),
	}
}

const describePrompt = `Act as a customer writing a support ticket.
The subject is: "%s".
Generate a professional and detailed description (at least 4 sentences) explaining the issue, what happened, why it's a problem, and what you've already tried.
Respond with ONLY the description text. Do not include a subject or sign-off.`

// GenerateDescription drafts a ticket description from a title.
func (c *Classifier) GenerateDescription(ctx context.Context, title string) string {
	var text string
	err := c.exec.Execute(ctx, func(ctx context.Context, cred credentials.Credential) error {
		out, err := c.gen.Generate(ctx, cred, fmt.Sprintf(describePrompt, title))
		if err != nil {
			return err
		}
		text = strings.TrimSpace(out)
		return nil
	})
	if err != nil {
		log.Printf("[classifier] description generation failed: %v", err)
		return "Failed to generate description. Please try again or type manually."
	}
	return text
}

const suggestReplyPrompt = `You are a professional customer support agent. Generate a helpful reply for this ticket.

TICKET TITLE: %s
TICKET DESCRIPTION: %s
CURRENT STATUS: %s
CATEGORY: %s
%s
Write a professional, empathetic reply (2-4 sentences) that:
- Acknowledges the customer's concern
- Provides a helpful update or solution
- Maintains a positive tone

Respond with only the reply text, no formatting.`

// SuggestReply drafts an agent reply for an existing ticket.
func (c *Classifier) SuggestReply(ctx context.Context, ticket models.Ticket, extra string) string {
	category := ticket.AICategory
	if category == "" {
		category = ticket.Category
	}
	contextLine := ""
	if extra != "" {
		contextLine = fmt.Sprintf("ADDITIONAL CONTEXT: %s\n", extra)
	}

	var text string
	err := c.exec.Execute(ctx, func(ctx context.Context, cred credentials.Credential) error {
		out, err := c.gen.Generate(ctx, cred, fmt.Sprintf(suggestReplyPrompt,
			ticket.Title, ticket.Description, ticket.Status, category, contextLine))
		if err != nil {
			return err
		}
		text = strings.TrimSpace(out)
		return nil
	})
	if err != nil {
		log.Printf("[classifier] reply suggestion failed: %v", err)
		return "Thank you for your patience. Our team is actively working on your request and will provide an update soon."
	}
	return text
}

// parseJSONObject extracts the first {...} span from raw provider text
// and decodes it. A missing or undecodable span is a structural defect of
// the response, so it surfaces as a fatal provider error and is never
// retried against another credential.
func parseJSONObject(text string) (rawClassification, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return rawClassification{}, &provider.Error{Class: provider.ClassFatal, Message: "response contains no JSON object"}
	}
	var raw rawClassification
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return rawClassification{}, &provider.Error{Class: provider.ClassFatal, Message: fmt.Sprintf("response not valid JSON: %v", err)}
	}
	return raw, nil
}

func validCategory(v string) models.Category {
	if c := models.Category(v); models.ValidCategory(c) {
		return c
	}
	return models.CategoryGeneralQuery
}

func validPriority(v string) models.Priority {
	if p := models.Priority(v); models.ValidPriority(p) {
		return p
	}
	return models.PriorityMedium
}

func validSentiment(v string) models.Sentiment {
	if s := models.Sentiment(v); models.ValidSentiment(s) {
		return s
	}
	return models.SentimentNeutral
}
