// package translate detects the language of incoming ticket text and
// normalizes it to English before classification. Failures never block
// intake: the input is assumed to be English and passed through.
package translate

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

type TextGenerator interface {
	Generate(ctx context.Context, cred credentials.Credential, prompt string) (string, error)
}

type Translator struct {
	exec *failover.Executor
	gen  TextGenerator
}

func New(exec *failover.Executor, gen TextGenerator) *Translator {
	return &Translator{exec: exec, gen: gen}
}

const detectPrompt = `You are a professional translator for a customer support system.

INPUT TITLE: "%s"
INPUT DESCRIPTION: "%s"

Task:
1. Detect the language of the input.
2. If it is NOT English, translate both Title and Description to English.
3. If it IS English, return the original text.

CRITICAL: Respond ONLY with a raw JSON object (no markdown).
Structure:
{
    "language": "ISO 2-letter code (e.g., en, es, fr, hi)",
    "translatedTitle": "Title in English",
    "translatedDescription": "Description in English"
}`

// DetectAndTranslate returns an English working copy of the ticket text.
// On any failure it assumes English and echoes the input.
func (t *Translator) DetectAndTranslate(ctx context.Context, title, description string) models.TranslationResult {
	var result models.TranslationResult
	err := t.exec.Execute(ctx, func(ctx context.Context, cred credentials.Credential) error {
		text, err := t.gen.Generate(ctx, cred, fmt.Sprintf(detectPrompt, title, description))
		if err != nil {
			return err
		}
		parsed, err := parseResult(text)
		if err != nil {
			return err
		}
		result = parsed
		return nil
	})
	if err != nil {
		log.Printf("[translate] detection failed, assuming English: %v", err)
		return models.TranslationResult{Language: "en", TranslatedTitle: title, TranslatedDescription: description}
	}
	if result.Language == "" {
		result.Language = "en"
	}
	if result.TranslatedTitle == "" {
		result.TranslatedTitle = title
	}
	if result.TranslatedDescription == "" {
		result.TranslatedDescription = description
	}
	return result
}

const translatePrompt = `Translate the following text to %s.

TEXT: "%s"

Respond ONLY with the translated text. Do not add quotes or explanations.`

// TranslateText translates text to the target language, falling back to
// the original text on any failure.
func (t *Translator) TranslateText(ctx context.Context, text, targetLanguage string) string {
	if text == "" {
		return ""
	}
	language := targetLanguage
	if language == "en" {
		language = "English"
	}

	var out string
	err := t.exec.Execute(ctx, func(ctx context.Context, cred credentials.Credential) error {
		result, err := t.gen.Generate(ctx, cred, fmt.Sprintf(translatePrompt, language, text))
		if err != nil {
			return err
		}
		out = strings.TrimSpace(result)
		return nil
	})
	if err != nil {
		log.Printf("[translate] translation to %s failed, keeping original: %v", targetLanguage, err)
		return text
	}
	return out
}

func parseResult(text string) (models.TranslationResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return models.TranslationResult{}, &provider.Error{Class: provider.ClassFatal, Message: "translation response contains no JSON object"}
	}
	var result models.TranslationResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return models.TranslationResult{}, &provider.Error{Class: provider.ClassFatal, Message: fmt.Sprintf("translation response not valid JSON: %v", err)}
	}
	return result, nil
}
