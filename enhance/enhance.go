// Package enhance backfills artwork metadata the extractor could not
// resolve, using a text-completion call against the page's body text. The
// whole package is advisory: any failure leaves the item exactly as the
// extractor produced it.
package enhance

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
	readability "github.com/go-shiori/go-readability"

	"artslides/sites"
)

const (
	// excerptLimit bounds the body text sent to the completion service.
	excerptLimit = 3000

	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 300

	readabilityTimeout = 15 * time.Second
)

const systemPrompt = `You identify artwork metadata from article text. Given an article excerpt and its title, answer with exactly four lines in this format:

Author: <creator or artist name, or Unknown>
Year: <4-digit year the work was made, or Unknown>
Medium: <medium or technique, or Unknown>
Keywords: <comma-separated subject keywords, or Unknown>

Answer with only those four lines. Use Unknown for anything the text does not establish.`

// Fields holds the metadata values the service supplied. Empty string means
// the service gave no usable value for the field.
type Fields struct {
	Author   string
	Year     string
	Medium   string
	Keywords string
}

// promptFunc issues one completion call. Swapped out by tests.
type promptFunc func(system, user string) (string, error)

// Enhancer asks a text-completion service to fill metadata gaps.
type Enhancer struct {
	model     string
	maxTokens int
	prompt    promptFunc
}

// New creates an Enhancer backed by the Anthropic API. Model and maxTokens
// fall back to defaults when zero-valued.
func New(apiKey, model string, maxTokens int) *Enhancer {
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	e := &Enhancer{model: model, maxTokens: maxTokens}
	e.prompt = func(system, user string) (string, error) {
		response, err := anthropic.PromptWithSettings(system, user, "", apiKey, types.RequestSettings{
			Model:       e.model,
			MaxTokens:   e.maxTokens,
			Temperature: 0,
		})
		if err != nil {
			return "", err
		}
		if len(response.Content) == 0 {
			return "", fmt.Errorf("no content in response")
		}
		return response.Content[0].Text, nil
	}
	return e
}

// Enhance asks the service for the metadata fields the excerpt supports.
// The excerpt is truncated before sending.
func (e *Enhancer) Enhance(excerpt, knownTitle string) (Fields, error) {
	user := fmt.Sprintf("Title: %s\n\nExcerpt:\n%s", knownTitle, Excerpt(excerpt))

	text, err := e.prompt(systemPrompt, user)
	if err != nil {
		return Fields{}, fmt.Errorf("completion call failed: %w", err)
	}

	return parseResponse(text), nil
}

// parseResponse reads the labeled response format. Each label is parsed
// independently; a value of Unknown (or a missing label) yields an empty
// field.
func parseResponse(text string) Fields {
	var fields Fields
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, sites.Unknown) {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "author":
			fields.Author = value
		case "year":
			fields.Year = value
		case "medium":
			fields.Medium = value
		case "keywords":
			fields.Keywords = value
		}
	}
	return fields
}

// Needed reports whether the item still has unresolved metadata worth an
// enhancement call.
func Needed(item *sites.Item) bool {
	return item.Author == sites.Unknown ||
		item.Year == sites.Unknown ||
		item.Medium == sites.Unknown ||
		item.Keywords == sites.Unknown
}

// Apply fills the item's unresolved fields from the service's answer.
// Fields the extractor already resolved are never overwritten. Image
// fields that fell back to the item at extraction time are re-resolved so
// slide captions pick up the backfilled values too.
func Apply(item *sites.Item, fields Fields) {
	if item.Author == sites.Unknown && fields.Author != "" {
		item.Author = fields.Author
	}
	if item.Year == sites.Unknown && fields.Year != "" {
		item.Year = fields.Year
	}
	if item.Medium == sites.Unknown && fields.Medium != "" {
		item.Medium = fields.Medium
	}
	if item.Keywords == sites.Unknown && fields.Keywords != "" {
		item.Keywords = fields.Keywords
	}

	// An image field left Unknown means its caption never provided a value;
	// it tracks the item field it fell back to.
	for i := range item.Images {
		img := &item.Images[i]
		if img.Artist == sites.Unknown {
			img.Artist = item.Author
		}
		if img.Year == sites.Unknown {
			img.Year = item.Year
		}
		if img.Medium == sites.Unknown {
			img.Medium = item.Medium
		}
	}
}

// Excerpt truncates body text to the excerpt limit, cutting on a rune
// boundary so the request never carries invalid UTF-8.
func Excerpt(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= excerptLimit {
		return text
	}
	cut := excerptLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// ReadableExcerpt re-fetches the page through a readability pass when the
// extractor produced no usable body text. Returns "" on any failure; the
// caller simply skips enhancement in that case.
func ReadableExcerpt(pageURL string) string {
	article, err := readability.FromURL(pageURL, readabilityTimeout)
	if err != nil {
		log.Printf("readability pass failed for %s: %v", pageURL, err)
		return ""
	}
	return Excerpt(article.TextContent)
}
