package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"fleetguard-backend/config"
	"fleetguard-backend/internal/severity"
)

// Gemini is the damage-classification and dispute-summarization
// collaborator backed by the Google GenAI API. It satisfies both
// severity.DamageClassifier and severity.DisputeSummarizer.
type Gemini struct {
	client       *genai.Client
	model        string
	timeout      time.Duration
	retryCeiling time.Duration
}

// NewGemini creates a new Gemini collaborator.
func NewGemini(ctx context.Context, cfg *config.AIConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{
		client:       client,
		model:        cfg.Model,
		timeout:      cfg.Timeout,
		retryCeiling: cfg.RetryCeiling,
	}, nil
}

const classifyPromptHeader = `You are an expert, strict fleet mechanic for an emergency fleet operator.
Your job is to assess vehicle damage severity from the submitted report.

Severity levels:
- "red": Critical safety issue (major body damage, broken windshield, deformed frame, engine problems, missing life-saving equipment). Vehicle must be pulled out of service immediately.
- "yellow": Minor issue (small dents, cosmetic damage, missing non-critical supply). Needs attention but can finish the shift.
- "green": Normal wear and tear, or genuinely no damage visible.

You MUST respond with valid JSON strictly following this schema:
{"severity": "red" | "yellow" | "green", "notes": "A specific 1-2 sentence description of what you see and why you chose this severity."}`

func classifyPrompt(notes string, hasPhoto bool) string {
	var b strings.Builder
	b.WriteString(classifyPromptHeader)
	b.WriteString("\n\n")
	if strings.TrimSpace(notes) != "" {
		fmt.Fprintf(&b, "Text report from the crew: %q\n", notes)
	} else {
		b.WriteString("No text notes provided.\n")
	}
	if hasPhoto {
		b.WriteString("An image has been provided. Carefully examine it for any visible damage, dents, broken glass, debris, deformation, or safety hazards.\n")
		if strings.TrimSpace(notes) == "" {
			b.WriteString("Base your assessment entirely on the image.\n")
		}
	}
	return b.String()
}

// Classify scores the submitted damage evidence. Rate-limit responses are
// retried once after the collaborator's suggested delay; any other failure
// is returned so the caller can apply its fallback.
func (g *Gemini) Classify(ctx context.Context, notes string, photo *severity.Photo) (severity.Level, string, error) {
	var parts []*genai.Part
	if photo != nil {
		parts = append(parts, genai.NewPartFromBytes(photo.Data, photo.MIME))
	}
	parts = append(parts, genai.NewPartFromText(classifyPrompt(notes, photo != nil)))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	raw, err := g.generate(ctx, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", "", err
	}
	return parseClassification(raw)
}

// Summarize condenses dispute notes into one short sentence.
func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	prompt := "Summarize the following handoff dispute from an incoming vehicle crew " +
		"in one short, factual sentence for a dispatcher. Respond with the sentence only.\n\n" + text
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	raw, err := g.generate(ctx, contents, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// generate performs one model call with a single retry on rate limiting.
func (g *Gemini) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	resp, err := g.client.Models.GenerateContent(callCtx, g.model, contents, cfg)
	cancel()
	if err == nil {
		return resp.Text(), nil
	}

	delay, ok := rateLimitDelay(err, g.retryCeiling)
	if !ok {
		return "", err
	}

	log.Printf("ai: rate limited, retrying once in %s", delay)
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	callCtx, cancel = context.WithTimeout(ctx, g.timeout)
	defer cancel()
	resp, err = g.client.Models.GenerateContent(callCtx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

type classification struct {
	Severity string `json:"severity"`
	Notes    string `json:"notes"`
}

// parseClassification decodes the model's JSON verdict. An out-of-range
// severity is coerced to yellow rather than trusted.
func parseClassification(raw string) (severity.Level, string, error) {
	var out classification
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", "", fmt.Errorf("malformed classifier response: %w", err)
	}
	level := severity.Level(out.Severity)
	if !level.Valid() {
		level = severity.Yellow
	}
	return level, strings.TrimSpace(out.Notes), nil
}

var retryDelayRe = regexp.MustCompile(`"retryDelay"\s*:\s*"(\d+)s"`)

// rateLimitDelay reports whether err is a rate-limit signal and, if so, the
// wait before the single retry: the collaborator's suggested delay capped
// at ceiling, defaulting to 30s when no delay is suggested.
func rateLimitDelay(err error, ceiling time.Duration) (time.Duration, bool) {
	apiErr, ok := errAsAPIError(err)
	if !ok || apiErr.Code != http.StatusTooManyRequests {
		return 0, false
	}

	delay := 30 * time.Second
	if m := retryDelayRe.FindStringSubmatch(apiErr.Message); m != nil {
		if secs, err := strconv.Atoi(m[1]); err == nil {
			delay = time.Duration(secs) * time.Second
		}
	}
	if delay > ceiling {
		delay = ceiling
	}
	return delay, true
}
