// Package insight generates a weekly habit analysis through the Anthropic
// Messages API.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jmorrow/cognitrack/internal/constants"
	"github.com/jmorrow/cognitrack/internal/models"
)

const defaultModel = "claude-sonnet-4-5"

// Response is the structured analysis returned by the model.
type Response struct {
	Summary  string   `json:"summary"`
	Patterns []string `json:"patterns"`
	Tips     []string `json:"tips"`
}

// Analyzer builds prompts from habit data and parses model output.
type Analyzer struct {
	client anthropic.Client
	model  anthropic.Model
	now    func() time.Time
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(a *Analyzer) { a.model = anthropic.Model(model) }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New returns an Analyzer authenticated with apiKey.
func New(apiKey string, opts ...Option) *Analyzer {
	a := &Analyzer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(defaultModel),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze sends the last week of completion data to the model and returns
// its structured analysis. Transport and parse failures both surface as a
// single descriptive error.
func (a *Analyzer) Analyze(ctx context.Context, habits []models.Habit, completions []models.HabitCompletion) (*Response, error) {
	prompt := buildPrompt(habits, completions, a.now())

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate insights: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		text.WriteString(block.Text)
	}

	return parseResponse(text.String())
}

type promptHabit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type promptCompletion struct {
	HabitName string `json:"habitName"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type promptData struct {
	Habits      []promptHabit      `json:"habits"`
	Completions []promptCompletion `json:"completions"`
}

// buildPayload narrows the data sent to the model to the trailing
// seven-day window and swaps habit ids for names.
func buildPayload(habits []models.Habit, completions []models.HabitCompletion, today time.Time) promptData {
	names := make(map[string]string, len(habits))
	data := promptData{
		Habits:      make([]promptHabit, 0, len(habits)),
		Completions: []promptCompletion{},
	}
	for _, h := range habits {
		names[h.ID] = h.Name
		data.Habits = append(data.Habits, promptHabit{ID: h.ID, Name: h.Name})
	}

	cutoff := today.AddDate(0, 0, -(constants.WeeklyWindowDays - 1)).Format(constants.DateFormat)
	last := today.Format(constants.DateFormat)
	for _, c := range completions {
		if c.Date < cutoff || c.Date > last {
			continue
		}
		name, ok := names[c.HabitID]
		if !ok {
			name = "Unknown"
		}
		data.Completions = append(data.Completions, promptCompletion{
			HabitName: name,
			Date:      c.Date,
			Completed: c.Completed,
		})
	}
	return data
}

func buildPrompt(habits []models.Habit, completions []models.HabitCompletion, today time.Time) string {
	// promptData is plain structs and strings, so marshaling cannot fail.
	payload, _ := json.MarshalIndent(buildPayload(habits, completions, today), "", "  ")

	return fmt.Sprintf(`You are an expert productivity coach and data analyst.
Analyze the user's habit completion data for the last 7 days and provide insights.

Here is the habit data in JSON format:
%s

Respond ONLY with a valid JSON object (no markdown, no code fences) matching this exact structure:
{
  "summary": "A brief, encouraging 2-sentence summary of their week.",
  "patterns": ["Pattern 1", "Pattern 2"],
  "tips": ["Actionable tip 1", "Actionable tip 2"]
}

Limit patterns and tips to 2 items each. Be concise, actionable, and observant of trends.`, payload)
}

var fenceRe = regexp.MustCompile("(?i)```(?:json)?")

// parseResponse decodes the model output, tolerating markdown code fences
// that slip in despite the prompt.
func parseResponse(text string) (*Response, error) {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))

	var resp Response
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	if resp.Summary == "" {
		return nil, fmt.Errorf("failed to parse model response: missing summary")
	}
	return &resp, nil
}
