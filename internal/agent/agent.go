// Package agent orchestrates one conversational turn: persist, classify,
// extract, retrieve, generate.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rcliao/habit-agent/internal/extract"
	"github.com/rcliao/habit-agent/internal/intent"
	"github.com/rcliao/habit-agent/internal/llm"
	"github.com/rcliao/habit-agent/internal/model"
	"github.com/rcliao/habit-agent/internal/store"
	"github.com/rcliao/habit-agent/internal/trend"
)

const apology = "Sorry, I had trouble generating a reply just now. Your message is saved; please try again."

// Store is the slice of the storage layer the orchestrator needs.
type Store interface {
	AppendMessage(ctx context.Context, p store.AppendMessageParams) (*model.Message, error)
	AppendObservation(ctx context.Context, p store.AppendObservationParams) (*model.Observation, error)
	ListObservations(ctx context.Context, p store.ObservationParams) ([]model.Observation, error)
}

// Retriever fetches conversational context for prompt assembly.
type Retriever interface {
	Query(ctx context.Context, userID, text string, k int, window time.Duration) ([]model.Message, error)
}

// Reply is the outcome of one turn.
type Reply struct {
	Text        string
	Observation *model.Observation // non-nil when the turn logged a fact
}

// Agent routes utterances between the habit log, the trend views, and the
// language model.
type Agent struct {
	store      Store
	retriever  Retriever
	classifier intent.Classifier
	generator  llm.Generator // nil means no model is configured
	system     string
	k          int
	window     time.Duration
	now        func() time.Time
}

// Options tunes the agent. Zero values fall back to defaults.
type Options struct {
	System     string
	K          int
	Window     time.Duration
	Classifier intent.Classifier
	Now        func() time.Time
}

// New creates an orchestrator. The generator may be nil; turns that would
// need it then get the apology reply, with the user turn still persisted.
func New(st Store, retriever Retriever, generator llm.Generator, opts Options) *Agent {
	a := &Agent{
		store:      st,
		retriever:  retriever,
		classifier: opts.Classifier,
		generator:  generator,
		system:     opts.System,
		k:          opts.K,
		window:     opts.Window,
		now:        opts.Now,
	}
	if a.classifier == nil {
		a.classifier = intent.Keyword{}
	}
	if a.k <= 0 {
		a.k = 8
	}
	if a.window <= 0 {
		a.window = 3 * 24 * time.Hour
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Respond handles one user utterance. The user turn is persisted before
// anything that can fail remotely, so a generation failure never loses the
// utterance.
func (a *Agent) Respond(ctx context.Context, userID, text string) (*Reply, error) {
	it := a.classifier.Classify(text)
	category := categoryOf(it)

	if _, err := a.store.AppendMessage(ctx, store.AppendMessageParams{
		UserID:   userID,
		Role:     model.RoleUser,
		Category: category,
		Content:  text,
	}); err != nil {
		return nil, fmt.Errorf("persist user turn: %w", err)
	}

	reply := &Reply{}

	if obs, ok := extract.Extract(text, a.now()); ok {
		saved, err := a.store.AppendObservation(ctx, store.AppendObservationParams{
			UserID:     userID,
			Date:       obs.Date,
			Kind:       obs.Kind,
			Value:      obs.Value,
			SourceText: obs.SourceText,
		})
		if err != nil {
			return nil, fmt.Errorf("persist observation: %w", err)
		}
		reply.Observation = saved
	}

	switch {
	case it.Timer:
		reply.Text = a.timerReply(text)
	case it.Graph:
		text, err := a.graphReply(ctx, userID, it)
		if err != nil {
			return nil, err
		}
		reply.Text = text
	case reply.Observation != nil:
		reply.Text = ackObservation(reply.Observation)
	default:
		reply.Text = a.generate(ctx, userID, text)
	}

	// The apology is not assistant content; only persist real replies.
	if reply.Text != apology {
		if _, err := a.store.AppendMessage(ctx, store.AppendMessageParams{
			UserID:   userID,
			Role:     model.RoleAssistant,
			Category: category,
			Content:  reply.Text,
		}); err != nil {
			return nil, fmt.Errorf("persist assistant turn: %w", err)
		}
	}
	return reply, nil
}

func (a *Agent) generate(ctx context.Context, userID, text string) string {
	if a.generator == nil {
		log.Warn("no generator configured", "user", userID)
		return apology
	}

	history, err := a.retriever.Query(ctx, userID, text, a.k, a.window)
	if err != nil {
		log.Warn("context retrieval failed", "user", userID, "err", err)
		history = nil
	}
	// Drop the just-persisted user turn so it is not sent twice.
	if n := len(history); n > 0 && history[n-1].Role == model.RoleUser && history[n-1].Content == text {
		history = history[:n-1]
	}

	out, err := a.generator.Generate(ctx, llm.Request{
		System:  a.system,
		Context: history,
		Input:   text,
	})
	if err != nil {
		log.Warn("generation failed", "user", userID, "err", err)
		return apology
	}
	return out
}

func (a *Agent) timerReply(text string) string {
	seconds, task, ok := intent.ParseTimer(text)
	if !ok {
		return "I couldn't find a duration for that timer. Try something like \"set a timer for 5 minutes for plank\"."
	}
	return fmt.Sprintf("Timer set: %s for %s.", formatSeconds(seconds), task)
}

func (a *Agent) graphReply(ctx context.Context, userID string, it intent.Intent) (string, error) {
	kind := model.KindDuration
	unit := "min"
	if it.Food && !it.Gym {
		kind = model.KindCalories
		unit = "kcal"
	}

	obs, err := a.store.ListObservations(ctx, store.ObservationParams{UserID: userID, Kind: kind})
	if err != nil {
		return "", fmt.Errorf("list observations: %w", err)
	}
	points := trend.Aggregate(obs, kind)
	if len(points) == 0 {
		return fmt.Sprintf("Nothing logged yet for %s. Log something first and ask again.", kind), nil
	}
	return trend.RenderBars(points, unit, 40), nil
}

// Suggest folds today's food and exercise log into short advice lines.
func (a *Agent) Suggest(ctx context.Context, userID string) (string, error) {
	today := model.DateOf(a.now())
	obs, err := a.store.ListObservations(ctx, store.ObservationParams{UserID: userID, Since: today})
	if err != nil {
		return "", fmt.Errorf("list observations: %w", err)
	}

	var food, exercise strings.Builder
	for _, o := range obs {
		if o.Date != today {
			continue
		}
		switch o.Kind {
		case model.KindCalories:
			food.WriteString(strings.ToLower(o.SourceText))
			food.WriteString("\n")
		case model.KindDuration:
			exercise.WriteString(strings.ToLower(o.SourceText))
			exercise.WriteString("\n")
		}
	}
	foodLog, exerciseLog := food.String(), exercise.String()

	var lines []string
	if containsAny(foodLog, "burger", "pizza", "chocolate") {
		lines = append(lines, "Try reducing junk food today.")
	}
	if containsAny(foodLog, "egg", "dal", "chicken") {
		lines = append(lines, "Good protein intake!")
	}
	if containsAny(exerciseLog, "bench press", "deadlift") {
		lines = append(lines, "Strength training logged. Add more protein.")
	} else if containsAny(exerciseLog, "run", "cardio") {
		lines = append(lines, "Cardio detected. Carbs are important for recovery.")
	}
	if foodLog == "" {
		lines = append(lines, "You haven't logged any meals today.")
	}
	if exerciseLog == "" {
		lines = append(lines, "No exercise logged yet today.")
	}
	return strings.Join(lines, "\n"), nil
}

func categoryOf(it intent.Intent) model.Category {
	switch {
	case it.Gym && !it.Food:
		return model.CategoryExercise
	case it.Food && !it.Gym:
		return model.CategoryFood
	case it.Gym && it.Food:
		// Exercise wins the tie so workout-plus-snack turns land with the
		// workout, matching how the log command groups them.
		return model.CategoryExercise
	default:
		return model.CategoryGeneral
	}
}

func ackObservation(o *model.Observation) string {
	switch o.Kind {
	case model.KindCalories:
		return fmt.Sprintf("Logged %s kcal for %s.", trimFloat(o.Value), o.Date)
	default:
		return fmt.Sprintf("Logged %s minutes of exercise for %s.", trimFloat(o.Value), o.Date)
	}
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func formatSeconds(s int) string {
	if s%60 == 0 && s >= 60 {
		return fmt.Sprintf("%d minutes", s/60)
	}
	return fmt.Sprintf("%d seconds", s)
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
