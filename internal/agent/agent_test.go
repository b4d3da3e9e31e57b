package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/habit-agent/internal/llm"
	"github.com/rcliao/habit-agent/internal/model"
	"github.com/rcliao/habit-agent/internal/store"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	messages     []model.Message
	observations []model.Observation
	failAppend   bool
}

func (f *fakeStore) AppendMessage(_ context.Context, p store.AppendMessageParams) (*model.Message, error) {
	if f.failAppend {
		return nil, errors.New("disk full")
	}
	m := model.Message{
		ID:        fmt.Sprintf("m%d", len(f.messages)+1),
		UserID:    p.UserID,
		Role:      p.Role,
		Category:  p.Category,
		Content:   p.Content,
		Timestamp: testNow,
	}
	f.messages = append(f.messages, m)
	return &m, nil
}

func (f *fakeStore) AppendObservation(_ context.Context, p store.AppendObservationParams) (*model.Observation, error) {
	o := model.Observation{
		ID:         fmt.Sprintf("o%d", len(f.observations)+1),
		UserID:     p.UserID,
		Date:       p.Date,
		Kind:       p.Kind,
		Value:      p.Value,
		SourceText: p.SourceText,
	}
	f.observations = append(f.observations, o)
	return &o, nil
}

func (f *fakeStore) ListObservations(_ context.Context, p store.ObservationParams) ([]model.Observation, error) {
	var out []model.Observation
	for _, o := range f.observations {
		if o.UserID != p.UserID {
			continue
		}
		if p.Kind != "" && o.Kind != p.Kind {
			continue
		}
		if p.Since != "" && o.Date < p.Since {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

type fakeRetriever struct {
	msgs []model.Message
	err  error
}

func (f *fakeRetriever) Query(context.Context, string, string, int, time.Duration) ([]model.Message, error) {
	return f.msgs, f.err
}

type fakeGenerator struct {
	reply string
	err   error
	last  llm.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestAgent(st *fakeStore, gen llm.Generator) *Agent {
	return New(st, &fakeRetriever{}, gen, Options{Now: func() time.Time { return testNow }})
}

func TestRespondLogsCalories(t *testing.T) {
	st := &fakeStore{}
	a := newTestAgent(st, nil)

	reply, err := a.Respond(context.Background(), "alice", "I ate a burger, about 500 calories")
	require.NoError(t, err)
	require.NotNil(t, reply.Observation)
	assert.Equal(t, model.KindCalories, reply.Observation.Kind)
	assert.Equal(t, 500.0, reply.Observation.Value)
	assert.Equal(t, "2024-03-15", reply.Observation.Date)
	assert.Contains(t, reply.Text, "500 kcal")

	// User turn plus acknowledgment both persisted.
	require.Len(t, st.messages, 2)
	assert.Equal(t, model.RoleUser, st.messages[0].Role)
	assert.Equal(t, model.CategoryFood, st.messages[0].Category)
	assert.Equal(t, model.RoleAssistant, st.messages[1].Role)
}

func TestRespondLogsWorkoutDuration(t *testing.T) {
	st := &fakeStore{}
	a := newTestAgent(st, nil)

	reply, err := a.Respond(context.Background(), "alice", "did a gym workout for 45 minutes yesterday")
	require.NoError(t, err)
	require.NotNil(t, reply.Observation)
	assert.Equal(t, model.KindDuration, reply.Observation.Kind)
	assert.Equal(t, 45.0, reply.Observation.Value)
	assert.Equal(t, "2024-03-14", reply.Observation.Date)
	assert.Equal(t, model.CategoryExercise, st.messages[0].Category)
}

func TestRespondChatGoesThroughGenerator(t *testing.T) {
	st := &fakeStore{}
	gen := &fakeGenerator{reply: "You're doing great!"}
	history := []model.Message{
		{ID: "h1", UserID: "alice", Role: model.RoleUser, Content: "gym day", Timestamp: testNow.Add(-time.Hour)},
	}
	a := New(st, &fakeRetriever{msgs: history}, gen, Options{Now: func() time.Time { return testNow }})

	reply, err := a.Respond(context.Background(), "alice", "how am I doing?")
	require.NoError(t, err)
	assert.Equal(t, "You're doing great!", reply.Text)
	assert.Nil(t, reply.Observation)
	assert.Equal(t, "how am I doing?", gen.last.Input)
	require.Len(t, gen.last.Context, 1)
	assert.Equal(t, "h1", gen.last.Context[0].ID)

	require.Len(t, st.messages, 2)
	assert.Equal(t, "You're doing great!", st.messages[1].Content)
}

func TestRespondDropsEchoedUserTurnFromContext(t *testing.T) {
	st := &fakeStore{}
	gen := &fakeGenerator{reply: "ok"}
	history := []model.Message{
		{ID: "h1", Role: model.RoleUser, Content: "earlier turn", Timestamp: testNow.Add(-time.Hour)},
		{ID: "h2", Role: model.RoleUser, Content: "how am I doing?", Timestamp: testNow},
	}
	a := New(st, &fakeRetriever{msgs: history}, gen, Options{Now: func() time.Time { return testNow }})

	_, err := a.Respond(context.Background(), "alice", "how am I doing?")
	require.NoError(t, err)
	require.Len(t, gen.last.Context, 1)
	assert.Equal(t, "h1", gen.last.Context[0].ID)
}

func TestRespondGeneratorFailureApologizesWithoutPersisting(t *testing.T) {
	st := &fakeStore{}
	gen := &fakeGenerator{err: errors.New("api down")}
	a := newTestAgent(st, gen)

	reply, err := a.Respond(context.Background(), "alice", "hello there")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Sorry")

	// The user turn survives the failure; the apology is not stored.
	require.Len(t, st.messages, 1)
	assert.Equal(t, model.RoleUser, st.messages[0].Role)
}

func TestRespondNilGeneratorApologizes(t *testing.T) {
	st := &fakeStore{}
	a := newTestAgent(st, nil)

	reply, err := a.Respond(context.Background(), "alice", "hello there")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Sorry")
	require.Len(t, st.messages, 1)
}

func TestRespondStoreFailureIsHard(t *testing.T) {
	a := newTestAgent(&fakeStore{failAppend: true}, nil)

	_, err := a.Respond(context.Background(), "alice", "hello")
	require.Error(t, err)
}

func TestRespondTimer(t *testing.T) {
	st := &fakeStore{}
	a := newTestAgent(st, nil)

	reply, err := a.Respond(context.Background(), "alice", "set a timer for 5 minutes for plank")
	require.NoError(t, err)
	assert.Equal(t, "Timer set: 5 minutes for plank.", reply.Text)
	require.Len(t, st.messages, 2)
}

func TestRespondGraph(t *testing.T) {
	st := &fakeStore{}
	a := newTestAgent(st, nil)
	ctx := context.Background()

	_, err := a.Respond(ctx, "alice", "gym workout for 30 minutes")
	require.NoError(t, err)
	_, err = a.Respond(ctx, "alice", "another workout, 60 minutes")
	require.NoError(t, err)

	reply, err := a.Respond(ctx, "alice", "show me my workout trend")
	require.NoError(t, err)
	assert.Nil(t, reply.Observation)
	assert.Contains(t, reply.Text, "2024-03-15")
	assert.Contains(t, reply.Text, "90 min")
}

func TestRespondGraphNoData(t *testing.T) {
	a := newTestAgent(&fakeStore{}, nil)

	reply, err := a.Respond(context.Background(), "alice", "graph my meal calories")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Nothing logged yet")
}

func TestSuggest(t *testing.T) {
	st := &fakeStore{}
	a := newTestAgent(st, nil)
	ctx := context.Background()

	_, err := a.Respond(ctx, "alice", "ate a burger, 700 calories")
	require.NoError(t, err)
	_, err = a.Respond(ctx, "alice", "bench press session for 40 minutes")
	require.NoError(t, err)

	out, err := a.Suggest(ctx, "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "junk food")
	assert.Contains(t, out, "Strength training")
	assert.NotContains(t, out, "haven't logged any meals")
}

func TestSuggestEmptyDay(t *testing.T) {
	a := newTestAgent(&fakeStore{}, nil)

	out, err := a.Suggest(context.Background(), "alice")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, out, "meals")
	assert.Contains(t, out, "exercise")
}
