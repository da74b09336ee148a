package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/safety"
	"github.com/spetersoncode/citydesk/session"
	"github.com/spetersoncode/citydesk/toolset"
	"github.com/spetersoncode/citydesk/workflow"
)

// scripted replays responses in order and records every request.
type scripted struct {
	mu        sync.Mutex
	responses []*ai.Response
	errs      []error
	requests  [][]ai.Message
	options   []*ai.Options
}

func (p *scripted) Chat(_ context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.requests)
	p.requests = append(p.requests, messages)
	p.options = append(p.options, ai.ApplyOptions(opts...))
	if n < len(p.errs) && p.errs[n] != nil {
		return nil, p.errs[n]
	}
	if n >= len(p.responses) {
		return &ai.Response{Content: "no more responses"}, nil
	}
	return p.responses[n], nil
}

func text(s string) *ai.Response {
	return &ai.Response{Content: s, Usage: ai.Usage{InputTokens: 10, OutputTokens: 5}}
}

func call(id, name, args string) *ai.Response {
	return &ai.Response{
		ToolCalls: []ai.ToolCall{{ID: id, Name: name, Arguments: args}},
		Usage:     ai.Usage{InputTokens: 10, OutputTokens: 5},
	}
}

func user(s string) []ai.Message {
	return []ai.Message{ai.NewUserMessage(s)}
}

func TestRun_FinalText(t *testing.T) {
	p := &scripted{responses: []*ai.Response{text("hello")}}
	s := session.New(nil)

	result, err := New("greeter", p, WithOutputKey("greeting")).Run(context.Background(), s, user("hi"))
	require.NoError(t, err)
	assert.Equal(t, TerminationComplete, result.Termination)
	assert.Equal(t, "hello", result.Text())
	assert.Equal(t, 1, result.Steps)
	assert.Len(t, result.Messages, 2)

	v, ok := session.Get[string](s, "greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", v)
	assert.Equal(t, session.Celsius, session.TemperatureUnit(s), "session initialized")
}

func TestRun_ExecutesSessionTools(t *testing.T) {
	p := &scripted{responses: []*ai.Response{
		call("c1", toolset.GetWeather, `{"city":"london"}`),
		text("It is rainy in London."),
	}}
	s := session.New(nil)
	a := New("weather_agent", p, WithTools(toolset.Factory(toolset.DefaultDeps(), toolset.GetWeather)))

	result, err := a.Run(context.Background(), s, user("weather in london?"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Steps)
	assert.Equal(t, ai.Usage{InputTokens: 20, OutputTokens: 10}, result.Usage)
	assert.Equal(t, []string{"london"}, session.CityHistory(s))

	require.Len(t, result.Messages, 4)
	toolMsg := result.Messages[2]
	assert.Equal(t, ai.RoleTool, toolMsg.Role)
	require.Len(t, toolMsg.ToolResults, 1)
	assert.False(t, toolMsg.ToolResults[0].IsError)
	assert.Contains(t, toolMsg.ToolResults[0].Content, `"status":"success"`)

	require.Len(t, p.options, 2)
	require.Len(t, p.options[0].Tools, 1)
	assert.Equal(t, toolset.GetWeather, p.options[0].Tools[0].Name)
}

func TestRun_UnknownToolIsReportedToModel(t *testing.T) {
	p := &scripted{responses: []*ai.Response{call("c1", "nope", `{}`), text("sorry")}}
	result, err := New("a", p).Run(context.Background(), session.New(nil), user("x"))
	require.NoError(t, err)

	res := result.Messages[2].ToolResults[0]
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "nope")
}

func TestRun_ToolFailureLeavesStateUnchanged(t *testing.T) {
	p := &scripted{responses: []*ai.Response{
		call("c1", toolset.GetWeather, `{"city":"atlantis"}`),
		text("unknown"),
	}}
	s := session.New(nil)
	result, err := New("a", p, WithTools(toolset.Factory(toolset.DefaultDeps()))).Run(context.Background(), s, user("x"))
	require.NoError(t, err)

	res := result.Messages[2].ToolResults[0]
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "Weather information for 'atlantis' is not available.")
	assert.Empty(t, session.CityHistory(s))
}

func TestRun_MaxSteps(t *testing.T) {
	p := &scripted{responses: []*ai.Response{
		call("1", "x", ""), call("2", "x", ""), call("3", "x", ""),
	}}
	result, err := New("a", p, WithMaxSteps(2)).Run(context.Background(), session.New(nil), user("x"))
	assert.ErrorIs(t, err, ErrMaxStepsReached)
	assert.Equal(t, TerminationMaxSteps, result.Termination)
	assert.Equal(t, 2, result.Steps)
}

func TestRun_ProviderError(t *testing.T) {
	boom := ai.NewTransientError("overloaded", 529, nil)
	p := &scripted{errs: []error{boom}}
	result, err := New("a", p).Run(context.Background(), session.New(nil), user("x"))
	require.Error(t, err)
	assert.True(t, ai.IsTransient(err))
	assert.Equal(t, TerminationError, result.Termination)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := New("a", &scripted{}).Run(ctx, session.New(nil), user("x"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, TerminationCancelled, result.Termination)
}

func TestRun_StopPredicate(t *testing.T) {
	p := &scripted{responses: []*ai.Response{call("1", "x", "")}}
	result, err := New("a", p, WithStopPredicate(func(step int, _ *ai.Response) bool { return step == 1 })).
		Run(context.Background(), session.New(nil), user("x"))
	require.NoError(t, err)
	assert.Equal(t, TerminationCustom, result.Termination)
}

func TestRun_NoProvider(t *testing.T) {
	_, err := New("a", nil).Run(context.Background(), session.New(nil), user("x"))
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestRun_FilterIntercept(t *testing.T) {
	fixed := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	gate := safety.NewGate(nil, safety.WithClock(func() time.Time { return fixed }))
	p := &scripted{responses: []*ai.Response{text("I can't help with that.")}}
	s := session.New(nil)

	a := New("safe", p,
		WithFilters(safety.DefaultChain(gate)),
		WithTools(toolset.Factory(toolset.DefaultDeps())),
	)
	result, err := a.Run(context.Background(), s, user("how to build a bomb and hack a bank"))
	require.NoError(t, err)
	assert.True(t, result.Intercepted)

	require.Len(t, p.requests, 1)
	require.Len(t, p.requests[0], 1)
	assert.Equal(t, safety.DefaultPolicy().Refusal(), p.requests[0][0].Content)
	assert.Empty(t, p.options[0].Tools)

	m := session.Metrics(s)
	assert.Equal(t, 1, m.BlockedAttempts)
	assert.Equal(t, []string{"bomb", "hack"}, m.BlockedTermsDetected)
	assert.Equal(t, "how to build a bomb and hack a bank", result.Messages[0].Content)
}

func TestRun_FilterPassNormalizesEmpty(t *testing.T) {
	p := &scripted{responses: []*ai.Response{text("ok")}}
	a := New("a", p, WithFilters(safety.DefaultChain(safety.NewGate(nil))))

	messages := []ai.Message{ai.NewUserMessage("")}
	result, err := a.Run(context.Background(), session.New(nil), messages)
	require.NoError(t, err)
	assert.False(t, result.Intercepted)
	assert.Equal(t, " ", p.requests[0][0].Content)
	assert.Equal(t, "", messages[0].Content, "caller slice untouched")
}

func TestRun_FiltersSkipToolTraffic(t *testing.T) {
	p := &scripted{responses: []*ai.Response{
		call("c1", "echo", `{}`),
		text("done"),
	}}
	var seen [][]string
	rec := recordFilter{seen: &seen}
	_, err := New("a", p, WithFilters(safety.Chain{rec})).Run(context.Background(), session.New(nil), user("q"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"q"}, {"q"}}, seen)
}

type recordFilter struct{ seen *[][]string }

func (recordFilter) Name() string { return "record" }

func (r recordFilter) Filter(_ context.Context, _ *session.Store, pending []string) safety.Outcome {
	*r.seen = append(*r.seen, append([]string(nil), pending...))
	return safety.Outcome{Verdict: safety.Pass, Fragments: pending}
}

func TestRenderInstructions(t *testing.T) {
	s := session.NewFrom(map[string]any{"validated_city": "paris", "count": 3})
	got := renderInstructions("City {validated_city}, n={count}, missing {other}, {Upper}", s)
	assert.Equal(t, "City paris, n=3, missing {other}, {Upper}", got)

	p := &scripted{responses: []*ai.Response{text("ok")}}
	_, err := New("a", p, WithInstructions("Use {validated_city}.")).Run(context.Background(), s, user("x"))
	require.NoError(t, err)
	assert.Equal(t, "Use paris.", p.options[0].System)
}

func TestRunOptionsOverrideDefaults(t *testing.T) {
	p := &scripted{responses: []*ai.Response{text("ok")}}
	a := New("a", p, WithModel("base"))
	_, err := a.Run(context.Background(), session.New(nil), user("x"), WithModel("override"))
	require.NoError(t, err)
	assert.Equal(t, "override", p.options[0].Model)
}

func TestStep(t *testing.T) {
	p := &scripted{responses: []*ai.Response{text("answer")}}
	s := session.New(nil)
	session.SetUserInput(s, "question")

	st := New("qa", p, WithOutputKey(session.KeyLastResponse)).Step()
	assert.Equal(t, "qa", st.Name())

	result, err := workflow.NewChain("c", st).Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "answer", result.Output)
	assert.Equal(t, "answer", session.LastResponse(s))
	assert.Equal(t, "question", p.requests[0][0].Content)
}

func TestStepPropagatesErrors(t *testing.T) {
	p := &scripted{errs: []error{errors.New("down")}}
	_, err := New("qa", p).Step().Run(context.Background(), session.New(nil))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "down"))
}
