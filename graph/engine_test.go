package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAnswer(text string) NodeFunc {
	return func(ctx context.Context, s *State) Update {
		return Update{AnswerText: strPtr(text)}
	}
}

func TestEngineRunsFixedEdges(t *testing.T) {
	var order []string
	record := func(name string) NodeFunc {
		return func(ctx context.Context, s *State) Update {
			order = append(order, name)
			return Update{}
		}
	}

	e := NewEngine(nil, nil).
		AddNode("a", record("a")).
		AddNode("b", record("b")).
		AddNode("c", record("c")).
		SetEntryPoint("a").
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", End)

	state := NewState("prompt")
	require.NoError(t, e.Run(context.Background(), state))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestEngineMergesUpdates(t *testing.T) {
	e := NewEngine(nil, nil).
		AddNode("set", setAnswer("answer")).
		AddNode("other", func(ctx context.Context, s *State) Update {
			// Owns a different field; AnswerText must survive.
			return Update{CompressedContext: strPtr("ctx")}
		}).
		SetEntryPoint("set").
		AddEdge("set", "other").
		AddEdge("other", End)

	state := NewState("prompt")
	require.NoError(t, e.Run(context.Background(), state))
	assert.Equal(t, "answer", state.AnswerText)
	assert.Equal(t, "ctx", state.CompressedContext)
}

func TestEngineConditionalRouting(t *testing.T) {
	e := NewEngine(nil, nil).
		AddNode("start", setAnswer("yes")).
		AddNode("left", setAnswer("left")).
		AddNode("right", setAnswer("right")).
		SetEntryPoint("start").
		AddConditionalEdges("start", func(s *State) string {
			if s.AnswerText == "yes" {
				return "left"
			}
			return "right"
		}, "left", "right").
		AddEdge("left", End).
		AddEdge("right", End)

	state := NewState("prompt")
	require.NoError(t, e.Run(context.Background(), state))
	assert.Equal(t, "left", state.AnswerText)
}

func TestEngineRejectsRouteOutsideAllowList(t *testing.T) {
	e := NewEngine(nil, nil).
		AddNode("start", setAnswer("x")).
		AddNode("target", setAnswer("y")).
		SetEntryPoint("start").
		AddConditionalEdges("start", func(s *State) string {
			return "elsewhere"
		}, "target").
		AddEdge("target", End)

	err := e.Run(context.Background(), NewState("prompt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allow-list")
}

func TestEngineTransitionBudget(t *testing.T) {
	e := NewEngine(nil, nil).
		AddNode("loop", setAnswer("x")).
		SetEntryPoint("loop").
		AddEdge("loop", "loop").
		SetMaxTransitions(10)

	err := e.Run(context.Background(), NewState("prompt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transition budget")
}

func TestEngineValidate(t *testing.T) {
	t.Run("missing entry point", func(t *testing.T) {
		e := NewEngine(nil, nil).AddNode("a", setAnswer("x")).AddEdge("a", End)
		assert.Error(t, e.Validate())
	})

	t.Run("edge to unknown node", func(t *testing.T) {
		e := NewEngine(nil, nil).
			AddNode("a", setAnswer("x")).
			SetEntryPoint("a").
			AddEdge("a", "ghost")
		assert.Error(t, e.Validate())
	})

	t.Run("node without outgoing edge", func(t *testing.T) {
		e := NewEngine(nil, nil).
			AddNode("a", setAnswer("x")).
			AddNode("b", setAnswer("y")).
			SetEntryPoint("a").
			AddEdge("a", "b")
		assert.Error(t, e.Validate())
	})

	t.Run("valid graph", func(t *testing.T) {
		e := NewEngine(nil, nil).
			AddNode("a", setAnswer("x")).
			SetEntryPoint("a").
			AddEdge("a", End)
		assert.NoError(t, e.Validate())
	})
}

func TestUpdateApplyOnlySetFields(t *testing.T) {
	s := NewState("raw")
	s.AnswerText = "before"
	s.GenerationRetries = 2

	Update{CompressedContext: strPtr("ctx")}.apply(s)

	assert.Equal(t, "before", s.AnswerText)
	assert.Equal(t, 2, s.GenerationRetries)
	assert.Equal(t, "ctx", s.CompressedContext)
}
