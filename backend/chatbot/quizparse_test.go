package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuizzesFencedBlock(t *testing.T) {
	raw := "```json\n[{\"question\":\"Q\",\"options\":[\"a\",\"b\"],\"correctAnswer\":\"a\"}]\n```"

	drafts, parsed := ParseQuizzes(raw)
	require.True(t, parsed)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Q", drafts[0].Question)
	assert.Equal(t, []string{"a", "b"}, drafts[0].Options)
	assert.Equal(t, "a", drafts[0].CorrectAnswer)
}

func TestParseQuizzesBareFence(t *testing.T) {
	raw := "```\n{\"question\":\"Single\",\"options\":[\"x\",\"y\",\"z\"],\"correctAnswer\":\"z\"}\n```"

	drafts, parsed := ParseQuizzes(raw)
	require.True(t, parsed)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Single", drafts[0].Question)
}

func TestParseQuizzesStripsPreamble(t *testing.T) {
	raw := `Sure! Here's your quiz set: [{"question":"Q1","options":["a","b"],"correctAnswer":"b"}]`

	drafts, parsed := ParseQuizzes(raw)
	require.True(t, parsed)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Q1", drafts[0].Question)
}

func TestParseQuizzesKeepsJSONThatMentionsHeres(t *testing.T) {
	raw := `[{"question":"Here's a puzzle: what is 2+2?","options":["3","4"],"correctAnswer":"4"}]`

	drafts, parsed := ParseQuizzes(raw)
	require.True(t, parsed)
	assert.Equal(t, "Here's a puzzle: what is 2+2?", drafts[0].Question)
}

func TestParseQuizzesDropsMalformedItems(t *testing.T) {
	raw := `[
		{"question":"ok","options":["a","b"],"correctAnswer":"a"},
		{"question":1,"options":["a","b"],"correctAnswer":"a"},
		{"question":"one option","options":["a"],"correctAnswer":"a"},
		{"question":"options not array","options":"a,b","correctAnswer":"a"},
		{"question":"answer not string","options":["1","2"],"correctAnswer":1},
		{"question":"answer not an option","options":["a","b"],"correctAnswer":"c"},
		{"question":"duplicate options","options":["a","a"],"correctAnswer":"a"},
		"just a string",
		null,
		{"question":"also ok","options":["x","y"],"correctAnswer":"y"}
	]`

	drafts, parsed := ParseQuizzes(raw)
	require.True(t, parsed)
	require.Len(t, drafts, 2)
	assert.Equal(t, "ok", drafts[0].Question)
	assert.Equal(t, "also ok", drafts[1].Question)
}

func TestParseQuizzesCapsAtFive(t *testing.T) {
	item := `{"question":"q","options":["a","b"],"correctAnswer":"a"}`
	raw := "[" + item + "," + item + "," + item + "," + item + "," + item + "," + item + "," + item + "]"

	drafts, parsed := ParseQuizzes(raw)
	require.True(t, parsed)
	assert.Len(t, drafts, MaxQuizzesPerLesson)
}

func TestParseQuizzesFallback(t *testing.T) {
	inputs := []string{
		"",
		"not json at all",
		"Here's nothing useful:",
		`{"unexpected":"shape"}`,
		`[]`,
		`[{"question":"bad","options":[],"correctAnswer":"x"}]`,
		`42`,
		"```json\n[{broken\n```",
	}
	want := FallbackQuizzes()
	require.Len(t, want, 5)

	for _, in := range inputs {
		drafts, parsed := ParseQuizzes(in)
		assert.False(t, parsed, in)
		assert.Equal(t, want, drafts, in)
	}
}

func TestFallbackSetIsSelfConsistent(t *testing.T) {
	for _, q := range FallbackQuizzes() {
		assert.NotEmpty(t, q.Question)
		assert.GreaterOrEqual(t, len(q.Options), 2)
		assert.Contains(t, q.Options, q.CorrectAnswer, q.Question)
	}
}

func TestFallbackQuizzesReturnsCopy(t *testing.T) {
	a := FallbackQuizzes()
	a[0].Options[0] = "mutated"
	a[1].Question = "mutated"

	b := FallbackQuizzes()
	assert.NotEqual(t, "mutated", b[0].Options[0])
	assert.NotEqual(t, "mutated", b[1].Question)
}
