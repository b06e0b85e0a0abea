package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultComplete(t *testing.T) {
	rs := Default()
	require.NotNil(t, rs)

	for _, key := range allRuleKeys {
		r := rs.Rules[key]
		assert.NotEmpty(t, r.Explanation, key)
		assert.NotEmpty(t, r.Examples, key)
	}
	assert.NotEmpty(t, rs.Intents)
	assert.NotEmpty(t, rs.Routes)
	assert.NotEmpty(t, rs.Spelling)
	assert.NotEmpty(t, rs.Responses.TestMode)
	assert.NotEmpty(t, rs.Responses.Fallback)
	assert.NotEmpty(t, rs.Responses.FallbackSuggestions)
	assert.NotEmpty(t, rs.Responses.EmptyBlock)
}

func TestIntentPriorityOrder(t *testing.T) {
	// Порядок интентов фиксирован: он разрешает пересечения ключевых слов
	// ("сәлем" есть и в словарных вопросах, и в приветствии).
	want := []string{
		"lesson_explanation", "lesson_errors", "sentence_check",
		"error_explanation", "vocabulary_question", "grammar_question",
		"general_help",
	}
	got := make([]string, 0, len(Default().Intents))
	for _, ik := range Default().Intents {
		got = append(got, ik.Intent)
	}
	assert.Equal(t, want, got)
}

func TestRuleFallback(t *testing.T) {
	rs := Default()
	def := rs.Rules[RuleDefault]
	assert.Equal(t, def, rs.Rule(""))
	assert.Equal(t, def, rs.Rule("no_such_rule"))
	assert.Equal(t, rs.Rules[RuleWordOrder], rs.Rule(RuleWordOrder))
}

func TestParseRejectsIncomplete(t *testing.T) {
	_, err := Parse([]byte("intents: []"))
	require.Error(t, err)

	// Интенты есть, грамматических правил нет.
	_, err = Parse([]byte("intents:\n  - intent: general_help\n    keywords: [\"привет\"]\n"))
	require.Error(t, err)

	_, err = Parse([]byte("{не yaml"))
	require.Error(t, err)
}
