package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course_gen_backend/models"
)

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n[1,2]\n```":         `[1,2]`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, stripFences(in), in)
	}
}

func TestDecodeModelJSON(t *testing.T) {
	var plan models.CoursePlan
	err := decodeModelJSON("Here it is:\n```json\n{\"title\":\"Go\",\"sections\":[{\"title\":\"Intro\",\"complexity\":1}]}\n```", &plan)
	assert.ErrorIs(t, err, ErrMalformedOutput, "leading prose is not valid JSON")

	require.NoError(t, decodeModelJSON("```json\n{\"title\":\"Go\",\"sections\":[{\"title\":\"Intro\",\"complexity\":1}]}\n```", &plan))
	assert.Equal(t, "Go", plan.Title)
	require.Len(t, plan.Sections, 1)
	assert.Equal(t, models.Number(1), plan.Sections[0].Complexity)

	var arr []string
	assert.ErrorIs(t, decodeModelJSON("", &arr), ErrMalformedOutput)
	assert.ErrorIs(t, decodeModelJSON(`{"not":"an array"}`, &arr), ErrMalformedOutput)
	assert.ErrorIs(t, decodeModelJSON(`["a"] trailing`, &arr), ErrMalformedOutput)
}
