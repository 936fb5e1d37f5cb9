package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParameterJSONKeepsUnknownKeys(t *testing.T) {
	var p Parameter
	require.NoError(t, json.Unmarshal([]byte(`{"type":"text","default":"0.5","min":0,"placeholder":"x"}`), &p))

	assert.Equal(t, ParameterTypeText, p.Type)
	assert.Equal(t, "0.5", p.Default)
	assert.Equal(t, map[string]any{"min": 0.0, "placeholder": "x"}, p.Extra)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","default":"0.5","min":0,"placeholder":"x"}`, string(data))
}

func TestParameterJSONWithoutExtra(t *testing.T) {
	var p Parameter
	require.NoError(t, json.Unmarshal([]byte(`{"type":"boolean","default":false}`), &p))
	assert.Nil(t, p.Extra)
	assert.Equal(t, Parameter{Type: ParameterTypeBoolean, Default: false}, p)
}

func TestParameterJSONKnownFieldsWin(t *testing.T) {
	p := Parameter{Type: ParameterTypeText, Value: "a", Extra: map[string]any{"value": "b", "hint": "h"}}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","value":"a","hint":"h"}`, string(data))
}

func TestParameterExplicitNullDefaultIsAbsent(t *testing.T) {
	var p Parameter
	require.NoError(t, json.Unmarshal([]byte(`{"type":"text","default":null}`), &p))
	assert.False(t, p.HasDefault())
	assert.Nil(t, p.Extra)
}

func TestParameterYAMLKeepsUnknownKeys(t *testing.T) {
	p := Parameter{Type: ParameterTypeText, Default: "0.5", Extra: map[string]any{"placeholder": "x"}}

	data, err := yaml.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "placeholder: x")

	var back Parameter
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestParameterCloneCopiesExtra(t *testing.T) {
	p := Parameter{Type: ParameterTypeText, Extra: map[string]any{"range": []any{0.0, 1.0}}}

	clone := p.Clone()
	clone.Extra["range"].([]any)[0] = 5.0
	clone.Extra["added"] = true

	assert.Equal(t, 0.0, p.Extra["range"].([]any)[0])
	assert.NotContains(t, p.Extra, "added")
}
