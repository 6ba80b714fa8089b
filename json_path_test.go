package mvctest

import (
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestModelPath(t *testing.T) {
	model := map[string]any{
		"name":  "Felix",
		"owner": map[string]any{"name": "Bilbo"},
		"tags":  []string{"cat", "black", "lazy"},
		"pets":  []*pet{{Id: 1, Name: "Felix"}, {Id: 2, Name: "Rex"}},
		"empty": []string{},
	}
	testCases := []struct {
		path      string
		expect    any
		expectErr string
	}{
		{path: "name", expect: "Felix"},
		{path: "owner.name", expect: "Bilbo"},
		{path: "tags.LEN", expect: 3},
		{path: "tags.FIRST", expect: "cat"},
		{path: "tags.LAST", expect: "lazy"},
		{path: "tags.1", expect: "black"},
		{path: "tags.-1", expect: "lazy"},
		{path: "pets.LAST.name", expect: "Rex"},
		{path: "pets.0.id", expect: float64(1)},
		{path: "unknown", expectErr: `json path "unknown" does not exist`},
		{path: "tags.9", expectErr: `json path "9" array index out of range`},
		{path: "tags.x", expectErr: `json path "x" invalid array index`},
		{path: "empty.FIRST", expectErr: `json path "FIRST" into empty array`},
		{path: "name.first", expectErr: `json path "first" into non object/array`},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("[%d]%s", i+1, tc.path), func(t *testing.T) {
			v, err := modelPath(model, tc.path)
			if tc.expectErr != "" {
				require.Error(t, err)
				assert.Equal(t, tc.expectErr, err.Error())
			} else {
				require.NoError(t, err)
				assert.True(t, Equal(tc.expect, v), "expected %v, got %v", tc.expect, v)
			}
		})
	}
}

func TestModelPath_Errors(t *testing.T) {
	_, err := modelPath(func() {}, "x")
	assert.ErrorContains(t, err, "model cannot be represented as json")
	_, err = modelPath(nil, "x")
	assert.EqualError(t, err, `json path "x" into nil`)
	v, err := modelPath(&pet{Id: 1, Name: "Felix"}, ".")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": float64(1), "name": "Felix"}, v)
}

func TestBodyPath(t *testing.T) {
	v, err := bodyPath([]byte(`{"items":[{"id":1},{"id":2}]}`), "items.LAST.id")
	require.NoError(t, err)
	assert.Equal(t, float64(2), v)
	_, err = bodyPath([]byte(`not json`), "x")
	assert.ErrorContains(t, err, "body is not json")
}
