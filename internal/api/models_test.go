package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalDistinguishesAbsentFromNull(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *int64
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"assigned_to_id":null}`, wantSet: true},
		{name: "value", body: `{"assigned_to_id":4}`, wantSet: true, wantValue: ptr(int64(4))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req PatchTaskRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))

			assert.Equal(t, tc.wantSet, req.AssignedToID.Set)
			assert.Equal(t, tc.wantValue, req.AssignedToID.Value)
		})
	}
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var req PatchTaskRequest
	assert.Error(t, json.Unmarshal([]byte(`{"assigned_to_id":"four"}`), &req))
}

func ptr[T any](v T) *T { return &v }
