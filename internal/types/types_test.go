package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"opened", StatusOpened, false},
		{"workinprogress", StatusWorkInProgress, false},
		{"completed", StatusCompleted, false},
		{"Completed", StatusCompleted, false},
		{" opened ", StatusOpened, false},
		{"open", 0, true},
		{"done", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Opened", StatusOpened.String())
	assert.Equal(t, "WorkInProgress", StatusWorkInProgress.String())
	assert.Equal(t, "Work in progress", StatusWorkInProgress.Label())
	assert.Equal(t, "workinprogress", StatusWorkInProgress.Keyword())
	assert.False(t, Status(7).IsValid())
}

func TestParseLevel(t *testing.T) {
	for _, l := range Levels {
		got, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}

	_, err := ParseLevel("feature")
	assert.Error(t, err)
}

func TestLevelCanBeSubtask(t *testing.T) {
	assert.True(t, LevelStory.CanBeSubtask())
	assert.True(t, LevelTask.CanBeSubtask())
	assert.False(t, LevelEpic.CanBeSubtask())
	assert.False(t, LevelBug.CanBeSubtask())
}

func TestEnumsMarshalAsKeywords(t *testing.T) {
	payload := struct {
		Status Status `json:"status"`
		Level  Level  `json:"level"`
	}{StatusWorkInProgress, LevelBug}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"workinprogress","level":"bug"}`, string(data))

	payload.Status = StatusOpened
	payload.Level = LevelEpic
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, StatusWorkInProgress, payload.Status)
	assert.Equal(t, LevelBug, payload.Level)

	_, err = json.Marshal(struct{ S Status }{Status(9)})
	assert.Error(t, err)
}
