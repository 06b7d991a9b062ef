package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dackerman/trello-checklists-export/internal/trello"
)

const customFieldsModel = `{"fields":[
	{"id":"f1","n":"Priority","o":[{"id":"o1","value":"High"},{"id":"o2","value":"Low"}]},
	{"id":"f2","n":"Site","o":[{"id":"s1","value":"Leeds"},{"id":"s2","value":"York"}]},
	{"id":"f3","n":"Phase","o":[{"id":"p1","value":3}]}
]}`

func pluginBoard() *trello.Board {
	board := sampleBoard()
	board.PluginData = []trello.PluginData{
		{ID: "pd1", IDPlugin: "custom-fields", Value: trello.PluginValue(customFieldsModel)},
		{ID: "pd2", IDPlugin: "broken", Value: trello.PluginValue(`{"fields":"nope"}`)},
	}
	board.Cards[0].PluginData = []trello.PluginData{
		{ID: "cp1", IDPlugin: "custom-fields", Value: trello.PluginValue(`{"fields":{"f2":"s2","f1":"o1","f3":"p1"}}`)},
	}
	board.Cards[1].PluginData = []trello.PluginData{
		{ID: "cp2", IDPlugin: "custom-fields", Value: trello.PluginValue(`{"fields":{"f1":"unknown"}}`)},
		{ID: "cp3", IDPlugin: "broken", Value: trello.PluginValue(`{"fields":{"f1":"o1"}}`)},
		{ID: "cp4", IDPlugin: "not-on-board", Value: trello.PluginValue(`{"fields":{"f1":"o1"}}`)},
	}
	return board
}

func TestResolvePluginFields(t *testing.T) {
	board := pluginBoard()

	fields := ResolvePluginFields(board.PluginData, board.Cards[0])

	data, err := json.Marshal(fields)
	require.NoError(t, err)
	assert.Equal(t, `{"Priority":"High","Site":"York","Phase":"3"}`, string(data), "ordered as the model defines them")
}

func TestResolvePluginFieldsSkipsUnresolvable(t *testing.T) {
	board := pluginBoard()

	fields := ResolvePluginFields(board.PluginData, board.Cards[1])
	assert.Equal(t, 0, fields.Len())

	fields = ResolvePluginFields(nil, board.Cards[0])
	assert.Equal(t, 0, fields.Len())
}

func TestBoardFields(t *testing.T) {
	board := pluginBoard()

	result := BoardFields(board.PluginData, board)
	assert.Equal(t, 1, result.Len())

	fields, ok := result.Get("c1")
	require.True(t, ok)
	priority, _ := fields.Get("Priority")
	assert.Equal(t, "High", priority)
}
