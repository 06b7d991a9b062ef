package core

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dackerman/trello-checklists-export/internal/trello"
)

// Fields maps a plugin field name to the selected option value
type Fields = orderedmap.OrderedMap[string, string]

// CardFields maps card id to its resolved plugin fields
type CardFields = orderedmap.OrderedMap[string, *Fields]

// pluginModel is the board-level definition written by custom field Power-Ups
type pluginModel struct {
	Fields []struct {
		ID      string `json:"id"`
		Name    string `json:"n"`
		Options []struct {
			ID    string          `json:"id"`
			Value json.RawMessage `json:"value"`
		} `json:"o"`
	} `json:"fields"`
}

// cardPluginValue is the per-card selection: field id to option id
type cardPluginValue struct {
	Fields map[string]json.RawMessage `json:"fields"`
}

// ResolvePluginFields maps a card's plugin selections to field names and
// option values using the board's plugin models. Anything that cannot be
// resolved is skipped. Fields are ordered as the model defines them.
func ResolvePluginFields(models []trello.PluginData, card trello.Card) *Fields {
	fields := orderedmap.New[string, string]()

	byPlugin := make(map[string]pluginModel, len(models))
	for _, m := range models {
		var model pluginModel
		if err := m.Value.Decode(&model); err != nil {
			continue
		}
		byPlugin[m.IDPlugin] = model
	}

	for _, cardPlugin := range card.PluginData {
		model, ok := byPlugin[cardPlugin.IDPlugin]
		if !ok {
			continue
		}

		var selection cardPluginValue
		if err := cardPlugin.Value.Decode(&selection); err != nil || len(selection.Fields) == 0 {
			continue
		}

		for _, field := range model.Fields {
			raw, ok := selection.Fields[field.ID]
			if !ok {
				continue
			}
			var optionID string
			if err := json.Unmarshal(raw, &optionID); err != nil {
				continue
			}
			for _, option := range field.Options {
				if option.ID == optionID {
					fields.Set(field.Name, optionText(option.Value))
					break
				}
			}
		}
	}

	return fields
}

// BoardFields resolves plugin fields for every card that has any
func BoardFields(models []trello.PluginData, board *trello.Board) *CardFields {
	result := orderedmap.New[string, *Fields]()

	cards := Cards(board)
	for pair := cards.Oldest(); pair != nil; pair = pair.Next() {
		fields := ResolvePluginFields(models, pair.Value)
		if fields.Len() > 0 {
			result.Set(pair.Key, fields)
		}
	}

	return result
}

// optionText renders an option value, unquoting plain strings
func optionText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
