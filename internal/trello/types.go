package trello

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CheckItem states as reported by the Trello API
const (
	StateComplete   = "complete"
	StateIncomplete = "incomplete"
)

// ErrInvalidBoard is returned when a board document does not have the expected shape
var ErrInvalidBoard = errors.New("invalid board document")

// Board is a full board export as returned by GET /boards/{id}
type Board struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Lists      []List       `json:"lists"`
	Cards      []Card       `json:"cards"`
	Checklists []Checklist  `json:"checklists"`
	PluginData []PluginData `json:"pluginData,omitempty"`

	// Raw holds the document exactly as received, including the
	// actions and labels this package does not model.
	Raw json.RawMessage `json:"-"`
}

type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Card struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	IDList       string       `json:"idList"`
	IDChecklists []string     `json:"idChecklists"`
	PluginData   []PluginData `json:"pluginData,omitempty"`
}

type Checklist struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	CheckItems []CheckItem `json:"checkItems"`
}

type CheckItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// Complete reports whether the item has been ticked off
func (ci CheckItem) Complete() bool {
	return ci.State == StateComplete
}

// PluginData is a Power-Up payload attached to a board or a card
type PluginData struct {
	ID       string      `json:"id"`
	IDPlugin string      `json:"idPlugin"`
	Value    PluginValue `json:"value"`
}

// PluginValue is the JSON object stored by a Power-Up. Trello returns it
// as a JSON-encoded string; both the string and the object form are accepted.
type PluginValue json.RawMessage

// UnmarshalJSON implements the json.Unmarshaler interface
func (v *PluginValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*v = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*v = nil
			return nil
		}
		data = []byte(s)
		if !json.Valid(data) {
			return fmt.Errorf("plugin value is not valid JSON: %q", s)
		}
	}

	*v = append((*v)[:0], data...)
	return nil
}

// MarshalJSON implements the json.Marshaler interface
func (v PluginValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return []byte(v), nil
}

// Decode unmarshals the plugin payload into out
func (v PluginValue) Decode(out any) error {
	if len(v) == 0 {
		return errors.New("empty plugin value")
	}
	return json.Unmarshal(v, out)
}

// ParseBoard decodes and validates a board document
func ParseBoard(data []byte) (*Board, error) {
	var board Board
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}
	board.Raw = append(json.RawMessage(nil), data...)
	return &board, nil
}

// Validate checks the invariants the reshaping code depends on
func (b *Board) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: board has no id", ErrInvalidBoard)
	}
	for i, l := range b.Lists {
		if l.ID == "" {
			return fmt.Errorf("%w: list %d has no id", ErrInvalidBoard, i)
		}
	}
	for i, c := range b.Cards {
		if c.ID == "" {
			return fmt.Errorf("%w: card %d has no id", ErrInvalidBoard, i)
		}
	}
	for i, cl := range b.Checklists {
		if cl.ID == "" {
			return fmt.Errorf("%w: checklist %d has no id", ErrInvalidBoard, i)
		}
		for j, item := range cl.CheckItems {
			if item.ID == "" {
				return fmt.Errorf("%w: checkItem %d in checklist %s has no id", ErrInvalidBoard, j, cl.ID)
			}
			if item.State != StateComplete && item.State != StateIncomplete {
				return fmt.Errorf("%w: checkItem %q in checklist %s has state %q",
					ErrInvalidBoard, item.ID, cl.ID, item.State)
			}
		}
	}
	return nil
}
