package core

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dackerman/trello-checklists-export/internal/trello"
)

// indexByID keys items by id in source order. A repeated id replaces the
// earlier value but keeps its position.
func indexByID[T any](items []T, id func(T) string) *orderedmap.OrderedMap[string, T] {
	index := orderedmap.New[string, T](len(items))
	for _, item := range items {
		index.Set(id(item), item)
	}
	return index
}

// Lists returns every list on the board keyed by id
func Lists(board *trello.Board) *orderedmap.OrderedMap[string, trello.List] {
	return indexByID(board.Lists, func(l trello.List) string { return l.ID })
}

// Cards returns every card on the board keyed by id
func Cards(board *trello.Board) *orderedmap.OrderedMap[string, trello.Card] {
	return indexByID(board.Cards, func(c trello.Card) string { return c.ID })
}

// Checklists returns every checklist on the board keyed by id
func Checklists(board *trello.Board) *orderedmap.OrderedMap[string, trello.Checklist] {
	return indexByID(board.Checklists, func(cl trello.Checklist) string { return cl.ID })
}

// CardChecklistIDs returns the checklist ids attached to a card, in order
func CardChecklistIDs(card trello.Card) []string {
	ids := make([]string, 0, len(card.IDChecklists))
	return append(ids, card.IDChecklists...)
}

// CheckItems returns the items of a checklist keyed by id
func CheckItems(checklist trello.Checklist) *orderedmap.OrderedMap[string, trello.CheckItem] {
	return indexByID(checklist.CheckItems, func(ci trello.CheckItem) string { return ci.ID })
}
