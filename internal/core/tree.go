package core

import (
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dackerman/trello-checklists-export/internal/trello"
)

// ErrUnknownList is returned when a card references a list that is not on the board
var ErrUnknownList = errors.New("card references unknown list")

// CardChecklists maps card name to the classified items of each of its checklists
type CardChecklists = orderedmap.OrderedMap[string, [][]Item]

// Tree maps list name to the cards in that list. Both levels keep
// insertion order, which is also the key order of the JSON encoding.
type Tree = orderedmap.OrderedMap[string, *CardChecklists]

// NewTree returns an empty tree
func NewTree() *Tree {
	return orderedmap.New[string, *CardChecklists]()
}

// BuildResult is a built tree plus diagnostics gathered while building it
type BuildResult struct {
	Tree *Tree

	// Collisions counts cards whose name was already taken in the same
	// list bucket. The later card replaces the earlier one.
	Collisions int

	// SkippedChecklists counts checklist references with no matching
	// checklist on the board.
	SkippedChecklists int
}

// BuildTree groups the board's classified checklist items by list and card name
func BuildTree(board *trello.Board) (*Tree, error) {
	result, err := Build(board)
	if err != nil {
		return nil, err
	}
	return result.Tree, nil
}

// Build is BuildTree with diagnostics
func Build(board *trello.Board) (*BuildResult, error) {
	lists := Lists(board)
	cards := Cards(board)
	checklists := Checklists(board)

	classified := orderedmap.New[string, []Item](checklists.Len())
	for pair := checklists.Oldest(); pair != nil; pair = pair.Next() {
		classified.Set(pair.Key, ClassifyChecklist(pair.Value))
	}

	result := &BuildResult{Tree: NewTree()}

	for pair := cards.Oldest(); pair != nil; pair = pair.Next() {
		card := pair.Value

		cardChecklists := make([][]Item, 0, len(card.IDChecklists))
		for _, checklistID := range CardChecklistIDs(card) {
			items, ok := classified.Get(checklistID)
			if !ok {
				// partial exports may omit checklists
				result.SkippedChecklists++
				continue
			}
			cardChecklists = append(cardChecklists, items)
		}

		list, ok := lists.Get(card.IDList)
		if !ok {
			return nil, fmt.Errorf("%w: card %s (%q) references list %q", ErrUnknownList, card.ID, card.Name, card.IDList)
		}

		bucket, ok := result.Tree.Get(list.Name)
		if !ok {
			bucket = orderedmap.New[string, [][]Item]()
			result.Tree.Set(list.Name, bucket)
		}

		if _, present := bucket.Set(card.Name, cardChecklists); present {
			result.Collisions++
		}
	}

	return result, nil
}
