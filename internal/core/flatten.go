package core

import (
	"sort"
)

// Row is one flat table record: list name, card name, then text/value pairs
type Row []string

// Columns returns every distinct item text in the tree, sorted ascending
func Columns(tree *Tree) []string {
	seen := make(map[string]struct{})
	for list := tree.Oldest(); list != nil; list = list.Next() {
		for card := list.Value.Oldest(); card != nil; card = card.Next() {
			for _, checklist := range card.Value {
				for _, item := range checklist {
					seen[item.Text] = struct{}{}
				}
			}
		}
	}

	columns := make([]string, 0, len(seen))
	for text := range seen {
		columns = append(columns, text)
	}
	sort.Strings(columns)
	return columns
}

// Flatten converts the tree into one row per card. Every card with at
// least one checklist gets a (text, value) pair for each column in the
// board-wide column set, with an empty value where the card has no such
// item. A card without checklists gets only its list and card name, so
// rows are not all the same width.
func Flatten(tree *Tree) []Row {
	columns := Columns(tree)

	var rows []Row
	for list := tree.Oldest(); list != nil; list = list.Next() {
		for card := list.Value.Oldest(); card != nil; card = card.Next() {
			row := Row{list.Key, card.Key}

			if len(card.Value) == 0 {
				rows = append(rows, row)
				continue
			}

			values := make(map[string]string)
			for _, checklist := range card.Value {
				for _, item := range checklist {
					values[item.Text] = item.Value()
				}
			}

			for _, text := range columns {
				row = append(row, text, values[text])
			}
			rows = append(rows, row)
		}
	}

	return rows
}
