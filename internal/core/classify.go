package core

import (
	"regexp"

	"github.com/dackerman/trello-checklists-export/internal/trello"
)

// ConfirmedFlag is the value recorded for a completed item without a date
const ConfirmedFlag = "Y"

// DatePlaceholder is the unfilled template date. It is matched on purpose
// so template mistakes upstream show up in the export.
const DatePlaceholder = "YYYY/MM/DD"

// datedItemPattern matches checklist items written as
//
//	[optional prefix] "Label": 2023/04/01
//
// The prefix is a bracketed or parenthesised note, the date may be wrapped
// in quotes, and the date may be the literal YYYY/MM/DD placeholder.
var datedItemPattern = regexp.MustCompile(
	`^\s*(?:[\[(][^\])]*[\])]\s*)?"(?P<text>.*?)":[\s"]*(?P<date>[0-9]{4}/[0-9]{2}/[0-9]{2}|YYYY/MM/DD)"*\s*$`,
)

var (
	textGroup = datedItemPattern.SubexpIndex("text")
	dateGroup = datedItemPattern.SubexpIndex("date")
)

// ItemKind is the outcome of classifying a checklist item
type ItemKind int

const (
	Ignored ItemKind = iota
	Dated
	Confirmed
)

func (k ItemKind) String() string {
	switch k {
	case Dated:
		return "dated"
	case Confirmed:
		return "confirmed"
	default:
		return "ignored"
	}
}

// Item is a classified checklist item. Exactly one of Date and Confirmed is set.
type Item struct {
	Text      string `json:"text"`
	Date      string `json:"date,omitempty"`
	Confirmed string `json:"confirmed,omitempty"`
}

// Kind reports whether the item is dated or confirmed
func (i Item) Kind() ItemKind {
	switch {
	case i.Date != "":
		return Dated
	case i.Confirmed != "":
		return Confirmed
	default:
		return Ignored
	}
}

// Value is the cell written for the item in the flat table
func (i Item) Value() string {
	if i.Date != "" {
		return i.Date
	}
	return i.Confirmed
}

// Classify turns a checklist item into a dated or confirmed item.
// Incomplete items are ignored. Text that does not follow the
// "Label": date convention is never an error; it becomes a confirmed item.
func Classify(ci trello.CheckItem) (Item, ItemKind) {
	if !ci.Complete() {
		return Item{}, Ignored
	}

	m := datedItemPattern.FindStringSubmatch(ci.Name)
	if m == nil {
		return Item{Text: ci.Name, Confirmed: ConfirmedFlag}, Confirmed
	}

	if m[dateGroup] == "" {
		return Item{}, Ignored
	}

	return Item{Text: m[textGroup], Date: m[dateGroup]}, Dated
}

// ClassifyChecklist classifies every item of a checklist. Dated items come
// first, then confirmed items, each group in source order.
func ClassifyChecklist(checklist trello.Checklist) []Item {
	var dated, confirmed []Item

	items := CheckItems(checklist)
	for pair := items.Oldest(); pair != nil; pair = pair.Next() {
		item, kind := Classify(pair.Value)
		switch kind {
		case Dated:
			dated = append(dated, item)
		case Confirmed:
			confirmed = append(confirmed, item)
		}
	}

	result := make([]Item, 0, len(dated)+len(confirmed))
	result = append(result, dated...)
	return append(result, confirmed...)
}
