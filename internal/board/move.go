package board

import "slices"

// Move relocates one card. Index is the card's position in the
// destination column after the move; a negative or out of range index
// appends. Source is optional: when set it must match the card's
// current column, otherwise the move was computed from stale state.
type Move struct {
	CardID      int64  `json:"card_id"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination"`
	Index       int    `json:"index"`
}

// Assignment is one persisted write produced by a move.
type Assignment struct {
	ID         int64  `json:"id"`
	Column     string `json:"column"`
	OrderIndex int    `json:"order_index"`
}

// Apply computes the writes for m. Every card of every affected column
// is renumbered 0..n-1, destination column first. It returns false when
// the move is a no-op: unknown card, unknown destination, or a source
// that no longer matches.
func Apply(columns []string, cards []Card, m Move) ([]Assignment, bool) {
	if m.Destination == "" || !slices.Contains(columns, m.Destination) {
		return nil, false
	}
	idx := slices.IndexFunc(cards, func(c Card) bool { return c.ID == m.CardID })
	if idx < 0 {
		return nil, false
	}
	moving := cards[idx]
	if m.Source != "" && m.Source != moving.Column {
		return nil, false
	}

	parts := partitionCards(columns, cards)

	dest := without(parts[m.Destination], moving.ID)
	dest = insertAt(dest, moving, m.Index)
	out := renumber(dest, m.Destination)

	if moving.Column != m.Destination {
		if src, ok := parts[moving.Column]; ok {
			out = append(out, renumber(without(src, moving.ID), moving.Column)...)
		}
	}
	return out, true
}

// Remove computes the writes that close the gap a deleted card leaves
// in its column. It returns false when the card is unknown.
func Remove(columns []string, cards []Card, id int64) ([]Assignment, bool) {
	idx := slices.IndexFunc(cards, func(c Card) bool { return c.ID == id })
	if idx < 0 {
		return nil, false
	}
	column := cards[idx].Column
	src, ok := partitionCards(columns, cards)[column]
	if !ok {
		return nil, true
	}
	return renumber(without(src, id), column), true
}

// Drop describes where a dragged card was released: over a column
// container, over another card, or over nothing.
type Drop struct {
	CardID     int64  `json:"card_id"`
	OverColumn string `json:"over_column,omitempty"`
	OverCardID int64  `json:"over_card_id,omitempty"`
}

// ResolveDrop turns a drag gesture into a Move. Dropping on a card takes
// that card's position; dropping on a column appends; dropping on
// nothing, on itself or on a card that no longer exists is a no-op.
func ResolveDrop(columns []string, cards []Card, d Drop) (Move, bool) {
	idx := slices.IndexFunc(cards, func(c Card) bool { return c.ID == d.CardID })
	if idx < 0 {
		return Move{}, false
	}
	active := cards[idx]

	switch {
	case d.OverCardID != 0:
		if d.OverCardID == d.CardID {
			return Move{}, false
		}
		i := slices.IndexFunc(cards, func(c Card) bool { return c.ID == d.OverCardID })
		if i < 0 {
			return Move{}, false
		}
		over := cards[i]
		column := partitionCards(columns, cards)[over.Column]
		pos := slices.IndexFunc(column, func(c Card) bool { return c.ID == over.ID })
		if pos < 0 {
			return Move{}, false
		}
		return Move{CardID: active.ID, Source: active.Column, Destination: over.Column, Index: pos}, true
	case d.OverColumn != "":
		if !slices.Contains(columns, d.OverColumn) {
			return Move{}, false
		}
		return Move{CardID: active.ID, Source: active.Column, Destination: d.OverColumn, Index: -1}, true
	}
	return Move{}, false
}

// Changed filters out assignments that match the current state.
func Changed(cards []Card, as []Assignment) []Assignment {
	current := make(map[int64]Card, len(cards))
	for _, c := range cards {
		current[c.ID] = c
	}
	var out []Assignment
	for _, a := range as {
		c, ok := current[a.ID]
		if ok && c.Column == a.Column && c.OrderIndex == a.OrderIndex {
			continue
		}
		out = append(out, a)
	}
	return out
}

func without(cards []Card, id int64) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func insertAt(cards []Card, c Card, index int) []Card {
	if index < 0 || index > len(cards) {
		index = len(cards)
	}
	return slices.Insert(cards, index, c)
}

func renumber(cards []Card, column string) []Assignment {
	out := make([]Assignment, len(cards))
	for i, c := range cards {
		out[i] = Assignment{ID: c.ID, Column: column, OrderIndex: i}
	}
	return out
}
