package engine

import (
	"fmt"

	"github.com/Veraticus/dealflow/internal/matching"
	"github.com/Veraticus/dealflow/internal/model"
)

// Table is the ordered message table with the columns published by each
// stage. Columns are only ever appended: every With* method returns a copy
// carrying the new column and leaves the receiver untouched.
type Table struct {
	messages        []model.Message
	classifications []model.Classification
	entities        []model.Entities
	windows         []model.Window
	replies         matching.Assignment
	confirms        matching.Assignment
}

// NewTable wraps an ordered batch of messages.
func NewTable(msgs []model.Message) Table {
	return Table{messages: msgs}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.messages)
}

// Messages returns the message column.
func (t Table) Messages() []model.Message {
	return t.messages
}

// Classifications returns the intent column, nil before classification.
func (t Table) Classifications() []model.Classification {
	return t.classifications
}

// Entities returns the entities column, nil before extraction.
func (t Table) Entities() []model.Entities {
	return t.entities
}

// Windows returns the window column, nil before windows are built.
func (t Table) Windows() []model.Window {
	return t.windows
}

// Replies returns the reply links.
func (t Table) Replies() matching.Assignment {
	return t.replies
}

// Confirms returns the confirmation links.
func (t Table) Confirms() matching.Assignment {
	return t.confirms
}

func (t Table) checkColumn(name string, n int) error {
	if n != len(t.messages) {
		return fmt.Errorf("%s column has %d rows, table has %d", name, n, len(t.messages))
	}
	return nil
}

// WithClassifications appends the intent column.
func (t Table) WithClassifications(col []model.Classification) (Table, error) {
	if t.classifications != nil {
		return t, fmt.Errorf("classification column already published")
	}
	if err := t.checkColumn("classification", len(col)); err != nil {
		return t, err
	}
	t.classifications = col
	return t, nil
}

// WithEntities appends the entities column.
func (t Table) WithEntities(col []model.Entities) (Table, error) {
	if t.entities != nil {
		return t, fmt.Errorf("entities column already published")
	}
	if err := t.checkColumn("entities", len(col)); err != nil {
		return t, err
	}
	t.entities = col
	return t, nil
}

// WithWindows appends the window column.
func (t Table) WithWindows(col []model.Window) (Table, error) {
	if t.windows != nil {
		return t, fmt.Errorf("window column already published")
	}
	if err := t.checkColumn("window", len(col)); err != nil {
		return t, err
	}
	t.windows = col
	return t, nil
}

// WithReplies appends the reply link columns.
func (t Table) WithReplies(a matching.Assignment) (Table, error) {
	if t.replies.Matches != nil {
		return t, fmt.Errorf("reply columns already published")
	}
	if err := t.checkColumn("reply", len(a.Matches)); err != nil {
		return t, err
	}
	t.replies = a
	return t, nil
}

// WithConfirms appends the confirmation link columns.
func (t Table) WithConfirms(a matching.Assignment) (Table, error) {
	if t.confirms.Matches != nil {
		return t, fmt.Errorf("confirm columns already published")
	}
	if err := t.checkColumn("confirm", len(a.Matches)); err != nil {
		return t, err
	}
	t.confirms = a
	return t, nil
}

// matchingInput exposes the columns the matchers read.
func (t Table) matchingInput() matching.Input {
	return matching.Input{
		Messages:        t.messages,
		Classifications: t.classifications,
		Entities:        t.entities,
		Windows:         t.windows,
	}
}

// Row is a read-only view of one table row across all published columns.
type Row struct {
	Message        model.Message
	Classification model.Classification
	Entities       model.Entities
	Window         model.Window
	Reply          model.MatchResult // Set on START rows with a matched reply
	Confirm        model.MatchResult // Set on START rows with a matched confirmation
	Index          int
	OwnerStart     int // START that claimed this REPLY or CONFIRM row
}

// Row returns the view of row i. Columns not yet published read as zero values.
func (t Table) Row(i int) Row {
	r := Row{
		Index:      i,
		Message:    t.messages[i],
		Window:     model.NoWindow,
		Reply:      model.MatchResult{Index: model.NoIndex},
		Confirm:    model.MatchResult{Index: model.NoIndex},
		OwnerStart: model.NoIndex,
	}
	if t.classifications != nil {
		r.Classification = t.classifications[i]
	}
	if t.entities != nil {
		r.Entities = t.entities[i]
	}
	if t.windows != nil {
		r.Window = t.windows[i]
	}
	if t.replies.Matches != nil {
		r.Reply = t.replies.Matches[i]
		if owner := t.replies.Owners[i]; owner != model.NoIndex {
			r.OwnerStart = owner
		}
	}
	if t.confirms.Matches != nil {
		r.Confirm = t.confirms.Matches[i]
		if owner := t.confirms.Owners[i]; owner != model.NoIndex {
			r.OwnerStart = owner
		}
	}
	return r
}
