package undo

// Log is a single-slot undo log. Pushing a record discards whatever was
// pending; there is no history beyond the last action.
type Log struct {
	pending Record
}

// Push makes r the pending record.
func (l *Log) Push(r Record) {
	l.pending = r
}

// Pending returns the pending record, if any.
func (l *Log) Pending() (Record, bool) {
	return l.pending, l.pending != nil
}

// Clear drops the pending record.
func (l *Log) Clear() {
	l.pending = nil
}

// Undo applies the inverse of the pending record and clears the slot. With
// nothing pending it does nothing and reports false. The slot is cleared even
// when the inverse fails.
func (l *Log) Undo(s State) (Record, bool, error) {
	r := l.pending
	if r == nil {
		return nil, false, nil
	}
	l.pending = nil
	if err := r.revert(s); err != nil {
		return r, true, err
	}
	return r, true, nil
}
