package passenger

// Table is the read-only passenger manifest shared by every session.
// It is never mutated after construction, so concurrent readers need no locking.
type Table struct {
	rows []Passenger
}

// NewTable copies rows into a new Table.
func NewTable(rows []Passenger) *Table {
	return &Table{rows: append([]Passenger(nil), rows...)}
}

// Len returns the number of passengers.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// At returns the passenger at index i.
func (t *Table) At(i int) Passenger {
	return t.rows[i]
}

// Rows returns a copy of all passengers in file order.
func (t *Table) Rows() []Passenger {
	if t == nil {
		return nil
	}
	return append([]Passenger(nil), t.rows...)
}
