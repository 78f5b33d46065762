package export

// Headers returns the header of each column.
func Headers[T any](cols []Column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

// Cells renders every field of every row as a plain, unquoted string.
func Cells[T any](rows []T, cols []Column[T]) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = field(c.Accessor(row))
		}
		out[i] = cells
	}
	return out
}

// Nulls marks, per row and column, the fields whose accessor returned nil
// or a nil pointer. Those render as empty strings in Cells.
func Nulls[T any](rows []T, cols []Column[T]) [][]bool {
	out := make([][]bool, len(rows))
	for i, row := range rows {
		mask := make([]bool, len(cols))
		for j, c := range cols {
			v := c.Accessor(row)
			mask[j] = v == nil || isNilPointer(v)
		}
		out[i] = mask
	}
	return out
}

// StringColumns builds columns over already-rendered rows, reading each
// field by position. Short rows yield empty fields.
func StringColumns(headers []string) []Column[[]string] {
	cols := make([]Column[[]string], len(headers))
	for i, h := range headers {
		cols[i] = Column[[]string]{
			Header: h,
			Accessor: func(row []string) any {
				if i >= len(row) {
					return nil
				}
				return row[i]
			},
		}
	}
	return cols
}
