package domain

// DefaultColumns returns the stock three-stage column set.
func DefaultColumns() []ColumnDef {
	return []ColumnDef{
		{ID: "todo", Name: "Por hacer"},
		{ID: "proceso", Name: "En proceso"},
		{ID: "done", Name: "Hecho"},
	}
}

// seedGroups lists the sample tasks per column position.
var seedGroups = [][]Task{
	{{ID: "t1", Text: "Tarea 1"}, {ID: "t2", Text: "Tarea 2"}},
	{{ID: "t3", Text: "Tarea 3"}},
	{{ID: "t4", Text: "Tarea 4"}},
}

// SeedBoard builds the first-run board over defs. Sample groups beyond the
// last column land in the last column so no sample task is dropped.
func SeedBoard(defs []ColumnDef) (*Board, error) {
	b, err := NewBoard(defs)
	if err != nil {
		return nil, err
	}
	last := len(b.columns) - 1
	for pos, group := range seedGroups {
		col := b.columns[min(pos, last)].ID
		for _, task := range group {
			if err := b.Append(col, task); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}
