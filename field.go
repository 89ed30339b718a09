package library

type (
	Ptrs           []any
	RowScan[T any] func(*T) (Ptrs, Action)
	Action         func()

	// FieldType describes one column of a table: how to select it, where to
	// scan it, and how to read, test and copy the value on a record.
	FieldType[T any] struct {
		Column  string
		Decl    string
		Mod     QueryMod
		RowScan RowScan[T]
		Value   func(t *T) any
		IsSet   func(t T) bool
		Copy    func(dst *T, src T)
	}
)

func Ptr[T any](ptr func(t *T) any) RowScan[T] {
	return func(t *T) (Ptrs, Action) {
		return Ptrs{ptr(t)}, nil
	}
}

// Column builds a field that maps directly onto the column name. decl is the
// column declaration used by CREATE TABLE, e.g. "TEXT NOT NULL".
func Column[T any, V comparable](name, decl string, ref func(t *T) *V) FieldType[T] {
	return FieldType[T]{
		Column:  name,
		Decl:    decl,
		Mod:     Col(name),
		RowScan: Ptr(func(t *T) any { return ref(t) }),
		Value:   func(t *T) any { return *ref(t) },
		IsSet: func(t T) bool {
			var zero V
			return *ref(&t) != zero
		},
		Copy: func(dst *T, src T) { *ref(dst) = *ref(&src) },
	}
}

func flattenRowScan[T any](rowScans []RowScan[T]) RowScan[T] {
	return func(t *T) (Ptrs, Action) {
		var (
			pointers Ptrs
			actions  []Action
		)
		for _, rowScan := range rowScans {
			ptr, action := rowScan(t)
			pointers = append(pointers, ptr...)
			if action != nil {
				actions = append(actions, action)
			}
		}

		return pointers, flattenActions(actions)
	}
}

func flattenActions(actions []Action) Action {
	return func() {
		for _, action := range actions {
			action()
		}
	}
}
