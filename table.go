package library

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// IDColumn is the identity column every table carries.
const IDColumn = "id"

// Table is the schema of one entity kind: its columns in declaration order,
// the relations that can be resolved from it and the query mods applied to
// every select.
type Table[T any] struct {
	Name      string
	Fields    map[string]FieldType[T]
	Relations map[string]Relation[T]
	QueryMods []QueryMod

	columns []string
	id      func(t *T) *int64
}

func New[T any](name string, id func(t *T) *int64) *Table[T] {
	table := &Table[T]{
		Name:      name,
		Fields:    map[string]FieldType[T]{},
		Relations: make(map[string]Relation[T]),
		id:        id,
	}

	return table.AddColumn(Column(IDColumn, "INTEGER PRIMARY KEY AUTOINCREMENT", id))
}

func (table *Table[T]) AddColumn(field FieldType[T]) *Table[T] {
	if _, ok := table.Fields[field.Column]; !ok {
		table.columns = append(table.columns, field.Column)
	}
	table.Fields[field.Column] = field

	return table
}

func (table *Table[T]) AddRelation(name string, relation Relation[T]) *Table[T] {
	table.Relations[name] = relation

	return table
}

func (table *Table[T]) ModifyQuery(mod QueryMod) *Table[T] {
	table.QueryMods = append(table.QueryMods, mod)

	return table
}

func (table *Table[T]) Query(fields ...string) Query[T] {
	return newQuery(table, fields...)
}

// ID returns the identity of t.
func (table *Table[T]) ID(t T) int64 {
	return *table.id(&t)
}

func (table *Table[T]) setID(t *T, id int64) {
	*table.id(t) = id
}

// Columns returns every column except the identity, in declaration order.
func (table *Table[T]) Columns() []string {
	return lo.Without(table.columns, IDColumn)
}

func (table *Table[T]) values(t *T, columns []string) []any {
	return lo.Map(columns, func(col string, _ int) any { return table.Fields[col].Value(t) })
}

func (table *Table[T]) Check(field string) error {
	field, rest := isNested(field)

	if field == "" {
		return nil
	}

	if table.hasRelation(field) {
		if err := table.Relations[field].Check(rest); err != nil {
			return err
		}
		return nil
	}

	if table.hasField(field) {
		if rest != "" {
			return fmt.Errorf("%w: %s", ErrNoSuchField, field)
		}
		return nil
	}

	return fmt.Errorf("%w: %s", ErrNoSuchField, field)
}

func (table *Table[T]) hasRelation(name string) bool {
	_, ok := table.Relations[name]
	return ok
}

func (table *Table[T]) hasField(name string) bool {
	_, ok := table.Fields[name]
	return ok
}

// TableName and the statements below let Rebuild work on tables of any
// entity kind.
func (table *Table[T]) TableName() string {
	return table.Name
}

func (table *Table[T]) CreateStatement() string {
	decls := lo.Map(table.columns, func(col string, _ int) string {
		return col + " " + table.Fields[col].Decl
	})

	return fmt.Sprintf("CREATE TABLE %s (%s)", table.Name, strings.Join(decls, ", "))
}

func (table *Table[T]) DropStatement() string {
	return "DROP TABLE IF EXISTS " + table.Name
}
