package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
)

// Runner is anything squirrel can run statements with: a *sql.DB or the
// *sql.Tx of a session.
type Runner = squirrel.BaseRunner

type Query[T any] struct {
	table *Table[T]

	selectedFields         map[string]FieldType[T]
	selectedRelations      map[string]Relation[T]
	selectedRelationFields map[string][]string
	tableAlias             string
	queryMods              []QueryMod

	errors []error
}

func newQuery[T any](table *Table[T], fields ...string) Query[T] {
	query := Query[T]{
		table:                  table,
		selectedFields:         map[string]FieldType[T]{},
		selectedRelations:      map[string]Relation[T]{},
		selectedRelationFields: map[string][]string{},
		tableAlias:             table.Name,
		queryMods:              []QueryMod{},
		errors:                 []error{},
	}

	return query.Select(fields...)
}

func (query Query[T]) ModifyQuery(mod QueryMod) Query[T] {
	query.queryMods = append(query.queryMods, mod)

	return query
}

// Where restricts the base rows to those whose column equals value.
func (query Query[T]) Where(col string, value any) Query[T] {
	return query.ModifyQuery(WhereEq(col, value))
}

func (query Query[T]) Select(fieldNames ...string) Query[T] {
	query.selectedFields = cloneMap(query.selectedFields)
	query.selectedRelations = cloneMap(query.selectedRelations)
	query.selectedRelationFields = cloneMap(query.selectedRelationFields)

	if len(fieldNames) == 0 {
		query.selectAllFields()
		return query
	}

	for _, name := range fieldNames {
		query.resolveSelect(name)
	}

	return query
}

func (query *Query[T]) resolveSelect(name string) {
	field, rest := isNested(name)

	if field == "*" {
		if rest != "" {
			query.addError(fmt.Errorf("%w: %s", ErrNoSuchRelation, field))
			return
		}

		query.selectAllFields()
		return
	}

	if query.table.hasRelation(field) {
		if rest != "" && rest != "*" {
			// Validate the chosen nested field.
			if err := query.table.Relations[field].Check(rest); err != nil {
				query.addError(err)
				return
			}
		}
		query.selectRelation(field, rest)
		return
	}

	if query.table.hasField(field) {
		// Fields cannot have nesting
		if rest != "" {
			query.addError(fmt.Errorf("%w: %s", ErrNoSuchRelation, field))
			return
		}
		query.selectField(field)
		return
	}

	query.addError(fmt.Errorf("%w: %s", ErrNoSuchField, field))
}

func (query *Query[T]) selectAllFields() {
	for name := range query.table.Fields {
		query.selectedFields[name] = query.table.Fields[name]
	}
}

func (query *Query[T]) selectField(name string) {
	query.selectedFields[name] = query.table.Fields[name]
}

func (query *Query[T]) selectRelation(relName, relField string) {
	if relField == "" {
		relField = "*"
	}

	query.selectedRelations[relName] = query.table.Relations[relName]
	query.selectedRelationFields[relName] = append(
		append([]string{}, query.selectedRelationFields[relName]...),
		relField,
	)
}

// =================
// Finishers
// =================

func (query Query[T]) Err() error {
	return errors.Join(query.errors...)
}

func (query Query[T]) Collect(ctx context.Context, db Runner) ([]T, error) {
	if err := query.Err(); err != nil {
		return nil, err
	}
	query = query.withDependencies()

	parents, err := query.collectBaseModels(ctx, db)
	if err != nil {
		return nil, err
	}

	if err := query.resolveRelations(ctx, db, parents); err != nil {
		return nil, err
	}

	return parents, nil
}

func (query Query[T]) CollectOne(ctx context.Context, db Runner) (*T, error) {
	if err := query.Err(); err != nil {
		return nil, err
	}
	query = query.withDependencies()

	parents, err := query.collectBaseModels(ctx, db)
	if err != nil {
		return nil, err
	}

	if len(parents) == 0 {
		return nil, sql.ErrNoRows
	} else if len(parents) > 1 {
		return nil, ErrTooManyResults
	}

	if err := query.resolveRelations(ctx, db, parents); err != nil {
		return nil, err
	}

	return &parents[0], nil
}

// withDependencies selects the fields every selected relation needs to bind
// its children.
func (query Query[T]) withDependencies() Query[T] {
	for _, rel := range query.selectedRelations {
		query = rel.QueryMod(query)
	}

	return query
}

func (query Query[T]) collectBaseModels(ctx context.Context, db Runner) ([]T, error) {
	q := squirrel.StatementBuilder.RunWith(db).Select().From(query.table.Name)

	// Apply schema mods
	q = applyMods(q, query.tableAlias, query.table.QueryMods)
	// Apply runtime mods
	q = applyMods(q, query.tableAlias, query.queryMods)

	// Collapse fields in declaration order so the statement is stable.
	var scans []RowScan[T]
	for _, name := range query.table.columns {
		field, ok := query.selectedFields[name]
		if !ok {
			continue
		}
		q = field.Mod(q, query.tableAlias)
		scans = append(scans, field.RowScan)
	}

	return Collect(ctx, q, flattenRowScan(scans))
}

func (query Query[T]) resolveRelations(ctx context.Context, db Runner, parents []T) error {
	if len(parents) == 0 {
		return nil
	}

	for name, relation := range query.selectedRelations {
		err := relation.Resolve(
			ctx,
			db,
			parents,
			query.selectedRelationFields[name],
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// =================
// Utilities
// =================

func (query *Query[T]) addError(err error) {
	query.errors = append(query.errors, err)
}

func isNested(name string) (string, string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 1 {
		return name, ""
	}
	return parts[0], parts[1]
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	return lo.Assign(map[K]V{}, m)
}
