package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// InsertModel builds a single-row INSERT from the db-tagged exported fields
// of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}

// InsertModels builds one multi-row INSERT from a non-empty slice of models
// that all tag the same columns.
func InsertModels(table string, models any, suffix string) (string, []any, error) {
	list := reflect.ValueOf(models)
	if list.Kind() != reflect.Slice {
		return "", nil, fmt.Errorf("models must be a slice, got %s", list.Kind())
	}
	if list.Len() == 0 {
		return "", nil, fmt.Errorf("models cannot be empty")
	}

	builder := InsertInto(table).Suffix(suffix)
	var columns []string
	for i := range list.Len() {
		cols, vals, err := modelColumns(list.Index(i).Interface())
		if err != nil {
			return "", nil, fmt.Errorf("model %d: %w", i, err)
		}
		switch {
		case i == 0:
			columns = cols
			builder.Columns(cols...)
		case !slices.Equal(cols, columns):
			return "", nil, fmt.Errorf("model %d has columns %v, expected %v", i, cols, columns)
		}
		builder.Values(vals...)
	}
	return builder.ToSQL()
}

func modelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, name)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model %s has no db columns", typ.Name())
	}
	return cols, vals, nil
}
