package supabase

import (
	"fmt"
	"net/url"
)

type filter struct {
	column string
	op     string
	value  string
}

// Query описывает один запрос к таблице: явные фильтры, сортировка и
// диапазон страницы вместо свободного набора параметров.
type Query struct {
	selectList string
	filters    []filter
	orderBy    string
	ascending  bool
	hasOrder   bool
	from, to   int
	hasRange   bool
	onConflict string
}

func NewQuery() Query {
	return Query{selectList: "*"}
}

func (q Query) Select(columns string) Query {
	q.selectList = columns
	return q
}

// Eq добавляет фильтр равенства по колонке.
func (q Query) Eq(column string, value any) Query {
	q.filters = append(q.filters, filter{column: column, op: "eq", value: fmt.Sprint(value)})
	return q
}

func (q Query) Gte(column string, value any) Query {
	q.filters = append(q.filters, filter{column: column, op: "gte", value: fmt.Sprint(value)})
	return q
}

func (q Query) Lte(column string, value any) Query {
	q.filters = append(q.filters, filter{column: column, op: "lte", value: fmt.Sprint(value)})
	return q
}

// Order задаёт сортировку по одной колонке.
func (q Query) Order(column string, ascending bool) Query {
	q.orderBy = column
	q.ascending = ascending
	q.hasOrder = true
	return q
}

// Range задаёт включительный диапазон строк (0-indexed), как range(from, to)
// в supabase-js.
func (q Query) Range(from, to int) Query {
	q.from = from
	q.to = to
	q.hasRange = true
	return q
}

func (q Query) OnConflict(columns string) Query {
	q.onConflict = columns
	return q
}

func (q Query) encode() string {
	values := url.Values{}
	if q.selectList != "" {
		values.Set("select", q.selectList)
	}
	for _, f := range q.filters {
		values.Add(f.column, f.op+"."+f.value)
	}
	if q.hasOrder {
		dir := "desc"
		if q.ascending {
			dir = "asc"
		}
		values.Set("order", q.orderBy+"."+dir)
	}
	if q.onConflict != "" {
		values.Set("on_conflict", q.onConflict)
	}
	return values.Encode()
}
