package query

import (
	"sort"
	"strings"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/catalog"
)

// Result is the tabular output of a structured query.
type Result struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

// execute runs a validated plan against the catalog. The catalog is only
// ever read.
func (plan *QueryPlan) execute(cat *catalog.Catalog) *Result {
	var matched []catalog.RuleRecord
	cat.Each(func(r catalog.RuleRecord) {
		if plan.matches(r) {
			matched = append(matched, r)
		}
	})

	var res *Result
	switch {
	case len(plan.GroupBy) > 0:
		res = plan.executeGrouped(matched)
	case plan.Count:
		res = &Result{
			Columns: []string{"count"},
			Rows:    []map[string]interface{}{{"count": len(matched)}},
		}
	default:
		res = plan.executeProjection(matched)
	}

	if plan.OrderBy != "" {
		sortRows(res.Rows, plan.OrderBy)
	}
	return res
}

func (plan *QueryPlan) matches(r catalog.RuleRecord) bool {
	for _, pred := range plan.Where {
		value, _ := r.Field(pred.Field)
		if value != pred.Value {
			return false
		}
	}
	return true
}

func (plan *QueryPlan) executeProjection(records []catalog.RuleRecord) *Result {
	columns := plan.Fields
	if plan.Star {
		columns = catalog.FieldNames
	}

	rows := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		row := make(map[string]interface{}, len(columns))
		for _, c := range columns {
			value, _ := r.Field(c)
			row[c] = value
		}
		rows = append(rows, row)
	}

	return &Result{Columns: columns, Rows: rows}
}

// executeGrouped buckets records by the tuple of grouped field values and
// emits one row per bucket in first-seen order.
func (plan *QueryPlan) executeGrouped(records []catalog.RuleRecord) *Result {
	type bucket struct {
		values []string
		count  int
	}

	var order []string
	buckets := make(map[string]*bucket)

	for _, r := range records {
		values := make([]string, len(plan.GroupBy))
		for i, f := range plan.GroupBy {
			values[i], _ = r.Field(f)
		}
		key := strings.Join(values, "\x00")
		b, seen := buckets[key]
		if !seen {
			b = &bucket{values: values}
			buckets[key] = b
			order = append(order, key)
		}
		b.count++
	}

	columns := append([]string{}, plan.GroupBy...)
	if plan.Count {
		columns = append(columns, "count")
	}

	rows := make([]map[string]interface{}, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		row := make(map[string]interface{}, len(columns))
		for i, f := range plan.GroupBy {
			row[f] = b.values[i]
		}
		if plan.Count {
			row["count"] = b.count
		}
		rows = append(rows, row)
	}

	return &Result{Columns: columns, Rows: rows}
}

// sortRows sorts ascending by the named column. The sort is stable so
// equal keys keep their prior order.
func sortRows(rows []map[string]interface{}, field string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][field], rows[j][field]
		ai, aIsInt := a.(int)
		bi, bIsInt := b.(int)
		if aIsInt && bIsInt {
			return ai < bi
		}
		as, _ := a.(string)
		bs, _ := b.(string)
		return as < bs
	})
}
