package query

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/anagilla/retail-lakehouse-demo/pkg/dataset"
)

// SQL renders the descriptor into query text and bind arguments using the
// given placeholder format (sq.Question for Trino, sq.Dollar for
// PostgreSQL). User values only ever appear as bind arguments.
func (d *Descriptor) SQL(placeholder sq.PlaceholderFormat) (string, []any, error) {
	qb := sq.StatementBuilder.PlaceholderFormat(placeholder).
		Select(d.columns...).
		From(d.from)

	for _, c := range d.clauses {
		switch c.Op {
		case dataset.OpGtOrEq:
			qb = qb.Where(sq.GtOrEq{c.Column: c.Value})
		case dataset.OpLtOrEq:
			qb = qb.Where(sq.LtOrEq{c.Column: c.Value})
		default:
			qb = qb.Where(sq.Eq{c.Column: c.Value})
		}
	}

	if len(d.groupBy) > 0 {
		qb = qb.GroupBy(d.groupBy...)
	}
	if len(d.orderBy) > 0 {
		qb = qb.OrderBy(d.orderBy...)
	}
	// #nosec G115 -- limit is clamped to a positive range by the builder
	qb = qb.Limit(uint64(d.limit))

	return qb.ToSql()
}
