package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
	"dealcore/internal/filter"
)

// searchQueries holds one pre-built WHERE clause per supported variant of a
// filter family. Clauses are assembled once, at package init.
type searchQueries struct {
	family *filter.Family
	order  []filter.Dimension
	byVar  map[filter.Variant]string
}

func newSearchQueries(f *filter.Family, order []filter.Dimension, preds map[filter.Dimension]string) *searchQueries {
	sq := &searchQueries{family: f, order: order, byVar: map[filter.Variant]string{}}
	for _, v := range f.Supported() {
		var clauses []string
		for _, d := range order {
			if v.Has(d) {
				clauses = append(clauses, preds[d])
			}
		}
		sq.byVar[v] = strings.Join(clauses, " AND ")
	}
	return sq
}

// where returns base extended with the variant's clause and the variant's
// arguments appended to baseArgs.
func (sq *searchQueries) where(q filter.Query, base string, baseArgs ...any) (string, []any, error) {
	clause, ok := sq.byVar[q.Variant]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s has no query for %s", filter.ErrUnanticipated, sq.family.Name, q.Key)
	}
	w := base
	if clause != "" {
		w += " AND " + clause
	}
	return w, append(baseArgs, q.Args(sq.order...)...), nil
}

const (
	predContains = `LIKE '%,' || ? || ',%'`
	likeSearch   = `LIKE '%' || LOWER(?) || '%'`
)

// JoinIDs encodes a multi-value column as ",a,b,".
func JoinIDs(ids []string) string {
	if len(ids) == 0 {
		return ","
	}
	return "," + strings.Join(ids, ",") + ","
}

// SplitIDs decodes a JoinIDs value.
func SplitIDs(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinNames renders display names for an index row.
func JoinNames(names []string) string { return strings.Join(names, ", ") }

// patchOwnerDisplay rewrites the cached owner snapshot on every row of table
// that references ownerID. Every index table shares these column names.
func patchOwnerDisplay(ctx context.Context, q sqlx.ExtContext, table, ownerID string, d domain.OwnerDisplay, now domain.Time) (int64, error) {
	res, err := exec(ctx, q, `
  UPDATE `+table+`
  SET owner_name = ?, owner_image = ?, owner_approval_status = ?, owner_active = ?, updated_at = ?
  WHERE owner_id = ?`, d.Name, d.Image, d.ApprovalStatus, d.Active, now, ownerID)
	if err != nil {
		return 0, fmt.Errorf("patch %s owner %s: %w", table, ownerID, err)
	}
	return res.RowsAffected()
}

func count(ctx context.Context, q sqlx.ExtContext, from string, args ...any) (int, error) {
	var n int
	err := get(ctx, q, &n, `SELECT COUNT(*) FROM `+from, args...)
	return n, err
}
