package tasks

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

// ProjectNone is the sentinel projectId filter value selecting tasks that
// have no project assigned.
const ProjectNone = "null"

// DefaultLimit is the page size used when the caller does not supply one.
const DefaultLimit = 50

// ListQuery is the full set of optional task-listing parameters. Nil/zero
// fields impose no constraint; all supplied filters combine as AND.
// The owner scope is not part of the query: it is always applied by the
// repository and can never be overridden by caller input.
type ListQuery struct {
	ProjectID *string
	Priority  *int
	Completed *bool
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// normalize clamps pagination inputs. Limit 0 is kept as-is: it is a valid
// degenerate page that returns no records but an accurate total.
func (q *ListQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 0 {
		q.Limit = DefaultLimit
	}
}

// sortColumns whitelists the sortable fields. Anything else falls back to
// creation time rather than reaching the database.
var sortColumns = map[string]string{
	"createdAt": "t.created_at",
	"updatedAt": "t.updated_at",
	"dueDate":   "t.due_date",
	"priority":  "t.priority",
	"title":     "t.title",
	"completed": "t.completed",
}

// conditions builds the conjunctive WHERE clause. The owner predicate always
// comes first and is unconditional.
func (q ListQuery) conditions(userID string) squirrel.And {
	conds := squirrel.And{squirrel.Eq{"t.user_id": userID}}

	if q.ProjectID != nil {
		if *q.ProjectID == ProjectNone {
			conds = append(conds, squirrel.Eq{"t.project_id": nil})
		} else {
			conds = append(conds, squirrel.Eq{"t.project_id": *q.ProjectID})
		}
	}

	if q.Priority != nil {
		conds = append(conds, squirrel.Eq{"t.priority": *q.Priority})
	}

	if q.Completed != nil {
		conds = append(conds, squirrel.Eq{"t.completed": *q.Completed})
	}

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"t.title": pattern},
			squirrel.ILike{"t.description": pattern},
		})
	}

	return conds
}

// orderClauses resolves the requested sort. The id tiebreak keeps the order
// stable across pages so rows are never skipped or duplicated.
func (q ListQuery) orderClauses() []string {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = sortColumns["createdAt"]
	}

	dir := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		dir = "ASC"
	}

	return []string{col + " " + dir, "t.id ASC"}
}

const taskColumns = `t.id, t.user_id, t.project_id, t.title, t.description, t.priority,
	t.due_date, t.completed, t.completed_at, t.tags, t.created_at, t.updated_at,
	p.name AS project_name, p.color AS project_color`

// BuildSelect produces the SQL for one page of matching tasks, with the
// referenced project's name and color joined in.
func BuildSelect(userID string, q ListQuery) (string, []any, error) {
	return squirrel.Select(taskColumns).
		From("tasks t").
		LeftJoin("projects p ON p.id = t.project_id").
		Where(q.conditions(userID)).
		OrderBy(q.orderClauses()...).
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Page-1) * uint64(q.Limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// BuildCount produces the SQL for the total matching-record count,
// evaluated before pagination.
func BuildCount(userID string, q ListQuery) (string, []any, error) {
	return squirrel.Select("COUNT(*)").
		From("tasks t").
		Where(q.conditions(userID)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}
