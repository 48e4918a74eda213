package sqldb

import "context"

// clearOrder deletes children before parents.
var clearOrder = []string{
	"memories",
	"translated_entities",
	"translations",
	"entities",
	"translated_resources",
	"resources",
	"project_locales",
	"projects",
	"locales",
	"users",
}

// DeleteAll empties every domain table.
func (q *Queries) DeleteAll(ctx context.Context) error {
	for _, table := range clearOrder {
		if _, err := q.exec(ctx, q.sb.Delete(table)); err != nil {
			return err
		}
	}
	return nil
}
