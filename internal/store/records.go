package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vitralis/atelier-manager/internal/dependency"
	"github.com/vitralis/atelier-manager/internal/entity"
)

// fieldPattern limits JSON paths to what can be spliced into a JSON_EXTRACT
// expression. Anything else is an unsupported aggregate shape.
var fieldPattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)

func jsonPath(field string) (string, error) {
	if !fieldPattern.MatchString(field) {
		return "", fmt.Errorf("field %q: %w", field, dependency.ErrUnsupported)
	}
	return "$." + field, nil
}

// filterSQL translates filters into WHERE clauses over the JSON payload.
// Timestamps compare as RFC3339 UTC strings, numbers through a DECIMAL cast.
func filterSQL(filters []entity.Filter) ([]string, map[string]any, error) {
	clauses := make([]string, 0, len(filters))
	params := map[string]any{}
	for i, f := range filters {
		path, err := jsonPath(f.Field)
		if err != nil {
			return nil, nil, err
		}
		name := fmt.Sprintf("f%d", i)
		expr := fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(data, '%s'))", path)
		switch f.Op {
		case entity.OpEq:
			clauses = append(clauses, fmt.Sprintf("%s = :%s", expr, name))
			params[name] = sqlValue(f.Value)
		case entity.OpIn:
			values, ok := f.Value.([]string)
			if !ok || len(values) == 0 {
				return nil, nil, fmt.Errorf("in filter on %q: %w", f.Field, dependency.ErrUnsupported)
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (:%s)", expr, name))
			params[name] = values
		case entity.OpGte, entity.OpLt:
			op := ">="
			if f.Op == entity.OpLt {
				op = "<"
			}
			if _, isTime := f.Value.(time.Time); !isTime {
				expr = fmt.Sprintf("CAST(JSON_EXTRACT(data, '%s') AS DECIMAL(20, 6))", path)
			}
			clauses = append(clauses, fmt.Sprintf("%s %s :%s", expr, op, name))
			params[name] = sqlValue(f.Value)
		default:
			return nil, nil, fmt.Errorf("op %q: %w", f.Op, dependency.ErrUnsupported)
		}
	}
	return clauses, params, nil
}

func sqlValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339)
	}
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	return v
}

func (ms *MYSQLStore) Count(ctx context.Context, collection string, filters []entity.Filter) (int, error) {
	clauses, params, err := filterSQL(filters)
	if err != nil {
		return 0, err
	}
	params["collection"] = collection
	query := `SELECT COUNT(*) AS cnt FROM document WHERE collection = :collection`
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
	}
	type row struct {
		Cnt int `db:"cnt"`
	}
	r, err := QueryNamedOne[row](ctx, ms.db, query, params)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return r.Cnt, nil
}

func (ms *MYSQLStore) SumField(ctx context.Context, collection, field string, filters []entity.Filter) (decimal.Decimal, error) {
	path, err := jsonPath(field)
	if err != nil {
		return decimal.Zero, err
	}
	clauses, params, err := filterSQL(filters)
	if err != nil {
		return decimal.Zero, err
	}
	params["collection"] = collection
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(CAST(JSON_EXTRACT(data, '%s') AS DECIMAL(20, 6))), 0) AS total
		FROM document WHERE collection = :collection`, path)
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
	}
	type row struct {
		Total decimal.Decimal `db:"total"`
	}
	r, err := QueryNamedOne[row](ctx, ms.db, query, params)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum %s.%s: %w", collection, field, err)
	}
	return r.Total, nil
}

type docRow struct {
	DocId string `db:"doc_id"`
	Data  []byte `db:"data"`
}

func (r docRow) record() (entity.Record, error) {
	rec := entity.Record{}
	if err := json.Unmarshal(r.Data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal document %s: %w", r.DocId, err)
	}
	if rec.ID() == "" {
		rec["id"] = r.DocId
	}
	return rec, nil
}

func (ms *MYSQLStore) Scan(ctx context.Context, collection string, filters ...entity.Filter) ([]entity.Record, error) {
	clauses, params, err := filterSQL(filters)
	if err != nil {
		return nil, err
	}
	params["collection"] = collection
	query := `SELECT doc_id, data FROM document WHERE collection = :collection`
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at"
	rows, err := QueryListNamed[docRow](ctx, ms.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	records := make([]entity.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			// tolerate individual malformed payloads, the engine
			// normalizes per field anyway
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (ms *MYSQLStore) Recent(ctx context.Context, collection, timeField string, limit int) ([]entity.Record, error) {
	path, err := jsonPath(timeField)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`
		SELECT doc_id, data FROM document
		WHERE collection = :collection AND JSON_EXTRACT(data, '%s') IS NOT NULL
		ORDER BY JSON_UNQUOTE(JSON_EXTRACT(data, '%s')) DESC
		LIMIT :lim`, path, path)
	rows, err := QueryListNamed[docRow](ctx, ms.db, query, map[string]any{
		"collection": collection,
		"lim":        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("recent %s by %s: %w", collection, timeField, err)
	}
	records := make([]entity.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (ms *MYSQLStore) Get(ctx context.Context, collection, id string) (entity.Record, error) {
	query := `SELECT doc_id, data FROM document WHERE collection = :collection AND doc_id = :id`
	r, err := QueryNamedOne[docRow](ctx, ms.db, query, map[string]any{
		"collection": collection,
		"id":         id,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dependency.ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return r.record()
}

func (ms *MYSQLStore) Insert(ctx context.Context, collection, id string, doc entity.Record) (string, error) {
	if id == "" {
		id = doc.ID()
	}
	if id == "" {
		id = uuid.NewString()
	}
	if doc.ID() == "" {
		doc["id"] = id
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	query := `
		INSERT INTO document (collection, doc_id, data)
		VALUES (:collection, :id, :data)
		ON DUPLICATE KEY UPDATE data = VALUES(data)`
	if err := ExecNamed(ctx, ms.db, query, map[string]any{
		"collection": collection,
		"id":         id,
		"data":       data,
	}); err != nil {
		return "", fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	return id, nil
}
