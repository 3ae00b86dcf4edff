package controller

import (
	"gorm.io/gorm"
)

type countRow struct {
	GroupKey string
	N        int64
}

// CountBy counts rows of model grouped by column for the given keys, in one
// query. scopes narrow the counted rows, e.g. to non deleted ones.
func CountBy(db *gorm.DB, model interface{}, column string, keys []string, scopes ...func(*gorm.DB) *gorm.DB) (map[string]int64, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := make(map[string]int64, len(keys))

	keys = Unique(keys)
	if len(keys) == 0 {
		return out, nil
	}

	var rows []countRow

	err := db.Model(model).
		Scopes(scopes...).
		Select(column+" AS group_key, COUNT(*) AS n").
		Where(column+" IN ?", keys).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		out[r.GroupKey] = r.N
	}

	return out, nil
}

// NotDeleted scopes a query to rows whose is_deleted flag is false.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}
