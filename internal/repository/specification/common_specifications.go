package specification

import (
	"fmt"

	"gorm.io/gorm"
)

// ByID filters by primary key
type ByID struct {
	ID int64
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OrderBy applies ordering. Several OrderBy specs chain in the order given.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Newest orders by creation time descending, ties broken by id.
func Newest() []Specification {
	return []Specification{
		OrderBy{Field: "created_at", Desc: true},
		OrderBy{Field: "id", Desc: true},
	}
}

// Oldest orders by creation time ascending, ties broken by id.
func Oldest() []Specification {
	return []Specification{
		OrderBy{Field: "created_at"},
		OrderBy{Field: "id"},
	}
}
