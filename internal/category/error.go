package category

import "storvbox-be/internal/apperr"

var (
	ErrSlugExists = apperr.New(apperr.KindConflict, "Категория с този адрес вече съществува")

	PgUniqueViolation = "23505"
)
