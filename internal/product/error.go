package product

import "storvbox-be/internal/apperr"

var (
	ErrProductNotFound    = apperr.New(apperr.KindNotFound, "Продуктът не е намерен")
	ErrDuplicateProduct   = apperr.New(apperr.KindConflict, "Продукт с този SKU или адрес вече съществува")
	ErrNothingToSet       = apperr.New(apperr.KindInvalidArgument, "Няма полета за промяна")
	ErrPublishUnavailable = apperr.New(apperr.KindInvalidState, "Публикуването в магазина не е конфигурирано")
	ErrAlreadyPublished   = apperr.New(apperr.KindInvalidState, "Продуктът вече е публикуван")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
