package cart

import (
	"errors"

	"storvbox-be/internal/apperr"
)

var (
	// -- Validation & Input --
	ErrMissingProduct     = apperr.New(apperr.KindValidation, "Изберете продукт")
	ErrProductUnavailable = apperr.New(apperr.KindValidation, "Продуктът не е наличен")
	ErrUnknownVariant     = apperr.New(apperr.KindValidation, "Невалиден вариант на продукта")

	// -- Resource State --
	ErrLineItemNotFound = apperr.New(apperr.KindNotFound, "Артикулът не е в количката")

	// ErrCartNotFound comes from Repository.Get only. The service answers it
	// with a fresh or empty cart.
	ErrCartNotFound = errors.New("cart not found")
)
