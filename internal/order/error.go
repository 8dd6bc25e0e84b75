package order

import "storvbox-be/internal/apperr"

var (
	ErrOrderNotFound  = apperr.New(apperr.KindNotFound, "Поръчката не е намерена")
	ErrEmptyCart      = apperr.New(apperr.KindValidation, "Количката е празна")
	ErrInvalidStatus  = apperr.New(apperr.KindInvalidArgument, "Невалиден статус")
	ErrNotCancellable = apperr.New(apperr.KindInvalidState, "Поръчката не може да бъде отказана в текущия си статус")
	ErrReasonRequired = apperr.New(apperr.KindValidation, "Причината за анулиране е задължителна")
	ErrNothingToSet   = apperr.New(apperr.KindValidation, "Няма промени за запис")
)
