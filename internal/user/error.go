package user

import "storvbox-be/internal/apperr"

var (
	ErrEmailExists  = apperr.New(apperr.KindConflict, "Потребител с този имейл вече съществува")
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "Потребителят не е намерен")
	ErrInvalidRole  = apperr.New(apperr.KindInvalidArgument, "Невалидна роля")
	ErrInvalidTier  = apperr.New(apperr.KindInvalidArgument, "Невалидно ценово ниво")
	ErrNothingToSet = apperr.New(apperr.KindInvalidArgument, "Няма полета за промяна")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
