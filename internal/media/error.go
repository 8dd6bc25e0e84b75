package media

import "storvbox-be/internal/apperr"

var (
	ErrNoFile          = apperr.New(apperr.KindValidation, "Не е избран файл")
	ErrUnsupportedType = apperr.New(apperr.KindValidation, "Позволени са само JPEG, PNG и WebP изображения")
	ErrTooLarge        = apperr.New(apperr.KindValidation, "Файлът е твърде голям. Максимум 10MB")
)
