package user

import (
	"regexp"

	"storvbox-be/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	upperRegex = regexp.MustCompile(`[A-Z]`)
	lowerRegex = regexp.MustCompile(`[a-z]`)
	digitRegex = regexp.MustCompile(`[0-9]`)
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validateRegister(in RegisterInput) error {
	var v utils.Validator

	v.Length(in.Name, 2, 100, "name", "Името трябва да е между 2 и 100 символа")
	v.Check(utils.IsEmail(in.Email), "email", "Невалиден имейл адрес")

	v.Check(len(in.Password) >= 8, "password", "Паролата трябва да е поне 8 символа")
	v.Check(upperRegex.MatchString(in.Password), "password", "Паролата трябва да съдържа главна буква")
	v.Check(lowerRegex.MatchString(in.Password), "password", "Паролата трябва да съдържа малка буква")
	v.Check(digitRegex.MatchString(in.Password), "password", "Паролата трябва да съдържа цифра")

	if in.Phone != nil && *in.Phone != "" {
		v.Check(utils.IsPhone(*in.Phone), "phone", "Невалиден телефонен номер")
	}
	if in.Company != nil {
		v.Length(*in.Company, 0, 200, "company", "Името на фирмата е твърде дълго")
	}

	return v.Err()
}
