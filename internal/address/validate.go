package address

import (
	"storvbox-be/internal/utils"
)

// Validate checks the fields required by the delivery method. Courier
// delivery needs the full address; pickup only a name and a phone.
// An empty method is treated as courier.
func Validate(a ShippingAddress, method DeliveryMethod) error {
	var v utils.Validator

	if method == "" {
		method = DeliveryCourier
	}
	v.Check(method.Valid(), "deliveryMethod", "Невалиден метод на доставка")

	v.Length(a.FullName, 2, 100, "fullName", "Моля, въведете име и фамилия")
	v.Required(a.Phone, "phone", "Телефонът е задължителен")
	if a.Phone != "" {
		v.Check(utils.IsPhone(a.Phone), "phone", "Невалиден телефонен номер")
	}

	if method == DeliveryCourier {
		v.Required(a.AddressLine, "address", "Адресът е задължителен")
		v.Required(a.City, "city", "Градът е задължителен")
		v.Required(a.PostalCode, "postalCode", "Пощенският код е задължителен")
		if a.PostalCode != "" {
			v.Check(utils.IsPostalCode(a.PostalCode), "postalCode", "Невалиден пощенски код")
		}
	}

	return v.Err()
}
