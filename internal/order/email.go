package order

import (
	"fmt"
	"strings"

	"storvbox-be/internal/notify"
	"storvbox-be/internal/payment"
)

func confirmationMessage(o *Order, in payment.Instructions) notify.Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Здравейте, %s!\n\n", o.UserName)
	fmt.Fprintf(&b, "Благодарим ви за поръчка %s.\n\n", o.OrderNumber)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s x %d = %s %s\n", it.Name, it.Quantity, it.Subtotal.StringFixed(2), in.Currency)
	}
	fmt.Fprintf(&b, "\nОбщо: %s %s\n\n", in.Amount, in.Currency)

	b.WriteString("Плащане по банков път:\n")
	for i, step := range in.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	return notify.Message{
		To:      o.UserEmail,
		ToName:  o.UserName,
		Subject: "Потвърждение на поръчка " + o.OrderNumber,
		Text:    b.String(),
	}
}

func staffOrderMessage(o *Order, to string) notify.Message {
	text := fmt.Sprintf("Нова поръчка %s от %s <%s>\nОбщо: %s\nДоставка: %s, %s\n",
		o.OrderNumber, o.UserName, o.UserEmail, o.Total.StringFixed(2),
		o.DeliveryMethod, o.ShippingAddress.City,
	)
	if o.HasBackorder {
		text += "Поръчката съдържа продукти по заявка.\n"
	}

	return notify.Message{
		To:      to,
		Subject: "Нова поръчка " + o.OrderNumber,
		Text:    text,
	}
}
