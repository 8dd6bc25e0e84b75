package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MethodBankTransfer = "bank_transfer"
)

var InstructionMap = map[string][]string{
	// ========================
	// BANK TRANSFER
	// ========================
	MethodBankTransfer: {
		"Влезте в онлайн банкирането си или посетете клон на банката",
		"Направете превод по IBAN {{iban}} на получател {{beneficiary}}",
		"Въведете сума {{amount}}",
		"В основанието за плащане посочете номер на поръчка {{reference}}",
		"Поръчката се обработва след постъпване на плащането",
	},
}

func GetInstructions(method string) []string {
	if steps, ok := InstructionMap[method]; ok {
		return steps
	}

	return []string{
		"Следвайте инструкциите за плащане, изпратени на имейла ви",
	}
}

type InstructionVars map[string]string

func InjectVariables(
	steps []string,
	vars InstructionVars,
) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(
				updated,
				"{{"+key+"}}",
				value,
			)
		}
		result = append(result, updated)
	}

	return result
}

// FormatAmount renders a major-unit amount the way it is printed on invoices.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + strings.ToUpper(currency)
}

// Build resolves the instructions for an order. Payment is confirmed by
// staff, nothing here talks to a bank.
func Build(bank BankAccount, method string, amount decimal.Decimal, reference string) Instructions {
	vars := InstructionVars{
		"iban":        bank.IBAN,
		"beneficiary": bank.Beneficiary,
		"amount":      FormatAmount(amount, bank.currency()),
		"reference":   reference,
	}

	return Instructions{
		Method:      method,
		IBAN:        bank.IBAN,
		Beneficiary: bank.Beneficiary,
		BankName:    bank.BankName,
		Amount:      amount.StringFixed(2),
		Currency:    strings.ToUpper(bank.currency()),
		Reference:   reference,
		Steps:       InjectVariables(GetInstructions(method), vars),
	}
}
