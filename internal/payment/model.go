package payment

const defaultCurrency = "BGN"

// BankAccount is the store's receiving account, loaded from config.
type BankAccount struct {
	IBAN        string
	Beneficiary string
	BankName    string
	Currency    string
}

func (b BankAccount) currency() string {
	if b.Currency == "" {
		return defaultCurrency
	}
	return b.Currency
}

type Instructions struct {
	Method      string   `json:"method"`
	IBAN        string   `json:"iban"`
	Beneficiary string   `json:"beneficiary"`
	BankName    string   `json:"bankName,omitempty"`
	Amount      string   `json:"amount"`
	Currency    string   `json:"currency"`
	Reference   string   `json:"reference"`
	Steps       []string `json:"steps"`
}
