package domain

type AccessState string

const (
	AccessExpired          AccessState = "expired"
	AccessPasswordRequired AccessState = "password_required"
	AccessPaymentRequired  AccessState = "payment_required"
	AccessGranted          AccessState = "granted"
)

// AccessDecision - результат проверки доступа к расшаренному файлу.
// FileURL заполняется только при state = granted,
// Price и FeePercent - только при state = payment_required.
type AccessDecision struct {
	State             AccessState `json:"state"`
	Name              string      `json:"name"`
	Type              ItemType    `json:"type"`
	PasswordProtected bool        `json:"password_protected"`
	Paid              bool        `json:"paid"`
	Price             int64       `json:"price,omitempty"`
	PriceDisplay      string      `json:"price_display,omitempty"`
	FeePercent        int64       `json:"fee_percent,omitempty"`
	FileURL           string      `json:"file_url,omitempty"`
}
