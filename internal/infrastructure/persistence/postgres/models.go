package postgres

import "time"

// Row models. Decimal columns travel as strings between pgx and the
// domain's decimal type.

type PaymentModel struct {
	Reference   string
	Amount      string
	Currency    string
	Method      string
	Status      string
	Metadata    map[string]any
	Description string
	BookingRef  *string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type BookingModel struct {
	Reference     string
	DestinationID int64
	Participants  int
	PricePerson   string
	TotalAmount   string
	Status        string
	CreatedAt     time.Time
}

type TicketPurchaseModel struct {
	PurchaseID       string
	TicketID         int64
	Quantity         int
	UnitPrice        string
	TotalAmount      string
	Status           string
	PaymentReference *string
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	SpecialRequests  string
	CreatedAt        time.Time
}

type TicketCodeModel struct {
	Code       string
	PurchaseID string
	Status     string
	UsedAt     *time.Time
}

type PricingTierModel struct {
	ID            int64
	DestinationID int64
	MinPeople     int
	MaxPeople     *int
	PricePerson   string
}
