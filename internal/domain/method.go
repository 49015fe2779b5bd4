package domain

// PaymentMethod is the closed enumeration of accepted checkout methods.
// Validation happens in exactly one place (ParsePaymentMethod); handlers
// and services never re-check raw strings.
type PaymentMethod string

const (
	MethodMTNMomo         PaymentMethod = "mtn_momo"
	MethodVodafoneCash    PaymentMethod = "vodafone_cash"
	MethodAirtelTigoMoney PaymentMethod = "airteltigo_money"
	MethodStripe          PaymentMethod = "stripe"
	MethodPaystackMomo    PaymentMethod = "paystack_momo"
	MethodMomo            PaymentMethod = "momo"
	MethodCard            PaymentMethod = "card"
)

var paymentMethods = map[PaymentMethod]struct{}{
	MethodMTNMomo:         {},
	MethodVodafoneCash:    {},
	MethodAirtelTigoMoney: {},
	MethodStripe:          {},
	MethodPaystackMomo:    {},
	MethodMomo:            {},
	MethodCard:            {},
}

// ParsePaymentMethod validates a raw method string against the whitelist.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(raw)
	if !m.Valid() {
		return "", ErrUnknownPaymentMethod
	}
	return m, nil
}

func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethods[m]
	return ok
}

// MobileMoney reports whether the method settles through a mobile-money
// channel. Card-style methods settle synchronously at the gateway and are
// never simulated.
func (m PaymentMethod) MobileMoney() bool {
	switch m {
	case MethodMTNMomo, MethodVodafoneCash, MethodAirtelTigoMoney, MethodPaystackMomo, MethodMomo:
		return true
	default:
		return false
	}
}

func (m PaymentMethod) String() string {
	return string(m)
}
