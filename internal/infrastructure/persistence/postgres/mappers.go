package postgres

import (
	"fmt"

	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/shopspring/decimal"
)

func toPaymentModel(p *domain.Payment) PaymentModel {
	return PaymentModel{
		Reference:   p.Reference,
		Amount:      p.Amount.String(),
		Currency:    p.Currency,
		Method:      string(p.Method),
		Status:      string(p.Status),
		Metadata:    p.Metadata,
		Description: p.Description,
		BookingRef:  p.BookingRef,
		CreatedAt:   p.CreatedAt,
		ProcessedAt: p.ProcessedAt,
	}
}

func toPaymentDomain(m PaymentModel) (*domain.Payment, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse payment amount %q: %w", m.Amount, err)
	}
	return &domain.Payment{
		Reference:   m.Reference,
		Amount:      amount,
		Currency:    m.Currency,
		Method:      domain.PaymentMethod(m.Method),
		Status:      domain.PaymentStatus(m.Status),
		Metadata:    domain.Metadata(m.Metadata),
		Description: m.Description,
		BookingRef:  m.BookingRef,
		CreatedAt:   m.CreatedAt,
		ProcessedAt: m.ProcessedAt,
	}, nil
}

func toBookingModel(b *domain.Booking) BookingModel {
	return BookingModel{
		Reference:     b.Reference,
		DestinationID: b.DestinationID,
		Participants:  b.Participants,
		PricePerson:   b.PricePerson.String(),
		TotalAmount:   b.TotalAmount.String(),
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
	}
}

func toBookingDomain(m BookingModel) (*domain.Booking, error) {
	pricePerson, err := decimal.NewFromString(m.PricePerson)
	if err != nil {
		return nil, fmt.Errorf("parse booking price %q: %w", m.PricePerson, err)
	}
	total, err := decimal.NewFromString(m.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("parse booking total %q: %w", m.TotalAmount, err)
	}
	return &domain.Booking{
		Reference:     m.Reference,
		DestinationID: m.DestinationID,
		Participants:  m.Participants,
		PricePerson:   pricePerson,
		TotalAmount:   total,
		Status:        domain.BookingStatus(m.Status),
		CreatedAt:     m.CreatedAt,
	}, nil
}

func toPurchaseModel(tp *domain.TicketPurchase) TicketPurchaseModel {
	return TicketPurchaseModel{
		PurchaseID:       tp.PurchaseID,
		TicketID:         tp.TicketID,
		Quantity:         tp.Quantity,
		UnitPrice:        tp.UnitPrice.String(),
		TotalAmount:      tp.TotalAmount.String(),
		Status:           string(tp.Status),
		PaymentReference: tp.PaymentReference,
		CustomerName:     tp.CustomerName,
		CustomerEmail:    tp.CustomerEmail,
		CustomerPhone:    tp.CustomerPhone,
		SpecialRequests:  tp.SpecialRequests,
		CreatedAt:        tp.CreatedAt,
	}
}

func toPurchaseDomain(m TicketPurchaseModel) (*domain.TicketPurchase, error) {
	unitPrice, err := decimal.NewFromString(m.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("parse purchase unit price %q: %w", m.UnitPrice, err)
	}
	total, err := decimal.NewFromString(m.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("parse purchase total %q: %w", m.TotalAmount, err)
	}
	return &domain.TicketPurchase{
		PurchaseID:       m.PurchaseID,
		TicketID:         m.TicketID,
		Quantity:         m.Quantity,
		UnitPrice:        unitPrice,
		TotalAmount:      total,
		Status:           domain.PurchaseStatus(m.Status),
		PaymentReference: m.PaymentReference,
		CustomerName:     m.CustomerName,
		CustomerEmail:    m.CustomerEmail,
		CustomerPhone:    m.CustomerPhone,
		SpecialRequests:  m.SpecialRequests,
		CreatedAt:        m.CreatedAt,
	}, nil
}

func toTierDomain(m PricingTierModel) (domain.PricingTier, error) {
	pricePerson, err := decimal.NewFromString(m.PricePerson)
	if err != nil {
		return domain.PricingTier{}, fmt.Errorf("parse tier price %q: %w", m.PricePerson, err)
	}
	return domain.PricingTier{
		ID:            m.ID,
		DestinationID: m.DestinationID,
		MinPeople:     m.MinPeople,
		MaxPeople:     m.MaxPeople,
		PricePerson:   pricePerson,
	}, nil
}
