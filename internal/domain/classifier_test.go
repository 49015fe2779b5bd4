package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sankofatravel/booking-engine/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		description string
		metadata    domain.Metadata
		want        domain.BookingKind
	}{
		{
			name:     "explicit ticket type wins",
			metadata: domain.Metadata{"type": "ticket"},
			want:     domain.KindTicket,
		},
		{
			name:     "explicit destination type wins",
			metadata: domain.Metadata{"type": "destination"},
			want:     domain.KindDestination,
		},
		{
			name:        "explicit type beats contradicting description",
			description: "Kakum National Park tour",
			metadata:    domain.Metadata{"type": "ticket"},
			want:        domain.KindTicket,
		},
		{
			name:     "ticketType key",
			metadata: domain.Metadata{"ticketType": "vip"},
			want:     domain.KindTicket,
		},
		{
			name:     "ticketReference key",
			metadata: domain.Metadata{"ticketReference": "TR-1"},
			want:     domain.KindTicket,
		},
		{
			name:     "eventDetails key",
			metadata: domain.Metadata{"eventDetails": map[string]any{"venue": "Accra"}},
			want:     domain.KindTicket,
		},
		{
			name:     "ticket object key",
			metadata: domain.Metadata{"ticket": map[string]any{"id": float64(3)}},
			want:     domain.KindTicket,
		},
		{
			name: "ticket keys beat destination object",
			metadata: domain.Metadata{
				"ticketType":  "regular",
				"destination": map[string]any{"id": float64(1)},
			},
			want: domain.KindTicket,
		},
		{
			name:     "destination object",
			metadata: domain.Metadata{"destination": map[string]any{"id": float64(1), "name": "Cape Coast"}},
			want:     domain.KindDestination,
		},
		{
			name: "ticket key inside booking_details",
			metadata: domain.Metadata{
				"booking_details": map[string]any{"ticketType": "vip"},
			},
			want: domain.KindTicket,
		},
		{
			name:        "ticket purchase description prefix",
			description: "Ticket Purchase: Jazz Night (2 tickets)",
			want:        domain.KindTicket,
		},
		{
			name:        "concert keyword",
			description: "Stonebwoy concert admission",
			want:        domain.KindTicket,
		},
		{
			name:        "destination keyword",
			description: "Weekend at Kokrobite beach",
			want:        domain.KindDestination,
		},
		{
			name:        "ticket keywords beat destination keywords",
			description: "Festival at the lake",
			want:        domain.KindTicket,
		},
		{
			name:        "keyword match is case-insensitive",
			description: "CAPE COAST CASTLE HERITAGE WALK",
			want:        domain.KindDestination,
		},
		{
			name:        "no signal at all",
			description: "payment",
			want:        domain.KindUnknown,
		},
		{
			name: "unrecognized explicit type falls through",
			metadata: domain.Metadata{
				"type":        "voucher",
				"destination": map[string]any{"id": float64(2)},
			},
			want: domain.KindDestination,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.Classify(tc.description, tc.metadata)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	md := domain.Metadata{"destination": map[string]any{"id": float64(5)}}
	first := domain.Classify("Aburi gardens tour", md)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, domain.Classify("Aburi gardens tour", md))
	}
}
