package domain

import "strings"

// BookingKind is the classifier's verdict about what a successful payment
// should materialize into.
type BookingKind string

const (
	KindDestination BookingKind = "destination"
	KindTicket      BookingKind = "ticket"
	KindUnknown     BookingKind = "unknown"
)

// The classifier is a best-effort heuristic over unreliable signals. The
// rule order below is a behavioral contract: first match wins, and
// reordering changes observed outcomes. Keyword lists are observed policy,
// not verified business intent.

var ticketMetadataKeys = []string{"ticketType", "ticketReference", "eventDetails", "ticket"}

var ticketKeywords = []string{"ticket purchase:", "event", "concert", "festival", "show", "performance"}

var destinationKeywords = []string{
	"tour", "park", "beach", "mountain", "castle", "heritage",
	"safari", "lake", "waterfall", "island", "resort",
}

type classifierRule struct {
	name  string
	match func(description string, md Metadata) BookingKind
}

var classifierRules = []classifierRule{
	{name: "explicit-type", match: matchExplicitType},
	{name: "ticket-keys", match: matchTicketKeys},
	{name: "destination-object", match: matchDestinationObject},
	{name: "description-keywords", match: matchDescriptionKeywords},
}

// Classify decides whether a payment is a destination booking or a ticket
// purchase. Deterministic: same inputs always produce the same kind.
func Classify(description string, md Metadata) BookingKind {
	for _, rule := range classifierRules {
		if kind := rule.match(description, md); kind != KindUnknown {
			return kind
		}
	}
	return KindUnknown
}

func matchExplicitType(_ string, md Metadata) BookingKind {
	typ, ok := md.StringValue("type")
	if !ok {
		return KindUnknown
	}
	switch typ {
	case "ticket":
		return KindTicket
	case "destination":
		return KindDestination
	}
	return KindUnknown
}

func matchTicketKeys(_ string, md Metadata) BookingKind {
	for _, key := range ticketMetadataKeys {
		if _, ok := md.Value(key); ok {
			return KindTicket
		}
	}
	return KindUnknown
}

func matchDestinationObject(_ string, md Metadata) BookingKind {
	if v, ok := md.Value("destination"); ok && v != nil {
		return KindDestination
	}
	return KindUnknown
}

func matchDescriptionKeywords(description string, _ Metadata) BookingKind {
	desc := strings.ToLower(description)
	for _, kw := range ticketKeywords {
		if strings.Contains(desc, kw) {
			return KindTicket
		}
	}
	for _, kw := range destinationKeywords {
		if strings.Contains(desc, kw) {
			return KindDestination
		}
	}
	return KindUnknown
}
