package consumer

import (
	"github.com/matthinz/idv-journey-analytics/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into events
type MessageParser interface {
	Parse(body []byte) (*domain.EventRecord, error)
}
