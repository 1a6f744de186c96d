package flight

import (
	"encoding/json"
	"fmt"
)

// TicketData is the decoded content of a Flight ticket: the id of the
// dataset a DoGet call should stream. Canonical encoding is JSON bytes
// matching this struct; raw UTF-8 id bytes are also accepted.
type TicketData struct {
	DatasetID string `json:"dataset_id"`
}

// EncodeTicket produces the canonical JSON ticket bytes for datasetID.
func EncodeTicket(datasetID string) ([]byte, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("dataset id cannot be empty")
	}
	data, err := json.Marshal(TicketData{DatasetID: datasetID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}
	return data, nil
}

// DecodeTicket parses ticket bytes into a dataset id. It accepts either
// JSON `{"dataset_id": "..."}` or the raw id as UTF-8 bytes.
func DecodeTicket(ticketBytes []byte) (*TicketData, error) {
	if len(ticketBytes) == 0 {
		return nil, fmt.Errorf("%w: ticket is empty", ErrInvalidTicket)
	}

	var ticket TicketData
	if err := json.Unmarshal(ticketBytes, &ticket); err == nil && ticket.DatasetID != "" {
		return &ticket, nil
	}

	return &TicketData{DatasetID: string(ticketBytes)}, nil
}
