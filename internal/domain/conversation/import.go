package conversation

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Accepted timestamp layouts in transcript exports, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
}

// ImportCSV parses a spreadsheet-service CSV export of WhatsApp-style
// transcripts into conversations grouped by normalized phone number.
// Rows missing a phone, a message or a readable date are skipped; the
// count of skipped rows is returned alongside the conversations.
func ImportCSV(r io.Reader) ([]Conversation, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("reading transcript csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}

	cols, ok := mapHeader(rows[0])
	if !ok {
		return nil, 0, ErrMissingColumns
	}

	byPhone := map[string]*Conversation{}
	var order []string
	skipped := 0

	for _, row := range rows[1:] {
		phone, msg, ok := readRow(row, cols)
		if !ok {
			skipped++
			continue
		}

		conv, seen := byPhone[phone]
		if !seen {
			conv = &Conversation{Phone: phone}
			byPhone[phone] = conv
			order = append(order, phone)
		}
		if conv.Contact == "" && cols.contact >= 0 && cols.contact < len(row) {
			conv.Contact = strings.TrimSpace(row[cols.contact])
		}
		conv.Messages = append(conv.Messages, msg)
	}

	conversations := make([]Conversation, 0, len(order))
	for _, phone := range order {
		conv := byPhone[phone]
		sort.SliceStable(conv.Messages, func(i, j int) bool {
			return conv.Messages[i].SentAt.Before(conv.Messages[j].SentAt)
		})
		conversations = append(conversations, *conv)
	}

	return conversations, skipped, nil
}

type columns struct {
	phone     int
	body      int
	date      int
	direction int
	contact   int
}

func mapHeader(header []string) (columns, bool) {
	cols := columns{phone: -1, body: -1, date: -1, direction: -1, contact: -1}
	for i, raw := range header {
		switch name := strings.ToLower(strings.TrimSpace(raw)); {
		case cols.phone < 0 && (strings.Contains(name, "phone") || strings.Contains(name, "address") || name == "from"):
			cols.phone = i
		case cols.body < 0 && (strings.Contains(name, "message") || strings.Contains(name, "body") || strings.Contains(name, "text")):
			cols.body = i
		case cols.date < 0 && (strings.Contains(name, "date") || strings.Contains(name, "time")):
			cols.date = i
		case cols.direction < 0 && (strings.Contains(name, "direction") || strings.Contains(name, "fromme") || strings.Contains(name, "type")):
			cols.direction = i
		case cols.contact < 0 && (strings.Contains(name, "name") || strings.Contains(name, "contact")):
			cols.contact = i
		}
	}
	return cols, cols.phone >= 0 && cols.body >= 0 && cols.date >= 0
}

func readRow(row []string, cols columns) (string, Message, bool) {
	if cols.phone >= len(row) || cols.body >= len(row) || cols.date >= len(row) {
		return "", Message{}, false
	}

	phone := NormalizePhone(row[cols.phone])
	body := strings.TrimSpace(row[cols.body])
	if phone == "" || body == "" {
		return "", Message{}, false
	}

	sentAt, ok := parseTimestamp(row[cols.date])
	if !ok {
		return "", Message{}, false
	}

	outbound := false
	if cols.direction >= 0 && cols.direction < len(row) {
		switch strings.ToLower(strings.TrimSpace(row[cols.direction])) {
		case "out", "outbound", "true", "sent", "me":
			outbound = true
		}
	}

	return phone, Message{Body: body, SentAt: sentAt, Outbound: outbound}, true
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizePhone extracts the digits of a WhatsApp-style address such as
// "whatsapp:+52 1 555 123 4567@c.us". Long international forms collapse
// to the last ten digits so the same contact groups under one key.
func NormalizePhone(raw string) string {
	if at := strings.IndexByte(raw, '@'); at >= 0 {
		raw = raw[:at]
	}
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if len(s) > 10 {
		s = s[len(s)-10:]
	}
	return s
}
