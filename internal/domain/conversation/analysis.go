package conversation

import (
	"sort"
	"time"
)

const topContactLimit = 5

// Analyze computes the summary used by the conversation report: message
// counts per direction, the busiest hour of day and the most active
// contacts.
func Analyze(conversations []Conversation, now time.Time) Analysis {
	a := Analysis{
		Conversations: len(conversations),
		GeneratedAt:   now,
	}

	var hours [24]int
	counts := make([]ContactCount, 0, len(conversations))

	for _, conv := range conversations {
		cc := ContactCount{Phone: conv.Phone, Contact: conv.Contact}
		for _, msg := range conv.Messages {
			a.TotalMessages++
			cc.Messages++
			if msg.Outbound {
				a.Outbound++
			} else {
				a.Inbound++
			}
			hours[msg.SentAt.Hour()]++
		}
		if cc.Messages > 0 {
			counts = append(counts, cc)
		}
	}

	for h, n := range hours {
		if n > hours[a.BusiestHour] {
			a.BusiestHour = h
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Messages > counts[j].Messages
	})
	if len(counts) > topContactLimit {
		counts = counts[:topContactLimit]
	}
	a.TopContacts = counts

	return a
}
