package devserver

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/catalog"
)

// Reply is a canned evaluation with the status hints the real service
// would attach.
type Reply struct {
	Text      string
	WebLookup bool
	Retrieval bool
}

var webLookupWords = []string{"latest", "news", "market", "competitor", "trend", "today"}

var retrievalWords = []string{"policy", "handbook", "guideline", "process", "compliance", "playbook"}

var feedback = []string{
	"State the trade-off you are accepting and who carries its cost.",
	"Back the claim with one number your audience already trusts.",
	"Name the risk of doing nothing, not only the risk of acting.",
	"Tie the proposal to a goal this audience is measured on.",
	"Say what you will stop doing to make room for this.",
	"Give a first step small enough to start this week.",
}

// Answer returns a deterministic review of query for level. The same input
// always yields the same reply.
func Answer(level catalog.Level, query string) Reply {
	lower := strings.ToLower(query)
	r := Reply{
		WebLookup: containsAny(lower, webLookupWords),
		Retrieval: containsAny(lower, retrievalWords),
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(lower))
	first := int(h.Sum32() % uint32(len(feedback)))
	second := (first + 1 + level.ID) % len(feedback)
	if second == first {
		second = (first + 1) % len(feedback)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s review**\n\n", level.Title)
	fmt.Fprintf(&b, "You argued: _%s_\n\n", strings.TrimSpace(query))
	fmt.Fprintf(&b, "- %s\n- %s\n", feedback[first], feedback[second])
	switch {
	case r.WebLookup:
		b.WriteString("\nRecent public information was considered for this review.\n")
	case r.Retrieval:
		b.WriteString("\nInternal reference material was considered for this review.\n")
	}
	r.Text = b.String()
	return r
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
