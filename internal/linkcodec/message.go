package linkcodec

import (
	"fmt"
	"strings"

	"github.com/loopspot/loopspot/internal/domain"
)

// ShareMessage renders the text handed to a share sheet alongside link.
func ShareMessage(p domain.SharePayload, link string) string {
	name := p.Name
	if name == "" {
		name = "My Loop"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Join my loop \"%s\"\n", name)
	fmt.Fprintf(&b, "Start: %s %s\n", p.StartDate, p.StartTime)
	fmt.Fprintf(&b, "End:   %s %s\n", p.EndDate, p.EndTime)
	if p.ApproxStay != "" {
		fmt.Fprintf(&b, "Stay:  %s\n", p.ApproxStay)
	}
	fmt.Fprintf(&b, "\nOpen: %s", link)
	return b.String()
}
