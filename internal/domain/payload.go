package domain

// SharePayload is the waypoint-free view of a Loop embedded in a share link.
// Date and time fields are display strings; the *DateTime fields carry the
// same instants in ISO-8601 so the receiver can rebuild exact times.
//
// Every field is optional on the wire: links produced by older app builds may
// omit any of them.
type SharePayload struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"loopName"`
	ApproxStay    string `json:"approxStay"`
	StartDate     string `json:"startDate,omitempty"`
	StartTime     string `json:"startTime,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	EndTime       string `json:"endTime,omitempty"`
	StartDateTime string `json:"startDateTime,omitempty"`
	EndDateTime   string `json:"endDateTime,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}
