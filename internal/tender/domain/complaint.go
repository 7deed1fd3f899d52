package tender

import "time"

const (
	ComplaintStatusClaim     = "claim"
	ComplaintStatusPending   = "pending"
	ComplaintStatusAnswered  = "answered"
	ComplaintStatusResolved  = "resolved"
	ComplaintStatusDeclined  = "declined"
	ComplaintStatusStopping  = "stopping"
	ComplaintStatusStopped   = "stopped"
	ComplaintStatusCancelled = "cancelled"
)

// Complaint is filed against an award during its stand-still period.
type Complaint struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status"`
	Author      Organization `json:"author"`
	Resolution  string       `json:"resolution,omitempty"`
	Date        time.Time    `json:"date"`
}

// Open reports whether the complaint still blocks contract signing.
func (c *Complaint) Open() bool {
	switch c.Status {
	case ComplaintStatusClaim, ComplaintStatusPending, ComplaintStatusAnswered, ComplaintStatusStopping:
		return true
	}
	return false
}

var complaintTransitions = map[string][]string{
	ComplaintStatusClaim:    {ComplaintStatusAnswered, ComplaintStatusStopping, ComplaintStatusCancelled},
	ComplaintStatusAnswered: {ComplaintStatusResolved, ComplaintStatusPending, ComplaintStatusCancelled},
	ComplaintStatusPending:  {ComplaintStatusResolved, ComplaintStatusDeclined, ComplaintStatusStopping, ComplaintStatusStopped},
	ComplaintStatusStopping: {ComplaintStatusStopped, ComplaintStatusCancelled},
}

// AddAwardComplaint files a complaint against an award. Complaints are only
// accepted while the award's stand-still period is open.
func (t *Tender) AddAwardComplaint(awardID string, c *Complaint, now time.Time) error {
	if t == nil {
		return ErrNilTender
	}
	a := t.AwardByID(awardID)
	if a == nil {
		return NewNotFound("award_id")
	}
	if !t.Editable() {
		return NewPreconditionFailed("data",
			"Can't add complaint in current ("+t.Status+") tender status")
	}
	if a.ComplaintPeriod != nil && now.After(a.ComplaintPeriod.EndDate) {
		return NewPreconditionFailed("data",
			"Can't add complaint after stand-still period end")
	}
	if c.ID == "" {
		c.ID = NewID()
	}
	if c.Status == "" {
		c.Status = ComplaintStatusClaim
	}
	if c.Status != ComplaintStatusClaim && c.Status != ComplaintStatusPending {
		return NewValidation("status", "status should be claim or pending")
	}
	c.Date = now
	a.Complaints = append(a.Complaints, c)
	return nil
}

// SetComplaintStatus moves a complaint along its lifecycle.
func (t *Tender) SetComplaintStatus(awardID, complaintID, next, resolution string, now time.Time) error {
	if t == nil {
		return ErrNilTender
	}
	a := t.AwardByID(awardID)
	if a == nil {
		return NewNotFound("award_id")
	}
	var c *Complaint
	for _, candidate := range a.Complaints {
		if candidate.ID == complaintID {
			c = candidate
			break
		}
	}
	if c == nil {
		return NewNotFound("complaint_id")
	}
	if next == c.Status {
		return nil
	}
	for _, allowed := range complaintTransitions[c.Status] {
		if allowed == next {
			c.Status = next
			if resolution != "" {
				c.Resolution = resolution
			}
			c.Date = now
			return nil
		}
	}
	return NewInvalidTransition("data", "Can't update complaint")
}
