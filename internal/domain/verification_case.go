package domain

import "time"

type CaseStatus string

const (
	CaseStatusSubmitted         CaseStatus = "SUBMITTED"
	CaseStatusApproved          CaseStatus = "APPROVED"
	CaseStatusRejected          CaseStatus = "REJECTED"
	CaseStatusInfoRequested     CaseStatus = "INFO_REQUESTED"
	CaseStatusRevisionRequested CaseStatus = "REVISION_REQUESTED"
)

type ActivityAction string

const (
	ActivitySubmitted         ActivityAction = "SUBMITTED"
	ActivityResubmitted       ActivityAction = "RESUBMITTED"
	ActivityApproved          ActivityAction = "APPROVED"
	ActivityRejected          ActivityAction = "REJECTED"
	ActivityInfoRequested     ActivityAction = "INFO_REQUESTED"
	ActivityRevisionRequested ActivityAction = "REVISION_REQUESTED"
	ActivityWatchlisted       ActivityAction = "WATCHLISTED"
)

// ActivityEntry is one line of the append-only audit trail. Entries are
// never edited or removed once written.
type ActivityEntry struct {
	Action      ActivityAction `json:"action"`
	Timestamp   time.Time      `json:"timestamp"`
	PerformedBy string         `json:"performed_by"`
	Remarks     string         `json:"remarks,omitempty"`
}

// VerificationCase is one submission attempt for an organization. The
// submitted data is a frozen snapshot; review outcomes only ever touch
// status, the activity log and the review fields.
type VerificationCase struct {
	ID                int32      `json:"id"`
	CaseCode          string     `json:"case_code"`
	OrgID             int32      `json:"org_id"`
	SubmissionAttempt int32      `json:"submission_attempt"`
	SubmittedData     Disclosure `json:"submitted_data"`
	Status            CaseStatus `json:"status"`

	ActivityLog []ActivityEntry `json:"activity_log"`

	RejectionReason string     `json:"rejection_reason,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// AppendActivity records an audit entry. The log is append-only.
func (c *VerificationCase) AppendActivity(action ActivityAction, performedBy, remarks string, at time.Time) {
	c.ActivityLog = append(c.ActivityLog, ActivityEntry{
		Action:      action,
		Timestamp:   at,
		PerformedBy: performedBy,
		Remarks:     remarks,
	})
}
