package entitlement

import (
	"fmt"
	"time"
)

// Machine-readable codes carried in limit error responses.
const (
	CodeConversationLimit = "CONVERSATION_LIMIT"
	CodeSubmissionLimit   = "SUBMISSION_LIMIT"
	CodeCreditLimit       = "CREDIT_LIMIT"
)

// ConversationLimitError is returned when a free user already stores the
// maximum number of conversations.
type ConversationLimitError struct {
	Limit int
	Used  int
}

func (e *ConversationLimitError) Error() string {
	return fmt.Sprintf("conversation limit reached (%d/%d)", e.Used, e.Limit)
}

func (e *ConversationLimitError) Code() string { return CodeConversationLimit }

// SubmissionLimitError is returned when a free user has spent today's
// submissions. ResetsAt is the next UTC midnight.
type SubmissionLimitError struct {
	Limit    int
	Used     int
	ResetsAt time.Time
}

func (e *SubmissionLimitError) Error() string {
	return fmt.Sprintf("daily submission limit reached (%d/%d)", e.Used, e.Limit)
}

func (e *SubmissionLimitError) Code() string { return CodeSubmissionLimit }

// CreditLimitError is returned when a pro user has spent this month's
// credits. ResetsAt is the first instant of the next UTC month.
type CreditLimitError struct {
	Limit    int
	Used     int
	ResetsAt time.Time
}

func (e *CreditLimitError) Error() string {
	return fmt.Sprintf("monthly credit limit reached (%d/%d)", e.Used, e.Limit)
}

func (e *CreditLimitError) Code() string { return CodeCreditLimit }
