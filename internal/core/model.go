package core

import (
	"sort"
	"time"
)

// EmailAddress is a parsed address. Domain is always lower-cased.
type EmailAddress struct {
	LocalPart string
	Domain    string
}

// String reassembles the address
func (a EmailAddress) String() string {
	return a.LocalPart + "@" + a.Domain
}

// MXRecord is a single mail exchanger for a domain
type MXRecord struct {
	Host     string
	Priority uint16
}

// SortByPriority returns a copy of records ordered by ascending priority.
// Equal priorities keep their relative order.
func SortByPriority(records []MXRecord) []MXRecord {
	sorted := make([]MXRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}

// DNSSignals is the part of the signal set produced by the DNS collector
type DNSSignals struct {
	IsMajorProvider      bool
	MXRecordsFound       bool
	SuspiciousMXHostname bool
	SPFRecordFound       bool
	SPFLookupFailed      bool
	AAAARecordsFound     bool
	AAAALookupFailed     bool
}

// SignalSet holds every signal gathered for one address. All booleans
// stay false unless their collector positively sets them.
type SignalSet struct {
	Domain               string  `json:"domain"`
	LocalPart            string  `json:"localPart"`
	IsMajorProvider      bool    `json:"isMajorProvider"`
	MXRecordsFound       bool    `json:"mxRecordsFound"`
	SuspiciousMXHostname bool    `json:"suspiciousMxHostname"`
	SPFRecordFound       bool    `json:"spfRecordFound"`
	SPFLookupFailed      bool    `json:"spfLookupFailed"`
	AAAARecordsFound     bool    `json:"aaaaRecordsFound"`
	AAAALookupFailed     bool    `json:"aaaaLookupFailed"`
	IsBlacklisted        bool    `json:"isBlacklisted"`
	RandomnessScore      float64 `json:"randomnessScore"`
	CatchAllChecked      bool    `json:"catchAllChecked"`
	IsCatchAll           bool    `json:"isCatchAll"`
	MailboxChecked       bool    `json:"mailboxChecked"`
	MailboxReachable     bool    `json:"mailboxReachable"`
}

// ApplyDNS copies the DNS collector output into the set
func (s *SignalSet) ApplyDNS(d DNSSignals) {
	s.IsMajorProvider = d.IsMajorProvider
	s.MXRecordsFound = d.MXRecordsFound
	s.SuspiciousMXHostname = d.SuspiciousMXHostname
	s.SPFRecordFound = d.SPFRecordFound
	s.SPFLookupFailed = d.SPFLookupFailed
	s.AAAARecordsFound = d.AAAARecordsFound
	s.AAAALookupFailed = d.AAAALookupFailed
}

// RiskAssessment is the result returned to callers. It is never mutated
// after Assess returns.
type RiskAssessment struct {
	Email      string    `json:"email"`
	Score      float64   `json:"score"`
	IsDEA      bool      `json:"isDEA"`
	Signals    SignalSet `json:"signals"`
	Error      string    `json:"error,omitempty"`
	AssessedAt time.Time `json:"assessedAt"`
}

// MailboxResult is the outcome of an SMTP mailbox verification
type MailboxResult struct {
	Valid   bool
	Message string
	Host    string
}
