// Package risk scores an organization's disclosure snapshot for reviewer
// triage. Assessment is a pure function: same snapshot in, same score out,
// no persistence and no external lookups.
package risk

import (
	"math"
	"regexp"
	"strings"

	"tradelink-backend/internal/domain"
)

type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

type Assessment struct {
	Level   Level  `json:"level"`
	Score   int    `json:"score"`
	Remarks string `json:"remarks"`
}

// Checks is the boolean breakdown shown alongside the score in the admin
// case-detail view.
type Checks struct {
	BankVerified         bool `json:"bank_verified"`
	RequiredDocsPresent  bool `json:"required_docs_present"`
	TaxRegistrationValid bool `json:"tax_registration_valid"`
	IdentityNumberValid  bool `json:"identity_number_valid"`
	AddressAdequate      bool `json:"address_adequate"`
}

var (
	taxRegistrationPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	identityNumberPattern  = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

const minAddressLength = 20

// fullNameMatchScore is the penny-drop confidence below which a partial
// deduction kicks in even for verified accounts.
const fullNameMatchScore = 95

// Assess runs the point-deduction model over a disclosure snapshot.
// Deductions apply in a fixed order so remarks are deterministic.
func Assess(d domain.Disclosure) Assessment {
	score := 100
	var remarks []string

	deduct := func(points int, remark string) {
		score -= points
		remarks = append(remarks, remark)
	}

	if d.Bank == nil || d.Bank.VerificationStatus != domain.BankVerificationVerified {
		deduct(40, "Bank verification failed")
	} else if d.Bank.NameMatchScore < fullNameMatchScore {
		deduct(int(math.Floor((100-d.Bank.NameMatchScore)/2.5)), "Bank name mismatch detected")
	}

	if !hasRequiredDocuments(d.Compliance) {
		deduct(20, "Missing required documents")
	}

	if d.Profile == nil || !taxRegistrationPattern.MatchString(d.Profile.TaxRegistrationNumber) {
		deduct(15, "Invalid tax registration number format")
	}

	if d.Profile == nil || !identityNumberPattern.MatchString(d.Profile.IdentityNumber) {
		deduct(15, "Invalid identity number format")
	}

	if d.Profile == nil || len(d.Profile.RegisteredAddress) < minAddressLength {
		deduct(10, "Registered address missing or too short")
	}

	a := Assessment{Score: score}
	switch {
	case score >= 85:
		a.Level = LevelLow
	case score >= 65:
		a.Level = LevelMedium
	default:
		a.Level = LevelHigh
	}
	if len(remarks) == 0 {
		a.Remarks = "All checks passed"
	} else {
		a.Remarks = strings.Join(remarks, "; ")
	}
	return a
}

// AutoChecks computes the pass/fail breakdown without scoring.
func AutoChecks(d domain.Disclosure) Checks {
	return Checks{
		BankVerified:         d.Bank != nil && d.Bank.VerificationStatus == domain.BankVerificationVerified,
		RequiredDocsPresent:  hasRequiredDocuments(d.Compliance),
		TaxRegistrationValid: d.Profile != nil && taxRegistrationPattern.MatchString(d.Profile.TaxRegistrationNumber),
		IdentityNumberValid:  d.Profile != nil && identityNumberPattern.MatchString(d.Profile.IdentityNumber),
		AddressAdequate:      d.Profile != nil && len(d.Profile.RegisteredAddress) >= minAddressLength,
	}
}

func hasRequiredDocuments(c *domain.ComplianceInfo) bool {
	if c == nil {
		return false
	}
	var hasTax, hasIdentity bool
	for _, doc := range c.Documents {
		switch doc.Type {
		case domain.DocTypeTaxRegistrationCert:
			hasTax = true
		case domain.DocTypeIdentityCert:
			hasIdentity = true
		}
	}
	return hasTax && hasIdentity
}
