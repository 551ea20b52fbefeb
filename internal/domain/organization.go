package domain

import "time"

type OrgRole string

const (
	OrgRoleBuyer     OrgRole = "BUYER"
	OrgRoleSeller    OrgRole = "SELLER"
	OrgRoleLogistics OrgRole = "LOGISTICS"
)

type KYCStatus string

const (
	KYCStatusDraft             KYCStatus = "DRAFT"
	KYCStatusSubmitted         KYCStatus = "SUBMITTED"
	KYCStatusApproved          KYCStatus = "APPROVED"
	KYCStatusRejected          KYCStatus = "REJECTED"
	KYCStatusInfoRequested     KYCStatus = "INFO_REQUESTED"
	KYCStatusRevisionRequested KYCStatus = "REVISION_REQUESTED"
)

// LocksOnboarding reports whether a status keeps the organization's
// disclosure data frozen. Invariant: isOnboardingLocked == true iff the
// status is SUBMITTED or APPROVED.
func (s KYCStatus) LocksOnboarding() bool {
	return s == KYCStatusSubmitted || s == KYCStatusApproved
}

// Organization is the mutable aggregate root for one trading party.
// It accumulates disclosure data during onboarding and mirrors the status
// of its latest verification case.
type Organization struct {
	ID          int32     `json:"id"`
	OrgCode     string    `json:"org_code"`
	OwnerUserID int32     `json:"owner_user_id"`
	LegalName   string    `json:"legal_name"`
	Role        OrgRole   `json:"role"`

	Disclosure Disclosure `json:"disclosure"`

	CompletedSteps     []Step    `json:"completed_steps"`
	KYCStatus          KYCStatus `json:"kyc_status"`
	IsOnboardingLocked bool      `json:"is_onboarding_locked"`
	IsVerified         bool      `json:"is_verified"`
	RejectionReason    string    `json:"rejection_reason,omitempty"`
	ApprovedBy         string    `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// HasCompletedStep reports set membership in CompletedSteps.
func (o *Organization) HasCompletedStep(step Step) bool {
	for _, s := range o.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// MarkStepCompleted adds the step with set semantics; rewriting a step
// never duplicates its entry.
func (o *Organization) MarkStepCompleted(step Step) {
	if !o.HasCompletedStep(step) {
		o.CompletedSteps = append(o.CompletedSteps, step)
	}
}

// Disclosure holds every section the onboarding steps fill in. Each section
// is replaced wholesale when its step is rewritten.
type Disclosure struct {
	Profile     *KYCProfile       `json:"profile,omitempty"`
	Bank        *BankDetails      `json:"bank,omitempty"`
	Compliance  *ComplianceInfo   `json:"compliance,omitempty"`
	Preferences *BuyerPreferences `json:"preferences,omitempty"`
	Catalog     *SellerCatalog    `json:"catalog,omitempty"`
	Fleet       *FleetCompliance  `json:"fleet,omitempty"`
}

// Clone returns a deep copy so a case snapshot is decoupled from later
// edits to the organization.
func (d Disclosure) Clone() Disclosure {
	out := Disclosure{}
	if d.Profile != nil {
		p := *d.Profile
		p.Contacts = append([]Contact(nil), d.Profile.Contacts...)
		p.PlantLocations = append([]string(nil), d.Profile.PlantLocations...)
		out.Profile = &p
	}
	if d.Bank != nil {
		b := *d.Bank
		b.Documents = append([]Document(nil), d.Bank.Documents...)
		out.Bank = &b
	}
	if d.Compliance != nil {
		c := *d.Compliance
		c.Documents = append([]Document(nil), d.Compliance.Documents...)
		c.Declarations = append([]string(nil), d.Compliance.Declarations...)
		out.Compliance = &c
	}
	if d.Preferences != nil {
		p := *d.Preferences
		p.Categories = append([]string(nil), d.Preferences.Categories...)
		out.Preferences = &p
	}
	if d.Catalog != nil {
		c := *d.Catalog
		c.Products = append([]CatalogProduct(nil), d.Catalog.Products...)
		out.Catalog = &c
	}
	if d.Fleet != nil {
		f := *d.Fleet
		f.Vehicles = append([]Vehicle(nil), d.Fleet.Vehicles...)
		f.Permits = append([]Document(nil), d.Fleet.Permits...)
		out.Fleet = &f
	}
	return out
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type KYCProfile struct {
	LegalName             string    `json:"legal_name"`
	TaxRegistrationNumber string    `json:"tax_registration_number"`
	IdentityNumber        string    `json:"identity_number"`
	RegisteredAddress     string    `json:"registered_address"`
	Contacts              []Contact `json:"contacts"`
	PlantLocations        []string  `json:"plant_locations,omitempty"`
}

type BankVerificationStatus string

const (
	BankVerificationPending  BankVerificationStatus = "PENDING"
	BankVerificationVerified BankVerificationStatus = "VERIFIED"
	BankVerificationFailed   BankVerificationStatus = "FAILED"
)

type BankDetails struct {
	AccountHolderName  string                 `json:"account_holder_name"`
	AccountNumber      string                 `json:"account_number"`
	BranchCode         string                 `json:"branch_code"`
	VerificationStatus BankVerificationStatus `json:"verification_status"`
	// NameMatchScore is the confidence score (0-100) reported by the
	// external penny-drop check.
	NameMatchScore float64    `json:"name_match_score"`
	Documents      []Document `json:"documents,omitempty"`
}

type Document struct {
	Type string `json:"type"`
	Name string `json:"name"`
	// FileRef points at the external document store; bytes never pass
	// through this service.
	FileRef string `json:"file_ref"`
}

const (
	DocTypeTaxRegistrationCert = "TAX_REGISTRATION_CERT"
	DocTypeIdentityCert        = "IDENTITY_CERT"
)

type ComplianceInfo struct {
	Documents    []Document `json:"documents"`
	Declarations []string   `json:"declarations,omitempty"`
}

type BuyerPreferences struct {
	Categories     []string `json:"categories"`
	MonthlyVolume  string   `json:"monthly_volume,omitempty"`
	PreferredTerms string   `json:"preferred_terms,omitempty"`
}

type CatalogProduct struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit,omitempty"`
}

type SellerCatalog struct {
	Products      []CatalogProduct `json:"products"`
	LeadTimeDays  int32            `json:"lead_time_days,omitempty"`
	MinOrderValue int64            `json:"min_order_value,omitempty"`
}

type Vehicle struct {
	RegistrationNumber string `json:"registration_number"`
	Type               string `json:"type"`
	CapacityTons       int32  `json:"capacity_tons,omitempty"`
}

type FleetCompliance struct {
	Vehicles []Vehicle  `json:"vehicles"`
	Permits  []Document `json:"permits,omitempty"`
}
