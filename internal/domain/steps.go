package domain

type Step string

const (
	StepProfile         Step = "profile"
	StepBank            Step = "bank"
	StepCompliance      Step = "compliance"
	StepPreferences     Step = "preferences"
	StepCatalog         Step = "catalog"
	StepFleetCompliance Step = "fleet-compliance"
)

// requiredSteps is the fixed, role-keyed onboarding policy. Order matters:
// it drives the "next step" hint shown during onboarding.
var requiredSteps = map[OrgRole][]Step{
	OrgRoleBuyer:     {StepProfile, StepBank, StepCompliance, StepPreferences},
	OrgRoleSeller:    {StepProfile, StepBank, StepCompliance, StepCatalog},
	OrgRoleLogistics: {StepProfile, StepBank, StepFleetCompliance, StepCompliance},
}

// stepRole marks steps that only one role may submit. Steps absent from the
// map are shared across roles.
var stepRole = map[Step]OrgRole{
	StepPreferences:     OrgRoleBuyer,
	StepCatalog:         OrgRoleSeller,
	StepFleetCompliance: OrgRoleLogistics,
}

// ValidRole reports whether the role is one this marketplace onboards.
func ValidRole(role OrgRole) bool {
	_, ok := requiredSteps[role]
	return ok
}

// ValidStep reports whether the step name is known.
func ValidStep(step Step) bool {
	switch step {
	case StepProfile, StepBank, StepCompliance, StepPreferences, StepCatalog, StepFleetCompliance:
		return true
	}
	return false
}

// RequiredSteps returns the ordered step set the role must complete before
// submission. The returned slice must not be mutated.
func RequiredSteps(role OrgRole) []Step {
	return requiredSteps[role]
}

// StepRequiredRole returns the role a gated step belongs to, or "" when the
// step is open to every role.
func StepRequiredRole(step Step) OrgRole {
	return stepRole[step]
}

// MissingSteps lists the role's required steps the organization has not
// completed yet, in policy order.
func MissingSteps(org *Organization) []Step {
	var missing []Step
	for _, s := range RequiredSteps(org.Role) {
		if !org.HasCompletedStep(s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// NextStep returns the first incomplete required step, or "" when the
// organization is ready to submit.
func NextStep(org *Organization) Step {
	if m := MissingSteps(org); len(m) > 0 {
		return m[0]
	}
	return ""
}
