package model

// RiskFlag tags a contractually risky pattern detected in a clause.
type RiskFlag string

// The closed risk vocabulary. Model output containing any other tag is
// discarded, never stored.
const (
	RiskPenalty                  RiskFlag = "penalty"
	RiskFee                      RiskFlag = "fee"
	RiskAutoRenewal              RiskFlag = "auto-renewal"
	RiskArbitration              RiskFlag = "arbitration"
	RiskLiability                RiskFlag = "liability"
	RiskLockInPeriod             RiskFlag = "lock-in-period"
	RiskUnilateralChange         RiskFlag = "unilateral-change"
	RiskSecurityDepositDeduction RiskFlag = "security-deposit-deduction"
)

// ValidRiskFlags returns the full vocabulary in a stable order.
func ValidRiskFlags() []RiskFlag {
	return []RiskFlag{
		RiskPenalty,
		RiskFee,
		RiskAutoRenewal,
		RiskArbitration,
		RiskLiability,
		RiskLockInPeriod,
		RiskUnilateralChange,
		RiskSecurityDepositDeduction,
	}
}

// IsValidRiskFlag reports whether tag belongs to the vocabulary.
func IsValidRiskFlag(tag string) bool {
	for _, f := range ValidRiskFlags() {
		if string(f) == tag {
			return true
		}
	}
	return false
}

// FilterRiskFlags keeps only vocabulary tags, preserving order and
// dropping duplicates.
func FilterRiskFlags(tags []string) []RiskFlag {
	seen := make(map[string]bool, len(tags))
	flags := []RiskFlag{}
	for _, tag := range tags {
		if !IsValidRiskFlag(tag) || seen[tag] {
			continue
		}
		seen[tag] = true
		flags = append(flags, RiskFlag(tag))
	}
	return flags
}
