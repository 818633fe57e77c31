package account

// RiskTier is the coarse payment-reliability classification.
type RiskTier string

const (
	RiskTierLow    RiskTier = "low"
	RiskTierMedium RiskTier = "medium"
	RiskTierHigh   RiskTier = "high"
)

// ClassifyByOverdueCount tiers a student by how many obligations are
// overdue. Used by the on-demand account risk view.
func ClassifyByOverdueCount(overdueCount int) RiskTier {
	switch {
	case overdueCount <= 0:
		return RiskTierLow
	case overdueCount <= 2:
		return RiskTierMedium
	default:
		return RiskTierHigh
	}
}

// ClassifyByDaysOverdue tiers a single debt by how far past due it is.
// Used by reminder messaging and the monthly risk snapshots.
//
// The two classifiers intentionally coexist: their call sites diverged
// historically and unifying them would silently change reports, so each
// stays behind its own name until one is declared authoritative.
func ClassifyByDaysOverdue(daysOverdue int) RiskTier {
	switch {
	case daysOverdue <= 0:
		return RiskTierLow
	case daysOverdue <= 15:
		return RiskTierMedium
	default:
		return RiskTierHigh
	}
}
