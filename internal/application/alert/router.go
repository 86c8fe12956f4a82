package alert

import "strings"

const (
	TierFree = "free"
	TierPro  = "pro"
)

// Router 依訂閱層級挑選頻道，付費層級優先送 Pro 頻道。
type Router struct {
	Free string
	Pro  string
}

// Tier normalizes a raw tier to TierPro or TierFree.
func Tier(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pro", "premium", "paid":
		return TierPro
	default:
		return TierFree
	}
}

// Pick returns the channel for tier, falling back to the other channel when
// the preferred one is not configured. Empty means nothing is deliverable.
func (r Router) Pick(tier string) string {
	if Tier(tier) == TierPro {
		return firstNonEmpty(r.Pro, r.Free)
	}
	return firstNonEmpty(r.Free, r.Pro)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
