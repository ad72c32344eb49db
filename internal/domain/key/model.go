package key

import "time"

// LicenseKey is a single issued key. The key string itself is the primary
// identifier and the bearer credential; HWID, IP and ClaimDate stay nil
// until the first successful claim.
type LicenseKey struct {
	Key       string     `db:"license_key" json:"-"`
	ProductID string     `db:"product_id" json:"product_id"`
	HWID      *string    `db:"hwid" json:"hwid"`
	IP        *string    `db:"ip" json:"ip"`
	ClaimDate *time.Time `db:"claim_date" json:"claim_date"`
	Duration  float64    `db:"duration" json:"duration"`
}

// Claimed reports whether the expiry clock has been started.
func (k *LicenseKey) Claimed() bool {
	return k.ClaimDate != nil
}

// ExpiresAt returns the end of the validity window. Only meaningful once
// the key is claimed.
func (k *LicenseKey) ExpiresAt() time.Time {
	if k.ClaimDate == nil {
		return time.Time{}
	}
	return k.ClaimDate.Add(time.Duration(k.Duration * 24 * float64(time.Hour)))
}

// ExpiredAt reports whether the key is past its validity window at the
// given instant. An unclaimed key never expires.
func (k *LicenseKey) ExpiredAt(now time.Time) bool {
	return k.Claimed() && now.After(k.ExpiresAt())
}

// BoundToOther reports whether the key is bound to a HWID different from
// the supplied one.
func (k *LicenseKey) BoundToOther(hwid string) bool {
	return k.HWID != nil && *k.HWID != hwid
}
