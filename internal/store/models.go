package store

// ReferralRecord is one contact's referral edge. ReferrerID is nil while the
// contact has not been referred by anyone yet.
type ReferralRecord struct {
	ContactID  string  `db:"contact_id" json:"contact_id"`
	ReferrerID *string `db:"referrer_id" json:"referrer_id"`
}

// NewReferralRecord builds a record, treating an empty referrer as "no referrer".
func NewReferralRecord(contactID, referrerID string) ReferralRecord {
	record := ReferralRecord{ContactID: contactID}
	if referrerID != "" {
		record.ReferrerID = &referrerID
	}
	return record
}

// HasReferrer reports whether the record points at a referrer.
func (r ReferralRecord) HasReferrer() bool {
	return r.ReferrerID != nil
}

// ReferrerIs reports whether the record's referrer equals id.
func (r ReferralRecord) ReferrerIs(id string) bool {
	return r.ReferrerID != nil && *r.ReferrerID == id
}

// Referrer returns the referrer id, or "" when there is none.
func (r ReferralRecord) Referrer() string {
	if r.ReferrerID == nil {
		return ""
	}
	return *r.ReferrerID
}

// Equal compares two records by value.
func (r ReferralRecord) Equal(other ReferralRecord) bool {
	if r.ContactID != other.ContactID {
		return false
	}
	if r.ReferrerID == nil || other.ReferrerID == nil {
		return r.ReferrerID == nil && other.ReferrerID == nil
	}
	return *r.ReferrerID == *other.ReferrerID
}

// Clone returns a deep copy that shares no pointers with r.
func (r ReferralRecord) Clone() ReferralRecord {
	out := ReferralRecord{ContactID: r.ContactID}
	if r.ReferrerID != nil {
		referrer := *r.ReferrerID
		out.ReferrerID = &referrer
	}
	return out
}
