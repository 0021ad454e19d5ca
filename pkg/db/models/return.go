package models

import "time"

// Return closes a loan. LoanID is unique so a loan has at most one return.
type Return struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	LoanID         int64     `gorm:"column:loan_id;not null;uniqueIndex:ux_returns_loan_id"`
	Loan           *Loan     `gorm:"foreignKey:LoanID"`
	ReturnDate     time.Time `gorm:"column:return_date;not null"`
	Fine           int64     `gorm:"column:fine;not null;default:0"`
	DamageProofURL *string   `gorm:"column:damage_proof_url"`
	Remark         *string   `gorm:"column:remark"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasDamageProof reports whether a non-empty damage proof reference is recorded.
func (r Return) HasDamageProof() bool {
	return r.DamageProofURL != nil && *r.DamageProofURL != ""
}
