package model

import "github.com/shopspring/decimal"

type ReferralStatus string

const (
	ReferralStatusPending  ReferralStatus = "pending"
	ReferralStatusRewarded ReferralStatus = "rewarded"
	ReferralStatusExpired  ReferralStatus = "expired"
)

// ReferralRewardAmount 推薦獎勵固定額
var ReferralRewardAmount = decimal.NewFromInt(5000)

type Referral struct {
	ReferralID uint           `gorm:"primaryKey"`
	ReferrerID uint           `gorm:"not null;uniqueIndex:idx_referrer_referee"`
	RefereeID  uint           `gorm:"not null;uniqueIndex:idx_referrer_referee"`
	Status     ReferralStatus `gorm:"not null;type:varchar(10);default:'pending'"`
	Referrer   *Profile       `gorm:"foreignKey:ReferrerID"`
	Referee    *Profile       `gorm:"foreignKey:RefereeID"`
	BaseModel
}
