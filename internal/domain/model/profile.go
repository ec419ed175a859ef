package model

type Profile struct {
	ProfileID           uint   `gorm:"primaryKey"`
	PhoneNumber         string `gorm:"unique;not null;type:varchar(17)"`
	FullName            string `gorm:"type:varchar(100)"`
	IsB2B               bool   `gorm:"not null;default:false"`
	IsWholesaler        bool   `gorm:"not null;default:false"`
	IsWholesaleApproved bool   `gorm:"not null;default:false"`
	ReferralCode        string `gorm:"unique;not null;type:varchar(16)"`
	DeviceToken         string `gorm:"type:varchar(255)"`
	// 一對一，延遲建立
	LoyaltyCard *LoyaltyCard `gorm:"foreignKey:ProfileID"`
	Orders      []Order      `gorm:"foreignKey:UserID"`
	BaseModel
}

// PriceTier 回傳定價層級，優先序: B2B > 批發 > 一般
func (p *Profile) PriceTier() Tier {
	if p.IsB2B {
		return TierB2B
	}
	if p.IsWholesaler && p.IsWholesaleApproved {
		return TierWholesale
	}
	return TierStandard
}

type Tier int

const (
	TierStandard Tier = iota
	TierB2B
	TierWholesale
)

type Location struct {
	LocationID uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"not null;index"`
	Address    string `gorm:"not null;type:varchar(255)"`
	BaseModel
}
