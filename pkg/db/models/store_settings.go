package models

import "time"

// StoreSettings is the singleton storefront branding row.
type StoreSettings struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	StoreName       string    `gorm:"column:store_name;not null;default:'My Store'"`
	StoreLogoURL    *string   `gorm:"column:store_logo_url"`
	StoreFaviconURL *string   `gorm:"column:store_favicon_url"`
	PrimaryColor    string    `gorm:"column:primary_color;not null;default:'#FE2C55'"`
	SecondaryColor  string    `gorm:"column:secondary_color;not null;default:'#25F4EE'"`
	ContactEmail    *string   `gorm:"column:contact_email"`
	SocialInstagram *string   `gorm:"column:social_instagram"`
	SocialTikTok    *string   `gorm:"column:social_tiktok"`
	SocialTwitter   *string   `gorm:"column:social_twitter"`
	SocialFacebook  *string   `gorm:"column:social_facebook"`
	ShippingPolicy  *string   `gorm:"column:shipping_policy"`
	ReturnPolicy    *string   `gorm:"column:return_policy"`
	PrivacyPolicy   *string   `gorm:"column:privacy_policy"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StoreSettings) TableName() string {
	return "store_settings"
}
