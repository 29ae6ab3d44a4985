package settings

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
)

const (
	DefaultStoreName      = "My Store"
	DefaultPrimaryColor   = "#FE2C55"
	DefaultSecondaryColor = "#25F4EE"
)

// Settings is the public storefront branding payload.
type Settings struct {
	ID              int64     `json:"id"`
	StoreName       string    `json:"store_name"`
	StoreLogoURL    *string   `json:"store_logo_url"`
	StoreFaviconURL *string   `json:"store_favicon_url"`
	PrimaryColor    string    `json:"primary_color"`
	SecondaryColor  string    `json:"secondary_color"`
	ContactEmail    *string   `json:"contact_email"`
	SocialInstagram *string   `json:"social_instagram"`
	SocialTikTok    *string   `json:"social_tiktok"`
	SocialTwitter   *string   `json:"social_twitter"`
	SocialFacebook  *string   `json:"social_facebook"`
	ShippingPolicy  *string   `json:"shipping_policy"`
	ReturnPolicy    *string   `json:"return_policy"`
	PrivacyPolicy   *string   `json:"privacy_policy"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateInput carries a partial settings update; nil fields are left untouched.
type UpdateInput struct {
	StoreName       *string `json:"store_name" validate:"omitempty,min=1,max=255"`
	StoreLogoURL    *string `json:"store_logo_url" validate:"omitempty,httpurl"`
	StoreFaviconURL *string `json:"store_favicon_url" validate:"omitempty,httpurl"`
	PrimaryColor    *string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor  *string `json:"secondary_color" validate:"omitempty,hexcolor"`
	ContactEmail    *string `json:"contact_email" validate:"omitempty,email"`
	SocialInstagram *string `json:"social_instagram" validate:"omitempty,max=255"`
	SocialTikTok    *string `json:"social_tiktok" validate:"omitempty,max=255"`
	SocialTwitter   *string `json:"social_twitter" validate:"omitempty,max=255"`
	SocialFacebook  *string `json:"social_facebook" validate:"omitempty,max=255"`
	ShippingPolicy  *string `json:"shipping_policy" validate:"omitempty,max=20000"`
	ReturnPolicy    *string `json:"return_policy" validate:"omitempty,max=20000"`
	PrivacyPolicy   *string `json:"privacy_policy" validate:"omitempty,max=20000"`
}

// Service reads and updates the storefront settings.
type Service interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, input UpdateInput) (*Settings, error)
}

type service struct {
	repo Repository
}

// NewService constructs the settings service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context) (*Settings, error) {
	row, err := s.repo.GetOrCreate(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	return toSettings(row), nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*Settings, error) {
	row, err := s.repo.GetOrCreate(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	if input.StoreName != nil {
		name := strings.TrimSpace(*input.StoreName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_name cannot be blank")
		}
		row.StoreName = name
	}
	if input.PrimaryColor != nil {
		row.PrimaryColor = strings.ToUpper(*input.PrimaryColor)
	}
	if input.SecondaryColor != nil {
		row.SecondaryColor = strings.ToUpper(*input.SecondaryColor)
	}
	assign(&row.StoreLogoURL, input.StoreLogoURL)
	assign(&row.StoreFaviconURL, input.StoreFaviconURL)
	assign(&row.ContactEmail, input.ContactEmail)
	assign(&row.SocialInstagram, input.SocialInstagram)
	assign(&row.SocialTikTok, input.SocialTikTok)
	assign(&row.SocialTwitter, input.SocialTwitter)
	assign(&row.SocialFacebook, input.SocialFacebook)
	assign(&row.ShippingPolicy, input.ShippingPolicy)
	assign(&row.ReturnPolicy, input.ReturnPolicy)
	assign(&row.PrivacyPolicy, input.PrivacyPolicy)

	saved, err := s.repo.Save(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}
	return toSettings(saved), nil
}

// assign copies src into dst; an empty string clears the column.
func assign(dst **string, src *string) {
	if src == nil {
		return
	}
	if strings.TrimSpace(*src) == "" {
		*dst = nil
		return
	}
	v := *src
	*dst = &v
}

func toSettings(row *models.StoreSettings) *Settings {
	return &Settings{
		ID:              row.ID,
		StoreName:       row.StoreName,
		StoreLogoURL:    row.StoreLogoURL,
		StoreFaviconURL: row.StoreFaviconURL,
		PrimaryColor:    row.PrimaryColor,
		SecondaryColor:  row.SecondaryColor,
		ContactEmail:    row.ContactEmail,
		SocialInstagram: row.SocialInstagram,
		SocialTikTok:    row.SocialTikTok,
		SocialTwitter:   row.SocialTwitter,
		SocialFacebook:  row.SocialFacebook,
		ShippingPolicy:  row.ShippingPolicy,
		ReturnPolicy:    row.ReturnPolicy,
		PrivacyPolicy:   row.PrivacyPolicy,
		UpdatedAt:       row.UpdatedAt,
	}
}
