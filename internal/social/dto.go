package social

// Every generator accepts either a catalogue product id or a free-form name.
// When both are given the product wins.

type InstagramInput struct {
	ProductID    *int64   `json:"product_id" validate:"omitempty,gt=0"`
	ProductName  *string  `json:"product_name" validate:"omitempty,max=255"`
	KeyFeatures  []string `json:"key_features" validate:"omitempty,max=10,dive,max=200"`
	Style        string   `json:"style" validate:"omitempty,oneof=lifestyle promotional educational ugc"`
	HashtagCount *int     `json:"hashtag_count" validate:"omitempty,min=0,max=30"`
}

type TikTokInput struct {
	ProductID   *int64  `json:"product_id" validate:"omitempty,gt=0"`
	ProductName *string `json:"product_name" validate:"omitempty,max=255"`
	Hook        string  `json:"hook" validate:"omitempty,max=200"`
}

type FacebookInput struct {
	ProductID   *int64  `json:"product_id" validate:"omitempty,gt=0"`
	ProductName *string `json:"product_name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	PostType    string  `json:"post_type" validate:"omitempty,oneof=product story question promotion"`
}

type TwitterInput struct {
	ProductID   *int64   `json:"product_id" validate:"omitempty,gt=0"`
	ProductName *string  `json:"product_name" validate:"omitempty,max=255"`
	KeyPoints   []string `json:"key_points" validate:"omitempty,max=10,dive,max=280"`
	TweetCount  int      `json:"tweet_count" validate:"omitempty,min=1,max=15"`
}

type PinterestInput struct {
	ProductID   *int64  `json:"product_id" validate:"omitempty,gt=0"`
	ProductName *string `json:"product_name" validate:"omitempty,max=255"`
	Category    string  `json:"category" validate:"omitempty,max=100"`
}

// AllInput drives GenerateAll for one catalogue product.
type AllInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Style     string `json:"style" validate:"omitempty,oneof=lifestyle promotional educational ugc"`
	Hook      string `json:"hook" validate:"omitempty,max=200"`
}

type ProductRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AllContent bundles one post per platform.
type AllContent struct {
	Product   ProductRef    `json:"product"`
	Instagram InstagramPost `json:"instagram"`
	TikTok    TikTokCaption `json:"tiktok"`
	Facebook  FacebookPost  `json:"facebook"`
	Twitter   TwitterThread `json:"twitter"`
	Pinterest PinterestPin  `json:"pinterest"`
}

type HashtagsResult struct {
	Platform string   `json:"platform"`
	Category string   `json:"category"`
	Hashtags []string `json:"hashtags"`
}

type PostingTimesResult struct {
	Platform string          `json:"platform"`
	Times    []PostingWindow `json:"times"`
}
