package domain

import "time"

// HeroImage is one slide of the storefront hero carousel. PublicID is empty
// for images hosted outside the CDN.
type HeroImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

type HeroSettings struct {
	Images    []HeroImage `json:"images"`
	UpdatedAt time.Time   `json:"updatedAt,omitempty"`
}
