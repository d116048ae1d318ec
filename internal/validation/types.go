package validation

import "github.com/shopspring/decimal"

type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"max=120"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AddCartItemRequest adds a catalog product to the caller's cart. A zero
// quantity means one.
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// UpdateQuantityRequest sets a line quantity. Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type ProductRequest struct {
	Key           string           `json:"key" validate:"required,max=120"`
	Name          string           `json:"name" validate:"required,max=200"`
	Description   string           `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Image         string           `json:"image,omitempty" validate:"omitempty,url"`
	Images        []string         `json:"images,omitempty" validate:"omitempty,dive,url"`
	Category      string           `json:"category" validate:"required"`
	Inventory     int              `json:"inventory" validate:"min=0"`
	Sizes         []string         `json:"sizes,omitempty" validate:"omitempty,dive,required"`
	Colors        []string         `json:"colors,omitempty" validate:"omitempty,dive,required"`
}

type AddressRequest struct {
	FullName   string `json:"fullName" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// CheckoutRequest carries what the shopper types on the checkout form.
// Items and amounts come from the server-side cart, never from the client.
type CheckoutRequest struct {
	PaymentMethod   string         `json:"paymentMethod" validate:"omitempty,oneof=card cash_on_delivery"`
	ShippingAddress AddressRequest `json:"shippingAddress"`
	CustomerEmail   string         `json:"customerEmail" validate:"omitempty,email"`
	CustomerName    string         `json:"customerName" validate:"max=200"`
	CustomerPhone   string         `json:"customerPhone" validate:"max=40"`
	Notes           string         `json:"notes" validate:"max=1000"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type HeroImageRequest struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"publicId,omitempty" validate:"max=255"`
}

// HeroImagesRequest replaces the whole hero carousel, in display order.
type HeroImagesRequest struct {
	Images []HeroImageRequest `json:"images" validate:"max=20,dive"`
}
