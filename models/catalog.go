package models

type SecurityRating string

const (
	RatingA     SecurityRating = "A"
	RatingAPlus SecurityRating = "A+"
	RatingS     SecurityRating = "S"
)

type SiteManager struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Yard is a rentable open storage site.
type Yard struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Location       string         `json:"location"`
	City           string         `json:"city"`
	SqFt           int            `json:"sqFt"`
	PricePerMonth  int            `json:"pricePerMonth"` // whole pounds
	Tags           []string       `json:"tags"`
	ImageURL       string         `json:"imageUrl"`
	Images         []string       `json:"images"`
	SecurityRating SecurityRating `json:"securityRating"`
	Available      bool           `json:"available"`
	Coordinates    Coordinates    `json:"coordinates"`
	Certifications []string       `json:"certifications"`
	Features       []string       `json:"features"`
	SiteManager    *SiteManager   `json:"siteManager,omitempty"`
	Description    string         `json:"description,omitempty"`
	PlotID         string         `json:"plotId,omitempty"`
}

type CityHub struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Region      string `json:"region"`
	Description string `json:"description"`
	HeroImage   string `json:"heroImage"`
}

// CityPage is a city hub with the yards located in it.
type CityPage struct {
	CityHub
	Yards          []Yard `json:"yards"`
	AvailableCount int    `json:"availableCount"`
}

// YardFilter narrows a catalog listing. Zero values do not filter.
type YardFilter struct {
	Query           string
	City            string
	MinSize         int
	MaxSize         int
	MinPrice        int
	MaxPrice        int
	Available       *bool
	SecurityRatings []SecurityRating
	Sort            string
}
