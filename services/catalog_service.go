package services

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/models"
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortSizeAsc   = "size_asc"
	SortSizeDesc  = "size_desc"
)

// CatalogService serves the read-only yard and city listings.
type CatalogService interface {
	ListYards(ctx context.Context, f models.YardFilter) ([]models.Yard, error)
	GetYard(ctx context.Context, id string) (*models.Yard, error)
	ListCities(ctx context.Context) ([]models.CityHub, error)
	GetCity(ctx context.Context, slug string) (*models.CityPage, error)
}

type catalogServiceImpl struct {
	yards  []models.Yard
	cities []models.CityHub
}

func NewCatalogService(yards []models.Yard, cities []models.CityHub) CatalogService {
	return &catalogServiceImpl{yards: yards, cities: cities}
}

func (s *catalogServiceImpl) ListYards(_ context.Context, f models.YardFilter) ([]models.Yard, error) {
	switch f.Sort {
	case "", SortPriceAsc, SortPriceDesc, SortSizeAsc, SortSizeDesc:
	default:
		return nil, apperrors.BadRequest("Invalid sort: use price_asc, price_desc, size_asc or size_desc")
	}

	out := make([]models.Yard, 0, len(s.yards))
	for _, y := range s.yards {
		if matches(y, f) {
			out = append(out, y)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch f.Sort {
		case SortPriceAsc:
			return a.PricePerMonth < b.PricePerMonth
		case SortPriceDesc:
			return a.PricePerMonth > b.PricePerMonth
		case SortSizeAsc:
			return a.SqFt < b.SqFt
		case SortSizeDesc:
			return a.SqFt > b.SqFt
		}
		return false
	})
	return out, nil
}

func matches(y models.Yard, f models.YardFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(y.Title), q) && !strings.Contains(strings.ToLower(y.Location), q) {
			return false
		}
	}
	if f.City != "" && !strings.EqualFold(y.City, f.City) {
		return false
	}
	if f.MinSize > 0 && y.SqFt < f.MinSize {
		return false
	}
	if f.MaxSize > 0 && y.SqFt > f.MaxSize {
		return false
	}
	if f.MinPrice > 0 && y.PricePerMonth < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && y.PricePerMonth > f.MaxPrice {
		return false
	}
	if f.Available != nil && y.Available != *f.Available {
		return false
	}
	if len(f.SecurityRatings) > 0 && !slices.Contains(f.SecurityRatings, y.SecurityRating) {
		return false
	}
	return true
}

func (s *catalogServiceImpl) GetYard(_ context.Context, id string) (*models.Yard, error) {
	for _, y := range s.yards {
		if y.ID == id {
			return &y, nil
		}
	}
	return nil, apperrors.NotFound("Property not found")
}

func (s *catalogServiceImpl) ListCities(_ context.Context) ([]models.CityHub, error) {
	return append([]models.CityHub(nil), s.cities...), nil
}

func (s *catalogServiceImpl) GetCity(_ context.Context, slug string) (*models.CityPage, error) {
	for _, c := range s.cities {
		if !strings.EqualFold(c.Slug, slug) {
			continue
		}
		page := &models.CityPage{CityHub: c, Yards: []models.Yard{}}
		for _, y := range s.yards {
			if y.City != c.Slug {
				continue
			}
			page.Yards = append(page.Yards, y)
			if y.Available {
				page.AvailableCount++
			}
		}
		return page, nil
	}
	return nil, apperrors.NotFound("City not found")
}
