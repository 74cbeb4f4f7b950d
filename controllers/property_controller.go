package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/models"
	"github.com/MilktreeAgency/landco/services"
	"github.com/gin-gonic/gin"
)

// PropertyController serves the yard catalog and city hubs.
type PropertyController struct {
	catalogService services.CatalogService
}

func NewPropertyController(svc services.CatalogService) *PropertyController {
	return &PropertyController{catalogService: svc}
}

// ListProperties handles GET /api/properties
func (pc *PropertyController) ListProperties(c *gin.Context) {
	filter, err := parseYardFilter(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	yards, err := pc.catalogService.ListYards(c.Request.Context(), filter)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": yards, "total": len(yards)})
}

// GetProperty handles GET /api/properties/:id
func (pc *PropertyController) GetProperty(c *gin.Context) {
	yard, err := pc.catalogService.GetYard(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, yard)
}

// ListCities handles GET /api/cities
func (pc *PropertyController) ListCities(c *gin.Context) {
	cities, err := pc.catalogService.ListCities(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

// GetCity handles GET /api/cities/:slug
func (pc *PropertyController) GetCity(c *gin.Context) {
	page, err := pc.catalogService.GetCity(c.Request.Context(), c.Param("slug"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func parseYardFilter(c *gin.Context) (models.YardFilter, error) {
	f := models.YardFilter{
		Query: c.Query("q"),
		City:  c.Query("city"),
		Sort:  c.Query("sort"),
	}

	for _, p := range []struct {
		key string
		dst *int
	}{
		{"minSize", &f.MinSize},
		{"maxSize", &f.MaxSize},
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	} {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, apperrors.BadRequest("Invalid " + p.key + ": must be a non-negative integer")
		}
		*p.dst = n
	}

	if raw := c.Query("available"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperrors.BadRequest("Invalid available: must be true or false")
		}
		f.Available = &b
	}
	for _, r := range c.QueryArray("securityRating") {
		// "A+" arrives as "A " when the plus is not percent-encoded.
		r = strings.ReplaceAll(r, " ", "+")
		f.SecurityRatings = append(f.SecurityRatings, models.SecurityRating(r))
	}
	return f, nil
}
