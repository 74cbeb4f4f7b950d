// Package catalog holds the static yard listings and city hubs shown on the
// website. The data is compiled in and never mutated.
package catalog

import "github.com/MilktreeAgency/landco/models"

const unsplash = "https://images.unsplash.com/photo-"

func img(id, size string) string {
	return unsplash + id + "?" + size
}

const (
	cardSize    = "w=800&h=600&fit=crop"
	gallerySize = "w=1200&h=800&fit=crop"
	avatarSize  = "w=200&h=200&fit=crop&crop=face"
	heroSize    = "w=1920&q=80"
)

const (
	photoDocks     = "1586528116311-ad8dd3c8310d"
	photoYard      = "1558618666-fcd25c85cd64"
	photoPlant     = "1504307651254-35680f356dfd"
	photoCompound  = "1565793298595-6a879b1d9492"
	photoPort      = "1494412574643-ff11b0a5c1c3"
	photoContainer = "1578575437130-527eed3abbec"
	photoLogistics = "1601584115197-04ecc0da31d7"
	photoAerospace = "1581094288338-2314dddb7ece"
)

var (
	managerJames = models.SiteManager{
		Name: "James Mitchell", Role: "Senior Site Manager",
		Phone: "+44 23 8012 3456", Email: "j.mitchell@landco.co.uk",
		ImageURL: img("1472099645785-5658abf4ff4e", avatarSize),
	}
	managerSarah = models.SiteManager{
		Name: "Sarah Thompson", Role: "Operations Manager",
		Phone: "+44 23 9234 5678", Email: "s.thompson@landco.co.uk",
		ImageURL: img("1494790108377-be9c29b29330", avatarSize),
	}
	managerDavid = models.SiteManager{
		Name: "David Chen", Role: "Facilities Manager",
		Phone: "+44 12 6478 9012", Email: "d.chen@landco.co.uk",
		ImageURL: img("1507003211169-0a1dd7228f2d", avatarSize),
	}
	managerEmma = models.SiteManager{
		Name: "Emma Roberts", Role: "Site Coordinator",
		Phone: "+44 19 8034 5678", Email: "e.roberts@landco.co.uk",
		ImageURL: img("1438761681033-6461ffad8d80", avatarSize),
	}
)

func gallery(ids ...string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = img(id, gallerySize)
	}
	return out
}

var yards = []models.Yard{
	{
		ID: "1", Title: "Southampton Western Docks Hub", Location: "Southampton, SO15", City: "southampton",
		SqFt: 12500, PricePerMonth: 2200,
		Tags:           []string{"HGV Ready", "24/7 Monitored", "Hardstanding"},
		ImageURL:       img(photoDocks, cardSize),
		Images:         gallery(photoDocks, photoYard, photoPlant, photoCompound),
		SecurityRating: models.RatingS, Available: true,
		Coordinates:    models.Coordinates{Lat: 50.9097, Lng: -1.4044},
		Certifications: []string{"BREEAM Outstanding", "ISO 14001", "Secured by Design"},
		Features:       []string{"Hardstanding Surface", "24/7 HGV Access", "Mains Electric", "CCTV Tower", "Perimeter Fencing", "Floodlighting"},
		SiteManager:    &managerJames,
		Description:    "A premium open storage facility located strategically at Southampton Western Docks. This site features fully hardened surface suitable for heavy goods vehicles, comprehensive perimeter fencing, and our signature AI-monitored security array. Direct access to M27 and major shipping lanes.",
		PlotID:         "SW-01",
	},
	{
		ID: "2", Title: "Portsmouth Logistics Yard", Location: "Portsmouth, PO3", City: "portsmouth",
		SqFt: 5000, PricePerMonth: 950,
		Tags:           []string{"Container Storage", "Secure Gated", "Lighting"},
		ImageURL:       img(photoPort, cardSize),
		Images:         gallery(photoPort, photoContainer, photoLogistics),
		SecurityRating: models.RatingAPlus, Available: true,
		Coordinates:    models.Coordinates{Lat: 50.8198, Lng: -1.0880},
		Certifications: []string{"ISO 9001", "Secured by Design"},
		Features:       []string{"Container Storage", "Gated Access", "LED Lighting", "CCTV Coverage", "Tarmac Surface"},
		SiteManager:    &managerSarah,
		Description:    "Ideal for container storage and light logistics operations. This compact Portsmouth yard offers excellent security with 24-hour gated access and comprehensive CCTV coverage. Perfect for businesses needing flexible, secure storage near the port.",
		PlotID:         "PM-02",
	},
	{
		ID: "3", Title: "M27 Strategic Storage", Location: "Fareham, PO16", City: "fareham",
		SqFt: 45000, PricePerMonth: 6500,
		Tags:           []string{"Plant Hire", "CCTV Tower", "Water/Electric"},
		ImageURL:       img(photoPlant, cardSize),
		Images:         gallery(photoPlant, photoCompound, photoAerospace, photoYard),
		SecurityRating: models.RatingS, Available: false,
		Coordinates:    models.Coordinates{Lat: 50.8512, Lng: -1.1793},
		Certifications: []string{"BREEAM Excellent", "ISO 14001", "ISO 45001"},
		Features:       []string{"Large Format Storage", "Dedicated CCTV Tower", "Mains Water", "Three-Phase Electric", "Weighbridge", "Office Unit Available"},
		SiteManager:    &managerDavid,
		Description:    "Our flagship large-format storage facility positioned directly on the M27 corridor. Suitable for major plant hire operations, fleet storage, and distribution centres. This 45,000 sq ft site includes dedicated office space and weighbridge facilities.",
		PlotID:         "M27-03",
	},
	{
		ID: "4", Title: "Andover Distribution Plot", Location: "Andover, SP10", City: "andover",
		SqFt: 8000, PricePerMonth: 1400,
		Tags:           []string{"Flexible Terms", "No Business Rates"},
		ImageURL:       img(photoYard, cardSize),
		Images:         gallery(photoYard, photoDocks, photoLogistics),
		SecurityRating: models.RatingA, Available: true,
		Coordinates:    models.Coordinates{Lat: 51.2066, Lng: -1.4880},
		Certifications: []string{"ISO 9001"},
		Features:       []string{"Flexible Licensing", "Compound Storage", "Security Patrol", "A303 Access", "Hardstanding"},
		SiteManager:    &managerEmma,
		Description:    "Strategic distribution plot with direct A303 access, perfect for national logistics operations. Benefits from flexible licensing terms with no business rates liability. Ideal for scaffolding, construction materials, or vehicle storage.",
		PlotID:         "AD-04",
	},
	{
		ID: "5", Title: "Yeovil Commercial Yard", Location: "Yeovil, BA20", City: "yeovil",
		SqFt: 15000, PricePerMonth: 2800,
		Tags:           []string{"Aerospace Zone", "High Security", "Climate Ready"},
		ImageURL:       img(photoAerospace, cardSize),
		Images:         gallery(photoAerospace, photoPlant, photoCompound),
		SecurityRating: models.RatingS, Available: true,
		Coordinates:    models.Coordinates{Lat: 50.9424, Lng: -2.6336},
		Certifications: []string{"BREEAM Very Good", "AS9100", "Secured by Design"},
		Features:       []string{"Aerospace Compliant", "High-Security Fencing", "Environmental Monitoring", "Drainage System", "Emergency Access"},
		SiteManager:    &managerDavid,
		Description:    "Premium commercial yard in Yeovil's aerospace corridor. Meets stringent security requirements for aerospace and defence contractors. Features advanced environmental monitoring and climate-ready drainage infrastructure.",
		PlotID:         "YV-05",
	},
	{
		ID: "6", Title: "Basingstoke Business Park Compound", Location: "Basingstoke, RG21", City: "basingstoke",
		SqFt: 10000, PricePerMonth: 1900,
		Tags:           []string{"M3 Access", "Modern Facilities", "Expandable"},
		ImageURL:       img(photoCompound, cardSize),
		Images:         gallery(photoCompound, photoContainer, photoDocks),
		SecurityRating: models.RatingAPlus, Available: true,
		Coordinates:    models.Coordinates{Lat: 51.2665, Lng: -1.0859},
		Certifications: []string{"ISO 14001", "ISO 9001"},
		Features:       []string{"M3 Junction Access", "Modern Infrastructure", "Expansion Options", "ANPR Entry", "Electric Charging"},
		SiteManager:    &managerSarah,
		Description:    "Modern compound facility within Basingstoke Business Park, offering direct M3 access for London and south coast distribution. Features ANPR-controlled entry and electric vehicle charging infrastructure. Adjacent plots available for expansion.",
		PlotID:         "BS-06",
	},
}

var cityHubs = []models.CityHub{
	{Slug: "southampton", Name: "Southampton", Region: "Hampshire", Description: "Strategic port access with M27 connectivity", HeroImage: img(photoContainer, heroSize)},
	{Slug: "portsmouth", Name: "Portsmouth", Region: "Hampshire", Description: "Coastal logistics hub with naval heritage", HeroImage: img(photoPort, heroSize)},
	{Slug: "fareham", Name: "Fareham", Region: "Hampshire", Description: "Central M27 corridor with excellent distribution links", HeroImage: img(photoDocks, heroSize)},
	{Slug: "andover", Name: "Andover", Region: "Hampshire", Description: "Strategic A303 access for national distribution", HeroImage: img(photoYard, heroSize)},
	{Slug: "yeovil", Name: "Yeovil", Region: "Somerset", Description: "Southwest gateway with aerospace heritage", HeroImage: img(photoPlant, heroSize)},
	{Slug: "basingstoke", Name: "Basingstoke", Region: "Hampshire", Description: "M3 corridor hub for London distribution", HeroImage: img(photoCompound, heroSize)},
}

// Yards returns a copy of every listing in id order.
func Yards() []models.Yard {
	out := make([]models.Yard, len(yards))
	copy(out, yards)
	return out
}

// CityHubs returns a copy of the city landing pages.
func CityHubs() []models.CityHub {
	out := make([]models.CityHub, len(cityHubs))
	copy(out, cityHubs)
	return out
}
