package extractor

import "listing-reel-backend/internal/models"

const DemoListingURL = "https://example.com/demo-listing"

// DemoListing is served for DemoListingURL without touching the network.
func DemoListing() models.ListingData {
	return models.ListingData{
		Title:       "Stunning Modern Downtown Condo",
		Description: "Beautiful 2-bedroom, 2-bathroom condo in the heart of downtown. Features modern finishes, stainless steel appliances, hardwood floors, and panoramic city views. Building amenities include fitness center, rooftop deck, and concierge service.",
		Images: []string{
			"https://images.unsplash.com/photo-1560518883-ce09059eeffa?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1583608205776-bfd35f0d9f83?w=800&h=600&fit=crop",
			"https://images.unsplash.com/photo-1502672260266-1c1ef2d93688?w=800&h=600&fit=crop",
		},
		Price:   "$850,000",
		Address: "123 Main Street, Downtown District",
	}
}
