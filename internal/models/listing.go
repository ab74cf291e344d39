package models

// ListingData is what the extractor derives from a listing page.
type ListingData struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Price       string   `json:"price"`
	Address     string   `json:"address"`
}
