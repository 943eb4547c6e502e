package models

// Product is one card from the paginated product listing.
// URL is absolute and unique within a scrape run.
type Product struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Page        int      `json:"page"`
	ImageURL    *string  `json:"image_url"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
}

// Testimonial is one card from the testimonials API.
// Rating is the number of rating icons rendered on the card.
type Testimonial struct {
	Page     int     `json:"page"`
	Idx      int     `json:"idx"`
	Username *string `json:"username"`
	Text     string  `json:"text"`
	Rating   int     `json:"rating"`
}

// Review is one node from the GraphQL reviews connection.
// Date is always a calendar date in YYYY-MM-DD form.
type Review struct {
	RID    string `json:"rid"`
	Date   string `json:"date"`
	Text   string `json:"text"`
	Rating *int   `json:"rating"`
}
