package domain

import "time"

// Book is a catalog entry as returned by the books endpoints.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn"`
	Description     string    `json:"description"`
	Genre           string    `json:"genre"`
	Publisher       string    `json:"publisher"`
	PublicationYear int       `json:"publication_year"`
	PageCount       int       `json:"page_count"`
	Language        string    `json:"language"`
	CoverImageURL   *string   `json:"cover_image_url"`
	Price           Money     `json:"price"`
	Stock           int       `json:"stock"`
	Tags            []string  `json:"tags"`
	AverageRating   float64   `json:"average_rating"`
	CreatedAt       time.Time `json:"created_at"`
}

// InStock reports whether at least qty copies are available.
func (b Book) InStock(qty int) bool {
	return b.Stock >= qty
}

// BookCreate is the payload for creating a book.
type BookCreate struct {
	Title           string   `json:"title" validate:"required"`
	Author          string   `json:"author" validate:"required"`
	ISBN            *string  `json:"isbn,omitempty"`
	Description     string   `json:"description" validate:"required"`
	Genre           string   `json:"genre" validate:"required"`
	Publisher       string   `json:"publisher" validate:"required"`
	PublicationYear int      `json:"publication_year" validate:"gte=1000,lte=9999"`
	PageCount       int      `json:"page_count" validate:"gte=1"`
	Language        string   `json:"language,omitempty" validate:"omitempty,max=10"`
	CoverImageURL   *string  `json:"cover_image_url,omitempty"`
	Price           float64  `json:"price" validate:"gte=0"`
	Stock           int      `json:"stock" validate:"gte=0"`
	Tags            []string `json:"tags,omitempty"`
}

// BookUpdate is a partial update; nil fields are left unchanged.
type BookUpdate struct {
	Title           *string   `json:"title,omitempty"`
	Author          *string   `json:"author,omitempty"`
	ISBN            *string   `json:"isbn,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Genre           *string   `json:"genre,omitempty"`
	Publisher       *string   `json:"publisher,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty" validate:"omitempty,gte=1000,lte=9999"`
	PageCount       *int      `json:"page_count,omitempty" validate:"omitempty,gte=1"`
	Language        *string   `json:"language,omitempty" validate:"omitempty,max=10"`
	CoverImageURL   *string   `json:"cover_image_url,omitempty"`
	Price           *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock           *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	AverageRating   *float64  `json:"average_rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Tags            *[]string `json:"tags,omitempty"`
}

// BookFilter narrows a catalog listing.
type BookFilter struct {
	Genre     string   `validate:"omitempty"`
	Author    string   `validate:"omitempty"`
	MinPrice  *float64 `validate:"omitempty,gte=0"`
	MaxPrice  *float64 `validate:"omitempty,gte=0"`
	MinRating *float64 `validate:"omitempty,gte=0,lte=5"`
	Skip      int      `validate:"gte=0"`
	Limit     int      `validate:"gte=0,lte=100"`
}

// Matches reports whether b passes the filter. Pagination is ignored.
func (f BookFilter) Matches(b Book) bool {
	if f.Genre != "" && b.Genre != f.Genre {
		return false
	}
	if f.Author != "" && b.Author != f.Author {
		return false
	}
	price, _ := b.Price.Float64()
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && b.AverageRating < *f.MinRating {
		return false
	}
	return true
}
