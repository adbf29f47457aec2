package domain

import "time"

// InteractionType classifies a user action on a book.
type InteractionType string

const (
	InteractionView           InteractionType = "view"
	InteractionLike           InteractionType = "like"
	InteractionAddToCart      InteractionType = "add_to_cart"
	InteractionRemoveFromCart InteractionType = "remove_from_cart"
	InteractionPurchase       InteractionType = "purchase"
	InteractionReview         InteractionType = "review"
)

// Interaction is a recorded user action.
type Interaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	BookID          string          `json:"book_id"`
	InteractionType InteractionType `json:"interaction_type"`
	Metadata        map[string]any  `json:"metadata"`
	Timestamp       time.Time       `json:"timestamp"`
}

// InteractionCreate is the body of POST /interactions.
type InteractionCreate struct {
	BookID          string          `json:"book_id" validate:"required"`
	InteractionType InteractionType `json:"interaction_type" validate:"required,oneof=view like add_to_cart remove_from_cart purchase review"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
}

// BehaviorAnalytics summarizes a user's activity.
type BehaviorAnalytics struct {
	FavoriteGenres            []string `json:"favorite_genres"`
	FavoriteAuthors           []string `json:"favorite_authors"`
	TotalOrders               int      `json:"total_orders"`
	TotalSpent                Money    `json:"total_spent"`
	AverageOrderValue         Money    `json:"average_order_value"`
	PurchaseFrequencyPerMonth float64  `json:"purchase_frequency_per_month"`
}
