package domain

import "time"

// User is an account as exposed by the API.
type User struct {
	ID              string     `json:"id" yaml:"id"`
	Email           string     `json:"email" yaml:"email"`
	Username        string     `json:"username" yaml:"username"`
	FullName        *string    `json:"full_name" yaml:"full_name,omitempty"`
	Age             *int       `json:"age" yaml:"age,omitempty"`
	FavoriteGenres  []string   `json:"favorite_genres" yaml:"favorite_genres,omitempty"`
	FavoriteAuthors []string   `json:"favorite_authors" yaml:"favorite_authors,omitempty"`
	AvatarURL       *string    `json:"avatar_url" yaml:"avatar_url,omitempty"`
	IsAdmin         bool       `json:"is_admin" yaml:"is_admin"`
	CreatedAt       time.Time  `json:"created_at" yaml:"created_at"`
	LastLogin       *time.Time `json:"last_login" yaml:"last_login,omitempty"`
}

// DisplayName prefers the full name over the username.
func (u User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}

// Registration is the body of POST /auth/register.
type Registration struct {
	Email           string   `json:"email" validate:"required,email"`
	Username        string   `json:"username" validate:"required,min=3,max=50"`
	Password        string   `json:"password" validate:"required,min=6"`
	FullName        *string  `json:"full_name,omitempty"`
	Age             *int     `json:"age,omitempty" validate:"omitempty,gte=1,lte=150"`
	FavoriteGenres  []string `json:"favorite_genres,omitempty"`
	FavoriteAuthors []string `json:"favorite_authors,omitempty"`
}

// Credentials are sent form-encoded to POST /auth/login. The username
// field carries the email.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserUpdate is a partial profile update. Admins may also flip IsAdmin.
type UserUpdate struct {
	Username        *string   `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	FullName        *string   `json:"full_name,omitempty"`
	Age             *int      `json:"age,omitempty" validate:"omitempty,gte=1,lte=150"`
	FavoriteGenres  *[]string `json:"favorite_genres,omitempty"`
	FavoriteAuthors *[]string `json:"favorite_authors,omitempty"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	IsAdmin         *bool     `json:"is_admin,omitempty"`
}

// Apply merges the set fields of upd into u.
func (u *User) Apply(upd UserUpdate) {
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.FullName != nil {
		u.FullName = upd.FullName
	}
	if upd.Age != nil {
		u.Age = upd.Age
	}
	if upd.FavoriteGenres != nil {
		u.FavoriteGenres = *upd.FavoriteGenres
	}
	if upd.FavoriteAuthors != nil {
		u.FavoriteAuthors = *upd.FavoriteAuthors
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = upd.AvatarURL
	}
	if upd.IsAdmin != nil {
		u.IsAdmin = *upd.IsAdmin
	}
}

// Preferences are the reading preferences of a user.
type Preferences struct {
	FavoriteGenres  []string `json:"favorite_genres"`
	FavoriteAuthors []string `json:"favorite_authors"`
}
