package models

type Team struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	LogoKey *string `json:"-"`
	LogoURL *string `json:"logo_url,omitempty"`
}
