package models

type Season struct {
	ID    int    `json:"id"`
	Label string `json:"label"` // e.g. "2025-2026"
}
