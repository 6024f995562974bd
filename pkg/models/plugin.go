package models

// Plugin describes an expert plugin in the marketplace catalog.
type Plugin struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Domain string  `json:"domain"`
	Score  float64 `json:"score"`
	Price  int     `json:"price"`
	Status string  `json:"status"`
}
