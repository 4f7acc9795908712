package workout

import "time"

// Session captures one anonymous visitor of the form.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
