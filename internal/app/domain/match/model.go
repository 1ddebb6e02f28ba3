package match

import "github.com/astroquiz/astroquiz/internal/app/domain"

// Match is a saved result of the match generator.
type Match struct {
	ID               int64           `json:"id"`
	UserID           *int64          `json:"userId"`
	BirthDate        string          `json:"birthDate"`
	TwitterUsername  *string         `json:"twitterUsername"`
	MatchedCharacter domain.Document `json:"matchedCharacter"`
	Compatibility    int             `json:"compatibility"`
	Timestamp        string          `json:"timestamp"`
}
