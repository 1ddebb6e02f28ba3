package zodiac

// Game is one round of the zodiac compatibility game. Compatibility is
// computed by the client and only recorded here.
type Game struct {
	ID            int64  `json:"id"`
	UserID        *int64 `json:"userId"`
	Sign          string `json:"sign"`
	MatchSign     string `json:"matchSign"`
	Compatibility int    `json:"compatibility"`
	Timestamp     string `json:"timestamp"`
}
