package entity

// MatchCandidate is computed per request and never persisted.
type MatchCandidate struct {
	Listing *Listing `json:"listing"`
	Score   int      `json:"score"`
	Owner   *User    `json:"owner,omitempty"`
}
