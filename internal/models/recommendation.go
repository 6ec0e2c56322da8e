package models

// Recommendation is one scored task with the factor breakdown and a
// human-readable reason. Scores are normalized to 0..100.
type Recommendation struct {
	Task    Task               `json:"task"`
	Score   float64            `json:"score"`
	Factors map[string]float64 `json:"factors"`
	Why     string             `json:"why"`
}

type SuggestWeekRequest struct {
	Limit *int `json:"limit"`
}
