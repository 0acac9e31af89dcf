package domain

// FocusArea is the subject a student should work on next.
type FocusArea string

// Focus areas.
const (
	FocusMath     FocusArea = "math"
	FocusReading  FocusArea = "reading"
	FocusBalanced FocusArea = "balanced"
)

// Recommendation suggests a quest to a student.
type Recommendation struct {
	QuestID        string  `json:"questId"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
	SuggestedOrder int     `json:"suggestedOrder"`
}

// InsightType categorises a learning insight.
type InsightType string

// Insight types.
const (
	InsightStrength   InsightType = "strength"
	InsightWeakness   InsightType = "weakness"
	InsightSuggestion InsightType = "suggestion"
)

// LearningInsight is an observation about a student's learning.
type LearningInsight struct {
	Insight string      `json:"insight"`
	Type    InsightType `json:"type"`
}

// RecommendationResponse is the recommendation service's answer for a student.
type RecommendationResponse struct {
	RecommendedQuests []Recommendation  `json:"recommendedQuests"`
	LearningInsights  []LearningInsight `json:"learningInsights"`
	NextFocusArea     FocusArea         `json:"nextFocusArea"`
}

// NeutralRecommendations is returned when no recommendation is available.
func NeutralRecommendations() RecommendationResponse {
	return RecommendationResponse{
		RecommendedQuests: []Recommendation{},
		LearningInsights:  []LearningInsight{},
		NextFocusArea:     FocusBalanced,
	}
}
