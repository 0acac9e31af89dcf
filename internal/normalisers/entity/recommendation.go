package entity

import "github.com/learnquest/questsync/internal/core/domain"

// Recommendations normalises a recommendation response. Input that is not
// an object yields the neutral response.
func (n *Normaliser) Recommendations(raw any) domain.RecommendationResponse {
	m := asObject(decode(raw))
	if m == nil {
		return domain.NeutralRecommendations()
	}

	resp := domain.NeutralRecommendations()
	for i, item := range asList(m["recommendedQuests"]) {
		r := asObject(item)
		questID, ok := asID(r["questId"])
		if !ok {
			continue
		}
		resp.RecommendedQuests = append(resp.RecommendedQuests, domain.Recommendation{
			QuestID:        questID,
			Confidence:     min(max(asFloat(r["confidence"], 0), 0), 1),
			Reasoning:      asString(r["reasoning"], ""),
			SuggestedOrder: asInt(r["suggestedOrder"], i+1),
		})
	}
	for _, item := range asList(m["learningInsights"]) {
		li := asObject(item)
		text := asString(li["insight"], "")
		if text == "" {
			continue
		}
		resp.LearningInsights = append(resp.LearningInsights, domain.LearningInsight{
			Insight: text,
			Type:    insightType(li["type"]),
		})
	}
	switch area := domain.FocusArea(asString(m["nextFocusArea"], "")); area {
	case domain.FocusMath, domain.FocusReading:
		resp.NextFocusArea = area
	}
	return resp
}

func insightType(v any) domain.InsightType {
	switch t := domain.InsightType(asString(v, "")); t {
	case domain.InsightStrength, domain.InsightWeakness:
		return t
	default:
		return domain.InsightSuggestion
	}
}
