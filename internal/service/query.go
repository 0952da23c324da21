package service

import (
	"strings"

	"reelchat-backend/internal/model"
)

const (
	defaultMediaType = "all"
	defaultLimit     = 10

	minEnergyLevel = 1
	maxEnergyLevel = 10
)

// BuildTextQuery turns free text into the canonical backend request. The
// query is the trimmed input verbatim; empty input builds nothing.
func BuildTextQuery(text string, limit int) (model.RecommendationQuery, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.RecommendationQuery{}, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	return model.RecommendationQuery{
		Query:     trimmed,
		MediaType: defaultMediaType,
		Limit:     limit,
	}, nil
}

// BuildMoodQuery turns the structured mood/energy/time tuple into the
// canonical backend request. A mood must be selected; energy and time pass
// through alongside a natural-language phrasing of the same tuple.
func BuildMoodQuery(mood string, energyLevel, timeAvailableMinutes, limit int) (model.MoodQuery, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return model.MoodQuery{}, ErrNoMood
	}
	if energyLevel < minEnergyLevel {
		energyLevel = minEnergyLevel
	}
	if energyLevel > maxEnergyLevel {
		energyLevel = maxEnergyLevel
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	return model.MoodQuery{
		Mood:                 mood,
		Query:                moodPhrase(mood, energyLevel, timeAvailableMinutes),
		EnergyLevel:          energyLevel,
		TimeAvailableMinutes: timeAvailableMinutes,
		MediaType:            defaultMediaType,
		Limit:                limit,
	}, nil
}

// moodPhrase renders the tuple as the sentence shown in the user turn and
// sent to the backend alongside the structured fields.
func moodPhrase(mood string, energyLevel, timeAvailableMinutes int) string {
	var b strings.Builder
	b.WriteString("I'm feeling ")
	b.WriteString(mood)

	if energyLevel < 3 {
		b.WriteString(" and tired")
	} else if energyLevel > 7 {
		b.WriteString(" and energetic")
	}

	if timeAvailableMinutes > 0 {
		switch {
		case timeAvailableMinutes < 60:
			b.WriteString(", something short")
		case timeAvailableMinutes < 120:
			b.WriteString(", standard length")
		default:
			b.WriteString(", I have plenty of time")
		}
	}

	return b.String()
}
