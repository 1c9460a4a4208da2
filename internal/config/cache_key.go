package config

import "fmt"

// cacheKeys centralizes every Redis key template used by the application.
type cacheKeys struct{}

// CacheKey is the singleton accessor for Redis key builders.
var CacheKey cacheKeys

// CompetitionPayloadKey stores the student-facing competition payload
// (questions without canonical answers) for a live competition.
func (cacheKeys) CompetitionPayloadKey(competitionID string) string {
	return fmt.Sprintf("competition:%s:payload", competitionID)
}

// CompetitionAnswerKey stores the question-id to canonical-answer hash used
// for MCQ auto-grading.
func (cacheKeys) CompetitionAnswerKey(competitionID string) string {
	return fmt.Sprintf("competition:%s:key", competitionID)
}

// CompetitionEventsChannel is the pub/sub channel carrying status and
// leaderboard change events for one competition.
func (cacheKeys) CompetitionEventsChannel(competitionID string) string {
	return fmt.Sprintf("competition:%s:events", competitionID)
}
