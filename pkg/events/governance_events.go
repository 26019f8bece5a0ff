package events

import "time"

// Governance event type codes. Consumers key notification templates and
// metrics off these.
const (
	TypeSessionStarted   = "SESSION_STARTED"
	TypeSessionCompleted = "SESSION_COMPLETED"
	TypeSessionAbandoned = "SESSION_ABANDONED"
	TypeQuotaWarning     = "QUOTA_WARNING"
	TypeLimitRejection   = "LIMIT_REJECTION"
	TypeHintIssued       = "HINT_ISSUED"
)

func NewSessionStarted(userID, sessionID, problemType string) Event {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"user_id":      userID,
			"session_id":   sessionID,
			"problem_type": problemType,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionCompleted(userID, sessionID, reason string, turnCount int) Event {
	return BaseEvent{
		Type: TypeSessionCompleted,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"reason":     reason,
			"turn_count": turnCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionAbandoned(userID, sessionID string, turnCount int) Event {
	return BaseEvent{
		Type: TypeSessionAbandoned,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"turn_count": turnCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewQuotaWarning(userID, sessionID, quotaKind string, current, limit int) Event {
	return BaseEvent{
		Type: TypeQuotaWarning,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"quota_kind": quotaKind,
			"current":    current,
			"limit":      limit,
		},
		OccurredAt: time.Now(),
	}
}

func NewLimitRejection(userID, kind string) Event {
	return BaseEvent{
		Type: TypeLimitRejection,
		Data: map[string]interface{}{
			"user_id": userID,
			"kind":    kind,
		},
		OccurredAt: time.Now(),
	}
}

func NewHintIssued(userID, sessionID string, level int) Event {
	return BaseEvent{
		Type: TypeHintIssued,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"level":      level,
		},
		OccurredAt: time.Now(),
	}
}
