package mapper

import (
	"encoding/json"
	"time"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/model"
	"ai-tutoring-be/pkg/governance/lifecycle"
	"ai-tutoring-be/pkg/governance/pedagogy"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TutorMapper struct{}

func NewTutorMapper() *TutorMapper {
	return &TutorMapper{}
}

// Session Mappers

func (m *TutorMapper) TutorSessionToEntity(s *model.TutorSession) *entity.TutorSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	var metadata map[string]interface{}
	if len(s.Metadata) > 0 {
		_ = json.Unmarshal(s.Metadata, &metadata)
	}

	return &entity.TutorSession{
		Id:               s.Id,
		UserId:           s.UserId,
		ProblemStatement: s.ProblemStatement,
		ProblemType:      pedagogy.ProblemType(s.ProblemType),
		Status:           lifecycle.Status(s.Status),
		TurnCount:        s.TurnCount,
		StuckLevel:       pedagogy.StuckLevel(s.StuckLevel),
		LastHintLevel:    s.LastHintLevel,
		CompletionReason: s.CompletionReason,
		Metadata:         metadata,
		LastActivityAt:   s.LastActivityAt,
		CompletedAt:      s.CompletedAt,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
		IsDeleted:        s.DeletedAt.Valid,
	}
}

func (m *TutorMapper) TutorSessionToModel(s *entity.TutorSession) *model.TutorSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	var metadata datatypes.JSON
	if s.Metadata != nil {
		if data, err := json.Marshal(s.Metadata); err == nil {
			metadata = data
		}
	}

	return &model.TutorSession{
		Id:               s.Id,
		UserId:           s.UserId,
		ProblemStatement: s.ProblemStatement,
		ProblemType:      string(s.ProblemType),
		Status:           string(s.Status),
		TurnCount:        s.TurnCount,
		StuckLevel:       int(s.StuckLevel),
		LastHintLevel:    s.LastHintLevel,
		CompletionReason: s.CompletionReason,
		Metadata:         metadata,
		LastActivityAt:   s.LastActivityAt,
		CompletedAt:      s.CompletedAt,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
	}
}

// Message Mappers

func (m *TutorMapper) TutorMessageToEntity(msg *model.TutorMessage) *entity.TutorMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	return &entity.TutorMessage{
		Id:             msg.Id,
		TutorSessionId: msg.TutorSessionId,
		Role:           msg.Role,
		Content:        msg.Content,
		TokenCount:     msg.TokenCount,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      msg.DeletedAt.Valid,
	}
}

func (m *TutorMapper) TutorMessageToModel(msg *entity.TutorMessage) *model.TutorMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.TutorMessage{
		Id:             msg.Id,
		TutorSessionId: msg.TutorSessionId,
		Role:           msg.Role,
		Content:        msg.Content,
		TokenCount:     msg.TokenCount,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

// Hint Mappers

func (m *TutorMapper) HintToEntity(h *model.Hint) *entity.Hint {
	if h == nil {
		return nil
	}
	return &entity.Hint{
		Id:             h.Id,
		TutorSessionId: h.TutorSessionId,
		Level:          h.Level,
		Content:        h.Content,
		CreatedAt:      h.CreatedAt,
	}
}

func (m *TutorMapper) HintToModel(h *entity.Hint) *model.Hint {
	if h == nil {
		return nil
	}
	return &model.Hint{
		Id:             h.Id,
		TutorSessionId: h.TutorSessionId,
		Level:          h.Level,
		Content:        h.Content,
		CreatedAt:      h.CreatedAt,
	}
}
