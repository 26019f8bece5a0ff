package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-tutoring-be/internal/constant"
	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/pkg/events"
	"ai-tutoring-be/pkg/governance/budget"
	"ai-tutoring-be/pkg/governance/lifecycle"
	"ai-tutoring-be/pkg/governance/pedagogy"
	"ai-tutoring-be/pkg/governance/quota"
	"ai-tutoring-be/pkg/governance/ratelimit"
	"ai-tutoring-be/pkg/governance/tokens"
	"ai-tutoring-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionTerminal = errors.New("session is no longer active")
)

// ITutorService defines the tutoring surface. Every turn passes the
// full governance pipeline before the reasoning service is consulted.
type ITutorService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID, status string) ([]*dto.GetAllSessionsResponse, error)
	GetTurnHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetTurnHistoryResponse, error)
	SendTurn(ctx context.Context, userId uuid.UUID, request *dto.SendTurnRequest) (*dto.SendTurnResponse, error)
	CompleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error
	GetUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageResponse, error)
	ResumeMonitors(ctx context.Context) error
	Shutdown()
}

// tutorService coordinates the governance engines around the turn loop.
type tutorService struct {
	uowFactory unitofwork.RepositoryFactory

	limiter    *ratelimit.Limiter
	dailyQuota *quota.DailyQuota
	turnPolicy quota.TurnPolicy
	budgetMgr  *budget.Manager
	counter    *tokens.Counter
	detector   *pedagogy.Detector
	advisor    *pedagogy.Advisor
	judge      *pedagogy.Judge
	monitor    *lifecycle.Monitor
	monitorCfg lifecycle.MonitorConfig

	llmProvider llm.LLMProvider
	publisher   message.Publisher
	logger      logger.ILogger
}

func NewTutorService(
	uowFactory unitofwork.RepositoryFactory,
	limiter *ratelimit.Limiter,
	dailyQuota *quota.DailyQuota,
	turnPolicy quota.TurnPolicy,
	budgetMgr *budget.Manager,
	counter *tokens.Counter,
	detector *pedagogy.Detector,
	advisor *pedagogy.Advisor,
	judge *pedagogy.Judge,
	monitorCfg lifecycle.MonitorConfig,
	llmProvider llm.LLMProvider,
	publisher message.Publisher,
	log logger.ILogger,
) ITutorService {
	s := &tutorService{
		uowFactory:  uowFactory,
		limiter:     limiter,
		dailyQuota:  dailyQuota,
		turnPolicy:  turnPolicy,
		budgetMgr:   budgetMgr,
		counter:     counter,
		detector:    detector,
		advisor:     advisor,
		judge:       judge,
		llmProvider: llmProvider,
		publisher:   publisher,
		logger:      log,
	}
	s.monitorCfg = monitorCfg
	s.monitor = lifecycle.NewMonitor(s, s.abandonSession, monitorCfg)
	return s
}

// Probe implements lifecycle.Prober so the monitor can read session
// state without holding a repository reference of its own.
func (s *tutorService) Probe(ctx context.Context, sessionID string) (lifecycle.Status, time.Time, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return lifecycle.StatusAbandoned, time.Time{}, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.TutorSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return lifecycle.StatusInProgress, time.Time{}, err
	}
	if session == nil {
		// Deleted sessions need no monitor.
		return lifecycle.StatusAbandoned, time.Time{}, nil
	}
	return session.Status, session.LastActivityAt, nil
}

// abandonSession is the monitor's timeout callback.
func (s *tutorService) abandonSession(ctx context.Context, sessionID string) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.TutorSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil || session == nil {
		return
	}

	next, err := lifecycle.Transition(session.Status, lifecycle.StatusAbandoned)
	if err != nil {
		return // raced with another terminal transition
	}

	now := time.Now()
	session.Status = next
	session.CompletionReason = constant.CompletionReasonAbandoned
	session.CompletedAt = &now
	session.UpdatedAt = &now

	applied, err := uow.TutorSessionRepository().UpdateInProgress(ctx, session)
	if err != nil {
		s.logger.Error("TutorService", "Failed to abandon inactive session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}
	if !applied {
		return // raced with another terminal transition
	}

	s.logger.Info("TutorService", "Session abandoned after inactivity", map[string]interface{}{
		"session_id": sessionID,
		"turn_count": session.TurnCount,
	})
	s.publishEvent(events.NewSessionAbandoned(session.UserId.String(), sessionID, session.TurnCount))
}

func (s *tutorService) CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	if decision := s.limiter.Check(userId.String()); !decision.Allowed {
		s.publishEvent(events.NewLimitRejection(userId.String(), dto.RejectionRateLimit))
		return nil, dto.NewRateLimitError(decision.Limit, decision.RetryAfter)
	}

	// Starting a session is what charges the daily problem quota.
	daily := s.dailyQuota.Check(userId.String())
	if !daily.Allowed {
		s.publishEvent(events.NewLimitRejection(userId.String(), dto.RejectionDailyLimit))
		return nil, dto.NewDailyLimitError(daily.Limit, daily.Current, daily.ResetAt)
	}

	now := time.Now()
	session := &entity.TutorSession{
		Id:               uuid.New(),
		UserId:           userId,
		ProblemStatement: request.ProblemStatement,
		ProblemType:      pedagogy.ClassifyProblem(request.ProblemStatement),
		Status:           lifecycle.StatusInProgress,
		LastActivityAt:   now,
		CreatedAt:        now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.TutorSessionRepository().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.dailyQuota.RecordProblemStarted(userId.String())
	s.monitor.Watch(session.Id.String())

	s.logger.Info("TutorService", "Session created", map[string]interface{}{
		"session_id":   session.Id,
		"user_id":      userId,
		"problem_type": session.ProblemType,
	})
	s.publishEvent(events.NewSessionStarted(userId.String(), session.Id.String(), string(session.ProblemType)))

	return &dto.CreateSessionResponse{
		Id:          session.Id,
		ProblemType: string(session.ProblemType),
		Status:      string(session.Status),
		CreatedAt:   session.CreatedAt,
	}, nil
}

func (s *tutorService) GetAllSessions(ctx context.Context, userId uuid.UUID, status string) ([]*dto.GetAllSessionsResponse, error) {
	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if status != "" {
		specs = append(specs, specification.Filter("status", status))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.TutorSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, session := range sessions {
		res[i] = &dto.GetAllSessionsResponse{
			Id:               session.Id,
			ProblemStatement: session.ProblemStatement,
			ProblemType:      string(session.ProblemType),
			Status:           string(session.Status),
			TurnCount:        session.TurnCount,
			CreatedAt:        session.CreatedAt,
			UpdatedAt:        session.UpdatedAt,
		}
	}
	return res, nil
}

func (s *tutorService) GetTurnHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetTurnHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.TutorMessageRepository().FindAll(ctx,
		specification.ByTutorSessionID{TutorSessionID: session.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetTurnHistoryResponse, len(messages))
	for i, msg := range messages {
		res[i] = &dto.GetTurnHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
	}
	return res, nil
}

// SendTurn runs the full governance pipeline for one student message:
// admission, session state, turn quota, pedagogy, token budget, the
// reasoning call, persistence, then lifecycle and events.
func (s *tutorService) SendTurn(ctx context.Context, userId uuid.UUID, request *dto.SendTurnRequest) (*dto.SendTurnResponse, error) {
	// 1. Admission control. Cheapest check runs first.
	if decision := s.limiter.Check(userId.String()); !decision.Allowed {
		s.publishEvent(events.NewLimitRejection(userId.String(), dto.RejectionRateLimit))
		return nil, dto.NewRateLimitError(decision.Limit, decision.RetryAfter)
	}

	// 2. Session ownership and lifecycle state.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.ownedSession(ctx, uow, userId, request.TutorSessionId)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		if session.CompletionReason == constant.CompletionReasonTurnLimit {
			s.publishEvent(events.NewLimitRejection(userId.String(), dto.RejectionSessionLimit))
			return nil, dto.NewSessionLimitError(s.turnPolicy.MaxTurns, session.TurnCount)
		}
		return nil, ErrSessionTerminal
	}

	// 3. Turn quota against the cap, before the new turn is accepted.
	if session.TurnCount >= s.turnPolicy.MaxTurns {
		s.publishEvent(events.NewLimitRejection(userId.String(), dto.RejectionSessionLimit))
		return nil, dto.NewSessionLimitError(s.turnPolicy.MaxTurns, session.TurnCount)
	}

	// 4. Load history and frame the conversation.
	stored, err := uow.TutorMessageRepository().FindAll(ctx,
		specification.ByTutorSessionID{TutorSessionID: session.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	conversation := s.frameConversation(session, stored, request.Content)

	// 5. Token budget. Fit first, then the authoritative check.
	fitted, trimReport := s.budgetMgr.Fit(conversation)
	check := s.budgetMgr.Check(fitted)
	if !check.Allowed {
		s.publishEvent(events.NewLimitRejection(userId.String(), dto.RejectionTokenLimit))
		return nil, dto.NewTokenLimitError(s.budgetMgr.Available(), check.TokenCount)
	}
	if trimReport.Compressed || trimReport.Truncated {
		s.logger.Info("TutorService", "Conversation trimmed to budget", map[string]interface{}{
			"session_id":      session.Id,
			"removed":         trimReport.RemovedCount,
			"compressed":      trimReport.Compressed,
			"truncated":       trimReport.Truncated,
			"original_tokens": trimReport.OriginalTokens,
			"final_tokens":    trimReport.FinalTokens,
		})
	}

	// 6. Pedagogy: stuck detection, hint advice, completion judgment.
	assessment := s.detector.Assess(conversation)

	var hint *pedagogy.Hint
	recentLevels, err := s.recentHintLevels(ctx, uow, session.Id)
	if err != nil {
		// The turn proceeds without a hint rather than failing.
		s.logger.Warn("TutorService", "Hint history unavailable, skipping hint this turn", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	} else {
		hint, err = s.advisor.Advise(ctx, assessment, fitted, recentLevels)
		if err != nil {
			// Degraded hint (level without content) still goes out.
			s.logger.Warn("TutorService", "Hint generation degraded", map[string]interface{}{
				"session_id": session.Id,
				"error":      err.Error(),
			})
		}
	}

	// Turn accounting follows the session counter, not the framed
	// conversation: framing injects the problem preamble as a user
	// message and would skew the count by one.
	newTurnCount := session.TurnCount + 1
	turnStatus := s.turnPolicy.Status(newTurnCount)

	var completion *pedagogy.CompletionResult
	if s.judge.ShouldEvaluate(newTurnCount, assessment.Level) {
		result := s.judge.Evaluate(ctx, session.ProblemStatement, conversation)
		completion = &result
	}

	// 7. The reasoning call.
	reply, err := s.llmProvider.Chat(ctx, fitted, llm.WithTemperature(0.7))
	if err != nil {
		return nil, fmt.Errorf("reasoning service: %w", err)
	}

	// 8. Persist the turn and updated session state atomically.
	now := time.Now()
	userMsg := &entity.TutorMessage{
		Id:             uuid.New(),
		TutorSessionId: session.Id,
		Role:           constant.TurnRoleUser,
		Content:        request.Content,
		TokenCount:     s.counter.CountText(request.Content),
		CreatedAt:      now,
	}
	assistantMsg := &entity.TutorMessage{
		Id:             uuid.New(),
		TutorSessionId: session.Id,
		Role:           constant.TurnRoleAssistant,
		Content:        reply,
		TokenCount:     s.counter.CountText(reply),
		CreatedAt:      now.Add(time.Millisecond),
	}

	session.TurnCount = newTurnCount
	session.StuckLevel = assessment.Level
	session.LastActivityAt = now
	session.UpdatedAt = &now
	if hint != nil {
		session.LastHintLevel = hint.Level
	}

	// The completion verdict rides on the response as a suggestion;
	// finalizing a solved session stays with the explicit complete
	// endpoint. Only the turn cap closes a session from inside the
	// turn loop.
	if newTurnCount >= s.turnPolicy.MaxTurns {
		// Turn cap reached: this turn is served, then the session closes.
		if next, terr := lifecycle.Transition(session.Status, lifecycle.StatusCompleted); terr == nil {
			session.Status = next
			session.CompletionReason = constant.CompletionReasonTurnLimit
			session.CompletedAt = &now
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.TutorMessageRepository().CreateBatch(ctx, []*entity.TutorMessage{userMsg, assistantMsg}); err != nil {
		return nil, err
	}
	if hint != nil {
		hintRow := &entity.Hint{
			Id:             uuid.New(),
			TutorSessionId: session.Id,
			Level:          hint.Level,
			Content:        hint.Content,
			CreatedAt:      now,
		}
		if err := uow.HintRepository().Create(ctx, hintRow); err != nil {
			return nil, err
		}
	}
	// Guarded write: if the monitor abandoned the session while this
	// turn was in flight, the stale state must not resurrect it.
	applied, err := uow.TutorSessionRepository().UpdateInProgress(ctx, session)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrSessionTerminal
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// 9. Lifecycle and events, off the hot path consequences.
	if session.Status.Terminal() {
		s.monitor.Stop(session.Id.String())
		s.publishEvent(events.NewSessionCompleted(userId.String(), session.Id.String(), session.CompletionReason, session.TurnCount))
	}
	if turnStatus.ShouldWarn {
		s.publishEvent(events.NewQuotaWarning(userId.String(), session.Id.String(), "turns", turnStatus.CurrentTurns, turnStatus.MaxTurns))
	}
	if hint != nil {
		s.publishEvent(events.NewHintIssued(userId.String(), session.Id.String(), hint.Level))
	}

	return s.buildTurnResponse(session, userMsg, assistantMsg, hint, completion, turnStatus, check), nil
}

func (s *tutorService) CompleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return err
	}

	next, err := lifecycle.Transition(session.Status, lifecycle.StatusCompleted)
	if err != nil {
		return ErrSessionTerminal
	}

	now := time.Now()
	session.Status = next
	session.CompletionReason = constant.CompletionReasonSolved
	session.CompletedAt = &now
	session.UpdatedAt = &now

	applied, err := uow.TutorSessionRepository().UpdateInProgress(ctx, session)
	if err != nil {
		return err
	}
	if !applied {
		return ErrSessionTerminal
	}

	s.monitor.Stop(session.Id.String())
	s.publishEvent(events.NewSessionCompleted(userId.String(), session.Id.String(), session.CompletionReason, session.TurnCount))
	return nil
}

func (s *tutorService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.ownedSession(ctx, uow, userId, request.TutorSessionId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.TutorMessageRepository().DeleteByTutorSessionId(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.TutorSessionRepository().Delete(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.monitor.Stop(session.Id.String())
	return nil
}

// GetUsage is advisory only; nothing here consumes tokens or quota.
func (s *tutorService) GetUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageResponse, error) {
	rate := s.limiter.Status(userId.String())
	daily := s.dailyQuota.Check(userId.String())

	uow := s.uowFactory.NewUnitOfWork(ctx)
	active, err := uow.TutorSessionRepository().Count(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByStatus{Status: string(lifecycle.StatusInProgress)},
	)
	if err != nil {
		return nil, err
	}

	var lastSessionAt *time.Time
	latest, err := uow.TutorSessionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err == nil && latest != nil {
		lastSessionAt = &latest.CreatedAt
	}

	return &dto.UsageResponse{
		RateLimitRemaining: rate.Remaining,
		RateLimit:          rate.Limit,
		DailyUsed:          daily.Current,
		DailyLimit:         daily.Limit,
		DailyResetAt:       daily.ResetAt,
		ActiveSessions:     int(active),
		LastSessionAt:      lastSessionAt,
	}, nil
}

// ResumeMonitors reconciles session state after a process restart:
// sessions already past the inactivity timeout are abandoned outright,
// the rest get fresh monitors, and today's daily counters are rebuilt
// from the sessions table because the quota store is process-local.
func (s *tutorService) ResumeMonitors(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cutoff := time.Now().Add(-s.monitorCfg.InactivityTimeout)
	stale, err := uow.TutorSessionRepository().FindAll(ctx,
		specification.ByStatus{Status: string(lifecycle.StatusInProgress)},
		specification.InactiveSince{Cutoff: cutoff},
	)
	if err != nil {
		return err
	}
	for _, session := range stale {
		s.abandonSession(ctx, session.Id.String())
	}

	active, err := uow.TutorSessionRepository().FindAll(ctx,
		specification.ByStatus{Status: string(lifecycle.StatusInProgress)},
	)
	if err != nil {
		return err
	}
	for _, session := range active {
		s.monitor.Watch(session.Id.String())
	}

	if err := s.seedDailyCounters(ctx, uow); err != nil {
		s.logger.Warn("TutorService", "Failed to rebuild daily quota counters", map[string]interface{}{"error": err.Error()})
	}

	s.logger.Info("TutorService", "Reconciled sessions on startup", map[string]interface{}{
		"abandoned": len(stale),
		"resumed":   len(active),
	})
	return nil
}

// seedDailyCounters replays today's session creations into the quota
// store so a restart cannot hand users a fresh daily allowance.
func (s *tutorService) seedDailyCounters(ctx context.Context, uow unitofwork.UnitOfWork) error {
	today, err := uow.TutorSessionRepository().FindAll(ctx,
		specification.CreatedOnUTCDay{Day: time.Now().UTC()},
	)
	if err != nil {
		return err
	}

	started := make(map[string]int, len(today))
	for _, session := range today {
		started[session.UserId.String()]++
	}
	for userKey, count := range started {
		s.dailyQuota.Seed(userKey, count)
	}
	return nil
}

func (s *tutorService) Shutdown() {
	s.monitor.StopAll()
}

// --- helpers ---

func (s *tutorService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.TutorSession, error) {
	session, err := uow.TutorSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// frameConversation assembles the model-facing message list: tutor
// system prompt, the problem as the first user message, stored turns,
// then the incoming message.
func (s *tutorService) frameConversation(session *entity.TutorSession, stored []*entity.TutorMessage, incoming string) []llm.Message {
	msgs := make([]llm.Message, 0, len(stored)+3)
	msgs = append(msgs, llm.Message{Role: constant.TurnRoleSystem, Content: constant.TutorSystemPromptV1})
	msgs = append(msgs, llm.Message{Role: constant.TurnRoleUser, Content: constant.ProblemStatementPreamble + session.ProblemStatement})
	for _, m := range stored {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: constant.TurnRoleUser, Content: incoming})
	return msgs
}

func (s *tutorService) recentHintLevels(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]int, error) {
	hints, err := uow.HintRepository().FindAll(ctx,
		specification.ByTutorSessionID{TutorSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 2},
	)
	if err != nil {
		return nil, err
	}
	// Newest last, the order the advisor expects.
	levels := make([]int, len(hints))
	for i, h := range hints {
		levels[len(hints)-1-i] = h.Level
	}
	return levels, nil
}

func (s *tutorService) buildTurnResponse(
	session *entity.TutorSession,
	userMsg, assistantMsg *entity.TutorMessage,
	hint *pedagogy.Hint,
	completion *pedagogy.CompletionResult,
	turnStatus quota.TurnStatus,
	check budget.CheckResult,
) *dto.SendTurnResponse {
	res := &dto.SendTurnResponse{
		TutorSessionId: session.Id,
		Status:         string(session.Status),
		Sent: &dto.TurnMessage{
			Id:        userMsg.Id,
			Role:      userMsg.Role,
			Content:   userMsg.Content,
			CreatedAt: userMsg.CreatedAt,
		},
		Reply: &dto.TurnMessage{
			Id:        assistantMsg.Id,
			Role:      assistantMsg.Role,
			Content:   assistantMsg.Content,
			CreatedAt: assistantMsg.CreatedAt,
		},
		Governance: dto.GovernanceDTO{
			TurnsUsed:      session.TurnCount,
			TurnsRemaining: turnStatus.Remaining,
			TurnWarning:    turnStatus.ShouldWarn,
			StuckLevel:     session.StuckLevel.String(),
			TokensUsed:     check.TokenCount,
			TokenWarning:   check.Warning,
			BudgetPercent:  check.Budget.PercentUsed,
		},
	}
	if hint != nil {
		res.Hint = &dto.HintDTO{Level: hint.Level, Content: hint.Content}
	}
	if completion != nil {
		res.Completion = &dto.CompletionDTO{
			IsComplete: completion.IsComplete,
			Confidence: completion.Confidence,
			Source:     completion.Source,
			Reasoning:  completion.Reasoning,
		}
	}
	return res
}

func (s *tutorService) publishEvent(event events.Event) {
	if s.publisher == nil {
		return
	}
	payload, err := MarshalEvent(event)
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.publisher.Publish(constant.GovernanceEventTopic, msg); err != nil {
		s.logger.Warn("TutorService", "Event publish failed", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
