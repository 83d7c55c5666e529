package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"sysassist-be/internal/dto"
	"sysassist-be/internal/entity"
	"sysassist-be/internal/pkg/logger"
	"sysassist-be/internal/repository/memory"
	"sysassist-be/internal/repository/specification"
	"sysassist-be/internal/repository/unitofwork"
	"sysassist-be/pkg/events"
	pktNats "sysassist-be/pkg/nats"
	"sysassist-be/pkg/rag/summary"
	"sysassist-be/pkg/store"
)

const (
	persistStatusOk      = "ok"
	persistStatusWarning = "warning"
	persistStatusError   = "error"
)

type IChatService interface {
	SendMessage(ctx context.Context, email string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	ListSessions(ctx context.Context, email string) (*dto.ListSessionsResponse, error)
	ShowSession(ctx context.Context, email string, chatID int64) (*dto.SessionDetail, error)
	ClearSession(ctx context.Context, email string) (*dto.ClearSessionResponse, error)
	SaveChat(ctx context.Context, req *dto.SaveChatRequest) (*dto.SaveChatResponse, error)
}

// AnswerEngine resolves one user query into an assistant reply. The
// reply is always a usable string, failures included.
type AnswerEngine interface {
	Answer(ctx context.Context, session *store.ChatSession, query string) string
}

// SessionSummarizer derives (title, summary, metadata) for a finished
// conversation. It never fails; degraded output is still output.
type SessionSummarizer interface {
	Summarize(ctx context.Context, messages, responses []string) summary.Result
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	registryRepo   *memory.RegistryRepository
	answerEngine   AnswerEngine
	summarizer     SessionSummarizer
	eventPublisher *pktNats.Publisher
	log            logger.ILogger

	// userLocks serializes registry mutation and persistence per email,
	// so concurrent requests from one user cannot interleave a turn
	// append with an upsert of the same row. Entries are reference
	// counted and dropped once no request holds them, so the map stays
	// bounded by in-flight users rather than every email ever seen.
	locksMu   sync.Mutex
	userLocks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	registryRepo *memory.RegistryRepository,
	answerEngine AnswerEngine,
	summarizer SessionSummarizer,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		registryRepo:   registryRepo,
		answerEngine:   answerEngine,
		summarizer:     summarizer,
		eventPublisher: eventPublisher,
		log:            log,
		userLocks:      make(map[string]*userLock),
	}
}

// lockFor acquires the per-email lock, creating it on first use.
// Callers must release it with unlockFor.
func (c *chatService) lockFor(email string) *userLock {
	c.locksMu.Lock()
	l, ok := c.userLocks[email]
	if !ok {
		l = &userLock{}
		c.userLocks[email] = l
	}
	l.refs++
	c.locksMu.Unlock()

	l.mu.Lock()
	return l
}

func (c *chatService) unlockFor(email string, l *userLock) {
	l.mu.Unlock()

	c.locksMu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(c.userLocks, email)
	}
	c.locksMu.Unlock()
}

// SendMessage runs one full turn: answer the query against the current
// session, append the exchange, then persist best-effort. A blank
// message is a no-op and returns the current chat id unchanged.
func (c *chatService) SendMessage(ctx context.Context, email string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	lock := c.lockFor(email)
	defer c.unlockFor(email, lock)

	registry := c.loadRegistry(ctx, email)
	session := registry.Current()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return &dto.SendMessageResponse{
			ChatID:  session.ChatID,
			Answer:  "",
			Persist: persistStatusWarning,
		}, nil
	}

	// The engine sees the session as it was before this turn, so the
	// recency window never includes the question being answered.
	reply := c.answerEngine.Answer(ctx, session, message)
	session.AppendTurn(message, reply)
	c.registryRepo.Save(registry)

	result := c.persistSession(ctx, email, session)

	return &dto.SendMessageResponse{
		ChatID:  session.ChatID,
		Answer:  reply,
		Persist: result.Status,
	}, nil
}

func (c *chatService) ListSessions(ctx context.Context, email string) (*dto.ListSessionsResponse, error) {
	lock := c.lockFor(email)
	defer c.unlockFor(email, lock)

	registry := c.loadRegistry(ctx, email)

	sessions := make([]dto.SessionSummary, 0, len(registry.Sessions))
	for _, id := range registry.OrderedIDs() {
		s := registry.Sessions[id]
		sessions = append(sessions, dto.SessionSummary{
			ChatID:    s.ChatID,
			Title:     s.Title,
			TurnCount: s.Turns(),
			IsCurrent: s.ChatID == registry.CurrentChatID,
		})
	}

	return &dto.ListSessionsResponse{
		Email:    email,
		Sessions: sessions,
	}, nil
}

func (c *chatService) ShowSession(ctx context.Context, email string, chatID int64) (*dto.SessionDetail, error) {
	lock := c.lockFor(email)
	defer c.unlockFor(email, lock)

	registry := c.loadRegistry(ctx, email)
	s, ok := registry.Sessions[chatID]
	if !ok {
		return nil, nil // Not found
	}

	turns := make([]dto.ChatTurn, 0, s.Turns())
	for i := range s.UserMessages {
		turn := dto.ChatTurn{User: s.UserMessages[i]}
		if i < len(s.LlmResponses) {
			turn.AI = s.LlmResponses[i]
		}
		turns = append(turns, turn)
	}

	return &dto.SessionDetail{
		ChatID:    s.ChatID,
		Title:     s.Title,
		Summary:   s.Summary,
		Turns:     turns,
		IsCurrent: s.ChatID == registry.CurrentChatID,
	}, nil
}

// ClearSession retires the current session and opens a fresh draft.
// Clearing an already-empty draft just re-selects it, so the call is
// idempotent.
func (c *chatService) ClearSession(ctx context.Context, email string) (*dto.ClearSessionResponse, error) {
	lock := c.lockFor(email)
	defer c.unlockFor(email, lock)

	registry := c.loadRegistry(ctx, email)
	chatID := registry.OpenDraft()
	c.registryRepo.Save(registry)

	return &dto.ClearSessionResponse{ChatID: chatID}, nil
}

// SaveChat stores a finished conversation handed over wholesale, the
// path used by clients that kept the transcript on their side. The
// most recent saved row is compared first so a double-tap on "save"
// does not duplicate the chat.
func (c *chatService) SaveChat(ctx context.Context, req *dto.SaveChatRequest) (*dto.SaveChatResponse, error) {
	if len(req.UserMessages) != len(req.LlmResponses) {
		return nil, ErrUnbalancedTranscript
	}
	if len(req.UserMessages) == 0 {
		return &dto.SaveChatResponse{Saved: false}, nil
	}

	lock := c.lockFor(req.Email)
	defer c.unlockFor(req.Email, lock)

	uow := c.uowFactory.NewUnitOfWork(ctx)

	latest, err := uow.ChatRecordRepository().LatestByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if latest != nil && stringSlicesEqual(latest.UserMessages, req.UserMessages) &&
		stringSlicesEqual(latest.LlmResponses, req.LlmResponses) {
		return &dto.SaveChatResponse{
			ChatID:    latest.ChatId,
			Title:     latest.Title,
			Saved:     false,
			Duplicate: true,
		}, nil
	}

	maxID, err := uow.ChatRecordRepository().MaxChatIdByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	chatID := maxID + 1

	result := c.summarizer.Summarize(ctx, req.UserMessages, req.LlmResponses)
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = result.Title
	}

	now := time.Now()
	record := entity.ChatRecord{
		Email:        req.Email,
		ChatId:       chatID,
		Title:        title,
		UserMessages: req.UserMessages,
		LlmResponses: req.LlmResponses,
		Summary:      result.Summary,
		Metadata:     result.Metadata,
		CreatedAt:    now,
	}
	if err := uow.ChatRecordRepository().Insert(ctx, &record); err != nil {
		return nil, err
	}
	if err := uow.ChatIndexRepository().Create(ctx, &entity.ChatIndex{
		Email:     req.Email,
		ChatId:    chatID,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	c.publishPersisted(ctx, req.Email, chatID, title, len(req.UserMessages))

	// Drop the cached registry so the next load sees the saved chat
	c.registryRepo.Delete(req.Email)

	return &dto.SaveChatResponse{
		ChatID:  chatID,
		Title:   title,
		Saved:   true,
		SavedAt: now,
	}, nil
}

// loadRegistry returns the user's in-memory registry, rebuilding it
// from the durable store on a cache miss. Store failures degrade to a
// fresh single-draft registry; chat must stay usable without the
// database.
func (c *chatService) loadRegistry(ctx context.Context, email string) *store.Registry {
	if registry, found := c.registryRepo.Get(email); found {
		return registry
	}

	registry := c.hydrateRegistry(ctx, email)
	c.registryRepo.Save(registry)
	return registry
}

func (c *chatService) hydrateRegistry(ctx context.Context, email string) *store.Registry {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chatIds, err := uow.ChatIndexRepository().ListChatIds(ctx, email)
	if err != nil {
		c.log.Warn("CHAT", "failed to list chat ids, starting fresh registry", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return store.NewRegistry(email)
	}

	registry := &store.Registry{
		Email:    email,
		Sessions: make(map[int64]*store.ChatSession),
	}

	// The draft must clear every durable id, including rows we skip
	// below, or its upsert would clobber an existing chat.
	var maxSeen int64
	for _, id := range chatIds {
		if id > maxSeen {
			maxSeen = id
		}
	}

	for _, id := range chatIds {
		record, err := uow.ChatRecordRepository().FindOne(ctx,
			specification.ByEmail{Email: email},
			specification.ByChatID{ChatID: id},
		)
		if err != nil || record == nil {
			c.log.Warn("CHAT", "skipping unreadable chat row", map[string]interface{}{
				"email":   email,
				"chat_id": id,
			})
			continue
		}

		session, err := store.NewChatSession(record.ChatId, record.UserMessages, record.LlmResponses)
		if err != nil {
			// Row violates the message pairing invariant; skip it
			// rather than poison the registry.
			c.log.Warn("CHAT", "skipping malformed chat row", map[string]interface{}{
				"email":   email,
				"chat_id": id,
				"error":   err.Error(),
			})
			continue
		}
		session.Title = record.Title
		session.Summary = record.Summary
		registry.Put(session)
	}

	if len(registry.Sessions) == 0 && maxSeen == 0 {
		return store.NewRegistry(email)
	}

	draftID := maxSeen + 1
	registry.Put(store.NewDraftSession(draftID))
	registry.CurrentChatID = draftID
	return registry
}

// persistSession writes the session through to the durable store. The
// caller's registry is never touched on failure: chat continues in
// memory and the next turn retries the write.
func (c *chatService) persistSession(ctx context.Context, email string, session *store.ChatSession) dto.PersistResult {
	if session.IsEmpty() || !session.Balanced() {
		return dto.PersistResult{
			Status: persistStatusWarning,
			Detail: "session is empty or unbalanced, nothing persisted",
		}
	}

	result := c.summarizer.Summarize(ctx, session.UserMessages, session.LlmResponses)
	if !result.Empty() {
		session.Title = result.Title
		session.Summary = result.Summary
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()
	record := entity.ChatRecord{
		Email:        email,
		ChatId:       session.ChatID,
		Title:        session.Title,
		UserMessages: session.UserMessages,
		LlmResponses: session.LlmResponses,
		Summary:      session.Summary,
		Metadata:     result.Metadata,
		CreatedAt:    now,
	}
	if err := uow.ChatRecordRepository().Upsert(ctx, &record); err != nil {
		c.log.Error("CHAT", "failed to persist chat record", map[string]interface{}{
			"email":   email,
			"chat_id": session.ChatID,
			"error":   err.Error(),
		})
		return dto.PersistResult{Status: persistStatusError, Detail: err.Error()}
	}

	if err := uow.ChatIndexRepository().Create(ctx, &entity.ChatIndex{
		Email:     email,
		ChatId:    session.ChatID,
		CreatedAt: now,
	}); err != nil {
		c.log.Error("CHAT", "failed to index chat record", map[string]interface{}{
			"email":   email,
			"chat_id": session.ChatID,
			"error":   err.Error(),
		})
		return dto.PersistResult{Status: persistStatusError, Detail: err.Error()}
	}

	c.publishPersisted(ctx, email, session.ChatID, session.Title, session.Turns())

	return dto.PersistResult{Status: persistStatusOk}
}

func (c *chatService) publishPersisted(ctx context.Context, email string, chatID int64, title string, turns int) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.NewChatPersisted(email, chatID, title, turns)
	// Auxiliary: a lost event never fails the chat turn
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.log.Warn("CHAT", "failed to publish CHAT_PERSISTED event", map[string]interface{}{
			"email":   email,
			"chat_id": chatID,
			"error":   err.Error(),
		})
	}
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
