package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vsh/internal/core"
	"vsh/internal/server/database"
)

// Sentinel errors for the service layer.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session has ended")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrImageNotFound   = errors.New("vfs image not found")
	ErrImageTooLarge   = errors.New("image exceeds maximum allowed size")
)

// End reasons recorded when a session stops.
const (
	EndReasonExit    = "exit"
	EndReasonClosed  = "closed"
	EndReasonExpired = "expired"
)

// SessionResult is returned when a session is created. The token is
// shown exactly once; only its bcrypt hash is kept.
type SessionResult struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Path      string    `json:"path"`
	StartedAt time.Time `json:"started_at"`
}

// ExecResult is the structured outcome of one executed line.
type ExecResult struct {
	Seq     int          `json:"seq"`
	Line    string       `json:"line"`
	Path    string       `json:"path"`
	Entries []core.Entry `json:"entries,omitempty"`
	Output  string       `json:"output,omitempty"`
	Error   string       `json:"error,omitempty"`
	Exited  bool         `json:"exited"`
	NoOp    bool         `json:"no_op"`
}

// HistoryEntry is one recorded input line in a session's history.
type HistoryEntry struct {
	Seq        int       `json:"seq"`
	Line       string    `json:"line"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

// SessionInfo is returned for metadata queries.
type SessionInfo struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	EndReason    string     `json:"end_reason,omitempty"`
	CommandCount int        `json:"command_count"`
	Live         bool       `json:"live"`
}

// Repo is the subset of the database repository the session service needs.
type Repo interface {
	CreateSession(ctx context.Context, s *database.Session) error
	GetSession(ctx context.Context, id string) (*database.Session, error)
	RecordCommand(ctx context.Context, rec *database.CommandRecord) error
	EndSession(ctx context.Context, id, reason string) error
	ListCommands(ctx context.Context, sessionID string, limit int) ([]*database.CommandRecord, error)
	GetIdle(ctx context.Context, cutoff time.Time) ([]string, error)
	GetStats(ctx context.Context) (*database.Stats, error)
}

// SessionService runs emulator sessions over shared read-only trees.
// The trees are never mutated, so any number of sessions may share one;
// each live session serializes its own command execution.
type SessionService struct {
	repo        Repo
	images      *ImageService
	defaultTree *core.Tree

	mu   sync.Mutex
	live map[string]*liveSession
}

type liveSession struct {
	mu        sync.Mutex
	sess      *core.Session
	tokenHash []byte
	seq       int
}

// NewSessionService creates a session service. images may be nil when
// the server runs without image uploads.
func NewSessionService(repo Repo, images *ImageService, defaultTree *core.Tree) *SessionService {
	return &SessionService{
		repo:        repo,
		images:      images,
		defaultTree: defaultTree,
		live:        make(map[string]*liveSession),
	}
}

// Create starts a new session at the root of its tree. With an empty
// imageID the server's default VFS is used.
func (s *SessionService) Create(ctx context.Context, imageID string) (*SessionResult, error) {
	tree := s.defaultTree
	var imageRef *string
	if imageID != "" {
		if s.images == nil {
			return nil, ErrImageNotFound
		}
		t, err := s.images.Tree(imageID)
		if err != nil {
			return nil, err
		}
		tree = t
		imageRef = &imageID
	}

	id, err := generateSecureToken(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}
	token, err := generateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash session token: %w", err)
	}

	now := time.Now().UTC()
	record := &database.Session{
		ID:           id,
		TokenHash:    string(hash),
		ImageID:      imageRef,
		StartedAt:    now,
		LastActiveAt: now,
	}
	if err := s.repo.CreateSession(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	sess := core.NewSession(tree)
	s.mu.Lock()
	s.live[id] = &liveSession{sess: sess, tokenHash: hash}
	s.mu.Unlock()

	slog.Info("session created", "session_id", id, "image_id", imageID)

	return &SessionResult{
		ID:        id,
		Token:     token,
		Path:      sess.Dir().Path(),
		StartedAt: now,
	}, nil
}

// Exec runs one raw input line in a live session and records it in the
// session's history. Per-line command errors come back inside the
// ExecResult; the returned error is reserved for session-level
// failures (unknown session, bad token, persistence).
func (s *SessionService) Exec(ctx context.Context, id, token, line string) (*ExecResult, error) {
	ls, err := s.lookup(id, token)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.sess.Terminated() {
		return nil, ErrSessionEnded
	}

	ls.seq++
	res := ls.sess.Exec(line)

	record := &database.CommandRecord{
		SessionID:  id,
		Seq:        ls.seq,
		Line:       line,
		OK:         res.Err == nil,
		ExecutedAt: time.Now().UTC(),
	}
	if res.Err != nil {
		kind := res.Err.Error()
		record.ErrorKind = &kind
	}
	if err := s.repo.RecordCommand(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record command: %w", err)
	}

	out := &ExecResult{
		Seq:     ls.seq,
		Line:    line,
		Path:    ls.sess.Dir().Path(),
		Entries: res.Entries,
		Output:  res.Output,
		Exited:  res.Exit,
		NoOp:    res.NoOp,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}

	if res.Exit {
		if err := s.repo.EndSession(ctx, id, EndReasonExit); err != nil {
			slog.Error("failed to end session", "session_id", id, "error", err)
		}
		s.removeLive(id)
		slog.Info("session exited", "session_id", id, "commands", ls.seq)
	}

	return out, nil
}

// Get returns metadata about a session, live or ended.
func (s *SessionService) Get(ctx context.Context, id string) (*SessionInfo, error) {
	record, err := s.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	s.mu.Lock()
	_, isLive := s.live[id]
	s.mu.Unlock()

	info := &SessionInfo{
		ID:           record.ID,
		StartedAt:    record.StartedAt,
		LastActiveAt: record.LastActiveAt,
		EndedAt:      record.EndedAt,
		CommandCount: record.CommandCount,
		Live:         isLive,
	}
	if record.EndReason != nil {
		info.EndReason = *record.EndReason
	}
	return info, nil
}

// History returns a session's persisted command lines in execution order.
func (s *SessionService) History(ctx context.Context, id string, limit int) ([]HistoryEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	recs, err := s.repo.ListCommands(ctx, id, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		entry := HistoryEntry{
			Seq:        rec.Seq,
			Line:       rec.Line,
			OK:         rec.OK,
			ExecutedAt: rec.ExecutedAt,
		}
		if rec.ErrorKind != nil {
			entry.Error = *rec.ErrorKind
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close ends a live session on the caller's behalf.
func (s *SessionService) Close(ctx context.Context, id, token string) error {
	if _, err := s.lookup(id, token); err != nil {
		return err
	}
	if err := s.repo.EndSession(ctx, id, EndReasonClosed); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	s.removeLive(id)
	slog.Info("session closed", "session_id", id)
	return nil
}

// ReapIdle ends every live session whose last activity is older than
// ttl. It returns the number of sessions ended.
func (s *SessionService) ReapIdle(ctx context.Context, ttl time.Duration) (int, error) {
	ids, err := s.repo.GetIdle(ctx, time.Now().UTC().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to query idle sessions: %w", err)
	}

	var reaped int
	for _, id := range ids {
		if err := s.repo.EndSession(ctx, id, EndReasonExpired); err != nil {
			slog.Error("failed to expire session", "session_id", id, "error", err)
			continue
		}
		s.removeLive(id)
		reaped++
		slog.Info("session expired", "session_id", id)
	}
	return reaped, nil
}

// Stats returns aggregate server statistics.
func (s *SessionService) Stats(ctx context.Context) (*database.Stats, error) {
	return s.repo.GetStats(ctx)
}

func (s *SessionService) lookup(id, token string) (*liveSession, error) {
	s.mu.Lock()
	ls, ok := s.live[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if bcrypt.CompareHashAndPassword(ls.tokenHash, []byte(token)) != nil {
		return nil, ErrInvalidToken
	}
	return ls, nil
}

func (s *SessionService) removeLive(id string) {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()
}

// generateSecureToken produces a cryptographically secure, URL-safe random string.
func generateSecureToken(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("crypto/rand failure: %w", err)
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
