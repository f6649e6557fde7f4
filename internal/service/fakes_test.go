package service

import (
	"context"
	"errors"
	"sync"

	"ai-legal-assistant-be/internal/dto"
	"ai-legal-assistant-be/internal/entity"
	"ai-legal-assistant-be/internal/repository/contract"
	"ai-legal-assistant-be/internal/repository/specification"
	"ai-legal-assistant-be/internal/repository/unitofwork"
	"ai-legal-assistant-be/pkg/llm"
)

// fakeSessionRepo keeps sessions in a map and hands out copies, so a
// mutation that was never saved cannot leak into the store.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[int64]entity.Session

	failUpdate error
	failCreate error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int64]entity.Session)}
}

func (r *fakeSessionRepo) Exists(_ context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[userID]
	return ok, nil
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.UserId] = *session
	return nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *entity.Session) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.UserId]; !ok {
		return errors.New("session not found")
	}
	r.sessions[session.UserId] = *session
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}

func (r *fakeSessionRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByUserID); ok {
			if sess, found := r.sessions[byID.UserID]; found {
				copy := sess
				return &copy, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		copy := sess
		out = append(out, &copy)
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sessions)), nil
}

// stored returns the persisted row, bypassing the repository interface.
func (r *fakeSessionRepo) stored(userID int64) (entity.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[userID]
	return sess, ok
}

func (r *fakeSessionRepo) put(sess entity.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.UserId] = sess
}

type fakeUnitOfWork struct {
	repo      *fakeSessionRepo
	begins    int
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) Begin(_ context.Context) error { u.begins++; return nil }
func (u *fakeUnitOfWork) Commit() error                 { u.commits++; return nil }
func (u *fakeUnitOfWork) Rollback() error               { u.rollbacks++; return nil }
func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository {
	return u.repo
}

type fakeUowFactory struct {
	repo *fakeSessionRepo
	last *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	f.last = &fakeUnitOfWork{repo: f.repo}
	return f.last
}

// recordingMailer captures sent codes instead of dialing SMTP.
type recordingMailer struct {
	sent []sentMail
	fail error
}

type sentMail struct {
	to   string
	code string
}

func (m *recordingMailer) SendVerificationCode(toEmail, code string) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{to: toEmail, code: code})
	return nil
}

// scriptedProvider returns queued streams in order and records every
// history it was called with.
type scriptedProvider struct {
	streams []llm.Stream
	err     error
	calls   [][]llm.Message
}

func (p *scriptedProvider) ChatStream(_ context.Context, history []llm.Message, _ ...llm.Option) (llm.Stream, error) {
	p.calls = append(p.calls, append([]llm.Message{}, history...))
	if p.err != nil {
		return nil, p.err
	}
	if len(p.streams) == 0 {
		return llm.NewSliceStream(nil), nil
	}
	s := p.streams[0]
	p.streams = p.streams[1:]
	return s, nil
}

// recordingPublisher captures audit messages.
type recordingPublisher struct {
	published []dto.AnalysisCompletedMessage
	fail      error
}

func (p *recordingPublisher) PublishAnalysisCompleted(_ context.Context, msg dto.AnalysisCompletedMessage) error {
	if p.fail != nil {
		return p.fail
	}
	p.published = append(p.published, msg)
	return nil
}

// nopLogger satisfies logger.ILogger for tests.
type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }
