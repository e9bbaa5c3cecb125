package contact

import (
	"context"
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	"github.com/Zachkp/portfolio/internal/errors"
)

// Service accepts submissions from the contact form.
type Service struct {
	repo          *Repository
	notifier      Notifier
	validate      *validator.Validate
	logger        *slog.Logger
	now           func() time.Time
	spawn         func(func())
	notifyTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sends every accepted message through n. A nil n is ignored.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSpawner runs notifications through spawn instead of a bare
// goroutine, so the caller can wait for them on shutdown.
func WithSpawner(spawn func(func())) Option {
	return func(s *Service) { s.spawn = spawn }
}

// NewService builds a Service over repo.
func NewService(repo *Repository, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		validate:      validator.New(),
		logger:        slog.Default(),
		now:           time.Now,
		spawn:         func(fn func()) { go fn() },
		notifyTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository exposes the underlying store for the admin pages.
func (s *Service) Repository() *Repository {
	return s.repo
}

// Submit validates sub, stores it and returns the stored message.
// Validation failures are INVALID_REQUEST errors; storage failures are
// INTERNAL. Notification runs in the background and never fails Submit.
func (s *Service) Submit(ctx context.Context, sub Submission) (Message, error) {
	sub = sub.Trimmed()
	if err := sub.Validate(s.validate); err != nil {
		return Message{}, err
	}

	subject := sub.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	now := s.now().UTC()
	m := Message{
		ID:        newID(now),
		Name:      sub.Name,
		Email:     sub.Email,
		Subject:   subject,
		Body:      sub.Message,
		Timestamp: now,
		Read:      false,
		Status:    StatusNew,
	}

	if err := s.repo.Save(ctx, m); err != nil {
		s.logger.Error("failed to store contact message", "error", err)
		return Message{}, errors.NewInternal(err)
	}
	s.logger.Info("contact message stored", "id", m.ID)

	if s.notifier != nil {
		notifyCtx := context.WithoutCancel(ctx)
		s.spawn(func() { s.notify(notifyCtx, m) })
	}
	return m, nil
}

func (s *Service) notify(ctx context.Context, m Message) {
	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.notifier.Notify(ctx, m); err != nil {
		s.logger.Warn("contact notification failed", "id", m.ID, "error", err)
		return
	}
	s.logger.Debug("contact notification sent", "id", m.ID)
}

func newID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.Monotonic(rand.Reader, 0)).String()
}
