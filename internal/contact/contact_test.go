package contact

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/smtp"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/db"
	"github.com/Zachkp/portfolio/internal/errors"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	got  []Message
	err  error
	done chan struct{}
}

func newRecordingNotifier(err error) *recordingNotifier {
	return &recordingNotifier{err: err, done: make(chan struct{}, 8)}
}

func (n *recordingNotifier) Notify(_ context.Context, m Message) error {
	n.mu.Lock()
	n.got = append(n.got, m)
	n.mu.Unlock()
	n.done <- struct{}{}
	return n.err
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	conn, err := db.Init(filepath.Join(t.TempDir(), "contact.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewService(NewRepository(conn), append(base, opts...)...)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
		msg  string
	}{
		{"missing name", Submission{Email: "a@b.co", Message: "hi"}, MsgMissingFields},
		{"missing email", Submission{Name: "Ada", Message: "hi"}, MsgMissingFields},
		{"missing message", Submission{Name: "Ada", Email: "a@b.co"}, MsgMissingFields},
		{"whitespace only", Submission{Name: "  ", Email: "a@b.co", Message: "hi"}, MsgMissingFields},
		{"no at sign", Submission{Name: "Ada", Email: "ada.example.com", Message: "hi"}, MsgInvalidEmail},
		{"no dot in domain", Submission{Name: "Ada", Email: "ada@example", Message: "hi"}, MsgInvalidEmail},
		{"space in address", Submission{Name: "Ada", Email: "ada lovelace@example.com", Message: "hi"}, MsgInvalidEmail},
	}

	svc := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.sub)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
			assert.Equal(t, tt.msg, errors.MessageOf(err))
		})
	}

	total, _, err := svc.Repository().Counts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total, "rejected submissions must not be stored")
}

func TestSubmit_Stores(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Submit(ctx, Submission{
		Name:    "  Ada Lovelace ",
		Email:   " ada@example.com",
		Message: "Let's talk engines.\n",
	})
	require.NoError(t, err)

	assert.Len(t, m.ID, 26)
	assert.Equal(t, "Ada Lovelace", m.Name)
	assert.Equal(t, "ada@example.com", m.Email)
	assert.Equal(t, DefaultSubject, m.Subject)
	assert.Equal(t, "Let's talk engines.", m.Body)
	assert.Equal(t, fixedNow, m.Timestamp)
	assert.False(t, m.Read)
	assert.Equal(t, StatusNew, m.Status)

	stored, err := svc.Repository().Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, stored)
}

func TestSubmit_UniqueIDs(t *testing.T) {
	svc := newTestService(t)
	seen := map[string]bool{}
	for range 20 {
		m, err := svc.Submit(context.Background(), Submission{Name: "A", Email: "a@b.co", Message: "x"})
		require.NoError(t, err)
		assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}
}

func TestSubmit_StorageFailure(t *testing.T) {
	conn, err := db.Init(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	svc := NewService(NewRepository(conn), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err = svc.Submit(context.Background(), Submission{Name: "A", Email: "a@b.co", Message: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInternal))
	assert.Equal(t, "Internal server error", errors.MessageOf(err))
}

func TestSubmit_NotifiesInBackground(t *testing.T) {
	n := newRecordingNotifier(stderrors.New("smtp down"))
	svc := newTestService(t, WithNotifier(n))

	m, err := svc.Submit(context.Background(), Submission{Name: "A", Email: "a@b.co", Subject: "Hi", Message: "x"})
	require.NoError(t, err, "notification errors never fail a submission")

	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	require.Len(t, n.got, 1)
	assert.Equal(t, m.ID, n.got[0].ID)
	assert.Equal(t, "Hi", n.got[0].Subject)
}

func TestSubmit_NotificationUsesSpawner(t *testing.T) {
	n := newRecordingNotifier(nil)
	var wg sync.WaitGroup
	spawned := 0
	spawn := func(fn func()) {
		spawned++
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	svc := newTestService(t, WithNotifier(n), WithSpawner(spawn))

	_, err := svc.Submit(context.Background(), Submission{Name: "A", Email: "a@b.co", Message: "x"})
	require.NoError(t, err)
	wg.Wait()

	assert.Equal(t, 1, spawned)
	n.mu.Lock()
	defer n.mu.Unlock()
	assert.Len(t, n.got, 1)
}

func TestRepository_ListMarkDelete(t *testing.T) {
	svc := newTestService(t)
	repo := svc.Repository()
	ctx := context.Background()

	first, err := svc.Submit(ctx, Submission{Name: "A", Email: "a@b.co", Message: "first"})
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow.Add(time.Minute) }
	second, err := svc.Submit(ctx, Submission{Name: "B", Email: "b@b.co", Message: "second"})
	require.NoError(t, err)

	all, err := repo.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	require.NoError(t, repo.MarkRead(ctx, first.ID))
	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
	assert.Equal(t, StatusRead, got.Status)

	unread, err := repo.List(ctx, ListOptions{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)

	total, unreadCount, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.EqualValues(t, 1, unreadCount)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.Get(ctx, first.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	assert.True(t, errors.Is(repo.Delete(ctx, "missing"), errors.ErrNotFound))
	assert.True(t, errors.Is(repo.MarkRead(ctx, "missing"), errors.ErrNotFound))
}

func TestSMTPNotifier(t *testing.T) {
	assert.Nil(t, NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com"}))

	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", User: "me@example.com", Pass: "pw", To: "me@example.com"})
	require.NotNil(t, n)

	var addr string
	var payload []byte
	n.send = func(a string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		addr = a
		payload = msg
		return nil
	}

	err := n.Notify(context.Background(), Message{
		ID: "01J", Name: "Eve", Email: "eve@example.com\r\nBcc: all@example.com", Subject: "Hello", Body: "body",
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", addr)
	headers, _, _ := strings.Cut(string(payload), "\r\n\r\n")
	assert.Contains(t, headers, "Subject: Portfolio Contact: Hello")
	assert.NotContains(t, headers, "\r\nBcc:")
}
