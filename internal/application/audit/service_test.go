package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
	"github.com/jhoicas/servicedesk-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditRepo struct {
	err      error
	events   []*entity.AuditEvent
	ctxErr   error
	deadline bool
}

func (f *fakeAuditRepo) Create(ctx context.Context, e *entity.AuditEvent) error {
	f.ctxErr = ctx.Err()
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAuditRepo) List(context.Context, repository.AuditFilter) ([]*entity.AuditEvent, error) {
	return f.events, nil
}

type countingMetrics struct {
	events   int
	failures int
}

func (m *countingMetrics) ObserveAuditEvent(string, string) { m.events++ }
func (m *countingMetrics) ObserveAuditPersistFailure()      { m.failures++ }

func newTestService(repo repository.AuditRepository, m Metrics) (*Service, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.Config{Env: "test", Level: "debug", Output: buf})
	return NewService(repo, log, m, time.Second), buf
}

func TestLogPersistsAndStreams(t *testing.T) {
	repo := &fakeAuditRepo{}
	m := &countingMetrics{}
	svc, buf := newTestService(repo, m)

	svc.Log(context.Background(), Entry{
		Event:    entity.EventUserCreated,
		ActorID:  "u-1",
		TargetID: "u-2",
		IP:       "10.0.0.1",
		Details:  map[string]any{"email": "a@b.c"},
	})

	require.Len(t, repo.events, 1)
	ev := repo.events[0]
	assert.Equal(t, entity.AuditInfo, ev.Level)
	assert.Equal(t, "u-1", ev.ActorID)
	require.NotNil(t, ev.TargetID)
	assert.Equal(t, "u-2", *ev.TargetID)
	require.NotNil(t, ev.IP)
	assert.False(t, ev.Timestamp.IsZero())
	assert.True(t, repo.deadline)
	assert.Equal(t, 1, m.events)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["stream"])
	assert.Equal(t, "USER_CREATED", line["event"])
	assert.Equal(t, "info", line["level"])
}

func TestLogSwallowsPersistenceFailure(t *testing.T) {
	repo := &fakeAuditRepo{err: errors.New("db down")}
	m := &countingMetrics{}
	svc, buf := newTestService(repo, m)

	assert.NotPanics(t, func() {
		svc.Log(context.Background(), Entry{Event: entity.EventAccessDenied, Level: entity.AuditWarn, ActorID: "u-1"})
	})
	assert.Equal(t, 1, m.failures)
	assert.Contains(t, buf.String(), "ACCESS_DENIED")
	assert.Contains(t, buf.String(), "db down")
}

func TestLogDetachesFromCallerCancellation(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc, _ := newTestService(repo, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.Log(ctx, Entry{Event: entity.EventPendencyCreated})

	assert.NoError(t, repo.ctxErr)
	require.Len(t, repo.events, 1)
	assert.Equal(t, entity.ActorSystem, repo.events[0].ActorID)
}

func TestLogWithoutRepositoryOnlyStreams(t *testing.T) {
	svc, buf := newTestService(nil, nil)
	svc.Log(context.Background(), Entry{Event: entity.EventSystem, Level: entity.AuditError})
	assert.Contains(t, buf.String(), `"level":"error"`)
}
