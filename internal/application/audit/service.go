package audit

import (
	"context"
	"time"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
	"github.com/jhoicas/servicedesk-api/pkg/logger"
	"github.com/rs/zerolog"
)

// DefaultPersistTimeout tiempo máximo de la escritura en audit_events.
const DefaultPersistTimeout = 2 * time.Second

// Entry evento a registrar. Level vacío = INFO; ActorID vacío = "system".
type Entry struct {
	Event    entity.AuditEventKind
	Level    entity.AuditLevel
	ActorID  string
	TargetID string
	IP       string
	Details  map[string]any
}

// Metrics contadores opcionales del rastro de auditoría.
type Metrics interface {
	ObserveAuditEvent(event, level string)
	ObserveAuditPersistFailure()
}

// Service rastro de auditoría: stream estructurado + persistencia best-effort.
// Se invoca después del commit de la transacción de negocio; nunca devuelve error.
type Service struct {
	repo    repository.AuditRepository
	stream  zerolog.Logger
	metrics Metrics
	timeout time.Duration
	now     func() time.Time
}

// NewService construye el rastro. repo puede ser nil (solo stream).
func NewService(repo repository.AuditRepository, log *logger.Logger, metrics Metrics, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultPersistTimeout
	}
	return &Service{
		repo:    repo,
		stream:  log.With().Str("stream", "audit").Logger(),
		metrics: metrics,
		timeout: timeout,
		now:     time.Now,
	}
}

// Log emite el evento al stream y luego intenta persistirlo.
// La persistencia usa un contexto desacoplado de la cancelación del llamador.
func (s *Service) Log(ctx context.Context, e Entry) {
	ev := s.toEvent(e)

	rec := s.stream.WithLevel(zerologLevel(ev.Level)).
		Time("event_time", ev.Timestamp).
		Str("event", string(ev.Event)).
		Str("actor_id", ev.ActorID)
	if ev.TargetID != nil {
		rec = rec.Str("target_id", *ev.TargetID)
	}
	if ev.IP != nil {
		rec = rec.Str("ip", *ev.IP)
	}
	if len(ev.Details) > 0 {
		rec = rec.Interface("details", ev.Details)
	}
	rec.Msg("audit")

	if s.metrics != nil {
		s.metrics.ObserveAuditEvent(string(ev.Event), string(ev.Level))
	}
	if s.repo == nil {
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.repo.Create(pctx, ev); err != nil {
		s.stream.Error().Err(err).Str("event", string(ev.Event)).Msg("no se pudo persistir el evento de auditoría")
		if s.metrics != nil {
			s.metrics.ObserveAuditPersistFailure()
		}
	}
}

func (s *Service) toEvent(e Entry) *entity.AuditEvent {
	ev := &entity.AuditEvent{
		Timestamp: s.now().UTC(),
		Level:     e.Level,
		Event:     e.Event,
		ActorID:   e.ActorID,
		Details:   e.Details,
	}
	if ev.Level == "" {
		ev.Level = entity.AuditInfo
	}
	if ev.ActorID == "" {
		ev.ActorID = entity.ActorSystem
	}
	if e.TargetID != "" {
		t := e.TargetID
		ev.TargetID = &t
	}
	if e.IP != "" {
		ip := e.IP
		ev.IP = &ip
	}
	return ev
}

func zerologLevel(l entity.AuditLevel) zerolog.Level {
	switch l {
	case entity.AuditWarn:
		return zerolog.WarnLevel
	case entity.AuditError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
