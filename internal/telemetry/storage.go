package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

const storageScopeName = "github.com/dailyworkspace/daybook/storage"

// InstrumentedStorage wraps storage.Storage with OTel tracing and metrics.
// Every method gets a span and is counted in daybook.storage.* metrics.
// Use WrapStorage to create one; it returns the store unchanged when
// telemetry is disabled.
//
// Calls made on the storage.Transaction handed to RunInTransaction are not
// individually traced; the transaction as a whole is.
type InstrumentedStorage struct {
	inner      storage.Storage
	tracer     trace.Tracer
	ops        metric.Int64Counter
	dur        metric.Float64Histogram
	errs       metric.Int64Counter
	entryGauge metric.Int64Gauge
}

// WrapStorage returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is.
func WrapStorage(s storage.Storage) storage.Storage {
	if !Enabled() {
		return s
	}
	return newInstrumentedStorage(s)
}

func newInstrumentedStorage(s storage.Storage) *InstrumentedStorage {
	m := Meter(storageScopeName)
	ops, _ := m.Int64Counter("daybook.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("daybook.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("daybook.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	entryGauge, _ := m.Int64Gauge("daybook.note.entries",
		metric.WithDescription("Entries on the most recently read note"),
	)
	return &InstrumentedStorage{
		inner:      s,
		tracer:     Tracer(storageScopeName),
		ops:        ops,
		dur:        dur,
		errs:       errs,
		entryGauge: entryGauge,
	}
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedStorage) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStorage) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

// ── Daily notes ─────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) GetNote(ctx context.Context, id int64) (*types.DailyNote, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.note.id", id)}
	ctx, span, t := s.op(ctx, "GetNote", attrs...)
	v, err := s.inner.GetNote(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetNoteByDate(ctx context.Context, date string) (*types.DailyNote, error) {
	attrs := []attribute.KeyValue{attribute.String("daybook.note.date", date)}
	ctx, span, t := s.op(ctx, "GetNoteByDate", attrs...)
	v, err := s.inner.GetNoteByDate(ctx, date)
	s.done(ctx, span, t, err, attrs...)
	if err == nil && v != nil {
		s.entryGauge.Record(ctx, int64(len(v.Entries)))
	}
	return v, err
}

func (s *InstrumentedStorage) CreateNote(ctx context.Context, note *types.DailyNote) error {
	attrs := []attribute.KeyValue{attribute.String("daybook.note.date", note.Date)}
	ctx, span, t := s.op(ctx, "CreateNote", attrs...)
	err := s.inner.CreateNote(ctx, note)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) EnsureNote(ctx context.Context, date string) (*types.DailyNote, bool, error) {
	attrs := []attribute.KeyValue{attribute.String("daybook.note.date", date)}
	ctx, span, t := s.op(ctx, "EnsureNote", attrs...)
	v, created, err := s.inner.EnsureNote(ctx, date)
	s.done(ctx, span, t, err, attrs...)
	return v, created, err
}

func (s *InstrumentedStorage) UpdateNote(ctx context.Context, note *types.DailyNote) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.note.id", note.ID)}
	ctx, span, t := s.op(ctx, "UpdateNote", attrs...)
	err := s.inner.UpdateNote(ctx, note)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) DeleteNote(ctx context.Context, id int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.note.id", id)}
	ctx, span, t := s.op(ctx, "DeleteNote", attrs...)
	err := s.inner.DeleteNote(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) ListNotes(ctx context.Context, filter types.NoteFilter) ([]*types.DailyNote, error) {
	ctx, span, t := s.op(ctx, "ListNotes")
	v, err := s.inner.ListNotes(ctx, filter)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) ClearNoteEntries(ctx context.Context, noteID int64) (int, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.note.id", noteID)}
	ctx, span, t := s.op(ctx, "ClearNoteEntries", attrs...)
	v, err := s.inner.ClearNoteEntries(ctx, noteID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Note labels ─────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) AddNoteLabel(ctx context.Context, noteID, labelID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.note.id", noteID), attribute.Int64("daybook.label.id", labelID)}
	ctx, span, t := s.op(ctx, "AddNoteLabel", attrs...)
	err := s.inner.AddNoteLabel(ctx, noteID, labelID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) RemoveNoteLabel(ctx context.Context, noteID, labelID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.note.id", noteID), attribute.Int64("daybook.label.id", labelID)}
	ctx, span, t := s.op(ctx, "RemoveNoteLabel", attrs...)
	err := s.inner.RemoveNoteLabel(ctx, noteID, labelID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) ClearNoteLabels(ctx context.Context, noteID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.note.id", noteID)}
	ctx, span, t := s.op(ctx, "ClearNoteLabels", attrs...)
	err := s.inner.ClearNoteLabels(ctx, noteID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetNoteLabels(ctx context.Context, noteID int64) ([]*types.Label, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.note.id", noteID)}
	ctx, span, t := s.op(ctx, "GetNoteLabels", attrs...)
	v, err := s.inner.GetNoteLabels(ctx, noteID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Entries ─────────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateEntry(ctx context.Context, entry *types.NoteEntry) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.note.id", entry.DailyNoteID), attribute.Bool("daybook.entry.propagated", entry.SourceEntryID != nil)}
	ctx, span, t := s.op(ctx, "CreateEntry", attrs...)
	err := s.inner.CreateEntry(ctx, entry)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetEntry(ctx context.Context, id int64) (*types.NoteEntry, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.entry.id", id)}
	ctx, span, t := s.op(ctx, "GetEntry", attrs...)
	v, err := s.inner.GetEntry(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetEntriesForNote(ctx context.Context, noteID int64) ([]*types.NoteEntry, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.note.id", noteID)}
	ctx, span, t := s.op(ctx, "GetEntriesForNote", attrs...)
	v, err := s.inner.GetEntriesForNote(ctx, noteID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) UpdateEntry(ctx context.Context, entry *types.NoteEntry) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.entry.id", entry.ID)}
	ctx, span, t := s.op(ctx, "UpdateEntry", attrs...)
	err := s.inner.UpdateEntry(ctx, entry)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) DeleteEntry(ctx context.Context, id int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.entry.id", id)}
	ctx, span, t := s.op(ctx, "DeleteEntry", attrs...)
	err := s.inner.DeleteEntry(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) ListPinnedChainHeads(ctx context.Context, beforeDate string) ([]*types.NoteEntry, error) {
	attrs := []attribute.KeyValue{attribute.String("daybook.note.date", beforeDate)}
	ctx, span, t := s.op(ctx, "ListPinnedChainHeads", attrs...)
	v, err := s.inner.ListPinnedChainHeads(ctx, beforeDate)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListEntries(ctx context.Context, filter types.EntryFilter) ([]*types.NoteEntry, error) {
	attrs := []attribute.KeyValue{attribute.Bool("daybook.entry.report_only", filter.ReportOnly)}
	ctx, span, t := s.op(ctx, "ListEntries", attrs...)
	v, err := s.inner.ListEntries(ctx, filter)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Entry labels ────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) AddEntryLabel(ctx context.Context, entryID, labelID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.entry.id", entryID), attribute.Int64("daybook.label.id", labelID)}
	ctx, span, t := s.op(ctx, "AddEntryLabel", attrs...)
	err := s.inner.AddEntryLabel(ctx, entryID, labelID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) RemoveEntryLabel(ctx context.Context, entryID, labelID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.entry.id", entryID), attribute.Int64("daybook.label.id", labelID)}
	ctx, span, t := s.op(ctx, "RemoveEntryLabel", attrs...)
	err := s.inner.RemoveEntryLabel(ctx, entryID, labelID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetEntryLabels(ctx context.Context, entryID int64) ([]*types.Label, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.entry.id", entryID)}
	ctx, span, t := s.op(ctx, "GetEntryLabels", attrs...)
	v, err := s.inner.GetEntryLabels(ctx, entryID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Labels ──────────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateLabel(ctx context.Context, label *types.Label) error {
	ctx, span, t := s.op(ctx, "CreateLabel")
	err := s.inner.CreateLabel(ctx, label)
	s.done(ctx, span, t, err)
	return err
}

func (s *InstrumentedStorage) GetLabel(ctx context.Context, id int64) (*types.Label, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.label.id", id)}
	ctx, span, t := s.op(ctx, "GetLabel", attrs...)
	v, err := s.inner.GetLabel(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetLabelByName(ctx context.Context, name string) (*types.Label, error) {
	ctx, span, t := s.op(ctx, "GetLabelByName")
	v, err := s.inner.GetLabelByName(ctx, name)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) ListLabels(ctx context.Context) ([]*types.Label, error) {
	ctx, span, t := s.op(ctx, "ListLabels")
	v, err := s.inner.ListLabels(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) DeleteLabel(ctx context.Context, id int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.label.id", id)}
	ctx, span, t := s.op(ctx, "DeleteLabel", attrs...)
	err := s.inner.DeleteLabel(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return err
}

// ── Lists ───────────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateList(ctx context.Context, list *types.List) error {
	attrs := []attribute.KeyValue{attribute.Bool("daybook.list.kanban", list.IsKanban())}
	ctx, span, t := s.op(ctx, "CreateList", attrs...)
	err := s.inner.CreateList(ctx, list)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetList(ctx context.Context, id int64) (*types.List, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.list.id", id)}
	ctx, span, t := s.op(ctx, "GetList", attrs...)
	v, err := s.inner.GetList(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListLists(ctx context.Context, filter types.ListFilter) ([]*types.List, error) {
	ctx, span, t := s.op(ctx, "ListLists")
	v, err := s.inner.ListLists(ctx, filter)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) UpdateList(ctx context.Context, list *types.List) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.list.id", list.ID), attribute.Bool("daybook.list.kanban", list.IsKanban())}
	ctx, span, t := s.op(ctx, "UpdateList", attrs...)
	err := s.inner.UpdateList(ctx, list)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) DeleteList(ctx context.Context, id int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.list.id", id)}
	ctx, span, t := s.op(ctx, "DeleteList", attrs...)
	err := s.inner.DeleteList(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) AddListEntry(ctx context.Context, listID, entryID int64, orderIndex int) (bool, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.list.id", listID), attribute.Int64("daybook.entry.id", entryID)}
	ctx, span, t := s.op(ctx, "AddListEntry", attrs...)
	v, err := s.inner.AddListEntry(ctx, listID, entryID, orderIndex)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) RemoveListEntry(ctx context.Context, listID, entryID int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.list.id", listID), attribute.Int64("daybook.entry.id", entryID)}
	ctx, span, t := s.op(ctx, "RemoveListEntry", attrs...)
	err := s.inner.RemoveListEntry(ctx, listID, entryID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) IsListMember(ctx context.Context, listID, entryID int64) (bool, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.list.id", listID), attribute.Int64("daybook.entry.id", entryID)}
	ctx, span, t := s.op(ctx, "IsListMember", attrs...)
	v, err := s.inner.IsListMember(ctx, listID, entryID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetListEntries(ctx context.Context, listID int64) ([]*types.NoteEntry, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.list.id", listID)}
	ctx, span, t := s.op(ctx, "GetListEntries", attrs...)
	v, err := s.inner.GetListEntries(ctx, listID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetEntryLists(ctx context.Context, entryID int64) ([]*types.List, error) {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.entry.id", entryID)}
	ctx, span, t := s.op(ctx, "GetEntryLists", attrs...)
	v, err := s.inner.GetEntryLists(ctx, entryID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) SetListEntryOrder(ctx context.Context, listID, entryID int64, orderIndex int) error {
	attrs := []attribute.KeyValue{attribute.Int64("daybook.list.id", listID), attribute.Int64("daybook.entry.id", entryID)}
	ctx, span, t := s.op(ctx, "SetListEntryOrder", attrs...)
	err := s.inner.SetListEntryOrder(ctx, listID, entryID, orderIndex)
	s.done(ctx, span, t, err, attrs...)
	return err
}

// ── Goals ───────────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateGoal(ctx context.Context, goal *types.Goal) error {
	attrs := []attribute.KeyValue{attribute.String("daybook.goal.kind", string(goal.Kind))}
	ctx, span, t := s.op(ctx, "CreateGoal", attrs...)
	err := s.inner.CreateGoal(ctx, goal)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetGoal(ctx context.Context, kind types.GoalKind, id int64) (*types.Goal, error) {
	attrs := []attribute.KeyValue{attribute.String("daybook.goal.kind", string(kind))}
	ctx, span, t := s.op(ctx, "GetGoal", attrs...)
	v, err := s.inner.GetGoal(ctx, kind, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListGoals(ctx context.Context, kind types.GoalKind) ([]*types.Goal, error) {
	attrs := []attribute.KeyValue{attribute.String("daybook.goal.kind", string(kind))}
	ctx, span, t := s.op(ctx, "ListGoals", attrs...)
	v, err := s.inner.ListGoals(ctx, kind)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) UpdateGoal(ctx context.Context, goal *types.Goal) error {
	attrs := []attribute.KeyValue{attribute.String("daybook.goal.kind", string(goal.Kind))}
	ctx, span, t := s.op(ctx, "UpdateGoal", attrs...)
	err := s.inner.UpdateGoal(ctx, goal)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) DeleteGoal(ctx context.Context, kind types.GoalKind, id int64) error {
	attrs := []attribute.KeyValue{attribute.String("daybook.goal.kind", string(kind))}
	ctx, span, t := s.op(ctx, "DeleteGoal", attrs...)
	err := s.inner.DeleteGoal(ctx, kind, id)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GoalForDate(ctx context.Context, kind types.GoalKind, date string) (*types.Goal, error) {
	attrs := []attribute.KeyValue{attribute.String("daybook.goal.kind", string(kind)), attribute.String("daybook.note.date", date)}
	ctx, span, t := s.op(ctx, "GoalForDate", attrs...)
	v, err := s.inner.GoalForDate(ctx, kind, date)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Search history ──────────────────────────────────────────────────────────

func (s *InstrumentedStorage) AddSearchHistory(ctx context.Context, query string, at time.Time) error {
	ctx, span, t := s.op(ctx, "AddSearchHistory")
	err := s.inner.AddSearchHistory(ctx, query, at)
	s.done(ctx, span, t, err)
	return err
}

func (s *InstrumentedStorage) HasSearchHistory(ctx context.Context, query string, at time.Time) (bool, error) {
	ctx, span, t := s.op(ctx, "HasSearchHistory")
	v, err := s.inner.HasSearchHistory(ctx, query, at)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) ListSearchHistory(ctx context.Context) ([]*types.SearchHistory, error) {
	ctx, span, t := s.op(ctx, "ListSearchHistory")
	v, err := s.inner.ListSearchHistory(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) ListAllSearchHistory(ctx context.Context) ([]*types.SearchHistory, error) {
	ctx, span, t := s.op(ctx, "ListAllSearchHistory")
	v, err := s.inner.ListAllSearchHistory(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) ClearSearchHistory(ctx context.Context) error {
	ctx, span, t := s.op(ctx, "ClearSearchHistory")
	err := s.inner.ClearSearchHistory(ctx)
	s.done(ctx, span, t, err)
	return err
}

// ── Settings and metadata ───────────────────────────────────────────────────

func (s *InstrumentedStorage) GetAppSettings(ctx context.Context) (*types.AppSettings, error) {
	ctx, span, t := s.op(ctx, "GetAppSettings")
	v, err := s.inner.GetAppSettings(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) UpdateAppSettings(ctx context.Context, settings *types.AppSettings) error {
	ctx, span, t := s.op(ctx, "UpdateAppSettings")
	err := s.inner.UpdateAppSettings(ctx, settings)
	s.done(ctx, span, t, err)
	return err
}

func (s *InstrumentedStorage) SetMetadata(ctx context.Context, key, value string) error {
	attrs := []attribute.KeyValue{attribute.String("daybook.metadata.key", key)}
	ctx, span, t := s.op(ctx, "SetMetadata", attrs...)
	err := s.inner.SetMetadata(ctx, key, value)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetMetadata(ctx context.Context, key string) (string, error) {
	attrs := []attribute.KeyValue{attribute.String("daybook.metadata.key", key)}
	ctx, span, t := s.op(ctx, "GetMetadata", attrs...)
	v, err := s.inner.GetMetadata(ctx, key)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) EnsureAppSettings(ctx context.Context) (*types.AppSettings, error) {
	ctx, span, t := s.op(ctx, "EnsureAppSettings")
	v, err := s.inner.EnsureAppSettings(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

// ── Transactions ────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	ctx, span, t := s.op(ctx, "RunInTransaction")
	err := s.inner.RunInTransaction(ctx, fn)
	s.done(ctx, span, t, err)
	return err
}

// ── Lifecycle ───────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) Path() string {
	return s.inner.Path()
}

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}

var _ storage.Storage = (*InstrumentedStorage)(nil)
