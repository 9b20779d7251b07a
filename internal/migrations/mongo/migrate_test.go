package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hostbook/pkg/logger"
	"hostbook/pkg/model"
)

type mockCalendarSource struct {
	calendars map[string][]model.Reservation
	hosts     []string
	hostsErr  error
	findErr   error
}

func (m *mockCalendarSource) HostIDs() ([]string, error) {
	if m.hostsErr != nil {
		return nil, m.hostsErr
	}
	return m.hosts, nil
}

func (m *mockCalendarSource) FindByHost(hostID string) ([]model.Reservation, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.calendars[hostID], nil
}

type recordingWriter struct {
	batches   [][]mongo.WriteModel
	pruneKeep []int
	pruned    bool
	err       error
	deleteErr error
}

func (w *recordingWriter) DeleteMany(_ context.Context, filter any, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if w.deleteErr != nil {
		return nil, w.deleteErr
	}
	w.pruned = true
	d := filter.(bson.D)
	w.pruneKeep = d[0].Value.(bson.D)[0].Value.([]int)
	return &mongo.DeleteResult{DeletedCount: 2}, nil
}

func (w *recordingWriter) BulkWrite(_ context.Context, models []mongo.WriteModel, _ ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	if w.err != nil {
		return nil, w.err
	}
	batch := make([]mongo.WriteModel, len(models))
	copy(batch, models)
	w.batches = append(w.batches, batch)
	return &mongo.BulkWriteResult{UpsertedCount: int64(len(models))}, nil
}

func date(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func reservation(id int, hostID, start, end, total string) model.Reservation {
	return model.Reservation{
		ID:        id,
		HostID:    hostID,
		GuestID:   fmt.Sprintf("guest-%d", id),
		StartDate: date(start),
		EndDate:   date(end),
		Total:     decimal.RequireFromString(total),
	}
}

func TestToDocument(t *testing.T) {
	exportedAt := time.Date(2025, 5, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	r := reservation(7, "host-a", "2025-06-05", "2025-06-09", "500.25")

	doc, err := ToDocument(r, exportedAt)
	if err != nil {
		t.Fatalf("ToDocument() error = %v", err)
	}

	if doc.ID != 7 || doc.HostID != "host-a" || doc.GuestID != "guest-7" {
		t.Errorf("identity fields = %+v", doc)
	}
	if !doc.StartDate.Equal(r.StartDate) || !doc.EndDate.Equal(r.EndDate) {
		t.Errorf("dates = %s..%s", doc.StartDate, doc.EndDate)
	}
	if doc.Nights != 4 {
		t.Errorf("Nights = %d, want 4", doc.Nights)
	}
	if doc.Total.String() != "500.25" {
		t.Errorf("Total = %s, want 500.25", doc.Total.String())
	}
	if doc.ExportedAt.Location() != time.UTC {
		t.Errorf("ExportedAt location = %s, want UTC", doc.ExportedAt.Location())
	}
}

func TestExportCalendars_UpsertsByID(t *testing.T) {
	source := &mockCalendarSource{
		hosts: []string{"host-a", "host-b"},
		calendars: map[string][]model.Reservation{
			"host-a": {
				reservation(1, "host-a", "2025-06-01", "2025-06-03", "200"),
				reservation(3, "host-a", "2025-07-01", "2025-07-02", "100"),
			},
			"host-b": {
				reservation(2, "host-b", "2025-06-01", "2025-06-02", "150"),
			},
		},
	}
	writer := &recordingWriter{}

	result, err := ExportCalendars(context.Background(), source, writer, time.Now(), logger.Discard())
	if err != nil {
		t.Fatalf("ExportCalendars() error = %v", err)
	}

	if result.Hosts != 2 || result.Reservations != 3 || result.Upserted != 3 || result.Deleted != 2 {
		t.Errorf("result = %+v", result)
	}
	if !writer.pruned || len(writer.pruneKeep) != 3 {
		t.Errorf("prune kept %v, want the three exported ids", writer.pruneKeep)
	}
	if len(writer.batches) != 1 || len(writer.batches[0]) != 3 {
		t.Fatalf("batches = %d, want one batch of 3", len(writer.batches))
	}

	wantIDs := []int{1, 3, 2}
	for i, wm := range writer.batches[0] {
		replace, ok := wm.(*mongo.ReplaceOneModel)
		if !ok {
			t.Fatalf("model %d is %T, want *mongo.ReplaceOneModel", i, wm)
		}
		if replace.Upsert == nil || !*replace.Upsert {
			t.Errorf("model %d is not an upsert", i)
		}
		filter, ok := replace.Filter.(bson.D)
		if !ok || len(filter) != 1 || filter[0].Key != "_id" || filter[0].Value != wantIDs[i] {
			t.Errorf("model %d filter = %v, want _id %d", i, replace.Filter, wantIDs[i])
		}
		doc, ok := replace.Replacement.(ReservationDocument)
		if !ok || doc.ID != wantIDs[i] {
			t.Errorf("model %d replacement = %v", i, replace.Replacement)
		}
	}
}

func TestExportCalendars_FlushesInBatches(t *testing.T) {
	var calendar []model.Reservation
	start := date("2026-01-01")
	for i := 1; i <= batchSize+1; i++ {
		calendar = append(calendar, model.Reservation{
			ID:        i,
			HostID:    "host-a",
			GuestID:   "guest",
			StartDate: start.AddDate(0, 0, 2*i),
			EndDate:   start.AddDate(0, 0, 2*i+1),
			Total:     decimal.NewFromInt(100),
		})
	}
	source := &mockCalendarSource{
		hosts:     []string{"host-a"},
		calendars: map[string][]model.Reservation{"host-a": calendar},
	}
	writer := &recordingWriter{}

	result, err := ExportCalendars(context.Background(), source, writer, time.Now(), logger.Discard())
	if err != nil {
		t.Fatalf("ExportCalendars() error = %v", err)
	}
	if len(writer.batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(writer.batches))
	}
	if len(writer.batches[0]) != batchSize || len(writer.batches[1]) != 1 {
		t.Errorf("batch sizes = %d, %d", len(writer.batches[0]), len(writer.batches[1]))
	}
	if result.Reservations != batchSize+1 {
		t.Errorf("Reservations = %d, want %d", result.Reservations, batchSize+1)
	}
}

func TestExportCalendars_EmptyStoreWritesNothing(t *testing.T) {
	writer := &recordingWriter{}
	result, err := ExportCalendars(context.Background(), &mockCalendarSource{}, writer, time.Now(), logger.Discard())
	if err != nil {
		t.Fatalf("ExportCalendars() error = %v", err)
	}
	if len(writer.batches) != 0 || result.Reservations != 0 {
		t.Errorf("expected no writes, got %d batches, result %+v", len(writer.batches), result)
	}
	if !writer.pruned || len(writer.pruneKeep) != 0 {
		t.Errorf("an empty store should prune every document, kept %v", writer.pruneKeep)
	}
}

func TestExportCalendars_Errors(t *testing.T) {
	boom := errors.New("boom")
	one := map[string][]model.Reservation{
		"host-a": {reservation(1, "host-a", "2025-06-01", "2025-06-02", "100")},
	}

	tests := []struct {
		name   string
		source *mockCalendarSource
		writer *recordingWriter
	}{
		{
			name:   "listing calendars fails",
			source: &mockCalendarSource{hostsErr: boom},
			writer: &recordingWriter{},
		},
		{
			name:   "reading a calendar fails",
			source: &mockCalendarSource{hosts: []string{"host-a"}, findErr: boom},
			writer: &recordingWriter{},
		},
		{
			name:   "bulk write fails",
			source: &mockCalendarSource{hosts: []string{"host-a"}, calendars: one},
			writer: &recordingWriter{err: boom},
		},
		{
			name:   "prune fails",
			source: &mockCalendarSource{hosts: []string{"host-a"}, calendars: one},
			writer: &recordingWriter{deleteErr: boom},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExportCalendars(context.Background(), tt.source, tt.writer, time.Now(), logger.Discard())
			if !errors.Is(err, boom) {
				t.Errorf("error = %v, want wrapped boom", err)
			}
		})
	}
}
