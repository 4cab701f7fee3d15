package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bistroboard/internal/config"
	"bistroboard/internal/db"
	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/migrate"
	"bistroboard/internal/repo"
	"bistroboard/internal/usecase"
)

func newTestService(t *testing.T, cfg *config.Config) (usecase.Service, repo.Repo) {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	fixed := func() time.Time { return time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC) }
	store := repo.Repo{DB: conn}
	ctx := context.Background()
	ts := fixed().Format(time.RFC3339)
	if err := store.InsertRestaurant(ctx, domain.Restaurant{
		ID: "rest-1", Name: "Chez Test",
		AutoReply: domain.AutoReplySettings{Mode: domain.ReplyModeTemplate},
		CreatedAt: ts, UpdatedAt: ts,
	}); err != nil {
		t.Fatalf("insert restaurant: %v", err)
	}
	if err := store.UpsertCatalogItem(ctx, domain.CatalogItem{
		ID: "item-1", RestaurantID: "rest-1", Name: "Margherita", UpdatedAt: ts,
	}); err != nil {
		t.Fatalf("insert catalog item: %v", err)
	}
	svc := usecase.New(store, events.Writer{DB: conn, Now: fixed}, cfg)
	svc.Now = fixed
	return svc, store
}

func TestDispatcherGeneratesImage(t *testing.T) {
	gen := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidate_url":"https://cdn.example.com/generated.jpg"}`))
	}))
	defer gen.Close()

	cfg := config.Default("rest-1")
	cfg.Images.GeneratorURL = gen.URL
	svc, store := newTestService(t, cfg)
	ctx := context.Background()

	res := svc.GenerateImage(ctx, usecase.GenerateImageInput{
		RestaurantID: "rest-1", CatalogItemID: "item-1",
		Mode: domain.ModeFromDescription, Prompt: "pizza", ActorID: "op-1",
	})
	if !res.Success() {
		t.Fatalf("generate: %v", res.Err())
	}
	jobID := res.Value().ID

	d := &Dispatcher{Service: svc, Repo: store, Config: cfg, client: http.DefaultClient}
	d.Poll(ctx)

	job := svc.GetImageJob(ctx, jobID).Value()
	if job.Status != domain.ImageReadyForApproval {
		t.Fatalf("want ready_for_approval, got %s", job.Status)
	}
	if job.CandidateURL == nil || *job.CandidateURL != "https://cdn.example.com/generated.jpg" {
		t.Fatalf("candidate not attached: %+v", job.CandidateURL)
	}
}

func TestDispatcherFailsImageWhenGeneratorErrors(t *testing.T) {
	gen := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer gen.Close()

	cfg := config.Default("rest-1")
	cfg.Images.GeneratorURL = gen.URL
	svc, store := newTestService(t, cfg)
	ctx := context.Background()

	res := svc.GenerateImage(ctx, usecase.GenerateImageInput{
		RestaurantID: "rest-1", CatalogItemID: "item-1",
		Mode: domain.ModeFromDescription, Prompt: "pizza", ActorID: "op-1",
	})
	if !res.Success() {
		t.Fatalf("generate: %v", res.Err())
	}

	d := &Dispatcher{Service: svc, Repo: store, Config: cfg, client: http.DefaultClient}
	d.Poll(ctx)

	job := svc.GetImageJob(ctx, res.Value().ID).Value()
	if job.Status != domain.ImageFailed {
		t.Fatalf("want failed, got %s", job.Status)
	}
	if job.FailureReason == nil {
		t.Fatalf("failure reason missing")
	}
}

func TestDispatcherDeliversReport(t *testing.T) {
	var delivered bool
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered = true
		w.WriteHeader(http.StatusOK)
	}))
	defer sink.Close()

	cfg := config.Default("rest-1")
	cfg.Reports.DeliveryURL = sink.URL
	svc, store := newTestService(t, cfg)
	ctx := context.Background()

	rep := svc.GenerateReport(ctx, usecase.GenerateReportInput{
		RestaurantID: "rest-1", WeekStart: "2026-07-27", ActorID: "op-1",
	}).Value()
	if r := svc.CompleteReportGeneration(ctx, rep.ID, "https://cdn.example.com/r.pdf", ""); !r.Success() {
		t.Fatalf("complete: %v", r.Err())
	}
	if r := svc.SendReport(ctx, rep.ID, "webhook", "op-1"); !r.Success() {
		t.Fatalf("send: %v", r.Err())
	}

	d := &Dispatcher{Service: svc, Repo: store, Config: cfg, client: http.DefaultClient}
	d.Poll(ctx)

	if !delivered {
		t.Fatalf("delivery endpoint never called")
	}
	got := svc.GetReport(ctx, rep.ID).Value()
	if got.Status != domain.ReportSent {
		t.Fatalf("want sent, got %s", got.Status)
	}
}

func TestDispatcherRecordsDeliveryFailure(t *testing.T) {
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mailbox full", http.StatusBadGateway)
	}))
	defer sink.Close()

	cfg := config.Default("rest-1")
	cfg.Reports.DeliveryURL = sink.URL
	svc, store := newTestService(t, cfg)
	ctx := context.Background()

	rep := svc.GenerateReport(ctx, usecase.GenerateReportInput{
		RestaurantID: "rest-1", WeekStart: "2026-07-27", ActorID: "op-1",
	}).Value()
	if r := svc.CompleteReportGeneration(ctx, rep.ID, "https://cdn.example.com/r.pdf", ""); !r.Success() {
		t.Fatalf("complete: %v", r.Err())
	}
	if r := svc.SendReport(ctx, rep.ID, "webhook", "op-1"); !r.Success() {
		t.Fatalf("send: %v", r.Err())
	}

	d := &Dispatcher{Service: svc, Repo: store, Config: cfg, client: http.DefaultClient}
	d.Poll(ctx)

	got := svc.GetReport(ctx, rep.ID).Value()
	if got.Status != domain.ReportFailed {
		t.Fatalf("want failed, got %s", got.Status)
	}
	if got.FailureReason == nil {
		t.Fatalf("failure reason missing")
	}
}
