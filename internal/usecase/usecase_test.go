package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bistroboard/internal/config"
	"bistroboard/internal/db"
	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/migrate"
	"bistroboard/internal/outcome"
	"bistroboard/internal/repo"
	"bistroboard/internal/usecase"
)

type testEnv struct {
	Svc  usecase.Service
	Repo repo.Repo
	Ctx  context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
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
	rt := domain.Restaurant{
		ID:   "rest-1",
		Name: "Chez Test",
		AutoReply: domain.AutoReplySettings{
			Mode: domain.ReplyModeTemplate,
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := store.InsertRestaurant(ctx, rt); err != nil {
		t.Fatalf("insert restaurant: %v", err)
	}
	if err := store.UpsertCatalogItem(ctx, domain.CatalogItem{
		ID: "item-1", RestaurantID: "rest-1", Name: "Margherita", UpdatedAt: ts,
	}); err != nil {
		t.Fatalf("insert catalog item: %v", err)
	}
	svc := usecase.New(store, events.Writer{DB: conn, Now: fixed}, config.Default("rest-1"))
	svc.Now = fixed
	return testEnv{Svc: svc, Repo: store, Ctx: ctx}
}

func wantRuleCode(t *testing.T, err error, code string) {
	t.Helper()
	var bre *outcome.BusinessRuleError
	if !errors.As(err, &bre) {
		t.Fatalf("want BusinessRuleError, got %v", err)
	}
	if bre.Code != code {
		t.Fatalf("want code %s, got %s (%s)", code, bre.Code, bre.Message)
	}
}

func wantValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *outcome.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if ve.Field != field {
		t.Fatalf("want field %s, got %s", field, ve.Field)
	}
}

func TestImageApprovalFlow(t *testing.T) {
	env := newTestEnv(t)
	res := env.Svc.GenerateImage(env.Ctx, usecase.GenerateImageInput{
		RestaurantID:  "rest-1",
		CatalogItemID: "item-1",
		Mode:          domain.ModeDirectUpload,
		SourceURL:     "https://cdn.example.com/upload.jpg",
		ActorID:       "op-1",
	})
	if !res.Success() {
		t.Fatalf("generate: %v", res.Err())
	}
	job := res.Value()
	if job.Status != domain.ImageReadyForApproval {
		t.Fatalf("direct upload should land in ready_for_approval, got %s", job.Status)
	}
	if job.Attempts != 1 {
		t.Fatalf("new job should start at attempt 1, got %d", job.Attempts)
	}

	res = env.Svc.ApproveImage(env.Ctx, job.ID, "op-1")
	if !res.Success() || res.Value().Status != domain.ImageApproved {
		t.Fatalf("approve: %v", res.Err())
	}
	if res.Value().ApprovedBy == nil || *res.Value().ApprovedBy != "op-1" {
		t.Fatalf("approved_by not recorded")
	}

	// second approval is a rule failure, not a silent no-op
	res = env.Svc.ApproveImage(env.Ctx, job.ID, "op-2")
	if res.Success() {
		t.Fatalf("double approve should fail")
	}
	wantRuleCode(t, res.Err(), "IMAGE_CANNOT_APPROVE")

	res = env.Svc.ApplyImageToCatalog(env.Ctx, job.ID, "op-1")
	if !res.Success() || res.Value().Status != domain.ImageAppliedToCatalog {
		t.Fatalf("apply: %v", res.Err())
	}
	item, err := env.Repo.GetCatalogItem(env.Ctx, "item-1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.ImageURL == nil || *item.ImageURL != "https://cdn.example.com/upload.jpg" {
		t.Fatalf("catalog image not published: %+v", item)
	}
}

func TestImageRejectThenArchive(t *testing.T) {
	env := newTestEnv(t)
	res := env.Svc.GenerateImage(env.Ctx, usecase.GenerateImageInput{
		RestaurantID: "rest-1", CatalogItemID: "item-1",
		Mode: domain.ModeFromImage, SourceURL: "https://cdn.example.com/raw.jpg", ActorID: "op-1",
	})
	if !res.Success() {
		t.Fatalf("generate: %v", res.Err())
	}
	jobID := res.Value().ID

	res = env.Svc.RejectImage(env.Ctx, jobID, "op-1", "too dark")
	if !res.Success() || res.Value().Status != domain.ImageRejected {
		t.Fatalf("reject: %v", res.Err())
	}
	if res.Value().RejectionNote == nil || *res.Value().RejectionNote != "too dark" {
		t.Fatalf("rejection note lost")
	}

	if r := env.Svc.ApplyImageToCatalog(env.Ctx, jobID, "op-1"); r.Success() {
		t.Fatalf("rejected job must not be applied")
	}

	res = env.Svc.ArchiveImage(env.Ctx, jobID, "op-1")
	if !res.Success() || res.Value().Status != domain.ImageArchived {
		t.Fatalf("archive: %v", res.Err())
	}
}

func TestAsyncGenerationAndRetry(t *testing.T) {
	env := newTestEnv(t)
	res := env.Svc.GenerateImage(env.Ctx, usecase.GenerateImageInput{
		RestaurantID: "rest-1", CatalogItemID: "item-1",
		Mode: domain.ModeFromDescription, Prompt: "rustic pizza on slate", ActorID: "op-1",
	})
	if !res.Success() {
		t.Fatalf("generate: %v", res.Err())
	}
	job := res.Value()
	if job.Status != domain.ImageGenerating {
		t.Fatalf("from_description should stay generating, got %s", job.Status)
	}

	res = env.Svc.FailImageGeneration(env.Ctx, job.ID, "model timeout")
	if !res.Success() || res.Value().Status != domain.ImageFailed {
		t.Fatalf("fail: %v", res.Err())
	}

	res = env.Svc.RetryImage(env.Ctx, job.ID, "op-1")
	if !res.Success() {
		t.Fatalf("retry: %v", res.Err())
	}
	if res.Value().Attempts != 2 || res.Value().Status != domain.ImageGenerating {
		t.Fatalf("retry should bump attempts and re-enter generating, got %+v", res.Value())
	}

	res = env.Svc.CompleteImageGeneration(env.Ctx, job.ID, "https://cdn.example.com/cand.jpg")
	if !res.Success() || res.Value().Status != domain.ImageReadyForApproval {
		t.Fatalf("complete: %v", res.Err())
	}
	if res.Value().FailureReason != nil {
		t.Fatalf("failure reason should clear on success")
	}
}

func TestImageRetryExhaustion(t *testing.T) {
	env := newTestEnv(t)
	res := env.Svc.GenerateImage(env.Ctx, usecase.GenerateImageInput{
		RestaurantID: "rest-1", CatalogItemID: "item-1",
		Mode: domain.ModeFromDescription, Prompt: "close-up", ActorID: "op-1",
	})
	if !res.Success() {
		t.Fatalf("generate: %v", res.Err())
	}
	jobID := res.Value().ID
	for attempt := 1; attempt < 3; attempt++ {
		if r := env.Svc.FailImageGeneration(env.Ctx, jobID, "timeout"); !r.Success() {
			t.Fatalf("fail attempt %d: %v", attempt, r.Err())
		}
		if r := env.Svc.RetryImage(env.Ctx, jobID, "op-1"); !r.Success() {
			t.Fatalf("retry attempt %d: %v", attempt, r.Err())
		}
	}
	if r := env.Svc.FailImageGeneration(env.Ctx, jobID, "timeout"); !r.Success() {
		t.Fatalf("final fail: %v", r.Err())
	}
	r := env.Svc.RetryImage(env.Ctx, jobID, "op-1")
	if r.Success() {
		t.Fatalf("attempt cap should block the fourth run")
	}
	wantRuleCode(t, r.Err(), "IMAGE_RETRY_EXHAUSTED")
}

func TestGenerateImageValidation(t *testing.T) {
	env := newTestEnv(t)
	r := env.Svc.GenerateImage(env.Ctx, usecase.GenerateImageInput{
		RestaurantID: "rest-1", CatalogItemID: "item-1",
		Mode: domain.ModeFromDescription, ActorID: "op-1",
	})
	if r.Success() {
		t.Fatalf("missing prompt should fail")
	}
	wantValidationField(t, r.Err(), "prompt")

	// improve_existing needs an existing image on the item
	r = env.Svc.GenerateImage(env.Ctx, usecase.GenerateImageInput{
		RestaurantID: "rest-1", CatalogItemID: "item-1",
		Mode: domain.ModeImproveExisting, ActorID: "op-1",
	})
	if r.Success() {
		t.Fatalf("improve_existing without a source image should fail")
	}
	wantRuleCode(t, r.Err(), "IMAGE_NO_SOURCE")

	r = env.Svc.GenerateImage(env.Ctx, usecase.GenerateImageInput{
		RestaurantID: "rest-1", CatalogItemID: "missing",
		Mode: domain.ModeDirectUpload, SourceURL: "https://x/y.jpg", ActorID: "op-1",
	})
	if outcome.KindOf(r.Err()) != outcome.KindNotFound {
		t.Fatalf("missing item should map to not_found, got %v", r.Err())
	}
}

func TestReportLifecycle(t *testing.T) {
	env := newTestEnv(t)
	res := env.Svc.GenerateReport(env.Ctx, usecase.GenerateReportInput{
		RestaurantID: "rest-1", WeekStart: "2026-07-27", ActorID: "op-1",
	})
	if !res.Success() || res.Value().Status != domain.ReportGenerating {
		t.Fatalf("generate: %v", res.Err())
	}
	rep := res.Value()

	// same week again returns the existing report
	again := env.Svc.GenerateReport(env.Ctx, usecase.GenerateReportInput{
		RestaurantID: "rest-1", WeekStart: "2026-07-27", ActorID: "op-1",
	})
	if !again.Success() || again.Value().ID != rep.ID {
		t.Fatalf("duplicate week should return the existing report")
	}

	// cannot send before the artifact exists
	if r := env.Svc.SendReport(env.Ctx, rep.ID, "email", "op-1"); r.Success() {
		t.Fatalf("sending a generating report should fail")
	}

	res = env.Svc.CompleteReportGeneration(env.Ctx, rep.ID, "https://cdn.example.com/r.pdf", "abc123")
	if !res.Success() || res.Value().Status != domain.ReportGenerated {
		t.Fatalf("complete: %v", res.Err())
	}

	res = env.Svc.SendReport(env.Ctx, rep.ID, "", "op-1") // channel from config
	if !res.Success() || res.Value().Status != domain.ReportSending {
		t.Fatalf("send: %v", res.Err())
	}
	if res.Value().Channel == nil || *res.Value().Channel != "email" {
		t.Fatalf("channel should default from config, got %+v", res.Value().Channel)
	}

	res = env.Svc.MarkReportSent(env.Ctx, rep.ID)
	if !res.Success() || res.Value().Status != domain.ReportSent || res.Value().SentAt == nil {
		t.Fatalf("mark sent: %v", res.Err())
	}

	r := env.Svc.SendReport(env.Ctx, rep.ID, "email", "op-1")
	if r.Success() {
		t.Fatalf("sent report should not be re-sent")
	}
	wantRuleCode(t, r.Err(), "REPORT_CANNOT_SEND")
}

func TestReportDeliveryRetry(t *testing.T) {
	env := newTestEnv(t)
	rep := env.Svc.GenerateReport(env.Ctx, usecase.GenerateReportInput{
		RestaurantID: "rest-1", WeekStart: "2026-07-20", ActorID: "op-1",
	}).Value()
	if r := env.Svc.CompleteReportGeneration(env.Ctx, rep.ID, "https://cdn.example.com/r.pdf", ""); !r.Success() {
		t.Fatalf("complete: %v", r.Err())
	}
	if r := env.Svc.SendReport(env.Ctx, rep.ID, "webhook", "op-1"); !r.Success() {
		t.Fatalf("send: %v", r.Err())
	}
	res := env.Svc.FailReportDelivery(env.Ctx, rep.ID, "smtp 550")
	if !res.Success() || res.Value().Status != domain.ReportFailed {
		t.Fatalf("fail delivery: %v", res.Err())
	}
	// failed deliveries can go again
	res = env.Svc.SendReport(env.Ctx, rep.ID, "email", "op-1")
	if !res.Success() || res.Value().Status != domain.ReportSending {
		t.Fatalf("resend: %v", res.Err())
	}
	if res.Value().FailureReason != nil {
		t.Fatalf("failure reason should clear on resend")
	}
}

func TestActionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	r := env.Svc.CreateAction(env.Ctx, usecase.CreateActionInput{
		RestaurantID: "rest-1", Title: "  ", Type: "promo", ActorID: "op-1",
	})
	if r.Success() {
		t.Fatalf("blank title should fail")
	}
	wantValidationField(t, r.Err(), "title")

	r = env.Svc.CreateAction(env.Ctx, usecase.CreateActionInput{
		RestaurantID: "rest-1", Title: strings.Repeat("x", 256), Type: "promo", ActorID: "op-1",
	})
	if r.Success() {
		t.Fatalf("overlong title should fail")
	}
	wantValidationField(t, r.Err(), "title")

	res := env.Svc.CreateAction(env.Ctx, usecase.CreateActionInput{
		RestaurantID: "rest-1", Title: "Refresh hero photo", Type: "catalog",
		Target: "item-1", WeekStart: "2026-07-27", ActorID: "op-1",
	})
	if !res.Success() || res.Value().Status != domain.ActionPlanned {
		t.Fatalf("create: %v", res.Err())
	}
	a := res.Value()

	r = env.Svc.MarkActionDone(env.Ctx, a.ID, "op-1", "  ")
	if r.Success() {
		t.Fatalf("done without evidence should fail")
	}
	wantValidationField(t, r.Err(), "evidence")

	res = env.Svc.MarkActionDone(env.Ctx, a.ID, "op-1", "new photo live")
	if !res.Success() || res.Value().Status != domain.ActionDone {
		t.Fatalf("done: %v", res.Err())
	}
	if res.Value().DoneAt == nil || res.Value().Evidence == nil {
		t.Fatalf("done metadata missing: %+v", res.Value())
	}

	r = env.Svc.DiscardAction(env.Ctx, a.ID, "op-1", "changed mind")
	if r.Success() {
		t.Fatalf("done action cannot be discarded")
	}
	wantRuleCode(t, r.Err(), "ACTION_CANNOT_DISCARD")

	r = env.Svc.DiscardAction(env.Ctx, a.ID, "op-1", "")
	if r.Success() {
		t.Fatalf("discard without reason should fail")
	}
	wantValidationField(t, r.Err(), "reason")

	r = env.Svc.DiscardAction(env.Ctx, a.ID, "op-1", strings.Repeat("y", 501))
	if r.Success() {
		t.Fatalf("overlong reason should fail")
	}
	wantValidationField(t, r.Err(), "reason")
}

func TestTicketReplyClaimsTicket(t *testing.T) {
	env := newTestEnv(t)
	ts := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	tk := domain.Ticket{
		ID: "tick-1", RestaurantID: "rest-1", Subject: "cold food",
		Status: domain.TicketOpen, CreatedAt: ts, UpdatedAt: ts,
	}
	if err := env.Repo.InsertTicket(env.Ctx, tk); err != nil {
		t.Fatalf("insert ticket: %v", err)
	}

	res := env.Svc.ReplyToTicket(env.Ctx, "tick-1", "op-1", "So sorry, refund on its way.")
	if !res.Success() {
		t.Fatalf("reply: %v", res.Err())
	}
	if res.Value().Status != domain.TicketInProgress {
		t.Fatalf("first reply should claim the ticket, got %s", res.Value().Status)
	}

	msgs := env.Svc.ListTicketMessages(env.Ctx, "tick-1")
	if !msgs.Success() || len(msgs.Value()) != 1 {
		t.Fatalf("want 1 message, got %v", msgs.Err())
	}

	if r := env.Svc.ResolveTicket(env.Ctx, "tick-1", "op-1"); !r.Success() {
		t.Fatalf("resolve: %v", r.Err())
	}
	if r := env.Svc.CloseTicket(env.Ctx, "tick-1", "op-1"); !r.Success() {
		t.Fatalf("close: %v", r.Err())
	}

	r := env.Svc.ReplyToTicket(env.Ctx, "tick-1", "op-1", "anyone there?")
	if r.Success() {
		t.Fatalf("closed ticket should reject replies")
	}
	wantRuleCode(t, r.Err(), "TICKET_CANNOT_REPLY")
}

func TestReviewReplies(t *testing.T) {
	env := newTestEnv(t)
	ts := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	for _, rv := range []domain.Review{
		{ID: "rev-pos", RestaurantID: "rest-1", Rating: 5, Text: "amazing", CreatedAt: ts},
		{ID: "rev-mid", RestaurantID: "rest-1", Rating: 3, Text: "ok", CreatedAt: ts},
	} {
		if err := env.Repo.InsertReview(env.Ctx, rv); err != nil {
			t.Fatalf("insert review: %v", err)
		}
	}
	// auto-reply is off by default
	r := env.Svc.AutoReplyToReview(env.Ctx, "rev-pos")
	if r.Success() {
		t.Fatalf("auto-reply should be disabled")
	}
	wantRuleCode(t, r.Err(), "AUTO_REPLY_DISABLED")

	if tog := env.Svc.ToggleAutoReply(env.Ctx, "rest-1", "reviews", true, "op-1"); !tog.Success() {
		t.Fatalf("toggle: %v", tog.Err())
	}

	res := env.Svc.AutoReplyToReview(env.Ctx, "rev-pos")
	if !res.Success() {
		t.Fatalf("auto reply: %v", res.Err())
	}
	if res.Value().ReplyText == nil || !strings.Contains(*res.Value().ReplyText, "Thank you") {
		t.Fatalf("positive template not used: %+v", res.Value().ReplyText)
	}

	// neutral ratings wait for a human
	r = env.Svc.AutoReplyToReview(env.Ctx, "rev-mid")
	if r.Success() {
		t.Fatalf("neutral review should not auto-reply")
	}
	wantRuleCode(t, r.Err(), "REVIEW_NEEDS_HUMAN")

	// one reply per review
	r = env.Svc.ReplyToReview(env.Ctx, "rev-pos", "op-1", "thanks again")
	if r.Success() {
		t.Fatalf("answered review should reject a second reply")
	}
	wantRuleCode(t, r.Err(), "REVIEW_ALREADY_ANSWERED")
}

func TestUpdateAutoReplySettings(t *testing.T) {
	env := newTestEnv(t)
	r := env.Svc.UpdateAutoReplySettings(env.Ctx, "rest-1", domain.AutoReplySettings{
		Mode: domain.ReplyModeTemplate,
	}, "op-1")
	if r.Success() {
		t.Fatalf("template mode without text should fail")
	}
	wantValidationField(t, r.Err(), "template_text")

	res := env.Svc.UpdateAutoReplySettings(env.Ctx, "rest-1", domain.AutoReplySettings{
		ReviewsEnabled: true, TicketsEnabled: true,
		Mode: domain.ReplyModeAI,
	}, "op-1")
	if !res.Success() {
		t.Fatalf("update: %v", res.Err())
	}
	got := env.Svc.GetRestaurant(env.Ctx, "rest-1").Value()
	if !got.AutoReply.ReviewsEnabled || !got.AutoReply.TicketsEnabled || got.AutoReply.Mode != domain.ReplyModeAI {
		t.Fatalf("settings not persisted: %+v", got.AutoReply)
	}
}

func TestPerformanceData(t *testing.T) {
	env := newTestEnv(t)
	r := env.Svc.GetPerformanceData(env.Ctx, "rest-1")
	if r.Success() || outcome.KindOf(r.Err()) != outcome.KindNotFound {
		t.Fatalf("no snapshots should be not_found, got %v", r.Err())
	}

	ts := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	for _, s := range []domain.Snapshot{
		{ID: "s1", RestaurantID: "rest-1", WeekStart: "2026-07-20", Impressions: 1000, MenuViews: 400, Orders: 50, RevenueCents: 125000, CreatedAt: ts},
		{ID: "s2", RestaurantID: "rest-1", WeekStart: "2026-07-27", Impressions: 1000, MenuViews: 200, Orders: 8, RevenueCents: 30000, CreatedAt: ts},
	} {
		if err := env.Repo.InsertSnapshot(env.Ctx, s); err != nil {
			t.Fatalf("insert snapshot: %v", err)
		}
	}

	res := env.Svc.GetPerformanceData(env.Ctx, "rest-1")
	if !res.Success() {
		t.Fatalf("performance: %v", res.Err())
	}
	data := res.Value()
	if data.Latest.WeekStart != "2026-07-27" {
		t.Fatalf("latest snapshot wrong: %+v", data.Latest)
	}
	if len(data.Steps) != 4 {
		t.Fatalf("want 4 funnel steps, got %d", len(data.Steps))
	}
	// menu_views halved (-50%), orders cratered, default drop_percent is 20
	var sawDrop, sawLowOrders bool
	for _, a := range data.Alerts {
		switch a.Code {
		case "STEP_DROP":
			sawDrop = true
		case "LOW_ORDERS":
			sawLowOrders = true
		}
	}
	if !sawDrop || !sawLowOrders {
		t.Fatalf("expected drop and low-order alerts, got %+v", data.Alerts)
	}
}

func TestExportFinancialData(t *testing.T) {
	env := newTestEnv(t)
	ts := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	if err := env.Repo.InsertSnapshot(env.Ctx, domain.Snapshot{
		ID: "s1", RestaurantID: "rest-1", WeekStart: "2026-07-27",
		Impressions: 1000, MenuViews: 400, Orders: 50, RevenueCents: 125000, CreatedAt: ts,
	}); err != nil {
		t.Fatalf("insert snapshot: %v", err)
	}

	// window validation happens before any storage read
	r := env.Svc.ExportFinancialData(env.Ctx, usecase.ExportInput{
		RestaurantID: "rest-1", StartDate: "2026-08-01", EndDate: "2026-07-01", ActorID: "op-1",
	})
	if r.Success() {
		t.Fatalf("inverted window should fail")
	}
	wantValidationField(t, r.Err(), "start_date")

	r = env.Svc.ExportFinancialData(env.Ctx, usecase.ExportInput{
		RestaurantID: "rest-1", StartDate: "not-a-date", EndDate: "2026-08-01", ActorID: "op-1",
	})
	if r.Success() {
		t.Fatalf("garbage date should fail")
	}
	wantValidationField(t, r.Err(), "start_date")

	res := env.Svc.ExportFinancialData(env.Ctx, usecase.ExportInput{
		RestaurantID: "rest-1", StartDate: "2026-07-01", EndDate: "2026-08-01",
		Format: "csv", ActorID: "op-1",
	})
	if !res.Success() {
		t.Fatalf("export: %v", res.Err())
	}
	body := string(res.Value().Data)
	if !strings.Contains(body, "week_start") || !strings.Contains(body, "2026-07-27") {
		t.Fatalf("csv export missing rows:\n%s", body)
	}
}

func TestNotFoundMapping(t *testing.T) {
	env := newTestEnv(t)
	checks := map[string]error{
		"image":  env.Svc.ApproveImage(env.Ctx, "nope", "op-1").Err(),
		"report": env.Svc.SendReport(env.Ctx, "nope", "email", "op-1").Err(),
		"action": env.Svc.MarkActionDone(env.Ctx, "nope", "op-1", "done it").Err(),
		"ticket": env.Svc.ResolveTicket(env.Ctx, "nope", "op-1").Err(),
		"review": env.Svc.ReplyToReview(env.Ctx, "nope", "op-1", "hi").Err(),
	}
	for name, err := range checks {
		if outcome.KindOf(err) != outcome.KindNotFound {
			t.Errorf("%s: want not_found, got %v", name, err)
		}
	}
}

func TestAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	res := env.Svc.CreateAction(env.Ctx, usecase.CreateActionInput{
		RestaurantID: "rest-1", Title: "Run lunch promo", Type: "promo", ActorID: "op-1",
	})
	if !res.Success() {
		t.Fatalf("create: %v", res.Err())
	}
	evs, err := env.Repo.ListEvents(env.Ctx, "rest-1", 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(evs) == 0 {
		t.Fatalf("mutation should leave an audit event")
	}
	if evs[0].Type != "action.created" || evs[0].ActorID != "op-1" {
		t.Fatalf("unexpected event: %+v", evs[0])
	}
}
