package rules_test

import (
	"testing"

	"bistroboard/internal/domain"
	"bistroboard/internal/rules"
)

var (
	actionStatuses = []domain.ActionStatus{
		domain.ActionPlanned, domain.ActionDone, domain.ActionDiscarded,
	}
	reportStatuses = []domain.ReportStatus{
		domain.ReportGenerating, domain.ReportGenerated, domain.ReportSending,
		domain.ReportSent, domain.ReportFailed,
	}
	imageStatuses = []domain.ImageJobStatus{
		domain.ImageGenerating, domain.ImageReadyForApproval, domain.ImageApproved,
		domain.ImageRejected, domain.ImageAppliedToCatalog, domain.ImageFailed,
		domain.ImageArchived,
	}
	ticketStatuses = []domain.TicketStatus{
		domain.TicketOpen, domain.TicketInProgress, domain.TicketResolved, domain.TicketClosed,
	}
)

func TestActionTransitionTable(t *testing.T) {
	allowed := map[domain.ActionStatus][]domain.ActionStatus{
		domain.ActionPlanned: {domain.ActionDone, domain.ActionDiscarded},
	}
	for _, from := range actionStatuses {
		want := map[domain.ActionStatus]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range actionStatuses {
			if got := rules.CanTransitionAction(from, to); got != want[to] {
				t.Errorf("action %s -> %s: got %v, want %v", from, to, got, want[to])
			}
		}
	}
	if !rules.ActionTerminal(domain.ActionDone) || !rules.ActionTerminal(domain.ActionDiscarded) {
		t.Error("done and discarded must be terminal")
	}
	if rules.ActionTerminal(domain.ActionPlanned) {
		t.Error("planned must not be terminal")
	}
}

func TestReportTransitionTable(t *testing.T) {
	allowed := map[domain.ReportStatus][]domain.ReportStatus{
		domain.ReportGenerating: {domain.ReportGenerated, domain.ReportFailed},
		domain.ReportGenerated:  {domain.ReportSending},
		domain.ReportSending:    {domain.ReportSent, domain.ReportFailed},
		domain.ReportFailed:     {domain.ReportSending},
	}
	for _, from := range reportStatuses {
		want := map[domain.ReportStatus]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range reportStatuses {
			if got := rules.CanTransitionReport(from, to); got != want[to] {
				t.Errorf("report %s -> %s: got %v, want %v", from, to, got, want[to])
			}
		}
	}
	if !rules.ReportTerminal(domain.ReportSent) {
		t.Error("sent must be terminal")
	}
}

func TestImageTransitionTable(t *testing.T) {
	allowed := map[domain.ImageJobStatus][]domain.ImageJobStatus{
		domain.ImageGenerating:       {domain.ImageReadyForApproval, domain.ImageFailed},
		domain.ImageReadyForApproval: {domain.ImageApproved, domain.ImageRejected},
		domain.ImageApproved:         {domain.ImageAppliedToCatalog, domain.ImageFailed},
		domain.ImageAppliedToCatalog: {domain.ImageArchived},
		domain.ImageRejected:         {domain.ImageArchived},
		domain.ImageFailed:           {domain.ImageGenerating},
	}
	for _, from := range imageStatuses {
		want := map[domain.ImageJobStatus]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range imageStatuses {
			if got := rules.CanTransitionImage(from, to); got != want[to] {
				t.Errorf("image %s -> %s: got %v, want %v", from, to, got, want[to])
			}
		}
	}
	if !rules.ImageTerminal(domain.ImageArchived) {
		t.Error("archived must be terminal")
	}
}

func TestTicketTransitionTable(t *testing.T) {
	allowed := map[domain.TicketStatus][]domain.TicketStatus{
		domain.TicketOpen:       {domain.TicketInProgress, domain.TicketResolved, domain.TicketClosed},
		domain.TicketInProgress: {domain.TicketResolved, domain.TicketClosed},
	}
	for _, from := range ticketStatuses {
		want := map[domain.TicketStatus]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range ticketStatuses {
			if got := rules.CanTransitionTicket(from, to); got != want[to] {
				t.Errorf("ticket %s -> %s: got %v, want %v", from, to, got, want[to])
			}
		}
	}
}

func TestUndeclaredStatusFailsClosed(t *testing.T) {
	if rules.CanTransitionImage("limbo", domain.ImageApproved) {
		t.Error("undeclared status must have no successors")
	}
	if rules.CanTransitionAction("", domain.ActionDone) {
		t.Error("empty status must have no successors")
	}
}

func TestRetryBoundary(t *testing.T) {
	job := domain.ImageJob{Status: domain.ImageFailed, Attempts: 2}
	if !rules.CanRetry(job) {
		t.Error("retry must be allowed at 2 attempts")
	}
	job.Attempts = 3
	if rules.CanRetry(job) {
		t.Error("retry must be refused at 3 attempts")
	}
	job = domain.ImageJob{Status: domain.ImageGenerating, Attempts: 1}
	if rules.CanRetry(job) {
		t.Error("retry only applies to failed jobs")
	}
}

func TestApprovalGuardCoupling(t *testing.T) {
	for _, s := range imageStatuses {
		j := domain.ImageJob{Status: s}
		wantApprove := s == domain.ImageReadyForApproval
		if rules.CanApprove(j) != wantApprove {
			t.Errorf("CanApprove at %s: want %v", s, wantApprove)
		}
		if rules.CanReject(j) != wantApprove {
			t.Errorf("CanReject at %s: want %v", s, wantApprove)
		}
		wantApply := s == domain.ImageApproved
		if rules.CanApplyToCatalog(j) != wantApply {
			t.Errorf("CanApplyToCatalog at %s: want %v", s, wantApply)
		}
	}
}

func TestReportSendGuard(t *testing.T) {
	cases := map[domain.ReportStatus]bool{
		domain.ReportGenerated:  true,
		domain.ReportSending:    false,
		domain.ReportFailed:     true,
		domain.ReportSent:       false,
		domain.ReportGenerating: false,
	}
	for s, want := range cases {
		if got := rules.CanSend(domain.Report{Status: s}); got != want {
			t.Errorf("CanSend at %s: got %v, want %v", s, got, want)
		}
	}
}

func TestTicketReplyGuard(t *testing.T) {
	cases := map[domain.TicketStatus]bool{
		domain.TicketOpen:       true,
		domain.TicketInProgress: true,
		domain.TicketResolved:   false,
		domain.TicketClosed:     false,
	}
	for s, want := range cases {
		if got := rules.CanReply(domain.Ticket{Status: s}); got != want {
			t.Errorf("CanReply at %s: got %v, want %v", s, got, want)
		}
	}
}

func TestAsynchronousModes(t *testing.T) {
	cases := map[domain.ImageMode]bool{
		domain.ModeImproveExisting: true,
		domain.ModeFromDescription: true,
		domain.ModeFromImage:       false,
		domain.ModeDirectUpload:    false,
	}
	for mode, want := range cases {
		if got := rules.Asynchronous(mode); got != want {
			t.Errorf("Asynchronous(%s): got %v, want %v", mode, got, want)
		}
	}
}

func TestPercentChangeZeroPrevious(t *testing.T) {
	if got := rules.PercentChange(120, 0); got != 0 {
		t.Fatalf("zero previous must yield 0, got %v", got)
	}
	if got := rules.PercentChange(150, 100); got != 50 {
		t.Fatalf("150 vs 100 must be +50%%, got %v", got)
	}
	if got := rules.PercentChange(80, 100); got != -20 {
		t.Fatalf("80 vs 100 must be -20%%, got %v", got)
	}
}

func TestCompareSnapshots(t *testing.T) {
	latest := domain.Snapshot{Impressions: 1000, MenuViews: 400, Orders: 50, RevenueCents: 120000}
	prev := domain.Snapshot{Impressions: 800, MenuViews: 500, Orders: 0, RevenueCents: 100000}
	steps := rules.CompareSnapshots(latest, &prev)
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}
	byName := map[string]domain.StepDelta{}
	for _, s := range steps {
		byName[s.Step] = s
	}
	if d := byName["impressions"]; d.Absolute != 200 || d.Percentage != 25 {
		t.Errorf("impressions delta: %+v", d)
	}
	if d := byName["menu_views"]; d.Absolute != -100 || d.Percentage != -20 {
		t.Errorf("menu_views delta: %+v", d)
	}
	// orders previous is zero: saturating percentage policy
	if d := byName["orders"]; d.Absolute != 50 || d.Percentage != 0 {
		t.Errorf("orders delta: %+v", d)
	}
}

func TestReviewPolarity(t *testing.T) {
	for rating, want := range map[int][2]bool{
		1: {false, true},
		2: {false, true},
		3: {false, false},
		4: {true, false},
		5: {true, false},
	} {
		r := domain.Review{Rating: rating}
		if rules.PositiveReview(r) != want[0] || rules.NegativeReview(r) != want[1] {
			t.Errorf("rating %d: positive=%v negative=%v", rating, rules.PositiveReview(r), rules.NegativeReview(r))
		}
	}
}

func TestBreachesDropThreshold(t *testing.T) {
	d := domain.StepDelta{Percentage: -25}
	if !rules.BreachesDropThreshold(d, 20) {
		t.Error("-25% breaches a 20% drop threshold")
	}
	if rules.BreachesDropThreshold(domain.StepDelta{Percentage: -20}, 20) {
		t.Error("-20% does not breach a strict 20% threshold")
	}
	if rules.BreachesDropThreshold(d, 0) {
		t.Error("zero threshold disables the alert")
	}
}
