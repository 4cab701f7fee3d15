package usecase

import (
	"context"
	"fmt"
	"time"

	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/outcome"
	"bistroboard/internal/rules"
)

// GetPerformanceData compares the two most recent weekly snapshots and
// attaches alerts from the configured thresholds. A restaurant with no
// snapshots has no performance data yet.
func (s Service) GetPerformanceData(ctx context.Context, restaurantID string) outcome.Result[domain.PerformanceData] {
	snaps, err := s.Performance.GetSnapshots(ctx, restaurantID)
	if err != nil {
		return outcome.Fail[domain.PerformanceData](fmt.Errorf("load snapshots: %w", err))
	}
	if len(snaps) == 0 {
		return failNotFound[domain.PerformanceData]("snapshot", restaurantID)
	}
	latest := snaps[0]
	var previous *domain.Snapshot
	if len(snaps) > 1 {
		previous = &snaps[1]
	}
	data := domain.PerformanceData{
		RestaurantID: restaurantID,
		Latest:       latest,
		Previous:     previous,
		Steps:        rules.CompareSnapshots(latest, previous),
	}

	var dropPercent float64
	var minOrders int64
	if s.Config != nil {
		dropPercent = s.Config.Alerts.DropPercent
		minOrders = s.Config.Alerts.MinOrders
	}
	if dropPercent > 0 && previous != nil {
		for _, d := range data.Steps {
			if rules.BreachesDropThreshold(d, dropPercent) {
				data.Alerts = append(data.Alerts, domain.PerformanceAlert{
					Code: "STEP_DROP", Step: d.Step,
					Message: fmt.Sprintf("%s dropped %.1f%% week over week", d.Step, -d.Percentage),
				})
			}
		}
	}
	if minOrders > 0 && latest.Orders < minOrders {
		data.Alerts = append(data.Alerts, domain.PerformanceAlert{
			Code: "LOW_ORDERS", Step: "orders",
			Message: fmt.Sprintf("only %d orders this week, below the %d floor", latest.Orders, minOrders),
		})
	}
	return outcome.OK(data)
}

type ExportInput struct {
	RestaurantID string
	StartDate    string
	EndDate      string
	Format       string
	ActorID      string
}

// ExportFinancialData validates the date window before touching storage, then
// hands formatting to the repository.
func (s Service) ExportFinancialData(ctx context.Context, in ExportInput) outcome.Result[domain.Export] {
	start, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return failValidation[domain.Export]("start_date", fmt.Sprintf("start_date %q is not a valid date (YYYY-MM-DD)", in.StartDate))
	}
	end, err := time.Parse("2006-01-02", in.EndDate)
	if err != nil {
		return failValidation[domain.Export]("end_date", fmt.Sprintf("end_date %q is not a valid date (YYYY-MM-DD)", in.EndDate))
	}
	if end.Before(start) {
		return failValidation[domain.Export]("start_date", "start_date must not be after end_date")
	}
	format := in.Format
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		return failValidation[domain.Export]("format", fmt.Sprintf("format %q is not one of csv, json", in.Format))
	}

	blob, err := s.Performance.ExportData(ctx, in.RestaurantID, in.StartDate, in.EndDate, format)
	if err != nil {
		return outcome.Fail[domain.Export](fmt.Errorf("export financial data: %w", err))
	}
	s.record(ctx, events.Entry{
		Type: "export.financial", RestaurantID: in.RestaurantID,
		EntityKind: "export", ActorID: in.ActorID,
		Payload: events.Payload{"start_date": in.StartDate, "end_date": in.EndDate, "format": format},
	})
	return outcome.OK(domain.Export{
		RestaurantID: in.RestaurantID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Format:       format,
		Data:         blob,
	})
}
