package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"bistroboard/internal/domain"
	"bistroboard/internal/repo"
	"bistroboard/internal/usecase"
)

func registerRestaurants(api huma.API, svc usecase.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-restaurant",
		Method:      http.MethodGet,
		Path:        "/restaurants/{restaurant_id}",
		Summary:     "Get restaurant",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		RestaurantID string `path:"restaurant_id"`
	}) (*struct {
		Body domain.Restaurant `json:"body"`
	}, error) {
		rt, herr := valueOrError(svc.GetRestaurant(ctx, input.RestaurantID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Restaurant `json:"body"`
		}{Body: rt}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-auto-reply",
		Method:      http.MethodPost,
		Path:        "/restaurants/{restaurant_id}/auto-reply/toggle",
		Summary:     "Toggle auto-reply for reviews or tickets",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		RestaurantID string                 `path:"restaurant_id"`
		Body         ToggleAutoReplyRequest `json:"body"`
	}) (*struct {
		Body domain.Restaurant `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "", "body required")
		}
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		rt, herr := valueOrError(svc.ToggleAutoReply(ctx, input.RestaurantID, input.Body.Scope, input.Body.Enabled, actorID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Restaurant `json:"body"`
		}{Body: rt}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-auto-reply-settings",
		Method:      http.MethodPut,
		Path:        "/restaurants/{restaurant_id}/auto-reply",
		Summary:     "Replace auto-reply settings",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		RestaurantID string                 `path:"restaurant_id"`
		Body         UpdateAutoReplyRequest `json:"body"`
	}) (*struct {
		Body domain.Restaurant `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "", "body required")
		}
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		rt, herr := valueOrError(svc.UpdateAutoReplySettings(ctx, input.RestaurantID, input.Body.settings(), actorID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Restaurant `json:"body"`
		}{Body: rt}, nil
	})
}

func registerImages(api huma.API, svc usecase.Service, r repo.Repo) {
	huma.Register(api, huma.Operation{
		OperationID:   "generate-image",
		Method:        http.MethodPost,
		Path:          "/restaurants/{restaurant_id}/images",
		Summary:       "Start image generation",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		RestaurantID string               `path:"restaurant_id"`
		Body         GenerateImageRequest `json:"body"`
	}) (*struct {
		Body domain.ImageJob `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "", "body required")
		}
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		job, herr := valueOrError(svc.GenerateImage(ctx, usecase.GenerateImageInput{
			RestaurantID:  input.RestaurantID,
			CatalogItemID: input.Body.CatalogItemID,
			Mode:          domain.ImageMode(input.Body.Mode),
			Prompt:        input.Body.Prompt,
			SourceURL:     input.Body.SourceURL,
			ActorID:       actorID,
		}))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.ImageJob `json:"body"`
		}{Body: job}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-image-jobs",
		Method:      http.MethodGet,
		Path:        "/restaurants/{restaurant_id}/images",
		Summary:     "List image jobs",
	}, func(ctx context.Context, input *struct {
		RestaurantID string `path:"restaurant_id"`
		Status       string `query:"status"`
		Mode         string `query:"mode"`
	}) (*struct {
		Body []domain.ImageJob `json:"body"`
	}, error) {
		jobs, herr := valueOrError(svc.ListImageJobs(ctx, input.RestaurantID, domain.ImageJobFilters{
			Status: domain.ImageJobStatus(input.Status),
			Mode:   domain.ImageMode(input.Mode),
		}))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body []domain.ImageJob `json:"body"`
		}{Body: jobs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-image-job",
		Method:      http.MethodGet,
		Path:        "/images/{id}",
		Summary:     "Get image job",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.ImageJob `json:"body"`
	}, error) {
		job, herr := valueOrError(svc.GetImageJob(ctx, input.ID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.ImageJob `json:"body"`
		}{Body: job}, nil
	})

	type imageAction func(ctx context.Context, id, actorID string) (domain.ImageJob, huma.StatusError)
	register := func(opID, pathSuffix, summary string, fn imageAction) {
		huma.Register(api, huma.Operation{
			OperationID: opID,
			Method:      http.MethodPost,
			Path:        "/images/{id}/" + pathSuffix,
			Summary:     summary,
			Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
		}, func(ctx context.Context, input *struct {
			ID string `path:"id"`
		}) (*struct {
			Body domain.ImageJob `json:"body"`
		}, error) {
			actorID, authErr := actorIDFromContext(ctx)
			if authErr != nil {
				return nil, authErr
			}
			job, herr := fn(ctx, input.ID, actorID)
			if herr != nil {
				return nil, herr
			}
			return &struct {
				Body domain.ImageJob `json:"body"`
			}{Body: job}, nil
		})
	}
	register("approve-image", "approve", "Approve image candidate", func(ctx context.Context, id, actorID string) (domain.ImageJob, huma.StatusError) {
		return valueOrError(svc.ApproveImage(ctx, id, actorID))
	})
	register("apply-image", "apply", "Apply approved image to catalog", func(ctx context.Context, id, actorID string) (domain.ImageJob, huma.StatusError) {
		return valueOrError(svc.ApplyImageToCatalog(ctx, id, actorID))
	})
	register("retry-image", "retry", "Retry failed generation", func(ctx context.Context, id, actorID string) (domain.ImageJob, huma.StatusError) {
		return valueOrError(svc.RetryImage(ctx, id, actorID))
	})
	register("archive-image", "archive", "Archive image job", func(ctx context.Context, id, actorID string) (domain.ImageJob, huma.StatusError) {
		return valueOrError(svc.ArchiveImage(ctx, id, actorID))
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-image",
		Method:      http.MethodPost,
		Path:        "/images/{id}/reject",
		Summary:     "Reject image candidate",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string             `path:"id"`
		Body RejectImageRequest `json:"body"`
	}) (*struct {
		Body domain.ImageJob `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		job, herr := valueOrError(svc.RejectImage(ctx, input.ID, actorID, input.Body.Note))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.ImageJob `json:"body"`
		}{Body: job}, nil
	})

	// Generation callbacks used by the worker and external generators.
	huma.Register(api, huma.Operation{
		OperationID: "complete-image-generation",
		Method:      http.MethodPost,
		Path:        "/images/{id}/complete",
		Summary:     "Attach a generated candidate",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string               `path:"id"`
		Body CompleteImageRequest `json:"body"`
	}) (*struct {
		Body domain.ImageJob `json:"body"`
	}, error) {
		job, herr := valueOrError(svc.CompleteImageGeneration(ctx, input.ID, input.Body.CandidateURL))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.ImageJob `json:"body"`
		}{Body: job}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "fail-image-generation",
		Method:      http.MethodPost,
		Path:        "/images/{id}/fail",
		Summary:     "Record a failed generation",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string         `path:"id"`
		Body FailureRequest `json:"body"`
	}) (*struct {
		Body domain.ImageJob `json:"body"`
	}, error) {
		job, herr := valueOrError(svc.FailImageGeneration(ctx, input.ID, input.Body.Reason))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.ImageJob `json:"body"`
		}{Body: job}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-catalog-items",
		Method:      http.MethodGet,
		Path:        "/restaurants/{restaurant_id}/catalog",
		Summary:     "List catalog items",
	}, func(ctx context.Context, input *struct {
		RestaurantID string `path:"restaurant_id"`
	}) (*struct {
		Body []domain.CatalogItem `json:"body"`
	}, error) {
		items, err := r.ListCatalogItems(ctx, input.RestaurantID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.CatalogItem `json:"body"`
		}{Body: items}, nil
	})
}

func registerReports(api huma.API, svc usecase.Service) {
	huma.Register(api, huma.Operation{
		OperationID:   "generate-report",
		Method:        http.MethodPost,
		Path:          "/restaurants/{restaurant_id}/reports",
		Summary:       "Start weekly report generation",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		RestaurantID string                `path:"restaurant_id"`
		Body         GenerateReportRequest `json:"body"`
	}) (*struct {
		Body domain.Report `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "", "body required")
		}
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		rep, herr := valueOrError(svc.GenerateReport(ctx, usecase.GenerateReportInput{
			RestaurantID: input.RestaurantID,
			WeekStart:    input.Body.WeekStart,
			ActorID:      actorID,
		}))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Report `json:"body"`
		}{Body: rep}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-reports",
		Method:      http.MethodGet,
		Path:        "/restaurants/{restaurant_id}/reports",
		Summary:     "List reports",
	}, func(ctx context.Context, input *struct {
		RestaurantID string `path:"restaurant_id"`
		Status       string `query:"status"`
	}) (*struct {
		Body []domain.Report `json:"body"`
	}, error) {
		reps, herr := valueOrError(svc.ListReports(ctx, input.RestaurantID, domain.ReportFilters{Status: domain.ReportStatus(input.Status)}))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body []domain.Report `json:"body"`
		}{Body: reps}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-report",
		Method:      http.MethodGet,
		Path:        "/reports/{id}",
		Summary:     "Get report",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Report `json:"body"`
	}, error) {
		rep, herr := valueOrError(svc.GetReport(ctx, input.ID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Report `json:"body"`
		}{Body: rep}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-report",
		Method:      http.MethodPost,
		Path:        "/reports/{id}/complete",
		Summary:     "Attach rendered artifact",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string                `path:"id"`
		Body CompleteReportRequest `json:"body"`
	}) (*struct {
		Body domain.Report `json:"body"`
	}, error) {
		rep, herr := valueOrError(svc.CompleteReportGeneration(ctx, input.ID, input.Body.ArtifactURL, input.Body.ContentHash))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Report `json:"body"`
		}{Body: rep}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "fail-report",
		Method:      http.MethodPost,
		Path:        "/reports/{id}/fail",
		Summary:     "Record failed generation",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string         `path:"id"`
		Body FailureRequest `json:"body"`
	}) (*struct {
		Body domain.Report `json:"body"`
	}, error) {
		rep, herr := valueOrError(svc.FailReportGeneration(ctx, input.ID, input.Body.Reason))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Report `json:"body"`
		}{Body: rep}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "send-report",
		Method:      http.MethodPost,
		Path:        "/reports/{id}/send",
		Summary:     "Queue report delivery",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string            `path:"id"`
		Body SendReportRequest `json:"body"`
	}) (*struct {
		Body domain.Report `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		rep, herr := valueOrError(svc.SendReport(ctx, input.ID, input.Body.Channel, actorID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Report `json:"body"`
		}{Body: rep}, nil
	})
}

func registerActions(api huma.API, svc usecase.Service) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-action",
		Method:        http.MethodPost,
		Path:          "/restaurants/{restaurant_id}/actions",
		Summary:       "Create action",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		RestaurantID string              `path:"restaurant_id"`
		Body         CreateActionRequest `json:"body"`
	}) (*struct {
		Body domain.Action `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "", "body required")
		}
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		a, herr := valueOrError(svc.CreateAction(ctx, usecase.CreateActionInput{
			RestaurantID: input.RestaurantID,
			ReportID:     input.Body.ReportID,
			WeekStart:    input.Body.WeekStart,
			Title:        input.Body.Title,
			Type:         input.Body.Type,
			Target:       input.Body.Target,
			ActorID:      actorID,
		}))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Action `json:"body"`
		}{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-actions",
		Method:      http.MethodGet,
		Path:        "/restaurants/{restaurant_id}/actions",
		Summary:     "List actions",
	}, func(ctx context.Context, input *struct {
		RestaurantID string `path:"restaurant_id"`
		Status       string `query:"status"`
		ReportID     string `query:"report_id"`
	}) (*struct {
		Body []domain.Action `json:"body"`
	}, error) {
		as, herr := valueOrError(svc.ListActions(ctx, input.RestaurantID, domain.ActionFilters{
			Status:   domain.ActionStatus(input.Status),
			ReportID: input.ReportID,
		}))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body []domain.Action `json:"body"`
		}{Body: as}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-action-done",
		Method:      http.MethodPost,
		Path:        "/actions/{id}/done",
		Summary:     "Mark action done",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string                `path:"id"`
		Body MarkActionDoneRequest `json:"body"`
	}) (*struct {
		Body domain.Action `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		a, herr := valueOrError(svc.MarkActionDone(ctx, input.ID, actorID, input.Body.Evidence))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Action `json:"body"`
		}{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "discard-action",
		Method:      http.MethodPost,
		Path:        "/actions/{id}/discard",
		Summary:     "Discard action",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string               `path:"id"`
		Body DiscardActionRequest `json:"body"`
	}) (*struct {
		Body domain.Action `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		a, herr := valueOrError(svc.DiscardAction(ctx, input.ID, actorID, input.Body.Reason))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Action `json:"body"`
		}{Body: a}, nil
	})
}

func registerTickets(api huma.API, svc usecase.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tickets",
		Method:      http.MethodGet,
		Path:        "/restaurants/{restaurant_id}/tickets",
		Summary:     "List tickets",
	}, func(ctx context.Context, input *struct {
		RestaurantID string `path:"restaurant_id"`
		Status       string `query:"status"`
	}) (*struct {
		Body []domain.Ticket `json:"body"`
	}, error) {
		ts, herr := valueOrError(svc.ListTickets(ctx, input.RestaurantID, domain.TicketFilters{Status: domain.TicketStatus(input.Status)}))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body []domain.Ticket `json:"body"`
		}{Body: ts}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-ticket-messages",
		Method:      http.MethodGet,
		Path:        "/tickets/{id}/messages",
		Summary:     "List ticket messages",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body []domain.TicketMessage `json:"body"`
	}, error) {
		msgs, herr := valueOrError(svc.ListTicketMessages(ctx, input.ID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body []domain.TicketMessage `json:"body"`
		}{Body: msgs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reply-ticket",
		Method:      http.MethodPost,
		Path:        "/tickets/{id}/reply",
		Summary:     "Reply to ticket",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string       `path:"id"`
		Body ReplyRequest `json:"body"`
	}) (*struct {
		Body domain.Ticket `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, herr := valueOrError(svc.ReplyToTicket(ctx, input.ID, actorID, input.Body.Body))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Ticket `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "resolve-ticket",
		Method:      http.MethodPost,
		Path:        "/tickets/{id}/resolve",
		Summary:     "Resolve ticket",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Ticket `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, herr := valueOrError(svc.ResolveTicket(ctx, input.ID, actorID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Ticket `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "close-ticket",
		Method:      http.MethodPost,
		Path:        "/tickets/{id}/close",
		Summary:     "Close ticket",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Ticket `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, herr := valueOrError(svc.CloseTicket(ctx, input.ID, actorID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Ticket `json:"body"`
		}{Body: t}, nil
	})
}

func registerReviews(api huma.API, svc usecase.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-reviews",
		Method:      http.MethodGet,
		Path:        "/restaurants/{restaurant_id}/reviews",
		Summary:     "List reviews",
	}, func(ctx context.Context, input *struct {
		RestaurantID string `path:"restaurant_id"`
		Unanswered   bool   `query:"unanswered"`
	}) (*struct {
		Body []domain.Review `json:"body"`
	}, error) {
		rvs, herr := valueOrError(svc.ListReviews(ctx, input.RestaurantID, input.Unanswered))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body []domain.Review `json:"body"`
		}{Body: rvs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reply-review",
		Method:      http.MethodPost,
		Path:        "/reviews/{id}/reply",
		Summary:     "Reply to review",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string             `path:"id"`
		Body ReviewReplyRequest `json:"body"`
	}) (*struct {
		Body domain.Review `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		rv, herr := valueOrError(svc.ReplyToReview(ctx, input.ID, actorID, input.Body.Text))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Review `json:"body"`
		}{Body: rv}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auto-reply-review",
		Method:      http.MethodPost,
		Path:        "/reviews/{id}/auto-reply",
		Summary:     "Auto-reply to review from templates",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Review `json:"body"`
	}, error) {
		rv, herr := valueOrError(svc.AutoReplyToReview(ctx, input.ID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.Review `json:"body"`
		}{Body: rv}, nil
	})
}

func registerPerformance(api huma.API, svc usecase.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-performance",
		Method:      http.MethodGet,
		Path:        "/restaurants/{restaurant_id}/performance",
		Summary:     "Weekly funnel comparison",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		RestaurantID string `path:"restaurant_id"`
	}) (*struct {
		Body domain.PerformanceData `json:"body"`
	}, error) {
		data, herr := valueOrError(svc.GetPerformanceData(ctx, input.RestaurantID))
		if herr != nil {
			return nil, herr
		}
		return &struct {
			Body domain.PerformanceData `json:"body"`
		}{Body: data}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-financials",
		Method:      http.MethodGet,
		Path:        "/restaurants/{restaurant_id}/export",
		Summary:     "Export financial data",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		RestaurantID string `path:"restaurant_id"`
		StartDate    string `query:"start_date"`
		EndDate      string `query:"end_date"`
		Format       string `query:"format" enum:"csv,json" default:"csv"`
	}) (*struct {
		ContentType string `header:"Content-Type"`
		Body        []byte `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		exp, herr := valueOrError(svc.ExportFinancialData(ctx, usecase.ExportInput{
			RestaurantID: input.RestaurantID,
			StartDate:    input.StartDate,
			EndDate:      input.EndDate,
			Format:       input.Format,
			ActorID:      actorID,
		}))
		if herr != nil {
			return nil, herr
		}
		contentType := "text/csv"
		if exp.Format == "json" {
			contentType = "application/json"
		}
		return &struct {
			ContentType string `header:"Content-Type"`
			Body        []byte `json:"body"`
		}{ContentType: contentType, Body: exp.Data}, nil
	})
}

func registerEvents(api huma.API, r repo.Repo) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/restaurants/{restaurant_id}/events",
		Summary:     "List recent audit events",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		RestaurantID string `path:"restaurant_id"`
		Limit        int    `query:"limit" default:"50"`
		Cursor       string `query:"cursor"`
	}) (*struct {
		Body []domain.Event `json:"body"`
	}, error) {
		if input.Cursor != "" {
			cursor, err := strconv.ParseInt(input.Cursor, 10, 64)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "", "invalid cursor")
			}
			items, err := r.EventsAfter(ctx, input.Limit, cursor, input.RestaurantID)
			if err != nil {
				return nil, handleError(err)
			}
			return &struct {
				Body []domain.Event `json:"body"`
			}{Body: items}, nil
		}
		items, err := r.ListEvents(ctx, input.RestaurantID, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Event `json:"body"`
		}{Body: items}, nil
	})
}
