package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/outcome"
	"bistroboard/internal/rules"
)

type GenerateImageInput struct {
	RestaurantID  string
	CatalogItemID string
	Mode          domain.ImageMode
	Prompt        string
	SourceURL     string
	ActorID       string
}

// GenerateImage opens an image job for a catalog item. Asynchronous modes
// leave the job generating until a completion callback arrives; synchronous
// modes land in ready_for_approval immediately with the supplied source as
// candidate.
func (s Service) GenerateImage(ctx context.Context, in GenerateImageInput) outcome.Result[domain.ImageJob] {
	switch in.Mode {
	case domain.ModeImproveExisting, domain.ModeFromDescription, domain.ModeFromImage, domain.ModeDirectUpload:
	default:
		return failValidation[domain.ImageJob]("mode", fmt.Sprintf("unknown image mode %q", in.Mode))
	}
	if in.Mode == domain.ModeFromDescription && strings.TrimSpace(in.Prompt) == "" {
		return failValidation[domain.ImageJob]("prompt", "a description prompt is required for from_description")
	}
	if (in.Mode == domain.ModeFromImage || in.Mode == domain.ModeDirectUpload) && strings.TrimSpace(in.SourceURL) == "" {
		return failValidation[domain.ImageJob]("source_url", "a source image is required for this mode")
	}
	item, err := s.Images.GetCatalogItem(ctx, in.CatalogItemID)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "catalog_item", in.CatalogItemID)
	}
	if in.Mode == domain.ModeImproveExisting && item.ImageURL == nil {
		return failRule[domain.ImageJob]("IMAGE_NO_SOURCE", "catalog item %s has no existing image to improve", item.ID)
	}

	ts := s.nowStr()
	job := domain.ImageJob{
		ID:            uuid.NewString(),
		RestaurantID:  in.RestaurantID,
		CatalogItemID: item.ID,
		Mode:          in.Mode,
		Prompt:        in.Prompt,
		Status:        domain.ImageGenerating,
		Attempts:      1,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if in.SourceURL != "" {
		job.SourceURL = &in.SourceURL
	} else if in.Mode == domain.ModeImproveExisting {
		job.SourceURL = item.ImageURL
	}
	if err := s.Images.InsertImageJob(ctx, job); err != nil {
		return outcome.Fail[domain.ImageJob](fmt.Errorf("insert image job: %w", err))
	}
	s.record(ctx, events.Entry{
		Type: "image.generation_started", RestaurantID: in.RestaurantID,
		EntityKind: "image_job", EntityID: job.ID, ActorID: in.ActorID,
		Payload: events.Payload{"mode": string(in.Mode), "catalog_item_id": item.ID},
	})

	if !rules.Asynchronous(in.Mode) {
		// Upload and from_image carry their candidate in the request; no
		// generator round trip happens.
		candidate := in.SourceURL
		job.CandidateURL = &candidate
		job.Status = domain.ImageReadyForApproval
		job.UpdatedAt = s.nowStr()
		updated, err := s.Images.TransitionImageJob(ctx, job, domain.ImageGenerating)
		if err != nil {
			return wrapRepoErr[domain.ImageJob](err, "image_job", job.ID)
		}
		return outcome.OK(updated)
	}
	return outcome.OK(job)
}

// CompleteImageGeneration is called by the generation callback once a
// candidate image exists.
func (s Service) CompleteImageGeneration(ctx context.Context, jobID, candidateURL string) outcome.Result[domain.ImageJob] {
	if strings.TrimSpace(candidateURL) == "" {
		return failValidation[domain.ImageJob]("candidate_url", "candidate_url must not be empty")
	}
	job, err := s.Images.GetImageJob(ctx, jobID)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", jobID)
	}
	if !rules.CanCompleteImageGeneration(job) {
		return failRule[domain.ImageJob]("IMAGE_NOT_GENERATING", "image job %s is %s, not generating", job.ID, job.Status)
	}
	job.CandidateURL = &candidateURL
	job.FailureReason = nil
	job.Status = domain.ImageReadyForApproval
	job.UpdatedAt = s.nowStr()
	updated, err := s.Images.TransitionImageJob(ctx, job, domain.ImageGenerating)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", job.ID)
	}
	s.record(ctx, events.Entry{
		Type: "image.candidate_ready", RestaurantID: job.RestaurantID,
		EntityKind: "image_job", EntityID: job.ID, ActorID: "system",
	})
	return outcome.OK(updated)
}

func (s Service) FailImageGeneration(ctx context.Context, jobID, reason string) outcome.Result[domain.ImageJob] {
	job, err := s.Images.GetImageJob(ctx, jobID)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", jobID)
	}
	if !rules.CanFailImage(job) {
		return failRule[domain.ImageJob]("IMAGE_CANNOT_FAIL", "image job %s is %s and cannot be marked failed", job.ID, job.Status)
	}
	if reason == "" {
		reason = "generation failed"
	}
	from := job.Status
	job.FailureReason = &reason
	job.Status = domain.ImageFailed
	job.UpdatedAt = s.nowStr()
	updated, err := s.Images.TransitionImageJob(ctx, job, from)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", job.ID)
	}
	s.record(ctx, events.Entry{
		Type: "image.generation_failed", RestaurantID: job.RestaurantID,
		EntityKind: "image_job", EntityID: job.ID, ActorID: "system",
		Payload: events.Payload{"reason": reason},
	})
	return outcome.OK(updated)
}

// ApproveImage moves a candidate into approved. Approving twice, or approving
// a job that never produced a candidate, is a business-rule failure.
func (s Service) ApproveImage(ctx context.Context, jobID, actorID string) outcome.Result[domain.ImageJob] {
	if actorID == "" {
		return failValidation[domain.ImageJob]("actor_id", "actor_id is required")
	}
	job, err := s.Images.GetImageJob(ctx, jobID)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", jobID)
	}
	if !rules.CanApprove(job) {
		return failRule[domain.ImageJob]("IMAGE_CANNOT_APPROVE", "image job %s is %s and cannot be approved", job.ID, job.Status)
	}
	approvedAt := s.nowStr()
	job.ApprovedBy = &actorID
	job.ApprovedAt = &approvedAt
	job.Status = domain.ImageApproved
	job.UpdatedAt = approvedAt
	updated, err := s.Images.TransitionImageJob(ctx, job, domain.ImageReadyForApproval)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", job.ID)
	}
	s.record(ctx, events.Entry{
		Type: "image.approved", RestaurantID: job.RestaurantID,
		EntityKind: "image_job", EntityID: job.ID, ActorID: actorID,
	})
	return outcome.OK(updated)
}

func (s Service) RejectImage(ctx context.Context, jobID, actorID, note string) outcome.Result[domain.ImageJob] {
	if actorID == "" {
		return failValidation[domain.ImageJob]("actor_id", "actor_id is required")
	}
	job, err := s.Images.GetImageJob(ctx, jobID)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", jobID)
	}
	if !rules.CanReject(job) {
		return failRule[domain.ImageJob]("IMAGE_CANNOT_REJECT", "image job %s is %s and cannot be rejected", job.ID, job.Status)
	}
	if note != "" {
		job.RejectionNote = &note
	}
	job.Status = domain.ImageRejected
	job.UpdatedAt = s.nowStr()
	updated, err := s.Images.TransitionImageJob(ctx, job, domain.ImageReadyForApproval)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", job.ID)
	}
	s.record(ctx, events.Entry{
		Type: "image.rejected", RestaurantID: job.RestaurantID,
		EntityKind: "image_job", EntityID: job.ID, ActorID: actorID,
		Payload: events.Payload{"note": note},
	})
	return outcome.OK(updated)
}

// ApplyImageToCatalog publishes an approved candidate onto its catalog item.
func (s Service) ApplyImageToCatalog(ctx context.Context, jobID, actorID string) outcome.Result[domain.ImageJob] {
	job, err := s.Images.GetImageJob(ctx, jobID)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", jobID)
	}
	if !rules.CanApplyToCatalog(job) {
		return failRule[domain.ImageJob]("IMAGE_CANNOT_APPLY", "image job %s is %s; only approved candidates can be applied", job.ID, job.Status)
	}
	if job.CandidateURL == nil {
		return failRule[domain.ImageJob]("IMAGE_NO_CANDIDATE", "image job %s has no candidate image", job.ID)
	}
	ts := s.nowStr()
	if _, err := s.Images.SetCatalogImage(ctx, job.CatalogItemID, *job.CandidateURL, ts); err != nil {
		return wrapRepoErr[domain.ImageJob](err, "catalog_item", job.CatalogItemID)
	}
	job.AppliedAt = &ts
	job.Status = domain.ImageAppliedToCatalog
	job.UpdatedAt = ts
	updated, err := s.Images.TransitionImageJob(ctx, job, domain.ImageApproved)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", job.ID)
	}
	s.record(ctx, events.Entry{
		Type: "image.applied", RestaurantID: job.RestaurantID,
		EntityKind: "image_job", EntityID: job.ID, ActorID: actorID,
		Payload: events.Payload{"catalog_item_id": job.CatalogItemID},
	})
	return outcome.OK(updated)
}

// RetryImage restarts a failed generation, bumping the attempt counter. Jobs
// at the attempt cap stay failed.
func (s Service) RetryImage(ctx context.Context, jobID, actorID string) outcome.Result[domain.ImageJob] {
	job, err := s.Images.GetImageJob(ctx, jobID)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", jobID)
	}
	if !rules.CanRetry(job) {
		if job.Status == domain.ImageFailed {
			return failRule[domain.ImageJob]("IMAGE_RETRY_EXHAUSTED", "image job %s has used all %d attempts", job.ID, rules.MaxImageAttempts)
		}
		return failRule[domain.ImageJob]("IMAGE_CANNOT_RETRY", "image job %s is %s; only failed jobs can be retried", job.ID, job.Status)
	}
	job.Attempts++
	job.FailureReason = nil
	job.Status = domain.ImageGenerating
	job.UpdatedAt = s.nowStr()
	updated, err := s.Images.TransitionImageJob(ctx, job, domain.ImageFailed)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", job.ID)
	}
	s.record(ctx, events.Entry{
		Type: "image.retried", RestaurantID: job.RestaurantID,
		EntityKind: "image_job", EntityID: job.ID, ActorID: actorID,
		Payload: events.Payload{"attempts": job.Attempts},
	})
	return outcome.OK(updated)
}

func (s Service) ArchiveImage(ctx context.Context, jobID, actorID string) outcome.Result[domain.ImageJob] {
	job, err := s.Images.GetImageJob(ctx, jobID)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", jobID)
	}
	if !rules.CanArchiveImage(job) {
		return failRule[domain.ImageJob]("IMAGE_CANNOT_ARCHIVE", "image job %s is %s and cannot be archived", job.ID, job.Status)
	}
	from := job.Status
	job.Status = domain.ImageArchived
	job.UpdatedAt = s.nowStr()
	updated, err := s.Images.TransitionImageJob(ctx, job, from)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", job.ID)
	}
	s.record(ctx, events.Entry{
		Type: "image.archived", RestaurantID: job.RestaurantID,
		EntityKind: "image_job", EntityID: job.ID, ActorID: actorID,
	})
	return outcome.OK(updated)
}

func (s Service) GetImageJob(ctx context.Context, jobID string) outcome.Result[domain.ImageJob] {
	job, err := s.Images.GetImageJob(ctx, jobID)
	if err != nil {
		return wrapRepoErr[domain.ImageJob](err, "image_job", jobID)
	}
	return outcome.OK(job)
}

func (s Service) ListImageJobs(ctx context.Context, restaurantID string, f domain.ImageJobFilters) outcome.Result[[]domain.ImageJob] {
	jobs, err := s.Images.ListImageJobs(ctx, restaurantID, f)
	if err != nil {
		return outcome.Fail[[]domain.ImageJob](fmt.Errorf("list image jobs: %w", err))
	}
	return outcome.OK(jobs)
}
