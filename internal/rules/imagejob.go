package rules

import "bistroboard/internal/domain"

// MaxImageAttempts caps generation retries per job.
const MaxImageAttempts = 3

var imageTransitions = map[domain.ImageJobStatus]map[domain.ImageJobStatus]bool{
	domain.ImageGenerating: {
		domain.ImageReadyForApproval: true,
		domain.ImageFailed:           true,
	},
	domain.ImageReadyForApproval: {
		domain.ImageApproved: true,
		domain.ImageRejected: true,
	},
	domain.ImageApproved: {
		domain.ImageAppliedToCatalog: true,
		domain.ImageFailed:           true,
	},
	domain.ImageAppliedToCatalog: {
		domain.ImageArchived: true,
	},
	domain.ImageRejected: {
		domain.ImageArchived: true,
	},
	domain.ImageFailed: {
		domain.ImageGenerating: true,
	},
}

func CanTransitionImage(current, target domain.ImageJobStatus) bool {
	return imageTransitions[current][target]
}

func CanApprove(j domain.ImageJob) bool {
	return CanTransitionImage(j.Status, domain.ImageApproved)
}

func CanReject(j domain.ImageJob) bool {
	return CanTransitionImage(j.Status, domain.ImageRejected)
}

func CanApplyToCatalog(j domain.ImageJob) bool {
	return j.Status == domain.ImageApproved
}

// CanRetry allows re-entering generation from failed while attempts remain
// under the ceiling.
func CanRetry(j domain.ImageJob) bool {
	return CanTransitionImage(j.Status, domain.ImageGenerating) && j.Attempts < MaxImageAttempts
}

func CanArchiveImage(j domain.ImageJob) bool {
	return CanTransitionImage(j.Status, domain.ImageArchived)
}

func CanCompleteImageGeneration(j domain.ImageJob) bool {
	return CanTransitionImage(j.Status, domain.ImageReadyForApproval)
}

func CanFailImage(j domain.ImageJob) bool {
	return CanTransitionImage(j.Status, domain.ImageFailed)
}

func ImageTerminal(s domain.ImageJobStatus) bool {
	return len(imageTransitions[s]) == 0
}

// Asynchronous reports whether a mode completes out-of-band. improve_existing
// and from_description go through the generation worker; from_image and
// direct_upload finish inside the creating call.
func Asynchronous(mode domain.ImageMode) bool {
	return mode == domain.ModeImproveExisting || mode == domain.ModeFromDescription
}
