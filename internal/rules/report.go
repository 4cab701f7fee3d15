package rules

import "bistroboard/internal/domain"

var reportTransitions = map[domain.ReportStatus]map[domain.ReportStatus]bool{
	domain.ReportGenerating: {
		domain.ReportGenerated: true,
		domain.ReportFailed:    true,
	},
	domain.ReportGenerated: {
		domain.ReportSending: true,
	},
	domain.ReportSending: {
		domain.ReportSent:   true,
		domain.ReportFailed: true,
	},
	// failed reports re-enter the delivery path, not generation
	domain.ReportFailed: {
		domain.ReportSending: true,
	},
}

func CanTransitionReport(current, target domain.ReportStatus) bool {
	return reportTransitions[current][target]
}

// CanSend is true for freshly generated reports and for failed ones retrying
// delivery.
func CanSend(r domain.Report) bool {
	return CanTransitionReport(r.Status, domain.ReportSending)
}

func CanCompleteReportGeneration(r domain.Report) bool {
	return CanTransitionReport(r.Status, domain.ReportGenerated)
}

func CanFailReport(r domain.Report) bool {
	return CanTransitionReport(r.Status, domain.ReportFailed)
}

func CanMarkReportSent(r domain.Report) bool {
	return CanTransitionReport(r.Status, domain.ReportSent)
}

func ReportTerminal(s domain.ReportStatus) bool {
	return len(reportTransitions[s]) == 0
}
