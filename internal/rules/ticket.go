package rules

import "bistroboard/internal/domain"

var ticketTransitions = map[domain.TicketStatus]map[domain.TicketStatus]bool{
	domain.TicketOpen: {
		domain.TicketInProgress: true,
		domain.TicketResolved:   true,
		domain.TicketClosed:     true,
	},
	domain.TicketInProgress: {
		domain.TicketResolved: true,
		domain.TicketClosed:   true,
	},
}

func CanTransitionTicket(current, target domain.TicketStatus) bool {
	return ticketTransitions[current][target]
}

// CanReply is true only while a ticket is open or in progress.
func CanReply(t domain.Ticket) bool {
	return t.Status == domain.TicketOpen || t.Status == domain.TicketInProgress
}

func CanResolve(t domain.Ticket) bool {
	return CanTransitionTicket(t.Status, domain.TicketResolved)
}

func CanClose(t domain.Ticket) bool {
	return CanTransitionTicket(t.Status, domain.TicketClosed)
}

func TicketTerminal(s domain.TicketStatus) bool {
	return len(ticketTransitions[s]) == 0
}
