package entity

// Transition tables. Each entity's status literals form an explicit state
// machine; transitions not present in the table are rejected.

var requirementTransitions = map[string][]string{
	RequirementStatusActive:     {RequirementStatusToSurveyor},
	RequirementStatusToSurveyor: {RequirementStatusAssigned},
}

var defectTransitions = map[string][]string{
	// pending -> executed is a legal shortcut for defects closed in one
	// visit; backward moves are never legal.
	DefectStatusPending:    {DefectStatusInProgress, DefectStatusExecuted},
	DefectStatusInProgress: {DefectStatusExecuted},
}

var reportTransitions = map[string][]string{
	ReportStatusDraft: {ReportStatusSubmit},
}

var quotationTransitions = map[string][]string{
	QuotationStatusDraft:            {QuotationStatusQuoted},
	QuotationStatusQuoted:           {QuotationStatusAwaitingApproval},
	QuotationStatusAwaitingApproval: {QuotationStatusToCommence, QuotationStatusRejected},
}

var invoiceTransitions = map[string][]string{
	InvoiceStatusDraft:          {InvoiceStatusSubmitted},
	InvoiceStatusSubmitted:      {InvoiceStatusSentToCustomer},
	InvoiceStatusSentToCustomer: {InvoiceStatusPaid},
}

func allowed(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RequirementCanTransition reports whether from -> to is a legal requirement
// status change.
func RequirementCanTransition(from, to string) bool {
	return allowed(requirementTransitions, from, to)
}

// DefectCanTransition reports whether from -> to is a legal defect status
// change.
func DefectCanTransition(from, to string) bool {
	return allowed(defectTransitions, from, to)
}

// ReportCanTransition reports whether from -> to is a legal report status
// change.
func ReportCanTransition(from, to string) bool {
	return allowed(reportTransitions, from, to)
}

// QuotationCanTransition reports whether from -> to is a legal quotation
// status change.
func QuotationCanTransition(from, to string) bool {
	return allowed(quotationTransitions, from, to)
}

// InvoiceCanTransition reports whether from -> to is a legal invoice status
// change.
func InvoiceCanTransition(from, to string) bool {
	return allowed(invoiceTransitions, from, to)
}
