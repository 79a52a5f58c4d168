package domain

import "strings"

// Bucket is the coarse lifecycle classification used for dashboard columns
type Bucket string

const (
	BucketClient    Bucket = "client"
	BucketManager   Bucket = "manager"
	BucketWarehouse Bucket = "warehouse"
	BucketDone      Bucket = "done"
)

// StatusInfo is the derived status of one order
type StatusInfo struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Bucket Bucket `json:"bucket"`
}

const (
	StatusCodeDraft     = "draft"
	StatusCodeDone      = "done"
	StatusCodeActViewed = "act_viewed"
	StatusCodeActSent   = "act_sent"
	StatusCodeActOpen   = "act_open"
	StatusCodeActClosed = "act_closed"
	StatusCodeApproved  = "approved"
	StatusCodeWarehouse = "at_warehouse"
	StatusCodeUnknown   = "-"
)

// hasStatusSignal reports whether an event can define the order's status
func hasStatusSignal(e *OrderEvent) bool {
	if e.Action == ActionStatus {
		return true
	}
	return e.Payload.Has("status") ||
		e.Payload.Has("status_label") ||
		e.Payload.Has("submit_action") ||
		HasPlacementAct(e.Payload)
}

// ResolveStatus derives a single status from an ordered event history.
// It scans newest to oldest for the first event carrying a status signal and
// evaluates a fixed priority chain against that event's payload. Payloads were
// written by several workflow generations, so free-text labels are matched by
// substring as a compatibility shim alongside the structured flags. The
// function never fails: with no signal anywhere it degrades to the newest raw
// event, and an empty history yields "-".
func ResolveStatus(history []OrderEvent) StatusInfo {
	if len(history) == 0 {
		return StatusInfo{Code: StatusCodeUnknown, Label: "-", Bucket: BucketClient}
	}

	defining := &history[len(history)-1]
	for i := len(history) - 1; i >= 0; i-- {
		if hasStatusSignal(&history[i]) {
			defining = &history[i]
			break
		}
	}

	return statusFromPayload(defining.Payload)
}

func statusFromPayload(p Payload) StatusInfo {
	status := strings.ToLower(p.Str("status"))
	label := p.Str("status_label")
	submit := p.Str("submit_action")

	// terminal markers win over everything else
	switch status {
	case "done", "completed", "closed", "finished":
		return StatusInfo{Code: StatusCodeDone, Label: "Завершен", Bucket: BucketDone}
	}
	if p.Bool("act_sent") && p.Bool("act_viewed") {
		return StatusInfo{Code: StatusCodeActViewed, Label: "Акт просмотрен клиентом", Bucket: BucketDone}
	}

	if p.Bool("act_sent") {
		return StatusInfo{Code: StatusCodeActSent, Label: "Акт отправлен клиенту", Bucket: BucketClient}
	}

	if act, ok := DecodePlacementAct(p); ok {
		if act.IsOpen() {
			return StatusInfo{Code: StatusCodeActOpen, Label: "Акт размещения открыт", Bucket: BucketWarehouse}
		}
		return StatusInfo{Code: StatusCodeActClosed, Label: "Акт размещения закрыт", Bucket: BucketWarehouse}
	}

	// legacy free-text labels
	lower := strings.ToLower(label)
	if strings.Contains(lower, "подтвержд") {
		return StatusInfo{Code: StatusCodeApproved, Label: label, Bucket: BucketManager}
	}
	if strings.Contains(lower, "склад") {
		return StatusInfo{Code: StatusCodeWarehouse, Label: label, Bucket: BucketWarehouse}
	}

	if submit != "" {
		return StatusInfo{Code: submit, Label: submitLabel(submit), Bucket: bucketFor(submit)}
	}
	if status != "" {
		l := label
		if l == "" {
			l = p.Str("status")
		}
		return StatusInfo{Code: status, Label: l, Bucket: bucketFor(status)}
	}
	if label != "" {
		return StatusInfo{Code: StatusCodeUnknown, Label: label, Bucket: BucketClient}
	}

	return StatusInfo{Code: StatusCodeUnknown, Label: "-", Bucket: BucketClient}
}

func submitLabel(submit string) string {
	switch strings.ToLower(submit) {
	case "draft":
		return "Черновик"
	case "submit", "submitted":
		return "Отправлен"
	case "approve", "approved":
		return "Подтвержден"
	default:
		return submit
	}
}

func bucketFor(code string) Bucket {
	switch strings.ToLower(code) {
	case "done", "completed", "closed", "finished":
		return BucketDone
	case "approve", "approved", "submit", "submitted", "review":
		return BucketManager
	case "in_progress", "placement", "received":
		return BucketWarehouse
	default:
		return BucketClient
	}
}

// IsDraft reports whether the history's derived status is the draft state.
// Purging an order's events is only allowed while this holds.
func IsDraft(history []OrderEvent) bool {
	return strings.EqualFold(ResolveStatus(history).Code, StatusCodeDraft)
}
