package domain

import "time"

// MoveStatus is the state of a pallet move task
type MoveStatus string

const (
	MoveStatusCreated    MoveStatus = "created"
	MoveStatusInProgress MoveStatus = "in_progress"
	MoveStatusDone       MoveStatus = "done"
)

// Label returns the human form shown to drivers
func (s MoveStatus) Label() string {
	switch s {
	case MoveStatusCreated:
		return "Создано"
	case MoveStatusInProgress:
		return "В работе"
	case MoveStatusDone:
		return "Выполнено"
	default:
		return string(s)
	}
}

// MoveTask is the folded state of one stock_move event stream
type MoveTask struct {
	ID               string     `json:"id"`
	Agency           string     `json:"agency"`
	PalletCode       string     `json:"pallet_code"`
	From             *Location  `json:"from_location,omitempty"`
	To               *Location  `json:"to_location,omitempty"`
	FromLabel        string     `json:"from_label,omitempty"`
	ToLabel          string     `json:"to_label,omitempty"`
	Status           MoveStatus `json:"status"`
	AssignedToID     string     `json:"assigned_to_id,omitempty"`
	AssignedToName   string     `json:"assigned_to_name,omitempty"`
	ReceivingOrderID string     `json:"receiving_order_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MoveFromHistory folds an ascending stock_move event history into the task's
// current state. Later events overwrite earlier fields they carry; fields a
// status event omits keep their previous value.
func MoveFromHistory(moveID string, history []OrderEvent) (*MoveTask, error) {
	if len(history) == 0 {
		return nil, ErrMoveNotFound
	}

	task := &MoveTask{
		ID:        moveID,
		Agency:    history[0].Agency,
		Status:    MoveStatusCreated,
		CreatedAt: history[0].CreatedAt,
	}
	for i := range history {
		d, err := DecodeMoveDetails(history[i].Payload)
		if err != nil {
			continue
		}
		if d.Status != "" {
			task.Status = MoveStatus(d.Status)
		}
		if d.PalletCode != "" {
			task.PalletCode = d.PalletCode
		}
		if d.From != nil {
			task.From = d.From
		}
		if d.To != nil {
			task.To = d.To
		}
		if d.FromLabel != "" {
			task.FromLabel = d.FromLabel
		}
		if d.ToLabel != "" {
			task.ToLabel = d.ToLabel
		}
		if d.AssignedToID != "" {
			task.AssignedToID = d.AssignedToID
			task.AssignedToName = d.AssignedToName
		}
		if d.ReceivingOrderID != "" {
			task.ReceivingOrderID = d.ReceivingOrderID
		}
		task.UpdatedAt = history[i].CreatedAt
	}
	return task, nil
}

// IsActive reports whether the task still needs driver attention
func (t *MoveTask) IsActive() bool {
	return t.Status != MoveStatusDone
}

// CanTake checks whether driverID may claim the task. A driver who already
// holds the task may take it again without effect.
func (t *MoveTask) CanTake(driverID string) error {
	switch t.Status {
	case MoveStatusCreated:
		if t.AssignedToID != "" && t.AssignedToID != driverID {
			return ErrAlreadyTaken
		}
		return nil
	case MoveStatusInProgress:
		if t.AssignedToID != driverID {
			return ErrAlreadyTaken
		}
		return nil
	default:
		return ErrInvalidTransition
	}
}

// CanComplete checks whether driverID may finish the task
func (t *MoveTask) CanComplete(driverID string) error {
	if t.Status != MoveStatusInProgress {
		return ErrInvalidTransition
	}
	if t.AssignedToID != driverID {
		return ErrNotAssigned
	}
	return nil
}
