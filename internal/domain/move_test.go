package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moveEvent(minute int, details MoveDetails) OrderEvent {
	return OrderEvent{
		OrderType: OrderTypeStockMove,
		OrderID:   "MV-1",
		Action:    ActionStatus,
		Payload:   details.Encode(),
		Agency:    "agency-1",
		CreatedAt: time.Date(2024, 3, 1, 9, minute, 0, 0, time.UTC),
	}
}

func TestMoveFromHistoryFold(t *testing.T) {
	to := Location{Zone: ZoneRack, Row: 2, Section: 1, Tier: 1, Cell: 3}
	history := []OrderEvent{
		moveEvent(0, MoveDetails{
			Status:     string(MoveStatusCreated),
			PalletCode: "PAL-1",
			To:         &to,
			ToLabel:    to.Label(),
			FromLabel:  "PR · Зона приемки",
		}),
		moveEvent(5, MoveDetails{
			Status:         string(MoveStatusInProgress),
			AssignedToID:   "driver-1",
			AssignedToName: "Иванов",
		}),
	}

	task, err := MoveFromHistory("MV-1", history)
	require.NoError(t, err)
	assert.Equal(t, MoveStatusInProgress, task.Status)
	// fields from the create event survive the status event
	assert.Equal(t, "PAL-1", task.PalletCode)
	require.NotNil(t, task.To)
	assert.True(t, to.Equals(*task.To))
	assert.Equal(t, "driver-1", task.AssignedToID)
	assert.Equal(t, "agency-1", task.Agency)
	assert.True(t, task.IsActive())
}

func TestMoveFromHistoryEmpty(t *testing.T) {
	_, err := MoveFromHistory("MV-404", nil)
	assert.ErrorIs(t, err, ErrMoveNotFound)
}

func TestCanTake(t *testing.T) {
	t.Run("created unassigned", func(t *testing.T) {
		task := &MoveTask{Status: MoveStatusCreated}
		assert.NoError(t, task.CanTake("driver-1"))
	})

	t.Run("retake by same driver", func(t *testing.T) {
		task := &MoveTask{Status: MoveStatusInProgress, AssignedToID: "driver-1"}
		assert.NoError(t, task.CanTake("driver-1"))
	})

	t.Run("taken by another driver", func(t *testing.T) {
		task := &MoveTask{Status: MoveStatusInProgress, AssignedToID: "driver-1"}
		assert.ErrorIs(t, task.CanTake("driver-2"), ErrAlreadyTaken)
	})

	t.Run("done is terminal", func(t *testing.T) {
		task := &MoveTask{Status: MoveStatusDone, AssignedToID: "driver-1"}
		assert.ErrorIs(t, task.CanTake("driver-1"), ErrInvalidTransition)
	})
}

func TestCanComplete(t *testing.T) {
	t.Run("assigned driver completes", func(t *testing.T) {
		task := &MoveTask{Status: MoveStatusInProgress, AssignedToID: "driver-1"}
		assert.NoError(t, task.CanComplete("driver-1"))
	})

	t.Run("wrong driver", func(t *testing.T) {
		task := &MoveTask{Status: MoveStatusInProgress, AssignedToID: "driver-1"}
		assert.ErrorIs(t, task.CanComplete("driver-2"), ErrNotAssigned)
	})

	t.Run("not started", func(t *testing.T) {
		task := &MoveTask{Status: MoveStatusCreated}
		assert.ErrorIs(t, task.CanComplete("driver-1"), ErrInvalidTransition)
	})

	t.Run("already done", func(t *testing.T) {
		task := &MoveTask{Status: MoveStatusDone, AssignedToID: "driver-1"}
		assert.ErrorIs(t, task.CanComplete("driver-1"), ErrInvalidTransition)
	})
}

func TestMoveStatusLabels(t *testing.T) {
	assert.Equal(t, "Создано", MoveStatusCreated.Label())
	assert.Equal(t, "В работе", MoveStatusInProgress.Label())
	assert.Equal(t, "Выполнено", MoveStatusDone.Label())
}
