package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func eventAt(minute int, action Action, payload Payload) OrderEvent {
	return OrderEvent{
		OrderType: OrderTypeReceiving,
		OrderID:   "R1",
		Action:    action,
		Payload:   payload,
		CreatedAt: time.Date(2024, 3, 1, 10, minute, 0, 0, time.UTC),
	}
}

func TestResolveStatusPriorityChain(t *testing.T) {
	tests := []struct {
		name           string
		payload        Payload
		expectedCode   string
		expectedBucket Bucket
	}{
		{
			name:           "terminal done",
			payload:        Payload{"status": "done"},
			expectedCode:   StatusCodeDone,
			expectedBucket: BucketDone,
		},
		{
			name:           "terminal closed",
			payload:        Payload{"status": "closed"},
			expectedCode:   StatusCodeDone,
			expectedBucket: BucketDone,
		},
		{
			name:           "act sent and viewed beats act state",
			payload:        Payload{"act_sent": true, "act_viewed": true, "act_state": "open"},
			expectedCode:   StatusCodeActViewed,
			expectedBucket: BucketDone,
		},
		{
			name:           "act sent unviewed",
			payload:        Payload{"act_sent": true, "act_state": "closed"},
			expectedCode:   StatusCodeActSent,
			expectedBucket: BucketClient,
		},
		{
			name:           "open placement act",
			payload:        Payload{"act_state": "open"},
			expectedCode:   StatusCodeActOpen,
			expectedBucket: BucketWarehouse,
		},
		{
			name:           "closed placement act",
			payload:        Payload{"act_state": "closed"},
			expectedCode:   StatusCodeActClosed,
			expectedBucket: BucketWarehouse,
		},
		{
			name:           "act marker without state defaults closed",
			payload:        Payload{"act": true},
			expectedCode:   StatusCodeActClosed,
			expectedBucket: BucketWarehouse,
		},
		{
			name:           "russian approved label",
			payload:        Payload{"status_label": "Заказ подтвержден менеджером"},
			expectedCode:   StatusCodeApproved,
			expectedBucket: BucketManager,
		},
		{
			name:           "russian warehouse label",
			payload:        Payload{"status_label": "Товар на складе"},
			expectedCode:   StatusCodeWarehouse,
			expectedBucket: BucketWarehouse,
		},
		{
			name:           "raw submit action",
			payload:        Payload{"submit_action": "submit"},
			expectedCode:   "submit",
			expectedBucket: BucketManager,
		},
		{
			name:           "raw status value",
			payload:        Payload{"status": "in_progress"},
			expectedCode:   "in_progress",
			expectedBucket: BucketWarehouse,
		},
		{
			name:           "no signal at all",
			payload:        Payload{"comment": "привезли не всё"},
			expectedCode:   StatusCodeUnknown,
			expectedBucket: BucketClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := []OrderEvent{eventAt(0, ActionCreate, tt.payload)}
			status := ResolveStatus(history)
			assert.Equal(t, tt.expectedCode, status.Code)
			assert.Equal(t, tt.expectedBucket, status.Bucket)
			assert.NotEmpty(t, status.Label)
		})
	}
}

func TestResolveStatusPicksNewestSignal(t *testing.T) {
	history := []OrderEvent{
		eventAt(0, ActionCreate, Payload{"submit_action": "draft"}),
		eventAt(1, ActionStatus, Payload{"status": "approved", "status_label": "Подтвержден"}),
		eventAt(2, ActionComment, Payload{"comment": "уточнение по срокам"}),
	}

	status := ResolveStatus(history)
	assert.Equal(t, StatusCodeApproved, status.Code)
	assert.Equal(t, BucketManager, status.Bucket)
}

func TestResolveStatusOlderSignalsAreHistory(t *testing.T) {
	history := []OrderEvent{
		eventAt(0, ActionCreate, Payload{"act_state": "closed"}),
		eventAt(1, ActionStatus, Payload{"status": "done"}),
	}

	assert.Equal(t, StatusCodeDone, ResolveStatus(history).Code)
}

func TestResolveStatusFallsBackToNewestRawEvent(t *testing.T) {
	history := []OrderEvent{
		eventAt(0, ActionComment, Payload{"comment": "первый"}),
		eventAt(1, ActionComment, Payload{"comment": "второй"}),
	}

	status := ResolveStatus(history)
	assert.Equal(t, StatusCodeUnknown, status.Code)
	assert.Equal(t, "-", status.Label)
}

func TestResolveStatusEmptyHistory(t *testing.T) {
	status := ResolveStatus(nil)
	assert.Equal(t, StatusCodeUnknown, status.Code)
	assert.Equal(t, "-", status.Label)
}

func TestResolveStatusDeterministic(t *testing.T) {
	history := []OrderEvent{
		eventAt(0, ActionCreate, Payload{"submit_action": "draft"}),
		eventAt(1, ActionStatus, Payload{"status_label": "Товар на складе"}),
	}

	first := ResolveStatus(history)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ResolveStatus(history))
	}
}

func TestIsDraft(t *testing.T) {
	draft := []OrderEvent{eventAt(0, ActionCreate, Payload{"submit_action": "draft"})}
	assert.True(t, IsDraft(draft))

	submitted := append(draft, eventAt(1, ActionStatus, Payload{"submit_action": "submit"}))
	assert.False(t, IsDraft(submitted))

	assert.False(t, IsDraft(nil))
}
