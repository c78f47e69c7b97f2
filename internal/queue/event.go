// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckoutCompletedEvent is published when a seat session is settled at
// check-out.  It carries enough information for downstream consumers to
// log, bill, or trigger analytics without querying the primary database.
type CheckoutCompletedEvent struct {
	UsageID          uint64   `json:"usage_id"`
	SeatID           uint64   `json:"seat_id"`
	SeatName         string   `json:"seat_name"`
	MemberID         uint64   `json:"member_id"`
	MemberRole       string   `json:"member_role"`
	UsedMinutes      int      `json:"used_minutes"`
	RemainingMinutes int      `json:"remaining_minutes"`
	LostItemDetected bool     `json:"lost_item_detected"`
	LostItems        []string `json:"lost_items,omitempty"`
	AchievedTodoIDs  []uint64 `json:"achieved_todo_ids,omitempty"`
	CheckedOutAt     string   `json:"checked_out_at"`
}
