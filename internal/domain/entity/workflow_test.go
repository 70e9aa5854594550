package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendencyStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to PendencyStatus
		ok       bool
	}{
		{PendencyPending, PendencyInProgress, true},
		{PendencyPending, PendencyCompleted, true},
		{PendencyPending, PendencyClosedWithoutCompletion, true},
		{PendencyInProgress, PendencyCompleted, true},
		{PendencyInProgress, PendencyClosedWithoutCompletion, true},
		{PendencyInProgress, PendencyPending, false},
		{PendencyCompleted, PendencyInProgress, false},
		{PendencyClosedWithoutCompletion, PendencyCompleted, false},
		{PendencyPending, PendencyPending, false},
		{PendencyPending, "DONE", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPendencyStatus_DrivesServiceOrder(t *testing.T) {
	s, ok := PendencyInProgress.ServiceOrderStatus()
	require.True(t, ok)
	assert.Equal(t, ServiceOrderInProgress, s)

	s, ok = PendencyClosedWithoutCompletion.ServiceOrderStatus()
	require.True(t, ok)
	assert.Equal(t, ServiceOrderCancelled, s)

	_, ok = PendencyPending.ServiceOrderStatus()
	assert.False(t, ok)
}

func TestServiceOrderStatus_Monotonic(t *testing.T) {
	assert.True(t, ServiceOrderOpen.CanTransitionTo(ServiceOrderInProgress))
	assert.True(t, ServiceOrderOpen.CanTransitionTo(ServiceOrderCancelled))
	assert.True(t, ServiceOrderInProgress.CanTransitionTo(ServiceOrderCompleted))
	assert.False(t, ServiceOrderInProgress.CanTransitionTo(ServiceOrderOpen))
	assert.False(t, ServiceOrderCompleted.CanTransitionTo(ServiceOrderCancelled))
	assert.False(t, ServiceOrderCancelled.CanTransitionTo(ServiceOrderInProgress))
	assert.False(t, ServiceOrderOpen.CanTransitionTo(ServiceOrderOpen))
	assert.True(t, ServiceOrderCompleted.Terminal())
}

func TestNormalizePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, NormalizePriority(" alta "))
	assert.Equal(t, PriorityHigh, NormalizePriority("HIGH"))
	assert.Equal(t, PriorityLow, NormalizePriority("baixa"))
	assert.Equal(t, PriorityMedium, NormalizePriority("urgente"))
	assert.Equal(t, PriorityMedium, NormalizePriority(""))
}

func TestParseConclusionType(t *testing.T) {
	require.NotNil(t, ParseConclusionType("COMPLETED"))
	assert.Equal(t, ConclusionNoCompletion, *ParseConclusionType("NO_COMPLETION"))
	assert.Nil(t, ParseConclusionType("completed"))
	assert.Nil(t, ParseConclusionType(""))
}

func TestServiceOrder_DisplayID(t *testing.T) {
	assert.Equal(t, "42-3", (&ServiceOrder{ID: "42-3", Contract: "42", Number: 9}).DisplayID())
	assert.Equal(t, "9", (&ServiceOrder{ID: "9b2c6c7e-uuid", Number: 9}).DisplayID())
}

func TestPendency_IsInvolved(t *testing.T) {
	resp := "r1"
	p := &Pendency{CreatedBy: "c1", ResponsibleID: &resp}
	assert.True(t, p.IsInvolved("c1"))
	assert.True(t, p.IsInvolved("r1"))
	assert.False(t, p.IsInvolved("x"))
	assert.False(t, p.IsInvolved(""))
}

func TestUser_EmailAndAdmin(t *testing.T) {
	assert.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.COM "))
	u := &User{Active: true, Roles: []string{RoleAdmin}}
	assert.True(t, u.IsActiveAdmin())
	u.Active = false
	assert.False(t, u.IsActiveAdmin())
}
