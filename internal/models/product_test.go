package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all rejected", []Status{StatusRejected, StatusRejected, StatusRejected}, StatusRejected},
		{"any review", []Status{StatusApproved, StatusReview, StatusApproved}, StatusReview},
		{"all approved", []Status{StatusApproved, StatusApproved}, StatusApproved},
		{"pending member keeps product pending", []Status{StatusPending, StatusApproved}, StatusPending},
		{"rejected and approved mix stays pending", []Status{StatusRejected, StatusApproved}, StatusPending},
		{"review beats pending", []Status{StatusPending, StatusReview}, StatusReview},
		{"no images", nil, StatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AggregateStatus(tc.statuses))
		})
	}
}
