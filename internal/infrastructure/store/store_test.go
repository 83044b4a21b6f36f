package store

import (
	"testing"
	"time"
)

func TestHistoryCollection(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), "order_history_3_14_2026"},
		{time.Date(2026, time.December, 1, 23, 59, 59, 0, time.UTC), "order_history_12_1_2026"},
		{time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC), "order_history_1_31_2025"},
	}
	for _, tc := range cases {
		if got := HistoryCollection(tc.date); got != tc.want {
			t.Errorf("HistoryCollection(%v) = %q, want %q", tc.date, got, tc.want)
		}
	}
}

func TestBucketRoundTrip(t *testing.T) {
	// The bucket stored on an order must rebuild the exact collection
	// name the order was written to.
	date := time.Date(2026, time.September, 1, 10, 30, 0, 0, time.UTC)

	bucket := DayBucket(date)
	if bucket != "9_1_2026" {
		t.Fatalf("DayBucket = %q, want 9_1_2026", bucket)
	}
	if got := HistoryCollectionForBucket(bucket); got != HistoryCollection(date) {
		t.Errorf("HistoryCollectionForBucket(%q) = %q, want %q", bucket, got, HistoryCollection(date))
	}
}
