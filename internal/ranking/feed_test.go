// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"context"
	"encoding/base64"
	"testing"
)

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	c := EncodeCursor(40)
	raw, err := base64.StdEncoding.DecodeString(c)
	if err != nil {
		t.Fatalf("cursor is not base64: %v", err)
	}
	if string(raw) != `{"offset":40}` {
		t.Errorf("cursor payload = %s", raw)
	}
	if got := DecodeCursor(c); got != 40 {
		t.Errorf("DecodeCursor() = %d, want 40", got)
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	t.Parallel()

	for _, c := range []string{
		"",
		"!!!not-base64",
		base64.StdEncoding.EncodeToString([]byte("not json")),
		base64.StdEncoding.EncodeToString([]byte(`{"offset":-5}`)),
		base64.StdEncoding.EncodeToString([]byte(`{"offset":"ten"}`)),
	} {
		if got := DecodeCursor(c); got != 0 {
			t.Errorf("DecodeCursor(%q) = %d, want 0", c, got)
		}
	}
}

func TestClickBoost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		clicks int
		want   float64
	}{
		{0, 0}, {1, 0.1}, {2, 0.2}, {3, 0.3}, {9, 0.3},
	}
	for _, tt := range tests {
		if got := ClickBoost(tt.clicks); !approx(got, tt.want) {
			t.Errorf("ClickBoost(%d) = %v, want %v", tt.clicks, got, tt.want)
		}
	}
}

func feedStore() *mockStore {
	return &mockStore{
		feedRows: []FeedRow{
			{Candidate: Candidate{ID: 1}, Score: 0.9},
			{Candidate: Candidate{ID: 2}, Score: 0.8},
			{Candidate: Candidate{ID: 3}, Score: 0.7},
			{Candidate: Candidate{ID: 4}, Score: 0},
			{Candidate: Candidate{ID: 5}, Score: 0},
		},
		clicks:    map[int64]int{3: 5, 4: 1},
		purchased: map[int64]struct{}{2: {}},
	}
}

func TestFeed_FirstPage(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, feedStore())

	page, err := e.Feed(context.Background(), "u1", 3, "")
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}

	// Row 2 is purchased; row 3 gets the capped 0.3 boost and overtakes row 1.
	if len(page.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(page.Items))
	}
	if page.Items[0].ID != 3 || !approx(page.Items[0].Score, 1.0) || !page.Items[0].WasClicked {
		t.Errorf("first item = %+v, want 3 boosted to 1.0", page.Items[0])
	}
	if page.Items[1].ID != 1 || page.Items[1].WasClicked {
		t.Errorf("second item = %+v, want unclicked 1", page.Items[1])
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true for a full raw page")
	}
	// The cursor advances by raw rows, not by the filtered count.
	if got := DecodeCursor(page.NextCursor); got != 3 {
		t.Errorf("next offset = %d, want 3", got)
	}
}

func TestFeed_LastPage(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, feedStore())

	page, err := e.Feed(context.Background(), "u1", 3, EncodeCursor(3))
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(page.Items) != 2 || page.HasMore {
		t.Fatalf("page = %+v, want 2 items and no more", page)
	}
	if page.Items[0].ID != 4 || !approx(page.Items[0].Score, 0.1) {
		t.Errorf("first item = %+v, want 4 boosted to 0.1", page.Items[0])
	}
	if got := DecodeCursor(page.NextCursor); got != 5 {
		t.Errorf("next offset = %d, want 5", got)
	}
}

func TestFeed_DefaultsAndBadCursor(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, feedStore())

	page, err := e.Feed(context.Background(), "u1", 0, "garbage")
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(page.Items) != 4 {
		t.Errorf("got %d items, want all 4 unpurchased", len(page.Items))
	}
	if page.HasMore {
		t.Error("HasMore = true with fewer rows than the default limit")
	}
	if page.Limit != e.Config().FeedDefaultLimit {
		t.Errorf("Limit = %d, want configured default %d", page.Limit, e.Config().FeedDefaultLimit)
	}
	for _, it := range page.Items {
		if it.ID == 2 {
			t.Error("purchased item served in feed")
		}
	}
}
