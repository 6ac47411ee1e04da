package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"citypulse/internal/domain"
	"citypulse/internal/ranking"
)

func newTestFeedService(t *testing.T, videos *mockVideoRepo, tastes *mockTasteRepo, diversity bool, maxSameTag int) *FeedService {
	t.Helper()
	cfg := ranking.DefaultConfig()
	cfg.MaxSameTag = maxSameTag
	ranker, err := ranking.NewRanker(cfg, ranking.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("new ranker: %v", err)
	}
	svc := NewFeedService(videos, tastes, ranker, FeedOptions{DiversityEnabled: diversity}, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func feedIDs(items ranking.RankedFeed) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Video.ID)
	}
	return out
}

func TestFeedService_AnonymousUsesRecency(t *testing.T) {
	videos := newMockVideoRepo()
	videos.recent = []domain.Video{
		testVideo("old", domain.BoroughBrooklyn, 10*time.Hour, nil),
		testVideo("new", domain.BoroughBrooklyn, time.Hour, nil),
	}
	svc := newTestFeedService(t, videos, newMockTasteRepo(), false, 3)

	res, err := svc.GetFeed(context.Background(), FeedQuery{Borough: domain.BoroughBrooklyn, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != FeedModeRecency {
		t.Fatalf("expected recency mode, got %s", res.Mode)
	}
	if got := feedIDs(res.Items); len(got) != 2 || got[0] != "new" {
		t.Fatalf("expected newest first, got %v", got)
	}
	if videos.searchCalls != 0 {
		t.Fatalf("expected no vector search for anonymous users")
	}
	want := testNow.Add(-DefaultFeedSinceHours * time.Hour)
	if !videos.lastRecent.Since.Equal(want) {
		t.Fatalf("expected since %v, got %v", want, videos.lastRecent.Since)
	}
}

func TestFeedService_PersonalizedWhenTasteExists(t *testing.T) {
	videos := newMockVideoRepo()
	videos.matches = []domain.VideoMatch{
		{Video: testVideo("close", domain.BoroughQueens, 2*time.Hour, []float32{1, 0}), Similarity: 0.95},
		{Video: testVideo("far", domain.BoroughQueens, 2*time.Hour, []float32{0, 1}), Similarity: 0.10},
	}
	tastes := newMockTasteRepo()
	tastes.profiles["u1"] = domain.TasteProfile{UserID: "u1", Embedding: []float32{1, 0}, Count: 3, Version: 3}
	svc := newTestFeedService(t, videos, tastes, false, 3)

	res, err := svc.GetFeed(context.Background(), FeedQuery{UserID: "u1", Borough: domain.BoroughQueens, Limit: 5, SinceHours: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != FeedModePersonalized {
		t.Fatalf("expected personalized mode, got %s", res.Mode)
	}
	if got := feedIDs(res.Items); got[0] != "close" {
		t.Fatalf("expected most similar first, got %v", got)
	}
	if videos.lastVector.Borough != domain.BoroughQueens || videos.lastVector.Limit != 10 {
		t.Fatalf("unexpected vector query: %+v", videos.lastVector)
	}
	if !videos.lastVector.Since.Equal(testNow.Add(-12 * time.Hour)) {
		t.Fatalf("unexpected since: %v", videos.lastVector.Since)
	}
	if videos.recentCalls != 0 {
		t.Fatalf("expected no recency fetch")
	}
}

func TestFeedService_FallsBackWhenSearchEmptyOrFails(t *testing.T) {
	for name, searchErr := range map[string]error{"empty": nil, "error": errors.New("pg down")} {
		t.Run(name, func(t *testing.T) {
			videos := newMockVideoRepo()
			videos.searchErr = searchErr
			videos.recent = []domain.Video{testVideo("r1", domain.BoroughBronx, time.Hour, nil)}
			tastes := newMockTasteRepo()
			tastes.profiles["u1"] = domain.TasteProfile{UserID: "u1", Embedding: []float32{1}, Count: 1}
			svc := newTestFeedService(t, videos, tastes, false, 3)

			res, err := svc.GetFeed(context.Background(), FeedQuery{UserID: "u1", Borough: domain.BoroughBronx})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Mode != FeedModeRecency || len(res.Items) != 1 {
				t.Fatalf("expected recency fallback with 1 item, got %s %v", res.Mode, feedIDs(res.Items))
			}
			if videos.searchCalls != 1 {
				t.Fatalf("expected one vector search attempt")
			}
		})
	}
}

func TestFeedService_EmptyTasteSkipsSearch(t *testing.T) {
	videos := newMockVideoRepo()
	svc := newTestFeedService(t, videos, newMockTasteRepo(), false, 3)

	res, err := svc.GetFeed(context.Background(), FeedQuery{UserID: "fresh", Borough: domain.BoroughManhattan})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if videos.searchCalls != 0 {
		t.Fatalf("expected no vector search with empty taste")
	}
	if res.Items == nil || len(res.Items) != 0 || res.HasMore {
		t.Fatalf("expected empty non-nil page, got %+v", res.Page)
	}
}

func TestFeedService_DiversityAndPagination(t *testing.T) {
	videos := newMockVideoRepo()
	videos.recent = []domain.Video{
		testVideo("a", domain.BoroughBrooklyn, 1*time.Hour, nil, "brooklyn"),
		testVideo("b", domain.BoroughBrooklyn, 2*time.Hour, nil, "brooklyn"),
		testVideo("c", domain.BoroughBrooklyn, 3*time.Hour, nil, "brooklyn"),
		testVideo("d", domain.BoroughBrooklyn, 4*time.Hour, nil, "food"),
		testVideo("e", domain.BoroughBrooklyn, 5*time.Hour, nil, "music"),
	}
	svc := newTestFeedService(t, videos, newMockTasteRepo(), true, 2)

	res, err := svc.RecentFeed(context.Background(), FeedQuery{Borough: domain.BoroughBrooklyn, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := feedIDs(res.Items); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected first page: %v", got)
	}
	if res.Total != 4 || !res.HasMore {
		t.Fatalf("expected total=4 has_more=true, got %d %v", res.Total, res.HasMore)
	}

	res, err = svc.RecentFeed(context.Background(), FeedQuery{Borough: domain.BoroughBrooklyn, Skip: 2, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := feedIDs(res.Items); len(got) != 2 || got[0] != "d" || got[1] != "e" || res.HasMore {
		t.Fatalf("unexpected second page: %v has_more=%v", got, res.HasMore)
	}
}

func TestFeedService_RecencyErrorPropagates(t *testing.T) {
	videos := newMockVideoRepo()
	videos.recentErr = errors.New("pg down")
	svc := newTestFeedService(t, videos, newMockTasteRepo(), false, 3)
	if _, err := svc.RecentFeed(context.Background(), FeedQuery{Borough: domain.BoroughQueens}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFeedService_LimitsAreClamped(t *testing.T) {
	videos := newMockVideoRepo()
	svc := newTestFeedService(t, videos, newMockTasteRepo(), false, 3)
	if _, err := svc.RecentFeed(context.Background(), FeedQuery{Borough: domain.BoroughQueens, Limit: 500, Skip: -3, SinceHours: 1000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if videos.lastRecent.Limit != 2*MaxFeedLimit {
		t.Fatalf("expected candidate limit %d, got %d", 2*MaxFeedLimit, videos.lastRecent.Limit)
	}
	if !videos.lastRecent.Since.Equal(testNow.Add(-MaxSinceHours * time.Hour)) {
		t.Fatalf("expected since clamped to %dh", MaxSinceHours)
	}
}

func TestCandidateLimit(t *testing.T) {
	cases := []struct{ skip, limit, want int }{
		{0, 20, 40},
		{10, 5, 20},
		{190, 50, 290},
		{MaxFeedSkip, MaxFeedLimit, MaxFeedSkip + 2*MaxFeedLimit},
	}
	for _, c := range cases {
		if got := candidateLimit(c.skip, c.limit); got != c.want {
			t.Fatalf("candidateLimit(%d,%d): expected %d, got %d", c.skip, c.limit, c.want, got)
		}
	}
}

func TestFeedService_DeepPagesBeyondFirstWindow(t *testing.T) {
	videos := newMockVideoRepo()
	videos.honorLimit = true
	for i := 0; i < 700; i++ {
		videos.recent = append(videos.recent, testVideo(fmt.Sprintf("v%03d", i), domain.BoroughManhattan, time.Duration(i)*time.Minute, nil))
	}
	svc := newTestFeedService(t, videos, newMockTasteRepo(), false, 3)
	ctx := context.Background()

	cases := []struct {
		skip    int
		first   string
		hasMore bool
	}{
		{150, "v150", true},
		{200, "v200", true},
		{450, "v450", true},
		{MaxFeedSkip, "v500", false},
	}
	for _, c := range cases {
		res, err := svc.RecentFeed(ctx, FeedQuery{Borough: domain.BoroughManhattan, Skip: c.skip, Limit: 50})
		if err != nil {
			t.Fatalf("skip=%d: unexpected error: %v", c.skip, err)
		}
		if len(res.Items) != 50 || res.Items[0].Video.ID != c.first {
			t.Fatalf("skip=%d: expected 50 items starting at %s, got %d %v", c.skip, c.first, len(res.Items), feedIDs(res.Items))
		}
		if res.HasMore != c.hasMore {
			t.Fatalf("skip=%d: expected has_more=%v, got %v", c.skip, c.hasMore, res.HasMore)
		}
	}

	if _, err := svc.RecentFeed(ctx, FeedQuery{Borough: domain.BoroughManhattan, Skip: MaxFeedSkip + 1, Limit: 50}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest past the feed depth, got %v", err)
	}
}

func TestFeedService_HasMoreEndsWhenDatabaseRunsOut(t *testing.T) {
	videos := newMockVideoRepo()
	videos.honorLimit = true
	for i := 0; i < 300; i++ {
		videos.recent = append(videos.recent, testVideo(fmt.Sprintf("v%03d", i), domain.BoroughBronx, time.Duration(i)*time.Minute, nil))
	}
	svc := newTestFeedService(t, videos, newMockTasteRepo(), false, 3)

	res, err := svc.RecentFeed(context.Background(), FeedQuery{Borough: domain.BoroughBronx, Skip: 250, Limit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 50 || res.HasMore {
		t.Fatalf("expected last full page without more, got %d has_more=%v", len(res.Items), res.HasMore)
	}
}

func TestFeedService_DiversityDoesNotEndFeedEarly(t *testing.T) {
	videos := newMockVideoRepo()
	videos.honorLimit = true
	for i := 0; i < 20; i++ {
		videos.recent = append(videos.recent, testVideo(fmt.Sprintf("v%02d", i), domain.BoroughQueens, time.Duration(i)*time.Minute, nil, "food"))
	}
	svc := newTestFeedService(t, videos, newMockTasteRepo(), true, 2)

	res, err := svc.RecentFeed(context.Background(), FeedQuery{Borough: domain.BoroughQueens, Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 2 || !res.HasMore {
		t.Fatalf("expected capped page with has_more, got %d has_more=%v", len(res.Items), res.HasMore)
	}
}

func TestFeedService_RecentFeedUsesOwnDefaultWindow(t *testing.T) {
	videos := newMockVideoRepo()
	svc := newTestFeedService(t, videos, newMockTasteRepo(), false, 3)
	if _, err := svc.RecentFeed(context.Background(), FeedQuery{Borough: domain.BoroughQueens}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := testNow.Add(-DefaultRecentFeedSinceHours * time.Hour); !videos.lastRecent.Since.Equal(want) {
		t.Fatalf("expected since %v, got %v", want, videos.lastRecent.Since)
	}

	if _, err := svc.GetFeed(context.Background(), FeedQuery{Borough: domain.BoroughQueens}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := testNow.Add(-DefaultFeedSinceHours * time.Hour); !videos.lastRecent.Since.Equal(want) {
		t.Fatalf("expected since %v, got %v", want, videos.lastRecent.Since)
	}
}
