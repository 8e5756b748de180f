package services

import (
	"context"
	"sort"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
)

const (
	rankingLimit    = 3
	suggestionLimit = 9
)

// RankingService derives rankings from the activity counters and the
// friend graph. Equal scores are ordered by the individual counters and
// then by ascending user id, so results are deterministic.
type RankingService struct {
	users    repositories.UserRepository
	friends  repositories.FriendshipRepository
	activity repositories.ActivityRepository
	posts    repositories.PostRepository
	stories  repositories.StoryRepository
}

func NewRankingService(
	users repositories.UserRepository,
	friends repositories.FriendshipRepository,
	activity repositories.ActivityRepository,
	posts repositories.PostRepository,
	stories repositories.StoryRepository,
) *RankingService {
	return &RankingService{users: users, friends: friends, activity: activity, posts: posts, stories: stories}
}

// TopContributors ranks userID's friends by posts plus stories shared.
// Friends without a Contributor row fall back to live content counts.
// query filters the ranked list by username before it is cut.
func (s *RankingService) TopContributors(ctx context.Context, userID uint, query string) ([]models.RankedContributor, error) {
	friendIDs, err := s.friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.activity.Contributors(ctx, userID, friendIDs)
	if err != nil {
		return nil, err
	}
	byFriend := make(map[uint]models.Contributor, len(rows))
	for _, r := range rows {
		byFriend[r.FriendID] = r
	}

	var missing []uint
	for _, id := range friendIDs {
		if _, ok := byFriend[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		postCounts, err := s.posts.CountByUsers(ctx, missing)
		if err != nil {
			return nil, err
		}
		storyCounts, err := s.stories.CountByUsers(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, id := range missing {
			byFriend[id] = models.Contributor{
				UserID:           userID,
				FriendID:         id,
				SharedPostCount:  postCounts[id],
				SharedStoryCount: storyCounts[id],
			}
		}
	}

	users, err := compactUsers(ctx, s.users, friendIDs)
	if err != nil {
		return nil, err
	}
	ranked := make([]models.RankedContributor, 0, len(friendIDs))
	for _, id := range friendIDs {
		u, ok := users[id]
		if !ok {
			continue
		}
		c := byFriend[id]
		ranked = append(ranked, models.RankedContributor{
			UserCompact:      u,
			SharedPostCount:  c.SharedPostCount,
			SharedStoryCount: c.SharedStoryCount,
			Total:            c.Total(),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.SharedPostCount != b.SharedPostCount {
			return a.SharedPostCount > b.SharedPostCount
		}
		return a.ID < b.ID
	})

	ranked = filterByUsername(ranked, query, func(r models.RankedContributor) string { return r.Username })
	return firstN(ranked, rankingLimit), nil
}

// ActiveFriends returns the top friends by interactions on userID's content.
func (s *RankingService) ActiveFriends(ctx context.Context, userID uint, query string) ([]models.RankedActiveFriend, error) {
	ranked, err := s.rankActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	ranked = filterByUsername(ranked, query, func(r models.RankedActiveFriend) string { return r.Username })
	return firstN(ranked, rankingLimit), nil
}

// SearchFriends returns every friend matching query, in activity order.
func (s *RankingService) SearchFriends(ctx context.Context, userID uint, query string) ([]models.RankedActiveFriend, error) {
	ranked, err := s.rankActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterByUsername(ranked, query, func(r models.RankedActiveFriend) string { return r.Username }), nil
}

// Suggestions proposes the most active friends of userID's top active
// friends, skipping userID and anyone already a friend.
func (s *RankingService) Suggestions(ctx context.Context, userID uint, query string) ([]models.UserCompact, error) {
	top, err := s.rankActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	top = firstN(top, rankingLimit)

	friendIDs, err := s.friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	excluded := map[uint]struct{}{userID: {}}
	for _, id := range friendIDs {
		excluded[id] = struct{}{}
	}

	out := []models.UserCompact{}
	for _, friend := range top {
		theirs, err := s.rankActive(ctx, friend.ID)
		if err != nil {
			return nil, err
		}
		taken := 0
		for _, candidate := range theirs {
			if taken == rankingLimit {
				break
			}
			if _, skip := excluded[candidate.ID]; skip {
				continue
			}
			excluded[candidate.ID] = struct{}{}
			out = append(out, candidate.UserCompact)
			taken++
		}
	}

	out = filterByUsername(out, query, func(u models.UserCompact) string { return u.Username })
	return firstN(out, suggestionLimit), nil
}

// rankActive ranks every friend of userID; friends without an
// ActiveFriend row count as zero activity.
func (s *RankingService) rankActive(ctx context.Context, userID uint) ([]models.RankedActiveFriend, error) {
	friendIDs, err := s.friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.activity.ActiveFriends(ctx, userID, friendIDs)
	if err != nil {
		return nil, err
	}
	byFriend := make(map[uint]models.ActiveFriend, len(rows))
	for _, r := range rows {
		byFriend[r.FriendID] = r
	}
	users, err := compactUsers(ctx, s.users, friendIDs)
	if err != nil {
		return nil, err
	}

	ranked := make([]models.RankedActiveFriend, 0, len(friendIDs))
	for _, id := range friendIDs {
		u, ok := users[id]
		if !ok {
			continue
		}
		a := byFriend[id]
		ranked = append(ranked, models.RankedActiveFriend{
			UserCompact:  u,
			LikeCount:    a.LikeCount,
			CommentCount: a.CommentCount,
			DislikeCount: a.DislikeCount,
			Total:        a.Total(),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch {
		case a.Total != b.Total:
			return a.Total > b.Total
		case a.LikeCount != b.LikeCount:
			return a.LikeCount > b.LikeCount
		case a.CommentCount != b.CommentCount:
			return a.CommentCount > b.CommentCount
		case a.DislikeCount != b.DislikeCount:
			return a.DislikeCount > b.DislikeCount
		}
		return a.ID < b.ID
	})
	return ranked, nil
}

func filterByUsername[T any](items []T, query string, username func(T) string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(username(it)), query) {
			out = append(out, it)
		}
	}
	return out
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
