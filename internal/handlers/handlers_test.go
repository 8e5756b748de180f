package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type stubRelationships struct {
	sendRequest     func(ctx context.Context, requesterID, targetID uint) (*models.FriendRequest, error)
	acceptRequest   func(ctx context.Context, notificationID, accepterID uint) error
	declineRequest  func(ctx context.Context, notificationID, accepterID uint) error
	removeFriend    func(ctx context.Context, userID, friendID uint) error
	listFriends     func(ctx context.Context, userID uint) ([]models.UserCompact, error)
	pendingRequests func(ctx context.Context, userID uint) ([]models.PendingFriendRequest, error)
}

func (s stubRelationships) SendRequest(ctx context.Context, requesterID, targetID uint) (*models.FriendRequest, error) {
	return s.sendRequest(ctx, requesterID, targetID)
}
func (s stubRelationships) AcceptRequest(ctx context.Context, notificationID, accepterID uint) error {
	return s.acceptRequest(ctx, notificationID, accepterID)
}
func (s stubRelationships) DeclineRequest(ctx context.Context, notificationID, accepterID uint) error {
	return s.declineRequest(ctx, notificationID, accepterID)
}
func (s stubRelationships) RemoveFriend(ctx context.Context, userID, friendID uint) error {
	return s.removeFriend(ctx, userID, friendID)
}
func (s stubRelationships) ListFriends(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	return s.listFriends(ctx, userID)
}
func (s stubRelationships) PendingRequests(ctx context.Context, userID uint) ([]models.PendingFriendRequest, error) {
	return s.pendingRequests(ctx, userID)
}

type stubRanking struct {
	activeFriends func(ctx context.Context, userID uint, query string) ([]models.RankedActiveFriend, error)
}

func (s stubRanking) TopContributors(context.Context, uint, string) ([]models.RankedContributor, error) {
	return []models.RankedContributor{}, nil
}
func (s stubRanking) ActiveFriends(ctx context.Context, userID uint, query string) ([]models.RankedActiveFriend, error) {
	return s.activeFriends(ctx, userID, query)
}
func (s stubRanking) SearchFriends(context.Context, uint, string) ([]models.RankedActiveFriend, error) {
	return []models.RankedActiveFriend{}, nil
}
func (s stubRanking) Suggestions(context.Context, uint, string) ([]models.UserCompact, error) {
	return []models.UserCompact{}, nil
}

// stubContent embeds the interface so tests only provide what they call.
type stubContent struct {
	ContentService
	toggleReaction func(ctx context.Context, ref services.ContentRef, userID uint, kind models.ReactionKind) (models.ToggleResult, error)
	deleteContent  func(ctx context.Context, ref services.ContentRef, userID uint) error
	addComment     func(ctx context.Context, postID string, userID uint, content string) (*models.CommentDetail, error)
	fetchReactions func(ctx context.Context, ref services.ContentRef, viewerID uint) (*models.ReactionList, error)
	userStories    func(ctx context.Context, ownerID, viewerID uint) ([]models.StoryView, error)
}

func (s stubContent) ToggleReaction(ctx context.Context, ref services.ContentRef, userID uint, kind models.ReactionKind) (models.ToggleResult, error) {
	return s.toggleReaction(ctx, ref, userID, kind)
}
func (s stubContent) DeleteContent(ctx context.Context, ref services.ContentRef, userID uint) error {
	return s.deleteContent(ctx, ref, userID)
}
func (s stubContent) AddComment(ctx context.Context, postID string, userID uint, content string) (*models.CommentDetail, error) {
	return s.addComment(ctx, postID, userID, content)
}
func (s stubContent) FetchReactions(ctx context.Context, ref services.ContentRef, viewerID uint) (*models.ReactionList, error) {
	return s.fetchReactions(ctx, ref, viewerID)
}
func (s stubContent) UserStories(ctx context.Context, ownerID, viewerID uint) ([]models.StoryView, error) {
	return s.userStories(ctx, ownerID, viewerID)
}

type stubNotifications struct {
	NotificationService
	delete func(ctx context.Context, notificationID, userID uint) error
}

func (s stubNotifications) Delete(ctx context.Context, notificationID, userID uint) error {
	return s.delete(ctx, notificationID, userID)
}

// asUser authenticates every request as userID.
func asUser(userID uint) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != 0 {
				c.Set("user", &models.JwtCustomClaims{UserID: userID})
			}
			return next(c)
		}
	}
}

func newTestServer(userID uint, register func(g *echo.Group)) *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	register(e.Group("/api/v1", asUser(userID)))
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body.Message
}

func TestHTTPErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", models.ErrPostNotFound, http.StatusNotFound, "Post not found"},
		{"forbidden", models.ErrNotOwner, http.StatusForbidden, "You are not allowed to modify this content"},
		{"bad request", models.ErrSelfRequest, http.StatusBadRequest, "You cannot send a friend request to yourself"},
		{"conflict", models.ErrEmailTaken, http.StatusConflict, "User with this email already registered"},
		{"unexpected", errors.New("pq: connection refused"), http.StatusInternalServerError, "Server error"},
		{"http error passes through", echo.NewHTTPError(http.StatusTeapot, "tea"), http.StatusTeapot, "tea"},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			var he *echo.HTTPError
			if !errors.As(httpError(zap.NewNop(), c, tt.err), &he) {
				t.Fatal("expected *echo.HTTPError")
			}
			if he.Code != tt.status || he.Message != tt.message {
				t.Fatalf("got %d %v, want %d %q", he.Code, he.Message, tt.status, tt.message)
			}
		})
	}
}

func TestSendFriendRequest(t *testing.T) {
	var gotFrom, gotTo uint
	rel := stubRelationships{
		sendRequest: func(_ context.Context, from, to uint) (*models.FriendRequest, error) {
			gotFrom, gotTo = from, to
			if from == to {
				return nil, models.ErrSelfRequest
			}
			return &models.FriendRequest{ID: 9, FromID: from, ToID: to, Status: models.RequestPending}, nil
		},
	}
	e := newTestServer(1, NewFriendshipHandler(rel, stubRanking{}, zap.NewNop()).RegisterFriendshipRoutes)

	rec := do(e, http.MethodPost, "/api/v1/friends/request", `{"target_id":2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if gotFrom != 1 || gotTo != 2 {
		t.Fatalf("service called with %d -> %d", gotFrom, gotTo)
	}

	rec = do(e, http.MethodPost, "/api/v1/friends/request", `{"target_id":1}`)
	if rec.Code != http.StatusBadRequest || message(t, rec) != models.ErrSelfRequest.Message {
		t.Fatalf("self request: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/api/v1/friends/request", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing target: %d", rec.Code)
	}
}

func TestFriendRoutesRequireAuthentication(t *testing.T) {
	e := newTestServer(0, NewFriendshipHandler(stubRelationships{}, stubRanking{}, zap.NewNop()).RegisterFriendshipRoutes)
	rec := do(e, http.MethodGet, "/api/v1/friends", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestAcceptFriendRequestErrors(t *testing.T) {
	rel := stubRelationships{
		acceptRequest: func(_ context.Context, notificationID, accepterID uint) error {
			if notificationID != 5 || accepterID != 2 {
				return models.ErrNotificationNotFound
			}
			return nil
		},
	}
	e := newTestServer(2, NewFriendshipHandler(rel, stubRanking{}, zap.NewNop()).RegisterFriendshipRoutes)

	if rec := do(e, http.MethodPost, "/api/v1/friends/requests/5/accept", ""); rec.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rec.Code, rec.Body.String())
	}
	rec := do(e, http.MethodPost, "/api/v1/friends/requests/6/accept", "")
	if rec.Code != http.StatusNotFound || message(t, rec) != "Notification not found" {
		t.Fatalf("unknown notification: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodPost, "/api/v1/friends/requests/abc/accept", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid id: %d", rec.Code)
	}
}

func TestActiveFriendsPassesQuery(t *testing.T) {
	var gotQuery string
	ranking := stubRanking{
		activeFriends: func(_ context.Context, _ uint, q string) ([]models.RankedActiveFriend, error) {
			gotQuery = q
			return []models.RankedActiveFriend{{UserCompact: models.UserCompact{ID: 3, Username: "ann"}, LikeCount: 2, Total: 2}}, nil
		},
	}
	e := newTestServer(1, NewFriendshipHandler(stubRelationships{}, ranking, zap.NewNop()).RegisterFriendshipRoutes)

	rec := do(e, http.MethodGet, "/api/v1/friends/active?q=an", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if gotQuery != "an" {
		t.Fatalf("query %q", gotQuery)
	}
	var list []models.RankedActiveFriend
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 || list[0].Username != "ann" {
		t.Fatalf("body %s", rec.Body.String())
	}
}

func TestToggleRoutesAddressContent(t *testing.T) {
	var refs []services.ContentRef
	var kinds []models.ReactionKind
	content := stubContent{
		toggleReaction: func(_ context.Context, ref services.ContentRef, _ uint, kind models.ReactionKind) (models.ToggleResult, error) {
			refs = append(refs, ref)
			kinds = append(kinds, kind)
			return models.ToggleResult{LikesCount: 1, IsLiked: kind == models.ReactionLike}, nil
		},
	}
	e := newTestServer(1, func(g *echo.Group) {
		NewPostHandler(content, zap.NewNop()).RegisterPostRoutes(g)
		NewCommentHandler(content, zap.NewNop()).RegisterCommentRoutes(g)
		NewStoryHandler(content, zap.NewNop()).RegisterStoryRoutes(g)
	})

	paths := []string{
		"/api/v1/posts/p1/like",
		"/api/v1/stories/s1/dislike",
		"/api/v1/comments/c1/like",
		"/api/v1/comments/c1/replies/r1/dislike",
	}
	for _, p := range paths {
		if rec := do(e, http.MethodPost, p, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", p, rec.Code, rec.Body.String())
		}
	}

	want := []services.ContentRef{
		{Kind: services.KindPost, ID: "p1"},
		{Kind: services.KindStory, ID: "s1"},
		{Kind: services.KindComment, ID: "c1"},
		{Kind: services.KindReply, ID: "c1", ReplyID: "r1"},
	}
	wantKinds := []models.ReactionKind{models.ReactionLike, models.ReactionDislike, models.ReactionLike, models.ReactionDislike}
	for i := range want {
		if refs[i] != want[i] || kinds[i] != wantKinds[i] {
			t.Fatalf("call %d: got %+v %s, want %+v %s", i, refs[i], kinds[i], want[i], wantKinds[i])
		}
	}
}

func TestReactionsListPassesViewer(t *testing.T) {
	content := stubContent{
		fetchReactions: func(_ context.Context, ref services.ContentRef, viewerID uint) (*models.ReactionList, error) {
			if viewerID != 3 {
				return nil, models.ErrPostNotFound
			}
			return &models.ReactionList{Likes: []models.UserCompact{}, Dislikes: []models.UserCompact{}}, nil
		},
	}
	register := NewPostHandler(content, zap.NewNop()).RegisterPostRoutes

	if rec := do(newTestServer(3, register), http.MethodGet, "/api/v1/posts/p1/reactions", ""); rec.Code != http.StatusOK {
		t.Fatalf("visible: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(newTestServer(4, register), http.MethodGet, "/api/v1/posts/p1/reactions", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("hidden: %d", rec.Code)
	}
}

func TestUserStoriesRoute(t *testing.T) {
	var owner, viewer uint
	content := stubContent{
		userStories: func(_ context.Context, ownerID, viewerID uint) ([]models.StoryView, error) {
			owner, viewer = ownerID, viewerID
			return []models.StoryView{}, nil
		},
	}
	e := newTestServer(2, NewStoryHandler(content, zap.NewNop()).RegisterStoryRoutes)

	if rec := do(e, http.MethodGet, "/api/v1/users/9/stories", ""); rec.Code != http.StatusOK {
		t.Fatalf("status %d %s", rec.Code, rec.Body.String())
	}
	if owner != 9 || viewer != 2 {
		t.Fatalf("got owner %d viewer %d", owner, viewer)
	}
	if rec := do(e, http.MethodGet, "/api/v1/users/abc/stories", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", rec.Code)
	}
}

func TestDeleteContentForbidden(t *testing.T) {
	content := stubContent{
		deleteContent: func(_ context.Context, ref services.ContentRef, userID uint) error {
			if userID != 7 {
				return models.ErrNotOwner
			}
			return nil
		},
	}
	register := NewCommentHandler(content, zap.NewNop()).RegisterCommentRoutes

	rec := do(newTestServer(1, register), http.MethodDelete, "/api/v1/comments/c1", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status %d", rec.Code)
	}
	rec = do(newTestServer(7, register), http.MethodDelete, "/api/v1/comments/c1/replies/r1", "")
	if rec.Code != http.StatusOK || message(t, rec) != "Reply deleted" {
		t.Fatalf("status %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateCommentValidatesBody(t *testing.T) {
	called := false
	content := stubContent{
		addComment: func(_ context.Context, postID string, userID uint, body string) (*models.CommentDetail, error) {
			called = true
			return &models.CommentDetail{Comment: models.Comment{UserID: userID, Content: body}}, nil
		},
	}
	e := newTestServer(1, NewCommentHandler(content, zap.NewNop()).RegisterCommentRoutes)

	if rec := do(e, http.MethodPost, "/api/v1/posts/p1/comments", `{"content":""}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty comment: %d", rec.Code)
	}
	if called {
		t.Fatal("service must not be called for an invalid body")
	}
	if rec := do(e, http.MethodPost, "/api/v1/posts/p1/comments", `{"content":"hi"}`); rec.Code != http.StatusCreated {
		t.Fatalf("comment: %d %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteNotificationOfAnotherUser(t *testing.T) {
	notifications := stubNotifications{
		delete: func(context.Context, uint, uint) error {
			return models.NewError(models.ErrForbidden, "You are not allowed to modify this notification")
		},
	}
	e := newTestServer(1, NewNotificationHandler(notifications, zap.NewNop()).RegisterNotificationRoutes)

	rec := do(e, http.MethodDelete, "/api/v1/notifications/4", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestServerErrorsAreHidden(t *testing.T) {
	rel := stubRelationships{
		listFriends: func(context.Context, uint) ([]models.UserCompact, error) {
			return nil, errors.New("dial tcp 10.0.0.1:5432: connection refused")
		},
	}
	e := newTestServer(1, NewFriendshipHandler(rel, stubRanking{}, zap.NewNop()).RegisterFriendshipRoutes)

	rec := do(e, http.MethodGet, "/api/v1/friends", "")
	if rec.Code != http.StatusInternalServerError || message(t, rec) != "Server error" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}
