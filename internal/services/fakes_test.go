package services

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memUsers struct {
	users map[uint]models.User
}

func newMemUsers(names ...string) *memUsers {
	m := &memUsers{users: map[uint]models.User{}}
	for i, n := range names {
		id := uint(i + 1)
		m.users[id] = models.User{ID: id, Username: n, Name: n}
	}
	return m
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	u.ID = uint(len(m.users) + 1)
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) GetUsersByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) find(match func(models.User) bool) (*models.User, error) {
	for _, u := range m.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Email == email })
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Username == username })
}

func (m *memUsers) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == uid })
}

func (m *memUsers) UpdateUser(_ context.Context, u *models.User) error {
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) DeleteUser(_ context.Context, id uint) error {
	delete(m.users, id)
	return nil
}

func (m *memUsers) SearchUsers(context.Context, string, int) ([]models.User, error) {
	return nil, nil
}

type memFriends struct {
	mu       sync.Mutex
	nextID   uint
	requests map[uint]*models.FriendRequest
	edges    map[[2]uint]bool
}

func newMemFriends() *memFriends {
	return &memFriends{requests: map[uint]*models.FriendRequest{}, edges: map[[2]uint]bool{}}
}

func (m *memFriends) connect(a, b uint) {
	m.edges[[2]uint{a, b}] = true
	m.edges[[2]uint{b, a}] = true
}

func (m *memFriends) OpenRequest(_ context.Context, from, to uint) (*models.FriendRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.FromID == from && r.ToID == to {
			if r.Status == models.RequestPending {
				return nil, models.ErrDuplicateRequest
			}
			r.Status = models.RequestPending
			cp := *r
			return &cp, nil
		}
	}
	m.nextID++
	r := &models.FriendRequest{ID: m.nextID, FromID: from, ToID: to, Status: models.RequestPending, CreatedAt: time.Now()}
	m.requests[r.ID] = r
	cp := *r
	return &cp, nil
}

func (m *memFriends) GetRequestByID(_ context.Context, id uint) (*models.FriendRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, models.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memFriends) GetPendingRequest(_ context.Context, from, to uint) (*models.FriendRequest, error) {
	for _, r := range m.requests {
		if r.FromID == from && r.ToID == to && r.Status == models.RequestPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, models.ErrRequestNotFound
}

func (m *memFriends) ListPendingFor(_ context.Context, to uint) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, r := range m.requests {
		if r.ToID == to && r.Status == models.RequestPending {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memFriends) AcceptRequest(_ context.Context, req *models.FriendRequest) error {
	r, ok := m.requests[req.ID]
	if !ok || r.Status != models.RequestPending {
		return models.ErrRequestNotFound
	}
	r.Status = models.RequestAccepted
	for _, other := range m.requests {
		if other.FromID == req.ToID && other.ToID == req.FromID && other.Status == models.RequestPending {
			other.Status = models.RequestAccepted
		}
	}
	m.connect(req.FromID, req.ToID)
	return nil
}

func (m *memFriends) DeclineRequest(_ context.Context, req *models.FriendRequest) error {
	r, ok := m.requests[req.ID]
	if !ok || r.Status != models.RequestPending {
		return models.ErrRequestNotFound
	}
	r.Status = models.RequestDeclined
	return nil
}

func (m *memFriends) AreFriends(_ context.Context, a, b uint) (bool, error) {
	return m.edges[[2]uint{a, b}], nil
}

func (m *memFriends) FriendIDs(_ context.Context, userID uint) ([]uint, error) {
	var ids []uint
	for k := range m.edges {
		if k[0] == userID {
			ids = append(ids, k[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memFriends) RemoveFriend(_ context.Context, a, b uint) error {
	if !m.edges[[2]uint{a, b}] || !m.edges[[2]uint{b, a}] {
		return models.ErrNotFriends
	}
	delete(m.edges, [2]uint{a, b})
	delete(m.edges, [2]uint{b, a})
	return nil
}

type memNotifications struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]models.Notification
}

func newMemNotifications() *memNotifications {
	return &memNotifications{items: map[uint]models.Notification{}}
}

func (m *memNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	n.ID = m.nextID
	m.items[n.ID] = *n
	return nil
}

func (m *memNotifications) GetByID(_ context.Context, id uint) (*models.Notification, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, models.ErrNotificationNotFound
	}
	return &n, nil
}

func (m *memNotifications) GetByRequestID(_ context.Context, requestID uint) (*models.Notification, error) {
	for _, n := range m.items {
		if n.RequestID != nil && *n.RequestID == requestID && n.Type == models.NotificationFriendRequest {
			n := n
			return &n, nil
		}
	}
	return nil, models.ErrNotificationNotFound
}

func (m *memNotifications) GetByRecipientID(_ context.Context, to uint, page, limit int) ([]models.Notification, int64, error) {
	all := m.to(to)
	total := int64(len(all))
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memNotifications) GetGrouped(_ context.Context, to uint, _ time.Time) ([]models.Notification, []models.Notification, []models.Notification, []models.Notification, error) {
	return m.to(to), nil, nil, nil, nil
}

func (m *memNotifications) GetUnreadCount(_ context.Context, to uint) (int64, error) {
	var n int64
	for _, it := range m.items {
		if it.ToID == to && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) MarkAsRead(_ context.Context, id, to uint) error {
	n, ok := m.items[id]
	if !ok || n.ToID != to {
		return models.ErrNotificationNotFound
	}
	n.IsRead = true
	m.items[id] = n
	return nil
}

func (m *memNotifications) MarkAllAsRead(_ context.Context, to uint) error {
	for id, n := range m.items {
		if n.ToID == to {
			n.IsRead = true
			m.items[id] = n
		}
	}
	return nil
}

func (m *memNotifications) Delete(_ context.Context, id uint) error {
	if _, ok := m.items[id]; !ok {
		return models.ErrNotificationNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memNotifications) DeleteByRequestIDs(_ context.Context, ids []uint) error {
	for id, n := range m.items {
		if n.RequestID == nil || n.Type != models.NotificationFriendRequest {
			continue
		}
		for _, rid := range ids {
			if *n.RequestID == rid {
				delete(m.items, id)
			}
		}
	}
	return nil
}

func (m *memNotifications) to(to uint) []models.Notification {
	var out []models.Notification
	for _, n := range m.items {
		if n.ToID == to {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// find returns notifications matching type, sender and recipient.
func (m *memNotifications) find(typ models.NotificationType, from, to uint) []models.Notification {
	var out []models.Notification
	for _, n := range m.items {
		if n.Type == typ && n.FromID == from && n.ToID == to {
			out = append(out, n)
		}
	}
	return out
}

type memActivity struct {
	mu           sync.Mutex
	active       map[[2]uint]*models.ActiveFriend
	contributors map[[2]uint]*models.Contributor
	batches      int
	fail         error
}

func newMemActivity() *memActivity {
	return &memActivity{active: map[[2]uint]*models.ActiveFriend{}, contributors: map[[2]uint]*models.Contributor{}}
}

func addClamped(v *int64, delta int64) {
	*v += delta
	if *v < 0 {
		*v = 0
	}
}

func (m *memActivity) AdjustInteraction(_ context.Context, owner, actor uint, field models.InteractionField, delta int64) error {
	if m.fail != nil {
		return m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.active[[2]uint{owner, actor}]
	if !ok {
		row = &models.ActiveFriend{UserID: owner, FriendID: actor}
		m.active[[2]uint{owner, actor}] = row
	}
	switch field {
	case models.FieldLikeCount:
		addClamped(&row.LikeCount, delta)
	case models.FieldCommentCount:
		addClamped(&row.CommentCount, delta)
	case models.FieldDislikeCount:
		addClamped(&row.DislikeCount, delta)
	}
	return nil
}

func (m *memActivity) AdjustContributions(_ context.Context, author uint, users []uint, field models.ContributionField, delta int64) error {
	if m.fail != nil {
		return m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	for _, u := range users {
		row, ok := m.contributors[[2]uint{u, author}]
		if !ok {
			row = &models.Contributor{UserID: u, FriendID: author}
			m.contributors[[2]uint{u, author}] = row
		}
		if field == models.FieldSharedPostCount {
			addClamped(&row.SharedPostCount, delta)
		} else {
			addClamped(&row.SharedStoryCount, delta)
		}
	}
	return nil
}

func (m *memActivity) ActiveFriends(_ context.Context, user uint, friends []uint) ([]models.ActiveFriend, error) {
	var out []models.ActiveFriend
	for _, f := range friends {
		if row, ok := m.active[[2]uint{user, f}]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memActivity) Contributors(_ context.Context, user uint, friends []uint) ([]models.Contributor, error) {
	var out []models.Contributor
	for _, f := range friends {
		if row, ok := m.contributors[[2]uint{user, f}]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memActivity) activeRow(owner, actor uint) models.ActiveFriend {
	if row, ok := m.active[[2]uint{owner, actor}]; ok {
		return *row
	}
	return models.ActiveFriend{UserID: owner, FriendID: actor}
}

func (m *memActivity) contributorRow(user, author uint) models.Contributor {
	if row, ok := m.contributors[[2]uint{user, author}]; ok {
		return *row
	}
	return models.Contributor{UserID: user, FriendID: author}
}

func cloneReactions(r models.Reactions) models.Reactions {
	return models.Reactions{
		Likes:    append([]models.Reaction(nil), r.Likes...),
		Dislikes: append([]models.Reaction(nil), r.Dislikes...),
	}
}

type memPosts struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]models.Post
}

func newMemPosts() *memPosts { return &memPosts{posts: map[primitive.ObjectID]models.Post{}} }

func clonePost(p models.Post) models.Post {
	p.Reactions = cloneReactions(p.Reactions)
	p.CommentIDs = append([]primitive.ObjectID(nil), p.CommentIDs...)
	return p
}

func (m *memPosts) CreatePost(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	if p.Privacy == "" {
		p.Privacy = models.PrivacyPublic
	}
	m.posts[p.ID] = clonePost(*p)
	return nil
}

func (m *memPosts) get(id string) (models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Post{}, models.ErrPostNotFound
	}
	p, ok := m.posts[oid]
	if !ok {
		return models.Post{}, models.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (m *memPosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *memPosts) GetPostsByUserID(_ context.Context, userID uint, privacies []models.Privacy, skip, limit int64) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for _, p := range m.posts {
		if p.UserID == userID && hasPrivacy(privacies, p.Privacy) {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0 })
	if skip >= int64(len(out)) {
		return nil, nil
	}
	out = out[skip:]
	if limit > 0 && limit < int64(len(out)) {
		out = out[:limit]
	}
	return out, nil
}

func hasPrivacy(privacies []models.Privacy, p models.Privacy) bool {
	for _, q := range privacies {
		if q == p {
			return true
		}
	}
	return false
}

func (m *memPosts) GetFeed(_ context.Context, viewer uint, friends []uint, _, _ int64) ([]models.Post, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	isFriend := map[uint]bool{}
	for _, f := range friends {
		isFriend[f] = true
	}
	var out []models.Post
	for _, p := range m.posts {
		if hasPrivacy(models.VisiblePrivacies(p.UserID, viewer, isFriend[p.UserID]), p.Privacy) {
			out = append(out, clonePost(p))
		}
	}
	return out, int64(len(out)), nil
}

func (m *memPosts) CountByUsers(_ context.Context, ids []uint) (map[uint]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[uint]int64{}
	for _, p := range m.posts {
		for _, id := range ids {
			if p.UserID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (m *memPosts) ToggleReaction(_ context.Context, id string, kind models.ReactionKind, userID uint, now time.Time) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(id)
	if err != nil {
		return nil, err
	}
	p.Toggle(kind, userID, now)
	m.posts[p.ID] = clonePost(p)
	return &p, nil
}

func (m *memPosts) AddCommentRef(_ context.Context, postID, commentID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return models.ErrPostNotFound
	}
	p.CommentIDs = append(append([]primitive.ObjectID(nil), p.CommentIDs...), commentID)
	m.posts[postID] = p
	return nil
}

func (m *memPosts) RemoveCommentRef(_ context.Context, postID, commentID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil
	}
	var kept []primitive.ObjectID
	for _, id := range p.CommentIDs {
		if id != commentID {
			kept = append(kept, id)
		}
	}
	p.CommentIDs = kept
	m.posts[postID] = p
	return nil
}

func (m *memPosts) DeletePost(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(id)
	if err != nil {
		return err
	}
	delete(m.posts, p.ID)
	return nil
}

type memStories struct {
	mu      sync.Mutex
	stories map[primitive.ObjectID]models.Story
}

func newMemStories() *memStories { return &memStories{stories: map[primitive.ObjectID]models.Story{}} }

func (m *memStories) CreateStory(_ context.Context, s *models.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = primitive.NewObjectID()
	s.CreatedAt = time.Now()
	s.ExpiresAt = s.CreatedAt.Add(models.StoryLifetime)
	if s.Visibility == "" {
		s.Visibility = models.PrivacyFriends
	}
	m.stories[s.ID] = *s
	return nil
}

func (m *memStories) get(id string) (models.Story, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Story{}, models.ErrStoryNotFound
	}
	s, ok := m.stories[oid]
	if !ok {
		return models.Story{}, models.ErrStoryNotFound
	}
	s.Reactions = cloneReactions(s.Reactions)
	return s, nil
}

func (m *memStories) GetStoryByID(_ context.Context, id string) (*models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memStories) GetActiveStories(_ context.Context, viewer uint, friends []uint, now time.Time) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	isFriend := map[uint]bool{}
	for _, f := range friends {
		isFriend[f] = true
	}
	var out []models.Story
	for _, s := range m.stories {
		if !s.ExpiresAt.After(now) {
			continue
		}
		if s.UserID == viewer || s.Visibility == models.PrivacyPublic ||
			(s.Visibility == models.PrivacyFriends && isFriend[s.UserID]) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStories) GetActiveStoriesByUser(_ context.Context, userID uint, privacies []models.Privacy, now time.Time) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Story
	for _, s := range m.stories {
		if s.UserID == userID && s.ExpiresAt.After(now) && hasPrivacy(privacies, s.Visibility) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStories) CountByUsers(_ context.Context, ids []uint) (map[uint]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[uint]int64{}
	for _, s := range m.stories {
		for _, id := range ids {
			if s.UserID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (m *memStories) ToggleReaction(_ context.Context, id string, kind models.ReactionKind, userID uint, now time.Time) (*models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	if !s.ExpiresAt.After(now) {
		return nil, models.ErrStoryNotFound
	}
	s.Toggle(kind, userID, now)
	stored := s
	stored.Reactions = cloneReactions(s.Reactions)
	m.stories[s.ID] = stored
	return &s, nil
}

func (m *memStories) DeleteStory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(id)
	if err != nil {
		return err
	}
	delete(m.stories, s.ID)
	return nil
}

type memComments struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]models.Comment
}

func newMemComments() *memComments {
	return &memComments{comments: map[primitive.ObjectID]models.Comment{}}
}

func cloneComment(c models.Comment) models.Comment {
	c.Reactions = cloneReactions(c.Reactions)
	replies := make([]models.Reply, len(c.Replies))
	for i, r := range c.Replies {
		r.Reactions = cloneReactions(r.Reactions)
		replies[i] = r
	}
	c.Replies = replies
	return c
}

func (m *memComments) CreateComment(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	m.comments[c.ID] = cloneComment(*c)
	return nil
}

func (m *memComments) get(id string) (models.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Comment{}, models.ErrCommentNotFound
	}
	c, ok := m.comments[oid]
	if !ok {
		return models.Comment{}, models.ErrCommentNotFound
	}
	return cloneComment(c), nil
}

func (m *memComments) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *memComments) GetCommentsByPostID(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, cloneComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memComments) ToggleReaction(_ context.Context, id string, kind models.ReactionKind, userID uint, now time.Time) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(id)
	if err != nil {
		return nil, err
	}
	c.Toggle(kind, userID, now)
	m.comments[c.ID] = cloneComment(c)
	return &c, nil
}

func (m *memComments) ToggleReplyReaction(_ context.Context, id string, replyID primitive.ObjectID, kind models.ReactionKind, userID uint, now time.Time) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(id)
	if err != nil {
		return nil, err
	}
	reply, err := c.Reply(replyID)
	if err != nil {
		return nil, err
	}
	reply.Toggle(kind, userID, now)
	m.comments[c.ID] = cloneComment(c)
	return &c, nil
}

func (m *memComments) AddReply(_ context.Context, id string, reply models.Reply) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(id)
	if err != nil {
		return nil, err
	}
	c.Replies = append(c.Replies, reply)
	m.comments[c.ID] = cloneComment(c)
	return &c, nil
}

func (m *memComments) RemoveReply(_ context.Context, id string, replyID primitive.ObjectID, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(id)
	if err != nil {
		return err
	}
	if _, err := c.RemoveReply(replyID, userID); err != nil {
		return err
	}
	m.comments[c.ID] = cloneComment(c)
	return nil
}

func (m *memComments) DeleteComment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(id)
	if err != nil {
		return err
	}
	delete(m.comments, c.ID)
	return nil
}

func (m *memComments) DeleteByPostID(_ context.Context, postID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, c := range m.comments {
		if c.PostID == postID {
			delete(m.comments, id)
			n++
		}
	}
	return n, nil
}

// world wires every service over in-memory stores.
type world struct {
	users         *memUsers
	friends       *memFriends
	notifications *memNotifications
	activity      *memActivity
	posts         *memPosts
	stories       *memStories
	comments      *memComments

	relationships *RelationshipService
	content       *ContentService
	ranking       *RankingService
	feed          *NotificationService
}

func newWorld(names ...string) *world {
	w := &world{
		users:         newMemUsers(names...),
		friends:       newMemFriends(),
		notifications: newMemNotifications(),
		activity:      newMemActivity(),
		posts:         newMemPosts(),
		stories:       newMemStories(),
		comments:      newMemComments(),
	}
	logger := zap.NewNop()
	notifier := NewNotifier(w.notifications, nil, nil, logger)
	recorder := NewActivityRecorder(w.activity, w.friends, logger)
	w.relationships = NewRelationshipService(w.users, w.friends, w.notifications, notifier, logger)
	w.content = NewContentService(w.users, w.friends, w.posts, w.stories, w.comments, recorder, notifier, logger)
	w.ranking = NewRankingService(w.users, w.friends, w.activity, w.posts, w.stories)
	w.feed = NewNotificationService(w.notifications, w.users)
	return w
}
