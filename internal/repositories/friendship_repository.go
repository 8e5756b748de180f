package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendshipRepository stores friend requests and the two halves of each
// friend edge.
type FriendshipRepository interface {
	OpenRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error)
	GetRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	GetPendingRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error)
	ListPendingFor(ctx context.Context, toID uint) ([]models.FriendRequest, error)
	AcceptRequest(ctx context.Context, req *models.FriendRequest) error
	DeclineRequest(ctx context.Context, req *models.FriendRequest) error
	AreFriends(ctx context.Context, a, b uint) (bool, error)
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
	RemoveFriend(ctx context.Context, a, b uint) error
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// OpenRequest moves the (from, to) pair to pending. The row is created on
// first use and re-opened after a decline or an unfriend. A pair that is
// already pending yields ErrDuplicateRequest.
func (r *PostgresFriendshipRepository) OpenRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error) {
	now := time.Now()
	req := &models.FriendRequest{FromID: fromID, ToID: toID, Status: models.RequestPending, CreatedAt: now}
	res := r.db.WithContext(ctx).Clauses(reopenRequest(now)).Create(req)
	if res.Error != nil {
		return nil, res.Error
	}
	if err := requestOpened(res.RowsAffected); err != nil {
		return nil, err
	}
	return req, nil
}

// reopenRequest resets a resolved row of the pair to pending. A row that is
// still pending fails the WHERE and the statement affects no rows.
func reopenRequest(now time.Time) clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "from_id"}, {Name: "to_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       models.RequestPending,
			"created_at":   now,
			"responded_at": nil,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Neq{Column: clause.Column{Table: "friend_requests", Name: "status"}, Value: models.RequestPending},
		}},
	}
}

func requestOpened(rowsAffected int64) error {
	if rowsAffected == 0 {
		return models.ErrDuplicateRequest
	}
	return nil
}

func (r *PostgresFriendshipRepository) GetRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, requestErr(err)
	}
	return &req, nil
}

func (r *PostgresFriendshipRepository) GetPendingRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("from_id = ? AND to_id = ? AND status = ?", fromID, toID, models.RequestPending).
		First(&req).Error
	if err != nil {
		return nil, requestErr(err)
	}
	return &req, nil
}

// ListPendingFor returns inbound pending requests, oldest first.
func (r *PostgresFriendshipRepository) ListPendingFor(ctx context.Context, toID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("to_id = ? AND status = ?", toID, models.RequestPending).
		Order("created_at ASC, id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// AcceptRequest resolves the request, any pending request in the opposite
// direction, and writes both halves of the friend edge in one transaction.
func (r *PostgresFriendshipRepository) AcceptRequest(ctx context.Context, req *models.FriendRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		resolved := map[string]interface{}{"status": models.RequestAccepted, "responded_at": now}

		res := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", req.ID, models.RequestPending).
			Updates(resolved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrRequestNotFound
		}

		if err := tx.Model(&models.FriendRequest{}).
			Where("from_id = ? AND to_id = ? AND status = ?", req.ToID, req.FromID, models.RequestPending).
			Updates(resolved).Error; err != nil {
			return err
		}

		edges := []models.Friendship{
			{UserID: req.FromID, FriendID: req.ToID, CreatedAt: now},
			{UserID: req.ToID, FriendID: req.FromID, CreatedAt: now},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error
	})
}

func (r *PostgresFriendshipRepository) DeclineRequest(ctx context.Context, req *models.FriendRequest) error {
	res := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", req.ID, models.RequestPending).
		Updates(map[string]interface{}{"status": models.RequestDeclined, "responded_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrRequestNotFound
	}
	return nil
}

func (r *PostgresFriendshipRepository) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

// FriendIDs returns userID's friends ordered by id.
func (r *PostgresFriendshipRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id = ?", userID).
		Order("friend_id ASC").
		Pluck("friend_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// RemoveFriend deletes both halves of the edge. If either half is
// missing nothing is deleted and ErrNotFriends is returned.
func (r *PostgresFriendshipRepository) RemoveFriend(ctx context.Context, a, b uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Scopes(edgeHalves(a, b)).Delete(&models.Friendship{})
		if res.Error != nil {
			return res.Error
		}
		return edgeRemoved(res.RowsAffected)
	})
}

// edgeHalves selects both directed halves of the a-b edge.
func edgeHalves(a, b uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a)
	}
}

// edgeRemoved fails, rolling the delete back, unless both halves went.
func edgeRemoved(rowsAffected int64) error {
	if rowsAffected != 2 {
		return models.ErrNotFriends
	}
	return nil
}

func requestErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrRequestNotFound
	}
	return err
}
