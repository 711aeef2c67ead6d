package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/domain/repositories"
)

// pendingActionRepository implements the PendingActionRepository interface
type pendingActionRepository struct {
	db *gorm.DB
}

// NewPendingActionRepository creates a new pending action repository
func NewPendingActionRepository(db *gorm.DB) repositories.PendingActionRepository {
	return &pendingActionRepository{db: db}
}

// Create creates a new pending action
func (r *pendingActionRepository) Create(ctx context.Context, action *entities.PendingAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

// CreateIfExecutionAbsent inserts the action unless its execution id is
// already present. ON CONFLICT DO NOTHING against the unique index makes the
// check-and-insert atomic; RowsAffected == 0 means the id was taken.
func (r *pendingActionRepository) CreateIfExecutionAbsent(ctx context.Context, action *entities.PendingAction) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_execution_id"}},
			DoNothing: true,
		}).
		Create(action)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByID retrieves a pending action by its ID
func (r *pendingActionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.PendingAction, error) {
	var action entities.PendingAction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&action).Error

	if err != nil {
		return nil, err
	}
	return &action, nil
}

// FindByMeeting retrieves all pending actions of one meeting
func (r *pendingActionRepository) FindByMeeting(ctx context.Context, meetingID string) ([]*entities.PendingAction, error) {
	var actions []*entities.PendingAction
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at DESC").
		Find(&actions).Error

	if err != nil {
		return nil, err
	}
	return actions, nil
}

// List retrieves pending actions with filters and pagination
func (r *pendingActionRepository) List(ctx context.Context, filters repositories.PendingActionFilters) ([]*entities.PendingAction, int64, error) {
	var actions []*entities.PendingAction
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.PendingAction{})

	if filters.MeetingID != "" {
		query = query.Where("meeting_id = ?", filters.MeetingID)
	}
	if filters.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filters.OrganizationID)
	}
	if filters.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filters.AssigneeID)
	}
	if len(filters.Statuses) > 0 {
		query = query.Where("status IN ?", filters.Statuses)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&actions).Error

	if err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}

// Update updates an existing pending action
func (r *pendingActionRepository) Update(ctx context.Context, action *entities.PendingAction) error {
	return r.db.WithContext(ctx).Save(action).Error
}

// TransitionStatus atomically moves the action to next only when its current
// status is one of from. The guarded UPDATE is the critical section; a zero
// row count with the row still present means the precondition failed.
func (r *pendingActionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.ActionStatus, next entities.ActionStatus, mutate func(*entities.PendingAction)) (*entities.PendingAction, error) {
	var updated entities.PendingAction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.PendingAction{}).
			Where("id = ? AND status IN ?", id, from).
			Update("status", next)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Distinguish a missing row from a precondition failure.
			var exists int64
			if err := tx.Model(&entities.PendingAction{}).Where("id = ?", id).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return gorm.ErrRecordNotFound
			}
			return entities.ErrInvalidTransition
		}

		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return err
		}
		if mutate != nil {
			mutate(&updated)
			if err := tx.Save(&updated).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a pending action
func (r *pendingActionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.PendingAction{}, "id = ?", id).Error
}

// CountByStatus returns the per-status breakdown for one user's actions.
// userID 0 counts across all users.
func (r *pendingActionRepository) CountByStatus(ctx context.Context, userID int64) (repositories.StatusCounts, error) {
	type row struct {
		Status entities.ActionStatus
		N      int64
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Model(&entities.PendingAction{}).
		Select("status, COUNT(*) AS n").
		Group("status")
	if userID != 0 {
		query = query.Where("assignee_id = ? OR reporter_id = ?", userID, userID)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(repositories.StatusCounts, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}

// CountOverdue counts open actions whose due date has passed.
func (r *pendingActionRepository) CountOverdue(ctx context.Context, userID int64) (int64, error) {
	var n int64
	query := r.db.WithContext(ctx).
		Model(&entities.PendingAction{}).
		Where("due_date IS NOT NULL AND due_date < NOW()").
		Where("status NOT IN ?", []entities.ActionStatus{
			entities.ActionStatusRejected,
			entities.ActionStatusComplete,
			entities.ActionStatusCancelled,
		})
	if userID != 0 {
		query = query.Where("assignee_id = ? OR reporter_id = ?", userID, userID)
	}
	if err := query.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
