package repository

import (
	"context"
	"strings"

	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const requestOwnerColumns = "requests.*, users.name AS owner_name, COALESCE(users.user_id, requests.user_id) AS owner_id"

type RequestRepository interface {
	WithTx(tx *gorm.DB) RequestRepository
	Create(ctx context.Context, request *model.Request) error
	FindByID(ctx context.Context, id model.InternalID) (*model.Request, error)
	// FindByIDForUpdate loads the request and holds a row lock until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id model.InternalID) (*model.Request, error)
	FindByUser(ctx context.Context, userID model.ExternalID) ([]*model.Request, error)
	// FindAllWithOwner lists requests newest first joined with their owners. An empty
	// status lists every request.
	FindAllWithOwner(ctx context.Context, status model.RequestStatus) ([]*model.RequestWithOwner, error)
	// FindWithOwnerByIDs keeps the order of ids.
	FindWithOwnerByIDs(ctx context.Context, ids []model.InternalID) ([]*model.RequestWithOwner, error)
	SearchWithOwner(ctx context.Context, query string, limit int) ([]*model.RequestWithOwner, error)
	Save(ctx context.Context, request *model.Request) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) WithTx(tx *gorm.DB) RequestRepository {
	return &requestRepository{db: tx}
}

func (r *requestRepository) Create(ctx context.Context, request *model.Request) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id model.InternalID) (*model.Request, error) {
	var request model.Request
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id model.InternalID) (*model.Request, error) {
	query := r.db.WithContext(ctx)
	if database.IsPostgres(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var request model.Request
	if err := query.First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) FindByUser(ctx context.Context, userID model.ExternalID) ([]*model.Request, error) {
	var requests []*model.Request
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Request{}).
		Select(requestOwnerColumns).
		Joins("LEFT JOIN users ON users.user_id = requests.user_id")
}

func (r *requestRepository) FindAllWithOwner(ctx context.Context, status model.RequestStatus) ([]*model.RequestWithOwner, error) {
	query := r.withOwner(ctx)
	if status != "" {
		query = query.Where("requests.status = ?", status)
	}

	var rows []*model.RequestWithOwner
	if err := query.Order("requests.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *requestRepository) FindWithOwnerByIDs(ctx context.Context, ids []model.InternalID) ([]*model.RequestWithOwner, error) {
	if len(ids) == 0 {
		return []*model.RequestWithOwner{}, nil
	}

	var rows []*model.RequestWithOwner
	if err := r.withOwner(ctx).
		Where("requests.id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	// Reorder rows to match the order of ids
	rowMap := make(map[model.InternalID]*model.RequestWithOwner, len(rows))
	for _, row := range rows {
		rowMap[row.ID] = row
	}

	ordered := make([]*model.RequestWithOwner, 0, len(ids))
	for _, id := range ids {
		if row, ok := rowMap[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *requestRepository) SearchWithOwner(ctx context.Context, query string, limit int) ([]*model.RequestWithOwner, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"

	var rows []*model.RequestWithOwner
	if err := r.withOwner(ctx).
		Where(`LOWER(requests.text) LIKE ? ESCAPE '\' OR LOWER(requests.type) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("requests.id DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *requestRepository) Save(ctx context.Context, request *model.Request) error {
	return r.db.WithContext(ctx).Save(request).Error
}
