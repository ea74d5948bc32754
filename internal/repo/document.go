package repo

import (
	"context"

	"ProductManager/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository stores collection documents.
type DocumentRepository interface {
	// Create inserts a new document.
	Create(ctx context.Context, doc *model.Document) error

	// Upsert replaces the document with the same collection and ID or inserts it.
	Upsert(ctx context.Context, doc *model.Document) error

	// GetByID returns gorm.ErrRecordNotFound when the document does not exist.
	GetByID(ctx context.Context, collection, id string) (*model.Document, error)

	// Delete removes a document; removing an absent one is not an error.
	Delete(ctx context.Context, collection, id string) error

	// ListByOwner returns all documents of a collection owned by ownerID, oldest first.
	ListByOwner(ctx context.Context, collection, ownerID string) ([]model.Document, error)
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepository creates the gorm-backed DocumentRepository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepo) Upsert(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_id", "data", "updated_at"}),
	}).Create(doc).Error
}

func (r *documentRepo) GetByID(ctx context.Context, collection, id string) (*model.Document, error) {
	var d model.Document
	err := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) Delete(ctx context.Context, collection, id string) error {
	return r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&model.Document{}).Error
}

func (r *documentRepo) ListByOwner(ctx context.Context, collection, ownerID string) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("collection = ? AND owner_id = ?", collection, ownerID).
		Order("created_at ASC, id ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
