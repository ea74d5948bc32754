package service

import (
	"ProductManager/internal/model"
	"ProductManager/internal/repo"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrForbidden: the caller may not read or write the requested documents.
	ErrForbidden = errors.New("permission denied")
	// ErrInvalidDocument: the body is not a JSON object.
	ErrInvalidDocument = errors.New("document must be a JSON object")
	// ErrInvalidCollection: the collection name is not allowed.
	ErrInvalidCollection = errors.New("invalid collection name")
	// ErrInvalidFilter: only equality on the owner field is supported.
	ErrInvalidFilter = errors.New("unsupported filter")
)

var collectionRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Filter is an equality filter on a document field.
type Filter struct {
	Field string
	Value string
}

// DocumentSnapshot is a document as delivered to clients.
type DocumentSnapshot struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// DocumentService implements the document store: writes, queries and live watches.
type DocumentService struct {
	repo   repo.DocumentRepository
	hub    *Hub
	logger *zap.SugaredLogger
}

func NewDocumentService(r repo.DocumentRepository, hub *Hub, logger *zap.SugaredLogger) *DocumentService {
	return &DocumentService{repo: r, hub: hub, logger: logger}
}

// Add stores a new document and returns its server-assigned id.
func (s *DocumentService) Add(ctx context.Context, principal, collection string, body []byte) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}
	if err := checkOwner(principal, body); err != nil {
		return "", err
	}
	doc := &model.Document{
		ID:         uuid.NewString(),
		Collection: collection,
		OwnerID:    principal,
		Data:       body,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	s.hub.Notify(collection, principal)
	return doc.ID, nil
}

// Set overwrites the document id with body, creating it when absent.
func (s *DocumentService) Set(ctx context.Context, principal, collection, id string, body []byte) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := checkOwner(principal, body); err != nil {
		return err
	}
	if err := s.checkExistingOwner(ctx, principal, collection, id); err != nil {
		return err
	}
	doc := &model.Document{ID: id, Collection: collection, OwnerID: principal, Data: body}
	if err := s.repo.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	s.hub.Notify(collection, principal)
	return nil
}

// Delete removes the document id. Deleting an absent document succeeds.
func (s *DocumentService) Delete(ctx context.Context, principal, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := s.checkExistingOwner(ctx, principal, collection, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.hub.Notify(collection, principal)
	return nil
}

// Query returns the current set of documents matching f.
func (s *DocumentService) Query(ctx context.Context, principal, collection string, f Filter) ([]DocumentSnapshot, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := checkFilter(principal, f); err != nil {
		return nil, err
	}
	return s.snapshot(ctx, collection, f.Value)
}

// Watch sends the full matching set once immediately and again after every
// change, until ctx is done or send fails.
func (s *DocumentService) Watch(ctx context.Context, principal, collection string, f Filter, send func([]DocumentSnapshot) error) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := checkFilter(principal, f); err != nil {
		return err
	}
	// subscribe before the first read so no change falls in between
	changes, cancel := s.hub.Subscribe(collection, f.Value)
	defer cancel()

	for {
		docs, err := s.snapshot(ctx, collection, f.Value)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := send(docs); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
		}
	}
}

func (s *DocumentService) snapshot(ctx context.Context, collection, owner string) ([]DocumentSnapshot, error) {
	docs, err := s.repo.ListByOwner(ctx, collection, owner)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	res := make([]DocumentSnapshot, 0, len(docs))
	for _, d := range docs {
		res = append(res, DocumentSnapshot{ID: d.ID, Data: json.RawMessage(d.Data)})
	}
	return res, nil
}

func (s *DocumentService) checkExistingOwner(ctx context.Context, principal, collection, id string) error {
	cur, err := s.repo.GetByID(ctx, collection, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if cur.OwnerID != principal {
		s.logger.Warnw("write to foreign document rejected", "collection", collection, "id", id, "principal", principal)
		return ErrForbidden
	}
	return nil
}

func checkCollection(collection string) error {
	if !collectionRe.MatchString(collection) {
		return ErrInvalidCollection
	}
	return nil
}

func checkFilter(principal string, f Filter) error {
	if f.Field != model.OwnerField {
		return ErrInvalidFilter
	}
	if f.Value != principal {
		return ErrForbidden
	}
	return nil
}

// checkOwner requires body to be a JSON object whose owner field is principal.
func checkOwner(principal string, body []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return ErrInvalidDocument
	}
	var owner string
	raw, ok := fields[model.OwnerField]
	if !ok || json.Unmarshal(raw, &owner) != nil || owner != principal {
		return ErrForbidden
	}
	return nil
}
