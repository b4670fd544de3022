package pathdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flexpath/flexpath/internal/db"
	"github.com/flexpath/flexpath/internal/document"
	"github.com/flexpath/flexpath/internal/typeid"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrForbidden = errors.New("forbidden")
)

type Service struct {
	queries *db.Queries
}

func NewService(queries *db.Queries) *Service {
	return &Service{queries: queries}
}

type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string, empty bool) (*Document, error) {
	docID := typeid.NewDocumentID()

	dbDoc, err := s.queries.CreateDocument(ctx, db.CreateDocumentParams{
		ID:      docID,
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	// Seed the first snapshot: a blank path set when asked, otherwise the
	// built-in sample so a fresh document renders something immediately.
	var seed *document.PathDocument
	if empty {
		seed = document.NewEmptyDocument(docID, name)
	} else {
		seed = document.NewSampleDocument(docID)
		seed.Name = name
	}
	seedJSON, err := json.Marshal(seed)
	if err != nil {
		return nil, fmt.Errorf("marshal seed document: %w", err)
	}

	_, err = s.queries.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:         typeid.NewSnapshotID(),
		DocumentID: docID,
		Version:    1,
		Document:   seedJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return dbDocToDocument(dbDoc), nil
}

func (s *Service) Get(ctx context.Context, docID, userID string) (*Document, error) {
	dbDoc, err := s.getOwned(ctx, docID, userID)
	if err != nil {
		return nil, err
	}
	return dbDocToDocument(*dbDoc), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	dbDocs, err := s.queries.ListDocumentsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]Document, len(dbDocs))
	for i, d := range dbDocs {
		docs[i] = *dbDocToDocument(d)
	}

	return docs, nil
}

func (s *Service) Delete(ctx context.Context, docID, userID string) error {
	if _, err := s.getOwned(ctx, docID, userID); err != nil {
		return err
	}
	return s.queries.DeleteDocument(ctx, docID)
}

// SaveSnapshot persists a new version of the path document.
func (s *Service) SaveSnapshot(ctx context.Context, docID, userID string, doc *document.PathDocument) error {
	if _, err := s.getOwned(ctx, docID, userID); err != nil {
		return err
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	nextVersion := int32(1)
	if current, err := s.queries.GetLatestSnapshot(ctx, docID); err == nil {
		nextVersion = current.Version + 1
	}

	_, err = s.queries.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:         typeid.NewSnapshotID(),
		DocumentID: docID,
		Version:    nextVersion,
		Document:   docJSON,
	})
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	return s.queries.TouchDocument(ctx, docID)
}

func (s *Service) GetLatestSnapshot(ctx context.Context, docID, userID string) (json.RawMessage, error) {
	if _, err := s.getOwned(ctx, docID, userID); err != nil {
		return nil, err
	}

	snap, err := s.queries.GetLatestSnapshot(ctx, docID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	return snap.Document, nil
}

// LoadSnapshot fetches the latest stored path document without an ownership
// check. Used by the live preview endpoint, which allows anonymous viewers.
func (s *Service) LoadSnapshot(ctx context.Context, docID string) (*document.PathDocument, error) {
	snap, err := s.queries.GetLatestSnapshot(ctx, docID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var doc document.PathDocument
	if err := json.Unmarshal(snap.Document, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &doc, nil
}

func (s *Service) getOwned(ctx context.Context, docID, userID string) (*db.Document, error) {
	dbDoc, err := s.queries.GetDocument(ctx, docID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	if dbDoc.OwnerID != userID {
		return nil, ErrForbidden
	}
	return &dbDoc, nil
}

func dbDocToDocument(d db.Document) *Document {
	return &Document{
		ID:        d.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: d.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
