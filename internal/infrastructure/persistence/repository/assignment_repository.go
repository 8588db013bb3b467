package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// AssignmentRepository stores ship and land assignments in their own
// collections. The active record of each kind lives under the owner's id;
// records under any other id are duplicates left by older clients.
type AssignmentRepository struct {
	store ports.DocumentStore
}

func NewAssignmentRepository(store ports.DocumentStore) *AssignmentRepository {
	return &AssignmentRepository{store: store}
}

func collectionFor(kind domain.AssignmentKind) string {
	if kind == domain.KindShip {
		return ports.CollectionShipAssignments
	}
	return ports.CollectionLandAssignments
}

func (r *AssignmentRepository) SaveShip(ctx context.Context, a *domain.ShipAssignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.ID = a.OwnerID.String()
	err := r.store.Set(ctx, ports.CollectionShipAssignments, a.ID, shipToData(a))
	return domerrors.NewStoreError("set", ports.CollectionShipAssignments, err)
}

func (r *AssignmentRepository) SaveLand(ctx context.Context, a *domain.LandAssignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.ID = a.OwnerID.String()
	err := r.store.Set(ctx, ports.CollectionLandAssignments, a.ID, landToData(a))
	return domerrors.NewStoreError("set", ports.CollectionLandAssignments, err)
}

func (r *AssignmentRepository) GetShip(ctx context.Context, owner domain.UserID) (*domain.ShipAssignment, error) {
	doc, err := r.active(ctx, domain.KindShip, owner)
	if err != nil {
		return nil, err
	}
	return shipFromDocument(doc), nil
}

func (r *AssignmentRepository) GetLand(ctx context.Context, owner domain.UserID) (*domain.LandAssignment, error) {
	doc, err := r.active(ctx, domain.KindLand, owner)
	if err != nil {
		return nil, err
	}
	return landFromDocument(doc), nil
}

// active returns the document keyed by the owner id, falling back to the
// newest legacy record so readers still see drifted data before cleanup runs.
func (r *AssignmentRepository) active(ctx context.Context, kind domain.AssignmentKind, owner domain.UserID) (*ports.Document, error) {
	coll := collectionFor(kind)
	if owner.IsZero() {
		return nil, domerrors.ErrAssignmentNotFound
	}
	doc, err := r.store.Get(ctx, coll, owner.String())
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, domerrors.NewStoreError("get", coll, err)
	}
	docs, err := r.store.Query(ctx, coll, ports.Eq(fieldUserIdentifier, owner.String()))
	if err != nil {
		return nil, domerrors.NewStoreError("query", coll, err)
	}
	if len(docs) == 0 {
		return nil, domerrors.ErrAssignmentNotFound
	}
	newest := docs[0]
	for _, d := range docs[1:] {
		if d.CreateTime.After(newest.CreateTime) {
			newest = d
		}
	}
	return newest, nil
}

// ListPublicShips filters on the decoded flag rather than in the store:
// records written before isPublic existed carry no field and count as public.
func (r *AssignmentRepository) ListPublicShips(ctx context.Context) ([]*domain.ShipAssignment, error) {
	docs, err := r.store.Query(ctx, ports.CollectionShipAssignments)
	if err != nil {
		return nil, domerrors.NewStoreError("query", ports.CollectionShipAssignments, err)
	}
	out := make([]*domain.ShipAssignment, 0, len(docs))
	for _, d := range docs {
		if a := shipFromDocument(d); a.IsPublic {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *AssignmentRepository) ListPublicLands(ctx context.Context) ([]*domain.LandAssignment, error) {
	docs, err := r.store.Query(ctx, ports.CollectionLandAssignments)
	if err != nil {
		return nil, domerrors.NewStoreError("query", ports.CollectionLandAssignments, err)
	}
	out := make([]*domain.LandAssignment, 0, len(docs))
	for _, d := range docs {
		if a := landFromDocument(d); a.IsPublic {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *AssignmentRepository) ListRefs(ctx context.Context, kind domain.AssignmentKind, owner domain.UserID) ([]domain.AssignmentRef, error) {
	coll := collectionFor(kind)
	docs, err := r.store.Query(ctx, coll, ports.Eq(fieldUserIdentifier, owner.String()))
	if err != nil {
		return nil, domerrors.NewStoreError("query", coll, err)
	}
	refs := make([]domain.AssignmentRef, 0, len(docs)+1)
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		seen[d.ID] = true
		refs = append(refs, domain.AssignmentRef{Kind: kind, ID: d.ID, OwnerID: owner, CreatedAt: d.CreateTime})
	}
	// Records written before userIdentifier existed are only reachable by key.
	if !seen[owner.String()] {
		doc, err := r.store.Get(ctx, coll, owner.String())
		switch {
		case err == nil:
			refs = append(refs, domain.AssignmentRef{Kind: kind, ID: doc.ID, OwnerID: owner, CreatedAt: doc.CreateTime})
		case !errors.Is(err, ports.ErrDocumentNotFound):
			return nil, domerrors.NewStoreError("get", coll, err)
		}
	}
	return refs, nil
}

func (r *AssignmentRepository) BatchDelete(ctx context.Context, kind domain.AssignmentKind, ids []string) error {
	coll := collectionFor(kind)
	return domerrors.NewStoreError("batch delete", coll, r.store.BatchDelete(ctx, coll, ids))
}

func (r *AssignmentRepository) DeleteAllExcept(ctx context.Context, kind domain.AssignmentKind, owner domain.UserID, keepNewest bool) (int, error) {
	refs, err := r.ListRefs(ctx, kind, owner)
	if err != nil {
		return 0, err
	}
	doomed := SelectForDeletion(refs, keepNewest)
	if len(doomed) == 0 {
		return 0, nil
	}
	if err := r.BatchDelete(ctx, kind, doomed); err != nil {
		return 0, err
	}
	return len(doomed), nil
}

// SelectForDeletion returns the ids to delete. With keepNewest the record with
// the latest creation time survives; on a tie the one keyed by the owner wins.
func SelectForDeletion(refs []domain.AssignmentRef, keepNewest bool) []string {
	if len(refs) == 0 {
		return nil
	}
	sorted := append([]domain.AssignmentRef(nil), refs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID == sorted[i].OwnerID.String()
	})
	if keepNewest {
		sorted = sorted[1:]
	}
	ids := make([]string, 0, len(sorted))
	for _, ref := range sorted {
		ids = append(ids, ref.ID)
	}
	return ids
}

var _ ports.AssignmentRepository = (*AssignmentRepository)(nil)
