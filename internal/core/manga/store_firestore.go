// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
	"github.com/taibuivan/mimanga/pkg/slice"
)

// FirestoreBatchLimit is the maximum number of writes in one Firestore batch commit.
const FirestoreBatchLimit = 500

// FirestoreRepository implements [Repository] on a Firestore collection.
//
// Documents are keyed by record ID. Title uniqueness is checked before
// writes, so two concurrent writers may still persist the same title.
type FirestoreRepository struct {
	client     *firestore.Client
	collection string
	batchLimit int
}

// NewFirestoreRepository creates a repository over the named collection.
// batchLimit is capped at [FirestoreBatchLimit].
func NewFirestoreRepository(client *firestore.Client, collection string, batchLimit int) *FirestoreRepository {
	if batchLimit < 1 || batchLimit > FirestoreBatchLimit {
		batchLimit = FirestoreBatchLimit
	}
	return &FirestoreRepository{client: client, collection: collection, batchLimit: batchLimit}
}

func (repository *FirestoreRepository) mangas() *firestore.CollectionRef {
	return repository.client.Collection(repository.collection)
}

func (repository *FirestoreRepository) List(context context.Context) ([]*Manga, error) {
	mangas, err := readAll(repository.mangas().Documents(context))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list_mangas: %w", err))
	}
	sortByCreation(mangas)
	return mangas, nil
}

func (repository *FirestoreRepository) Search(context context.Context, filter Filter) ([]*Manga, error) {
	query := repository.mangas().Query
	if genre, ok := CanonicalGenre(filter.Genre); ok {
		query = query.Where("genre", "==", genre)
	}

	candidates, err := readAll(query.Documents(context))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("search_mangas: %w", err))
	}

	// Firestore has no substring or case-insensitive operators.
	matches := slice.Filter(candidates, filter.Matches)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Title < matches[j].Title })
	return matches, nil
}

func (repository *FirestoreRepository) FindByID(context context.Context, id string) (*Manga, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.NotFound("Manga")
	}

	snapshot, err := repository.mangas().Doc(id).Get(context)
	if err != nil {
		return nil, firestoreErr(err)
	}
	return decode(snapshot)
}

func (repository *FirestoreRepository) Create(context context.Context, manga *Manga) error {
	if _, err := repository.mangas().Doc(manga.ID).Create(context, manga); err != nil {
		return firestoreErr(err)
	}
	return nil
}

func (repository *FirestoreRepository) Update(ctx context.Context, manga *Manga) error {
	reference := repository.mangas().Doc(manga.ID)

	err := repository.client.RunTransaction(ctx, func(_ context.Context, transaction *firestore.Transaction) error {
		if _, err := transaction.Get(reference); err != nil {
			return err
		}
		return transaction.Set(reference, manga)
	})
	if err != nil {
		return firestoreErr(err)
	}
	return nil
}

func (repository *FirestoreRepository) Delete(context context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.NotFound("Manga")
	}
	if _, err := repository.mangas().Doc(id).Delete(context, firestore.Exists); err != nil {
		return firestoreErr(err)
	}
	return nil
}

func (repository *FirestoreRepository) ExistsByTitle(context context.Context, normalizedTitle string) (bool, error) {
	snapshots, err := repository.mangas().
		Where("normalizedTitle", "==", normalizedTitle).
		Limit(1).
		Documents(context).
		GetAll()
	if err != nil {
		return false, apperr.Internal(fmt.Errorf("exists_by_title: %w", err))
	}
	return len(snapshots) > 0, nil
}

func (repository *FirestoreRepository) AddRange(context context.Context, mangas []*Manga) ([]*Manga, error) {
	return addInBatches(context, mangas, repository.batchLimit, repository.commit)
}

// commit writes one sub-batch with a single WriteBatch.
func (repository *FirestoreRepository) commit(context context.Context, batch []*Manga) ([]*Manga, error) {
	writes := repository.client.Batch()
	for _, m := range batch {
		writes.Set(repository.mangas().Doc(m.ID), m)
	}
	if _, err := writes.Commit(context); err != nil {
		return nil, err
	}
	return batch, nil
}

func (repository *FirestoreRepository) Duplicates(context context.Context) (map[string][]*Manga, error) {
	all, err := repository.List(context)
	if err != nil {
		return nil, err
	}
	return GroupDuplicates(all), nil
}

func (repository *FirestoreRepository) BatchLimit() int {
	return repository.batchLimit
}

// # Document Mapping

func readAll(documents *firestore.DocumentIterator) ([]*Manga, error) {
	defer documents.Stop()

	mangas := make([]*Manga, 0)
	for {
		snapshot, err := documents.Next()
		if errors.Is(err, iterator.Done) {
			return mangas, nil
		}
		if err != nil {
			return nil, err
		}

		m, err := decode(snapshot)
		if err != nil {
			return nil, err
		}
		mangas = append(mangas, m)
	}
}

func decode(snapshot *firestore.DocumentSnapshot) (*Manga, error) {
	m := &Manga{}
	if err := snapshot.DataTo(m); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode manga %s: %w", snapshot.Ref.ID, err))
	}
	m.ID = snapshot.Ref.ID
	if m.NormalizedTitle == "" {
		m.Normalize()
	}
	return m, nil
}

// firestoreErr maps gRPC status codes to application errors.
func firestoreErr(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return apperr.NotFound("Manga").WithCause(err)
	case codes.AlreadyExists:
		return apperr.Conflict("Manga already exists").WithCause(err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return apperr.ServiceUnavailable("Catalog store is unavailable").WithCause(err)
	default:
		return apperr.Internal(err)
	}
}
