// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
)

var errEmailTaken = errors.New("email taken")

// FirestoreUserRepository implements [UserRepository] on a Firestore collection
// keyed by user ID.
type FirestoreUserRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreUserRepository creates a repository over the named collection.
func NewFirestoreUserRepository(client *firestore.Client, collection string) *FirestoreUserRepository {
	return &FirestoreUserRepository{client: client, collection: collection}
}

func (repository *FirestoreUserRepository) users() *firestore.CollectionRef {
	return repository.client.Collection(repository.collection)
}

// Create checks the email and writes the document in one transaction.
func (repository *FirestoreUserRepository) Create(ctx context.Context, user *User) error {
	record := *user
	record.Email = NormalizeEmail(user.Email)

	err := repository.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		taken, err := tx.Documents(repository.users().Where("email", "==", record.Email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return errEmailTaken
		}
		return tx.Create(repository.users().Doc(record.ID), record)
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errEmailTaken):
		return apperr.Conflict("Email is already registered")
	default:
		return firestoreUserErr(err)
	}
}

func (repository *FirestoreUserRepository) FindByID(context context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.NotFound("User")
	}

	snapshot, err := repository.users().Doc(id).Get(context)
	if err != nil {
		return nil, firestoreUserErr(err)
	}
	return decodeUser(snapshot)
}

func (repository *FirestoreUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	snapshots, err := repository.users().Where("email", "==", NormalizeEmail(email)).Limit(1).Documents(context).GetAll()
	if err != nil {
		return nil, firestoreUserErr(err)
	}
	if len(snapshots) == 0 {
		return nil, apperr.NotFound("User")
	}
	return decodeUser(snapshots[0])
}

func (repository *FirestoreUserRepository) Delete(context context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.NotFound("User")
	}
	if _, err := repository.users().Doc(id).Delete(context, firestore.Exists); err != nil {
		return firestoreUserErr(err)
	}
	return nil
}

func decodeUser(snapshot *firestore.DocumentSnapshot) (*User, error) {
	var user User
	if err := snapshot.DataTo(&user); err != nil {
		return nil, apperr.Internal(err)
	}
	user.ID = snapshot.Ref.ID
	return &user, nil
}

func firestoreUserErr(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return apperr.NotFound("User").WithCause(err)
	case codes.AlreadyExists:
		return apperr.Conflict("User already exists").WithCause(err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return apperr.ServiceUnavailable("Identity store is unavailable").WithCause(err)
	default:
		return apperr.Internal(err)
	}
}
