// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package gcp centralizes Google Cloud client construction.
//
// Clients honour the standard emulator variables (FIRESTORE_EMULATOR_HOST,
// STORAGE_EMULATOR_HOST) so local runs need no credentials.
package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// clientOptions turns an optional credentials file into client options.
func clientOptions(credentialsFile string) []option.ClientOption {
	if credentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
}

// NewFirestoreClient creates a Firestore client for the given project.
// Without credentialsFile it falls back to Application Default Credentials.
func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string, logger *slog.Logger) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errors.New("gcp: projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID, clientOptions(credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("gcp: failed to create firestore client: %w", err)
	}

	logger.Info("firestore_client_connected", slog.String("project_id", projectID))
	return client, nil
}

// PingFirestore performs a cheap read to confirm the backend is reachable.
func PingFirestore(ctx context.Context, client *firestore.Client, collection string) error {
	_, err := client.Collection(collection).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("gcp: firestore ping failed: %w", err)
	}
	return nil
}
