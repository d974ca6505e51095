// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		Create persists a brand-new account.

		Returns:
		  - error: apperr.Conflict when the email is taken, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when absent
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account registered under email, ignoring case.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when absent
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Delete removes the account.

		Returns:
		  - error: apperr.NotFound when absent
	*/
	Delete(context context.Context, id string) error
}
