// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table         string
	ID            string
	Email         string
	Password      string
	DisplayName   string
	Role          string
	EmailVerified string
	Disabled      string
	CreatedAt     string
	UpdatedAt     string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:         "users.account",
	ID:            "id",
	Email:         "email",
	Password:      "passwordhash",
	DisplayName:   "displayname",
	Role:          "role",
	EmailVerified: "emailverified",
	Disabled:      "disabled",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

// Columns returns all column names in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Password, t.DisplayName, t.Role,
		t.EmailVerified, t.Disabled, t.CreatedAt, t.UpdatedAt,
	}
}
