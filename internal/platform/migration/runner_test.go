// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/mimanga/internal/platform/migration"
)

/*
TestToPgx5DSN rewrites the URL scheme golang-migrate expects.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/mimanga", "pgx5://u:p@db:5432/mimanga"},
		{"postgresql://u:p@db/mimanga?sslmode=disable", "pgx5://u:p@db/mimanga?sslmode=disable"},
		{"pgx5://u@db/mimanga", "pgx5://u@db/mimanga"},
		{"host=db user=u", "host=db user=u"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
		})
	}
}
