// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mimanga/internal/core/generator"
)

/*
TestLocalLocker_Exclusive allows one holder at a time.
*/
func TestLocalLocker_Exclusive(t *testing.T) {
	ctx := context.Background()
	locker := &generator.LocalLocker{}

	release, err := locker.Acquire(ctx)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx)
	assert.ErrorIs(t, err, generator.ErrLocked)

	release()
	release()

	again, err := locker.Acquire(ctx)
	require.NoError(t, err)
	again()
}

/*
TestTitleSet normalizes before membership checks.
*/
func TestTitleSet(t *testing.T) {
	set := generator.NewTitleSet(0)

	assert.True(t, set.Add("Attack Of Shadows"))
	assert.False(t, set.Add("  attack of shadows "))
	assert.True(t, set.Contains("ATTACK OF SHADOWS"))
	assert.False(t, set.Contains("Attack"))
	assert.Equal(t, 1, set.Len())
}
