package service_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calorieking/backend/internal/service"
)

func TestInlineImageStore(t *testing.T) {
	store := service.NewInlineImageStore()

	url, err := store.Store(context.Background(), uuid.New(), pngHeader, "")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngHeader), url)

	url, err = store.Store(context.Background(), uuid.New(), nil, "image/png")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestMealImageKey(t *testing.T) {
	userID := uuid.New()

	key := service.MealImageKey(userID, "image/png")
	assert.True(t, strings.HasPrefix(key, "meal-images/"+userID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	assert.True(t, strings.HasSuffix(service.MealImageKey(userID, "image/x-unknown"), ".jpg"))
	assert.NotEqual(t, key, service.MealImageKey(userID, "image/png"))
}
