package services

import (
	"context"
	"testing"

	"github.com/kendall-kelly/laundrybear-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClientService_ListOrdersByName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewClientService(db)
	createTestClient(t, db, "zed", "Zed", "Alonzo")
	createTestClient(t, db, "ana2", "Ana", "Santos")
	createTestClient(t, db, "ana1", "Ana", "Cruz")

	clients, total, err := svc.List(context.Background(), utils.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, clients, 3)
	assert.Equal(t, "ana1", clients[0].User.Username)
	assert.Equal(t, "ana2", clients[1].User.Username)
	assert.Equal(t, "zed", clients[2].User.Username)
	assert.Equal(t, "Loyola Heights, Quezon City, Metro Manila", clients[0].Location)
}

func TestClientService_ListWithNameFilter(t *testing.T) {
	db := setupTestDB(t)
	svc := NewClientService(db)
	createTestClient(t, db, "juan", "Juan", "Dela Cruz")
	createTestClient(t, db, "maria", "Maria", "Santos")
	createTestClient(t, db, "cruzita", "Cruzita", "Reyes")

	filter := utils.ContainsFilter("name", "users.first_name", "users.last_name")
	scope := func(q *gorm.DB) *gorm.DB { return filter.Apply(q, "cruz") }

	clients, total, err := svc.List(context.Background(), utils.Page{Page: 1, Limit: 10}, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, clients, 2)
	assert.Equal(t, "Cruzita", clients[0].User.FirstName)
	assert.Equal(t, "Juan", clients[1].User.FirstName)
}
