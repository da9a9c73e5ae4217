package utils

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type place struct {
	ID       uint
	Name     string
	City     string
	Province string
}

func setupPlaces(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "list.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&place{}))
	rows := []place{
		{Name: "Manila Wash", City: "Quezon City", Province: "Metro Manila"},
		{Name: "Cebu Suds", City: "Cebu City", Province: "Cebu"},
		{Name: "Quick 100% Clean", City: "Makati", Province: "Metro Manila"},
		{Name: "Under_score", City: "Davao", Province: "Davao del Sur"},
	}
	require.NoError(t, db.Create(&rows).Error)
	return db
}

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

var placeFilters = []Filter{
	ContainsFilter("name", "name"),
	ContainsFilter("city", "city"),
	ContainsFilter("province", "province"),
}

func names(rows []place) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		page  int
		limit int
	}{
		{"", 1, DefaultPageSize},
		{"page=3&limit=5", 3, 5},
		{"page=0&limit=0", 1, DefaultPageSize},
		{"page=abc&limit=xyz", 1, DefaultPageSize},
		{"limit=1000", 1, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := ParsePage(testContext(tt.query))
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.limit, p.Limit)
		})
	}
}

func TestPaginate(t *testing.T) {
	p := Page{Page: 2, Limit: 10}
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, Pagination{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, p.Paginate(21))
	assert.Equal(t, 0, p.Paginate(0).TotalPages)
	assert.Equal(t, 1, p.Paginate(10).TotalPages)
}

func TestFilterScopes_Precedence(t *testing.T) {
	db := setupPlaces(t)

	// name wins over city even though city alone would match something else
	c := testContext("city=cebu&name=wash")
	scopes, queryType := FilterScopes(c, placeFilters)
	query := db.Model(&place{}).Scopes(scopes...)
	var rows []place
	require.NoError(t, query.Order("id").Find(&rows).Error)

	assert.Equal(t, "name", queryType)
	assert.Equal(t, []string{"Manila Wash"}, names(rows))
}

func TestFilterScopes_BlankValueFallsThrough(t *testing.T) {
	db := setupPlaces(t)

	tests := []struct {
		query     string
		queryType string
		want      []string
	}{
		{"name=&city=cebu", "city", []string{"Cebu Suds"}},
		{"name=%20%20&city=&province=davao", "province", []string{"Under_score"}},
		{"name=&city=", "", []string{"Manila Wash", "Cebu Suds", "Quick 100% Clean", "Under_score"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			scopes, queryType := FilterScopes(testContext(tt.query), placeFilters)
			var rows []place
			require.NoError(t, db.Model(&place{}).Scopes(scopes...).Order("id").Find(&rows).Error)
			assert.Equal(t, tt.queryType, queryType)
			assert.Equal(t, tt.want, names(rows))
		})
	}
}

func TestFilterScopes_CaseInsensitive(t *testing.T) {
	db := setupPlaces(t)

	scopes, queryType := FilterScopes(testContext("province=METRO"), placeFilters)
	query := db.Model(&place{}).Scopes(scopes...)
	var rows []place
	require.NoError(t, query.Order("id").Find(&rows).Error)

	assert.Equal(t, "province", queryType)
	assert.Equal(t, []string{"Manila Wash", "Quick 100% Clean"}, names(rows))
}

func TestFilterScopes_EscapesWildcards(t *testing.T) {
	db := setupPlaces(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"name=100%25", []string{"Quick 100% Clean"}},
		{"name=%25", []string{"Quick 100% Clean"}},
		{"name=_", []string{"Under_score"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			scopes, _ := FilterScopes(testContext(tt.query), placeFilters)
			query := db.Model(&place{}).Scopes(scopes...)
			var rows []place
			require.NoError(t, query.Order("id").Find(&rows).Error)
			assert.Equal(t, tt.want, names(rows))
		})
	}
}

func TestFilterScopes_NoParameter(t *testing.T) {
	db := setupPlaces(t)

	scopes, queryType := FilterScopes(testContext("unknown=x"), placeFilters)
	query := db.Model(&place{}).Scopes(scopes...)
	var count int64
	require.NoError(t, query.Count(&count).Error)

	assert.Equal(t, "", queryType)
	assert.Equal(t, int64(4), count)
}

func TestContainsFilter_MultipleColumns(t *testing.T) {
	db := setupPlaces(t)

	f := ContainsFilter("q", "name", "city")
	var rows []place
	require.NoError(t, f.Apply(db.Model(&place{}), "davao").Find(&rows).Error)
	assert.Equal(t, []string{"Under_score"}, names(rows))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%abc%", ContainsPattern("abc"))
	assert.Equal(t, `%50\%\_off\\%`, ContainsPattern(`50%_off\`))
}

func TestOrdering(t *testing.T) {
	o := Ordering{
		Fields:  map[string]string{"name": "name", "creation_date": "creation_date"},
		Default: "id ASC",
	}

	assert.Equal(t, "name ASC", o.Clause("name"))
	assert.Equal(t, "creation_date DESC", o.Clause("-creation_date"))
	assert.Equal(t, "id ASC", o.Clause(""))
	assert.Equal(t, "id ASC", o.Clause("password; DROP TABLE users"))

	db := setupPlaces(t)
	var rows []place
	require.NoError(t, db.Model(&place{}).Order(o.Clause("-name")).Find(&rows).Error)
	assert.Equal(t, []string{"Under_score", "Quick 100% Clean", "Manila Wash", "Cebu Suds"}, names(rows))
}
