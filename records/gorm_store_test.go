package records

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aagaur/studiocms/models"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func TestGormStoreGetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT \\* FROM `projects` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := store.Get(context.Background(), Projects, "missing", &models.Project{})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreGet(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `team_members` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "name", "role", "image", "sort_order"}).
			AddRow("abc", now, now, "Asha", "Architect", "https://cdn.test/a.jpg", 2))

	var m models.TeamMember
	require.NoError(t, store.Get(context.Background(), Team, "abc", &m))

	assert.Equal(t, "Asha", m.Name)
	assert.Equal(t, 2, m.Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreDelete(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM `events` WHERE id = \\?").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `events` WHERE id = \\?").
		WithArgs("here").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.ErrorIs(t, store.Delete(context.Background(), Events, "gone"), ErrNotFound)
	assert.NoError(t, store.Delete(context.Background(), Events, "here"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreListFiltersAndSorts(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT \\* FROM `projects` WHERE `category` = \\? ORDER BY `created_at` DESC").
		WithArgs("residential").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "category"}).
			AddRow("p1", "Lake House", "residential").
			AddRow("p2", "Hill House", "residential"))

	list, err := store.List(context.Background(), Projects, ListQuery{Equals: map[string]string{"category": "residential"}})

	require.NoError(t, err)
	got := *list.(*[]models.Project)
	require.Len(t, got, 2)
	assert.Equal(t, "Lake House", got[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCount(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `interns`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := store.Count(context.Background(), Interns)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCreateAssignsID(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO `interns`").WillReturnResult(sqlmock.NewResult(0, 1))

	in := &models.Intern{Name: "Ravi", Image: "https://cdn.test/r.jpg"}
	require.NoError(t, store.Create(context.Background(), Interns, in))

	assert.Len(t, in.ID, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreListEventsPutsUndatedLast(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT \\* FROM `events` ORDER BY date IS NULL,`date` DESC,`created_at` DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("e1", "Open Studio"))

	_, err := store.List(context.Background(), Events, ListQuery{})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListQueryKeyEscapesValues(t *testing.T) {
	crafted := ListQuery{Equals: map[string]string{"category": "residential&status=completed"}}
	split := ListQuery{Equals: map[string]string{"category": "residential", "status": "completed"}}
	assert.NotEqual(t, crafted.Key(), split.Key())

	paged := ListQuery{Page: 2, PageSize: 10}
	filterNamedPage := ListQuery{Equals: map[string]string{"page": "2"}, PageSize: 10}
	assert.NotEqual(t, paged.Key(), filterNamedPage.Key())

	a := ListQuery{Equals: map[string]string{"status": "completed", "category": "residential"}}
	assert.Equal(t, split.Key(), a.Key())
}
