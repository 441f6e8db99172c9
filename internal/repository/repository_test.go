package repository

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"klaso-client/internal/model"
	"klaso-client/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote serves a fixed collection and records every call.
type fakeRemote[T model.Entity] struct {
	mu      sync.Mutex
	items   []T
	scopes  []model.Scope
	calls   []string
	err     error
	created T
	updated T
	payload interface{}
}

func (f *fakeRemote[T]) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeRemote[T]) List(_ context.Context, scope model.Scope) ([]T, error) {
	f.mu.Lock()
	f.scopes = append(f.scopes, scope)
	f.mu.Unlock()
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return clone(f.items), nil
}

func (f *fakeRemote[T]) Get(_ context.Context, id model.ID) (T, error) {
	var zero T
	if err := f.record("get"); err != nil {
		return zero, err
	}
	for _, item := range f.items {
		if item.EntityID() == id {
			return item, nil
		}
	}
	return zero, errors.NewRemoteError("GET", 404, "not found", nil)
}

func (f *fakeRemote[T]) Create(_ context.Context, payload interface{}) (T, error) {
	f.payload = payload
	if err := f.record("create"); err != nil {
		var zero T
		return zero, err
	}
	return f.created, nil
}

func (f *fakeRemote[T]) Update(_ context.Context, _ model.ID, payload interface{}) (T, error) {
	f.payload = payload
	if err := f.record("update"); err != nil {
		var zero T
		return zero, err
	}
	return f.updated, nil
}

func (f *fakeRemote[T]) Delete(context.Context, model.ID) error {
	return f.record("delete")
}

func (f *fakeRemote[T]) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeIdentity struct {
	user *model.User
}

func (f *fakeIdentity) Require() (model.User, error) {
	if f.user == nil {
		return model.User{}, errors.ErrNotAuthenticated
	}
	return *f.user, nil
}

func students() []model.Student {
	return []model.Student{
		{ID: "s1", FirstName: "Ada", ClassroomID: "c1", IsActive: true},
		{ID: "s2", FirstName: "Alan", ClassroomID: "c1", IsActive: false},
		{ID: "s3", FirstName: "Grace", ClassroomID: "c2", IsActive: true},
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	remote := &fakeRemote[model.Student]{items: students()}
	repo := NewStudents(remote)

	first, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)
	snap1 := repo.Snapshot()

	second, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)
	snap2 := repo.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, snap1, snap2)
	assert.Equal(t, model.Scope{ParentID: "c1"}, remote.scopes[0])
}

func TestLoadFailureKeepsSnapshot(t *testing.T) {
	remote := &fakeRemote[model.Student]{items: students()}
	repo := NewStudents(remote)

	_, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)

	boom := errors.NewRemoteError("GET /students/classroom/c1", 500, "boom", nil)
	remote.err = boom

	_, err = repo.Load(context.Background(), "c1")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, repo.Snapshot(), 3)
}

func TestCachedReads(t *testing.T) {
	repo := NewStudents(&fakeRemote[model.Student]{items: students()})
	_, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)

	s, ok := repo.CachedByID("s2")
	require.True(t, ok)
	assert.Equal(t, "Alan", s.FirstName)

	_, ok = repo.CachedByID("nope")
	assert.False(t, ok)

	assert.Len(t, repo.CachedByParent("c1"), 2)
	assert.Empty(t, repo.CachedByParent("c9"))
	assert.NotNil(t, repo.CachedByParent("c9"))

	roster := repo.Roster("c1")
	require.Len(t, roster, 1)
	assert.Equal(t, model.ID("s1"), roster[0].ID)
}

func TestSnapshotIsACopy(t *testing.T) {
	repo := NewStudents(&fakeRemote[model.Student]{items: students()})
	_, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)

	snap := repo.Snapshot()
	snap[0].FirstName = "Mallory"

	s, _ := repo.CachedByID("s1")
	assert.Equal(t, "Ada", s.FirstName)
}

func TestCreateAppendsServerEntity(t *testing.T) {
	remote := &fakeRemote[model.Student]{
		items:   students(),
		created: model.Student{ID: "s9", FirstName: "Barbara", ClassroomID: "c1", IsActive: true},
	}
	repo := NewStudents(remote)
	_, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)

	item, err := repo.Create(context.Background(), model.CreateStudentRequest{FirstName: "Barbara"})
	require.NoError(t, err)
	assert.Equal(t, model.ID("s9"), item.ID)

	snap := repo.Snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, item, snap[3])
}

func TestUpdateUsesServerEntity(t *testing.T) {
	serverCopy := model.Student{ID: "s1", FirstName: "Augusta", LastName: "King", ClassroomID: "c1", IsActive: true}
	remote := &fakeRemote[model.Student]{items: students(), updated: serverCopy}
	repo := NewStudents(remote)
	_, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)

	name := "Ada"
	_, err = repo.Update(context.Background(), "s1", model.UpdateStudentRequest{FirstName: &name})
	require.NoError(t, err)

	got, ok := repo.CachedByID("s1")
	require.True(t, ok)
	assert.Equal(t, serverCopy, got)
	assert.Len(t, repo.Snapshot(), 3)
}

func TestUpdateOfUncachedEntityIsDropped(t *testing.T) {
	remote := &fakeRemote[model.Student]{
		items:   students(),
		updated: model.Student{ID: "s7", FirstName: "Ghost"},
	}
	repo := NewStudents(remote)
	_, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)

	item, err := repo.Update(context.Background(), "s7", model.UpdateStudentRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.ID("s7"), item.ID)

	_, ok := repo.CachedByID("s7")
	assert.False(t, ok)
	assert.Len(t, repo.Snapshot(), 3)
}

func TestUpdateFailureKeepsSnapshot(t *testing.T) {
	remote := &fakeRemote[model.Student]{items: students()}
	repo := NewStudents(remote)
	_, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)

	remote.err = stderrors.New("offline")
	_, err = repo.Update(context.Background(), "s1", model.UpdateStudentRequest{})
	assert.Error(t, err)

	s, _ := repo.CachedByID("s1")
	assert.Equal(t, "Ada", s.FirstName)
}

func TestDeleteRemovesEntity(t *testing.T) {
	remote := &fakeRemote[model.Student]{items: students()}
	repo := NewStudents(remote)
	_, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), "s2"))

	_, ok := repo.CachedByID("s2")
	assert.False(t, ok)
	assert.Len(t, repo.Snapshot(), 2)

	remote.err = stderrors.New("offline")
	assert.Error(t, repo.Delete(context.Background(), "s1"))
	_, ok = repo.CachedByID("s1")
	assert.True(t, ok)
}

func TestOwnerScopedRequiresIdentity(t *testing.T) {
	remote := &fakeRemote[model.Establishment]{
		items:   []model.Establishment{{ID: "e1", UserID: "u1"}},
		created: model.Establishment{ID: "e2", UserID: "u1"},
	}
	identity := &fakeIdentity{}
	repo := NewEstablishments(remote, identity)

	_, err := repo.LoadOwned(context.Background())
	assert.ErrorIs(t, err, errors.ErrNotAuthenticated)

	_, err = repo.Load(context.Background(), "u1")
	assert.ErrorIs(t, err, errors.ErrNotAuthenticated)

	_, err = repo.Create(context.Background(), model.CreateEstablishmentRequest{Name: "School"})
	assert.ErrorIs(t, err, errors.ErrNotAuthenticated)

	assert.Zero(t, remote.callCount())

	identity.user = &model.User{ID: "u1"}

	items, err := repo.LoadOwned(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, model.ID("u1"), remote.scopes[0].ParentID)

	_, err = repo.Create(context.Background(), model.CreateEstablishmentRequest{Name: "School"})
	require.NoError(t, err)
	sent, ok := remote.payload.(model.CreateEstablishmentRequest)
	require.True(t, ok)
	assert.Equal(t, model.ID("u1"), sent.UserID)
}

func receive[T any](t *testing.T, ch <-chan []T) []T {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func TestSubscribe(t *testing.T) {
	remote := &fakeRemote[model.Student]{
		items:   students(),
		created: model.Student{ID: "s9", ClassroomID: "c1"},
	}
	repo := NewStudents(remote)

	ch, cancel := repo.Subscribe()

	assert.Empty(t, receive(t, ch))

	_, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, receive(t, ch), 3)

	// A subscriber that falls behind only sees the newest snapshot.
	_, err = repo.Create(context.Background(), model.CreateStudentRequest{})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(context.Background(), "s1"))

	latest := receive(t, ch)
	assert.Len(t, latest, 3)
	assert.Equal(t, model.ID("s9"), latest[2].ID)

	late, lateCancel := repo.Subscribe()
	assert.Equal(t, latest, receive(t, late))
	lateCancel()

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	// In-flight work still lands after unsubscribing.
	_, err = repo.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, repo.Snapshot(), 3)
}

func TestGradesLoadForStudent(t *testing.T) {
	classroom := &fakeRemote[model.Grade]{items: []model.Grade{
		{ID: "g1", StudentID: "s1", ClassroomID: "c1", Value: 10},
		{ID: "g2", StudentID: "s2", ClassroomID: "c1", Value: 12},
	}}
	lister := studentGrades{"s1": {{ID: "g3", StudentID: "s1", ClassroomID: "c1", Value: 18}}}
	repo := NewGrades(classroom, lister)

	_, err := repo.Load(context.Background(), "c1")
	require.NoError(t, err)

	fresh, err := repo.LoadForStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, fresh, 1)

	own := repo.ByStudent("s1")
	require.Len(t, own, 1)
	assert.Equal(t, model.ID("g3"), own[0].ID)
	assert.Len(t, repo.ByStudent("s2"), 1)
}

type studentGrades map[model.ID][]model.Grade

func (s studentGrades) ListByStudent(_ context.Context, studentID model.ID) ([]model.Grade, error) {
	return s[studentID], nil
}

func TestAttendancesCreateManyStopsOnFailure(t *testing.T) {
	remote := &failingCreate{failAt: 2}
	repo := NewAttendances(remote)

	reqs := []model.CreateAttendanceRequest{{StudentID: "s1"}, {StudentID: "s2"}, {StudentID: "s3"}}
	created, err := repo.CreateMany(context.Background(), reqs)
	assert.Error(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, 2, remote.creates)
	assert.Len(t, repo.Snapshot(), 1)
}

type failingCreate struct {
	fakeRemote[model.Attendance]
	failAt  int
	creates int
}

func (f *failingCreate) Create(_ context.Context, payload interface{}) (model.Attendance, error) {
	f.creates++
	if f.creates == f.failAt {
		return model.Attendance{}, stderrors.New("rejected")
	}
	req := payload.(model.CreateAttendanceRequest)
	return model.Attendance{ID: model.ID("a-" + req.StudentID.String()), StudentID: req.StudentID}, nil
}

func TestAttendancesByDate(t *testing.T) {
	day := model.NewDate(2025, 1, 6)
	remote := &fakeRemote[model.Attendance]{items: []model.Attendance{
		{ID: "a1", StudentID: "s1", ClassroomID: "c1", Date: day},
		{ID: "a2", StudentID: "s1", ClassroomID: "c1", Date: model.NewDate(2025, 1, 7)},
	}}
	repo := NewAttendances(remote)

	_, err := repo.LoadOnDate(context.Background(), "c1", day)
	require.NoError(t, err)
	require.NotNil(t, remote.scopes[0].Date)
	assert.True(t, remote.scopes[0].Date.SameDay(day))

	assert.Len(t, repo.ByDate(day), 1)
	assert.Len(t, repo.ByStudent("s1"), 2)
}
