package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage_tree/internal/model"
	"heritage_tree/internal/repository"
)

var admin = &model.User{Username: "admin", Role: model.RoleAdmin}

// flakyStore 可控制保存失败的持久化
type flakyStore struct {
	*repository.MemoryStore
	fail bool
}

func (s *flakyStore) Save(ctx context.Context, people []model.Person) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.Save(ctx, people)
}

func newPeople(t *testing.T, people []model.Person) (*PeopleService, *flakyStore) {
	t.Helper()
	store := &flakyStore{MemoryStore: repository.NewMemoryStore()}
	if people != nil {
		require.NoError(t, store.MemoryStore.Save(context.Background(), people))
	}
	svc := NewPeopleService(store, NewNopLogger())
	require.NoError(t, svc.Load(context.Background()))
	return svc, store
}

func TestPeopleService_LoadSeedsWhenAbsent(t *testing.T) {
	svc, _ := newPeople(t, nil)
	assert.Equal(t, model.InitialPeople(), svc.List())
}

func TestPeopleService_LoadSavedDocument(t *testing.T) {
	svc, _ := newPeople(t, []model.Person{{ID: "a", FirstName: "A", LastName: "B", BirthDate: "1900", Gender: "male"}})
	people := svc.List()
	require.Len(t, people, 1)
	assert.Equal(t, model.GenderMale, people[0].Gender)
}

func TestPeopleService_AddRequiresBirthDate(t *testing.T) {
	svc, store := newPeople(t, nil)
	before := svc.List()

	_, err := svc.Add(context.Background(), model.Person{FirstName: "New", LastName: "Person"})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrValidation))
	assert.Contains(t, err.Error(), "birthDate")
	assert.Equal(t, before, svc.List())
	assert.Zero(t, store.Saves())
}

func TestPeopleService_Add(t *testing.T) {
	svc, _ := newPeople(t, nil)

	p, err := svc.Add(context.Background(), model.Person{
		ID:        "ignored",
		FirstName: " Nora ",
		LastName:  "Heritage",
		BirthDate: "2010-04-01",
		Gender:    "female",
		FatherID:  "3",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", p.ID)
	assert.Len(t, p.ID, 36)
	assert.Equal(t, "Nora", p.FirstName)
	assert.Equal(t, model.GenderFemale, p.Gender)
	assert.Equal(t, model.PlaceholderPhoto(p.ID, 200), p.PhotoURL)

	got, err := svc.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, 6, svc.Len())

	profile, err := svc.Profile("3")
	require.NoError(t, err)
	assert.Len(t, profile.Children, 2)
}

func TestPeopleService_AddRejectsUnknownReference(t *testing.T) {
	svc, _ := newPeople(t, nil)
	_, err := svc.Add(context.Background(), model.Person{FirstName: "X", LastName: "Y", BirthDate: "2000", MotherID: "nope"})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrValidation))
	assert.Equal(t, 5, svc.Len())
}

func TestPeopleService_Update(t *testing.T) {
	svc, _ := newPeople(t, nil)

	p, err := svc.Get("5")
	require.NoError(t, err)
	p.Occupation = "Historian"
	p.ID = "other"

	updated, err := svc.Update(context.Background(), "5", p)
	require.NoError(t, err)
	assert.Equal(t, "5", updated.ID)
	assert.Equal(t, "Historian", updated.Occupation)

	got, _ := svc.Get("5")
	assert.Equal(t, "Historian", got.Occupation)

	_, err = svc.Update(context.Background(), "missing", p)
	assert.True(t, IsCode(err, ErrNotFound))

	p.LastName = ""
	_, err = svc.Update(context.Background(), "5", p)
	assert.True(t, IsCode(err, ErrValidation))
}

func TestPeopleService_UpdateToleratesExistingDanglingReference(t *testing.T) {
	svc, _ := newPeople(t, []model.Person{{ID: "a", FirstName: "A", LastName: "B", BirthDate: "1900", FatherID: "gone"}})

	p, _ := svc.Get("a")
	p.Bio = "edited"
	_, err := svc.Update(context.Background(), "a", p)
	require.NoError(t, err)

	p.MotherID = "also-gone"
	_, err = svc.Update(context.Background(), "a", p)
	assert.True(t, IsCode(err, ErrValidation))
}

func TestPeopleService_DeleteCleansReferences(t *testing.T) {
	svc, _ := newPeople(t, nil)

	require.NoError(t, svc.Delete(context.Background(), "1", admin, true))

	people := svc.List()
	assert.Len(t, people, 4)
	for _, p := range people {
		assert.NotEqual(t, "1", p.ID)
		assert.NotEqual(t, "1", p.FatherID)
		assert.NotEqual(t, "1", p.MotherID)
		assert.NotEqual(t, "1", p.SpouseID)
	}

	eleanor, _ := svc.Get("2")
	assert.Empty(t, eleanor.SpouseID)
	james, _ := svc.Get("3")
	assert.Empty(t, james.FatherID)
	assert.Equal(t, "2", james.MotherID)
}

func TestPeopleService_DeleteGuards(t *testing.T) {
	svc, _ := newPeople(t, nil)
	ctx := context.Background()

	err := svc.Delete(ctx, "1", &model.User{Role: model.RoleViewer}, true)
	assert.True(t, IsCode(err, ErrAuthorization))

	err = svc.Delete(ctx, "1", nil, true)
	assert.True(t, IsCode(err, ErrAuthorization))

	err = svc.Delete(ctx, "1", admin, false)
	assert.True(t, IsCode(err, ErrConfirmation))

	err = svc.Delete(ctx, "missing", admin, true)
	assert.True(t, IsCode(err, ErrNotFound))

	assert.Equal(t, 5, svc.Len())
}

func TestPeopleService_FailedSaveLeavesStoreUnchanged(t *testing.T) {
	svc, store := newPeople(t, nil)
	ctx := context.Background()
	before := svc.List()
	store.fail = true

	_, err := svc.Add(ctx, model.Person{FirstName: "A", LastName: "B", BirthDate: "2000"})
	assert.True(t, IsCode(err, ErrDatabase))

	err = svc.Delete(ctx, "1", admin, true)
	assert.True(t, IsCode(err, ErrDatabase))

	err = svc.Replace(ctx, nil)
	assert.True(t, IsCode(err, ErrDatabase))

	assert.Equal(t, before, svc.List())
}

func TestPeopleService_Replace(t *testing.T) {
	svc, store := newPeople(t, nil)
	next := []model.Person{{ID: "x", FirstName: "X", LastName: "Y", BirthDate: "1900", Gender: model.GenderOther}}

	require.NoError(t, svc.Replace(context.Background(), next))
	assert.Equal(t, next, svc.List())

	saved, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, next, saved)
}

func TestPeopleService_Directory(t *testing.T) {
	svc, _ := newPeople(t, nil)

	assert.Len(t, svc.Directory(""), 5)
	assert.Empty(t, svc.Directory("   "), "whitespace is matched literally")

	trailing := svc.Directory("n ")
	require.Len(t, trailing, 1)
	assert.Equal(t, "Shadman", trailing[0].FirstName)

	var names []string
	for _, p := range svc.Directory("HERITAGE") {
		names = append(names, p.FirstName)
	}
	assert.Equal(t, []string{"Eleanor", "James", "Alice"}, names)

	match := svc.Directory("man sa")
	require.Len(t, match, 1)
	assert.Equal(t, "1", match[0].ID)

	assert.Empty(t, svc.Directory("nobody"))
}

func TestPeopleService_SetBioKeepsOtherFields(t *testing.T) {
	svc, store := newPeople(t, nil)
	ctx := context.Background()

	james, err := svc.Get("3")
	require.NoError(t, err)
	james.Occupation = "Pilot"
	_, err = svc.Update(ctx, "3", james)
	require.NoError(t, err)

	updated, err := svc.SetBio(ctx, "3", "A new bio.")
	require.NoError(t, err)
	assert.Equal(t, "A new bio.", updated.Bio)
	assert.Equal(t, "Pilot", updated.Occupation)

	saved, _, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pilot", saved[2].Occupation)
	assert.Equal(t, "A new bio.", saved[2].Bio)

	_, err = svc.SetBio(ctx, "missing", "x")
	assert.True(t, IsCode(err, ErrNotFound))

	store.fail = true
	_, err = svc.SetBio(ctx, "3", "lost")
	assert.True(t, IsCode(err, ErrDatabase))
	current, _ := svc.Get("3")
	assert.Equal(t, "A new bio.", current.Bio)
}

func TestPeopleService_Profile(t *testing.T) {
	svc, _ := newPeople(t, nil)

	profile, err := svc.Profile("3")
	require.NoError(t, err)
	require.NotNil(t, profile.Father)
	require.NotNil(t, profile.Mother)
	assert.Equal(t, "1", profile.Father.ID)
	assert.Equal(t, "2", profile.Mother.ID)
	assert.Nil(t, profile.Spouse)
	require.Len(t, profile.Children, 1)
	assert.Equal(t, "5", profile.Children[0].ID)
	assert.Equal(t, "James is the child of Shadman and Eleanor. They have 1 children.", profile.FamilyContext())

	alice, err := svc.Profile("5")
	require.NoError(t, err)
	assert.Equal(t, "Alice is the child of James and Unknown. They have 0 children.", alice.FamilyContext())

	_, err = svc.Profile("missing")
	assert.True(t, IsCode(err, ErrNotFound))
}

func TestPeopleService_TreeRebuiltAfterMutation(t *testing.T) {
	svc, _ := newPeople(t, nil)

	tree := svc.Tree("test")
	assert.Equal(t, 4, tree.Hierarchy.Root.Count())
	assert.Len(t, tree.Scene.Cards, 4)
	assert.Same(t, tree, svc.Tree("test"), "unchanged store reuses the layout")

	_, err := svc.Add(context.Background(), model.Person{FirstName: "Baby", LastName: "Heritage", BirthDate: "2024-01-01", FatherID: "5"})
	require.NoError(t, err)

	rebuilt := svc.Tree("test")
	assert.NotSame(t, tree, rebuilt)
	tree = rebuilt
	assert.Equal(t, 5, tree.Hierarchy.Root.Count())
	assert.Len(t, tree.Layout.Nodes, 5)
}

func TestPeopleService_TreeEmptyStore(t *testing.T) {
	svc, _ := newPeople(t, []model.Person{})
	tree := svc.Tree("test")
	assert.Nil(t, tree.Hierarchy.Root)
	assert.Empty(t, tree.Scene.Cards)
}
