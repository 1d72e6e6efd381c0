// Package storagetest holds a behavioural test suite shared by every storage backend.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/storage"
)

// Suite exercises a storage.Storage implementation.
// Backends embed it and set Storage in their SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var (
	created = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	later   = time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T {
	return &v
}

// Fixtures

func Account(id model.AccountID, role model.AccountRole) *model.Account {
	return &model.Account{
		ID:          id,
		Role:        role,
		DisplayName: "Lea Meier",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func Shared() model.SharedAttributes {
	return model.SharedAttributes{
		FirstName:         "Lea",
		LastName:          "Meier",
		Nationality:       "CH",
		Canton:            "BE",
		Municipality:      "Thun",
		PreferredLanguage: "de",
		DateOfBirth:       "2006-03-06",
	}
}

func PlayerProfile(id model.AccountID) *model.PlayerProfile {
	return &model.PlayerProfile{
		AccountID:      id,
		Shared:         Shared(),
		Bio:            "Setter",
		Position:       "setter",
		HeightCm:       178,
		LookingForClub: true,
		ClubHistory: []model.ClubHistoryEntry{
			{ClubID: ptr(model.ClubID("c-example")), ClubName: "FC Example", Leagues: []string{"NLA"}, StartYear: "2020", IsCurrent: true},
		},
		Achievements: []model.Achievement{{Position: 0, Text: "U19 champion"}},
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func RecruiterProfile(id model.AccountID) *model.RecruiterProfile {
	return &model.RecruiterProfile{
		AccountID:    id,
		Shared:       Shared(),
		Bio:          "Scout",
		Age:          ptr(40),
		Organization: "Swiss Volley",
		ClubHistory: []model.ClubHistoryEntry{
			{ClubName: "Totally Unknown VBC", StartYear: "2010", EndYear: "2015", CoachRole: "assistant"},
		},
		Achievements: []model.Achievement{},
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

// Account tests

func (s *Suite) TestSaveAndGetAccount() {
	account := Account("acc-1", model.RoleDual)
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, account))

	got, err := s.Storage.GetAccount(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal(account.ID, got.ID)
	s.Equal(model.RoleDual, got.Role)
	s.Equal("Lea Meier", got.DisplayName)
	s.True(created.Equal(got.CreatedAt))
}

func (s *Suite) TestGetAccountNotFound() {
	_, err := s.Storage.GetAccount(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestSaveAccountOverwrites() {
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-1", model.RolePlayerOnly)))
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-1", model.RoleDual)))

	got, err := s.Storage.GetAccount(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal(model.RoleDual, got.Role)
}

func (s *Suite) TestUpdateAccount() {
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-1", model.RoleDual)))

	got, err := s.Storage.UpdateAccount(s.Ctx, "acc-1", &model.AccountUpdate{
		DisplayName: ptr("Lea M."),
		At:          later,
	})
	s.Require().NoError(err)
	s.Equal("Lea M.", got.DisplayName)
	s.True(later.Equal(got.UpdatedAt))

	reread, err := s.Storage.GetAccount(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal("Lea M.", reread.DisplayName)
	s.Equal(model.RoleDual, reread.Role)
}

func (s *Suite) TestUpdateAccountNotFound() {
	_, err := s.Storage.UpdateAccount(s.Ctx, "nonexistent", &model.AccountUpdate{At: later})
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Credentials tests

func (s *Suite) TestSaveAndGetCredentialsByEmail() {
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-1", model.RolePlayerOnly)))
	creds := &model.Credentials{
		AccountID:    "acc-1",
		Email:        "lea@example.ch",
		PasswordHash: "hash",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	s.Require().NoError(s.Storage.SaveCredentials(s.Ctx, creds))

	got, err := s.Storage.GetCredentialsByEmail(s.Ctx, "lea@example.ch")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), got.AccountID)
	s.Equal("hash", got.PasswordHash)
}

func (s *Suite) TestSaveCredentialsRejectsTakenEmail() {
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-1", model.RolePlayerOnly)))
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-2", model.RoleRecruiterOnly)))
	first := &model.Credentials{AccountID: "acc-1", Email: "lea@example.ch", PasswordHash: "one", CreatedAt: created, UpdatedAt: created}
	s.Require().NoError(s.Storage.SaveCredentials(s.Ctx, first))

	second := &model.Credentials{AccountID: "acc-2", Email: "lea@example.ch", PasswordHash: "two", CreatedAt: created, UpdatedAt: created}
	s.ErrorIs(s.Storage.SaveCredentials(s.Ctx, second), model.ErrEmailTaken)

	got, err := s.Storage.GetCredentialsByEmail(s.Ctx, "lea@example.ch")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), got.AccountID)
	s.Equal("one", got.PasswordHash)

	// The owner can still rewrite its own login
	first.PasswordHash = "rotated"
	s.Require().NoError(s.Storage.SaveCredentials(s.Ctx, first))
	got, err = s.Storage.GetCredentialsByEmail(s.Ctx, "lea@example.ch")
	s.Require().NoError(err)
	s.Equal("rotated", got.PasswordHash)
}

func (s *Suite) TestGetCredentialsByEmailNotFound() {
	_, err := s.Storage.GetCredentialsByEmail(s.Ctx, "nobody@example.ch")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Player profile tests

func (s *Suite) TestSaveAndGetPlayerProfile() {
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-1", model.RolePlayerOnly)))
	profile := PlayerProfile("acc-1")
	s.Require().NoError(s.Storage.SavePlayerProfile(s.Ctx, profile))

	got, err := s.Storage.GetPlayerProfile(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal(profile.Shared, got.Shared)
	s.Equal(profile.Bio, got.Bio)
	s.Equal(profile.HeightCm, got.HeightCm)
	s.True(got.LookingForClub)
	s.Equal(profile.ClubHistory, got.ClubHistory)
	s.Equal(profile.Achievements, got.Achievements)
}

func (s *Suite) TestGetPlayerProfileNotFound() {
	_, err := s.Storage.GetPlayerProfile(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestGetPlayerProfileReturnsCopy() {
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-1", model.RolePlayerOnly)))
	s.Require().NoError(s.Storage.SavePlayerProfile(s.Ctx, PlayerProfile("acc-1")))

	got, err := s.Storage.GetPlayerProfile(s.Ctx, "acc-1")
	s.Require().NoError(err)
	got.ClubHistory[0].ClubName = "mutated"
	got.Bio = "mutated"

	again, err := s.Storage.GetPlayerProfile(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal("FC Example", again.ClubHistory[0].ClubName)
	s.Equal("Setter", again.Bio)
}

func (s *Suite) TestUpdatePlayerProfile() {
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-1", model.RolePlayerOnly)))
	s.Require().NoError(s.Storage.SavePlayerProfile(s.Ctx, PlayerProfile("acc-1")))

	shared := Shared()
	shared.Municipality = "Spiez"
	history := []model.ClubHistoryEntry{
		{ClubName: "Volley Bern", StartYear: "2018", EndYear: "2020"},
	}

	got, err := s.Storage.UpdatePlayerProfile(s.Ctx, "acc-1", &model.PlayerUpdate{
		Shared:      shared,
		Position:    ptr("libero"),
		ClubHistory: &history,
		At:          later,
	})
	s.Require().NoError(err)
	s.Equal("Spiez", got.Shared.Municipality)
	s.Equal("libero", got.Position)
	s.Equal("Setter", got.Bio)
	s.Equal(history, got.ClubHistory)
	s.True(later.Equal(got.UpdatedAt))

	reread, err := s.Storage.GetPlayerProfile(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal(got.Shared, reread.Shared)
	s.Equal(got.ClubHistory, reread.ClubHistory)
}

func (s *Suite) TestUpdatePlayerProfileNotFound() {
	_, err := s.Storage.UpdatePlayerProfile(s.Ctx, "nonexistent", &model.PlayerUpdate{At: later})
	s.ErrorIs(err, model.ErrProfileNotFound)
}

// Recruiter profile tests

func (s *Suite) TestSaveAndGetRecruiterProfile() {
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-1", model.RoleRecruiterOnly)))
	profile := RecruiterProfile("acc-1")
	s.Require().NoError(s.Storage.SaveRecruiterProfile(s.Ctx, profile))

	got, err := s.Storage.GetRecruiterProfile(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal(profile.Shared, got.Shared)
	s.Require().NotNil(got.Age)
	s.Equal(40, *got.Age)
	s.Equal("Swiss Volley", got.Organization)
	s.Equal(profile.ClubHistory, got.ClubHistory)
}

func (s *Suite) TestGetRecruiterProfileNotFound() {
	_, err := s.Storage.GetRecruiterProfile(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestUpdateRecruiterProfileKeepsAgeUnlessSet() {
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, Account("acc-1", model.RoleRecruiterOnly)))
	s.Require().NoError(s.Storage.SaveRecruiterProfile(s.Ctx, RecruiterProfile("acc-1")))

	got, err := s.Storage.UpdateRecruiterProfile(s.Ctx, "acc-1", &model.RecruiterUpdate{
		Shared:       Shared(),
		Organization: ptr("Volley Thun"),
		At:           later,
	})
	s.Require().NoError(err)
	s.Require().NotNil(got.Age)
	s.Equal(40, *got.Age)
	s.Equal("Volley Thun", got.Organization)

	got, err = s.Storage.UpdateRecruiterProfile(s.Ctx, "acc-1", &model.RecruiterUpdate{
		Shared: Shared(),
		SetAge: true,
		At:     later,
	})
	s.Require().NoError(err)
	s.Nil(got.Age)

	reread, err := s.Storage.GetRecruiterProfile(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Nil(reread.Age)
	s.Equal("Volley Thun", reread.Organization)
}

func (s *Suite) TestUpdateRecruiterProfileNotFound() {
	_, err := s.Storage.UpdateRecruiterProfile(s.Ctx, "nonexistent", &model.RecruiterUpdate{At: later})
	s.ErrorIs(err, model.ErrProfileNotFound)
}

// Club directory tests

func (s *Suite) TestGetClubsBeforeSave() {
	_, err := s.Storage.GetClubs(s.Ctx)
	s.ErrorIs(err, model.ErrDirectoryUnavailable)
}

func (s *Suite) TestSaveAndGetClubsKeepsOrder() {
	clubs := []model.Club{
		{ID: "c-zurich", Name: "VBC Zürich Nord", Aliases: []string{"Zuri Nord"}},
		{ID: "c-example", Name: "FC Example", Aliases: []string{"Example SC"}},
		{ID: "c-bern1", Name: "Volley Bern"},
	}
	s.Require().NoError(s.Storage.SaveClubs(s.Ctx, clubs))

	got, err := s.Storage.GetClubs(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	for i := range clubs {
		s.Equal(clubs[i].ID, got[i].ID)
		s.Equal(clubs[i].Name, got[i].Name)
	}
	s.Equal([]string{"Example SC"}, got[1].Aliases)
}

func (s *Suite) TestSaveClubsReplaces() {
	s.Require().NoError(s.Storage.SaveClubs(s.Ctx, []model.Club{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}))
	s.Require().NoError(s.Storage.SaveClubs(s.Ctx, []model.Club{{ID: "c", Name: "C"}}))

	got, err := s.Storage.GetClubs(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(model.ClubID("c"), got[0].ID)
}
