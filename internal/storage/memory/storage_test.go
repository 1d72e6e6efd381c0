package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.Storage = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestSaveAccountCopiesInput() {
	account := storagetest.Account("acc-1", model.RolePlayerOnly)
	s.Require().NoError(s.storage.SaveAccount(s.Ctx, account))

	account.DisplayName = "mutated"

	got, err := s.storage.GetAccount(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal("Lea Meier", got.DisplayName)
}

func (s *StorageSuite) TestSavePlayerProfileCopiesInput() {
	profile := storagetest.PlayerProfile("acc-1")
	s.Require().NoError(s.storage.SavePlayerProfile(s.Ctx, profile))

	profile.ClubHistory[0].Leagues[0] = "mutated"

	got, err := s.storage.GetPlayerProfile(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal([]string{"NLA"}, got.ClubHistory[0].Leagues)
}
