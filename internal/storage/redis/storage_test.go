package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.Storage = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestPing() {
	s.NoError(s.storage.Ping(s.Ctx))
}

func (s *StorageSuite) TestKeysUsePrefix() {
	s.Require().NoError(s.storage.SaveAccount(s.Ctx, storagetest.Account("acc-1", model.RoleDual)))
	s.Require().NoError(s.storage.SavePlayerProfile(s.Ctx, storagetest.PlayerProfile("acc-1")))
	s.Require().NoError(s.storage.SaveRecruiterProfile(s.Ctx, storagetest.RecruiterProfile("acc-1")))

	s.True(s.mini.Exists("profiledir:account:acc-1"))
	s.True(s.mini.Exists("profiledir:player:acc-1"))
	s.True(s.mini.Exists("profiledir:recruiter:acc-1"))
}

func (s *StorageSuite) TestEmailIndex() {
	s.Require().NoError(s.storage.SaveCredentials(s.Ctx, &model.Credentials{
		AccountID: "acc-1",
		Email:     "lea@example.ch",
	}))

	id, err := s.mini.Get(emailIndexKey("lea@example.ch"))
	s.Require().NoError(err)
	s.Equal("acc-1", id)
}

func (s *StorageSuite) TestProfilesHaveNoTTL() {
	s.Require().NoError(s.storage.SavePlayerProfile(s.Ctx, storagetest.PlayerProfile("acc-1")))
	s.Require().NoError(s.storage.SaveClubs(s.Ctx, []model.Club{{ID: "a", Name: "A"}}))

	s.Equal(time.Duration(0), s.mini.TTL(playerKey("acc-1")))
	s.Equal(time.Duration(0), s.mini.TTL(clubsKey()))
}

func (s *StorageSuite) TestGetWithCorruptData() {
	s.Require().NoError(s.mini.Set(playerKey("acc-1"), "{not json"))

	_, err := s.storage.GetPlayerProfile(s.Ctx, "acc-1")
	s.Error(err)
	s.NotErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestSaveEmptyClubList() {
	s.Require().NoError(s.storage.SaveClubs(s.Ctx, nil))

	clubs, err := s.storage.GetClubs(s.Ctx)
	s.Require().NoError(err)
	s.Empty(clubs)
}
