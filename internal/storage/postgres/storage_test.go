package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/storage/storagetest"
	"github.com/talentboard/profiledir/internal/testutil"
)

// testDSNEnv names the database used by these tests. The suite is skipped when it is unset.
const testDSNEnv = "PROFILEDIR_TEST_DATABASE_URL"

type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}

	require.NoError(t, Migrate(dsn, testutil.NopLogger()))

	cfg := DefaultConfig()
	cfg.DSN = dsn
	store, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	suite.Run(t, &StorageSuite{storage: store})
}

func (s *StorageSuite) SetupTest() {
	s.Storage = s.storage
	s.Ctx = context.Background()

	_, err := s.storage.pool.Exec(s.Ctx, `TRUNCATE clubs, recruiter_profiles, player_profiles, credentials, accounts`)
	s.Require().NoError(err)
}

func (s *StorageSuite) TestPing() {
	s.NoError(s.storage.Ping(s.Ctx))
}

func (s *StorageSuite) TestMigrateIsIdempotent() {
	s.NoError(Migrate(os.Getenv(testDSNEnv), testutil.NopLogger()))
}

func (s *StorageSuite) TestEmailIsUnique() {
	s.Require().NoError(s.storage.SaveAccount(s.Ctx, storagetest.Account("acc-1", model.RolePlayerOnly)))
	s.Require().NoError(s.storage.SaveAccount(s.Ctx, storagetest.Account("acc-2", model.RolePlayerOnly)))

	s.Require().NoError(s.storage.SaveCredentials(s.Ctx, &model.Credentials{
		AccountID: "acc-1", Email: "lea@example.ch", PasswordHash: "h",
	}))
	err := s.storage.SaveCredentials(s.Ctx, &model.Credentials{
		AccountID: "acc-2", Email: "lea@example.ch", PasswordHash: "h",
	})
	s.ErrorIs(err, model.ErrEmailTaken)
}

func (s *StorageSuite) TestProfileRequiresAccount() {
	err := s.storage.SavePlayerProfile(s.Ctx, storagetest.PlayerProfile("orphan"))
	s.Error(err)
}
