package redis

import (
	"fmt"

	"github.com/talentboard/profiledir/internal/model"
)

// Key prefix for all profile directory data
const keyPrefix = "profiledir"

// accountKey returns the Redis key for an Account
func accountKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, id)
}

// credentialsKey returns the Redis key for an account's Credentials
func credentialsKey(id model.AccountID) string {
	return fmt.Sprintf("%s:credentials:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> account_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// playerKey returns the Redis key for a PlayerProfile
func playerKey(id model.AccountID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// recruiterKey returns the Redis key for a RecruiterProfile
func recruiterKey(id model.AccountID) string {
	return fmt.Sprintf("%s:recruiter:%s", keyPrefix, id)
}

// clubsKey returns the Redis key for the club directory list
func clubsKey() string {
	return fmt.Sprintf("%s:clubs", keyPrefix)
}
