package types

import "strings"

// CredentialSet is one assumed role's temporary token tuple. Sessions
// are requested with a 900 second lifetime; nothing renews them, so a
// set is only trusted for the duration of one account/region pass.
type CredentialSet struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Fingerprint returns a stable string identifying this credential set,
// used to group fetched records for batched persistence. Not durable
// state and never logged.
func (c CredentialSet) Fingerprint() string {
	return strings.Join([]string{c.AccessKeyID, c.SecretAccessKey, c.SessionToken}, "|")
}

// Account is one entry of the account list the collector walks: the
// account to inventory and the role to assume in it.
type Account struct {
	ID   string `mapstructure:"id"`
	Role string `mapstructure:"role"`
	Name string `mapstructure:"name"`
}
