package rackspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	p := Paths{CustomerID: "12345", Domain: "example.com"}
	base := "/v1/customers/12345/domains/example.com"

	assert.Equal(t, base+"/rs/mailboxes", p.Mailboxes())
	assert.Equal(t, base+"/rs/mailboxes/bob", p.Mailbox("bob"))
	assert.Equal(t, base+"/rs/aliases", p.Aliases())
	assert.Equal(t, base+"/rs/aliases/sales", p.Alias("sales"))
	assert.Equal(t, base+"/rs/aliases/sales/bob@example.com", p.AliasMember("sales", "bob@example.com"))
}

func TestSpamPathsPerScope(t *testing.T) {
	p := Paths{CustomerID: "12345", Domain: "example.com"}
	base := "/v1/customers/12345/domains/example.com"

	assert.Equal(t, base+"/spam/settings", p.SpamSettings(Scope{}))
	assert.Equal(t, base+"/spam/blocklist", p.SpamACL(Scope{}, "blocklist"))

	rs := Scope{Account: "bob"}
	assert.Equal(t, base+"/rs/mailboxes/bob/spam/settings", p.SpamSettings(rs))

	ex := Scope{Account: "bob", Exchange: true}
	assert.Equal(t, base+"/ex/mailboxes/bob/spam/settings", p.SpamSettings(ex))
	assert.Equal(t, base+"/ex/mailboxes/bob/spam/safelist", p.SpamACL(ex, "safelist"))
}

func TestFormValues(t *testing.T) {
	values := FormValues(map[string]any{
		"enabled":   true,
		"saveDraft": false,
		"size":      25600,
		"firstName": "Bob",
	})

	assert.Equal(t, "true", values.Get("enabled"))
	assert.Equal(t, "false", values.Get("saveDraft"))
	assert.Equal(t, "25600", values.Get("size"))
	assert.Equal(t, "Bob", values.Get("firstName"))
}
