package spam

import "mailsync/core/field"

// Field definitions are shared across every settings instance; each
// instance gets its own value holders. The domain schema is the full
// set; account schemas are the subsets the provider accepts per mailbox
// tree.

var (
	defFilterLevel = &field.Definition{
		Kind:    field.String,
		Default: "on",
		Valid:   []any{"on", "off", "exclusive"},
	}
	defOverride = &field.Definition{
		Kind:    field.Boolean,
		Default: false,
	}
	defSpamHandling = &field.Definition{
		Kind:    field.String,
		Default: "toFolder",
		Valid:   []any{"toFolder", "delete", "labelSubject", "toAddress"},
	}
	defHasFolderCleaner = &field.Definition{
		Kind:    field.Boolean,
		Default: true,
	}
	defSpamFolderAgeLimit = &field.Definition{
		Kind:    field.Integer,
		Default: 7,
		Check:   field.NonNegative,
	}
	defSpamFolderNumLimit = &field.Definition{
		Kind:    field.Integer,
		Default: 250,
		Check:   field.NonNegative,
	}
	defSpamForwardingAddress = &field.Definition{
		Kind:    field.String,
		Default: "",
	}
	defForwardToDomainQuarantine = &field.Definition{
		Kind:    field.String,
		Default: "off",
		Valid:   []any{"on", "off", "nonuser"},
	}
	defQuarantineOwner        = &field.Definition{Kind: field.String, Default: ""}
	defRemoveQuarantineOwner  = &field.Definition{Kind: field.Boolean, Default: false}
	defSendToDomainQuarantine = &field.Definition{Kind: field.Boolean, Default: false}
)

// domainSchema covers the whole-domain settings document, spanning both
// mailbox trees.
var domainSchema = map[string]*field.Definition{
	"filterLevel":                           defFilterLevel,
	"overrideUserSettings":                  defOverride,
	"rsEmail.spamHandling":                  defSpamHandling,
	"rsEmail.hasFolderCleaner":              defHasFolderCleaner,
	"rsEmail.spamFolderAgeLimit":            defSpamFolderAgeLimit,
	"rsEmail.spamFolderNumLimit":            defSpamFolderNumLimit,
	"rsEmail.spamForwardingAddress":         defSpamForwardingAddress,
	"exchange.forwardToDomainQuarantine":    defForwardToDomainQuarantine,
	"exchange.quarantineOwner":              defQuarantineOwner,
	"exchange.removeQuarantineOwner":        defRemoveQuarantineOwner,
	"exchange.defaultQuarantineOwner":       defQuarantineOwner,
	"exchange.removeDefaultQuarantineOwner": defRemoveQuarantineOwner,
}

// accountRSSchema covers per-mailbox settings in the Rackspace-native tree.
var accountRSSchema = map[string]*field.Definition{
	"filterLevel":                   defFilterLevel,
	"rsEmail.spamHandling":          defSpamHandling,
	"rsEmail.hasFolderCleaner":      defHasFolderCleaner,
	"rsEmail.spamFolderAgeLimit":    defSpamFolderAgeLimit,
	"rsEmail.spamFolderNumLimit":    defSpamFolderNumLimit,
	"rsEmail.spamForwardingAddress": defSpamForwardingAddress,
}

// accountExSchema covers per-mailbox settings in the hosted Exchange tree.
var accountExSchema = map[string]*field.Definition{
	"filterLevel":            defFilterLevel,
	"sendToDomainQuarantine": defSendToDomainQuarantine,
	"quarantineOwner":        defQuarantineOwner,
	"removeQuarantineOwner":  defRemoveQuarantineOwner,
}

// onOffFields are string enums the provider sometimes reports as raw
// booleans; those are folded to "on"/"off" on load.
var onOffFields = map[string]struct{}{
	"filterLevel":                        {},
	"exchange.forwardToDomainQuarantine": {},
}
