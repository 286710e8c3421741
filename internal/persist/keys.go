package persist

// Well-known keys. The first three match the browser storage keys of earlier
// releases so exported data stays readable.
const (
	KeyAPICredential      = "openrouter_api_key"
	KeyLibrary            = "promptLibrary"
	KeyCommunityTemplates = "communityTemplates"
	// KeyDraft holds the CLI's working document between invocations.
	KeyDraft = "draft"
)
