package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as status checks.
	ShortHTTPTimeout = 10 * time.Second

	// DefaultNATSTimeout bounds connecting to the alert broker.
	DefaultNATSTimeout = 5 * time.Second
)

// Request headers.
const (
	// HeaderRequestedWith marks requests as issued by script, not by a form.
	HeaderRequestedWith = "X-Requested-With"

	// RequestedWithXHR is the value sent in HeaderRequestedWith.
	RequestedWithXHR = "XMLHttpRequest"

	// HeaderRequestID carries a per-call UUID.
	HeaderRequestID = "X-Request-Id"

	// DefaultUserAgent is sent when none is configured.
	DefaultUserAgent = "renku-client/1.0.0"
)

// UI server endpoints.
const (
	// UIServerPath is appended to the API origin when no UI server URL is configured.
	UIServerPath = "/ui-server"

	// LoginPath starts a login through the UI server.
	LoginPath = "/auth/login"

	// LogoutPath ends the session on the UI server.
	LogoutPath = "/auth/logout"

	// RedirectURLParam carries the location to come back to.
	RedirectURLParam = "redirect_url"

	// AnonymousParam selects the anonymous login.
	AnonymousParam = "anonymous"
)

// Pagination and display limits.
const (
	// DefaultPerPage is the page size used by listing commands.
	DefaultPerPage = 100

	// DefaultTreePerPage is the page size of repository tree listings.
	DefaultTreePerPage = 500

	// DefaultMaxIterations bounds page fetches of accumulating listings.
	DefaultMaxIterations = 10

	// DefaultLogLines is the default number of session log lines.
	DefaultLogLines = 250

	// DescriptionDisplayLength is the default length for displaying descriptions.
	DescriptionDisplayLength = 60

	// ShortSHALength is the number of characters shown for a commit SHA.
	ShortSHALength = 8
)

// Repository defaults.
const (
	// DefaultRef is used when no ref is given.
	DefaultRef = "master"

	// ReadmePath is the README looked up by Readme.
	ReadmePath = "README.md"

	// MissingReadmeText is returned when a project has no README.
	MissingReadmeText = "Could not find a README.md file. Why don't you add one to the repository?"
)

// Alerting.
const (
	// DefaultAlertSubject is the NATS subject alerts are published on.
	DefaultAlertSubject = "renku.alerts"
)

// UI and display constants.
const (
	// CheckMarkSymbol is used to indicate current/active items.
	CheckMarkSymbol = "✓"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// Additional mathematical and calculation constants.
const (
	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// PercentageMultiplier converts decimals to percentages.
	PercentageMultiplier = 100

	// KeyValueSplitParts is the number of parts when splitting key=value strings.
	KeyValueSplitParts = 2
)
