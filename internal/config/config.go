package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client towards third-party APIs.
var UserAgent = "Go-Countdown/" + Version + " (+https://github.com/tartampluch/go-countdown)"

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Go Countdown"
	AppID          = "com.github.tartampluch.go-countdown"
	KeyringService = "com.github.tartampluch.go-countdown"
	KeyringUser    = "youtube"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600
	// DirPermUserRWX represents drwx------ (Full access for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging"
	FlagDescConfig   = "Path to a YAML configuration file"
	MsgVersionOutput = "%s version %s (commit %s, built %s) %s/%s\n"
	DotEnvFile       = ".env"
)

// -----------------------------------------------------------------------------
// Countdown Domain
// -----------------------------------------------------------------------------

const (
	// CelebrationWindow is how long a region is flagged as celebrating once
	// its local New Year has arrived.
	CelebrationWindow = time.Hour

	// TickInterval is the cadence of pushed countdown snapshots.
	TickInterval = time.Second

	// ISOMillis is the timestamp layout of snapshots (ISO 8601 with milliseconds).
	ISOMillis = "2006-01-02T15:04:05.000Z07:00"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWishPeople     = "wish_people"     // Requires Name
	TKeyWishProsperity = "wish_prosperity" // Requires Name
	TKeyWishLeaders    = "wish_leaders"    // Requires Name
	TKeySummary        = "details_summary" // Requires Name
	TKeyNewsQuery      = "query_news"      // Requires Name
	TKeyVideoQuery     = "query_video"     // Requires Name
	TKeyImageQuery     = "query_images"    // Requires Name
	TKeyEvtSummary     = "event_summary"   // Requires Name
	TKeyEvtAlarm       = "event_alarm"     // Requires Name
	TKeyCalName        = "calendar_name"
)

// DefaultLanguage is used when no requested language matches a bundled locale.
const DefaultLanguage = "en"

// LocalesDir is the embedded directory holding active.<lang>.json files.
const LocalesDir = "locales"

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Countdown//Calendar//EN"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gocountdown"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropDuration    = "DURATION"
	PropLocation    = "LOCATION"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 1 * time.Hour

	UIDSalt         = "go-countdown-v1-"
	UIDHashLength   = 16
	FormatHashInput = "%s|%d|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Third-Party Endpoints
// -----------------------------------------------------------------------------

const (
	WikipediaRESTBase   = "https://en.wikipedia.org/api/rest_v1"
	WikipediaActionBase = "https://en.wikipedia.org/w/api.php"
	WikipediaPageBase   = "https://en.wikipedia.org/wiki/"
	YouTubeSearchURL    = "https://www.googleapis.com/youtube/v3/search"
	NewsSearchURL       = "https://www.google.com/search?q="
	VideoSearchURL      = "https://www.youtube.com/results?search_query="

	// WikipediaImageLimit caps the number of New Year pictures collected per region.
	WikipediaImageLimit = 8
	// YouTubeMaxResults is the page size requested from the video search API.
	YouTubeMaxResults = 8
)

// LeaderTitles are searched in order; the first hit is used as the leader page.
var LeaderTitles = []string{"President of %s", "Prime Minister of %s", "Monarch of %s"}

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 10 * time.Second
	EnrichTimeout       = 15 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 4 * 1024 * 1024 // 4MB
	AddrSeparator       = ":"
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"

	// Circuit breaker tuning shared by every upstream client.
	BreakerMaxRequests = 3
	BreakerInterval    = time.Minute
	BreakerTimeout     = 30 * time.Second
	BreakerMinRequests = 5
	BreakerFailRatio   = 0.6

	// WebSocket keep-alive.
	WSWriteWait        = 10 * time.Second
	WSPongWait         = 60 * time.Second
	WSPingPeriod       = (WSPongWait * 9) / 10
	WSHandshakeTimeout = 10 * time.Second
	WSBufferSize       = 1024
	WSMaxMessageSize   = 512

	CORSMaxAge = 300 // seconds
)

// -----------------------------------------------------------------------------
// Supervision
// -----------------------------------------------------------------------------

const (
	SupervisorFailureThreshold = 5.0
	SupervisorFailureDecay     = 30.0 // seconds
	SupervisorFailureBackoff   = 15 * time.Second
	SupervisorTimeout          = 10 * time.Second

	SupervisorRoot       = "go-countdown"
	SupervisorAPI        = "api"
	SupervisorBackground = "background"
	ServiceHTTP          = "http-server"
)

// -----------------------------------------------------------------------------
// HTTP Routes
// -----------------------------------------------------------------------------

const (
	RouteCountries      = "/api/countries"
	RouteRegions        = "/regions"
	RouteSnapshot       = "/api/events"
	RouteCountdowns     = "/countdowns"
	RouteStream         = "/events"
	RouteCountdownsSSE  = "/countdowns/stream"
	RouteWebSocket      = "/ws"
	RouteCountryDetails = "/api/country/{code}/details"
	RouteRegionDetails  = "/regions/{code}/details"
	RouteSearch         = "/api/search"
	RouteSearchAlias    = "/search"
	RouteCalendar       = "/calendar.ics"
	RouteHealth         = "/healthz"
	RouteMetrics        = "/metrics"
	RouteRoot           = "/"

	ParamCode   = "code"
	ParamQuery  = "q"
	ParamQuery2 = "query"
	ParamEnrich = "enrich"
	ParamLang   = "lang"
	EnrichOn    = "1"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderConnection      = "Connection"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderVary            = "Vary"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAcceptLanguage  = "Accept-Language"
	HeaderRequestID       = "X-Request-ID"
	HeaderAccelBuffering  = "X-Accel-Buffering"

	MimeJSON            = "application/json"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeEventStream     = "text/event-stream"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	CacheControlNone    = "no-cache"
	ConnectionKeepAlive = "keep-alive"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
	// FormatSSEData frames one Server-Sent Event carrying a JSON payload.
	FormatSSEData = "data: %s\n\n"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrConfigLoad       = "failed to load configuration"
	ErrConfigDefaults   = "failed to load configuration defaults"
	ErrConfigFile       = "failed to load configuration file"
	ErrConfigEnv        = "failed to load environment variables"
	ErrConfigUnmarshal  = "failed to unmarshal configuration"
	ErrConfigInvalid    = "configuration validation failed"
	ErrRegionSource     = "region source failed"
	ErrRegionParse      = "failed to parse region catalog"
	ErrRegionsEmpty     = "no region with a valid timezone"
	ErrRegionNotFound   = "country not found"
	ErrTimezone         = "unknown timezone"
	ErrUpstreamRequest  = "failed to create upstream request"
	ErrUpstreamNetwork  = "network error during upstream call"
	ErrUpstreamStatus   = "upstream returned unexpected status"
	ErrUpstreamDecode   = "failed to decode upstream response"
	ErrUpstreamOpen     = "upstream temporarily unavailable"
	ErrProtocol         = "unsupported protocol scheme"
	ErrSearchNotConfig  = "YOUTUBE_API_KEY not configured on server"
	ErrSearchQuery      = "missing query parameter `q`"
	ErrStreamUnsupport  = "streaming unsupported by response writer"
	ErrStreamWrite      = "failed to write stream event"
	ErrWebSocketUpgrade = "failed to upgrade WebSocket connection"
	ErrSupervisor       = "supervisor tree stopped with error"
	ErrLogFile          = "failed to open log file"
	ErrCreateDir        = "failed to create directory"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgRateLimited  = "Too Many Requests"
	HTTPMsgNotFound     = "Not Found"
	HTTPStatusHealthy   = "ok"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary     = "Details for %s"
	FallbackEvtSummary  = "New Year in %s"
	FallbackEvtAlarm    = "New Year is coming in %s"
	FallbackCalName     = "New Year Around The World"
	FallbackNewsQuery   = "New Year %s news"
	FallbackVideoQuery  = "New Year live %s"
	FallbackImageQuery  = "New Year %s"
	FallbackWishPeople  = "Happy New Year to the people of %s!"
	FallbackWishProsper = "Wishing prosperity and peace to %s in the coming year."
	FallbackWishLeaders = "Warm New Year wishes to the leaders and citizens of %s."

	// StubVCalendar is the minimal valid iCalendar object used when no region is loaded.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgAppStarting      = "Starting application"
	MsgAppStop          = "Application stopped gracefully"
	MsgConfigLoaded     = "Configuration loaded"
	MsgDotEnvMissing    = "No .env file loaded"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgCacheUpdated     = "Calendar cache updated"
	MsgCalendarBuilt    = "Calendar generation successful"
	MsgRefresherStart   = "Calendar refresher started"
	MsgRefresherStop    = "Calendar refresher stopping due to context cancellation"
	MsgRegionsLoaded    = "Region catalog loaded"
	MsgRegionSkipped    = "Skipping region with unusable timezone"
	MsgRegionDuplicate  = "Skipping duplicate region code"
	MsgSourceFailed     = "Region source unavailable, trying next"
	MsgEntryOmitted     = "Omitting region from countdown"
	MsgStreamOpen       = "Countdown stream opened"
	MsgStreamClosed     = "Countdown stream closed"
	MsgEnrichFailed     = "country details enrichment failed"
	MsgSearchUpstream   = "Video search upstream error"
	MsgKeyringMissing   = "API key not found in keyring"
	MsgBreakerState     = "Circuit breaker state transition"
	MsgBreakerRejected  = "Circuit breaker rejected request"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgRequestCompleted = "HTTP request completed"
	MsgUpstreamRequest  = "Calling upstream API"
	MsgUpstreamStatus   = "Upstream returned error status"
	MsgUpstreamDone     = "Upstream response received"
	MsgLogWarning       = "Warning: %s %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyInterval  = "interval"
	LogKeySource    = "source"
	LogKeyCode      = "code"
	LogKeyTimezone  = "timezone"
	LogKeyCount     = "count"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyTransport = "transport"
	LogKeyRemote    = "remote"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyRequestID = "request_id"
	LogKeyDuration  = "duration_ms"
	LogKeyBreaker   = "breaker"
	LogKeyFrom      = "from"
	LogKeyTo        = "to"
	LogKeyStep      = "step"
	LogKeyConfig    = "config_file"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "build_date"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain         = "main"
	CompConfig       = "config"
	CompEngine       = "engine"
	CompRegion       = "region"
	CompServer       = "server"
	CompStream       = "stream"
	CompCalendar     = "calendar"
	CompDetails      = "details"
	CompEncyclopedia = "encyclopedia"
	CompVideoSearch  = "videosearch"
	CompI18n         = "i18n"
	CompSupervisor   = "supervisor"
	CompFetcher      = "fetcher"
)

// -----------------------------------------------------------------------------
// Stream Transports
// -----------------------------------------------------------------------------

const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)
