package config

import (
	"time"

	"github.com/mompick/mompick-admin/internal/logger"
)

const (
	// DefaultSessionExpiry is the lifetime of an admin session cookie.
	DefaultSessionExpiry = 7 * 24 * time.Hour

	// DefaultCookieName is the name of the admin session cookie.
	DefaultCookieName = "admin_session"

	// DefaultCronSpec runs the dispatcher once per minute.
	DefaultCronSpec = "@every 1m"

	// DefaultBatchSize is the number of concurrent push deliveries per batch.
	DefaultBatchSize = 10

	// DefaultDuplicateWindow is the half width of the window around scheduled_at
	// that is searched for an already delivered copy of a scheduled notification.
	DefaultDuplicateWindow = 5 * time.Minute

	// DefaultFCMEndpoint is the FCM HTTP v1 send endpoint, %s is the project id.
	DefaultFCMEndpoint = "https://fcm.googleapis.com/v1/projects/%s/messages:send"

	// DefaultKindergartenURL is the kindergarten basic info open data endpoint.
	DefaultKindergartenURL = "https://e-childschoolinfo.moe.go.kr/api/notice/basicInfo.do"

	// DefaultChildcareURL is the childcare facility open data endpoint.
	DefaultChildcareURL = "http://api.childcare.go.kr/mediate/rest/cpmsapi030/cpmsapi030/request"

	// DefaultArcode is the district code used when a childcare lookup omits one.
	DefaultArcode = "11260"

	// Storage drivers.
	StorageMemory = "memory"
	StorageS3     = "s3"

	// Push providers.
	PushNone = "none"
	PushFCM  = "fcm"
	PushSNS  = "sns"

	defaultShutDownTime      = 5
	defaultRequestsPerSecond = 2.0
	defaultOpenDataTimeout   = 10 * time.Second
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
	CookieName string
}

// Config overall data structure.
type Config struct {
	DevMode    bool // enable dev mode for development
	DB         DB
	Log        logger.Log
	Title      string
	Webserver  Webserver
	Admin      Admin
	Storage    Storage
	Push       Push
	Dispatcher Dispatcher
	OpenData   OpenData
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool    // enable static file browsing (for development purposes only)
	DisableRecover bool    // disable recover middleware
	Domain         string  // cookie domain, empty means host only
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Admin holds the seeded administrator account and the API bearer token
// used by external schedulers.
type Admin struct {
	Email    string
	Password string
	APIToken string
}

// Buckets names the object storage buckets per upload kind.
type Buckets struct {
	ProfileImages string
	Banners       string
	Notices       string
	ReviewImages  string
	FacilityCache string
}

// Storage holds the object storage settings.
type Storage struct {
	Driver          string // s3 or memory
	Region          string
	Endpoint        string // custom endpoint for S3 compatible stores
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PublicBaseURL   string // public URLs are PublicBaseURL/<bucket>/<key>
	Buckets         Buckets
}

// FCM holds the firebase cloud messaging settings.
type FCM struct {
	ProjectID       string
	CredentialsFile string // service account json file
	CredentialsJSON string // service account json inline, wins over CredentialsFile
	Endpoint        string
}

// SNS holds the AWS SNS mobile push settings.
type SNS struct {
	Region             string
	AndroidPlatformARN string
	IOSPlatformARN     string
}

// Push holds the push delivery settings.
type Push struct {
	Provider string // fcm, sns or none
	FCM      FCM
	SNS      SNS
}

// Dispatcher holds the scheduled notification dispatcher settings.
type Dispatcher struct {
	Enabled         bool
	CronSpec        string
	BatchSize       int
	DuplicateWindow time.Duration
}

// OpenData holds the government open data API settings.
type OpenData struct {
	KindergartenURL   string
	KindergartenKey   string
	ChildcareURL      string
	ChildcareKey      string
	DefaultArcode     string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}
