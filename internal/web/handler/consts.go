package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath is the prefix of every JSON route.
	APIPath = "/api"

	// MetricsPath serves the prometheus metrics.
	MetricsPath = "/metrics"

	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"

	// LocalsAdmin is the fiber.Locals key holding the logged in admin.
	LocalsAdmin = "CurrentAdmin"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
