package slots

import (
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	coremetrics "github.com/kilianp07/rideslots/core/metrics"
	coremon "github.com/kilianp07/rideslots/core/monitoring"
	"github.com/kilianp07/rideslots/infra/logger"
)

// Options configure the router.
type Options struct {
	// AllowedOrigins lists the CORS origins; empty disables CORS headers.
	AllowedOrigins []string
	Sink           coremetrics.MetricsSink
	Logger         logger.Logger
	// Monitor receives internal errors and recovered panics.
	Monitor coremon.Monitor
}

// NewRouter registers every analytics route and wraps them with request ids,
// access logging, metrics, panic recovery, gzip and CORS.
func NewRouter(q Analytics, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	if opts.Sink == nil {
		opts.Sink = coremetrics.NopSink{}
	}
	if opts.Monitor == nil {
		opts.Monitor = coremon.NopMonitor{}
	}
	h := &handler{q: q, log: opts.Logger, mon: opts.Monitor}

	chain := []mux.MiddlewareFunc{requestID, accessLog(opts.Logger), recordMetrics(opts.Sink, opts.Logger)}

	r := mux.NewRouter()
	// mux only runs Use middleware on matched routes.
	r.NotFoundHandler = wrap(http.HandlerFunc(h.notFound), chain)
	r.MethodNotAllowedHandler = wrap(http.HandlerFunc(h.methodNotAllowed), chain)

	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/timestamps", static(h, q.Timestamps)).Methods(http.MethodGet)
	r.HandleFunc("/frame/{ts}", scoped(h, q.Snapshot)).Methods(http.MethodGet)
	r.HandleFunc("/stats/{ts}", scoped(h, q.Stats)).Methods(http.MethodGet)
	r.HandleFunc("/stats_timestamp/{ts}", scoped(h, q.StatsDetailed)).Methods(http.MethodGet)
	r.HandleFunc("/slots_by_plate/{ts}", scoped(h, q.SlotsByPlate)).Methods(http.MethodGet)
	r.HandleFunc("/vehicles_at_timestamp/{ts}", scoped(h, q.VehiclesAt)).Methods(http.MethodGet)
	r.HandleFunc("/utilization", static(h, q.Utilization)).Methods(http.MethodGet)
	r.HandleFunc("/service_mix", static(h, q.ServiceMix)).Methods(http.MethodGet)
	r.HandleFunc("/occupancy_timeline", static(h, q.OccupancyTimeline)).Methods(http.MethodGet)
	r.HandleFunc("/dwell_time", static(h, q.DwellTime)).Methods(http.MethodGet)
	r.HandleFunc("/dwell_histogram", h.dwellHistogram).Methods(http.MethodGet)
	r.HandleFunc("/summary", static(h, q.Summary)).Methods(http.MethodGet)

	r.Use(chain...)

	var out http.Handler = r
	out = handlers.CompressHandler(out)
	out = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{opts.Logger, opts.Monitor}))(out)
	if len(opts.AllowedOrigins) > 0 {
		out = handlers.CORS(
			handlers.AllowedOrigins(opts.AllowedOrigins),
			handlers.AllowedMethods(corsMethods),
			handlers.AllowedHeaders(corsHeaders),
			handlers.ExposedHeaders([]string{RequestIDHeader}),
			handlers.AllowCredentials(),
		)(out)
	}
	return out
}

// gorilla/handlers has no wildcard for methods or headers, so every standard
// method and the headers browsers and dashboards commonly send are listed.
var (
	corsMethods = []string{
		http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	corsHeaders = []string{
		"Accept", "Accept-Language", "Content-Language", "Content-Type",
		"Authorization", "Cache-Control", "Pragma", "X-Requested-With", RequestIDHeader,
	}
)

// wrap applies chain to h, first element outermost, as mux.Router.Use does.
func wrap(h http.Handler, chain []mux.MiddlewareFunc) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

type recoveryLogger struct {
	log logger.Logger
	mon coremon.Monitor
}

func (l recoveryLogger) Println(v ...any) {
	l.log.Errorf("panic recovered: %v", v)
	l.mon.CaptureException(fmt.Errorf("panic recovered: %v", v), map[string]string{"component": "api"})
}
